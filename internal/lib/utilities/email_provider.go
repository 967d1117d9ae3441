package utilities

import "strings"

// EmailProvider returns domain part of email, it's safe to write into logs
func EmailProvider(email string) string {
	mailSliced := strings.Split(email, "@")
	if len(mailSliced) > 1 && mailSliced[len(mailSliced)-1] != "" {
		return mailSliced[len(mailSliced)-1]
	}
	return "not stated"
}
