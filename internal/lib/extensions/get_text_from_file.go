package extensions

import (
	"os"
	"strings"
)

// GetTextFromFile extracts text from file .txt, surrounding whitespace is trimmed
//
// Returns empty string if file can't be read
func GetTextFromFile(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// GetEnv reads an environment variable or returns a default value
func GetEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultVal
}
