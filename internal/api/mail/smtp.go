package mail

import (
	"context"
	"errors"
	"gopkg.in/gomail.v2"
	"todosome/internal/config"
)

// SMTPSender delivers mails directly through SMTP server
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(cfg config.MailConfig) (*SMTPSender, error) {
	if cfg.SMTP.Host == "" {
		return nil, errors.New("smtp host is empty")
	}
	from := cfg.From
	if from == "" {
		from = cfg.SMTP.User
	}
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password),
		from:   from,
	}, nil
}

// Send dials server for every mail. gomail has no context support: ctx bounds the wait and is
// checked again once connected, a mail is not handed over when ctx is already done.
// A send already past that point can still be delivered after Send returned.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	m.AddAlternative("text/html", msg.Html)

	done := make(chan error, 1)
	go func() {
		sc, err := s.dialer.Dial()
		if err != nil {
			done <- err
			return
		}
		defer sc.Close()
		if err = ctx.Err(); err != nil {
			done <- err
			return
		}
		done <- gomail.Send(sc, m)
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
