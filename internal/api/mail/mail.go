package mail

import (
	"bytes"
	"context"
	"fmt"
	"github.com/ilyakaznacheev/cleanenv"
	htmltemplate "html/template"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"todosome/internal/config"
	"todosome/internal/lib/utilities"
)

const (
	DriverSMTP = "smtp"
	DriverGRPC = "grpc"
	DriverLog  = "log"
)

// MailTemplate is a working template for mail constructing
type MailTemplate struct {
	Verification VerificationMailTemplate `json:"verification"`
}

type VerificationMailTemplate struct {
	Subject string `json:"subject"`
	Text    string `json:"text"`
	Html    string `json:"html"`
}

// Message is a rendered mail ready for delivery
type Message struct {
	To      string
	Subject string
	Text    string
	Html    string
}

// Sender is a delivery driver
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Mailer renders verification mails and hands them to configured driver
type Mailer struct {
	sender      Sender
	template    MailTemplate
	html        *htmltemplate.Template
	frontendURL string
	logger      *slog.Logger
}

// New loads mail template and creates the driver chosen in config
func New(logger *slog.Logger, cfg config.MailConfig) (*Mailer, error) {
	const op = "mail.New"

	mailTemplate := MailTemplate{}
	if err := cleanenv.ReadConfig(cfg.TemplatePath, &mailTemplate); err != nil {
		return nil, fmt.Errorf("%s: error reading mail template: %w", op, err)
	}

	var (
		sender Sender
		err    error
	)
	switch cfg.Driver {
	case DriverSMTP:
		sender, err = NewSMTPSender(cfg)
	case DriverGRPC:
		sender, err = NewMailClient(logger, cfg.GRPC.Address)
	case DriverLog, "":
		sender = NewLogSender(logger)
	default:
		err = fmt.Errorf("unknown mail driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return NewWithSender(logger, sender, mailTemplate, cfg.FrontendURL)
}

// NewWithSender creates Mailer over an already constructed driver
func NewWithSender(logger *slog.Logger, sender Sender, mailTemplate MailTemplate, frontendURL string) (*Mailer, error) {
	html, err := htmltemplate.New("verification").Parse(mailTemplate.Verification.Html)
	if err != nil {
		return nil, fmt.Errorf("mail.NewWithSender: error parsing html template: %w", err)
	}
	return &Mailer{
		sender:      sender,
		template:    mailTemplate,
		html:        html,
		frontendURL: frontendURL,
		logger:      logger,
	}, nil
}

// Close closes driver's connection if it holds one
func (m *Mailer) Close() error {
	if closer, ok := m.sender.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// VerificationLink builds link to frontend page redeeming the token
func VerificationLink(frontendURL string, token string) string {
	return strings.TrimRight(frontendURL, "/") + "/verify?token=" + url.QueryEscape(token)
}

// Render builds verification mail for the address
func (m *Mailer) Render(emailTo string, token string) (Message, error) {
	link := VerificationLink(m.frontendURL, token)

	var html bytes.Buffer
	if err := m.html.Execute(&html, struct{ Link string }{Link: link}); err != nil {
		return Message{}, fmt.Errorf("mail.Render: %w", err)
	}
	return Message{
		To:      emailTo,
		Subject: m.template.Verification.Subject,
		Text:    m.template.Verification.Text + "\n" + link,
		Html:    html.String(),
	}, nil
}

// SendVerificationMail sends verification mail to a user
func (m *Mailer) SendVerificationMail(ctx context.Context, emailTo string, token string) error {
	const op = "mail.SendVerificationMail"
	log := m.logger.With(slog.String("op", op), slog.String("email-provider", utilities.EmailProvider(emailTo)))

	msg, err := m.Render(emailTo, token)
	if err != nil {
		log.Error("failed to render verification mail", slog.String("error", err.Error()))
		return err
	}
	if err = m.sender.Send(ctx, msg); err != nil {
		log.Error("failed to send verification mail", slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", op, err)
	}
	log.Debug("successfully sent verification mail")
	return nil
}
