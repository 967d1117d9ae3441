package mail

import (
	"context"
	"errors"
	mailv1 "github.com/OfficialEvsty/protos/gen/go/mailer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"log/slog"
)

// MailClient delivers mails through remote mail service over gRPC
type MailClient struct {
	conn   *grpc.ClientConn
	client mailv1.MailServiceClient
	logger *slog.Logger
}

// NewMailClient initialize MailClient and provide connection
func NewMailClient(logger *slog.Logger, addr string) (*MailClient, error) {
	const op = "mail.NewMailClient"
	log := logger.With(slog.String("op", op), slog.String("address", addr))
	if addr == "" {
		return nil, errors.New("mail service address is empty")
	}
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Error("failed to create grpc connection", slog.String("error", err.Error()))
		return nil, err
	}
	log.Info("successfully created grpc connection to mail server")

	return &MailClient{conn: conn, client: mailv1.NewMailServiceClient(conn), logger: logger}, nil
}

// Close closes grpc connection
func (c *MailClient) Close() error {
	return c.conn.Close()
}

func (c *MailClient) Send(ctx context.Context, msg Message) error {
	mailRequest := mailv1.SendMailRequest{
		To:      msg.To,
		Subject: msg.Subject,
		Text:    msg.Text,
		Html:    msg.Html,
	}

	_, err := c.client.SendMail(ctx, &mailRequest)
	return err
}
