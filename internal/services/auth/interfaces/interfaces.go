package interfaces

import (
	"context"
	"time"
	"todosome/internal/domain/models"
)

type UserStorage interface {
	SaveUser(
		ctx context.Context,
		email string,
		passHash []byte,
		verificationToken string,
	) (user models.User, err error)
	DeleteUser(ctx context.Context, userID string) error
}

type UserProvider interface {
	User(ctx context.Context, email string) (user models.User, err error)
}

type ProfileProvider interface {
	Profile(ctx context.Context, userID string) (models.Profile, error)
}

// VerificationFlow issues and redeems single-use email tokens
type VerificationFlow interface {
	Issue() (string, error)
	Redeem(ctx context.Context, token string) (models.User, error)
}

// Mailer delivers verification token to user's address, nil error means delivered
type Mailer interface {
	SendVerificationMail(ctx context.Context, emailTo string, token string) error
}

// TokenProvider issues session tokens
type TokenProvider interface {
	NewAccessToken(userID string) (token string, expiresAt time.Time, err error)
}
