package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"todosome/internal/domain/models"
	"todosome/internal/lib/jwt"
	"todosome/internal/lib/utilities"
	"todosome/internal/services/verification/interfaces"
	"todosome/internal/storage"
)

type Verification struct {
	log      *slog.Logger
	storage  interfaces.VerificationStorage
	provider interfaces.VerificationProvider
}

// New creates an instance of Verification service
func New(
	logger *slog.Logger,
	storage interfaces.VerificationStorage,
	provider interfaces.VerificationProvider,
) *Verification {
	return &Verification{
		log:      logger,
		storage:  storage,
		provider: provider,
	}
}

// Issue generates a fresh single-use verification token
func (v *Verification) Issue() (string, error) {
	token, err := jwt.NewVerifyingToken()
	if err != nil {
		return "", fmt.Errorf("verification.Issue: %w", err)
	}
	return token, nil
}

// Redeem confirms user's email owning the token
//
// Fails with storage.ErrTokenInvalid if token is unknown or was already redeemed
func (v *Verification) Redeem(ctx context.Context, token string) (models.User, error) {
	const op = "verification.Redeem"
	logger := v.log.With(slog.String("op", op))

	if token == "" {
		return models.User{}, storage.ErrTokenInvalid
	}
	user, err := v.provider.UserByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			logger.Info("verification token not found")
			return models.User{}, storage.ErrTokenInvalid
		}
		logger.Error("error getting user by token", slog.String("error", err.Error()))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	logger = logger.With(slog.String("email-provider", utilities.EmailProvider(user.Email)))

	changed, err := v.storage.MarkVerified(ctx, user.ID)
	if err != nil {
		logger.Error("error saving verified user email", slog.String("error", err.Error()))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	// concurrent redemption of the same token won
	if !changed {
		logger.Info("verification token already redeemed")
		return models.User{}, storage.ErrTokenInvalid
	}

	user.IsEmailVerified = true
	user.VerificationToken = ""
	logger.Info("email verified")
	return user, nil
}
