package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"todosome/internal/services/access/interfaces"
	"todosome/internal/storage"
)

// Access guards protected operations, it's pure token validation without storage lookups
type Access struct {
	log            *slog.Logger
	tokenValidator interfaces.TokenValidator
}

func New(log *slog.Logger, tokenValidator interfaces.TokenValidator) *Access {
	return &Access{
		log:            log,
		tokenValidator: tokenValidator,
	}
}

// Authorize resolves bearer token into user id
//
// Every token failure is reported as storage.ErrUnauthorized
func (a *Access) Authorize(_ context.Context, token string) (string, error) {
	const op = "access.Authorize"

	if token == "" {
		return "", fmt.Errorf("%s: %w", op, storage.ErrUnauthorized)
	}
	userID, err := a.tokenValidator.ValidateAccessToken(token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			a.log.Debug("token expired", slog.String("op", op))
		} else {
			a.log.Debug("error validating a token", slog.String("op", op), slog.String("error", err.Error()))
		}
		return "", fmt.Errorf("%s: %w", op, storage.ErrUnauthorized)
	}
	return userID, nil
}
