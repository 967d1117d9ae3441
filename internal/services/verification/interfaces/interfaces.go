package interfaces

import (
	"context"
	"todosome/internal/domain/models"
)

// VerificationStorage confirms user's email
type VerificationStorage interface {
	MarkVerified(ctx context.Context, userID string) (bool, error)
}

// VerificationProvider resolves verification token into its owner
type VerificationProvider interface {
	UserByVerificationToken(ctx context.Context, token string) (models.User, error)
}
