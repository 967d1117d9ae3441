package utilities

import "context"

type ctxKey string

// UserIDKey is a key of authenticated user's id, both in request context and in gin context
const UserIDKey ctxKey = "userID"

// WithUserID stores authenticated user's id in context
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// UserIDFromContext extracts authenticated user's id from context
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}
