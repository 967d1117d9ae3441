package interfaces

// TokenValidator validates session token and returns its subject
type TokenValidator interface {
	ValidateAccessToken(token string) (userID string, err error)
}
