package jwt

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"github.com/golang-jwt/jwt/v5"
	"time"
	"todosome/internal/storage"
)

// VerifyingTokenSize is the amount of random bytes in email verification token
const VerifyingTokenSize = 32

var ErrEmptySecret = errors.New("jwt secret is empty")

// TokenProvider signs and validates session tokens with a single HMAC secret
type TokenProvider struct {
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

// New creates an instance of TokenProvider, empty secret is not allowed
func New(secret string, tokenTTL time.Duration) (*TokenProvider, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &TokenProvider{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		now:      time.Now,
	}, nil
}

// NewAccessToken creates session token for specified user
//
// Returns signed token and the moment it expires
func (p *TokenProvider) NewAccessToken(userID string) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, fmt.Errorf("jwt.NewAccessToken: %w", storage.ErrUserNotFound)
	}
	issuedAt := p.now()
	expiresAt := issuedAt.Add(p.tokenTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})

	tokenString, err := token.SignedString(p.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// ValidateAccessToken checks if session token is valid and returns its subject
func (p *TokenProvider) ValidateAccessToken(tokenString string) (string, error) {
	if tokenString == "" {
		return "", storage.ErrTokenInvalid
	}
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return p.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", storage.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %s", storage.ErrTokenInvalid, err.Error())
	}

	if !token.Valid || claims.Subject == "" {
		return "", storage.ErrTokenInvalid
	}
	return claims.Subject, nil
}

// NewVerifyingToken returns verify token, hex encoded random bytes
func NewVerifyingToken() (string, error) {
	token := make([]byte, VerifyingTokenSize)
	_, err := rand.Read(token)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(token), nil
}
