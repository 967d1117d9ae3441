package storage

import "errors"

var (
	ErrUserExists            = errors.New("user already exists")
	ErrUserNotFound          = errors.New("user not found")
	ErrTaskNotFound          = errors.New("task not found")
	ErrTokenInvalid          = errors.New("token is invalid")
	ErrTokenExpired          = errors.New("token is expired")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrUserNotConfirmedEmail = errors.New("user's email is not verified")
	ErrDeliveryFailed        = errors.New("failed to send verification email")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrInvalidArgument       = errors.New("invalid argument")
	InfoCacheKeyNotFound     = errors.New("info cache key not found")
)
