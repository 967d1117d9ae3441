package models

import "time"

// User's model
type User struct {
	ID                string    `json:"id" db:"id"`
	Email             string    `json:"email" db:"email"`
	PassHash          []byte    `json:"-" db:"pass_hash"`
	IsEmailVerified   bool      `json:"-" db:"is_verified"`
	VerificationToken string    `json:"-" db:"verification_token"`
	CreatedAt         time.Time `json:"-" db:"created_at"`
}

// Profile is the public part of User, safe to hand out to clients
type Profile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Profile returns public fields of the user
func (u User) Profile() Profile {
	return Profile{ID: u.ID, Email: u.Email}
}
