// Package models declares the domain types shared by repositories, services
// and the editing layer.
package models

import "time"

// Account is a registered user. Email is stored normalized (trimmed, lower-case).
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	PasswordSalt string
	DisplayName  *string
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// OtpRequest is a pending password-reset code. At most one exists per email.
type OtpRequest struct {
	ID        string
	Email     string
	Code      string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the code can no longer be redeemed at now.
func (o *OtpRequest) Expired(now time.Time) bool {
	return !o.ExpiresAt.After(now)
}
