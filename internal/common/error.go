// Package common defines shared constants, sentinel errors and small helpers
// used across the mindmap packages. Callers should use errors.Is to match the
// error values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Document errors.
	ErrMissingOwner    = errors.New("document has no owner")
	ErrCorruptSnapshot = errors.New("corrupt document snapshot")
	ErrForeignDocument = errors.New("document belongs to another owner")

	// Collaborator errors (mail delivery, document generation, archive).
	ErrDeliveryFailed   = errors.New("otp delivery failed")
	ErrGenerationFailed = errors.New("document generation failed")
	ErrNotConfigured    = errors.New("not configured")

	// Session token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
