// Package services holds the application services: AccountService for the
// credential lifecycle (registration, login, OTP password reset) and
// DocumentService for loading and saving mind map documents.
//
// Domain declines (unknown email, wrong password, expired code, duplicate
// registration) are reported through the return value with a nil error.
// Only storage failures and misconfiguration come back as errors.
package services
