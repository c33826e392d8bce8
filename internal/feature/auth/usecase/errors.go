// Package usecase implements the business logic for the auth feature.
package usecase

import "errors"

var (
	// ErrUserNotFound is returned when a user cannot be found by email.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists is returned when attempting to create a user with an email that already exists.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrPasswordTooLong is returned when a password exceeds the 72 bytes bcrypt can hash.
	ErrPasswordTooLong = errors.New("password too long")

	// ErrInvalidCredentials is returned when the email/password pair does not match a user.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidToken is returned when a bearer token is malformed, has a bad
	// signature, uses an unexpected algorithm, or has expired.
	ErrInvalidToken = errors.New("invalid token")

	// ErrUnknownIdentity is returned when a token is well-formed and signed but
	// its subject no longer resolves to a user.
	ErrUnknownIdentity = errors.New("token subject does not resolve to a user")

	// ErrIdentityVerificationFailed is returned for any failure of the external
	// identity login flow. The cause is wrapped for logging only.
	ErrIdentityVerificationFailed = errors.New("identity verification failed")
)
