package domain

import "errors"

// Sentinel errors for the account domain. Use errors.Is() to check these.
var (
	// ErrUserNotFound indicates the requested account does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameTaken indicates the username is already registered.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidToken indicates no unverified account holds the verification token.
	ErrInvalidToken = errors.New("invalid verification token")

	// ErrInvalidInput indicates registration data violates domain constraints.
	ErrInvalidInput = errors.New("invalid account input")

	// ErrAccountInactive indicates the account was deactivated.
	ErrAccountInactive = errors.New("account is inactive")
)
