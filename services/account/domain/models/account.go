package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the login identity of a buyer.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	IsActive     bool
	DateJoined   time.Time
}

// Profile holds personal details and email verification state.
// VerificationToken is empty once the address is verified.
type Profile struct {
	FirstName          string
	LastName           string
	MiddleName         string
	Age                *int
	EmailVerified      bool
	VerificationToken  string
	VerificationSentAt *time.Time
	ReminderSentAt     *time.Time
}

// Account is a user together with its profile. The user ID doubles as the
// buyer ID on orders.
type Account struct {
	User    User
	Profile Profile
}

// NewAccount constructs an active, unverified account whose verification
// email is considered sent at now.
func NewAccount(username, email, passwordHash, token string, profile Profile, now time.Time) *Account {
	now = now.UTC()
	profile.EmailVerified = false
	profile.VerificationToken = token
	profile.VerificationSentAt = &now
	profile.ReminderSentAt = nil
	return &Account{
		User: User{
			ID:           uuid.New(),
			Username:     username,
			Email:        email,
			PasswordHash: passwordHash,
			IsActive:     true,
			DateJoined:   now,
		},
		Profile: profile,
	}
}
