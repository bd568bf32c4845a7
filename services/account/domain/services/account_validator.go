// Package services contains stateless domain rules for accounts.
package services

import (
	"fmt"
	"net/mail"
	"time"
	"unicode"

	"github.com/ghuser/ordermgmt/services/account/domain/models"
)

const (
	maxUsernameLength = 150
	maxNameLength     = 150
	minPasswordLength = 8
	// bcrypt ignores input past 72 bytes.
	maxPasswordLength = 72

	// RemindAfter is how long an address may stay unverified before a reminder.
	RemindAfter = 24 * time.Hour
	// DeactivateAfter is how long an address may stay unverified before the
	// account is deactivated.
	DeactivateAfter = 48 * time.Hour
)

// ValidateUsername accepts 1-150 letters, digits and @ . + - _.
func ValidateUsername(s string) error {
	if s == "" || len(s) > maxUsernameLength {
		return fmt.Errorf("username must be 1 to %d characters", maxUsernameLength)
	}
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		switch r {
		case '@', '.', '+', '-', '_':
			continue
		}
		return fmt.Errorf("username contains invalid character %q", r)
	}
	return nil
}

// ValidateEmail requires a bare address without display name.
func ValidateEmail(s string) error {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return fmt.Errorf("email %q is not a valid address", s)
	}
	return nil
}

// ValidatePassword bounds the password length.
func ValidatePassword(s string) error {
	if len(s) < minPasswordLength || len(s) > maxPasswordLength {
		return fmt.Errorf("password must be %d to %d bytes", minPasswordLength, maxPasswordLength)
	}
	return nil
}

// ValidateProfile checks optional personal fields.
func ValidateProfile(p models.Profile) error {
	for _, n := range []string{p.FirstName, p.LastName, p.MiddleName} {
		if len(n) > maxNameLength {
			return fmt.Errorf("names must not exceed %d characters", maxNameLength)
		}
	}
	if p.Age != nil && *p.Age < 0 {
		return fmt.Errorf("age must not be negative")
	}
	return nil
}

// SweepAction is what the verification sweep does with one account.
type SweepAction int

const (
	SweepNone SweepAction = iota
	SweepRemind
	SweepDeactivate
)

// SweepActionFor decides how the verification sweep treats a at now.
// Verified or inactive accounts are left alone; a reminder goes out once.
func SweepActionFor(a *models.Account, now time.Time) SweepAction {
	p := a.Profile
	if p.EmailVerified || !a.User.IsActive || p.VerificationSentAt == nil {
		return SweepNone
	}
	age := now.Sub(*p.VerificationSentAt)
	switch {
	case age >= DeactivateAfter:
		return SweepDeactivate
	case age >= RemindAfter && p.ReminderSentAt == nil:
		return SweepRemind
	default:
		return SweepNone
	}
}
