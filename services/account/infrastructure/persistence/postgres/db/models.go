package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type AccountUser struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	IsActive     bool
	DateJoined   time.Time
}

type AccountProfile struct {
	UserID             uuid.UUID
	FirstName          string
	LastName           string
	MiddleName         string
	Age                sql.NullInt32
	EmailVerified      bool
	VerificationToken  sql.NullString
	VerificationSentAt sql.NullTime
	ReminderSentAt     sql.NullTime
}
