package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const insertUser = `-- name: InsertUser :exec
INSERT INTO users (id, username, email, password_hash, is_active, date_joined)
VALUES ($1, $2, $3, $4, $5, $6)
`

type InsertUserParams struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	IsActive     bool
	DateJoined   time.Time
}

func (q *Queries) InsertUser(ctx context.Context, arg InsertUserParams) error {
	_, err := q.db.ExecContext(ctx, insertUser,
		arg.ID,
		arg.Username,
		arg.Email,
		arg.PasswordHash,
		arg.IsActive,
		arg.DateJoined,
	)
	return err
}

const insertProfile = `-- name: InsertProfile :exec
INSERT INTO profiles (user_id, first_name, last_name, middle_name, age, email_verified, verification_token, verification_sent_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

type InsertProfileParams struct {
	UserID             uuid.UUID
	FirstName          string
	LastName           string
	MiddleName         string
	Age                sql.NullInt32
	EmailVerified      bool
	VerificationToken  sql.NullString
	VerificationSentAt sql.NullTime
}

func (q *Queries) InsertProfile(ctx context.Context, arg InsertProfileParams) error {
	_, err := q.db.ExecContext(ctx, insertProfile,
		arg.UserID,
		arg.FirstName,
		arg.LastName,
		arg.MiddleName,
		arg.Age,
		arg.EmailVerified,
		arg.VerificationToken,
		arg.VerificationSentAt,
	)
	return err
}

const accountColumns = `u.id, u.username, u.email, u.password_hash, u.is_active, u.date_joined,
       p.user_id, p.first_name, p.last_name, p.middle_name, p.age, p.email_verified,
       p.verification_token, p.verification_sent_at, p.reminder_sent_at`

type AccountRow struct {
	AccountUser    AccountUser
	AccountProfile AccountProfile
}

func scanAccount(s interface{ Scan(...any) error }) (AccountRow, error) {
	var i AccountRow
	err := s.Scan(
		&i.AccountUser.ID,
		&i.AccountUser.Username,
		&i.AccountUser.Email,
		&i.AccountUser.PasswordHash,
		&i.AccountUser.IsActive,
		&i.AccountUser.DateJoined,
		&i.AccountProfile.UserID,
		&i.AccountProfile.FirstName,
		&i.AccountProfile.LastName,
		&i.AccountProfile.MiddleName,
		&i.AccountProfile.Age,
		&i.AccountProfile.EmailVerified,
		&i.AccountProfile.VerificationToken,
		&i.AccountProfile.VerificationSentAt,
		&i.AccountProfile.ReminderSentAt,
	)
	return i, err
}

const getAccount = `-- name: GetAccount :one
SELECT ` + accountColumns + `
FROM users u JOIN profiles p ON p.user_id = u.id
WHERE u.id = $1
`

func (q *Queries) GetAccount(ctx context.Context, id uuid.UUID) (AccountRow, error) {
	return scanAccount(q.db.QueryRowContext(ctx, getAccount, id))
}

const verifyProfile = `-- name: VerifyProfile :one
UPDATE profiles p
SET email_verified = TRUE, verification_token = NULL
FROM users u
WHERE u.id = p.user_id
  AND p.verification_token = $1
  AND NOT p.email_verified
  AND u.is_active
RETURNING p.user_id
`

func (q *Queries) VerifyProfile(ctx context.Context, token string) (uuid.UUID, error) {
	row := q.db.QueryRowContext(ctx, verifyProfile, token)
	var userID uuid.UUID
	err := row.Scan(&userID)
	return userID, err
}

const listDueForReminder = `-- name: ListDueForReminder :many
SELECT ` + accountColumns + `
FROM users u JOIN profiles p ON p.user_id = u.id
WHERE u.is_active
  AND NOT p.email_verified
  AND p.reminder_sent_at IS NULL
  AND p.verification_sent_at <= $1
  AND p.verification_sent_at > $2
ORDER BY p.verification_sent_at
`

type ListDueForReminderParams struct {
	RemindBefore     time.Time
	DeactivateBefore time.Time
}

func (q *Queries) ListDueForReminder(ctx context.Context, arg ListDueForReminderParams) ([]AccountRow, error) {
	rows, err := q.db.QueryContext(ctx, listDueForReminder, arg.RemindBefore, arg.DeactivateBefore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AccountRow
	for rows.Next() {
		i, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const markReminded = `-- name: MarkReminded :execrows
UPDATE profiles SET reminder_sent_at = $2
WHERE user_id = $1
`

type MarkRemindedParams struct {
	UserID         uuid.UUID
	ReminderSentAt time.Time
}

func (q *Queries) MarkReminded(ctx context.Context, arg MarkRemindedParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, markReminded, arg.UserID, arg.ReminderSentAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deactivateUnverified = `-- name: DeactivateUnverified :execrows
UPDATE users u SET is_active = FALSE
FROM profiles p
WHERE p.user_id = u.id
  AND u.is_active
  AND NOT p.email_verified
  AND p.verification_sent_at <= $1
`

func (q *Queries) DeactivateUnverified(ctx context.Context, before time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, deactivateUnverified, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
