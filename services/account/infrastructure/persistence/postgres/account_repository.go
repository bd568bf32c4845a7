package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ghuser/ordermgmt/pkg/database"
	accountdomain "github.com/ghuser/ordermgmt/services/account/domain"
	"github.com/ghuser/ordermgmt/services/account/domain/models"
	"github.com/ghuser/ordermgmt/services/account/infrastructure/persistence/postgres/db"
)

const pgUniqueViolation = "23505"

// AccountRepository implements repositories.AccountRepository against PostgreSQL.
type AccountRepository struct {
	db *database.Database
}

// NewAccountRepository returns an AccountRepository backed by the given connection pool.
func NewAccountRepository(d *database.Database) *AccountRepository {
	return &AccountRepository{db: d}
}

// Create inserts the user and its profile in one transaction.
func (r *AccountRepository) Create(ctx context.Context, a *models.Account) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		q := db.New(tx)
		if err := q.InsertUser(ctx, db.InsertUserParams{
			ID:           a.User.ID,
			Username:     a.User.Username,
			Email:        a.User.Email,
			PasswordHash: a.User.PasswordHash,
			IsActive:     a.User.IsActive,
			DateJoined:   a.User.DateJoined,
		}); err != nil {
			if conflict := uniqueError(err); conflict != nil {
				return conflict
			}
			return fmt.Errorf("insert user: %w", err)
		}
		if err := q.InsertProfile(ctx, db.InsertProfileParams{
			UserID:             a.User.ID,
			FirstName:          a.Profile.FirstName,
			LastName:           a.Profile.LastName,
			MiddleName:         a.Profile.MiddleName,
			Age:                nullInt(a.Profile.Age),
			EmailVerified:      a.Profile.EmailVerified,
			VerificationToken:  nullString(a.Profile.VerificationToken),
			VerificationSentAt: nullTime(a.Profile.VerificationSentAt),
		}); err != nil {
			return fmt.Errorf("insert profile: %w", err)
		}
		return nil
	})
}

func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	row, err := db.New(r.db.DB()).GetAccount(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, accountdomain.ErrUserNotFound
		}
		return nil, fmt.Errorf("query account: %w", err)
	}
	return rowToAccount(row), nil
}

// Verify consumes the token and returns the verified account.
func (r *AccountRepository) Verify(ctx context.Context, token string) (*models.Account, error) {
	var out *models.Account
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		q := db.New(tx)
		userID, err := q.VerifyProfile(ctx, token)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return accountdomain.ErrInvalidToken
			}
			return fmt.Errorf("verify profile: %w", err)
		}
		row, err := q.GetAccount(ctx, userID)
		if err != nil {
			return fmt.Errorf("query account: %w", err)
		}
		out = rowToAccount(row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AccountRepository) DueForReminder(ctx context.Context, remindBefore, deactivateBefore time.Time) ([]*models.Account, error) {
	rows, err := db.New(r.db.DB()).ListDueForReminder(ctx, db.ListDueForReminderParams{
		RemindBefore:     remindBefore,
		DeactivateBefore: deactivateBefore,
	})
	if err != nil {
		return nil, fmt.Errorf("query due accounts: %w", err)
	}
	out := make([]*models.Account, len(rows))
	for i, row := range rows {
		out[i] = rowToAccount(row)
	}
	return out, nil
}

func (r *AccountRepository) MarkReminded(ctx context.Context, userID uuid.UUID, at time.Time) error {
	n, err := db.New(r.db.DB()).MarkReminded(ctx, db.MarkRemindedParams{
		UserID:         userID,
		ReminderSentAt: at,
	})
	if err != nil {
		return fmt.Errorf("mark reminded: %w", err)
	}
	if n == 0 {
		return accountdomain.ErrUserNotFound
	}
	return nil
}

func (r *AccountRepository) DeactivateUnverified(ctx context.Context, before time.Time) (int, error) {
	n, err := db.New(r.db.DB()).DeactivateUnverified(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("deactivate unverified: %w", err)
	}
	return int(n), nil
}

// uniqueError maps a unique violation on users to the matching sentinel.
func uniqueError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return nil
	}
	switch {
	case strings.Contains(pgErr.ConstraintName, "username"):
		return accountdomain.ErrUsernameTaken
	case strings.Contains(pgErr.ConstraintName, "email"):
		return accountdomain.ErrEmailTaken
	}
	return nil
}

func rowToAccount(row db.AccountRow) *models.Account {
	u, p := row.AccountUser, row.AccountProfile
	a := &models.Account{
		User: models.User{
			ID:           u.ID,
			Username:     u.Username,
			Email:        u.Email,
			PasswordHash: u.PasswordHash,
			IsActive:     u.IsActive,
			DateJoined:   u.DateJoined.UTC(),
		},
		Profile: models.Profile{
			FirstName:         p.FirstName,
			LastName:          p.LastName,
			MiddleName:        p.MiddleName,
			EmailVerified:     p.EmailVerified,
			VerificationToken: p.VerificationToken.String,
		},
	}
	if p.Age.Valid {
		age := int(p.Age.Int32)
		a.Profile.Age = &age
	}
	if p.VerificationSentAt.Valid {
		t := p.VerificationSentAt.Time.UTC()
		a.Profile.VerificationSentAt = &t
	}
	if p.ReminderSentAt.Valid {
		t := p.ReminderSentAt.Time.UTC()
		a.Profile.ReminderSentAt = &t
	}
	return a
}

func nullInt(v *int) sql.NullInt32 {
	if v == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*v), Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
