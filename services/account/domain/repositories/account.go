package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/ordermgmt/services/account/domain/models"
)

// AccountRepository is the persistence interface for accounts.
type AccountRepository interface {
	// Create inserts user and profile atomically. Returns domain.ErrUsernameTaken
	// or domain.ErrEmailTaken on conflicts.
	Create(ctx context.Context, a *models.Account) error
	// GetByID returns domain.ErrUserNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	// Verify marks the unverified account holding token as verified and
	// clears the token. Returns domain.ErrInvalidToken if none matches.
	Verify(ctx context.Context, token string) (*models.Account, error)
	// DueForReminder returns active, unverified accounts whose verification
	// email went out in (deactivateBefore, remindBefore] and that have not
	// been reminded yet.
	DueForReminder(ctx context.Context, remindBefore, deactivateBefore time.Time) ([]*models.Account, error)
	// MarkReminded records that a reminder was sent.
	MarkReminded(ctx context.Context, userID uuid.UUID, at time.Time) error
	// DeactivateUnverified deactivates active, unverified accounts whose
	// verification email went out at or before before. Returns the count.
	DeactivateUnverified(ctx context.Context, before time.Time) (int, error)
}
