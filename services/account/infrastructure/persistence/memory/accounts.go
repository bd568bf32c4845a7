// Package memory is an in-process AccountRepository used by tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	accountdomain "github.com/ghuser/ordermgmt/services/account/domain"
	"github.com/ghuser/ordermgmt/services/account/domain/models"
)

// AccountRepository keeps accounts in a map keyed by user ID.
type AccountRepository struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]models.Account
}

// NewAccountRepository returns an empty AccountRepository.
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{accounts: make(map[uuid.UUID]models.Account)}
}

// Put stores a as is, replacing any account with the same ID.
func (r *AccountRepository) Put(a *models.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[a.User.ID] = *a
}

func (r *AccountRepository) Create(_ context.Context, a *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.User.Username == a.User.Username {
			return accountdomain.ErrUsernameTaken
		}
		if existing.User.Email == a.User.Email {
			return accountdomain.ErrEmailTaken
		}
	}
	r.accounts[a.User.ID] = *a
	return nil
}

func (r *AccountRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, accountdomain.ErrUserNotFound
	}
	return &a, nil
}

func (r *AccountRepository) Verify(_ context.Context, token string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, a := range r.accounts {
		if a.Profile.VerificationToken != token || a.Profile.EmailVerified || !a.User.IsActive {
			continue
		}
		a.Profile.EmailVerified = true
		a.Profile.VerificationToken = ""
		r.accounts[id] = a
		return &a, nil
	}
	return nil, accountdomain.ErrInvalidToken
}

func (r *AccountRepository) DueForReminder(_ context.Context, remindBefore, deactivateBefore time.Time) ([]*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Account
	for _, a := range r.accounts {
		sent := a.Profile.VerificationSentAt
		if a.Profile.EmailVerified || !a.User.IsActive || a.Profile.ReminderSentAt != nil || sent == nil {
			continue
		}
		if sent.After(remindBefore) || !sent.After(deactivateBefore) {
			continue
		}
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Profile.VerificationSentAt.Before(*out[j].Profile.VerificationSentAt)
	})
	return out, nil
}

func (r *AccountRepository) MarkReminded(_ context.Context, userID uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[userID]
	if !ok {
		return accountdomain.ErrUserNotFound
	}
	a.Profile.ReminderSentAt = &at
	r.accounts[userID] = a
	return nil
}

func (r *AccountRepository) DeactivateUnverified(_ context.Context, before time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, a := range r.accounts {
		sent := a.Profile.VerificationSentAt
		if a.Profile.EmailVerified || !a.User.IsActive || sent == nil || sent.After(before) {
			continue
		}
		a.User.IsActive = false
		r.accounts[id] = a
		n++
	}
	return n, nil
}
