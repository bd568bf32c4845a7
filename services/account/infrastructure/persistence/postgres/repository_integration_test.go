//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ghuser/ordermgmt/pkg/database/pgtest"
	accountdomain "github.com/ghuser/ordermgmt/services/account/domain"
	"github.com/ghuser/ordermgmt/services/account/domain/models"
	"github.com/ghuser/ordermgmt/services/account/infrastructure/persistence/postgres"
)

func TestAccountRepository(t *testing.T) {
	db := pgtest.Start(t)
	ctx := context.Background()
	repo := postgres.NewAccountRepository(db)
	now := time.Now().UTC().Truncate(time.Microsecond)

	age := 31
	alice := models.NewAccount("alice", "alice@example.com", "hash", "tok-alice", models.Profile{FirstName: "Alice", Age: &age}, now)
	if err := repo.Create(ctx, alice); err != nil {
		t.Fatalf("create: %v", err)
	}

	t.Run("duplicates are rejected", func(t *testing.T) {
		dupName := models.NewAccount("alice", "other@example.com", "hash", "tok-1", models.Profile{}, now)
		if err := repo.Create(ctx, dupName); !errors.Is(err, accountdomain.ErrUsernameTaken) {
			t.Fatalf("expected ErrUsernameTaken, got %v", err)
		}
		dupEmail := models.NewAccount("alice2", "alice@example.com", "hash", "tok-2", models.Profile{}, now)
		if err := repo.Create(ctx, dupEmail); !errors.Is(err, accountdomain.ErrEmailTaken) {
			t.Fatalf("expected ErrEmailTaken, got %v", err)
		}
	})

	t.Run("get round-trips the profile", func(t *testing.T) {
		got, err := repo.GetByID(ctx, alice.User.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Profile.FirstName != "Alice" || got.Profile.Age == nil || *got.Profile.Age != 31 {
			t.Errorf("unexpected profile: %+v", got.Profile)
		}
		if got.Profile.VerificationToken != "tok-alice" || got.Profile.EmailVerified {
			t.Errorf("unexpected verification state: %+v", got.Profile)
		}
	})

	t.Run("verify consumes the token", func(t *testing.T) {
		got, err := repo.Verify(ctx, "tok-alice")
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if !got.Profile.EmailVerified || got.Profile.VerificationToken != "" {
			t.Errorf("expected verified profile, got %+v", got.Profile)
		}
		if _, err := repo.Verify(ctx, "tok-alice"); !errors.Is(err, accountdomain.ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken on reuse, got %v", err)
		}
	})

	t.Run("sweep", func(t *testing.T) {
		due := models.NewAccount("bob", "bob@example.com", "hash", "tok-bob", models.Profile{}, now.Add(-30*time.Hour))
		expired := models.NewAccount("carol", "carol@example.com", "hash", "tok-carol", models.Profile{}, now.Add(-50*time.Hour))
		fresh := models.NewAccount("dave", "dave@example.com", "hash", "tok-dave", models.Profile{}, now.Add(-time.Hour))
		for _, a := range []*models.Account{due, expired, fresh} {
			if err := repo.Create(ctx, a); err != nil {
				t.Fatalf("create %s: %v", a.User.Username, err)
			}
		}

		got, err := repo.DueForReminder(ctx, now.Add(-24*time.Hour), now.Add(-48*time.Hour))
		if err != nil {
			t.Fatalf("due: %v", err)
		}
		if len(got) != 1 || got[0].User.ID != due.User.ID {
			t.Fatalf("expected only bob due, got %v", got)
		}

		if err := repo.MarkReminded(ctx, due.User.ID, now); err != nil {
			t.Fatalf("mark reminded: %v", err)
		}
		got, err = repo.DueForReminder(ctx, now.Add(-24*time.Hour), now.Add(-48*time.Hour))
		if err != nil {
			t.Fatalf("due: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("expected no accounts after reminder, got %d", len(got))
		}

		n, err := repo.DeactivateUnverified(ctx, now.Add(-48*time.Hour))
		if err != nil {
			t.Fatalf("deactivate: %v", err)
		}
		if n != 1 {
			t.Fatalf("expected 1 deactivated, got %d", n)
		}
		carol, err := repo.GetByID(ctx, expired.User.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if carol.User.IsActive {
			t.Error("expected carol to be inactive")
		}
		if _, err := repo.Verify(ctx, "tok-carol"); !errors.Is(err, accountdomain.ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for deactivated account, got %v", err)
		}
	})
}
