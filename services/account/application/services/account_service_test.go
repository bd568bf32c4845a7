package services_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ghuser/ordermgmt/pkg/logger"
	"github.com/ghuser/ordermgmt/pkg/notify"
	appsvcs "github.com/ghuser/ordermgmt/services/account/application/services"
	accountdomain "github.com/ghuser/ordermgmt/services/account/domain"
	"github.com/ghuser/ordermgmt/services/account/domain/models"
	"github.com/ghuser/ordermgmt/services/account/infrastructure/persistence/memory"
)

type recorder struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (r *recorder) Enqueue(_ context.Context, n notify.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

func (r *recorder) all() []notify.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Notification(nil), r.sent...)
}

func newService(t *testing.T) (*appsvcs.AccountService, *memory.AccountRepository, *recorder) {
	t.Helper()
	repo := memory.NewAccountRepository()
	rec := &recorder{}
	return appsvcs.NewAccountService(repo, rec, "https://shop.example.com/", logger.Discard()), repo, rec
}

func registration(username, email string) appsvcs.RegisterInput {
	return appsvcs.RegisterInput{Username: username, Email: email, Password: "correct horse"}
}

// seed stores an unverified account whose verification email went out age ago.
func seed(repo *memory.AccountRepository, username string, age time.Duration) *models.Account {
	a := models.NewAccount(username, username+"@example.com", "hash", "tok-"+username, models.Profile{}, time.Now().Add(-age))
	repo.Put(a)
	return a
}

func TestRegister_HashesPasswordAndSendsLink(t *testing.T) {
	svc, _, rec := newService(t)

	a, err := svc.Register(context.Background(), registration("alice", "alice@example.com"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !a.User.IsActive || a.Profile.EmailVerified {
		t.Errorf("expected active unverified account, got %+v", a)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.User.PasswordHash), []byte("correct horse")); err != nil {
		t.Errorf("password hash does not match: %v", err)
	}

	sent := rec.all()
	if len(sent) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(sent))
	}
	n := sent[0]
	if n.Kind != notify.KindVerifyEmail || n.Recipients[0] != "alice@example.com" {
		t.Errorf("unexpected notification: %+v", n)
	}
	want := "https://shop.example.com/api/verify-email/" + a.Profile.VerificationToken
	if !strings.Contains(n.Body, want) {
		t.Errorf("expected link %q in body %q", want, n.Body)
	}
}

func TestRegister_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		in   appsvcs.RegisterInput
	}{
		{"empty username", registration("", "a@example.com")},
		{"bad username chars", registration("al ice", "a@example.com")},
		{"bad email", registration("alice", "not-an-email")},
		{"short password", appsvcs.RegisterInput{Username: "alice", Email: "a@example.com", Password: "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, rec := newService(t)
			_, err := svc.Register(context.Background(), tt.in)
			if !errors.Is(err, accountdomain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if len(rec.all()) != 0 {
				t.Error("expected no notification for rejected registration")
			}
		})
	}
}

func TestRegister_Duplicates(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, registration("alice", "alice@example.com")); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, registration("alice", "other@example.com")); !errors.Is(err, accountdomain.ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}
	if _, err := svc.Register(ctx, registration("bob", "alice@example.com")); !errors.Is(err, accountdomain.ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestVerify_SingleUse(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	a, err := svc.Register(ctx, registration("alice", "alice@example.com"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	got, err := svc.Verify(ctx, a.Profile.VerificationToken)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !got.Profile.EmailVerified {
		t.Error("expected verified account")
	}
	if _, err := svc.Verify(ctx, a.Profile.VerificationToken); !errors.Is(err, accountdomain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken on reuse, got %v", err)
	}
	if _, err := svc.Verify(ctx, ""); !errors.Is(err, accountdomain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for empty token, got %v", err)
	}
}

func TestGet_InactiveAccount(t *testing.T) {
	svc, repo, _ := newService(t)
	a := seed(repo, "carol", time.Hour)
	a.User.IsActive = false
	repo.Put(a)

	if _, err := svc.Get(context.Background(), a.User.ID); !errors.Is(err, accountdomain.ErrAccountInactive) {
		t.Fatalf("expected ErrAccountInactive, got %v", err)
	}
}

func TestSweep_RemindsOnceAndDeactivates(t *testing.T) {
	svc, repo, rec := newService(t)
	ctx := context.Background()
	fresh := seed(repo, "fresh", time.Hour)
	due := seed(repo, "due", 30*time.Hour)
	expired := seed(repo, "expired", 50*time.Hour)

	res, err := svc.Sweep(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if res.Reminded != 1 || res.Deactivated != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}

	sent := rec.all()
	if len(sent) != 1 || sent[0].Kind != notify.KindVerifyReminder || sent[0].Recipients[0] != due.User.Email {
		t.Fatalf("unexpected notifications: %+v", sent)
	}

	for _, tc := range []struct {
		a      *models.Account
		active bool
	}{{fresh, true}, {due, true}, {expired, false}} {
		got, err := repo.GetByID(ctx, tc.a.User.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.User.IsActive != tc.active {
			t.Errorf("%s: active=%v, want %v", got.User.Username, got.User.IsActive, tc.active)
		}
	}

	res, err = svc.Sweep(ctx)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if res.Reminded != 0 || res.Deactivated != 0 {
		t.Fatalf("second sweep should be a no-op, got %+v", res)
	}
}

func TestSweep_VerifiedAccountsUntouched(t *testing.T) {
	svc, repo, rec := newService(t)
	a := seed(repo, "verified", 72*time.Hour)
	a.Profile.EmailVerified = true
	a.Profile.VerificationToken = ""
	repo.Put(a)

	res, err := svc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if res.Reminded != 0 || res.Deactivated != 0 || len(rec.all()) != 0 {
		t.Fatalf("expected no action, got %+v", res)
	}
}
