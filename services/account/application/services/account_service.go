package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ghuser/ordermgmt/pkg/logger"
	"github.com/ghuser/ordermgmt/pkg/notify"
	accountdomain "github.com/ghuser/ordermgmt/services/account/domain"
	"github.com/ghuser/ordermgmt/services/account/domain/models"
	"github.com/ghuser/ordermgmt/services/account/domain/repositories"
	domainsvcs "github.com/ghuser/ordermgmt/services/account/domain/services"
)

// RegisterInput carries a registration request.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Profile  models.Profile
}

// SweepResult counts what one verification sweep did.
type SweepResult struct {
	Reminded    int `json:"reminded"`
	Deactivated int `json:"deactivated"`
}

// AccountService registers buyers and drives email verification.
type AccountService struct {
	repo     repositories.AccountRepository
	notifier notify.Dispatcher
	siteURL  string
	log      logger.Logger
	now      func() time.Time
}

// NewAccountService returns an AccountService. siteURL is the public base URL
// verification links point at.
func NewAccountService(repo repositories.AccountRepository, notifier notify.Dispatcher, siteURL string, log logger.Logger) *AccountService {
	if notifier == nil {
		notifier = notify.Nop
	}
	return &AccountService{
		repo:     repo,
		notifier: notify.Safe(notifier, log, nil),
		siteURL:  strings.TrimRight(siteURL, "/"),
		log:      log,
		now:      time.Now,
	}
}

// Register creates an unverified account and emails a verification link.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.Account, error) {
	if err := validateRegistration(in); err != nil {
		return nil, fmt.Errorf("%w: %w", accountdomain.ErrInvalidInput, err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	a := models.NewAccount(in.Username, in.Email, string(hash), uuid.NewString(), in.Profile, s.now())
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.notifier.Enqueue(ctx, s.verificationNotification(notify.KindVerifyEmail, a))
	s.log.InfoContext(ctx, "account registered", "user_id", a.User.ID, "username", a.User.Username)
	return a, nil
}

// Verify confirms the email address holding token. The token is single use.
func (s *AccountService) Verify(ctx context.Context, token string) (*models.Account, error) {
	if token == "" {
		return nil, accountdomain.ErrInvalidToken
	}
	a, err := s.repo.Verify(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("verify email: %w", err)
	}
	s.log.InfoContext(ctx, "email verified", "user_id", a.User.ID)
	return a, nil
}

// Get returns the account of userID. Deactivated accounts yield
// ErrAccountInactive.
func (s *AccountService) Get(ctx context.Context, userID uuid.UUID) (*models.Account, error) {
	a, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	if !a.User.IsActive {
		return nil, accountdomain.ErrAccountInactive
	}
	return a, nil
}

// SendReminders emails a one-time reminder to every account that has been
// unverified for a day but not yet two.
func (s *AccountService) SendReminders(ctx context.Context) (int, error) {
	now := s.now().UTC()
	due, err := s.repo.DueForReminder(ctx, now.Add(-domainsvcs.RemindAfter), now.Add(-domainsvcs.DeactivateAfter))
	if err != nil {
		return 0, fmt.Errorf("find accounts due for reminder: %w", err)
	}

	sent := 0
	for _, a := range due {
		if domainsvcs.SweepActionFor(a, now) != domainsvcs.SweepRemind {
			continue
		}
		if err := s.repo.MarkReminded(ctx, a.User.ID, now); err != nil {
			return sent, fmt.Errorf("mark reminded %s: %w", a.User.ID, err)
		}
		s.notifier.Enqueue(ctx, s.verificationNotification(notify.KindVerifyReminder, a))
		sent++
	}
	if sent > 0 {
		s.log.InfoContext(ctx, "verification reminders sent", "count", sent)
	}
	return sent, nil
}

// DeactivateExpired deactivates accounts left unverified for two days.
func (s *AccountService) DeactivateExpired(ctx context.Context) (int, error) {
	n, err := s.repo.DeactivateUnverified(ctx, s.now().UTC().Add(-domainsvcs.DeactivateAfter))
	if err != nil {
		return 0, fmt.Errorf("deactivate unverified accounts: %w", err)
	}
	if n > 0 {
		s.log.InfoContext(ctx, "unverified accounts deactivated", "count", n)
	}
	return n, nil
}

// Sweep runs SendReminders then DeactivateExpired.
func (s *AccountService) Sweep(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	var err error
	if res.Reminded, err = s.SendReminders(ctx); err != nil {
		return res, err
	}
	if res.Deactivated, err = s.DeactivateExpired(ctx); err != nil {
		return res, err
	}
	return res, nil
}

func (s *AccountService) verificationNotification(kind notify.Kind, a *models.Account) notify.Notification {
	link := fmt.Sprintf("%s/api/verify-email/%s", s.siteURL, a.Profile.VerificationToken)
	subject, body := "Confirm your email address", "Follow the link to confirm your email address: "+link
	if kind == notify.KindVerifyReminder {
		subject = "Reminder: confirm your email address"
		body = "Please confirm your email address by following the link: " + link +
			"\n\nUnconfirmed accounts are deactivated two days after registration."
	}
	return notify.Notification{
		Kind:       kind,
		Subject:    subject,
		Body:       body,
		Recipients: []string{a.User.Email},
	}
}

func validateRegistration(in RegisterInput) error {
	if err := domainsvcs.ValidateUsername(in.Username); err != nil {
		return err
	}
	if err := domainsvcs.ValidateEmail(in.Email); err != nil {
		return err
	}
	if err := domainsvcs.ValidatePassword(in.Password); err != nil {
		return err
	}
	return domainsvcs.ValidateProfile(in.Profile)
}
