package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/charlesng35/agm-registration/internal/models"
	"github.com/charlesng35/agm-registration/pkg/crypto"
	"github.com/charlesng35/agm-registration/pkg/metrics"
)

const (
	defaultTokenExpiry = 15 * time.Minute
	defaultTokenBytes  = 32
)

// RegistrationOption customises the RegistrationService.
type RegistrationOption func(*RegistrationService)

// WithConfirmBaseURL sets the base URL embedded in confirmation links. The
// token is appended as the final path segment.
func WithConfirmBaseURL(url string) RegistrationOption {
	return func(s *RegistrationService) {
		s.confirmBaseURL = strings.TrimRight(url, "/")
	}
}

// WithTokenExpiry overrides the confirmation token lifetime.
func WithTokenExpiry(d time.Duration) RegistrationOption {
	return func(s *RegistrationService) {
		if d > 0 {
			s.tokenExpiry = d
		}
	}
}

// WithTokenLength adjusts the number of random bytes in generated tokens.
func WithTokenLength(length int) RegistrationOption {
	return func(s *RegistrationService) {
		if length > 0 {
			s.tokenLength = length
		}
	}
}

// WithRegistrationClock injects a custom time source.
func WithRegistrationClock(clock func() time.Time) RegistrationOption {
	return func(s *RegistrationService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// RegistrationService drives the confirmation workflow: issue a time-limited
// token, consume it exactly once, and materialise a registered-user record.
// Emails are enqueued on the outbox inside the same transaction as the state
// change, so notification delivery never gates the workflow outcome.
type RegistrationService struct {
	db             *gorm.DB
	outbox         *OutboxService
	confirmBaseURL string
	tokenExpiry    time.Duration
	tokenLength    int
	now            func() time.Time
}

// NewRegistrationService constructs a RegistrationService.
func NewRegistrationService(db *gorm.DB, outbox *OutboxService, opts ...RegistrationOption) (*RegistrationService, error) {
	if db == nil {
		return nil, errors.New("registration service: db is required")
	}
	if outbox == nil {
		return nil, errors.New("registration service: outbox is required")
	}

	service := &RegistrationService{
		db:          db,
		outbox:      outbox,
		tokenExpiry: defaultTokenExpiry,
		tokenLength: defaultTokenBytes,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// IssueInput carries the caller-supplied fields for issuing a confirmation.
// Email and phone are persisted onto the token verbatim; the confirmation
// email itself always goes to the registry address.
type IssueInput struct {
	ACNO        string
	Email       string
	PhoneNumber string
}

// IssueConfirmation starts the registration workflow for an account number.
// It rejects accounts that already registered, generates a fresh token
// (replacing any earlier pending one), and enqueues the confirmation email.
func (s *RegistrationService) IssueConfirmation(ctx context.Context, input IssueInput) error {
	ctx = ensureContext(ctx)

	acno := strings.TrimSpace(input.ACNO)
	if acno == "" {
		return errors.New("registration service: account number is required")
	}

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.RegisteredUser{}).
		Where("acno = ?", acno).
		Count(&count).Error; err != nil {
		return fmt.Errorf("registration service: duplicate check: %w", err)
	}
	if count > 0 {
		metrics.RegistrationEvents.WithLabelValues("issued", "rejected").Inc()
		return ErrAlreadyRegistered
	}

	holder, err := s.fetchShareholder(ctx, acno)
	if err != nil {
		return err
	}

	token, err := crypto.GenerateToken(s.tokenLength)
	if err != nil {
		return fmt.Errorf("registration service: generate token: %w", err)
	}

	now := s.now()
	pending := models.VerificationToken{
		ACNO:        acno,
		TokenHash:   crypto.HashToken(token),
		Email:       strings.TrimSpace(input.Email),
		PhoneNumber: strings.TrimSpace(input.PhoneNumber),
		CHN:         holder.CHN,
		ExpiresAt:   now.Add(s.tokenExpiry),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Re-issuing replaces the previous pending token; the unique index
		// on acno closes the window between delete and create.
		if err := tx.Where("acno = ?", acno).
			Delete(&models.VerificationToken{}).Error; err != nil {
			return fmt.Errorf("registration service: replace pending token: %w", err)
		}

		if err := tx.Create(&pending).Error; err != nil {
			return fmt.Errorf("registration service: create token: %w", err)
		}

		return s.outbox.Enqueue(tx, confirmationEmail(holder, s.confirmLink(token)))
	})
	if err != nil {
		metrics.RegistrationEvents.WithLabelValues("issued", "error").Inc()
		return err
	}

	metrics.RegistrationEvents.WithLabelValues("issued", "success").Inc()
	return nil
}

// Confirm consumes a confirmation token. Unknown and expired tokens fail the
// same way on purpose. On success exactly one RegisteredUser row is created,
// the token row is deleted, and the welcome email is enqueued, all in one
// transaction.
func (s *RegistrationService) Confirm(ctx context.Context, token string) (*models.RegisteredUser, error) {
	ctx = ensureContext(ctx)

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenInvalid
	}

	var pending models.VerificationToken
	if err := s.db.WithContext(ctx).
		Where("token_hash = ?", crypto.HashToken(token)).
		First(&pending).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.RegistrationEvents.WithLabelValues("confirmed", "rejected").Inc()
			return nil, ErrTokenInvalid
		}
		metrics.RegistrationEvents.WithLabelValues("confirmed", "error").Inc()
		return nil, fmt.Errorf("registration service: find token: %w", err)
	}

	if pending.Expired(s.now()) {
		// Left in place for the maintenance sweep; lazy invalidation is
		// enough for correctness.
		metrics.RegistrationEvents.WithLabelValues("confirmed", "rejected").Inc()
		return nil, ErrTokenInvalid
	}

	holder, err := s.fetchShareholder(ctx, pending.ACNO)
	if err != nil {
		return nil, err
	}

	registered := models.RegisteredUser{
		Name:         holder.Name,
		ACNO:         holder.ACNO,
		Holdings:     holder.Holdings,
		Email:        holder.Email,
		PhoneNumber:  holder.PhoneNumber,
		CHN:          holder.CHN,
		RegisteredAt: s.now(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&registered).Error; err != nil {
			if isUniqueConstraintError(err) {
				return ErrAlreadyRegistered
			}
			return fmt.Errorf("registration service: create registered user: %w", err)
		}

		if err := tx.Delete(&models.VerificationToken{}, "id = ?", pending.ID).Error; err != nil {
			return fmt.Errorf("registration service: consume token: %w", err)
		}

		return s.outbox.Enqueue(tx, welcomeEmail(holder))
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyRegistered) {
			metrics.RegistrationEvents.WithLabelValues("confirmed", "rejected").Inc()
		} else {
			metrics.RegistrationEvents.WithLabelValues("confirmed", "error").Inc()
		}
		return nil, err
	}

	metrics.RegistrationEvents.WithLabelValues("confirmed", "success").Inc()
	return &registered, nil
}

func (s *RegistrationService) fetchShareholder(ctx context.Context, acno string) (*models.Shareholder, error) {
	var holder models.Shareholder
	if err := s.db.WithContext(ctx).Where("acno = ?", acno).First(&holder).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShareholderNotFound
		}
		return nil, fmt.Errorf("registration service: fetch shareholder: %w", err)
	}
	return &holder, nil
}

func (s *RegistrationService) confirmLink(token string) string {
	if s.confirmBaseURL == "" {
		return token
	}
	return s.confirmBaseURL + "/" + token
}

func confirmationEmail(holder *models.Shareholder, link string) models.OutboxEmail {
	body := fmt.Sprintf(`<h2>E-Voting Registration</h2>
<p>Hello %s,</p>
<p>Click the button below to confirm your registration:</p>
<a href="%s" style="background-color:#1075bf;padding:12px 20px;color:#fff;text-decoration:none;border-radius:5px;">Confirm Registration</a>
<p>If you did not request this, just ignore this email.</p>`,
		html.EscapeString(holder.Name), link)

	return models.OutboxEmail{
		Recipient: holder.Email,
		Subject:   "Confirm Your Registration",
		Body:      body,
		HTML:      true,
		Kind:      models.OutboxKindConfirmation,
		Status:    models.OutboxStatusPending,
		Metadata:  outboxMetadata(holder.ACNO),
	}
}

func welcomeEmail(holder *models.Shareholder) models.OutboxEmail {
	body := fmt.Sprintf(`<h2>Hello %s,</h2>
<p>You have successfully registered for the upcoming e-voting session and annual general meeting.</p>
<p>Your account is now active.</p>
<h3>Voting instructions:</h3>
<ul>
  <li>You will receive a meeting link at this address before the session starts.</li>
  <li>Join using only your registered email address: <strong>%s</strong></li>
</ul>
<p>Thank you for participating!</p>`,
		html.EscapeString(holder.Name), html.EscapeString(holder.Email))

	return models.OutboxEmail{
		Recipient: holder.Email,
		Subject:   "Successfully Registered for Voting",
		Body:      body,
		HTML:      true,
		Kind:      models.OutboxKindWelcome,
		Status:    models.OutboxStatusPending,
		Metadata:  outboxMetadata(holder.ACNO),
	}
}
