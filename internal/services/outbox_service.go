package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/charlesng35/agm-registration/internal/models"
	"github.com/charlesng35/agm-registration/pkg/logger"
	"github.com/charlesng35/agm-registration/pkg/mail"
	"github.com/charlesng35/agm-registration/pkg/metrics"
)

const (
	defaultOutboxBatchSize   = 20
	defaultOutboxMaxAttempts = 5
)

// OutboxOption customises the OutboxService.
type OutboxOption func(*OutboxService)

// WithOutboxMaxAttempts bounds delivery retries before a row is marked failed.
func WithOutboxMaxAttempts(n int) OutboxOption {
	return func(s *OutboxService) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithOutboxBatchSize limits how many rows a single dispatch pass processes.
func WithOutboxBatchSize(n int) OutboxOption {
	return func(s *OutboxService) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithOutboxClock injects a custom time source.
func WithOutboxClock(clock func() time.Time) OutboxOption {
	return func(s *OutboxService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// OutboxService persists outbound emails next to the state transitions that
// produce them and delivers pending rows asynchronously. A disabled or
// failing mail channel leaves rows pending; it never fails a registration.
type OutboxService struct {
	db          *gorm.DB
	mailer      mail.Mailer
	maxAttempts int
	batchSize   int
	now         func() time.Time
	log         *zap.Logger
}

// NewOutboxService constructs an OutboxService. A nil mailer is allowed;
// dispatch then leaves rows pending until a mailer is configured.
func NewOutboxService(db *gorm.DB, mailer mail.Mailer, opts ...OutboxOption) (*OutboxService, error) {
	if db == nil {
		return nil, errors.New("outbox service: db is required")
	}

	service := &OutboxService{
		db:          db,
		mailer:      mailer,
		maxAttempts: defaultOutboxMaxAttempts,
		batchSize:   defaultOutboxBatchSize,
		now:         time.Now,
		log:         logger.WithModule("outbox"),
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// Enqueue stores an email on the provided handle, typically the transaction
// of the state change the email reports on.
func (s *OutboxService) Enqueue(tx *gorm.DB, email models.OutboxEmail) error {
	if tx == nil {
		tx = s.db
	}
	if email.Status == "" {
		email.Status = models.OutboxStatusPending
	}
	if err := tx.Create(&email).Error; err != nil {
		return fmt.Errorf("outbox service: enqueue %s email: %w", email.Kind, err)
	}
	return nil
}

// DispatchPending delivers queued emails oldest-first and returns how many
// were sent. Failures are recorded per row; a row that exhausts its attempts
// is marked failed and never retried.
func (s *OutboxService) DispatchPending(ctx context.Context) (int, error) {
	ctx = ensureContext(ctx)

	if s.mailer == nil {
		return 0, nil
	}

	var batch []models.OutboxEmail
	if err := s.db.WithContext(ctx).
		Where("status = ? AND attempts < ?", models.OutboxStatusPending, s.maxAttempts).
		Order("created_at ASC").
		Limit(s.batchSize).
		Find(&batch).Error; err != nil {
		return 0, fmt.Errorf("outbox service: load pending: %w", err)
	}

	sent := 0
	for i := range batch {
		email := &batch[i]

		sendErr := s.mailer.Send(ctx, mail.Message{
			To:      email.Recipient,
			Subject: email.Subject,
			Body:    email.Body,
			HTML:    email.HTML,
		})
		if errors.Is(sendErr, mail.ErrSMTPDisabled) {
			// Nothing can be delivered this pass; leave the queue untouched.
			return sent, nil
		}

		if sendErr != nil {
			if err := s.recordFailure(ctx, email, sendErr); err != nil {
				return sent, err
			}
			continue
		}

		now := s.now()
		if err := s.db.WithContext(ctx).Model(email).Updates(map[string]any{
			"status":     models.OutboxStatusSent,
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": "",
			"sent_at":    now,
		}).Error; err != nil {
			return sent, fmt.Errorf("outbox service: mark sent: %w", err)
		}

		metrics.OutboxEmails.WithLabelValues(email.Kind, "sent").Inc()
		sent++
	}

	return sent, nil
}

func (s *OutboxService) recordFailure(ctx context.Context, email *models.OutboxEmail, sendErr error) error {
	attempts := email.Attempts + 1
	status := models.OutboxStatusPending
	result := "retry"
	if attempts >= s.maxAttempts {
		status = models.OutboxStatusFailed
		result = "failed"
	}

	s.log.Warn("email delivery failed",
		zap.String("kind", email.Kind),
		zap.String("recipient", email.Recipient),
		zap.Int("attempts", attempts),
		zap.Error(sendErr),
	)

	if err := s.db.WithContext(ctx).Model(email).Updates(map[string]any{
		"status":     status,
		"attempts":   attempts,
		"last_error": sendErr.Error(),
	}).Error; err != nil {
		return fmt.Errorf("outbox service: record failure: %w", err)
	}

	metrics.OutboxEmails.WithLabelValues(email.Kind, result).Inc()
	return nil
}

func outboxMetadata(acno string) datatypes.JSON {
	payload, err := json.Marshal(map[string]string{"acno": acno})
	if err != nil {
		return datatypes.JSON(`{}`)
	}
	return datatypes.JSON(payload)
}
