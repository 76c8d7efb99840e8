package models

import (
	"time"

	"gorm.io/datatypes"
)

// Outbox email kinds.
const (
	OutboxKindConfirmation = "confirmation"
	OutboxKindWelcome      = "welcome"
)

// Outbox email statuses.
const (
	OutboxStatusPending = "pending"
	OutboxStatusSent    = "sent"
	OutboxStatusFailed  = "failed"
)

// OutboxEmail is a queued notification. Rows are written inside the same
// transaction as the state change they report on, so a mail-channel outage
// can never mask a durable registration. A background dispatcher delivers
// pending rows with bounded retries.
type OutboxEmail struct {
	BaseModel

	Recipient string         `gorm:"not null" json:"recipient"`
	Subject   string         `gorm:"not null" json:"subject"`
	Body      string         `json:"-"`
	HTML      bool           `gorm:"not null;default:false" json:"html"`
	Kind      string         `gorm:"index;not null" json:"kind"`
	Status    string         `gorm:"index;not null;default:pending" json:"status"`
	Attempts  int            `gorm:"not null;default:0" json:"attempts"`
	LastError string         `json:"last_error,omitempty"`
	Metadata  datatypes.JSON `json:"metadata,omitempty"`
	SentAt    *time.Time     `json:"sent_at,omitempty"`
}
