package models

import "time"

// VerificationToken is a pending registration confirmation. Only the SHA-256
// hash of the emailed token is stored. The unique index on acno guarantees at
// most one live token per account; re-issuing replaces the previous row.
// Rows are deleted on consumption and swept by the maintenance job once
// expired; an expired row still present is treated as invalid at confirm time.
type VerificationToken struct {
	BaseModel

	ACNO        string    `gorm:"column:acno;uniqueIndex;not null" json:"acno"`
	TokenHash   string    `gorm:"uniqueIndex;not null" json:"-"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	CHN         string    `gorm:"column:chn" json:"chn"`
	ExpiresAt   time.Time `gorm:"index;not null" json:"expires_at"`
}

// Expired reports whether the token is past its expiry at the given instant.
func (t VerificationToken) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}
