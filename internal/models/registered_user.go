package models

import "time"

// RegisteredUser is a durable, point-in-time copy of shareholder data taken
// when a confirmation link is consumed. Later registry edits do not propagate.
// The unique index on acno closes the race between the duplicate pre-check
// and the insert: at most one registration per account, enforced by the
// database rather than application reads.
type RegisteredUser struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `json:"name"`
	ACNO         string    `gorm:"column:acno;uniqueIndex;not null" json:"acno"`
	Holdings     string    `json:"holdings"`
	Email        string    `json:"email"`
	PhoneNumber  string    `json:"phone_number"`
	CHN          string    `gorm:"column:chn" json:"chn"`
	RegisteredAt time.Time `gorm:"index;autoCreateTime" json:"registered_at"`
}

// TableName pins the table name so renames of the struct never move data.
func (RegisteredUser) TableName() string { return "registered_users" }
