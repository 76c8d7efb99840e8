package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openModelTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&Shareholder{},
		&RegisteredUser{},
		&VerificationToken{},
		&OutboxEmail{},
	))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func TestBaseModelGeneratesUUID(t *testing.T) {
	db := openModelTestDB(t)

	token := VerificationToken{
		ACNO:      "12345",
		TokenHash: "hash-1",
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}
	require.NoError(t, db.Create(&token).Error)
	require.NotEmpty(t, token.ID)
}

func TestRegisteredUserACNOIsUnique(t *testing.T) {
	db := openModelTestDB(t)

	first := RegisteredUser{Name: "Asha Rahman", ACNO: "12345"}
	require.NoError(t, db.Create(&first).Error)
	require.NotZero(t, first.ID)

	dup := RegisteredUser{Name: "Asha Rahman", ACNO: "12345"}
	require.Error(t, db.Create(&dup).Error)
}

func TestVerificationTokenACNOIsUnique(t *testing.T) {
	db := openModelTestDB(t)

	expires := time.Now().Add(15 * time.Minute)
	require.NoError(t, db.Create(&VerificationToken{ACNO: "777", TokenHash: "h1", ExpiresAt: expires}).Error)
	require.Error(t, db.Create(&VerificationToken{ACNO: "777", TokenHash: "h2", ExpiresAt: expires}).Error)
}

func TestVerificationTokenExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	token := VerificationToken{ExpiresAt: now.Add(15 * time.Minute)}

	require.False(t, token.Expired(now))
	require.False(t, token.Expired(now.Add(15*time.Minute)))
	require.True(t, token.Expired(now.Add(16*time.Minute)))
}
