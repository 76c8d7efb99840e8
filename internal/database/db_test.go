package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/agm-registration/internal/models"
)

func TestOpenDefaultsToSQLite(t *testing.T) {
	db, err := Open(Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, sqlDB.Ping())
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
}

func TestAutoMigrateCreatesWorkflowTables(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite"})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))

	for _, model := range []any{
		&models.Shareholder{},
		&models.RegisteredUser{},
		&models.VerificationToken{},
		&models.OutboxEmail{},
	} {
		require.True(t, db.Migrator().HasTable(model))
	}

	// Schema creation must be idempotent across restarts.
	require.NoError(t, AutoMigrate(db))

	token := models.VerificationToken{ACNO: "1", TokenHash: "h", ExpiresAt: time.Now()}
	require.NoError(t, db.Create(&token).Error)
}

func TestAutoMigrateNilHandle(t *testing.T) {
	require.Error(t, AutoMigrate(nil))
}
