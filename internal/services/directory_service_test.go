package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/agm-registration/internal/models"
)

func seedRegistrations(t *testing.T, db *gorm.DB, n int) {
	t.Helper()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		user := models.RegisteredUser{
			Name:         fmt.Sprintf("Holder %02d", i),
			ACNO:         fmt.Sprintf("10%03d", i),
			Email:        fmt.Sprintf("holder%02d@example.com", i),
			PhoneNumber:  fmt.Sprintf("+88017%06d", i),
			CHN:          fmt.Sprintf("CHN-%02d", i),
			RegisteredAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(&user).Error)
	}
}

func TestDirectoryPaginationCoversAllRowsExactlyOnce(t *testing.T) {
	db := openServiceTestDB(t)
	seedRegistrations(t, db, 25)

	svc, err := NewDirectoryService(db)
	require.NoError(t, err)

	const perPage = 10
	seen := map[string]bool{}
	var total int64

	for page := 1; page <= 3; page++ {
		rows, count, err := svc.List(context.Background(), DirectoryListOptions{
			Page:     page,
			PageSize: perPage,
			SortBy:   "acno",
			SortOrder: "asc",
		})
		require.NoError(t, err)
		total = count

		for _, row := range rows {
			require.False(t, seen[row.ACNO], "acno %s returned twice", row.ACNO)
			seen[row.ACNO] = true
		}
	}

	require.EqualValues(t, 25, total)
	require.Len(t, seen, 25)

	// ceil(25/10) pages; page 4 is empty.
	rows, _, err := svc.List(context.Background(), DirectoryListOptions{Page: 4, PageSize: perPage})
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestDirectoryDefaultsToNewestFirst(t *testing.T) {
	db := openServiceTestDB(t)
	seedRegistrations(t, db, 3)

	svc, err := NewDirectoryService(db)
	require.NoError(t, err)

	rows, total, err := svc.List(context.Background(), DirectoryListOptions{})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, rows, 3)
	require.Equal(t, "Holder 02", rows[0].Name)
	require.Equal(t, "Holder 00", rows[2].Name)
}

func TestDirectoryFilterMatchesAnyContactField(t *testing.T) {
	db := openServiceTestDB(t)
	seedRegistrations(t, db, 5)

	svc, err := NewDirectoryService(db)
	require.NoError(t, err)

	byName, total, err := svc.List(context.Background(), DirectoryListOptions{Search: "holder 03"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "10003", byName[0].ACNO)

	byCHN, total, err := svc.List(context.Background(), DirectoryListOptions{Search: "chn-04"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "10004", byCHN[0].ACNO)

	byACNO, total, err := svc.List(context.Background(), DirectoryListOptions{Search: "10002"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "holder02@example.com", byACNO[0].Email)
}

func TestDirectorySortFieldAllowList(t *testing.T) {
	db := openServiceTestDB(t)
	seedRegistrations(t, db, 2)

	svc, err := NewDirectoryService(db)
	require.NoError(t, err)

	// Hostile sort input falls back to registered_at instead of reaching
	// the database verbatim.
	rows, _, err := svc.List(context.Background(), DirectoryListOptions{
		SortBy: "registered_at; DROP TABLE registered_users",
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Holder 01", rows[0].Name)

	require.True(t, db.Migrator().HasTable(&models.RegisteredUser{}))
}

func TestDirectoryPageSizeIsCapped(t *testing.T) {
	db := openServiceTestDB(t)
	seedRegistrations(t, db, 3)

	svc, err := NewDirectoryService(db)
	require.NoError(t, err)

	rows, _, err := svc.List(context.Background(), DirectoryListOptions{PageSize: 10_000})
	require.NoError(t, err)
	require.Len(t, rows, 3)
}
