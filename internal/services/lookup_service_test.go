package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/agm-registration/internal/models"
)

func TestSearchByAccountNumber(t *testing.T) {
	db := openServiceTestDB(t)
	seedShareholder(t, db, models.Shareholder{
		ACNO:        "12345",
		Name:        "Asha Rahman",
		Address:     "12 Lake Road",
		Holdings:    "1,500",
		PhoneNumber: "+8801711111111",
		Email:       "asha@example.com",
		CHN:         "CHN-900",
	})

	svc, err := NewLookupService(db)
	require.NoError(t, err)

	result, err := svc.Search(context.Background(), "12345")
	require.NoError(t, err)
	require.Equal(t, LookupStatusAccountMatch, result.Status)
	require.NotNil(t, result.Shareholder)
	require.Equal(t, "12345", result.Shareholder.ACNO)
	require.Equal(t, "Asha Rahman", result.Shareholder.Name)
	require.Equal(t, "CHN-900", result.Shareholder.CHN)
	require.Empty(t, result.Shareholders)
}

func TestSearchDigitTermFallsBackToCHN(t *testing.T) {
	db := openServiceTestDB(t)
	// chn happens to be numeric, so a digit-only term that misses on acno
	// must still reach the alternate-identifier step.
	seedShareholder(t, db, models.Shareholder{ACNO: "555", Name: "Farid Kabir", CHN: "99012"})

	svc, err := NewLookupService(db)
	require.NoError(t, err)

	result, err := svc.Search(context.Background(), "99012")
	require.NoError(t, err)
	require.Equal(t, LookupStatusCHNMatch, result.Status)
	require.Equal(t, "555", result.Shareholder.ACNO)
}

func TestSearchByCHN(t *testing.T) {
	db := openServiceTestDB(t)
	seedShareholder(t, db, models.Shareholder{ACNO: "100", Name: "Farid Kabir", CHN: "CHN-42"})

	svc, err := NewLookupService(db)
	require.NoError(t, err)

	result, err := svc.Search(context.Background(), "CHN-42")
	require.NoError(t, err)
	require.Equal(t, LookupStatusCHNMatch, result.Status)
	require.Equal(t, "100", result.Shareholder.ACNO)
}

func TestSearchByNameRanksPrefixFirst(t *testing.T) {
	db := openServiceTestDB(t)
	seedShareholder(t, db, models.Shareholder{ACNO: "1", Name: "Rahim Uddin"})
	seedShareholder(t, db, models.Shareholder{ACNO: "2", Name: "Abdur Rahim"})
	seedShareholder(t, db, models.Shareholder{ACNO: "3", Name: "rahima Begum"})

	svc, err := NewLookupService(db)
	require.NoError(t, err)

	result, err := svc.Search(context.Background(), "rahim")
	require.NoError(t, err)
	require.Equal(t, LookupStatusNameMatches, result.Status)
	require.Len(t, result.Shareholders, 3)

	// Prefix matches lead, ordered by acno; interior match trails.
	require.Equal(t, "1", result.Shareholders[0].ACNO)
	require.Equal(t, "3", result.Shareholders[1].ACNO)
	require.Equal(t, "2", result.Shareholders[2].ACNO)
}

func TestSearchByNameCapsAtTen(t *testing.T) {
	db := openServiceTestDB(t)
	for i := 0; i < 15; i++ {
		seedShareholder(t, db, models.Shareholder{
			ACNO: string(rune('a' + i)),
			Name: "Common Holder",
		})
	}

	svc, err := NewLookupService(db)
	require.NoError(t, err)

	result, err := svc.Search(context.Background(), "common")
	require.NoError(t, err)
	require.Equal(t, LookupStatusNameMatches, result.Status)
	require.Len(t, result.Shareholders, 10)
}

func TestSearchNotFound(t *testing.T) {
	db := openServiceTestDB(t)
	seedShareholder(t, db, models.Shareholder{ACNO: "1", Name: "Asha Rahman"})

	svc, err := NewLookupService(db)
	require.NoError(t, err)

	result, err := svc.Search(context.Background(), "nobody")
	require.NoError(t, err)
	require.Equal(t, LookupStatusNotFound, result.Status)
	require.NotEmpty(t, result.Message)
}

func TestSearchRejectsEmptyTerm(t *testing.T) {
	db := openServiceTestDB(t)

	svc, err := NewLookupService(db)
	require.NoError(t, err)

	_, err = svc.Search(context.Background(), "   ")
	require.Error(t, err)
}

func TestSearchLikeWildcardsAreLiteral(t *testing.T) {
	db := openServiceTestDB(t)
	seedShareholder(t, db, models.Shareholder{ACNO: "1", Name: "Percent Holder"})

	svc, err := NewLookupService(db)
	require.NoError(t, err)

	result, err := svc.Search(context.Background(), "%")
	require.NoError(t, err)
	require.Equal(t, LookupStatusNotFound, result.Status)
}

func TestSearchProjectionOmitsInternalFields(t *testing.T) {
	db := openServiceTestDB(t)
	seedShareholder(t, db, models.Shareholder{
		ACNO:     "12345",
		Name:     "Asha Rahman",
		Address:  "12 Lake Road",
		Holdings: "1,500",
		HasVoted: true,
	})

	svc, err := NewLookupService(db)
	require.NoError(t, err)

	result, err := svc.Search(context.Background(), "12345")
	require.NoError(t, err)

	// The summary type has no address/holdings/voted fields; spot-check the
	// populated projection instead of relying on reflection.
	require.Equal(t, &ShareholderSummary{
		Name: "Asha Rahman",
		ACNO: "12345",
	}, result.Shareholder)
}
