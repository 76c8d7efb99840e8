package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/charlesng35/agm-registration/internal/models"
)

// Lookup outcome statuses returned to portal clients.
const (
	LookupStatusAccountMatch = "account_match"
	LookupStatusCHNMatch     = "chn_match"
	LookupStatusNameMatches  = "name_matches"
	LookupStatusNotFound     = "not_found"
)

const nameMatchLimit = 10

// ShareholderSummary is the public projection of a registry row. Address,
// holdings and the voted flag never leave the lookup endpoint.
type ShareholderSummary struct {
	Name        string `json:"name"`
	ACNO        string `json:"acno"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	CHN         string `json:"chn"`
}

// LookupResult carries one of the four lookup outcomes.
type LookupResult struct {
	Status       string               `json:"status"`
	Shareholder  *ShareholderSummary  `json:"shareholder,omitempty"`
	Shareholders []ShareholderSummary `json:"shareholders,omitempty"`
	Message      string               `json:"message,omitempty"`
}

// LookupService resolves a search term to zero, one, or many shareholders.
type LookupService struct {
	db *gorm.DB
}

// NewLookupService constructs a LookupService.
func NewLookupService(db *gorm.DB) (*LookupService, error) {
	if db == nil {
		return nil, errors.New("lookup service: db is required")
	}
	return &LookupService{db: db}, nil
}

// Search runs the ordered match chain: exact account number for digit-only
// terms, then exact alternate identifier, then a name substring scan. Each
// step returns early on a hit; the alternate-identifier step still runs when
// a digit-only term misses on account number.
func (s *LookupService) Search(ctx context.Context, term string) (*LookupResult, error) {
	ctx = ensureContext(ctx)

	term = strings.TrimSpace(term)
	if term == "" {
		return nil, errors.New("lookup service: search term is required")
	}

	if isDigits(term) {
		var holder models.Shareholder
		err := s.db.WithContext(ctx).Where("acno = ?", term).First(&holder).Error
		switch {
		case err == nil:
			return &LookupResult{
				Status:      LookupStatusAccountMatch,
				Shareholder: summarise(holder),
			}, nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("lookup service: account lookup: %w", err)
		}
	}

	var holder models.Shareholder
	err := s.db.WithContext(ctx).Where("chn = ? AND chn <> ''", term).First(&holder).Error
	switch {
	case err == nil:
		return &LookupResult{
			Status:      LookupStatusCHNMatch,
			Shareholder: summarise(holder),
		}, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("lookup service: chn lookup: %w", err)
	}

	matches, err := s.searchByName(ctx, term)
	if err != nil {
		return nil, err
	}
	if len(matches) > 0 {
		return &LookupResult{
			Status:       LookupStatusNameMatches,
			Shareholders: matches,
		}, nil
	}

	return &LookupResult{
		Status:  LookupStatusNotFound,
		Message: "No matching shareholders found.",
	}, nil
}

// searchByName performs a case-insensitive substring scan over names,
// ranking prefix matches first with the account number as a stable tiebreak
// so repeated searches return identical orderings.
func (s *LookupService) searchByName(ctx context.Context, term string) ([]ShareholderSummary, error) {
	lowered := strings.ToLower(term)

	rank := clause.OrderBy{Expression: clause.Expr{
		SQL:  `CASE WHEN LOWER(name) LIKE ? ESCAPE '\' THEN 0 ELSE 1 END, acno`,
		Vars: []interface{}{prefixPattern(lowered)},
	}}

	var rows []models.Shareholder
	if err := s.db.WithContext(ctx).
		Where(`LOWER(name) LIKE ? ESCAPE '\'`, likePattern(lowered)).
		Clauses(rank).
		Limit(nameMatchLimit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("lookup service: name search: %w", err)
	}

	summaries := make([]ShareholderSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, *summarise(row))
	}
	return summaries, nil
}

func summarise(holder models.Shareholder) *ShareholderSummary {
	return &ShareholderSummary{
		Name:        holder.Name,
		ACNO:        holder.ACNO,
		Email:       holder.Email,
		PhoneNumber: holder.PhoneNumber,
		CHN:         holder.CHN,
	}
}
