package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/charlesng35/agm-registration/internal/models"
)

const (
	defaultDirectoryPageSize = 10
	maxDirectoryPageSize     = 100
)

// directorySortColumns is the fixed allow-list of sort keys. Anything else
// falls back to the registration timestamp rather than reaching the database.
var directorySortColumns = map[string]string{
	"registered_at": "registered_at",
	"name":          "name",
	"acno":          "acno",
	"email":         "email",
}

// DirectoryListOptions parameterise a page of the registered-user directory.
type DirectoryListOptions struct {
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
	Search    string
}

// DirectoryService is the paginated, filtered read view over completed
// registrations.
type DirectoryService struct {
	db              *gorm.DB
	defaultPageSize int
	maxPageSize     int
}

// DirectoryOption customises the DirectoryService.
type DirectoryOption func(*DirectoryService)

// WithDirectoryPageSizes overrides the default and maximum page sizes.
func WithDirectoryPageSizes(defaultSize, maxSize int) DirectoryOption {
	return func(s *DirectoryService) {
		if defaultSize > 0 {
			s.defaultPageSize = defaultSize
		}
		if maxSize > 0 {
			s.maxPageSize = maxSize
		}
	}
}

// NewDirectoryService constructs a DirectoryService.
func NewDirectoryService(db *gorm.DB, opts ...DirectoryOption) (*DirectoryService, error) {
	if db == nil {
		return nil, errors.New("directory service: db is required")
	}

	svc := &DirectoryService{
		db:              db,
		defaultPageSize: defaultDirectoryPageSize,
		maxPageSize:     maxDirectoryPageSize,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// List returns one page of registered users plus the unpaginated total.
// Ordering always carries the id as a secondary key so concatenated pages
// enumerate every record exactly once.
func (s *DirectoryService) List(ctx context.Context, opts DirectoryListOptions) ([]models.RegisteredUser, int64, error) {
	ctx = ensureContext(ctx)

	page := opts.Page
	if page <= 0 {
		page = 1
	}
	perPage := opts.PageSize
	if perPage <= 0 {
		perPage = s.defaultPageSize
	}
	if perPage > s.maxPageSize {
		perPage = s.maxPageSize
	}

	query := s.db.WithContext(ctx).Model(&models.RegisteredUser{})

	if term := strings.TrimSpace(opts.Search); term != "" {
		pattern := likePattern(strings.ToLower(term))
		match := `LOWER(name) LIKE @p ESCAPE '\' OR LOWER(acno) LIKE @p ESCAPE '\' OR LOWER(email) LIKE @p ESCAPE '\' OR LOWER(phone_number) LIKE @p ESCAPE '\' OR LOWER(chn) LIKE @p ESCAPE '\'`
		query = query.Where(match, map[string]interface{}{"p": pattern})
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("directory service: count: %w", err)
	}

	var rows []models.RegisteredUser
	if err := query.
		Order(s.orderClause(opts)).
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("directory service: list: %w", err)
	}

	return rows, total, nil
}

func (s *DirectoryService) orderClause(opts DirectoryListOptions) string {
	column, ok := directorySortColumns[strings.ToLower(strings.TrimSpace(opts.SortBy))]
	if !ok {
		column = "registered_at"
	}

	direction := "DESC"
	if strings.EqualFold(strings.TrimSpace(opts.SortOrder), "asc") {
		direction = "ASC"
	}

	return fmt.Sprintf("%s %s, id %s", column, direction, direction)
}
