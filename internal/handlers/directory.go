package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/agm-registration/internal/services"
	"github.com/charlesng35/agm-registration/pkg/errors"
	"github.com/charlesng35/agm-registration/pkg/logger"
	"github.com/charlesng35/agm-registration/pkg/response"
)

// DirectoryHandler serves the registered-user directory.
type DirectoryHandler struct {
	svc             *services.DirectoryService
	log             *zap.Logger
	defaultPageSize int
	maxPageSize     int
}

// DirectoryOption customises the DirectoryHandler.
type DirectoryOption func(*DirectoryHandler)

// WithDirectoryPageSizes overrides the default and maximum page sizes.
func WithDirectoryPageSizes(defaultSize, maxSize int) DirectoryOption {
	return func(h *DirectoryHandler) {
		if defaultSize > 0 {
			h.defaultPageSize = defaultSize
		}
		if maxSize > 0 {
			h.maxPageSize = maxSize
		}
	}
}

// NewDirectoryHandler constructs a DirectoryHandler.
func NewDirectoryHandler(db *gorm.DB, opts ...DirectoryOption) (*DirectoryHandler, error) {
	h := &DirectoryHandler{
		log:             logger.WithModule("handlers.directory"),
		defaultPageSize: 10,
		maxPageSize:     100,
	}
	for _, opt := range opts {
		opt(h)
	}

	svc, err := services.NewDirectoryService(db,
		services.WithDirectoryPageSizes(h.defaultPageSize, h.maxPageSize))
	if err != nil {
		return nil, err
	}
	h.svc = svc
	return h, nil
}

// GET /api/registered-users
func (h *DirectoryHandler) List(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	if page <= 0 {
		page = 1
	}
	perPage := parseIntQuery(c, "pageSize", h.defaultPageSize)
	if perPage <= 0 {
		perPage = h.defaultPageSize
	}
	if perPage > h.maxPageSize {
		perPage = h.maxPageSize
	}

	opts := services.DirectoryListOptions{
		Page:      page,
		PageSize:  perPage,
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
		Search:    c.Query("search"),
	}

	users, total, err := h.svc.List(requestContext(c), opts)
	if err != nil {
		h.log.Error("directory listing failed", zap.Error(err))
		response.Error(c, errors.ErrInternalServer)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, users, response.NewMeta(page, perPage, total))
}
