package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/agm-registration/internal/services"
	"github.com/charlesng35/agm-registration/pkg/errors"
	"github.com/charlesng35/agm-registration/pkg/logger"
	"github.com/charlesng35/agm-registration/pkg/metrics"
	"github.com/charlesng35/agm-registration/pkg/response"
)

// ShareholderHandler serves the registry search endpoint.
type ShareholderHandler struct {
	svc *services.LookupService
	log *zap.Logger
}

type searchShareholderRequest struct {
	SearchTerm string `json:"searchTerm" validate:"required,max=120"`
}

// NewShareholderHandler constructs a ShareholderHandler.
func NewShareholderHandler(db *gorm.DB) (*ShareholderHandler, error) {
	svc, err := services.NewLookupService(db)
	if err != nil {
		return nil, err
	}
	return &ShareholderHandler{svc: svc, log: logger.WithModule("handlers.shareholders")}, nil
}

// POST /api/check-shareholder
func (h *ShareholderHandler) Search(c *gin.Context) {
	var body searchShareholderRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, errors.NewBadRequest("Please provide a search term."))
		return
	}
	if strings.TrimSpace(body.SearchTerm) == "" {
		response.Error(c, errors.NewBadRequest("Please provide a search term."))
		return
	}

	result, err := h.svc.Search(requestContext(c), body.SearchTerm)
	if err != nil {
		h.log.Error("shareholder search failed", zap.Error(err))
		metrics.LookupRequests.WithLabelValues("error").Inc()
		response.Error(c, errors.ErrInternalServer)
		return
	}

	metrics.LookupRequests.WithLabelValues(result.Status).Inc()

	// A miss is still a successful lookup; the status travels in the body.
	response.Success(c, http.StatusOK, result)
}
