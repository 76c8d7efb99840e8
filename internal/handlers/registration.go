package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/agm-registration/internal/services"
	appErrors "github.com/charlesng35/agm-registration/pkg/errors"
	"github.com/charlesng35/agm-registration/pkg/logger"
	"github.com/charlesng35/agm-registration/pkg/response"
)

// RegistrationHandler serves the confirmation issue/consume endpoints.
type RegistrationHandler struct {
	svc        *services.RegistrationService
	successURL string
	log        *zap.Logger
}

type sendConfirmationRequest struct {
	ACNO        string `json:"acno" validate:"required,numeric,max=32"`
	Email       string `json:"email" validate:"omitempty,email,max=255"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,max=32"`
}

// NewRegistrationHandler constructs a RegistrationHandler. successURL is the
// browser destination after a completed confirmation.
func NewRegistrationHandler(svc *services.RegistrationService, successURL string) (*RegistrationHandler, error) {
	if svc == nil {
		return nil, errors.New("registration handler: service is required")
	}
	return &RegistrationHandler{
		svc:        svc,
		successURL: strings.TrimSpace(successURL),
		log:        logger.WithModule("handlers.registration"),
	}, nil
}

// POST /api/send-confirmation
func (h *RegistrationHandler) SendConfirmation(c *gin.Context) {
	var body sendConfirmationRequest
	if !bindAndValidate(c, &body) {
		return
	}

	err := h.svc.IssueConfirmation(requestContext(c), services.IssueInput{
		ACNO:        body.ACNO,
		Email:       body.Email,
		PhoneNumber: body.PhoneNumber,
	})
	switch {
	case err == nil:
		response.Success(c, http.StatusOK, gin.H{"message": "Confirmation sent to email."})
	case errors.Is(err, services.ErrAlreadyRegistered):
		response.Error(c, appErrors.ErrAlreadyRegistered)
	case errors.Is(err, services.ErrShareholderNotFound):
		response.Error(c, appErrors.ErrShareholderNotFound)
	default:
		h.log.Error("send confirmation failed", zap.Error(err))
		response.Error(c, appErrors.ErrInternalServer)
	}
}

// GET /api/confirm/:token
//
// The link lands directly in a browser, so errors are plain text and success
// is a redirect rather than a JSON envelope.
func (h *RegistrationHandler) Confirm(c *gin.Context) {
	token := c.Param("token")

	_, err := h.svc.Confirm(requestContext(c), token)
	switch {
	case err == nil:
		c.Redirect(http.StatusFound, h.successURL)
	case errors.Is(err, services.ErrTokenInvalid):
		c.String(http.StatusBadRequest, "Invalid or expired token.")
	case errors.Is(err, services.ErrAlreadyRegistered):
		c.String(http.StatusBadRequest, "This shareholder is already registered.")
	case errors.Is(err, services.ErrShareholderNotFound):
		c.String(http.StatusNotFound, "Shareholder not found.")
	default:
		h.log.Error("confirm registration failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "Server error.")
	}
}
