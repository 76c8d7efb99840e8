package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/charlesng35/agm-registration/internal/app"
	"github.com/charlesng35/agm-registration/internal/handlers"
	"github.com/charlesng35/agm-registration/internal/middleware"
	"github.com/charlesng35/agm-registration/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers the
// registration portal routes.
func NewRouter(db *gorm.DB, registration *services.RegistrationService, cfg *app.Config) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if registration == nil {
		return nil, fmt.Errorf("registration service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins...))
	r.Use(middleware.RateLimit(cfg.Server.RateLimit.MaxRequests, cfg.Server.RateLimit.Window))

	if cfg.Monitoring.Health.Enabled {
		r.GET("/health", handlers.Health(db))
	}

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	shareholderHandler, err := handlers.NewShareholderHandler(db)
	if err != nil {
		return nil, err
	}

	registrationHandler, err := handlers.NewRegistrationHandler(registration, cfg.Registration.SuccessURL)
	if err != nil {
		return nil, err
	}

	directoryHandler, err := handlers.NewDirectoryHandler(db,
		handlers.WithDirectoryPageSizes(cfg.Directory.DefaultPageSize, cfg.Directory.MaxPageSize))
	if err != nil {
		return nil, err
	}

	api := r.Group("/api")
	{
		api.POST("/check-shareholder", shareholderHandler.Search)
		api.POST("/send-confirmation", registrationHandler.SendConfirmation)
		api.GET("/confirm/:token", registrationHandler.Confirm)
		api.GET("/registered-users", directoryHandler.List)
	}

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
