package router

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/straye-as/quote-api/internal/config"
	"github.com/straye-as/quote-api/internal/database"
	"github.com/straye-as/quote-api/internal/http/handler"
	"github.com/straye-as/quote-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/straye-as/quote-api/docs" // swagger document
)

type Router struct {
	cfg               *config.Config
	logger            *zap.Logger
	db                *gorm.DB
	apiKeyAuth        *middleware.APIKeyAuth
	rateLimiter       *middleware.RateLimiter
	quoteHandler      *handler.QuoteHandler
	quickBooksHandler *handler.QuickBooksHandler
	alertHandler      *handler.AlertHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	apiKeyAuth *middleware.APIKeyAuth,
	rateLimiter *middleware.RateLimiter,
	quoteHandler *handler.QuoteHandler,
	quickBooksHandler *handler.QuickBooksHandler,
	alertHandler *handler.AlertHandler,
) *Router {
	return &Router{
		cfg:               cfg,
		logger:            logger,
		db:                db,
		apiKeyAuth:        apiKeyAuth,
		rateLimiter:       rateLimiter,
		quoteHandler:      quoteHandler,
		quickBooksHandler: quickBooksHandler,
		alertHandler:      alertHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.Limit)
	if timeout := rt.cfg.Server.RequestTimeoutDuration(); timeout > 0 {
		r.Use(chimw.Timeout(timeout))
	}

	// liveness
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Get("/health/db", rt.databaseHealth)
	r.Get("/health/ready", rt.readiness)

	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.apiKeyAuth.Authenticate)

		r.Route("/quotes", func(r chi.Router) {
			r.Get("/", rt.quoteHandler.List)
			r.Post("/", rt.quoteHandler.Create)
			r.Post("/sync-from-quickbooks", rt.quoteHandler.SyncFromQuickBooks)
			r.Get("/{id}", rt.quoteHandler.GetByID)
			r.Patch("/{id}", rt.quoteHandler.Update)
			r.Delete("/{id}", rt.quoteHandler.Delete)
			r.Post("/{id}/push-to-quickbooks", rt.quoteHandler.PushToQuickBooks)
		})

		r.Route("/quickbooks", func(r chi.Router) {
			r.Get("/status", rt.quickBooksHandler.Status)
			r.Put("/connection", rt.quickBooksHandler.SaveConnection)
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Get("/", rt.alertHandler.List)
			r.Post("/{id}/dismiss", rt.alertHandler.Dismiss)
		})
	})

	return r
}

func (rt *Router) databaseHealth(w http.ResponseWriter, r *http.Request) {
	stats := database.HealthCheckWithStats(r.Context(), rt.db)
	status := http.StatusOK
	if stats.Status != "healthy" {
		rt.logger.Error("Database health check failed", zap.String("error", stats.Error))
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]interface{}{
		"status":  stats.Status,
		"service": "database",
		"stats":   stats,
	})
}

func (rt *Router) readiness(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]interface{})
	healthy := true

	if err := database.HealthCheck(r.Context(), rt.db); err != nil {
		rt.logger.Error("Database health check failed", zap.Error(err))
		checks["database"] = map[string]string{"status": "unhealthy", "error": err.Error()}
		healthy = false
	} else {
		checks["database"] = map[string]string{"status": "healthy"}
	}

	status, label := http.StatusOK, "healthy"
	if !healthy {
		status, label = http.StatusServiceUnavailable, "unhealthy"
	}
	writeJSON(w, status, map[string]interface{}{
		"status":    label,
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
