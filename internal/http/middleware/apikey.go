package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/straye-as/quote-api/internal/domain"
	"go.uber.org/zap"
)

// APIKeyHeader is the header clients send the shared key in
const APIKeyHeader = "X-API-Key"

// APIKeyAuth guards the API with a single shared key
type APIKeyAuth struct {
	key      string
	disabled bool
	logger   *zap.Logger
}

// NewAPIKeyAuth creates the guard. With no key configured, development and
// local environments let every request through; anything else rejects all.
func NewAPIKeyAuth(key, environment string, logger *zap.Logger) *APIKeyAuth {
	a := &APIKeyAuth{key: key, logger: logger}
	if key == "" {
		switch environment {
		case "", "development", "local":
			a.disabled = true
			logger.Warn("no API key configured, API authentication disabled",
				zap.String("environment", environment))
		default:
			logger.Warn("no API key configured, all API requests will be rejected",
				zap.String("environment", environment))
		}
	}
	return a
}

func (a *APIKeyAuth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.disabled || a.valid(r.Header.Get(APIKeyHeader)) {
			next.ServeHTTP(w, r)
			return
		}

		a.logger.Warn("invalid API key attempt",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote_addr", r.RemoteAddr))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(domain.APIError{
			Type:   domain.ErrorTypeUnauthorized,
			Title:  http.StatusText(http.StatusUnauthorized),
			Status: http.StatusUnauthorized,
			Detail: "Missing or invalid API key",
		})
	})
}

func (a *APIKeyAuth) valid(key string) bool {
	if a.key == "" || key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(a.key)) == 1
}
