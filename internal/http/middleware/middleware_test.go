package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/straye-as/quote-api/internal/config"
	"github.com/straye-as/quote-api/internal/domain"
	"github.com/straye-as/quote-api/internal/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAPIKeyAuth(t *testing.T) {
	guard := middleware.NewAPIKeyAuth("secret", "production", zap.NewNop()).Authenticate(okHandler)

	tests := []struct {
		name   string
		key    string
		status int
	}{
		{"valid key", "secret", http.StatusOK},
		{"wrong key", "nope", http.StatusUnauthorized},
		{"missing key", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes", nil)
			if tt.key != "" {
				req.Header.Set(middleware.APIKeyHeader, tt.key)
			}
			rec := serve(guard, req)
			assert.Equal(t, tt.status, rec.Code)

			if tt.status == http.StatusUnauthorized {
				var body domain.APIError
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				assert.Equal(t, domain.ErrorTypeUnauthorized, body.Type)
			}
		})
	}
}

func TestAPIKeyAuth_NoKeyConfigured(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes", nil)

	dev := middleware.NewAPIKeyAuth("", "development", zap.NewNop()).Authenticate(okHandler)
	assert.Equal(t, http.StatusOK, serve(dev, req).Code)

	prod := middleware.NewAPIKeyAuth("", "production", zap.NewNop()).Authenticate(okHandler)
	assert.Equal(t, http.StatusUnauthorized, serve(prod, req).Code)
}

func TestRecovery(t *testing.T) {
	h := middleware.Recovery(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body domain.APIError
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, domain.ErrorTypeInternal, body.Type)
}

func TestLogging_RequestID(t *testing.T) {
	h := middleware.Logging(zap.NewNop())(okHandler)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	rec = serve(h, req)
	assert.Equal(t, "req-123", rec.Header().Get(middleware.RequestIDHeader))
}

func TestRateLimiter(t *testing.T) {
	cfg := &config.RateLimitConfig{
		Enabled:           true,
		RequestsPerMinute: 2,
		WhitelistIPs:      []string{"10.0.0.9"},
		WhitelistPaths:    []string{"/health", "/swagger/*"},
	}
	h := middleware.NewRateLimiter(cfg, zap.NewNop()).Limit(okHandler)

	newReq := func(path, key string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if key != "" {
			req.Header.Set(middleware.APIKeyHeader, key)
		}
		return req
	}

	assert.Equal(t, http.StatusOK, serve(h, newReq("/api/v1/quotes", "a")).Code)
	assert.Equal(t, http.StatusOK, serve(h, newReq("/api/v1/quotes", "a")).Code)
	rec := serve(h, newReq("/api/v1/quotes", "a"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// other keys have their own bucket
	assert.Equal(t, http.StatusOK, serve(h, newReq("/api/v1/quotes", "b")).Code)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, serve(h, newReq("/health", "a")).Code)
		assert.Equal(t, http.StatusOK, serve(h, newReq("/swagger/index.html", "a")).Code)
	}

	whitelisted := newReq("/api/v1/quotes", "a")
	whitelisted.Header.Set("X-Forwarded-For", "10.0.0.9, 172.16.0.1")
	assert.Equal(t, http.StatusOK, serve(h, whitelisted).Code)
}

func TestRateLimiter_Disabled(t *testing.T) {
	h := middleware.NewRateLimiter(&config.RateLimitConfig{RequestsPerMinute: 1}, zap.NewNop()).Limit(okHandler)
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(h, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	cfg := &config.SecurityConfig{
		EnableHSTS:            true,
		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,
		FrameOptions:          "DENY",
		ContentTypeNosniff:    true,
	}
	rec := serve(middleware.SecurityHeaders(cfg)(okHandler), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "max-age=31536000; includeSubDomains", rec.Header().Get("Strict-Transport-Security"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestCORS(t *testing.T) {
	cfg := &config.CORSConfig{
		AllowedOrigins: []string{"https://app.example.com"},
		AllowedMethods: []string{http.MethodGet},
	}
	h := middleware.CORS(cfg, "production", zap.NewNop())(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	assert.Equal(t, "https://app.example.com", serve(h, req).Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	assert.Empty(t, serve(h, req).Header().Get("Access-Control-Allow-Origin"))

	deny := middleware.CORS(&config.CORSConfig{}, "production", zap.NewNop())(okHandler)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	assert.Empty(t, serve(deny, req).Header().Get("Access-Control-Allow-Origin"))
}
