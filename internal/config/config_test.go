package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSecrets map[string]string

func (f fakeSecrets) GetSecretOrEnv(_ context.Context, secretName, _ string) (string, error) {
	if v, ok := f[secretName]; ok {
		return v, nil
	}
	return "", errors.New("not found")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("QUICKBOOKS_REALM_ID", "")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 100, cfg.QuickBooks.PullPageSize)
	assert.Equal(t, "sequence", cfg.Quotes.NumberFormat)
	assert.Equal(t, 3, cfg.Quotes.NumberRetries)
	assert.Equal(t, 7, cfg.Alerts.ExpiryWindowDays)
	assert.Equal(t, 30*time.Second, cfg.QuickBooks.Timeout())
}

func TestLoad_QuickBooksEnvironmentVariables(t *testing.T) {
	t.Setenv("QUICKBOOKS_REALM_ID", "9130")
	t.Setenv("QUICKBOOKS_ACCESS_TOKEN", "token-abc")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9130", cfg.QuickBooks.RealmID)
	assert.Equal(t, "token-abc", cfg.QuickBooks.AccessToken)
}

func TestQuickBooksConfig_APIBaseURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  QuickBooksConfig
		want string
	}{
		{"sandbox default", QuickBooksConfig{}, "https://sandbox-quickbooks.api.intuit.com"},
		{"production", QuickBooksConfig{Environment: "production"}, "https://quickbooks.api.intuit.com"},
		{"override trims slash", QuickBooksConfig{Environment: "production", BaseURL: "http://localhost:9000/"}, "http://localhost:9000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.APIBaseURL())
		})
	}
}

func TestQuickBooksConfig_TokenExpiry(t *testing.T) {
	q := QuickBooksConfig{}
	assert.Nil(t, q.TokenExpiry())

	q.AccessTokenExpiresAt = "not a time"
	assert.Nil(t, q.TokenExpiry())

	q.AccessTokenExpiresAt = "2026-01-02T03:04:05Z"
	expiry := q.TokenExpiry()
	require.NotNil(t, expiry)
	assert.Equal(t, 2026, expiry.Year())
}

func TestApplySecrets(t *testing.T) {
	cfg := &Config{}
	cfg.QuickBooks.RealmID = "from-config"
	cfg.Database.Host = "localhost"

	applySecrets(context.Background(), cfg, fakeSecrets{
		"quickbooks-realm-id":     "from-vault",
		"quickbooks-access-token": "vault-token",
		"admin-api-key":           "key",
	})

	assert.Equal(t, "from-vault", cfg.QuickBooks.RealmID)
	assert.Equal(t, "vault-token", cfg.QuickBooks.AccessToken)
	assert.Equal(t, "key", cfg.ApiKey.Value)
	assert.Equal(t, "localhost", cfg.Database.Host, "missing secrets keep the loaded value")
}
