package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/straye-as/quote-api/internal/secrets"
	"go.uber.org/zap"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	QuickBooks QuickBooksConfig
	Quotes     QuotesConfig
	Alerts     AlertsConfig
	ApiKey     ApiKeyConfig
	Secrets    SecretsConfig
	Logging    LoggingConfig
	Server     ServerConfig
	CORS       CORSConfig
	Security   SecurityConfig
	RateLimit  RateLimitConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
}

type DatabaseConfig struct {
	// Driver selects the gorm dialector: "postgres" or "sqlite"
	Driver   string
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
	// Path is the sqlite database file, used only when Driver is "sqlite"
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
}

// QuickBooksConfig holds the accounting platform connection settings.
// Tokens configured here are the fallback when no connection record is stored.
type QuickBooksConfig struct {
	// Environment is "sandbox" or "production" and picks the API host
	Environment string
	// BaseURL overrides the host derived from Environment (used by tests and proxies)
	BaseURL      string
	MinorVersion int
	ClientID     string
	ClientSecret string
	RealmID      string
	AccessToken  string
	RefreshToken string
	// AccessTokenExpiresAt is an RFC3339 timestamp, empty when unknown
	AccessTokenExpiresAt string
	// TokenExpirySkewSeconds treats tokens expiring within this window as expired
	TokenExpirySkewSeconds int
	TimeoutSeconds         int
	// RequestsPerMinute throttles outgoing calls below the QuickBooks per-realm quota
	RequestsPerMinute int
	PullPageSize      int
	// DefaultItemID is sent as ItemRef on pushed estimate lines when set
	DefaultItemID string
}

// QuotesConfig controls quote numbering
type QuotesConfig struct {
	// NumberFormat is "sequence" (YYNNNN) or "legacy" (Q-<ts>-<rand>)
	NumberFormat  string
	NumberRetries int
}

// AlertsConfig controls the quote expiration alert sweep
type AlertsConfig struct {
	Enabled          bool
	Cron             string
	ExpiryWindowDays int
	TimeoutSeconds   int
}

type ApiKeyConfig struct {
	SecretName string
	Value      string // Loaded from secrets or environment
}

type SecretsConfig struct {
	// Source determines where secrets are loaded from: "environment", "vault", or "auto"
	// "auto" uses environment in development, vault in staging/production
	Source       string
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int // seconds
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
	EnableSwagger  bool
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	// AllowedOrigins is a list of allowed origins for CORS requests
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	// MaxAge is the max age (in seconds) for preflight cache
	MaxAge int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	EnableHSTS            bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	HSTSPreload           bool
	ContentSecurityPolicy string
	// FrameOptions sets the X-Frame-Options header (DENY, SAMEORIGIN, or empty to disable)
	FrameOptions       string
	ContentTypeNosniff bool
	ReferrerPolicy     string
	PermissionsPolicy  string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled bool
	// RequestsPerMinute is the limit per client IP
	RequestsPerMinute int
	WhitelistIPs      []string
	// WhitelistPaths bypass rate limiting (e.g. /health)
	WhitelistPaths []string
}

// ConnectionString builds PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// RequestTimeoutDuration returns request timeout as duration
func (s *ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// APIBaseURL returns the QuickBooks API host for the configured environment
func (q *QuickBooksConfig) APIBaseURL() string {
	if q.BaseURL != "" {
		return strings.TrimRight(q.BaseURL, "/")
	}
	if q.Environment == "production" {
		return "https://quickbooks.api.intuit.com"
	}
	return "https://sandbox-quickbooks.api.intuit.com"
}

// Timeout returns the HTTP client timeout for QuickBooks calls
func (q *QuickBooksConfig) Timeout() time.Duration {
	return time.Duration(q.TimeoutSeconds) * time.Second
}

// TokenExpirySkew returns the freshness window applied to access tokens
func (q *QuickBooksConfig) TokenExpirySkew() time.Duration {
	return time.Duration(q.TokenExpirySkewSeconds) * time.Second
}

// TokenExpiry parses AccessTokenExpiresAt. A nil result means the expiry is unknown.
func (q *QuickBooksConfig) TokenExpiry() *time.Time {
	if q.AccessTokenExpiresAt == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, q.AccessTokenExpiresAt)
	if err != nil {
		return nil
	}
	return &t
}

// ExpiryWindow returns how far ahead quotes are considered expiring
func (a *AlertsConfig) ExpiryWindow() time.Duration {
	return time.Duration(a.ExpiryWindowDays) * 24 * time.Hour
}

// TimeoutDuration bounds a single alert evaluation
func (a *AlertsConfig) TimeoutDuration() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// Load loads configuration from file and environment variables
// This is a basic load that doesn't fetch secrets from vault
// Use LoadWithSecrets for full secret resolution
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.ApiKey.Value == "" {
		cfg.ApiKey.Value = v.GetString("ADMIN_API_KEY")
	}

	// Conventional QuickBooks variable names used by the dashboard deployment
	if cfg.QuickBooks.RealmID == "" {
		cfg.QuickBooks.RealmID = v.GetString("QUICKBOOKS_REALM_ID")
	}
	if cfg.QuickBooks.AccessToken == "" {
		cfg.QuickBooks.AccessToken = v.GetString("QUICKBOOKS_ACCESS_TOKEN")
	}
	if cfg.QuickBooks.RefreshToken == "" {
		cfg.QuickBooks.RefreshToken = v.GetString("QUICKBOOKS_REFRESH_TOKEN")
	}

	if cfg.Secrets.KeyVaultName == "" {
		cfg.Secrets.KeyVaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}

	return &cfg, nil
}

// LoadWithSecrets loads configuration and resolves secrets from the configured source.
//
// Key Vault is used when USE_AZURE_KEY_VAULT is "true" and the environment is
// staging or production. Otherwise secrets come from environment variables.
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	useKeyVault := strings.ToLower(os.Getenv("USE_AZURE_KEY_VAULT")) == "true"
	isValidEnv := cfg.App.Environment == "staging" || cfg.App.Environment == "production"

	if !useKeyVault {
		logger.Info("USE_AZURE_KEY_VAULT not enabled, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if !isValidEnv {
		logger.Warn("USE_AZURE_KEY_VAULT is enabled but environment is not staging or production, using environment variables",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if cfg.Secrets.KeyVaultName == "" {
		return nil, fmt.Errorf("AZURE_KEY_VAULT_NAME is required when USE_AZURE_KEY_VAULT=true")
	}

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SourceVault,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets provider: %w", err)
	}

	applySecrets(ctx, cfg, provider)

	logger.Info("Secrets loaded from vault successfully",
		zap.String("key_vault_name", cfg.Secrets.KeyVaultName),
	)
	return cfg, nil
}

// SecretSource is the subset of secrets.Provider used to fill in configuration
type SecretSource interface {
	GetSecretOrEnv(ctx context.Context, secretName, envName string) (string, error)
}

// applySecrets overwrites configuration values with the ones the source knows about.
// Missing secrets leave the loaded value untouched.
func applySecrets(ctx context.Context, cfg *Config, src SecretSource) {
	set := func(dst *string, secretName, envName string) {
		if value, err := src.GetSecretOrEnv(ctx, secretName, envName); err == nil && value != "" {
			*dst = value
		}
	}

	set(&cfg.Database.Host, "POSTGRES-MAIN-HOST", "DATABASE_HOST")
	set(&cfg.Database.User, "POSTGRES-MAIN-USER", "DATABASE_USER")
	set(&cfg.Database.Password, "POSTGRES-MAIN-PASSWORD", "DATABASE_PASSWORD")
	if defaultDB := os.Getenv("DEFAULT_DATABASE"); defaultDB != "" {
		cfg.Database.Name = defaultDB
	}
	if sslMode := os.Getenv("DATABASE_SSLMODE"); sslMode != "" {
		cfg.Database.SSLMode = sslMode
	}

	set(&cfg.ApiKey.Value, "admin-api-key", "ADMIN_API_KEY")

	set(&cfg.QuickBooks.ClientID, "quickbooks-client-id", "QUICKBOOKS_CLIENT_ID")
	set(&cfg.QuickBooks.ClientSecret, "quickbooks-client-secret", "QUICKBOOKS_CLIENT_SECRET")
	set(&cfg.QuickBooks.RealmID, "quickbooks-realm-id", "QUICKBOOKS_REALM_ID")
	set(&cfg.QuickBooks.AccessToken, "quickbooks-access-token", "QUICKBOOKS_ACCESS_TOKEN")
	set(&cfg.QuickBooks.RefreshToken, "quickbooks-refresh-token", "QUICKBOOKS_REFRESH_TOKEN")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "Straye Quote API")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "quotes")
	v.SetDefault("database.user", "quotes_user")
	v.SetDefault("database.password", "quotes_password")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.path", "quotes.db")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 300)

	v.SetDefault("quickbooks.environment", "sandbox")
	v.SetDefault("quickbooks.minorVersion", 65)
	v.SetDefault("quickbooks.tokenExpirySkewSeconds", 60)
	v.SetDefault("quickbooks.timeoutSeconds", 30)
	v.SetDefault("quickbooks.requestsPerMinute", 400)
	v.SetDefault("quickbooks.pullPageSize", 100)

	v.SetDefault("quotes.numberFormat", "sequence")
	v.SetDefault("quotes.numberRetries", 3)

	v.SetDefault("alerts.enabled", false)
	v.SetDefault("alerts.cron", "0 0 * * * *") // hourly
	v.SetDefault("alerts.expiryWindowDays", 7)
	v.SetDefault("alerts.timeoutSeconds", 30)

	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 60)
	v.SetDefault("server.requestTimeout", 60)
	v.SetDefault("server.enableSwagger", true)

	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"Location", "X-Request-ID"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300)

	v.SetDefault("security.enableHSTS", false) // enable in production behind HTTPS
	v.SetDefault("security.hstsMaxAge", 31536000)
	v.SetDefault("security.hstsIncludeSubdomains", true)
	v.SetDefault("security.hstsPreload", false)
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")
	v.SetDefault("security.permissionsPolicy", "geolocation=(), microphone=(), camera=()")

	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 120)
	v.SetDefault("rateLimit.whitelistIPs", []string{"127.0.0.1", "::1"})
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/db", "/health/ready"})
}
