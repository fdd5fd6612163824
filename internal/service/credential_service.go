package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/straye-as/quote-api/internal/config"
	"github.com/straye-as/quote-api/internal/domain"
	"github.com/straye-as/quote-api/internal/logger"
	"github.com/straye-as/quote-api/internal/quickbooks"
	"github.com/straye-as/quote-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	CredentialSourceConnection = "connection"
	CredentialSourceConfig     = "config"
)

// CredentialService resolves the QuickBooks bearer context for every outgoing call.
// A stored connection wins over static configuration. Tokens are never refreshed here;
// an expired token means the company has to be reconnected.
type CredentialService struct {
	repo   *repository.QuickBooksConnectionRepository
	cfg    *config.QuickBooksConfig
	now    func() time.Time
	logger *zap.Logger
}

// NewCredentialService creates a new CredentialService
func NewCredentialService(repo *repository.QuickBooksConnectionRepository, cfg *config.QuickBooksConfig, logger *zap.Logger) *CredentialService {
	return &CredentialService{
		repo:   repo,
		cfg:    cfg,
		now:    time.Now,
		logger: logger,
	}
}

// WithClock replaces the time source
func (s *CredentialService) WithClock(now func() time.Time) *CredentialService {
	s.now = now
	return s
}

// GetCredentials implements quickbooks.CredentialResolver
func (s *CredentialService) GetCredentials(ctx context.Context) (*quickbooks.Credentials, error) {
	creds, _, err := s.resolve(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.checkFresh(creds); err != nil {
		return nil, err
	}
	return creds, nil
}

// Status reports which credentials would be used and whether they are still usable
func (s *CredentialService) Status(ctx context.Context) (*domain.QuickBooksStatusDTO, error) {
	creds, source, err := s.resolve(ctx)
	if errors.Is(err, quickbooks.ErrNotConfigured) {
		return &domain.QuickBooksStatusDTO{Connected: false, Error: err.Error()}, nil
	}
	if err != nil {
		return nil, err
	}

	status := &domain.QuickBooksStatusDTO{
		Connected: true,
		Source:    source,
		RealmID:   creds.RealmID,
	}
	if creds.ExpiresAt != nil {
		formatted := creds.ExpiresAt.UTC().Format(time.RFC3339)
		status.AccessTokenExpiresAt = &formatted
	}
	if err := s.checkFresh(creds); err != nil {
		status.Connected = false
		status.ReconnectRequired = true
		status.Error = err.Error()
	}
	return status, nil
}

// SaveConnection stores tokens obtained from the OAuth flow for a company
func (s *CredentialService) SaveConnection(ctx context.Context, req *domain.SaveQuickBooksConnectionRequest) (*domain.QuickBooksStatusDTO, error) {
	realmID := strings.TrimSpace(req.RealmID)
	if realmID == "" {
		return nil, newValidationError("realmId", "realmId is required")
	}
	if strings.TrimSpace(req.AccessToken) == "" {
		return nil, newValidationError("accessToken", "accessToken is required")
	}

	conn := &domain.QuickBooksConnection{
		RealmID:      realmID,
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
	}
	if req.AccessTokenExpiresAt != nil {
		expires := req.AccessTokenExpiresAt.UTC()
		conn.AccessTokenExpiresAt = &expires
	}

	if err := s.repo.Upsert(ctx, conn); err != nil {
		return nil, fmt.Errorf("failed to save quickbooks connection: %w", err)
	}

	logger.WithRealm(s.logger, realmID).Info("quickbooks connection saved")
	return s.Status(ctx)
}

func (s *CredentialService) resolve(ctx context.Context) (*quickbooks.Credentials, string, error) {
	conn, err := s.repo.GetLatest(ctx)
	switch {
	case err == nil:
		if conn.RealmID != "" && conn.AccessToken != "" {
			creds := &quickbooks.Credentials{
				RealmID:     conn.RealmID,
				AccessToken: conn.AccessToken,
				ExpiresAt:   conn.AccessTokenExpiresAt,
			}
			if conn.RefreshToken != nil {
				creds.RefreshToken = *conn.RefreshToken
			}
			return creds, CredentialSourceConnection, nil
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, "", fmt.Errorf("failed to load quickbooks connection: %w", err)
	}

	if s.cfg != nil && s.cfg.RealmID != "" && s.cfg.AccessToken != "" {
		return &quickbooks.Credentials{
			RealmID:      s.cfg.RealmID,
			AccessToken:  s.cfg.AccessToken,
			RefreshToken: s.cfg.RefreshToken,
			ExpiresAt:    s.cfg.TokenExpiry(),
		}, CredentialSourceConfig, nil
	}

	return nil, "", quickbooks.ErrNotConfigured
}

func (s *CredentialService) checkFresh(creds *quickbooks.Credentials) error {
	if creds.ExpiresAt == nil {
		return nil
	}
	var skew time.Duration
	if s.cfg != nil {
		skew = s.cfg.TokenExpirySkew()
	}
	if !s.now().Add(skew).Before(*creds.ExpiresAt) {
		s.logger.Warn("quickbooks access token expired",
			zap.String("realm_id", creds.RealmID),
			zap.Time("expires_at", *creds.ExpiresAt))
		return quickbooks.ErrReconnectRequired
	}
	return nil
}
