package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/quote-api/internal/domain"
	"github.com/straye-as/quote-api/internal/mapper"
	"github.com/straye-as/quote-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AlertService raises alerts for open quotes that are about to expire or already have
type AlertService struct {
	alertRepo *repository.AlertRepository
	quoteRepo *repository.QuoteRepository
	window    time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

// NewAlertService creates a new AlertService
func NewAlertService(
	alertRepo *repository.AlertRepository,
	quoteRepo *repository.QuoteRepository,
	window time.Duration,
	logger *zap.Logger,
) *AlertService {
	return &AlertService{
		alertRepo: alertRepo,
		quoteRepo: quoteRepo,
		window:    window,
		now:       time.Now,
		logger:    logger,
	}
}

// WithClock replaces the time source
func (s *AlertService) WithClock(now func() time.Time) *AlertService {
	s.now = now
	return s
}

// CheckQuoteExpirationAlerts creates one undismissed alert per DRAFT or SENT quote whose
// validity ends within the window. Quotes already past their date get QUOTE_EXPIRED.
func (s *AlertService) CheckQuoteExpirationAlerts(ctx context.Context) error {
	now := s.now().UTC()
	quotes, err := s.quoteRepo.ListExpiring(ctx,
		[]domain.QuoteStatus{domain.QuoteStatusDraft, domain.QuoteStatusSent},
		now.Add(s.window))
	if err != nil {
		return fmt.Errorf("failed to list expiring quotes: %w", err)
	}

	created := 0
	for i := range quotes {
		quote := &quotes[i]
		alert := expirationAlert(quote, now)

		exists, err := s.alertRepo.ExistsActive(ctx, quote.ID, alert.Type)
		if err != nil {
			return fmt.Errorf("failed to check existing alert: %w", err)
		}
		if exists {
			continue
		}
		if err := s.alertRepo.Create(ctx, alert); err != nil {
			return fmt.Errorf("failed to create alert: %w", err)
		}
		created++
	}

	if created > 0 {
		s.logger.Info("quote expiration alerts created", zap.Int("count", created))
	}
	return nil
}

func expirationAlert(quote *domain.Quote, now time.Time) *domain.Alert {
	validUntil := quote.ValidUntil.UTC().Format("2006-01-02")
	if quote.ValidUntil.Before(now) {
		return &domain.Alert{
			Type:    domain.AlertTypeQuoteExpired,
			QuoteID: quote.ID,
			Title:   fmt.Sprintf("Quote %s has expired", quote.QuoteNumber),
			Message: fmt.Sprintf("Quote %s for %s expired on %s", quote.QuoteNumber, quote.CustomerName, validUntil),
		}
	}
	return &domain.Alert{
		Type:    domain.AlertTypeQuoteExpiring,
		QuoteID: quote.ID,
		Title:   fmt.Sprintf("Quote %s expires soon", quote.QuoteNumber),
		Message: fmt.Sprintf("Quote %s for %s is valid until %s", quote.QuoteNumber, quote.CustomerName, validUntil),
	}
}

func (s *AlertService) List(ctx context.Context, includeDismissed bool) ([]domain.AlertDTO, error) {
	alerts, err := s.alertRepo.List(ctx, includeDismissed)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	dtos := make([]domain.AlertDTO, len(alerts))
	for i := range alerts {
		dtos[i] = mapper.ToAlertDTO(&alerts[i])
	}
	return dtos, nil
}

func (s *AlertService) Dismiss(ctx context.Context, id uuid.UUID) (*domain.AlertDTO, error) {
	if err := s.alertRepo.Dismiss(ctx, id, s.now().UTC()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAlertNotFound
		}
		return nil, fmt.Errorf("failed to dismiss alert: %w", err)
	}
	alert, err := s.alertRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load alert: %w", err)
	}
	dto := mapper.ToAlertDTO(alert)
	return &dto, nil
}
