package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/straye-as/quote-api/internal/domain"
	"github.com/straye-as/quote-api/internal/logger"
	"github.com/straye-as/quote-api/internal/mapper"
	"github.com/straye-as/quote-api/internal/quickbooks"
	"github.com/straye-as/quote-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// placeholderNumberPrefix marks numbers derived from an estimate id when DocNumber is empty
const placeholderNumberPrefix = "QB-"

// QuickBooksAPI is the part of the QuickBooks client the reconciler needs
type QuickBooksAPI interface {
	SearchCustomersByDisplayName(ctx context.Context, displayName string) ([]quickbooks.Customer, error)
	CreateCustomer(ctx context.Context, input quickbooks.CustomerInput) (*quickbooks.Customer, error)
	CreateEstimate(ctx context.Context, input quickbooks.EstimateInput) (*quickbooks.Estimate, error)
	GetEstimate(ctx context.Context, id string) (*quickbooks.Estimate, error)
	UpdateEstimate(ctx context.Context, id, syncToken string, input quickbooks.EstimateInput) (*quickbooks.Estimate, error)
	QueryEstimates(ctx context.Context, pageSize int) ([]quickbooks.Estimate, error)
}

// QuoteSyncService reconciles local quotes with QuickBooks estimates in both directions
type QuoteSyncService struct {
	client        QuickBooksAPI
	quoteRepo     *repository.QuoteRepository
	numbers       *QuoteNumberService
	pageSize      int
	defaultItemID string
	now           func() time.Time
	logger        *zap.Logger
}

// NewQuoteSyncService creates a new QuoteSyncService
func NewQuoteSyncService(
	client QuickBooksAPI,
	quoteRepo *repository.QuoteRepository,
	numbers *QuoteNumberService,
	pageSize int,
	defaultItemID string,
	logger *zap.Logger,
) *QuoteSyncService {
	return &QuoteSyncService{
		client:        client,
		quoteRepo:     quoteRepo,
		numbers:       numbers,
		pageSize:      pageSize,
		defaultItemID: defaultItemID,
		now:           time.Now,
		logger:        logger,
	}
}

// WithClock replaces the time source
func (s *QuoteSyncService) WithClock(now func() time.Time) *QuoteSyncService {
	s.now = now
	return s
}

// PushQuote creates or updates the estimate for a quote and returns its id.
// The store is not written; callers persist the id and sync time.
func (s *QuoteSyncService) PushQuote(ctx context.Context, quote *domain.Quote) (string, error) {
	log := logger.WithQuote(s.logger, quote.ID.String(), quote.QuoteNumber)

	customer, err := s.resolveCustomer(ctx, quote)
	if err != nil {
		return "", err
	}

	input := quickbooks.EstimateInput{
		CustomerRef:    quickbooks.Ref{Value: customer.ID, Name: customer.DisplayName},
		DocNumber:      quote.QuoteNumber,
		TxnDate:        s.now(),
		ExpirationDate: quote.ValidUntil,
		Lines:          mapper.EstimateLinesFromItems(quote.Items, s.defaultItemID),
	}
	if quote.Notes != nil {
		input.Memo = *quote.Notes
	}

	if quote.QuickBooksEstimateID != nil && *quote.QuickBooksEstimateID != "" {
		estimateID := *quote.QuickBooksEstimateID
		current, err := s.client.GetEstimate(ctx, estimateID)
		if err != nil {
			return "", err
		}
		if _, err := s.client.UpdateEstimate(ctx, estimateID, current.SyncToken, input); err != nil {
			return "", err
		}
		log.Info("updated quickbooks estimate", zap.String("estimate_id", estimateID))
		return estimateID, nil
	}

	created, err := s.client.CreateEstimate(ctx, input)
	if err != nil {
		return "", err
	}
	log.Info("created quickbooks estimate", zap.String("estimate_id", created.ID))
	return created.ID, nil
}

// resolveCustomer finds the remote customer by exact display name, creating it when absent.
// When several customers share the name the first one returned is used.
func (s *QuoteSyncService) resolveCustomer(ctx context.Context, quote *domain.Quote) (*quickbooks.Customer, error) {
	matches, err := s.client.SearchCustomersByDisplayName(ctx, quote.CustomerName)
	if err != nil {
		return nil, err
	}
	if len(matches) > 0 {
		if len(matches) > 1 {
			s.logger.Warn("multiple quickbooks customers share display name, using first",
				zap.String("display_name", quote.CustomerName),
				zap.Int("matches", len(matches)))
		}
		return &matches[0], nil
	}

	input := quickbooks.CustomerInput{
		DisplayName: quote.CustomerName,
		Address:     mapper.ComposeCustomerAddress(quote),
	}
	if quote.CustomerEmail != nil {
		input.Email = *quote.CustomerEmail
	}
	if quote.CustomerPhone != nil {
		input.Phone = *quote.CustomerPhone
	}
	return s.client.CreateCustomer(ctx, input)
}

// SyncFromQuickBooks imports the most recently updated estimates. Each estimate is
// written in its own transaction; a failing estimate is recorded and skipped.
func (s *QuoteSyncService) SyncFromQuickBooks(ctx context.Context) (*domain.QuickBooksSyncResult, error) {
	estimates, err := s.client.QueryEstimates(ctx, s.pageSize)
	if err != nil {
		return nil, err
	}

	result := &domain.QuickBooksSyncResult{Errors: []string{}}
	for i := range estimates {
		est := &estimates[i]
		created, err := s.importEstimate(ctx, est)
		if err != nil {
			s.logger.Warn("failed to import quickbooks estimate",
				zap.String("estimate_id", est.ID),
				zap.Error(err))
			result.Errors = append(result.Errors, fmt.Sprintf("Estimate %s: %s", est.ID, err.Error()))
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	s.logger.Info("quickbooks pull finished",
		zap.Int("estimates", len(estimates)),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}

// importEstimate stores one remote estimate and reports whether a new quote was created.
// An already linked quote keeps its number and its email, phone and address:
// those fields are only ever set by local creation and a pull does not clear them.
func (s *QuoteSyncService) importEstimate(ctx context.Context, est *quickbooks.Estimate) (bool, error) {
	quote, err := mapper.EstimateToQuote(est)
	if err != nil {
		return false, err
	}
	syncedAt := s.now().UTC()
	quote.QuickBooksSyncedAt = &syncedAt

	existing, err := s.quoteRepo.GetByQuickBooksEstimateID(ctx, est.ID)
	switch {
	case err == nil:
		quote.ID = existing.ID
		quote.CreatedAt = existing.CreatedAt
		quote.QuoteNumber = existing.QuoteNumber
		// estimates carry no contact details, keep the local snapshot
		quote.CustomerEmail = existing.CustomerEmail
		quote.CustomerPhone = existing.CustomerPhone
		quote.CustomerAddress = existing.CustomerAddress
		quote.CustomerCity = existing.CustomerCity
		quote.CustomerState = existing.CustomerState
		quote.CustomerZip = existing.CustomerZip
		quote.CustomerCountry = existing.CustomerCountry
		if err := s.quoteRepo.UpdateWithItems(ctx, quote); err != nil {
			return false, fmt.Errorf("failed to update quote %s: %w", existing.QuoteNumber, err)
		}
		return false, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return false, fmt.Errorf("failed to look up quote: %w", err)
	}

	number, err := s.numberForEstimate(ctx, est)
	if err != nil {
		return false, err
	}
	quote.QuoteNumber = number

	if err := s.quoteRepo.CreateWithItems(ctx, quote); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, fmt.Errorf("%w: %v", ErrDuplicateEstimate, err)
		}
		return false, fmt.Errorf("failed to create quote: %w", err)
	}
	return true, nil
}

// numberForEstimate keeps the estimate's DocNumber unless it is empty, a placeholder,
// or already used by another quote.
func (s *QuoteSyncService) numberForEstimate(ctx context.Context, est *quickbooks.Estimate) (string, error) {
	candidate := strings.TrimSpace(est.DocNumber)
	if candidate == "" {
		candidate = placeholderNumberPrefix + est.ID
	}
	if !strings.HasPrefix(candidate, placeholderNumberPrefix) {
		taken, err := s.quoteRepo.QuoteNumberExists(ctx, candidate, nil)
		if err != nil {
			return "", fmt.Errorf("failed to check quote number: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return s.numbers.Generate(ctx)
}
