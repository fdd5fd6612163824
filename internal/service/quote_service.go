package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/quote-api/internal/domain"
	"github.com/straye-as/quote-api/internal/mapper"
	"github.com/straye-as/quote-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QuoteNumberGenerator hands out candidate quote numbers
type QuoteNumberGenerator interface {
	Generate(ctx context.Context) (string, error)
}

// QuoteService owns quote lifecycle: validation, numbering, totals and persistence.
// Pushing to QuickBooks after a write is best effort and never undoes the write.
type QuoteService struct {
	quoteRepo     *repository.QuoteRepository
	itemRepo      *repository.QuoteItemRepository
	numbers       QuoteNumberGenerator
	sync          *QuoteSyncService
	alerts        *AlertService
	numberRetries int
	alertTimeout  time.Duration
	logger        *zap.Logger
}

// NewQuoteService creates a new QuoteService. alerts may be nil to skip the
// expiration check after writes.
func NewQuoteService(
	quoteRepo *repository.QuoteRepository,
	itemRepo *repository.QuoteItemRepository,
	numbers QuoteNumberGenerator,
	sync *QuoteSyncService,
	alerts *AlertService,
	numberRetries int,
	alertTimeout time.Duration,
	logger *zap.Logger,
) *QuoteService {
	if numberRetries < 1 {
		numberRetries = 1
	}
	if alertTimeout <= 0 {
		alertTimeout = 30 * time.Second
	}
	return &QuoteService{
		quoteRepo:     quoteRepo,
		itemRepo:      itemRepo,
		numbers:       numbers,
		sync:          sync,
		alerts:        alerts,
		numberRetries: numberRetries,
		alertTimeout:  alertTimeout,
		logger:        logger,
	}
}

// Create validates the request, assigns a number, computes totals and stores the quote
func (s *QuoteService) Create(ctx context.Context, req *domain.CreateQuoteRequest) (*domain.QuoteResponse, error) {
	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = domain.QuoteStatusDraft
	}

	quote := &domain.Quote{
		Status:          status,
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		CustomerCity:    req.CustomerCity,
		CustomerState:   req.CustomerState,
		CustomerZip:     req.CustomerZip,
		CustomerCountry: req.CustomerCountry,
		DiscountType:    req.DiscountType,
		DiscountValue:   req.DiscountValue,
		ValidUntil:      utcPtr(req.ValidUntil),
		Notes:           req.Notes,
		Items:           mapper.QuoteItemsFromInputs(req.QuoteItems),
	}
	mapper.ApplyTotals(quote, mapper.CalculateQuoteTotals(
		mapper.LineAmountsFromInputs(req.QuoteItems),
		mapper.DiscountPolicy{Type: quote.DiscountType, Value: quote.DiscountValue},
	))

	if err := s.insertWithNumber(ctx, quote); err != nil {
		return nil, err
	}

	s.logger.Info("quote created",
		zap.String("quote_id", quote.ID.String()),
		zap.String("quote_number", quote.QuoteNumber),
		zap.Float64("total", quote.Total))

	resp := &domain.QuoteResponse{}
	if req.SyncToQuickBooks {
		resp.Warning = s.pushAfterWrite(ctx, quote)
	}
	s.triggerExpirationAlerts()

	resp.QuoteDTO = mapper.ToQuoteDTO(quote)
	return resp, nil
}

// insertWithNumber retries with a fresh number when another writer took the same one
func (s *QuoteService) insertWithNumber(ctx context.Context, quote *domain.Quote) error {
	for attempt := 1; attempt <= s.numberRetries; attempt++ {
		number, err := s.numbers.Generate(ctx)
		if err != nil {
			return fmt.Errorf("failed to generate quote number: %w", err)
		}
		quote.QuoteNumber = number

		err = s.quoteRepo.CreateWithItems(ctx, quote)
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("failed to create quote: %w", err)
		}
		s.logger.Warn("quote number taken, retrying",
			zap.String("quote_number", number),
			zap.Int("attempt", attempt))
	}
	return ErrQuoteNumberConflict
}

// Update applies a partial update. Replacing items or changing the discount recomputes totals.
func (s *QuoteService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateQuoteRequest) (*domain.QuoteResponse, error) {
	quote, err := s.getQuote(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := validateUpdateRequest(req); err != nil {
		return nil, err
	}
	applyUpdate(quote, req)

	discountChanged := req.DiscountType.Set || req.DiscountValue.Set
	policy := mapper.DiscountPolicy{Type: quote.DiscountType, Value: quote.DiscountValue}

	switch {
	case req.QuoteItems != nil:
		quote.Items = mapper.QuoteItemsFromInputs(*req.QuoteItems)
		mapper.ApplyTotals(quote, mapper.CalculateQuoteTotals(mapper.LineAmountsFromInputs(*req.QuoteItems), policy))
		err = s.quoteRepo.UpdateWithItems(ctx, quote)
	case discountChanged:
		items, listErr := s.itemRepo.ListByQuote(ctx, id)
		if listErr != nil {
			return nil, fmt.Errorf("failed to load quote items: %w", listErr)
		}
		quote.Items = items
		mapper.ApplyTotals(quote, mapper.CalculateQuoteTotals(mapper.LineAmountsFromItems(items), policy))
		err = s.quoteRepo.UpdateHeader(ctx, quote)
	default:
		err = s.quoteRepo.UpdateHeader(ctx, quote)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to update quote: %w", err)
	}

	s.logger.Info("quote updated",
		zap.String("quote_id", id.String()),
		zap.String("quote_number", quote.QuoteNumber),
		zap.Bool("items_replaced", req.QuoteItems != nil))

	resp := &domain.QuoteResponse{}
	if req.SyncToQuickBooks {
		resp.Warning = s.pushAfterWrite(ctx, quote)
	}
	s.triggerExpirationAlerts()

	updated, err := s.getQuote(ctx, id)
	if err != nil {
		return nil, err
	}
	resp.QuoteDTO = mapper.ToQuoteDTO(updated)
	return resp, nil
}

func (s *QuoteService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.quoteRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuoteNotFound
		}
		return fmt.Errorf("failed to delete quote: %w", err)
	}
	s.logger.Info("quote deleted", zap.String("quote_id", id.String()))
	return nil
}

func (s *QuoteService) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuoteDTO, error) {
	quote, err := s.getQuote(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

func (s *QuoteService) List(ctx context.Context, filters domain.QuoteFilters) (*domain.PaginatedResponse, error) {
	if filters.PageSize < 1 {
		filters.PageSize = 20
	}
	if filters.PageSize > 200 {
		filters.PageSize = 200
	}
	if filters.Page < 1 {
		filters.Page = 1
	}

	quotes, total, err := s.quoteRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}

	dtos := make([]domain.QuoteDTO, len(quotes))
	for i := range quotes {
		dtos[i] = mapper.ToQuoteDTO(&quotes[i])
	}

	totalPages := int((total + int64(filters.PageSize) - 1) / int64(filters.PageSize))
	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalPages: totalPages,
	}, nil
}

// PushToQuickBooks sends the quote to QuickBooks and records the estimate id.
// Errors from QuickBooks are returned unchanged so callers can classify them.
func (s *QuoteService) PushToQuickBooks(ctx context.Context, id uuid.UUID) (*domain.PushQuoteResponse, error) {
	quote, err := s.getQuote(ctx, id)
	if err != nil {
		return nil, err
	}

	estimateID, err := s.push(ctx, quote)
	if err != nil {
		return nil, err
	}

	dto := mapper.ToQuoteDTO(quote)
	return &domain.PushQuoteResponse{
		OK:                   true,
		QuickBooksEstimateID: estimateID,
		Quote:                &dto,
	}, nil
}

// SyncFromQuickBooks pulls recent estimates into local quotes
func (s *QuoteService) SyncFromQuickBooks(ctx context.Context) (*domain.QuickBooksSyncResult, error) {
	result, err := s.sync.SyncFromQuickBooks(ctx)
	if err != nil {
		return nil, err
	}
	if result.Created > 0 || result.Updated > 0 {
		s.triggerExpirationAlerts()
	}
	return result, nil
}

// push runs the reconciler and persists the returned id and sync time on the quote
func (s *QuoteService) push(ctx context.Context, quote *domain.Quote) (string, error) {
	estimateID, err := s.sync.PushQuote(ctx, quote)
	if err != nil {
		return "", err
	}

	syncedAt := time.Now().UTC()
	if err := s.quoteRepo.MarkSynced(ctx, quote.ID, estimateID, syncedAt); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", ErrDuplicateEstimate
		}
		return "", fmt.Errorf("failed to record quickbooks estimate: %w", err)
	}
	quote.QuickBooksEstimateID = &estimateID
	quote.QuickBooksSyncedAt = &syncedAt
	return estimateID, nil
}

// pushAfterWrite pushes a freshly written quote and turns a failure into a warning
func (s *QuoteService) pushAfterWrite(ctx context.Context, quote *domain.Quote) string {
	if _, err := s.push(ctx, quote); err != nil {
		s.logger.Warn("quickbooks push after save failed",
			zap.String("quote_id", quote.ID.String()),
			zap.Error(err))
		return fmt.Sprintf("Quote saved but QuickBooks sync failed: %v", err)
	}
	return ""
}

// triggerExpirationAlerts runs the alert check detached from the request
func (s *QuoteService) triggerExpirationAlerts() {
	if s.alerts == nil {
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("panic in expiration alert check", zap.Any("panic", r))
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), s.alertTimeout)
		defer cancel()
		if err := s.alerts.CheckQuoteExpirationAlerts(ctx); err != nil {
			s.logger.Error("failed to check quote expiration alerts", zap.Error(err))
		}
	}()
}

func (s *QuoteService) getQuote(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	return quote, nil
}

func validateCreateRequest(req *domain.CreateQuoteRequest) error {
	if strings.TrimSpace(req.CustomerName) == "" {
		return newValidationError("customerName", "customerName is required")
	}
	if len(req.QuoteItems) == 0 {
		return newValidationError("quoteItems", "at least one quote item is required")
	}
	if req.Status != "" && !req.Status.IsValid() {
		return newValidationError("status", fmt.Sprintf("invalid status %q", req.Status))
	}
	if req.DiscountType != nil && !req.DiscountType.IsValid() {
		return newValidationError("discountType", fmt.Sprintf("invalid discount type %q", *req.DiscountType))
	}
	return validateItems(req.QuoteItems)
}

func validateUpdateRequest(req *domain.UpdateQuoteRequest) error {
	if req.Status != nil && !req.Status.IsValid() {
		return newValidationError("status", fmt.Sprintf("invalid status %q", *req.Status))
	}
	if req.CustomerName != nil && strings.TrimSpace(*req.CustomerName) == "" {
		return newValidationError("customerName", "customerName cannot be empty")
	}
	if req.DiscountType.Value != nil && !req.DiscountType.Value.IsValid() {
		return newValidationError("discountType", fmt.Sprintf("invalid discount type %q", *req.DiscountType.Value))
	}
	if req.QuoteItems != nil {
		if len(*req.QuoteItems) == 0 {
			return newValidationError("quoteItems", "at least one quote item is required")
		}
		return validateItems(*req.QuoteItems)
	}
	return nil
}

func validateItems(items []domain.QuoteItemInput) error {
	for i, item := range items {
		if strings.TrimSpace(item.ProductName) == "" {
			return newValidationError(fmt.Sprintf("quoteItems[%d].productName", i), "productName is required")
		}
		if item.Quantity <= 0 {
			return newValidationError(fmt.Sprintf("quoteItems[%d].quantity", i), "quantity must be greater than 0")
		}
		if item.UnitPrice < 0 {
			return newValidationError(fmt.Sprintf("quoteItems[%d].unitPrice", i), "unitPrice must not be negative")
		}
	}
	return nil
}

func applyUpdate(quote *domain.Quote, req *domain.UpdateQuoteRequest) {
	if req.Status != nil {
		quote.Status = *req.Status
	}
	if req.CustomerName != nil {
		quote.CustomerName = strings.TrimSpace(*req.CustomerName)
	}
	applyOptional(&quote.CustomerEmail, req.CustomerEmail)
	applyOptional(&quote.CustomerPhone, req.CustomerPhone)
	applyOptional(&quote.CustomerAddress, req.CustomerAddress)
	applyOptional(&quote.CustomerCity, req.CustomerCity)
	applyOptional(&quote.CustomerState, req.CustomerState)
	applyOptional(&quote.CustomerZip, req.CustomerZip)
	applyOptional(&quote.CustomerCountry, req.CustomerCountry)
	applyOptional(&quote.DiscountType, req.DiscountType)
	applyOptional(&quote.DiscountValue, req.DiscountValue)
	applyOptional(&quote.Notes, req.Notes)
	if req.ValidUntil.Set {
		quote.ValidUntil = utcPtr(req.ValidUntil.Value)
	}
}

func applyOptional[T any](dst **T, opt domain.Optional[T]) {
	if opt.Set {
		*dst = opt.Value
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
