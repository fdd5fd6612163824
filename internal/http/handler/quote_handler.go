package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/straye-as/quote-api/internal/domain"
	"github.com/straye-as/quote-api/internal/service"
	"go.uber.org/zap"
)

type QuoteHandler struct {
	quoteService *service.QuoteService
	logger       *zap.Logger
}

func NewQuoteHandler(quoteService *service.QuoteService, logger *zap.Logger) *QuoteHandler {
	return &QuoteHandler{
		quoteService: quoteService,
		logger:       logger,
	}
}

// List godoc
// @Summary List quotes
// @Description Get paginated list of quotes, newest first
// @Tags Quotes
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param status query string false "Filter by status" Enums(DRAFT, SENT, ACCEPTED, REJECTED, EXPIRED)
// @Param search query string false "Search by quote number or customer name"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.QuoteDTO}
// @Failure 400 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /quotes [get]
func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	pageSize, _ := strconv.Atoi(query.Get("pageSize"))

	filters := domain.QuoteFilters{
		Search:   query.Get("search"),
		Page:     page,
		PageSize: pageSize,
	}
	if status := query.Get("status"); status != "" {
		s := domain.QuoteStatus(status)
		if !s.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid status filter")
			return
		}
		filters.Status = &s
	}

	result, err := h.quoteService.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("failed to list quotes", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list quotes")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get quote
// @Description Get a quote with its line items
// @Tags Quotes
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Success 200 {object} domain.QuoteDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /quotes/{id} [get]
func (h *QuoteHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseQuoteID(w, r)
	if !ok {
		return
	}

	quote, err := h.quoteService.GetByID(r.Context(), id)
	if err != nil {
		h.handleError(w, err, "get")
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

// Create godoc
// @Summary Create quote
// @Description Create a quote with line items. Set syncToQuickBooks to push it right away;
// @Description a failed push is reported in the warning field and does not undo the save.
// @Tags Quotes
// @Accept json
// @Produce json
// @Param request body domain.CreateQuoteRequest true "Quote data"
// @Success 201 {object} domain.QuoteResponse
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError "No unused quote number"
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /quotes [post]
func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.quoteService.Create(r.Context(), &req)
	if err != nil {
		h.handleError(w, err, "create")
		return
	}

	w.Header().Set("Location", "/api/v1/quotes/"+quote.ID.String())
	respondJSON(w, http.StatusCreated, quote)
}

// Update godoc
// @Summary Update quote
// @Description Partially update a quote. Absent fields are unchanged and null clears a field.
// @Description Supplying quoteItems replaces all items; items or discount changes recompute totals.
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Param request body domain.UpdateQuoteRequest true "Fields to change"
// @Success 200 {object} domain.QuoteResponse
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /quotes/{id} [patch]
func (h *QuoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseQuoteID(w, r)
	if !ok {
		return
	}

	var req domain.UpdateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.quoteService.Update(r.Context(), id, &req)
	if err != nil {
		h.handleError(w, err, "update")
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

// Delete godoc
// @Summary Delete quote
// @Description Delete a quote and its line items. The QuickBooks estimate is left alone.
// @Tags Quotes
// @Param id path string true "Quote ID" format(uuid)
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /quotes/{id} [delete]
func (h *QuoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseQuoteID(w, r)
	if !ok {
		return
	}

	if err := h.quoteService.Delete(r.Context(), id); err != nil {
		h.handleError(w, err, "delete")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PushToQuickBooks godoc
// @Summary Push quote to QuickBooks
// @Description Create the QuickBooks estimate for a quote, or update the linked one
// @Tags QuickBooks
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Success 200 {object} domain.PushQuoteResponse
// @Failure 401 {object} domain.PushQuoteResponse "QuickBooks not connected or authorization expired"
// @Failure 404 {object} domain.PushQuoteResponse
// @Failure 502 {object} domain.PushQuoteResponse "QuickBooks request failed"
// @Security ApiKeyAuth
// @Router /quotes/{id}/push-to-quickbooks [post]
func (h *QuoteHandler) PushToQuickBooks(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.PushQuoteResponse{Error: "Invalid quote ID format"})
		return
	}

	result, err := h.quoteService.PushToQuickBooks(r.Context(), id)
	if err != nil {
		status := h.syncErrorStatus(err, "push quote")
		respondJSON(w, status, domain.PushQuoteResponse{Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// SyncFromQuickBooks godoc
// @Summary Pull estimates from QuickBooks
// @Description Import the most recently updated QuickBooks estimates as quotes.
// @Description Estimates that fail to import are listed in errors; the rest are still imported.
// @Tags QuickBooks
// @Produce json
// @Success 200 {object} domain.SyncFromQuickBooksResponse
// @Failure 401 {object} domain.SyncFromQuickBooksResponse "QuickBooks not connected or authorization expired"
// @Failure 502 {object} domain.SyncFromQuickBooksResponse "QuickBooks request failed"
// @Security ApiKeyAuth
// @Router /quotes/sync-from-quickbooks [post]
func (h *QuoteHandler) SyncFromQuickBooks(w http.ResponseWriter, r *http.Request) {
	result, err := h.quoteService.SyncFromQuickBooks(r.Context())
	if err != nil {
		status := h.syncErrorStatus(err, "sync from quickbooks")
		respondJSON(w, status, domain.SyncFromQuickBooksResponse{Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, domain.SyncFromQuickBooksResponse{OK: true, QuickBooksSyncResult: result})
}

func (h *QuoteHandler) syncErrorStatus(err error, op string) int {
	switch {
	case errors.Is(err, service.ErrQuoteNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case isQuickBooksError(err):
		status := quickBooksStatus(err)
		h.logger.Warn("quickbooks "+op+" failed", zap.Int("status", status), zap.Error(err))
		return status
	default:
		h.logger.Error("failed to "+op, zap.Error(err))
		return http.StatusInternalServerError
	}
}

func (h *QuoteHandler) handleError(w http.ResponseWriter, err error, op string) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		respondValidationError(w, err)
	case errors.Is(err, service.ErrQuoteNotFound):
		respondWithError(w, http.StatusNotFound, "Quote not found")
	case errors.Is(err, service.ErrConflict):
		respondWithError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("failed to "+op+" quote", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to "+op+" quote")
	}
}

func parseQuoteID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID format")
		return uuid.Nil, false
	}
	return id, true
}
