package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/straye-as/quote-api/internal/domain"
	"github.com/straye-as/quote-api/internal/service"
	"go.uber.org/zap"
)

type QuickBooksHandler struct {
	credentialService *service.CredentialService
	logger            *zap.Logger
}

func NewQuickBooksHandler(credentialService *service.CredentialService, logger *zap.Logger) *QuickBooksHandler {
	return &QuickBooksHandler{
		credentialService: credentialService,
		logger:            logger,
	}
}

// Status godoc
// @Summary QuickBooks connection status
// @Description Report which credentials are in use and whether a reconnect is needed
// @Tags QuickBooks
// @Produce json
// @Success 200 {object} domain.QuickBooksStatusDTO
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /quickbooks/status [get]
func (h *QuickBooksHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.credentialService.Status(r.Context())
	if err != nil {
		h.logger.Error("failed to get quickbooks status", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get QuickBooks status")
		return
	}
	respondJSON(w, http.StatusOK, status)
}

// SaveConnection godoc
// @Summary Store QuickBooks tokens
// @Description Save the realm and tokens obtained from the QuickBooks OAuth flow
// @Tags QuickBooks
// @Accept json
// @Produce json
// @Param request body domain.SaveQuickBooksConnectionRequest true "Connection data"
// @Success 200 {object} domain.QuickBooksStatusDTO
// @Failure 400 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /quickbooks/connection [put]
func (h *QuickBooksHandler) SaveConnection(w http.ResponseWriter, r *http.Request) {
	var req domain.SaveQuickBooksConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	status, err := h.credentialService.SaveConnection(r.Context(), &req)
	if err != nil {
		var vErr *service.ValidationError
		if errors.As(err, &vErr) {
			respondValidationError(w, err)
			return
		}
		h.logger.Error("failed to save quickbooks connection", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to save QuickBooks connection")
		return
	}
	respondJSON(w, http.StatusOK, status)
}
