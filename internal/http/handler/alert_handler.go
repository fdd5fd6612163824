package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/straye-as/quote-api/internal/service"
	"go.uber.org/zap"
)

type AlertHandler struct {
	alertService *service.AlertService
	logger       *zap.Logger
}

func NewAlertHandler(alertService *service.AlertService, logger *zap.Logger) *AlertHandler {
	return &AlertHandler{
		alertService: alertService,
		logger:       logger,
	}
}

// List godoc
// @Summary List alerts
// @Description List quote expiration alerts, newest first
// @Tags Alerts
// @Produce json
// @Param includeDismissed query bool false "Include dismissed alerts" default(false)
// @Success 200 {array} domain.AlertDTO
// @Failure 500 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /alerts [get]
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	includeDismissed, _ := strconv.ParseBool(r.URL.Query().Get("includeDismissed"))

	alerts, err := h.alertService.List(r.Context(), includeDismissed)
	if err != nil {
		h.logger.Error("failed to list alerts", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list alerts")
		return
	}
	respondJSON(w, http.StatusOK, alerts)
}

// Dismiss godoc
// @Summary Dismiss alert
// @Tags Alerts
// @Produce json
// @Param id path string true "Alert ID" format(uuid)
// @Success 200 {object} domain.AlertDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /alerts/{id}/dismiss [post]
func (h *AlertHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid alert ID format")
		return
	}

	alert, err := h.alertService.Dismiss(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrAlertNotFound) {
			respondWithError(w, http.StatusNotFound, "Alert not found")
			return
		}
		h.logger.Error("failed to dismiss alert", zap.Error(err), zap.String("alert_id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to dismiss alert")
		return
	}
	respondJSON(w, http.StatusOK, alert)
}
