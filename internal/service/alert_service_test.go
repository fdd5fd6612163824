package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/quote-api/internal/domain"
	"github.com/straye-as/quote-api/internal/repository"
	"github.com/straye-as/quote-api/internal/service"
	"github.com/straye-as/quote-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupAlerts(t *testing.T) (*service.AlertService, *gorm.DB) {
	db := testutil.SetupTestDB(t)
	svc := service.NewAlertService(
		repository.NewAlertRepository(db),
		repository.NewQuoteRepository(db),
		7*24*time.Hour,
		zap.NewNop(),
	).WithClock(clock)
	return svc, db
}

func quoteValidUntil(t *testing.T, db *gorm.DB, number string, status domain.QuoteStatus, validUntil *time.Time) *domain.Quote {
	q := testutil.CreateTestQuote(t, db, number, domain.QuoteItem{ProductName: "X", Quantity: 1, UnitPrice: 1})
	require.NoError(t, db.Model(q).Updates(map[string]interface{}{
		"status":      status,
		"valid_until": validUntil,
	}).Error)
	return q
}

func TestAlertService_CheckQuoteExpirationAlerts(t *testing.T) {
	svc, db := setupAlerts(t)
	ctx := context.Background()

	expiring := quoteValidUntil(t, db, "260001", domain.QuoteStatusSent, testutil.Ptr(testutil.Date(2026, 3, 5)))
	expired := quoteValidUntil(t, db, "260002", domain.QuoteStatusDraft, testutil.Ptr(testutil.Date(2026, 2, 20)))
	quoteValidUntil(t, db, "260003", domain.QuoteStatusSent, testutil.Ptr(testutil.Date(2026, 5, 1)))
	quoteValidUntil(t, db, "260004", domain.QuoteStatusAccepted, testutil.Ptr(testutil.Date(2026, 3, 3)))
	quoteValidUntil(t, db, "260005", domain.QuoteStatusDraft, nil)

	require.NoError(t, svc.CheckQuoteExpirationAlerts(ctx))

	alerts, err := svc.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, alerts, 2)

	byQuote := map[uuid.UUID]domain.AlertType{}
	for _, a := range alerts {
		byQuote[a.QuoteID] = a.Type
	}
	assert.Equal(t, domain.AlertTypeQuoteExpiring, byQuote[expiring.ID])
	assert.Equal(t, domain.AlertTypeQuoteExpired, byQuote[expired.ID])

	// a second sweep does not duplicate
	require.NoError(t, svc.CheckQuoteExpirationAlerts(ctx))
	alerts, err = svc.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, alerts, 2)
}

func TestAlertService_Dismiss(t *testing.T) {
	svc, db := setupAlerts(t)
	ctx := context.Background()

	quoteValidUntil(t, db, "260001", domain.QuoteStatusSent, testutil.Ptr(testutil.Date(2026, 3, 5)))
	require.NoError(t, svc.CheckQuoteExpirationAlerts(ctx))

	alerts, err := svc.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	dismissed, err := svc.Dismiss(ctx, alerts[0].ID)
	require.NoError(t, err)
	assert.True(t, dismissed.Dismissed)
	assert.NotNil(t, dismissed.DismissedAt)

	active, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, active)

	_, err = svc.Dismiss(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrAlertNotFound)
}
