package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/straye-as/quote-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteStatus_IsValid(t *testing.T) {
	for _, s := range []domain.QuoteStatus{
		domain.QuoteStatusDraft,
		domain.QuoteStatusSent,
		domain.QuoteStatusAccepted,
		domain.QuoteStatusRejected,
		domain.QuoteStatusExpired,
	} {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, domain.QuoteStatus("draft").IsValid())
	assert.False(t, domain.QuoteStatus("").IsValid())
}

func TestDiscountType_IsValid(t *testing.T) {
	assert.True(t, domain.DiscountTypePercentage.IsValid())
	assert.True(t, domain.DiscountTypeFixed.IsValid())
	assert.False(t, domain.DiscountType("bogus").IsValid())
}

func TestUpdateQuoteRequest_OptionalFields(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantSet   bool
		wantValue *float64
	}{
		{"absent", `{}`, false, nil},
		{"explicit null", `{"discountValue": null}`, true, nil},
		{"value", `{"discountValue": 12.5}`, true, ptr(12.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req domain.UpdateQuoteRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			assert.Equal(t, tt.wantSet, req.DiscountValue.Set)
			assert.Equal(t, tt.wantValue, req.DiscountValue.Value)
		})
	}
}

func TestUpdateQuoteRequest_ItemsPresence(t *testing.T) {
	var absent domain.UpdateQuoteRequest
	require.NoError(t, json.Unmarshal([]byte(`{"status":"SENT"}`), &absent))
	assert.Nil(t, absent.QuoteItems)

	var empty domain.UpdateQuoteRequest
	require.NoError(t, json.Unmarshal([]byte(`{"quoteItems":[]}`), &empty))
	require.NotNil(t, empty.QuoteItems)
	assert.Empty(t, *empty.QuoteItems)
}

func TestBaseModel_BeforeCreateAssignsID(t *testing.T) {
	q := &domain.Quote{}
	require.NoError(t, q.BeforeCreate(nil))
	assert.NotEqual(t, uuid.Nil, q.ID)

	existing := uuid.New()
	q2 := &domain.Quote{BaseModel: domain.BaseModel{ID: existing}}
	require.NoError(t, q2.BeforeCreate(nil))
	assert.Equal(t, existing, q2.ID)
}

func TestQuoteResponse_FlattensQuoteAndWarning(t *testing.T) {
	resp := domain.QuoteResponse{
		QuoteDTO: domain.QuoteDTO{QuoteNumber: "260001", Status: domain.QuoteStatusDraft},
		Warning:  "QuickBooks push failed",
	}
	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "260001", m["quoteNumber"])
	assert.Equal(t, "QuickBooks push failed", m["warning"])
}

func ptr[T any](v T) *T { return &v }
