package domain

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Optional distinguishes an absent JSON field from an explicit null.
// Set is true whenever the key was present; Value is nil for null.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// UnmarshalJSON is only invoked for keys present in the payload
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// Some returns a present, non-null Optional
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null returns a present Optional holding null
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

type QuoteDTO struct {
	ID                   uuid.UUID      `json:"id"`
	QuoteNumber          string         `json:"quoteNumber"`
	Status               QuoteStatus    `json:"status"`
	CustomerName         string         `json:"customerName"`
	CustomerEmail        *string        `json:"customerEmail"`
	CustomerPhone        *string        `json:"customerPhone"`
	CustomerAddress      *string        `json:"customerAddress"`
	CustomerCity         *string        `json:"customerCity"`
	CustomerState        *string        `json:"customerState"`
	CustomerZip          *string        `json:"customerZip"`
	CustomerCountry      *string        `json:"customerCountry"`
	Subtotal             float64        `json:"subtotal"`
	DiscountType         *DiscountType  `json:"discountType"`
	DiscountValue        *float64       `json:"discountValue"`
	DiscountAmount       float64        `json:"discountAmount"`
	Total                float64        `json:"total"`
	ValidUntil           *string        `json:"validUntil"` // ISO 8601
	Notes                *string        `json:"notes"`
	QuickBooksEstimateID *string        `json:"quickbooksEstimateId"`
	QuickBooksSyncedAt   *string        `json:"quickbooksSyncedAt"` // ISO 8601
	CreatedAt            string         `json:"createdAt"`
	UpdatedAt            string         `json:"updatedAt"`
	QuoteItems           []QuoteItemDTO `json:"quoteItems"`
}

type QuoteItemDTO struct {
	ID          uuid.UUID `json:"id"`
	ProductID   *string   `json:"productId"`
	ProductName string    `json:"productName"`
	SKU         *string   `json:"sku"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unitPrice"`
	TotalPrice  float64   `json:"totalPrice"`
}

// QuoteResponse is a quote plus a warning when the QuickBooks push failed after saving
type QuoteResponse struct {
	QuoteDTO
	Warning string `json:"warning,omitempty"`
}

type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

type QuoteItemInput struct {
	ProductID   *string `json:"productId,omitempty" validate:"omitempty,max=100"`
	ProductName string  `json:"productName" validate:"required,max=300"`
	SKU         *string `json:"sku,omitempty" validate:"omitempty,max=100"`
	Quantity    int     `json:"quantity" validate:"gt=0"`
	UnitPrice   float64 `json:"unitPrice" validate:"gte=0"`
}

type CreateQuoteRequest struct {
	Status           QuoteStatus      `json:"status,omitempty"`
	CustomerName     string           `json:"customerName" validate:"max=200"`
	CustomerEmail    *string          `json:"customerEmail,omitempty" validate:"omitempty,email,max=255"`
	CustomerPhone    *string          `json:"customerPhone,omitempty" validate:"omitempty,max=50"`
	CustomerAddress  *string          `json:"customerAddress,omitempty" validate:"omitempty,max=500"`
	CustomerCity     *string          `json:"customerCity,omitempty" validate:"omitempty,max=100"`
	CustomerState    *string          `json:"customerState,omitempty" validate:"omitempty,max=100"`
	CustomerZip      *string          `json:"customerZip,omitempty" validate:"omitempty,max=20"`
	CustomerCountry  *string          `json:"customerCountry,omitempty" validate:"omitempty,max=100"`
	DiscountType     *DiscountType    `json:"discountType,omitempty"`
	DiscountValue    *float64         `json:"discountValue,omitempty"`
	ValidUntil       *time.Time       `json:"validUntil,omitempty"`
	Notes            *string          `json:"notes,omitempty"`
	QuoteItems       []QuoteItemInput `json:"quoteItems" validate:"dive"`
	SyncToQuickBooks bool             `json:"syncToQuickBooks,omitempty"`
}

// UpdateQuoteRequest is a PATCH body. Absent fields are left unchanged; nullable
// fields use Optional so an explicit null clears them.
type UpdateQuoteRequest struct {
	Status           *QuoteStatus           `json:"status,omitempty"`
	CustomerName     *string                `json:"customerName,omitempty" validate:"omitempty,max=200"`
	CustomerEmail    Optional[string]       `json:"customerEmail"`
	CustomerPhone    Optional[string]       `json:"customerPhone"`
	CustomerAddress  Optional[string]       `json:"customerAddress"`
	CustomerCity     Optional[string]       `json:"customerCity"`
	CustomerState    Optional[string]       `json:"customerState"`
	CustomerZip      Optional[string]       `json:"customerZip"`
	CustomerCountry  Optional[string]       `json:"customerCountry"`
	DiscountType     Optional[DiscountType] `json:"discountType"`
	DiscountValue    Optional[float64]      `json:"discountValue"`
	ValidUntil       Optional[time.Time]    `json:"validUntil"`
	Notes            Optional[string]       `json:"notes"`
	QuoteItems       *[]QuoteItemInput      `json:"quoteItems,omitempty" validate:"omitempty,dive"`
	SyncToQuickBooks bool                   `json:"syncToQuickBooks,omitempty"`
}

// QuoteFilters narrows List results
type QuoteFilters struct {
	Status *QuoteStatus
	// Search matches quote number or customer name
	Search   string
	Page     int
	PageSize int
}

// PushQuoteResponse is the envelope returned by the push endpoint
type PushQuoteResponse struct {
	OK                   bool      `json:"ok"`
	QuickBooksEstimateID string    `json:"quickbooksEstimateId,omitempty"`
	Quote                *QuoteDTO `json:"quote,omitempty"`
	Error                string    `json:"error,omitempty"`
}

// QuickBooksSyncResult summarizes one pull of remote estimates
type QuickBooksSyncResult struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Errors  []string `json:"errors"`
}

// SyncFromQuickBooksResponse is the envelope returned by the pull endpoint
type SyncFromQuickBooksResponse struct {
	OK bool `json:"ok"`
	*QuickBooksSyncResult
	Error string `json:"error,omitempty"`
}

type QuickBooksStatusDTO struct {
	Connected bool `json:"connected"`
	// Source is "connection" for a stored record, "config" for static configuration
	Source               string  `json:"source,omitempty"`
	RealmID              string  `json:"realmId,omitempty"`
	AccessTokenExpiresAt *string `json:"accessTokenExpiresAt,omitempty"`
	ReconnectRequired    bool    `json:"reconnectRequired"`
	Error                string  `json:"error,omitempty"`
}

type SaveQuickBooksConnectionRequest struct {
	RealmID              string     `json:"realmId" validate:"required,max=50"`
	AccessToken          string     `json:"accessToken" validate:"required"`
	RefreshToken         *string    `json:"refreshToken,omitempty"`
	AccessTokenExpiresAt *time.Time `json:"accessTokenExpiresAt,omitempty"`
}

type AlertDTO struct {
	ID          uuid.UUID `json:"id"`
	Type        AlertType `json:"type"`
	QuoteID     uuid.UUID `json:"quoteId"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Dismissed   bool      `json:"dismissed"`
	DismissedAt *string   `json:"dismissedAt,omitempty"`
	CreatedAt   string    `json:"createdAt"`
}
