package mapper

import (
	"time"

	"github.com/straye-as/quote-api/internal/domain"
)

const timestampLayout = "2006-01-02T15:04:05Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// ToQuoteDTO converts Quote to QuoteDTO
func ToQuoteDTO(quote *domain.Quote) domain.QuoteDTO {
	items := make([]domain.QuoteItemDTO, len(quote.Items))
	for i := range quote.Items {
		items[i] = ToQuoteItemDTO(&quote.Items[i])
	}

	return domain.QuoteDTO{
		ID:                   quote.ID,
		QuoteNumber:          quote.QuoteNumber,
		Status:               quote.Status,
		CustomerName:         quote.CustomerName,
		CustomerEmail:        quote.CustomerEmail,
		CustomerPhone:        quote.CustomerPhone,
		CustomerAddress:      quote.CustomerAddress,
		CustomerCity:         quote.CustomerCity,
		CustomerState:        quote.CustomerState,
		CustomerZip:          quote.CustomerZip,
		CustomerCountry:      quote.CustomerCountry,
		Subtotal:             quote.Subtotal,
		DiscountType:         quote.DiscountType,
		DiscountValue:        quote.DiscountValue,
		DiscountAmount:       quote.DiscountAmount,
		Total:                quote.Total,
		ValidUntil:           formatTimePtr(quote.ValidUntil),
		Notes:                quote.Notes,
		QuickBooksEstimateID: quote.QuickBooksEstimateID,
		QuickBooksSyncedAt:   formatTimePtr(quote.QuickBooksSyncedAt),
		CreatedAt:            formatTime(quote.CreatedAt),
		UpdatedAt:            formatTime(quote.UpdatedAt),
		QuoteItems:           items,
	}
}

// ToQuoteItemDTO converts QuoteItem to QuoteItemDTO
func ToQuoteItemDTO(item *domain.QuoteItem) domain.QuoteItemDTO {
	return domain.QuoteItemDTO{
		ID:          item.ID,
		ProductID:   item.ProductID,
		ProductName: item.ProductName,
		SKU:         item.SKU,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		TotalPrice:  item.TotalPrice,
	}
}

// ToAlertDTO converts Alert to AlertDTO
func ToAlertDTO(alert *domain.Alert) domain.AlertDTO {
	return domain.AlertDTO{
		ID:          alert.ID,
		Type:        alert.Type,
		QuoteID:     alert.QuoteID,
		Title:       alert.Title,
		Message:     alert.Message,
		Dismissed:   alert.Dismissed,
		DismissedAt: formatTimePtr(alert.DismissedAt),
		CreatedAt:   formatTime(alert.CreatedAt),
	}
}
