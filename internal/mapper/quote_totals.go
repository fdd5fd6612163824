package mapper

import "github.com/straye-as/quote-api/internal/domain"

// LineAmount is the part of a quote line that feeds the totals
type LineAmount struct {
	Quantity  int
	UnitPrice float64
}

// DiscountPolicy is a quote's discount type and value, either of which may be unset
type DiscountPolicy struct {
	Type  *domain.DiscountType
	Value *float64
}

// QuoteTotals holds the computed monetary fields of a quote
type QuoteTotals struct {
	Subtotal       float64
	DiscountAmount float64
	Total          float64
}

// ItemTotalPrice returns quantity * unitPrice
func ItemTotalPrice(quantity int, unitPrice float64) float64 {
	return float64(quantity) * unitPrice
}

// CalculateQuoteTotals computes subtotal, discount and total. It is the only place
// quote totals are derived for create, item replacement and discount-only updates.
// Fixed discounts are not clamped, so the total can be negative.
func CalculateQuoteTotals(lines []LineAmount, policy DiscountPolicy) QuoteTotals {
	var subtotal float64
	for _, l := range lines {
		subtotal += ItemTotalPrice(l.Quantity, l.UnitPrice)
	}

	discount := DiscountAmount(subtotal, policy)
	return QuoteTotals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		Total:          subtotal - discount,
	}
}

// DiscountAmount applies a discount policy to a subtotal
func DiscountAmount(subtotal float64, policy DiscountPolicy) float64 {
	if policy.Type == nil || policy.Value == nil || *policy.Value <= 0 {
		return 0
	}
	switch *policy.Type {
	case domain.DiscountTypePercentage:
		return subtotal * (*policy.Value / 100)
	case domain.DiscountTypeFixed:
		return *policy.Value
	default:
		return 0
	}
}

// LineAmountsFromItems extracts the totals input from stored quote items
func LineAmountsFromItems(items []domain.QuoteItem) []LineAmount {
	lines := make([]LineAmount, len(items))
	for i, item := range items {
		lines[i] = LineAmount{Quantity: item.Quantity, UnitPrice: item.UnitPrice}
	}
	return lines
}

// LineAmountsFromInputs extracts the totals input from request items
func LineAmountsFromInputs(items []domain.QuoteItemInput) []LineAmount {
	lines := make([]LineAmount, len(items))
	for i, item := range items {
		lines[i] = LineAmount{Quantity: item.Quantity, UnitPrice: item.UnitPrice}
	}
	return lines
}

// ApplyTotals copies computed totals onto a quote
func ApplyTotals(quote *domain.Quote, totals QuoteTotals) {
	quote.Subtotal = totals.Subtotal
	quote.DiscountAmount = totals.DiscountAmount
	quote.Total = totals.Total
}

// QuoteItemsFromInputs builds quote items with computed line totals
func QuoteItemsFromInputs(inputs []domain.QuoteItemInput) []domain.QuoteItem {
	items := make([]domain.QuoteItem, len(inputs))
	for i, in := range inputs {
		items[i] = domain.QuoteItem{
			ProductID:   in.ProductID,
			ProductName: in.ProductName,
			SKU:         in.SKU,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			TotalPrice:  ItemTotalPrice(in.Quantity, in.UnitPrice),
		}
	}
	return items
}
