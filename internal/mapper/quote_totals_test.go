package mapper_test

import (
	"testing"

	"github.com/straye-as/quote-api/internal/domain"
	"github.com/straye-as/quote-api/internal/mapper"
	"github.com/stretchr/testify/assert"
)

func discount(t domain.DiscountType, v float64) mapper.DiscountPolicy {
	return mapper.DiscountPolicy{Type: &t, Value: &v}
}

func TestCalculateQuoteTotals_SubtotalMatchesSum(t *testing.T) {
	lines := []mapper.LineAmount{
		{Quantity: 3, UnitPrice: 10},
		{Quantity: 1, UnitPrice: 5},
		{Quantity: 7, UnitPrice: 0.1},
		{Quantity: 2, UnitPrice: 19.99},
	}

	var want float64
	for _, l := range lines {
		want += float64(l.Quantity) * l.UnitPrice
	}

	totals := mapper.CalculateQuoteTotals(lines, mapper.DiscountPolicy{})
	assert.Equal(t, want, totals.Subtotal)
	assert.Equal(t, 0.0, totals.DiscountAmount)
	assert.Equal(t, want, totals.Total)
}

func TestCalculateQuoteTotals_Discounts(t *testing.T) {
	subtotal200 := []mapper.LineAmount{{Quantity: 2, UnitPrice: 100}}

	tests := []struct {
		name         string
		policy       mapper.DiscountPolicy
		wantDiscount float64
		wantTotal    float64
	}{
		{"no discount", mapper.DiscountPolicy{}, 0, 200},
		{"percentage 10", discount(domain.DiscountTypePercentage, 10), 20, 180},
		{"fixed 50", discount(domain.DiscountTypeFixed, 50), 50, 150},
		{"fixed larger than subtotal is not clamped", discount(domain.DiscountTypeFixed, 500), 500, -300},
		{"zero value", discount(domain.DiscountTypePercentage, 0), 0, 200},
		{"negative value", discount(domain.DiscountTypeFixed, -5), 0, 200},
		{"type without value", mapper.DiscountPolicy{Type: discount(domain.DiscountTypeFixed, 1).Type}, 0, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals := mapper.CalculateQuoteTotals(subtotal200, tt.policy)
			assert.Equal(t, 200.0, totals.Subtotal)
			assert.Equal(t, tt.wantDiscount, totals.DiscountAmount)
			assert.Equal(t, tt.wantTotal, totals.Total)
		})
	}
}

func TestCalculateQuoteTotals_EmptyLines(t *testing.T) {
	totals := mapper.CalculateQuoteTotals(nil, discount(domain.DiscountTypeFixed, 10))
	assert.Equal(t, 0.0, totals.Subtotal)
	assert.Equal(t, -10.0, totals.Total)
}

func TestQuoteItemsFromInputs(t *testing.T) {
	sku := "B-1"
	items := mapper.QuoteItemsFromInputs([]domain.QuoteItemInput{
		{ProductName: "Bolt", SKU: &sku, Quantity: 3, UnitPrice: 10},
		{ProductName: "Nut", Quantity: 1, UnitPrice: 5},
	})

	assert.Len(t, items, 2)
	assert.Equal(t, 30.0, items[0].TotalPrice)
	assert.Equal(t, &sku, items[0].SKU)
	assert.Equal(t, 5.0, items[1].TotalPrice)
}

func TestLineAmountsAgreeAcrossSources(t *testing.T) {
	inputs := []domain.QuoteItemInput{
		{ProductName: "A", Quantity: 3, UnitPrice: 10},
		{ProductName: "B", Quantity: 1, UnitPrice: 5},
	}
	items := mapper.QuoteItemsFromInputs(inputs)
	policy := discount(domain.DiscountTypePercentage, 20)

	fromInputs := mapper.CalculateQuoteTotals(mapper.LineAmountsFromInputs(inputs), policy)
	fromStored := mapper.CalculateQuoteTotals(mapper.LineAmountsFromItems(items), policy)

	assert.Equal(t, fromInputs, fromStored)
	assert.Equal(t, 35.0, fromStored.Subtotal)
	assert.Equal(t, 7.0, fromStored.DiscountAmount)
	assert.Equal(t, 28.0, fromStored.Total)
}
