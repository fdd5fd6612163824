package service_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/straye-as/quote-api/internal/domain"
	"github.com/straye-as/quote-api/internal/repository"
	"github.com/straye-as/quote-api/internal/service"
	"github.com/straye-as/quote-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestQuoteNumberService_GenerateSequence(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		expected string
	}{
		{name: "first of the year", expected: "260001"},
		{name: "max plus one", existing: []string{"260003", "260041"}, expected: "260042"},
		{name: "gaps are not filled", existing: []string{"260001", "260010"}, expected: "260011"},
		{name: "other years are ignored", existing: []string{"259999"}, expected: "260001"},
		{name: "non numeric suffix is ignored", existing: []string{"26-ABC", "260002"}, expected: "260003"},
		{name: "widens past 9999", existing: []string{"269999"}, expected: "2610000"},
		{name: "oversized imported suffix is ignored", existing: []string{"269223372036854775807", "260005"}, expected: "260006"},
		{name: "suffix at the ceiling is ignored", existing: []string{"26999999999"}, expected: "260001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			for _, n := range tt.existing {
				testutil.CreateTestQuote(t, db, n, domain.QuoteItem{ProductName: "X", Quantity: 1, UnitPrice: 1})
			}
			svc := service.NewQuoteNumberService(repository.NewQuoteRepository(db), "", zap.NewNop()).WithClock(clock)

			number, err := svc.Generate(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, number)
		})
	}
}

func TestQuoteNumberService_Legacy(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewQuoteNumberService(repository.NewQuoteRepository(db), service.QuoteNumberFormatLegacy, zap.NewNop()).WithClock(clock)

	pattern := regexp.MustCompile(`^Q-[0-9A-Z]+-[0-9A-Z]{4}$`)

	legacy := svc.GenerateLegacy()
	assert.Regexp(t, pattern, legacy)

	number, err := svc.Generate(context.Background())
	require.NoError(t, err)
	assert.Regexp(t, pattern, number)
}
