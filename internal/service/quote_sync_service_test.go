package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/straye-as/quote-api/internal/domain"
	"github.com/straye-as/quote-api/internal/quickbooks"
	"github.com/straye-as/quote-api/internal/repository"
	"github.com/straye-as/quote-api/internal/service"
	"github.com/straye-as/quote-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type syncFixture struct {
	db        *gorm.DB
	qb        *fakeQuickBooks
	quoteRepo *repository.QuoteRepository
	numbers   *service.QuoteNumberService
	sync      *service.QuoteSyncService
}

func setupSync(t *testing.T) *syncFixture {
	db := testutil.SetupTestDB(t)
	log := zap.NewNop()
	qb := newFakeQuickBooks()
	quoteRepo := repository.NewQuoteRepository(db)
	numbers := service.NewQuoteNumberService(quoteRepo, service.QuoteNumberFormatSequence, log).WithClock(clock)
	sync := service.NewQuoteSyncService(qb, quoteRepo, numbers, 100, "1", log).WithClock(clock)
	return &syncFixture{db: db, qb: qb, quoteRepo: quoteRepo, numbers: numbers, sync: sync}
}

func sampleEstimate(id, docNumber, customer string) quickbooks.Estimate {
	qty, unit, amount := 2.0, 10.0, 20.0
	qty2, amount2 := 1.0, 15.0
	total := 28.0
	return quickbooks.Estimate{
		ID:          id,
		SyncToken:   "3",
		DocNumber:   docNumber,
		CustomerRef: quickbooks.Ref{Value: "58", Name: customer},
		TotalAmt:    &total,
		TxnStatus:   "Pending",
		Line: []quickbooks.Line{
			{
				DetailType:          quickbooks.DetailTypeSalesItemLine,
				Amount:              &amount,
				Description:         "Bolt",
				SalesItemLineDetail: &quickbooks.SalesItemLineDetail{Qty: &qty, UnitPrice: &unit},
			},
			{
				DetailType:          quickbooks.DetailTypeSalesItemLine,
				Amount:              &amount2,
				Description:         "Nut",
				SalesItemLineDetail: &quickbooks.SalesItemLineDetail{Qty: &qty2},
			},
			{DetailType: "SubTotalLineDetail", Amount: testutil.Ptr(35.0)},
		},
	}
}

func TestQuoteSyncService_PushQuote_CreatesEstimate(t *testing.T) {
	f := setupSync(t)
	ctx := context.Background()

	quote := testutil.CreateTestQuote(t, f.db, "260001",
		domain.QuoteItem{ProductName: "Bolt", SKU: testutil.Ptr("B-1"), Quantity: 2, UnitPrice: 10})
	quote.CustomerCity = testutil.Ptr("Oslo")
	quote.Notes = testutil.Ptr("Thanks")

	estimateID, err := f.sync.PushQuote(ctx, quote)
	require.NoError(t, err)
	assert.NotEmpty(t, estimateID)

	assert.Equal(t, 1, f.qb.count("createEstimate"))
	assert.Equal(t, 0, f.qb.count("getEstimate"))
	assert.Equal(t, 0, f.qb.count("updateEstimate"))
	assert.Equal(t, 1, f.qb.count("createCustomer"))

	require.Len(t, f.qb.createdCustIns, 1)
	assert.Equal(t, "Oslo", f.qb.createdCustIns[0].Address)

	require.Len(t, f.qb.createdInputs, 1)
	input := f.qb.createdInputs[0]
	assert.Equal(t, "260001", input.DocNumber)
	assert.Equal(t, "Thanks", input.Memo)
	assert.Equal(t, fixedNow, input.TxnDate)
	require.Len(t, input.Lines, 1)
	assert.Equal(t, "Bolt (B-1)", input.Lines[0].Description)
	assert.Equal(t, 20.0, *input.Lines[0].Amount)
	assert.Equal(t, "1", input.Lines[0].SalesItemLineDetail.ItemRef.Value)

	// the reconciler leaves persistence to the caller
	stored, err := f.quoteRepo.GetByID(ctx, quote.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.QuickBooksEstimateID)
}

func TestQuoteSyncService_PushQuote_UpdatesLinkedEstimate(t *testing.T) {
	f := setupSync(t)
	ctx := context.Background()

	f.qb.customers = []quickbooks.Customer{{ID: "7", DisplayName: "Test Customer 260001"}}
	f.qb.estimates["145"] = &quickbooks.Estimate{ID: "145", SyncToken: "4"}

	quote := testutil.CreateTestQuote(t, f.db, "260001", domain.QuoteItem{ProductName: "Bolt", Quantity: 1, UnitPrice: 10})
	quote.QuickBooksEstimateID = testutil.Ptr("145")

	estimateID, err := f.sync.PushQuote(ctx, quote)
	require.NoError(t, err)
	assert.Equal(t, "145", estimateID)

	assert.Equal(t, 1, f.qb.count("getEstimate"))
	assert.Equal(t, 1, f.qb.count("updateEstimate"))
	assert.Equal(t, 0, f.qb.count("createEstimate"))
	assert.Equal(t, 0, f.qb.count("createCustomer"))
	assert.Equal(t, []string{"4"}, f.qb.updatedTokens)
}

func TestQuoteSyncService_PushQuote_FirstCustomerMatchWins(t *testing.T) {
	f := setupSync(t)
	f.qb.customers = []quickbooks.Customer{
		{ID: "7", DisplayName: "Test Customer 260001"},
		{ID: "8", DisplayName: "Test Customer 260001"},
	}
	quote := testutil.CreateTestQuote(t, f.db, "260001", domain.QuoteItem{ProductName: "Bolt", Quantity: 1, UnitPrice: 10})

	_, err := f.sync.PushQuote(context.Background(), quote)
	require.NoError(t, err)
	require.Len(t, f.qb.createdInputs, 1)
	assert.Equal(t, "7", f.qb.createdInputs[0].CustomerRef.Value)
}

func TestQuoteSyncService_PushQuote_PropagatesClientErrors(t *testing.T) {
	f := setupSync(t)
	f.qb.searchErr = quickbooks.ErrReconnectRequired
	quote := testutil.CreateTestQuote(t, f.db, "260001", domain.QuoteItem{ProductName: "Bolt", Quantity: 1, UnitPrice: 10})

	_, err := f.sync.PushQuote(context.Background(), quote)
	assert.ErrorIs(t, err, quickbooks.ErrReconnectRequired)
	assert.Equal(t, 0, f.qb.count("createEstimate"))
}

func TestQuoteSyncService_SyncFromQuickBooks_CreateThenUpdate(t *testing.T) {
	f := setupSync(t)
	ctx := context.Background()
	f.qb.queried = []quickbooks.Estimate{sampleEstimate("145", "1001", "Acme AS")}

	first, err := f.sync.SyncFromQuickBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Created)
	assert.Equal(t, 0, first.Updated)
	assert.Empty(t, first.Errors)

	created, err := f.quoteRepo.GetByQuickBooksEstimateID(ctx, "145")
	require.NoError(t, err)
	assert.Equal(t, "1001", created.QuoteNumber)
	assert.Equal(t, domain.QuoteStatusSent, created.Status)
	assert.Equal(t, "Acme AS", created.CustomerName)
	assert.InDelta(t, 35.0, created.Subtotal, 1e-9)
	assert.InDelta(t, 7.0, created.DiscountAmount, 1e-9)
	assert.InDelta(t, 28.0, created.Total, 1e-9)
	require.NotNil(t, created.DiscountType)
	assert.Equal(t, domain.DiscountTypeFixed, *created.DiscountType)
	require.Len(t, created.Items, 2)
	assert.Equal(t, 15.0, created.Items[1].UnitPrice)

	// a local edit to contact details survives the next pull
	created.CustomerEmail = testutil.Ptr("post@acme.no")
	require.NoError(t, f.quoteRepo.UpdateHeader(ctx, created))

	second, err := f.sync.SyncFromQuickBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 1, second.Updated)

	updated, err := f.quoteRepo.GetByQuickBooksEstimateID(ctx, "145")
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "1001", updated.QuoteNumber)
	assert.Len(t, updated.Items, 2)
	require.NotNil(t, updated.CustomerEmail)
	assert.Equal(t, "post@acme.no", *updated.CustomerEmail)

	var count int64
	require.NoError(t, f.db.Model(&domain.Quote{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestQuoteSyncService_SyncFromQuickBooks_Numbering(t *testing.T) {
	tests := []struct {
		name      string
		docNumber string
		existing  string
		fresh     bool
	}{
		{name: "keeps doc number", docNumber: "A-77"},
		{name: "empty doc number gets a fresh number", docNumber: "", fresh: true},
		{name: "placeholder doc number gets a fresh number", docNumber: "QB-999", fresh: true},
		{name: "doc number owned by another quote", docNumber: "260001", existing: "260001", fresh: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupSync(t)
			ctx := context.Background()
			if tt.existing != "" {
				testutil.CreateTestQuote(t, f.db, tt.existing, domain.QuoteItem{ProductName: "X", Quantity: 1, UnitPrice: 1})
			}
			f.qb.queried = []quickbooks.Estimate{sampleEstimate("145", tt.docNumber, "Acme AS")}

			result, err := f.sync.SyncFromQuickBooks(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, result.Created)

			quote, err := f.quoteRepo.GetByQuickBooksEstimateID(ctx, "145")
			require.NoError(t, err)
			if !tt.fresh {
				assert.Equal(t, tt.docNumber, quote.QuoteNumber)
				return
			}
			assert.False(t, strings.HasPrefix(quote.QuoteNumber, "QB-"))
			assert.True(t, strings.HasPrefix(quote.QuoteNumber, "26"), quote.QuoteNumber)
			assert.NotEqual(t, tt.existing, quote.QuoteNumber)
		})
	}
}

func TestQuoteSyncService_SyncFromQuickBooks_ContinuesAfterFailure(t *testing.T) {
	f := setupSync(t)
	ctx := context.Background()

	bad := sampleEstimate("200", "B-1", "")
	good := sampleEstimate("201", "B-2", "Globex")
	f.qb.queried = []quickbooks.Estimate{bad, good}

	result, err := f.sync.SyncFromQuickBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 0, result.Updated)
	require.Len(t, result.Errors, 1)
	assert.True(t, strings.HasPrefix(result.Errors[0], "Estimate 200: "), result.Errors[0])

	_, err = f.quoteRepo.GetByQuickBooksEstimateID(ctx, "201")
	assert.NoError(t, err)
}

func TestQuoteSyncService_SyncFromQuickBooks_QueryFailure(t *testing.T) {
	f := setupSync(t)
	f.qb.queryErr = quickbooks.ErrNotConfigured

	result, err := f.sync.SyncFromQuickBooks(context.Background())
	assert.Nil(t, result)
	assert.ErrorIs(t, err, quickbooks.ErrNotConfigured)
}
