// Package testutil holds helpers shared by package tests
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/quote-api/internal/database"
	"github.com/straye-as/quote-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SetupTestDB returns a migrated in-memory SQLite database private to the test
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := database.Open(sqlite.Open(dsn))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// CreateTestQuote inserts a quote with the given items and computed totals
func CreateTestQuote(t *testing.T, db *gorm.DB, number string, items ...domain.QuoteItem) *domain.Quote {
	t.Helper()

	var subtotal float64
	for i := range items {
		items[i].Position = i
		if items[i].TotalPrice == 0 {
			items[i].TotalPrice = float64(items[i].Quantity) * items[i].UnitPrice
		}
		subtotal += items[i].TotalPrice
	}

	quote := &domain.Quote{
		QuoteNumber:  number,
		Status:       domain.QuoteStatusDraft,
		CustomerName: "Test Customer " + number,
		Subtotal:     subtotal,
		Total:        subtotal,
		Items:        items,
	}
	require.NoError(t, db.Create(quote).Error)
	return quote
}

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}

// Date returns midnight UTC on the given day
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
