package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/straye-as/quote-api/internal/domain"
	"gorm.io/gorm"
)

type QuoteItemRepository struct {
	db *gorm.DB
}

func NewQuoteItemRepository(db *gorm.DB) *QuoteItemRepository {
	return &QuoteItemRepository{db: db}
}

// ListByQuote returns a quote's items in line order
func (r *QuoteItemRepository) ListByQuote(ctx context.Context, quoteID uuid.UUID) ([]domain.QuoteItem, error) {
	var items []domain.QuoteItem
	err := r.db.WithContext(ctx).
		Where("quote_id = ?", quoteID).
		Order("position ASC").
		Find(&items).Error
	return items, err
}
