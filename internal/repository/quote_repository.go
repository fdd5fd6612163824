package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/quote-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

// CreateWithItems inserts the quote header and its Items in one transaction.
// A failed item insert rolls back the header.
func (r *QuoteRepository) CreateWithItems(ctx context.Context, quote *domain.Quote) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(quote).Error; err != nil {
			return err
		}
		return insertItems(tx, quote.ID, quote.Items)
	})
}

// UpdateHeader writes the quote's header columns. Items are left untouched.
func (r *QuoteRepository) UpdateHeader(ctx context.Context, quote *domain.Quote) error {
	return updateHeader(r.db.WithContext(ctx), quote)
}

// UpdateWithItems replaces the quote's items with quote.Items and writes the header,
// all in one transaction.
func (r *QuoteRepository) UpdateWithItems(ctx context.Context, quote *domain.Quote) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quote_id = ?", quote.ID).Delete(&domain.QuoteItem{}).Error; err != nil {
			return err
		}
		if err := updateHeader(tx, quote); err != nil {
			return err
		}
		return insertItems(tx, quote.ID, quote.Items)
	})
}

// Delete removes a quote together with its items and alerts
func (r *QuoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quote_id = ?", id).Delete(&domain.QuoteItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("quote_id = ?", id).Delete(&domain.Alert{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&domain.Quote{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *QuoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	var quote domain.Quote
	err := r.db.WithContext(ctx).
		Preload("Items", orderItems).
		Where("id = ?", id).
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// GetByQuickBooksEstimateID finds the quote correlated with a remote estimate
func (r *QuoteRepository) GetByQuickBooksEstimateID(ctx context.Context, estimateID string) (*domain.Quote, error) {
	var quote domain.Quote
	err := r.db.WithContext(ctx).
		Preload("Items", orderItems).
		Where("quickbooks_estimate_id = ?", estimateID).
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// List returns quotes newest first with their items
func (r *QuoteRepository) List(ctx context.Context, filters domain.QuoteFilters) ([]domain.Quote, int64, error) {
	var quotes []domain.Quote
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Quote{})

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if s := strings.TrimSpace(filters.Search); s != "" {
		pattern := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(quote_number) LIKE ? OR LOWER(customer_name) LIKE ?", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filters.Page - 1) * filters.PageSize
	err := query.Preload("Items", orderItems).
		Order("created_at DESC").
		Offset(offset).
		Limit(filters.PageSize).
		Find(&quotes).Error

	return quotes, total, err
}

// QuoteNumberExists reports whether a quote other than excludeID holds number
func (r *QuoteRepository) QuoteNumberExists(ctx context.Context, number string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&domain.Quote{}).Where("quote_number = ?", number)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListQuoteNumbersWithPrefix returns every stored quote number starting with prefix
func (r *QuoteRepository) ListQuoteNumbersWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	var numbers []string
	err := r.db.WithContext(ctx).
		Model(&domain.Quote{}).
		Where("quote_number LIKE ?", prefix+"%").
		Pluck("quote_number", &numbers).Error
	return numbers, err
}

// MarkSynced records the correlated estimate id and the time of a successful push
func (r *QuoteRepository) MarkSynced(ctx context.Context, id uuid.UUID, estimateID string, syncedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Quote{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"quickbooks_estimate_id": estimateID,
			"quickbooks_synced_at":   syncedAt,
			"updated_at":             time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListExpiring returns quotes in the given statuses whose validUntil is at or before cutoff
func (r *QuoteRepository) ListExpiring(ctx context.Context, statuses []domain.QuoteStatus, cutoff time.Time) ([]domain.Quote, error) {
	var quotes []domain.Quote
	err := r.db.WithContext(ctx).
		Where("status IN ?", statuses).
		Where("valid_until IS NOT NULL AND valid_until <= ?", cutoff).
		Order("valid_until ASC").
		Find(&quotes).Error
	return quotes, err
}

func orderItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func insertItems(tx *gorm.DB, quoteID uuid.UUID, items []domain.QuoteItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].ID = uuid.Nil
		items[i].QuoteID = quoteID
		items[i].Position = i
	}
	return tx.Create(&items).Error
}

func updateHeader(tx *gorm.DB, quote *domain.Quote) error {
	quote.UpdatedAt = time.Now().UTC()
	result := tx.Model(&domain.Quote{}).
		Where("id = ?", quote.ID).
		Updates(map[string]interface{}{
			"quote_number":           quote.QuoteNumber,
			"status":                 quote.Status,
			"customer_name":          quote.CustomerName,
			"customer_email":         quote.CustomerEmail,
			"customer_phone":         quote.CustomerPhone,
			"customer_address":       quote.CustomerAddress,
			"customer_city":          quote.CustomerCity,
			"customer_state":         quote.CustomerState,
			"customer_zip":           quote.CustomerZip,
			"customer_country":       quote.CustomerCountry,
			"subtotal":               quote.Subtotal,
			"discount_type":          quote.DiscountType,
			"discount_value":         quote.DiscountValue,
			"discount_amount":        quote.DiscountAmount,
			"total":                  quote.Total,
			"valid_until":            quote.ValidUntil,
			"notes":                  quote.Notes,
			"quickbooks_estimate_id": quote.QuickBooksEstimateID,
			"quickbooks_synced_at":   quote.QuickBooksSyncedAt,
			"updated_at":             quote.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
