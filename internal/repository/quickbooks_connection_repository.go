package repository

import (
	"context"

	"github.com/straye-as/quote-api/internal/domain"
	"gorm.io/gorm"
)

// QuickBooksConnectionRepository stores OAuth grants for QuickBooks companies
type QuickBooksConnectionRepository struct {
	db *gorm.DB
}

func NewQuickBooksConnectionRepository(db *gorm.DB) *QuickBooksConnectionRepository {
	return &QuickBooksConnectionRepository{db: db}
}

// GetLatest returns the most recently updated connection
func (r *QuickBooksConnectionRepository) GetLatest(ctx context.Context) (*domain.QuickBooksConnection, error) {
	var conn domain.QuickBooksConnection
	err := r.db.WithContext(ctx).Order("updated_at DESC").First(&conn).Error
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

// Upsert saves the connection for its realm, replacing the tokens of an existing record
func (r *QuickBooksConnectionRepository) Upsert(ctx context.Context, conn *domain.QuickBooksConnection) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.QuickBooksConnection
		err := tx.Where("realm_id = ?", conn.RealmID).First(&existing).Error
		switch {
		case err == nil:
			conn.ID = existing.ID
			conn.CreatedAt = existing.CreatedAt
			return tx.Save(conn).Error
		case err == gorm.ErrRecordNotFound:
			return tx.Create(conn).Error
		default:
			return err
		}
	})
}
