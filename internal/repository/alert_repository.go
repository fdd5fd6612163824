package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/quote-api/internal/domain"
	"gorm.io/gorm"
)

type AlertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) Create(ctx context.Context, alert *domain.Alert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

func (r *AlertRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Alert, error) {
	var alert domain.Alert
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&alert).Error
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

// ExistsActive reports whether an undismissed alert of the type exists for the quote
func (r *AlertRepository) ExistsActive(ctx context.Context, quoteID uuid.UUID, alertType domain.AlertType) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Alert{}).
		Where("quote_id = ? AND type = ? AND dismissed = ?", quoteID, alertType, false).
		Count(&count).Error
	return count > 0, err
}

// List returns alerts newest first
func (r *AlertRepository) List(ctx context.Context, includeDismissed bool) ([]domain.Alert, error) {
	var alerts []domain.Alert
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if !includeDismissed {
		query = query.Where("dismissed = ?", false)
	}
	err := query.Find(&alerts).Error
	return alerts, err
}

// Dismiss marks an alert dismissed
func (r *AlertRepository) Dismiss(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&domain.Alert{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"dismissed":    true,
			"dismissed_at": at,
			"updated_at":   at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
