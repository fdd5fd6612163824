package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel carries the common identity and audit columns.
// IDs are assigned in Go so the same models work on PostgreSQL and SQLite.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// BeforeCreate assigns an ID when the caller did not
func (b *BaseModel) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// QuoteStatus is the lifecycle state of a quote. Any status may move to any other.
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "DRAFT"
	QuoteStatusSent     QuoteStatus = "SENT"
	QuoteStatusAccepted QuoteStatus = "ACCEPTED"
	QuoteStatusRejected QuoteStatus = "REJECTED"
	QuoteStatusExpired  QuoteStatus = "EXPIRED"
)

// IsValid reports whether s is one of the known statuses
func (s QuoteStatus) IsValid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusAccepted, QuoteStatusRejected, QuoteStatusExpired:
		return true
	}
	return false
}

// DiscountType selects how DiscountValue is applied to the subtotal
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// IsValid reports whether t is a known discount type
func (t DiscountType) IsValid() bool {
	return t == DiscountTypePercentage || t == DiscountTypeFixed
}

// Quote is a locally owned proposal with line items and computed totals.
// QuickBooksEstimateID correlates it with a remote estimate; at most one quote holds a given id.
type Quote struct {
	BaseModel
	QuoteNumber     string      `gorm:"type:varchar(50);not null;uniqueIndex"`
	Status          QuoteStatus `gorm:"type:varchar(20);not null;index"`
	CustomerName    string      `gorm:"type:varchar(200);not null;index"`
	CustomerEmail   *string     `gorm:"type:varchar(255)"`
	CustomerPhone   *string     `gorm:"type:varchar(50)"`
	CustomerAddress *string     `gorm:"type:varchar(500)"`
	CustomerCity    *string     `gorm:"type:varchar(100)"`
	CustomerState   *string     `gorm:"type:varchar(100)"`
	CustomerZip     *string     `gorm:"type:varchar(20)"`
	CustomerCountry *string     `gorm:"type:varchar(100)"`

	Subtotal       float64       `gorm:"not null;default:0"`
	DiscountType   *DiscountType `gorm:"type:varchar(20)"`
	DiscountValue  *float64
	DiscountAmount float64 `gorm:"not null;default:0"`
	Total          float64 `gorm:"not null;default:0"`

	ValidUntil *time.Time
	Notes      *string `gorm:"type:text"`

	QuickBooksEstimateID *string    `gorm:"column:quickbooks_estimate_id;type:varchar(50);uniqueIndex"`
	QuickBooksSyncedAt   *time.Time `gorm:"column:quickbooks_synced_at"`

	Items []QuoteItem `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
}

// QuoteItem is a line on exactly one quote
type QuoteItem struct {
	BaseModel
	QuoteID uuid.UUID `gorm:"type:uuid;not null;index"`
	// Position keeps lines in the order they were supplied
	Position    int     `gorm:"not null;default:0"`
	ProductID   *string `gorm:"type:varchar(100)"`
	ProductName string  `gorm:"type:varchar(300);not null"`
	SKU         *string `gorm:"column:sku;type:varchar(100)"`
	Quantity    int     `gorm:"not null"`
	UnitPrice   float64 `gorm:"not null"`
	TotalPrice  float64 `gorm:"not null"`
}

// QuickBooksConnection is a stored OAuth grant for one QuickBooks company.
// The most recently updated record is the active one.
type QuickBooksConnection struct {
	BaseModel
	RealmID              string  `gorm:"type:varchar(50);not null;index"`
	AccessToken          string  `gorm:"type:text;not null"`
	RefreshToken         *string `gorm:"type:text"`
	AccessTokenExpiresAt *time.Time
}

func (QuickBooksConnection) TableName() string {
	return "quickbooks_connections"
}

// AlertType identifies the condition an alert reports
type AlertType string

const (
	AlertTypeQuoteExpiring AlertType = "QUOTE_EXPIRING"
	AlertTypeQuoteExpired  AlertType = "QUOTE_EXPIRED"
)

// Alert is a dismissible notice raised by the alert sweep
type Alert struct {
	BaseModel
	Type        AlertType `gorm:"type:varchar(50);not null;index"`
	QuoteID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Quote       *Quote    `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
	Title       string    `gorm:"type:varchar(200);not null"`
	Message     string    `gorm:"type:text"`
	Dismissed   bool      `gorm:"not null;default:false;index"`
	DismissedAt *time.Time
}
