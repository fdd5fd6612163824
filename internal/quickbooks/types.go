package quickbooks

import (
	"fmt"
	"math"
	"time"
)

// DetailTypeSalesItemLine marks estimate lines that carry a product, quantity and price.
// Subtotal, discount and description-only lines use other detail types.
const DetailTypeSalesItemLine = "SalesItemLineDetail"

// DateLayout is the date format QuickBooks uses for TxnDate and ExpirationDate
const DateLayout = "2006-01-02"

// Ref is a QuickBooks entity reference
type Ref struct {
	Value string `json:"value"`
	Name  string `json:"name,omitempty"`
}

// MemoRef wraps a free-text memo
type MemoRef struct {
	Value string `json:"value"`
}

type SalesItemLineDetail struct {
	Qty       *float64 `json:"Qty,omitempty"`
	UnitPrice *float64 `json:"UnitPrice,omitempty"`
	ItemRef   *Ref     `json:"ItemRef,omitempty"`
}

// Line is one estimate line. Amount and the detail are optional on pulled estimates.
type Line struct {
	ID                  string               `json:"Id,omitempty"`
	DetailType          string               `json:"DetailType"`
	Amount              *float64             `json:"Amount,omitempty"`
	Description         string               `json:"Description,omitempty"`
	SalesItemLineDetail *SalesItemLineDetail `json:"SalesItemLineDetail,omitempty"`
}

// IsSalesItem reports whether the line is a product line
func (l Line) IsSalesItem() bool {
	return l.DetailType == DetailTypeSalesItemLine
}

type MetaData struct {
	CreateTime      string `json:"CreateTime,omitempty"`
	LastUpdatedTime string `json:"LastUpdatedTime,omitempty"`
}

// Estimate mirrors the fields of a QuickBooks estimate that quotes are built from
type Estimate struct {
	ID             string    `json:"Id"`
	SyncToken      string    `json:"SyncToken"`
	DocNumber      string    `json:"DocNumber,omitempty"`
	TxnDate        string    `json:"TxnDate,omitempty"`
	ExpirationDate string    `json:"ExpirationDate,omitempty"`
	CustomerRef    Ref       `json:"CustomerRef"`
	Line           []Line    `json:"Line"`
	TotalAmt       *float64  `json:"TotalAmt,omitempty"`
	TxnStatus      string    `json:"TxnStatus,omitempty"`
	CustomerMemo   *MemoRef  `json:"CustomerMemo,omitempty"`
	PrivateNote    string    `json:"PrivateNote,omitempty"`
	MetaData       *MetaData `json:"MetaData,omitempty"`
}

// Validate narrows a decoded estimate before it is mapped. Fields that are
// optional in QuickBooks are left alone; numbers that are present must be finite.
func (e *Estimate) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: estimate has no Id", ErrInvalidResponse)
	}
	if e.TotalAmt != nil && !finite(*e.TotalAmt) {
		return fmt.Errorf("%w: estimate %s has a non-finite TotalAmt", ErrInvalidResponse, e.ID)
	}
	for i, l := range e.Line {
		if l.Amount != nil && !finite(*l.Amount) {
			return fmt.Errorf("%w: estimate %s line %d has a non-finite Amount", ErrInvalidResponse, e.ID, i)
		}
		if d := l.SalesItemLineDetail; d != nil {
			if (d.Qty != nil && !finite(*d.Qty)) || (d.UnitPrice != nil && !finite(*d.UnitPrice)) {
				return fmt.Errorf("%w: estimate %s line %d has non-finite quantity or price", ErrInvalidResponse, e.ID, i)
			}
		}
	}
	return nil
}

// ExpirationTime parses ExpirationDate, returning nil when absent or malformed
func (e *Estimate) ExpirationTime() *time.Time {
	if e.ExpirationDate == "" {
		return nil
	}
	t, err := time.Parse(DateLayout, e.ExpirationDate)
	if err != nil {
		return nil
	}
	return &t
}

type EmailAddress struct {
	Address string `json:"Address"`
}

type PhoneNumber struct {
	FreeFormNumber string `json:"FreeFormNumber"`
}

type PhysicalAddress struct {
	Line1 string `json:"Line1,omitempty"`
}

// Customer mirrors a QuickBooks customer
type Customer struct {
	ID               string           `json:"Id,omitempty"`
	SyncToken        string           `json:"SyncToken,omitempty"`
	DisplayName      string           `json:"DisplayName"`
	PrimaryEmailAddr *EmailAddress    `json:"PrimaryEmailAddr,omitempty"`
	PrimaryPhone     *PhoneNumber     `json:"PrimaryPhone,omitempty"`
	BillAddr         *PhysicalAddress `json:"BillAddr,omitempty"`
}

// CustomerInput holds the fields sent when creating a customer
type CustomerInput struct {
	DisplayName string
	Email       string
	Phone       string
	// Address is a single composed line
	Address string
}

// EstimateInput holds the fields sent on estimate create and update
type EstimateInput struct {
	CustomerRef    Ref
	DocNumber      string
	TxnDate        time.Time
	ExpirationDate *time.Time
	Lines          []Line
	Memo           string
}

// Credentials is the bearer context for one QuickBooks company
type Credentials struct {
	RealmID      string
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
