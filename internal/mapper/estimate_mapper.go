package mapper

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/straye-as/quote-api/internal/domain"
	"github.com/straye-as/quote-api/internal/quickbooks"
)

// ErrUnmappableEstimate is returned when a remote estimate cannot become a quote
var ErrUnmappableEstimate = errors.New("estimate cannot be mapped to a quote")

// discountEpsilon absorbs floating point noise when deriving a discount from TotalAmt
const discountEpsilon = 0.005

// MapEstimateStatus translates a QuickBooks TxnStatus. Anything unrecognised is SENT,
// since an estimate that exists remotely has left the drafting stage.
func MapEstimateStatus(txnStatus string) domain.QuoteStatus {
	switch strings.ToLower(strings.TrimSpace(txnStatus)) {
	case "accepted":
		return domain.QuoteStatusAccepted
	case "rejected":
		return domain.QuoteStatusRejected
	case "closed":
		return domain.QuoteStatusExpired
	default:
		return domain.QuoteStatusSent
	}
}

// EstimateToQuote maps a remote estimate onto an unsaved quote with its items.
// QuoteNumber is left empty; the caller derives it. Customer contact fields stay nil
// because estimates only carry the customer reference.
func EstimateToQuote(est *quickbooks.Estimate) (*domain.Quote, error) {
	if err := est.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnmappableEstimate, err)
	}
	customerName := strings.TrimSpace(est.CustomerRef.Name)
	if customerName == "" {
		return nil, fmt.Errorf("%w: missing customer name", ErrUnmappableEstimate)
	}

	items := make([]domain.QuoteItem, 0, len(est.Line))
	var subtotal float64
	for i, line := range est.Line {
		if !line.IsSalesItem() {
			continue
		}
		item, err := salesLineToItem(line)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrUnmappableEstimate, i+1, err)
		}
		subtotal += item.TotalPrice
		items = append(items, item)
	}

	remoteTotal := subtotal
	if est.TotalAmt != nil {
		remoteTotal = *est.TotalAmt
	}
	discount := math.Max(0, subtotal-remoteTotal)
	if discount < discountEpsilon {
		discount = 0
	}

	estimateID := est.ID
	quote := &domain.Quote{
		Status:               MapEstimateStatus(est.TxnStatus),
		CustomerName:         customerName,
		Subtotal:             subtotal,
		DiscountAmount:       discount,
		Total:                subtotal - discount,
		ValidUntil:           est.ExpirationTime(),
		Notes:                estimateNotes(est),
		QuickBooksEstimateID: &estimateID,
		Items:                items,
	}
	if discount > 0 {
		fixed := domain.DiscountTypeFixed
		value := discount
		quote.DiscountType = &fixed
		quote.DiscountValue = &value
	}
	return quote, nil
}

func salesLineToItem(line quickbooks.Line) (domain.QuoteItem, error) {
	qty := 1.0
	var unitPrice *float64
	if d := line.SalesItemLineDetail; d != nil {
		if d.Qty != nil {
			qty = *d.Qty
		}
		unitPrice = d.UnitPrice
	}

	quantity := int(math.Round(qty))
	if quantity <= 0 {
		return domain.QuoteItem{}, fmt.Errorf("quantity %v is not positive", qty)
	}

	var price float64
	switch {
	case unitPrice != nil:
		price = *unitPrice
	case line.Amount != nil && qty != 0:
		price = *line.Amount / qty
	}

	total := qty * price
	if line.Amount != nil {
		total = *line.Amount
	}

	name := strings.TrimSpace(line.Description)
	if name == "" && line.SalesItemLineDetail != nil && line.SalesItemLineDetail.ItemRef != nil {
		name = line.SalesItemLineDetail.ItemRef.Name
	}
	if name == "" {
		name = "Item"
	}

	item := domain.QuoteItem{
		ProductName: name,
		Quantity:    quantity,
		UnitPrice:   price,
		TotalPrice:  total,
	}
	if d := line.SalesItemLineDetail; d != nil && d.ItemRef != nil && d.ItemRef.Value != "" {
		productID := d.ItemRef.Value
		item.ProductID = &productID
	}
	return item, nil
}

func estimateNotes(est *quickbooks.Estimate) *string {
	if est.CustomerMemo != nil && est.CustomerMemo.Value != "" {
		v := est.CustomerMemo.Value
		return &v
	}
	if est.PrivateNote != "" {
		v := est.PrivateNote
		return &v
	}
	return nil
}

// EstimateLinesFromItems builds one sales line per quote item for a push
func EstimateLinesFromItems(items []domain.QuoteItem, defaultItemID string) []quickbooks.Line {
	lines := make([]quickbooks.Line, 0, len(items))
	for _, item := range items {
		description := item.ProductName
		if item.SKU != nil && *item.SKU != "" {
			description += " (" + *item.SKU + ")"
		}

		qty := float64(item.Quantity)
		price := item.UnitPrice
		amount := item.TotalPrice
		if amount == 0 {
			amount = ItemTotalPrice(item.Quantity, item.UnitPrice)
		}

		detail := &quickbooks.SalesItemLineDetail{Qty: &qty, UnitPrice: &price}
		if defaultItemID != "" {
			detail.ItemRef = &quickbooks.Ref{Value: defaultItemID}
		}
		lines = append(lines, quickbooks.Line{
			DetailType:          quickbooks.DetailTypeSalesItemLine,
			Amount:              &amount,
			Description:         description,
			SalesItemLineDetail: detail,
		})
	}
	return lines
}

// ComposeCustomerAddress joins the quote's address parts into one line
func ComposeCustomerAddress(q *domain.Quote) string {
	parts := make([]string, 0, 5)
	for _, p := range []*string{q.CustomerAddress, q.CustomerCity, q.CustomerState, q.CustomerZip, q.CustomerCountry} {
		if p != nil && strings.TrimSpace(*p) != "" {
			parts = append(parts, strings.TrimSpace(*p))
		}
	}
	return strings.Join(parts, ", ")
}
