package service_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/straye-as/quote-api/internal/quickbooks"
)

// fakeQuickBooks records calls and serves canned responses
type fakeQuickBooks struct {
	mu sync.Mutex

	customers []quickbooks.Customer
	estimates map[string]*quickbooks.Estimate
	queried   []quickbooks.Estimate
	nextID    int

	searchErr error
	createErr error
	queryErr  error

	calls          []string
	createdInputs  []quickbooks.EstimateInput
	updatedTokens  []string
	createdCustIns []quickbooks.CustomerInput
}

func newFakeQuickBooks() *fakeQuickBooks {
	return &fakeQuickBooks{estimates: map[string]*quickbooks.Estimate{}, nextID: 100}
}

func (f *fakeQuickBooks) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeQuickBooks) count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeQuickBooks) SearchCustomersByDisplayName(_ context.Context, name string) ([]quickbooks.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("search")
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	var out []quickbooks.Customer
	for _, c := range f.customers {
		if c.DisplayName == name {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeQuickBooks) CreateCustomer(_ context.Context, input quickbooks.CustomerInput) (*quickbooks.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("createCustomer")
	f.nextID++
	c := quickbooks.Customer{ID: fmt.Sprint(f.nextID), DisplayName: input.DisplayName}
	f.customers = append(f.customers, c)
	f.createdCustIns = append(f.createdCustIns, input)
	return &c, nil
}

func (f *fakeQuickBooks) CreateEstimate(_ context.Context, input quickbooks.EstimateInput) (*quickbooks.Estimate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("createEstimate")
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	est := &quickbooks.Estimate{ID: fmt.Sprint(f.nextID), SyncToken: "0", DocNumber: input.DocNumber}
	f.estimates[est.ID] = est
	f.createdInputs = append(f.createdInputs, input)
	return est, nil
}

func (f *fakeQuickBooks) GetEstimate(_ context.Context, id string) (*quickbooks.Estimate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("getEstimate")
	est, ok := f.estimates[id]
	if !ok {
		return nil, &quickbooks.UpstreamError{Op: "get estimate", StatusCode: 400, Message: "Object Not Found"}
	}
	return est, nil
}

func (f *fakeQuickBooks) UpdateEstimate(_ context.Context, id, syncToken string, input quickbooks.EstimateInput) (*quickbooks.Estimate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("updateEstimate")
	f.updatedTokens = append(f.updatedTokens, syncToken)
	est := f.estimates[id]
	est.DocNumber = input.DocNumber
	return est, nil
}

func (f *fakeQuickBooks) QueryEstimates(_ context.Context, _ int) ([]quickbooks.Estimate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("queryEstimates")
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.queried, nil
}
