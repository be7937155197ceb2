package domain

import "context"

// ListResult carries sale records plus a non-fatal warning when the
// data came from a fallback rather than the upstream API.
type ListResult struct {
	Sales   []Record `json:"sales"`
	Source  string   `json:"source"`
	Warning string   `json:"warning,omitempty"`
}

// Service owns draft sessions and sale submission. Every draft mutation
// goes through a composer transition; drafts never escape unvalidated.
type Service interface {
	CreateDraft() Draft
	GetDraft(id string) (Draft, error)
	CancelDraft(id string) error

	SelectProduct(id, productID string) (Draft, []Warning, error)
	SetQuantity(id string, quantity int) (Draft, []Warning, error)
	SetUnitPrice(id string, price int64) (Draft, error)
	SelectCustomer(id, customerID string) (Draft, error)
	SetPaymentMethod(id, method string) (Draft, error)
	SetDate(id, date string) (Draft, error)

	Submit(ctx context.Context, id string) (Record, error)
	ListSales(ctx context.Context, from, to string) (ListResult, error)
}
