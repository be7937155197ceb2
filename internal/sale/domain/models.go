// Package domain contains the sale drafting and transaction record models.
package domain

import "errors"

// Draft is an in-progress, unsaved sale. It exists only inside the
// composer and is destroyed on submit or cancel. TotalAmount is always
// derived from Quantity and UnitPrice, never set directly.
type Draft struct {
	ID            string `json:"id"`
	ProductID     string `json:"product_id"`
	ProductName   string `json:"product_name"`
	CustomerID    string `json:"customer_id,omitempty"`
	CustomerName  string `json:"customer_name"`
	Quantity      int    `json:"quantity"`
	UnitPrice     int64  `json:"unit_price"`
	TotalAmount   int64  `json:"total_amount"`
	PaymentMethod string `json:"payment_method"`
	Date          string `json:"date"`
}

// Submission is the payload sent to the records API on a valid submit.
type Submission struct {
	ProductID     string  `json:"product_id"`
	CustomerID    *string `json:"customer_id"`
	CustomerName  string  `json:"customer_name"`
	Quantity      int     `json:"quantity"`
	UnitPrice     int64   `json:"unit_price"`
	TotalAmount   int64   `json:"total_amount"`
	PaymentMethod string  `json:"payment_method"`
	Date          string  `json:"date"`
}

// Record is a persisted sale as returned by the records API. Immutable
// from this service's perspective once written.
type Record struct {
	ID              string `json:"id"`
	ProductID       string `json:"product_id"`
	ProductName     string `json:"product_name"`
	CustomerID      string `json:"customer_id,omitempty"`
	CustomerName    string `json:"customer_name"`
	Quantity        int    `json:"quantity"`
	UnitPrice       int64  `json:"unit_price"`
	TotalAmount     int64  `json:"total_amount"`
	NetAmount       int64  `json:"net_amount,omitempty"`
	GrossProfit     int64  `json:"gross_profit,omitempty"`
	ProfitFromSales int64  `json:"profit_from_sales,omitempty"`
	PaymentMethod   string `json:"payment_method"`
	Date            string `json:"date"`
	CreatedAt       string `json:"created_at"`
}

// Invoice is an invoice record as returned by the records API. Only paid
// invoices contribute to customer spend.
type Invoice struct {
	ID          string `json:"id"`
	CustomerID  string `json:"customer_id"`
	TotalAmount int64  `json:"total_amount"`
	Status      string `json:"status"`
	IssueDate   string `json:"issue_date,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

const InvoiceStatusPaid = "paid"

// WarningKind labels a non-fatal condition raised by a draft transition.
type WarningKind string

const (
	WarnQuantityAdjusted WarningKind = "quantity_adjusted"
	WarnOutOfStock       WarningKind = "out_of_stock"
)

type Warning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}

var (
	ErrMissingProduct       = errors.New("missing_product")
	ErrInvalidQuantity      = errors.New("invalid_quantity")
	ErrInvalidPrice         = errors.New("invalid_price")
	ErrInsufficientStock    = errors.New("insufficient_stock")
	ErrOutOfStock           = errors.New("out_of_stock")
	ErrPriceDerived         = errors.New("price_derived_from_product")
	ErrInvalidPaymentMethod = errors.New("invalid_payment_method")
	ErrInvalidDate          = errors.New("invalid_date")
	ErrDraftNotFound        = errors.New("draft_not_found")
)
