// Package validator gates sale submission. Validate is pure: identical
// inputs always produce identical results, and nothing is mutated.
package validator

import (
	"fmt"

	catalogdomain "github.com/Cachi0001/bizcore/internal/catalog/domain"
	"github.com/Cachi0001/bizcore/internal/sale/domain"
)

// Lookup resolves a product id against the catalog snapshot.
type Lookup func(id string) (catalogdomain.Product, bool)

// Result is either valid with a ready-to-send submission payload, or
// invalid with the first failing reason.
type Result struct {
	OK         bool
	Reason     error
	Message    string
	Submission *domain.Submission
}

// Validate runs the submission checks in order, short-circuiting on the
// first failure.
func Validate(d domain.Draft, lookup Lookup) Result {
	if d.ProductID == "" {
		return invalid(domain.ErrMissingProduct, "select a product before recording the sale")
	}
	if d.Quantity < 1 {
		return invalid(domain.ErrInvalidQuantity, "quantity must be at least 1")
	}
	if d.UnitPrice <= 0 {
		return invalid(domain.ErrInvalidPrice, "unit price must be greater than zero")
	}

	if lookup != nil {
		if p, ok := lookup(d.ProductID); ok && d.Quantity > p.Quantity {
			return invalid(domain.ErrInsufficientStock,
				fmt.Sprintf("only %d of %s in stock", p.Quantity, p.Name))
		}
	}

	var customerID *string
	if d.CustomerID != "" {
		id := d.CustomerID
		customerID = &id
	}

	return Result{
		OK: true,
		Submission: &domain.Submission{
			ProductID:     d.ProductID,
			CustomerID:    customerID,
			CustomerName:  d.CustomerName,
			Quantity:      d.Quantity,
			UnitPrice:     d.UnitPrice,
			TotalAmount:   d.TotalAmount,
			PaymentMethod: d.PaymentMethod,
			Date:          d.Date,
		},
	}
}

func invalid(reason error, message string) Result {
	return Result{Reason: reason, Message: message}
}
