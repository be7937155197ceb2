// Package composer owns the sale draft state machine. A draft is only
// ever mutated through the transition functions here, and every
// transition recomputes the derived total, so quantity, unit price and
// total can never drift apart.
package composer

import (
	"fmt"
	"time"

	catalogdomain "github.com/Cachi0001/bizcore/internal/catalog/domain"
	"github.com/Cachi0001/bizcore/internal/config"
	"github.com/Cachi0001/bizcore/internal/sale/domain"
)

type Composer struct {
	sales *config.SalesConfigHolder
}

func New(sales *config.SalesConfigHolder) *Composer {
	return &Composer{sales: sales}
}

// NewDraft returns an empty draft: walk-in customer, quantity 1, dated
// today, first configured payment method.
func (c *Composer) NewDraft(id string, now time.Time) domain.Draft {
	cfg := c.sales.Get()

	method := ""
	if len(cfg.PaymentMethods) > 0 {
		method = cfg.PaymentMethods[0]
	}

	d := domain.Draft{
		ID:            id,
		CustomerName:  cfg.WalkInCustomerName,
		Quantity:      1,
		PaymentMethod: method,
		Date:          now.UTC().Format("2006-01-02"),
	}
	recompute(&d)
	return d
}

// SelectProduct binds the draft to a product. Unit price always follows
// the product's selling price. A quantity above the product's stock is
// clamped with a warning; a zero-stock product may still be selected so
// the state is visible, but the quantity drops to zero and the draft is
// unsubmittable until stock returns.
func (c *Composer) SelectProduct(d *domain.Draft, p catalogdomain.Product) []domain.Warning {
	var warnings []domain.Warning

	d.ProductID = p.ID
	d.ProductName = p.Name
	d.UnitPrice = p.Price

	if p.Quantity == 0 {
		d.Quantity = 0
		warnings = append(warnings, domain.Warning{
			Kind:    domain.WarnOutOfStock,
			Message: fmt.Sprintf("%s is out of stock", p.Name),
		})
	} else if d.Quantity > p.Quantity {
		d.Quantity = p.Quantity
		warnings = append(warnings, domain.Warning{
			Kind:    domain.WarnQuantityAdjusted,
			Message: fmt.Sprintf("only %d of %s available, quantity adjusted", p.Quantity, p.Name),
		})
	}

	recompute(d)
	return warnings
}

// SetQuantity changes the requested quantity. When the selected
// product's stock is known, requests above it are clamped with a
// warning; a zero-stock product rejects the change outright and the
// draft keeps its previous value.
func (c *Composer) SetQuantity(d *domain.Draft, requested int, available int, stockKnown bool) ([]domain.Warning, error) {
	if requested < 1 {
		return nil, domain.ErrInvalidQuantity
	}

	var warnings []domain.Warning
	if stockKnown {
		if available == 0 {
			return nil, domain.ErrOutOfStock
		}
		if requested > available {
			warnings = append(warnings, domain.Warning{
				Kind:    domain.WarnQuantityAdjusted,
				Message: fmt.Sprintf("only %d of %s available, quantity adjusted", available, d.ProductName),
			})
			requested = available
		}
	}

	d.Quantity = requested
	recompute(d)
	return warnings, nil
}

// SetUnitPrice is only accepted while no product is selected; once a
// product is bound the price is derived from it and read-only.
func (c *Composer) SetUnitPrice(d *domain.Draft, price int64) error {
	if d.ProductID != "" {
		return domain.ErrPriceDerived
	}
	if price < 0 {
		return domain.ErrInvalidPrice
	}

	d.UnitPrice = price
	recompute(d)
	return nil
}

// SelectCustomer binds a customer; an empty id means walk-in.
func (c *Composer) SelectCustomer(d *domain.Draft, id, name string) {
	if id == "" {
		c.SelectWalkIn(d)
		return
	}
	d.CustomerID = id
	d.CustomerName = name
}

// SelectWalkIn clears the customer back to the walk-in sentinel.
func (c *Composer) SelectWalkIn(d *domain.Draft) {
	cfg := c.sales.Get()
	d.CustomerID = ""
	d.CustomerName = cfg.WalkInCustomerName
}

// SetPaymentMethod replaces the payment method if it is allowed.
func (c *Composer) SetPaymentMethod(d *domain.Draft, method string) error {
	cfg := c.sales.Get()
	if !cfg.AllowsPaymentMethod(method) {
		return domain.ErrInvalidPaymentMethod
	}
	d.PaymentMethod = method
	return nil
}

// SetDate replaces the sale date. Accepts YYYY-MM-DD or RFC 3339 and
// stores the canonical date form.
func (c *Composer) SetDate(d *domain.Draft, value string) error {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			d.Date = t.UTC().Format("2006-01-02")
			return nil
		}
	}
	return domain.ErrInvalidDate
}

func recompute(d *domain.Draft) {
	d.TotalAmount = int64(d.Quantity) * d.UnitPrice
}
