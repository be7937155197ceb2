// Package gatewaytest provides a programmable RecordsAPI fake for
// service tests.
package gatewaytest

import (
	"context"
	"errors"

	catalogdomain "github.com/Cachi0001/bizcore/internal/catalog/domain"
	directorydomain "github.com/Cachi0001/bizcore/internal/directory/domain"
	"github.com/Cachi0001/bizcore/internal/gateway"
	saledomain "github.com/Cachi0001/bizcore/internal/sale/domain"
)

var errNotConfigured = errors.New("gatewaytest: call not configured")

// Fake implements gateway.RecordsAPI; unset funcs fail the call.
type Fake struct {
	GetProductsFunc    func(ctx context.Context) ([]catalogdomain.Product, error)
	GetCustomersFunc   func(ctx context.Context) ([]directorydomain.Customer, error)
	GetSalesFunc       func(ctx context.Context, dateRange gateway.DateRange) ([]saledomain.Record, error)
	GetInvoicesFunc    func(ctx context.Context) ([]saledomain.Invoice, error)
	CreateSaleFunc     func(ctx context.Context, payload saledomain.Submission) (saledomain.Record, error)
	UpdateCustomerFunc func(ctx context.Context, id string, patch directorydomain.CustomerPatch) (directorydomain.Customer, error)
	DeleteCustomerFunc func(ctx context.Context, id string) error
}

var _ gateway.RecordsAPI = (*Fake)(nil)

func (f *Fake) GetProducts(ctx context.Context) ([]catalogdomain.Product, error) {
	if f.GetProductsFunc == nil {
		return nil, errNotConfigured
	}
	return f.GetProductsFunc(ctx)
}

func (f *Fake) GetCustomers(ctx context.Context) ([]directorydomain.Customer, error) {
	if f.GetCustomersFunc == nil {
		return nil, errNotConfigured
	}
	return f.GetCustomersFunc(ctx)
}

func (f *Fake) GetSales(ctx context.Context, dateRange gateway.DateRange) ([]saledomain.Record, error) {
	if f.GetSalesFunc == nil {
		return nil, errNotConfigured
	}
	return f.GetSalesFunc(ctx, dateRange)
}

func (f *Fake) GetInvoices(ctx context.Context) ([]saledomain.Invoice, error) {
	if f.GetInvoicesFunc == nil {
		return nil, errNotConfigured
	}
	return f.GetInvoicesFunc(ctx)
}

func (f *Fake) CreateSale(ctx context.Context, payload saledomain.Submission) (saledomain.Record, error) {
	if f.CreateSaleFunc == nil {
		return saledomain.Record{}, errNotConfigured
	}
	return f.CreateSaleFunc(ctx, payload)
}

func (f *Fake) UpdateCustomer(ctx context.Context, id string, patch directorydomain.CustomerPatch) (directorydomain.Customer, error) {
	if f.UpdateCustomerFunc == nil {
		return directorydomain.Customer{}, errNotConfigured
	}
	return f.UpdateCustomerFunc(ctx, id, patch)
}

func (f *Fake) DeleteCustomer(ctx context.Context, id string) error {
	if f.DeleteCustomerFunc == nil {
		return errNotConfigured
	}
	return f.DeleteCustomerFunc(ctx, id)
}
