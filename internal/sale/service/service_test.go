package service

import (
	"context"
	"errors"
	"testing"
	"time"

	catalogdomain "github.com/Cachi0001/bizcore/internal/catalog/domain"
	"github.com/Cachi0001/bizcore/internal/clock"
	"github.com/Cachi0001/bizcore/internal/config"
	directorydomain "github.com/Cachi0001/bizcore/internal/directory/domain"
	"github.com/Cachi0001/bizcore/internal/gateway"
	"github.com/Cachi0001/bizcore/internal/gateway/gatewaytest"
	"github.com/Cachi0001/bizcore/internal/history"
	"github.com/Cachi0001/bizcore/internal/observability"
	"github.com/Cachi0001/bizcore/internal/sale/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type fixedCatalog struct {
	products  map[string]catalogdomain.Product
	refreshes int
}

func (c *fixedCatalog) Refresh(ctx context.Context) (catalogdomain.RefreshResult, error) {
	c.refreshes++
	return catalogdomain.RefreshResult{Source: catalogdomain.SourceUpstream}, nil
}

func (c *fixedCatalog) List() []catalogdomain.Product {
	out := make([]catalogdomain.Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p)
	}
	return out
}

func (c *fixedCatalog) Find(id string) (catalogdomain.Product, bool) {
	p, ok := c.products[id]
	return p, ok
}

func (c *fixedCatalog) Summary() catalogdomain.StockSummary {
	return catalogdomain.StockSummary{}
}

type fixedDirectory struct {
	customers map[string]directorydomain.Customer
}

func (d *fixedDirectory) Refresh(ctx context.Context) (directorydomain.RefreshResult, error) {
	return directorydomain.RefreshResult{}, nil
}

func (d *fixedDirectory) List() []directorydomain.Customer { return nil }

func (d *fixedDirectory) Find(id string) (directorydomain.Customer, bool) {
	c, ok := d.customers[id]
	return c, ok
}

func (d *fixedDirectory) Update(ctx context.Context, id string, patch directorydomain.CustomerPatch) (directorydomain.Customer, error) {
	return directorydomain.Customer{}, nil
}

func (d *fixedDirectory) Delete(ctx context.Context, id string) error { return nil }

func newTestHistory(t *testing.T) *history.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	store, err := history.NewWithDB(db, zaptest.NewLogger(t), clock.NewFakeClock(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	return store
}

func newService(t *testing.T, api *gatewaytest.Fake, catalog *fixedCatalog, directory *fixedDirectory) (*Service, *history.Store) {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	store := newTestHistory(t)
	svc := New(Params{
		API:       api,
		Catalog:   catalog,
		Directory: directory,
		History:   store,
		Sales:     config.NewStaticSalesConfigHolder(config.DefaultSalesConfig()),
		Log:       zaptest.NewLogger(t),
		Metrics:   observability.NewMetrics(),
		GenID:     node,
		Clock:     clock.NewFakeClock(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)),
	}).(*Service)
	return svc, store
}

func stocked() *fixedCatalog {
	return &fixedCatalog{products: map[string]catalogdomain.Product{
		"p1": {ID: "p1", Name: "Rice 5kg", Price: 1000, Quantity: 10},
		"p2": {ID: "p2", Name: "Beans", Price: 700, Quantity: 3},
		"p3": {ID: "p3", Name: "Garri", Price: 500, Quantity: 0},
	}}
}

func TestCreateDraftDefaults(t *testing.T) {
	svc, _ := newService(t, &gatewaytest.Fake{}, stocked(), &fixedDirectory{})

	d := svc.CreateDraft()
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, "Walk-in Customer", d.CustomerName)
	assert.Equal(t, 1, d.Quantity)
	assert.Equal(t, "cash", d.PaymentMethod)
	assert.Equal(t, "2024-06-01", d.Date)

	got, err := svc.GetDraft(d.ID)
	require.NoError(t, err)
	assert.Equal(t, d, got)
}

func TestDraftLifecycleTransitions(t *testing.T) {
	catalog := stocked()
	directory := &fixedDirectory{customers: map[string]directorydomain.Customer{
		"c1": {ID: "c1", Name: "Ada Obi"},
	}}
	svc, _ := newService(t, &gatewaytest.Fake{}, catalog, directory)
	d := svc.CreateDraft()

	d, warnings, err := svc.SelectProduct(d.ID, "p1")
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, int64(1000), d.UnitPrice)
	assert.Equal(t, int64(1000), d.TotalAmount)

	d, warnings, err = svc.SetQuantity(d.ID, 4)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, int64(4000), d.TotalAmount)

	d, err = svc.SelectCustomer(d.ID, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Ada Obi", d.CustomerName)

	d, err = svc.SelectCustomer(d.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "Walk-in Customer", d.CustomerName)
	assert.Empty(t, d.CustomerID)

	d, err = svc.SetPaymentMethod(d.ID, "card")
	require.NoError(t, err)
	assert.Equal(t, "card", d.PaymentMethod)

	_, err = svc.SetPaymentMethod(d.ID, "barter")
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentMethod)

	d, err = svc.SetDate(d.ID, "2024-05-30")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-30", d.Date)
}

func TestSelectProductClampsToStock(t *testing.T) {
	svc, _ := newService(t, &gatewaytest.Fake{}, stocked(), &fixedDirectory{})
	d := svc.CreateDraft()

	_, _, err := svc.SelectProduct(d.ID, "p2")
	require.NoError(t, err)
	d, warnings, err := svc.SetQuantity(d.ID, 10)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, domain.WarnQuantityAdjusted, warnings[0].Kind)
	assert.Equal(t, 3, d.Quantity)
	assert.Equal(t, int64(2100), d.TotalAmount)
}

func TestSelectOutOfStockProduct(t *testing.T) {
	svc, _ := newService(t, &gatewaytest.Fake{}, stocked(), &fixedDirectory{})
	d := svc.CreateDraft()

	d, warnings, err := svc.SelectProduct(d.ID, "p3")
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, domain.WarnOutOfStock, warnings[0].Kind)
	assert.Equal(t, 0, d.Quantity)

	_, _, err = svc.SetQuantity(d.ID, 1)
	assert.ErrorIs(t, err, domain.ErrOutOfStock)
}

func TestUnknownProductAndMissingDraft(t *testing.T) {
	svc, _ := newService(t, &gatewaytest.Fake{}, stocked(), &fixedDirectory{})
	d := svc.CreateDraft()

	_, _, err := svc.SelectProduct(d.ID, "nope")
	assert.ErrorIs(t, err, catalogdomain.ErrNotFound)

	_, err = svc.SelectCustomer(d.ID, "nope")
	assert.ErrorIs(t, err, directorydomain.ErrNotFound)

	_, _, err = svc.SetQuantity("missing", 2)
	assert.ErrorIs(t, err, domain.ErrDraftNotFound)

	require.NoError(t, svc.CancelDraft(d.ID))
	assert.ErrorIs(t, svc.CancelDraft(d.ID), domain.ErrDraftNotFound)
}

func TestSetUnitPriceOnlyBeforeProduct(t *testing.T) {
	svc, _ := newService(t, &gatewaytest.Fake{}, stocked(), &fixedDirectory{})
	d := svc.CreateDraft()

	d, err := svc.SetUnitPrice(d.ID, 250)
	require.NoError(t, err)
	assert.Equal(t, int64(250), d.TotalAmount)

	_, _, err = svc.SelectProduct(d.ID, "p1")
	require.NoError(t, err)
	_, err = svc.SetUnitPrice(d.ID, 1)
	assert.ErrorIs(t, err, domain.ErrPriceDerived)
}

func TestSubmitSendsSubmissionAndDiscardsDraft(t *testing.T) {
	var sent *domain.Submission
	api := &gatewaytest.Fake{
		CreateSaleFunc: func(ctx context.Context, sub domain.Submission) (domain.Record, error) {
			sent = &sub
			return domain.Record{ID: "s1", TotalAmount: sub.TotalAmount}, nil
		},
	}
	catalog := stocked()
	svc, _ := newService(t, api, catalog, &fixedDirectory{})
	d := svc.CreateDraft()
	_, _, err := svc.SelectProduct(d.ID, "p1")
	require.NoError(t, err)
	_, _, err = svc.SetQuantity(d.ID, 2)
	require.NoError(t, err)

	record, err := svc.Submit(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, "s1", record.ID)

	require.NotNil(t, sent)
	assert.Equal(t, "p1", sent.ProductID)
	assert.Nil(t, sent.CustomerID, "walk-in sale must carry a null customer id")
	assert.Equal(t, int64(2000), sent.TotalAmount)

	assert.Equal(t, 1, catalog.refreshes, "stock must be refetched after a sale")
	_, err = svc.GetDraft(d.ID)
	assert.ErrorIs(t, err, domain.ErrDraftNotFound)
}

func TestSubmitRejectsInvalidDraftWithoutCalling(t *testing.T) {
	called := false
	api := &gatewaytest.Fake{
		CreateSaleFunc: func(ctx context.Context, sub domain.Submission) (domain.Record, error) {
			called = true
			return domain.Record{}, nil
		},
	}
	svc, _ := newService(t, api, stocked(), &fixedDirectory{})
	d := svc.CreateDraft()

	_, err := svc.Submit(context.Background(), d.ID)
	assert.ErrorIs(t, err, domain.ErrMissingProduct)
	assert.False(t, called)

	// The draft survives a failed submission.
	_, err = svc.GetDraft(d.ID)
	require.NoError(t, err)
}

func TestSubmitKeepsDraftOnRemoteFailure(t *testing.T) {
	api := &gatewaytest.Fake{
		CreateSaleFunc: func(ctx context.Context, sub domain.Submission) (domain.Record, error) {
			return domain.Record{}, errors.New("502 bad gateway")
		},
	}
	catalog := stocked()
	svc, _ := newService(t, api, catalog, &fixedDirectory{})
	d := svc.CreateDraft()
	_, _, err := svc.SelectProduct(d.ID, "p1")
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), d.ID)
	require.Error(t, err)
	assert.Equal(t, 0, catalog.refreshes)

	_, err = svc.GetDraft(d.ID)
	require.NoError(t, err)
}

func TestListSalesPersistsAndFallsBack(t *testing.T) {
	fail := false
	api := &gatewaytest.Fake{
		GetSalesFunc: func(ctx context.Context, dr gateway.DateRange) ([]domain.Record, error) {
			if fail {
				return nil, errors.New("connection refused")
			}
			return []domain.Record{{ID: "s1", TotalAmount: 1500}}, nil
		},
	}
	svc, _ := newService(t, api, stocked(), &fixedDirectory{})

	res, err := svc.ListSales(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "upstream", res.Source)
	require.Len(t, res.Sales, 1)

	fail = true
	res, err = svc.ListSales(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "history", res.Source)
	assert.NotEmpty(t, res.Warning)
	require.Len(t, res.Sales, 1)
	assert.Equal(t, "s1", res.Sales[0].ID)
}
