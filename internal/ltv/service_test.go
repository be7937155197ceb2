package ltv

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Cachi0001/bizcore/internal/clock"
	"github.com/Cachi0001/bizcore/internal/gateway"
	"github.com/Cachi0001/bizcore/internal/gateway/gatewaytest"
	"github.com/Cachi0001/bizcore/internal/history"
	saledomain "github.com/Cachi0001/bizcore/internal/sale/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func newTestService(t *testing.T, api *gatewaytest.Fake) (*Service, *history.Store) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	store, err := history.NewWithDB(db, zaptest.NewLogger(t), clock.NewFakeClock(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	svc := New(Params{API: api, History: store, Log: zaptest.NewLogger(t)})
	return svc, store
}

func TestMetricsFromUpstream(t *testing.T) {
	api := &gatewaytest.Fake{
		GetSalesFunc: func(ctx context.Context, dr gateway.DateRange) ([]saledomain.Record, error) {
			return []saledomain.Record{
				{ID: "s1", CustomerID: "c1", TotalAmount: 2000, Date: "2024-03-01"},
				{ID: "s2", CustomerID: "c1", TotalAmount: 500, Date: "2024-04-01"},
			}, nil
		},
		GetInvoicesFunc: func(ctx context.Context) ([]saledomain.Invoice, error) {
			return []saledomain.Invoice{
				{ID: "i1", CustomerID: "c1", TotalAmount: 3000, Status: "Paid"},
				{ID: "i2", CustomerID: "c1", TotalAmount: 9999, Status: "draft"},
			}, nil
		},
	}
	svc, _ := newTestService(t, api)

	res, err := svc.Metrics(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "upstream", res.Source)
	assert.Equal(t, 2, res.Metrics.TotalPurchases)
	assert.Equal(t, int64(5500), res.Metrics.TotalSpent)
	require.NotNil(t, res.Metrics.LastPurchase)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), *res.Metrics.LastPurchase)
}

func TestMetricsUnknownCustomerIsZero(t *testing.T) {
	api := &gatewaytest.Fake{
		GetSalesFunc: func(ctx context.Context, dr gateway.DateRange) ([]saledomain.Record, error) {
			return []saledomain.Record{}, nil
		},
		GetInvoicesFunc: func(ctx context.Context) ([]saledomain.Invoice, error) {
			return []saledomain.Invoice{}, nil
		},
	}
	svc, _ := newTestService(t, api)

	res, err := svc.Metrics(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Metrics.TotalPurchases)
	assert.Equal(t, int64(0), res.Metrics.TotalSpent)
	assert.Nil(t, res.Metrics.LastPurchase)
}

func TestMetricsFallsBackToStoredRecords(t *testing.T) {
	api := &gatewaytest.Fake{
		GetSalesFunc: func(ctx context.Context, dr gateway.DateRange) ([]saledomain.Record, error) {
			return nil, errors.New("connection refused")
		},
		GetInvoicesFunc: func(ctx context.Context) ([]saledomain.Invoice, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc, store := newTestService(t, api)
	require.NoError(t, store.ReplaceSales(context.Background(), []saledomain.Record{
		{ID: "s1", CustomerID: "c1", TotalAmount: 1200, Date: "2024-02-10"},
	}))
	require.NoError(t, store.ReplaceInvoices(context.Background(), []saledomain.Invoice{
		{ID: "i1", CustomerID: "c1", TotalAmount: 800, Status: "paid"},
	}))

	res, err := svc.Metrics(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "history", res.Source)
	assert.NotEmpty(t, res.Warning)
	assert.Equal(t, int64(2000), res.Metrics.TotalSpent)
}

func TestPurchaseHistoryNewestFirst(t *testing.T) {
	api := &gatewaytest.Fake{
		GetSalesFunc: func(ctx context.Context, dr gateway.DateRange) ([]saledomain.Record, error) {
			return []saledomain.Record{
				{ID: "s1", CustomerID: "c1", TotalAmount: 100, ProductName: "Rice", Date: "2024-01-05"},
			}, nil
		},
		GetInvoicesFunc: func(ctx context.Context) ([]saledomain.Invoice, error) {
			return []saledomain.Invoice{
				{ID: "i1", CustomerID: "c1", TotalAmount: 300, Status: "paid", IssueDate: "2024-02-01"},
				{ID: "i2", CustomerID: "other", TotalAmount: 50, Status: "paid", IssueDate: "2024-03-01"},
			}, nil
		},
	}
	svc, _ := newTestService(t, api)

	res, err := svc.PurchaseHistory(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, HistoryInvoice, res.Entries[0].Type)
	assert.Equal(t, "i1", res.Entries[0].ID)
	assert.Equal(t, HistorySale, res.Entries[1].Type)
}

func TestPurchaseHistoryEmptyIsNotNil(t *testing.T) {
	api := &gatewaytest.Fake{
		GetSalesFunc: func(ctx context.Context, dr gateway.DateRange) ([]saledomain.Record, error) {
			return []saledomain.Record{}, nil
		},
		GetInvoicesFunc: func(ctx context.Context) ([]saledomain.Invoice, error) {
			return []saledomain.Invoice{}, nil
		},
	}
	svc, _ := newTestService(t, api)

	res, err := svc.PurchaseHistory(context.Background(), "c1")
	require.NoError(t, err)
	assert.NotNil(t, res.Entries)
	assert.Empty(t, res.Entries)
}
