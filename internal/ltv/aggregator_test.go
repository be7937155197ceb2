package ltv

import (
	"testing"
	"time"

	saledomain "github.com/Cachi0001/bizcore/internal/sale/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateSalesAndPaidInvoices(t *testing.T) {
	sales := []saledomain.Record{
		{ID: "s1", CustomerID: "c1", TotalAmount: 2000, Date: "2024-01-01"},
	}
	invoices := []saledomain.Invoice{
		{ID: "i1", CustomerID: "c1", TotalAmount: 3000, Status: "paid"},
	}

	metrics := Aggregate(sales, invoices)

	m, ok := metrics["c1"]
	require.True(t, ok)
	assert.Equal(t, 1, m.TotalPurchases, "invoices must not count as purchases")
	assert.Equal(t, int64(5000), m.TotalSpent)
	require.NotNil(t, m.LastPurchase)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *m.LastPurchase)
}

func TestAggregateIgnoresUnpaidInvoices(t *testing.T) {
	invoices := []saledomain.Invoice{
		{ID: "i1", CustomerID: "c1", TotalAmount: 3000, Status: "pending"},
		{ID: "i2", CustomerID: "c1", TotalAmount: 1000, Status: "Paid"},
	}

	metrics := Aggregate(nil, invoices)

	m := metrics["c1"]
	assert.Equal(t, int64(1000), m.TotalSpent, "status match is case-insensitive, unpaid excluded")
	assert.Equal(t, 0, m.TotalPurchases)
	assert.Nil(t, m.LastPurchase)
}

func TestAggregateSkipsRecordsWithoutCustomer(t *testing.T) {
	sales := []saledomain.Record{
		{ID: "s1", TotalAmount: 500, Date: "2024-01-01"},
	}
	invoices := []saledomain.Invoice{
		{ID: "i1", TotalAmount: 700, Status: "paid"},
	}

	metrics := Aggregate(sales, invoices)
	assert.Empty(t, metrics)
}

func TestAggregateNetAmountFallback(t *testing.T) {
	sales := []saledomain.Record{
		{ID: "s1", CustomerID: "c1", NetAmount: 1500, Date: "2024-01-01"},
	}

	metrics := Aggregate(sales, nil)
	assert.Equal(t, int64(1500), metrics["c1"].TotalSpent)
}

func TestAggregateLastPurchaseCreatedAtFallback(t *testing.T) {
	sales := []saledomain.Record{
		{ID: "s1", CustomerID: "c1", TotalAmount: 100, CreatedAt: "2024-03-05T14:00:00Z"},
		{ID: "s2", CustomerID: "c1", TotalAmount: 100, Date: "2024-02-01"},
	}

	metrics := Aggregate(sales, nil)
	require.NotNil(t, metrics["c1"].LastPurchase)
	assert.Equal(t, time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC), *metrics["c1"].LastPurchase)
}

func TestAggregateAdditivity(t *testing.T) {
	s1 := []saledomain.Record{
		{ID: "s1", CustomerID: "c1", TotalAmount: 1200, Date: "2024-01-01"},
		{ID: "s2", CustomerID: "c1", TotalAmount: 800, Date: "2024-01-02"},
	}
	s2 := []saledomain.Record{
		{ID: "s3", CustomerID: "c1", TotalAmount: 3000, Date: "2024-01-03"},
	}

	combined := Aggregate(append(append([]saledomain.Record{}, s1...), s2...), nil)
	first := Aggregate(s1, nil)
	second := Aggregate(s2, nil)

	assert.Equal(t, first["c1"].TotalSpent+second["c1"].TotalSpent, combined["c1"].TotalSpent)
	assert.Equal(t, first["c1"].TotalPurchases+second["c1"].TotalPurchases, combined["c1"].TotalPurchases)
}

func TestHistoryUnionSortedNewestFirst(t *testing.T) {
	sales := []saledomain.Record{
		{ID: "s1", CustomerID: "c1", ProductName: "Rice", TotalAmount: 2000, Date: "2024-01-10"},
		{ID: "s2", CustomerID: "c2", TotalAmount: 999, Date: "2024-01-11"},
	}
	invoices := []saledomain.Invoice{
		{ID: "i1", CustomerID: "c1", TotalAmount: 3000, Status: "paid", IssueDate: "2024-02-01"},
		{ID: "i2", CustomerID: "c1", TotalAmount: 500, Status: "pending", IssueDate: "2023-12-01"},
	}

	entries := History("c1", sales, invoices)

	require.Len(t, entries, 3, "history includes unpaid invoices, excludes other customers")
	assert.Equal(t, "i1", entries[0].ID)
	assert.Equal(t, HistoryInvoice, entries[0].Type)
	assert.Equal(t, "s1", entries[1].ID)
	assert.Equal(t, HistorySale, entries[1].Type)
	assert.Equal(t, "i2", entries[2].ID)
}

func TestHistoryStableOnEqualDates(t *testing.T) {
	sales := []saledomain.Record{
		{ID: "s1", CustomerID: "c1", TotalAmount: 1, Date: "2024-01-10"},
		{ID: "s2", CustomerID: "c1", TotalAmount: 2, Date: "2024-01-10"},
	}
	invoices := []saledomain.Invoice{
		{ID: "i1", CustomerID: "c1", TotalAmount: 3, Status: "paid", IssueDate: "2024-01-10"},
	}

	entries := History("c1", sales, invoices)

	require.Len(t, entries, 3)
	assert.Equal(t, []string{"s1", "s2", "i1"}, []string{entries[0].ID, entries[1].ID, entries[2].ID},
		"equal dates keep insertion order")
}

func TestHistoryUndatedEntriesSortLast(t *testing.T) {
	sales := []saledomain.Record{
		{ID: "s1", CustomerID: "c1", TotalAmount: 1},
		{ID: "s2", CustomerID: "c1", TotalAmount: 2, Date: "2024-01-10"},
	}

	entries := History("c1", sales, nil)

	require.Len(t, entries, 2)
	assert.Equal(t, "s2", entries[0].ID)
	assert.Nil(t, entries[1].Date)
}
