// Package ltv derives per-customer lifetime-value metrics from sale and
// invoice records. Aggregation is pure: it reads its inputs and nothing
// else.
package ltv

import (
	"sort"
	"strings"
	"time"

	saledomain "github.com/Cachi0001/bizcore/internal/sale/domain"
)

// CustomerMetrics is recomputed on demand and never persisted.
type CustomerMetrics struct {
	TotalPurchases int        `json:"totalPurchases"`
	TotalSpent     int64      `json:"totalSpent"`
	LastPurchase   *time.Time `json:"lastPurchase"`
}

// Aggregate joins sales and invoices by customer id. Sales contribute
// purchase count, spend and recency; paid invoices contribute spend
// only. Invoices are not matched against sales, so an invoiced sale
// counts twice toward spend — callers relying on TotalSpent for
// financial reporting must account for that.
func Aggregate(sales []saledomain.Record, invoices []saledomain.Invoice) map[string]CustomerMetrics {
	metrics := make(map[string]CustomerMetrics)

	for _, s := range sales {
		if s.CustomerID == "" {
			continue
		}
		m := metrics[s.CustomerID]
		m.TotalPurchases++
		m.TotalSpent += saleAmount(s)
		if ts, ok := saleTime(s); ok {
			if m.LastPurchase == nil || ts.After(*m.LastPurchase) {
				t := ts
				m.LastPurchase = &t
			}
		}
		metrics[s.CustomerID] = m
	}

	for _, inv := range invoices {
		if inv.CustomerID == "" || !invoicePaid(inv) {
			continue
		}
		m := metrics[inv.CustomerID]
		m.TotalSpent += inv.TotalAmount
		metrics[inv.CustomerID] = m
	}

	return metrics
}

// HistoryEntry is one row of a customer's purchase history, tagged with
// its origin.
type HistoryEntry struct {
	Type        string     `json:"type"`
	ID          string     `json:"id"`
	Amount      int64      `json:"amount"`
	ProductName string     `json:"product_name,omitempty"`
	Status      string     `json:"status,omitempty"`
	Date        *time.Time `json:"date"`
}

const (
	HistorySale    = "sale"
	HistoryInvoice = "invoice"
)

// History returns the customer's sale and invoice records as one list,
// newest first. The sort is stable: records with equal (or missing)
// dates keep their original order.
func History(customerID string, sales []saledomain.Record, invoices []saledomain.Invoice) []HistoryEntry {
	var entries []HistoryEntry

	for _, s := range sales {
		if s.CustomerID != customerID {
			continue
		}
		entry := HistoryEntry{
			Type:        HistorySale,
			ID:          s.ID,
			Amount:      saleAmount(s),
			ProductName: s.ProductName,
		}
		if ts, ok := saleTime(s); ok {
			t := ts
			entry.Date = &t
		}
		entries = append(entries, entry)
	}

	for _, inv := range invoices {
		if inv.CustomerID != customerID {
			continue
		}
		entry := HistoryEntry{
			Type:   HistoryInvoice,
			ID:     inv.ID,
			Amount: inv.TotalAmount,
			Status: inv.Status,
		}
		if ts, ok := parseTime(inv.IssueDate); ok {
			t := ts
			entry.Date = &t
		} else if ts, ok := parseTime(inv.CreatedAt); ok {
			t := ts
			entry.Date = &t
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entryTime(entries[i]).After(entryTime(entries[j]))
	})
	return entries
}

func invoicePaid(inv saledomain.Invoice) bool {
	return strings.EqualFold(strings.TrimSpace(inv.Status), saledomain.InvoiceStatusPaid)
}

func saleAmount(s saledomain.Record) int64 {
	if s.TotalAmount != 0 {
		return s.TotalAmount
	}
	return s.NetAmount
}

func saleTime(s saledomain.Record) (time.Time, bool) {
	if ts, ok := parseTime(s.Date); ok {
		return ts, true
	}
	return parseTime(s.CreatedAt)
}

func entryTime(e HistoryEntry) time.Time {
	if e.Date == nil {
		return time.Time{}
	}
	return *e.Date
}

func parseTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02", "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}
