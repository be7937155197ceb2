// Package domain contains the product catalog snapshot models.
package domain

import "errors"

// Product is one catalog entry as served by the records API. Amounts are
// int64 minor units; Quantity is stock on hand.
type Product struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	SKU               string `json:"sku,omitempty"`
	Category          string `json:"category,omitempty"`
	Price             int64  `json:"price"`
	CostPrice         int64  `json:"cost_price,omitempty"`
	Quantity          int    `json:"quantity"`
	LowStockThreshold int    `json:"low_stock_threshold"`
}

// OutOfStock reports whether the product has no stock on hand.
func (p Product) OutOfStock() bool {
	return p.Quantity == 0
}

// LowStock reports whether stock is positive but at or below the
// threshold. The snapshot service fills a missing threshold with the
// configured default before the product is visible to callers.
func (p Product) LowStock() bool {
	return p.Quantity > 0 && p.Quantity <= p.LowStockThreshold
}

// StockSummary aggregates stock status across the snapshot.
type StockSummary struct {
	ProductCount    int `json:"product_count"`
	LowStockCount   int `json:"low_stock_count"`
	OutOfStockCount int `json:"out_of_stock_count"`
}

var ErrNotFound = errors.New("product_not_found")
