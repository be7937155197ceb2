package domain

import "context"

// RefreshResult describes where a snapshot refresh got its data.
type RefreshResult struct {
	Count   int    `json:"count"`
	Source  string `json:"source"`
	Warning string `json:"warning,omitempty"`
}

const (
	SourceUpstream = "upstream"
	SourceHistory  = "history"
	SourceMemory   = "memory"
)

// Service is the read-mostly catalog snapshot. Refresh replaces the whole
// collection; there is no partial in-place mutation.
type Service interface {
	Refresh(ctx context.Context) (RefreshResult, error)
	List() []Product
	Find(id string) (Product, bool)
	Summary() StockSummary
}
