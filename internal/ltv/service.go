package ltv

import (
	"context"

	"github.com/Cachi0001/bizcore/internal/gateway"
	"github.com/Cachi0001/bizcore/internal/history"
	saledomain "github.com/Cachi0001/bizcore/internal/sale/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	API     gateway.RecordsAPI
	History *history.Store
	Log     *zap.Logger
}

// Service fetches the sale and invoice records a customer's metrics are
// derived from. Results are computed per request; only the raw records
// are cached, in the history store.
type Service struct {
	api     gateway.RecordsAPI
	history *history.Store
	log     *zap.Logger
}

func New(p Params) *Service {
	return &Service{
		api:     p.API,
		history: p.History,
		log:     p.Log.Named("ltv.service"),
	}
}

// MetricsResult carries the aggregate for one customer plus where the
// underlying records came from.
type MetricsResult struct {
	Metrics CustomerMetrics `json:"metrics"`
	Source  string          `json:"source"`
	Warning string          `json:"warning,omitempty"`
}

// HistoryResult is a customer's purchase history with provenance.
type HistoryResult struct {
	Entries []HistoryEntry `json:"entries"`
	Source  string         `json:"source"`
	Warning string         `json:"warning,omitempty"`
}

// Metrics recomputes the customer's lifetime value from the freshest
// records reachable. A customer with no records gets zero metrics, not
// an error.
func (s *Service) Metrics(ctx context.Context, customerID string) (MetricsResult, error) {
	sales, invoices, source, warning, err := s.records(ctx)
	if err != nil {
		return MetricsResult{}, err
	}
	return MetricsResult{
		Metrics: Aggregate(sales, invoices)[customerID],
		Source:  source,
		Warning: warning,
	}, nil
}

// AllMetricsResult is the full per-customer aggregate.
type AllMetricsResult struct {
	Metrics map[string]CustomerMetrics `json:"metrics"`
	Source  string                     `json:"source"`
	Warning string                     `json:"warning,omitempty"`
}

// AllMetrics recomputes lifetime value for every customer with records.
func (s *Service) AllMetrics(ctx context.Context) (AllMetricsResult, error) {
	sales, invoices, source, warning, err := s.records(ctx)
	if err != nil {
		return AllMetricsResult{}, err
	}
	return AllMetricsResult{
		Metrics: Aggregate(sales, invoices),
		Source:  source,
		Warning: warning,
	}, nil
}

// PurchaseHistory returns the customer's merged sale and invoice
// history, newest first.
func (s *Service) PurchaseHistory(ctx context.Context, customerID string) (HistoryResult, error) {
	sales, invoices, source, warning, err := s.records(ctx)
	if err != nil {
		return HistoryResult{}, err
	}
	entries := History(customerID, sales, invoices)
	if entries == nil {
		entries = []HistoryEntry{}
	}
	return HistoryResult{Entries: entries, Source: source, Warning: warning}, nil
}

// records fetches sales and invoices together. Either collection may
// fall back to the last stored snapshot independently; the result is
// marked "history" if any part of it did.
func (s *Service) records(ctx context.Context) ([]saledomain.Record, []saledomain.Invoice, string, string, error) {
	source, warning := "upstream", ""

	sales, err := s.api.GetSales(ctx, gateway.DateRange{})
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, "", "", ctx.Err()
		}
		s.log.Warn("sales fetch failed, using stored snapshot", zap.Error(err))
		stored, herr := s.history.Sales(ctx)
		if herr != nil {
			return nil, nil, "", "", err
		}
		sales, source, warning = stored, "history", err.Error()
	} else if err := s.history.ReplaceSales(ctx, sales); err != nil {
		s.log.Warn("failed to persist sales snapshot", zap.Error(err))
	}

	invoices, err := s.api.GetInvoices(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, "", "", ctx.Err()
		}
		s.log.Warn("invoices fetch failed, using stored snapshot", zap.Error(err))
		stored, herr := s.history.Invoices(ctx)
		if herr != nil {
			return nil, nil, "", "", err
		}
		invoices, source, warning = stored, "history", err.Error()
	} else if err := s.history.ReplaceInvoices(ctx, invoices); err != nil {
		s.log.Warn("failed to persist invoices snapshot", zap.Error(err))
	}

	return sales, invoices, source, warning, nil
}
