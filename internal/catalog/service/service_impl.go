package service

import (
	"context"
	"errors"
	"sync"

	"github.com/Cachi0001/bizcore/internal/catalog/domain"
	"github.com/Cachi0001/bizcore/internal/config"
	"github.com/Cachi0001/bizcore/internal/envelope"
	"github.com/Cachi0001/bizcore/internal/gateway"
	"github.com/Cachi0001/bizcore/internal/history"
	"github.com/Cachi0001/bizcore/internal/observability"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	API     gateway.RecordsAPI
	History *history.Store
	Sales   *config.SalesConfigHolder
	Log     *zap.Logger
	Metrics *observability.Metrics
}

// Service holds the product snapshot. The whole collection is replaced
// on refresh; readers never see a partial update. A generation counter
// guards against a slow fetch overwriting a newer one.
type Service struct {
	api     gateway.RecordsAPI
	history *history.Store
	sales   *config.SalesConfigHolder
	log     *zap.Logger
	metrics *observability.Metrics

	mu         sync.RWMutex
	products   []domain.Product
	byID       map[string]domain.Product
	issuedGen  uint64
	appliedGen uint64
}

func New(p Params) domain.Service {
	return &Service{
		api:     p.API,
		history: p.History,
		sales:   p.Sales,
		log:     p.Log.Named("catalog.service"),
		metrics: p.Metrics,
		byID:    map[string]domain.Product{},
	}
}

func (s *Service) Refresh(ctx context.Context) (domain.RefreshResult, error) {
	gen := s.nextGeneration()

	products, err := s.api.GetProducts(ctx)
	switch {
	case err == nil:
		products = s.withDefaults(products)
		if !s.apply(gen, products) {
			return s.staleResult()
		}
		if err := s.history.ReplaceProducts(ctx, products); err != nil {
			s.log.Warn("failed to persist product snapshot", zap.Error(err))
		}
		s.metrics.SnapshotRefreshes.WithLabelValues("products", domain.SourceUpstream).Inc()
		return domain.RefreshResult{Count: len(products), Source: domain.SourceUpstream}, nil

	case errors.Is(err, envelope.ErrUnexpectedShape):
		// The transport answered but with an unrecognizable envelope.
		// Degrade to empty rather than guessing at the payload.
		if !s.apply(gen, []domain.Product{}) {
			return s.staleResult()
		}
		s.metrics.SnapshotRefreshes.WithLabelValues("products", domain.SourceUpstream).Inc()
		return domain.RefreshResult{Count: 0, Source: domain.SourceUpstream, Warning: "unexpected response shape from records api"}, nil

	case ctx.Err() != nil:
		return domain.RefreshResult{}, ctx.Err()
	}

	s.log.Warn("product fetch failed, falling back", zap.Error(err))

	if stored, herr := s.history.Products(ctx); herr == nil && len(stored) > 0 {
		stored = s.withDefaults(stored)
		if !s.apply(gen, stored) {
			return s.staleResult()
		}
		s.metrics.SnapshotRefreshes.WithLabelValues("products", domain.SourceHistory).Inc()
		return domain.RefreshResult{Count: len(stored), Source: domain.SourceHistory, Warning: err.Error()}, nil
	}

	s.metrics.SnapshotRefreshes.WithLabelValues("products", domain.SourceMemory).Inc()
	s.mu.RLock()
	count := len(s.products)
	s.mu.RUnlock()
	return domain.RefreshResult{Count: count, Source: domain.SourceMemory, Warning: err.Error()}, nil
}

func (s *Service) List() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out
}

func (s *Service) Find(id string) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	return p, ok
}

func (s *Service) Summary() domain.StockSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := domain.StockSummary{ProductCount: len(s.products)}
	for _, p := range s.products {
		if p.OutOfStock() {
			summary.OutOfStockCount++
		} else if p.LowStock() {
			summary.LowStockCount++
		}
	}
	return summary
}

func (s *Service) nextGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issuedGen++
	return s.issuedGen
}

// apply installs the fetched collection unless a newer generation
// already did.
func (s *Service) apply(gen uint64, products []domain.Product) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen <= s.appliedGen {
		s.metrics.StaleResponsesDropped.WithLabelValues("products").Inc()
		return false
	}
	s.appliedGen = gen

	s.products = products
	s.byID = make(map[string]domain.Product, len(products))
	for _, p := range products {
		s.byID[p.ID] = p
	}
	return true
}

func (s *Service) staleResult() (domain.RefreshResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.RefreshResult{
		Count:   len(s.products),
		Source:  domain.SourceMemory,
		Warning: "refresh superseded by a newer one",
	}, nil
}

func (s *Service) withDefaults(products []domain.Product) []domain.Product {
	threshold := s.sales.Get().DefaultLowStockThreshold
	out := make([]domain.Product, len(products))
	for i, p := range products {
		if p.LowStockThreshold <= 0 {
			p.LowStockThreshold = threshold
		}
		out[i] = p
	}
	return out
}
