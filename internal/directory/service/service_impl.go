package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/Cachi0001/bizcore/internal/directory/domain"
	"github.com/Cachi0001/bizcore/internal/envelope"
	"github.com/Cachi0001/bizcore/internal/gateway"
	"github.com/Cachi0001/bizcore/internal/history"
	"github.com/Cachi0001/bizcore/internal/observability"
	"github.com/Cachi0001/bizcore/internal/optimistic"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	API     gateway.RecordsAPI
	History *history.Store
	Log     *zap.Logger
	Metrics *observability.Metrics
}

// Service holds the customer directory snapshot. Mutations are
// serialized under one lock: the optimistic local change, the remote
// call and a possible rollback happen as one unit, so readers only ever
// see the collection fully before or fully after a mutation.
type Service struct {
	api     gateway.RecordsAPI
	history *history.Store
	log     *zap.Logger
	metrics *observability.Metrics

	mu         sync.RWMutex
	customers  []domain.Customer
	issuedGen  uint64
	appliedGen uint64
}

func New(p Params) domain.Service {
	return &Service{
		api:     p.API,
		history: p.History,
		log:     p.Log.Named("directory.service"),
		metrics: p.Metrics,
	}
}

func (s *Service) Refresh(ctx context.Context) (domain.RefreshResult, error) {
	gen := s.nextGeneration()

	customers, err := s.api.GetCustomers(ctx)
	switch {
	case err == nil:
		if !s.apply(gen, customers) {
			return s.staleResult()
		}
		if err := s.history.ReplaceCustomers(ctx, customers); err != nil {
			s.log.Warn("failed to persist customer snapshot", zap.Error(err))
		}
		s.metrics.SnapshotRefreshes.WithLabelValues("customers", domain.SourceUpstream).Inc()
		return domain.RefreshResult{Count: len(customers), Source: domain.SourceUpstream}, nil

	case errors.Is(err, envelope.ErrUnexpectedShape):
		if !s.apply(gen, []domain.Customer{}) {
			return s.staleResult()
		}
		s.metrics.SnapshotRefreshes.WithLabelValues("customers", domain.SourceUpstream).Inc()
		return domain.RefreshResult{Count: 0, Source: domain.SourceUpstream, Warning: "unexpected response shape from records api"}, nil

	case ctx.Err() != nil:
		return domain.RefreshResult{}, ctx.Err()
	}

	s.log.Warn("customer fetch failed, falling back", zap.Error(err))

	if stored, herr := s.history.Customers(ctx); herr == nil && len(stored) > 0 {
		if !s.apply(gen, stored) {
			return s.staleResult()
		}
		s.metrics.SnapshotRefreshes.WithLabelValues("customers", domain.SourceHistory).Inc()
		return domain.RefreshResult{Count: len(stored), Source: domain.SourceHistory, Warning: err.Error()}, nil
	}

	s.metrics.SnapshotRefreshes.WithLabelValues("customers", domain.SourceMemory).Inc()
	s.mu.RLock()
	count := len(s.customers)
	s.mu.RUnlock()
	return domain.RefreshResult{Count: count, Source: domain.SourceMemory, Warning: err.Error()}, nil
}

func (s *Service) List() []domain.Customer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Customer, len(s.customers))
	copy(out, s.customers)
	return out
}

func (s *Service) Find(id string) (domain.Customer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.customers {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Customer{}, false
}

// Update applies the patch locally first and rolls the collection back
// in full if the remote update fails.
func (s *Service) Update(ctx context.Context, id string, patch domain.CustomerPatch) (domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.findLocked(id)
	if !ok {
		return domain.Customer{}, domain.ErrNotFound
	}

	updated := applyPatch(current, patch)
	if strings.TrimSpace(updated.Name) == "" {
		return domain.Customer{}, domain.ErrInvalidName
	}

	err := optimistic.Run(ctx, &s.customers,
		optimistic.ReplaceFunc(func(c domain.Customer) bool { return c.ID == id }, updated),
		func(ctx context.Context) error {
			remote, err := s.api.UpdateCustomer(ctx, id, patch)
			if err != nil {
				return err
			}
			// Reconcile with the server's echo when it returned one.
			if remote.ID != "" {
				updated = remote
			}
			return nil
		})
	if err != nil {
		s.metrics.OptimisticRollbacks.WithLabelValues("customer_update").Inc()
		s.log.Warn("customer update rolled back", zap.String("customer_id", id), zap.Error(err))
		return domain.Customer{}, err
	}

	s.customers = optimistic.ReplaceFunc(func(c domain.Customer) bool { return c.ID == id }, updated)(s.customers)
	s.persistLocked(ctx)
	return updated, nil
}

// Delete removes the customer locally first and restores the exact
// pre-delete collection if the remote delete fails.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.findLocked(id); !ok {
		return domain.ErrNotFound
	}

	err := optimistic.Run(ctx, &s.customers,
		optimistic.RemoveFunc(func(c domain.Customer) bool { return c.ID == id }),
		func(ctx context.Context) error {
			return s.api.DeleteCustomer(ctx, id)
		})
	if err != nil {
		s.metrics.OptimisticRollbacks.WithLabelValues("customer_delete").Inc()
		s.log.Warn("customer delete rolled back", zap.String("customer_id", id), zap.Error(err))
		return err
	}

	s.persistLocked(ctx)
	return nil
}

func (s *Service) findLocked(id string) (domain.Customer, bool) {
	for _, c := range s.customers {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Customer{}, false
}

func (s *Service) persistLocked(ctx context.Context) {
	if err := s.history.ReplaceCustomers(ctx, s.customers); err != nil {
		s.log.Warn("failed to persist customer snapshot", zap.Error(err))
	}
}

func (s *Service) nextGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issuedGen++
	return s.issuedGen
}

func (s *Service) apply(gen uint64, customers []domain.Customer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen <= s.appliedGen {
		s.metrics.StaleResponsesDropped.WithLabelValues("customers").Inc()
		return false
	}
	s.appliedGen = gen
	s.customers = customers
	return true
}

func (s *Service) staleResult() (domain.RefreshResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.RefreshResult{
		Count:   len(s.customers),
		Source:  domain.SourceMemory,
		Warning: "refresh superseded by a newer one",
	}, nil
}

func applyPatch(c domain.Customer, patch domain.CustomerPatch) domain.Customer {
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Email != nil {
		c.Email = *patch.Email
	}
	if patch.Phone != nil {
		c.Phone = *patch.Phone
	}
	if patch.BusinessName != nil {
		c.BusinessName = *patch.BusinessName
	}
	if patch.Address != nil {
		c.Address = *patch.Address
	}
	if patch.Notes != nil {
		c.Notes = *patch.Notes
	}
	return c
}
