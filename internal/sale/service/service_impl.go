package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	catalogdomain "github.com/Cachi0001/bizcore/internal/catalog/domain"
	clockpkg "github.com/Cachi0001/bizcore/internal/clock"
	"github.com/Cachi0001/bizcore/internal/config"
	directorydomain "github.com/Cachi0001/bizcore/internal/directory/domain"
	"github.com/Cachi0001/bizcore/internal/envelope"
	"github.com/Cachi0001/bizcore/internal/gateway"
	"github.com/Cachi0001/bizcore/internal/history"
	"github.com/Cachi0001/bizcore/internal/observability"
	"github.com/Cachi0001/bizcore/internal/sale/composer"
	"github.com/Cachi0001/bizcore/internal/sale/domain"
	"github.com/Cachi0001/bizcore/internal/sale/validator"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	API       gateway.RecordsAPI
	Catalog   catalogdomain.Service
	Directory directorydomain.Service
	History   *history.Store
	Sales     *config.SalesConfigHolder
	Log       *zap.Logger
	Metrics   *observability.Metrics
	GenID     *snowflake.Node
	Clock     clockpkg.Clock
}

type Service struct {
	api       gateway.RecordsAPI
	catalog   catalogdomain.Service
	directory directorydomain.Service
	history   *history.Store
	composer  *composer.Composer
	log       *zap.Logger
	metrics   *observability.Metrics
	genID     *snowflake.Node
	clock     clockpkg.Clock

	mu     sync.Mutex
	drafts map[string]domain.Draft
}

func New(p Params) domain.Service {
	return &Service{
		api:       p.API,
		catalog:   p.Catalog,
		directory: p.Directory,
		history:   p.History,
		composer:  composer.New(p.Sales),
		log:       p.Log.Named("sale.service"),
		metrics:   p.Metrics,
		genID:     p.GenID,
		clock:     p.Clock,
		drafts:    map[string]domain.Draft{},
	}
}

func (s *Service) CreateDraft() domain.Draft {
	draft := s.composer.NewDraft(s.genID.Generate().String(), s.clock.Now())

	s.mu.Lock()
	s.drafts[draft.ID] = draft
	s.mu.Unlock()

	return draft
}

func (s *Service) GetDraft(id string) (domain.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, ok := s.drafts[id]
	if !ok {
		return domain.Draft{}, domain.ErrDraftNotFound
	}
	return draft, nil
}

func (s *Service) CancelDraft(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.drafts[id]; !ok {
		return domain.ErrDraftNotFound
	}
	delete(s.drafts, id)
	return nil
}

func (s *Service) SelectProduct(id, productID string) (domain.Draft, []domain.Warning, error) {
	product, ok := s.catalog.Find(productID)
	if !ok {
		return domain.Draft{}, nil, catalogdomain.ErrNotFound
	}

	var warnings []domain.Warning
	draft, err := s.mutate(id, func(d *domain.Draft) error {
		warnings = s.composer.SelectProduct(d, product)
		return nil
	})
	if err != nil {
		return domain.Draft{}, nil, err
	}
	s.countWarnings(warnings)
	return draft, warnings, nil
}

func (s *Service) SetQuantity(id string, quantity int) (domain.Draft, []domain.Warning, error) {
	var warnings []domain.Warning
	draft, err := s.mutate(id, func(d *domain.Draft) error {
		available, known := 0, false
		if d.ProductID != "" {
			if p, ok := s.catalog.Find(d.ProductID); ok {
				available, known = p.Quantity, true
			}
		}
		var err error
		warnings, err = s.composer.SetQuantity(d, quantity, available, known)
		return err
	})
	if err != nil {
		return domain.Draft{}, nil, err
	}
	s.countWarnings(warnings)
	return draft, warnings, nil
}

func (s *Service) SetUnitPrice(id string, price int64) (domain.Draft, error) {
	return s.mutate(id, func(d *domain.Draft) error {
		return s.composer.SetUnitPrice(d, price)
	})
}

func (s *Service) SelectCustomer(id, customerID string) (domain.Draft, error) {
	name := ""
	if customerID != "" {
		customer, ok := s.directory.Find(customerID)
		if !ok {
			return domain.Draft{}, directorydomain.ErrNotFound
		}
		name = customer.Name
	}

	return s.mutate(id, func(d *domain.Draft) error {
		s.composer.SelectCustomer(d, customerID, name)
		return nil
	})
}

func (s *Service) SetPaymentMethod(id, method string) (domain.Draft, error) {
	return s.mutate(id, func(d *domain.Draft) error {
		return s.composer.SetPaymentMethod(d, method)
	})
}

func (s *Service) SetDate(id, date string) (domain.Draft, error) {
	return s.mutate(id, func(d *domain.Draft) error {
		return s.composer.SetDate(d, date)
	})
}

// Submit validates the draft against the live catalog and sends it
// upstream. On acceptance the draft is destroyed and the catalog
// refreshed; on validation failure nothing is mutated anywhere.
func (s *Service) Submit(ctx context.Context, id string) (domain.Record, error) {
	draft, err := s.GetDraft(id)
	if err != nil {
		return domain.Record{}, err
	}

	result := validator.Validate(draft, s.catalog.Find)
	if !result.OK {
		s.metrics.ValidationFailures.WithLabelValues(result.Reason.Error()).Inc()
		return domain.Record{}, fmt.Errorf("%w: %s", result.Reason, result.Message)
	}

	record, err := s.api.CreateSale(ctx, *result.Submission)
	if err != nil {
		s.log.Warn("sale submission failed", zap.String("draft_id", id), zap.Error(err))
		return domain.Record{}, err
	}

	s.mu.Lock()
	delete(s.drafts, id)
	s.mu.Unlock()

	s.metrics.SalesSubmitted.Inc()

	// Stock changed upstream; pull fresh bounds for the next draft.
	if _, err := s.catalog.Refresh(ctx); err != nil {
		s.log.Warn("post-sale catalog refresh failed", zap.Error(err))
	}

	return record, nil
}

func (s *Service) ListSales(ctx context.Context, from, to string) (domain.ListResult, error) {
	sales, err := s.api.GetSales(ctx, gateway.DateRange{From: from, To: to})
	switch {
	case err == nil:
		if err := s.history.ReplaceSales(ctx, sales); err != nil {
			s.log.Warn("failed to persist sales snapshot", zap.Error(err))
		}
		return domain.ListResult{Sales: sales, Source: "upstream"}, nil

	case errors.Is(err, envelope.ErrUnexpectedShape):
		return domain.ListResult{Sales: []domain.Record{}, Source: "upstream", Warning: "unexpected response shape from records api"}, nil

	case ctx.Err() != nil:
		return domain.ListResult{}, ctx.Err()
	}

	s.log.Warn("sales fetch failed, falling back to history", zap.Error(err))
	stored, herr := s.history.Sales(ctx)
	if herr != nil {
		return domain.ListResult{}, err
	}
	return domain.ListResult{Sales: stored, Source: "history", Warning: err.Error()}, nil
}

func (s *Service) mutate(id string, fn func(d *domain.Draft) error) (domain.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, ok := s.drafts[id]
	if !ok {
		return domain.Draft{}, domain.ErrDraftNotFound
	}
	if err := fn(&draft); err != nil {
		return domain.Draft{}, err
	}
	s.drafts[id] = draft
	return draft, nil
}

func (s *Service) countWarnings(warnings []domain.Warning) {
	for _, w := range warnings {
		s.metrics.DraftWarnings.WithLabelValues(string(w.Kind)).Inc()
	}
}
