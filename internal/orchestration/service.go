package orchestration

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/openmarket-labs/vendorflow-backend/internal/splitter"
	"github.com/openmarket-labs/vendorflow-backend/pkg/config"
	"github.com/openmarket-labs/vendorflow-backend/pkg/db/models"
	"github.com/openmarket-labs/vendorflow-backend/pkg/enums"
	pkgerrors "github.com/openmarket-labs/vendorflow-backend/pkg/errors"
	"github.com/openmarket-labs/vendorflow-backend/pkg/logger"
)

type orderFinder interface {
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

type vendorResolver interface {
	Resolve(ctx context.Context, vendorIDs []uuid.UUID) (map[uuid.UUID]splitter.VendorContext, error)
}

type orderSplitter interface {
	Split(ctx context.Context, order models.Order, vendors map[uuid.UUID]splitter.VendorContext) ([]splitter.VendorSplit, error)
}

type contextStore interface {
	Save(ctx context.Context, c *Context) error
	Get(ctx context.Context, orderID uuid.UUID) (*Context, error)
}

type runLeaser interface {
	AcquireLease(ctx context.Context, orderID, owner string, ttl time.Duration) (bool, error)
	ReleaseLease(ctx context.Context, orderID string) error
}

type stepRunner interface {
	Execute(ctx context.Context, c *Context) error
}

// Service is the inbound surface for coordination runs and status queries.
type Service struct {
	orders   orderFinder
	vendors  vendorResolver
	splitter orderSplitter
	store    contextStore
	leaser   runLeaser
	executor stepRunner
	cfg      config.CoordinationConfig
	logg     *logger.Logger
	now      func() time.Time
}

// ServiceParams wires a Service.
type ServiceParams struct {
	Orders   orderFinder
	Vendors  vendorResolver
	Splitter orderSplitter
	Store    contextStore
	Leaser   runLeaser
	Executor stepRunner
	Config   config.CoordinationConfig
	Logger   *logger.Logger
}

// NewService validates dependencies and builds a Service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Orders == nil {
		return nil, errors.New("orders repository is required")
	}
	if params.Vendors == nil {
		return nil, errors.New("vendor directory is required")
	}
	if params.Splitter == nil {
		return nil, errors.New("splitter is required")
	}
	if params.Store == nil {
		return nil, errors.New("state store is required")
	}
	if params.Leaser == nil {
		return nil, errors.New("run leaser is required")
	}
	if params.Executor == nil {
		return nil, errors.New("executor is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	return &Service{
		orders:   params.Orders,
		vendors:  params.Vendors,
		splitter: params.Splitter,
		store:    params.Store,
		leaser:   params.Leaser,
		executor: params.Executor,
		cfg:      params.Config,
		logg:     params.Logger,
		now:      time.Now,
	}, nil
}

// Orchestrate fans the order out across its vendors and drives the planned
// steps to completion. A duplicate request for an already-orchestrated order
// is rejected; a request racing a live run gets a retryable lease conflict.
// The returned context reflects the run's final state even when it failed.
func (s *Service) Orchestrate(ctx context.Context, orderID uuid.UUID, opts Options) (*Context, error) {
	logCtx := s.logg.WithOrderID(ctx, orderID.String())

	acquired, err := s.leaser.AcquireLease(ctx, orderID.String(), uuid.NewString(), s.cfg.LeaseTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquiring coordination lease")
	}
	if !acquired {
		return nil, pkgerrors.New(pkgerrors.CodeLeaseHeld, "a coordination run for this order is already in progress")
	}
	defer func() {
		if err := s.leaser.ReleaseLease(ctx, orderID.String()); err != nil {
			s.logg.Error(logCtx, "releasing coordination lease", err)
		}
	}()

	existing, err := s.store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, pkgerrors.New(pkgerrors.CodeConflict, "order has already been orchestrated")
	}

	order, err := s.orders.FindOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	vendorIDs := distinctVendorIDs(order.Items)
	directory, err := s.vendors.Resolve(ctx, vendorIDs)
	if err != nil {
		return nil, err
	}

	splits, err := s.splitter.Split(ctx, *order, directory)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	runCtx := &Context{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Currency:   order.Currency,
		TotalCents: order.TotalCents,
		Splits:     splits,
		Steps:      Plan(splits),
		Status:     enums.CoordinationStatusPending,
		Options:    opts,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Save(ctx, runCtx); err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithField(logCtx, "step_count", len(runCtx.Steps)), "coordination run starting")

	if err := s.executor.Execute(ctx, runCtx); err != nil {
		return runCtx, err
	}

	s.logg.Info(logCtx, "coordination run completed")
	return runCtx, nil
}

// Status reports run progress. Never-orchestrated and expired orders both
// surface as not found.
func (s *Service) Status(ctx context.Context, orderID uuid.UUID) (*Snapshot, error) {
	c, err := s.store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no coordination state for this order")
	}
	snapshot := c.Snapshot()
	return &snapshot, nil
}

func distinctVendorIDs(items []models.OrderItem) []uuid.UUID {
	seen := map[uuid.UUID]struct{}{}
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.VendorID]; ok {
			continue
		}
		seen[item.VendorID] = struct{}{}
		ids = append(ids, item.VendorID)
	}
	return ids
}
