package orchestration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openmarket-labs/vendorflow-backend/internal/events"
	"github.com/openmarket-labs/vendorflow-backend/internal/splitter"
	"github.com/openmarket-labs/vendorflow-backend/pkg/enums"
	pkgerrors "github.com/openmarket-labs/vendorflow-backend/pkg/errors"
	"github.com/openmarket-labs/vendorflow-backend/pkg/logger"
	"github.com/openmarket-labs/vendorflow-backend/pkg/metrics"
)

// EventSink is the outbound hand-off surface. Publishing successfully is the
// step's whole contract; the executor never waits for downstream results.
type EventSink interface {
	Publish(ctx context.Context, eventType enums.EventType, payload any) error
}

type contextSaver interface {
	Save(ctx context.Context, c *Context) error
}

// Executor drives a planned run step by step. Steps execute strictly in plan
// order; a step that exhausts its retries fails the whole run and later steps
// are never attempted. No compensation of completed steps is performed.
type Executor struct {
	sink       EventSink
	store      contextSaver
	logg       *logger.Logger
	metrics    *metrics.CoordinationMetrics
	maxRetries int
	now        func() time.Time
}

// ExecutorParams wires an Executor.
type ExecutorParams struct {
	Sink       EventSink
	Store      contextSaver
	Logger     *logger.Logger
	Metrics    *metrics.CoordinationMetrics
	MaxRetries int
}

// NewExecutor validates dependencies and builds an Executor.
func NewExecutor(params ExecutorParams) (*Executor, error) {
	if params.Sink == nil {
		return nil, errors.New("event sink is required")
	}
	if params.Store == nil {
		return nil, errors.New("state store is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.MaxRetries < 0 {
		return nil, errors.New("max retries must be non-negative")
	}
	return &Executor{
		sink:       params.Sink,
		store:      params.Store,
		logg:       params.Logger,
		metrics:    params.Metrics,
		maxRetries: params.MaxRetries,
		now:        time.Now,
	}, nil
}

// Execute runs every planned step in order, persisting the context after each
// mutation so polled status stays near real time.
func (e *Executor) Execute(ctx context.Context, c *Context) error {
	c.Status = enums.CoordinationStatusCoordinating
	if err := e.persist(ctx, c); err != nil {
		return err
	}

	for i := range c.Steps {
		step := &c.Steps[i]
		logCtx := e.logg.WithStep(e.logg.WithOrderID(ctx, c.OrderID.String()), string(step.Kind))

		if err := e.runStep(logCtx, c, step); err != nil {
			c.Status = enums.CoordinationStatusFailed
			if persistErr := e.persist(ctx, c); persistErr != nil {
				e.logg.Error(logCtx, "persisting failed run state", persistErr)
			}
			e.metrics.IncRun("failed")
			return pkgerrors.Wrap(pkgerrors.CodeCoordination, err, "coordination run failed").
				WithDetails(map[string]any{
					"step":        string(step.Kind),
					"step_id":     step.ID.String(),
					"retry_count": step.RetryCount,
				})
		}
	}

	c.Status = enums.CoordinationStatusCompleted
	if err := e.persist(ctx, c); err != nil {
		return err
	}
	e.metrics.IncRun("completed")
	return nil
}

// runStep drives one step through its state machine with an explicit bounded
// retry loop. A failed attempt retries immediately until the retry budget is
// spent; the attempt after the last allowed retry is terminal.
func (e *Executor) runStep(ctx context.Context, c *Context, step *Step) error {
	for {
		if err := e.transition(ctx, c, step, enums.StepStatusInProgress); err != nil {
			return err
		}

		started := e.now().UTC()
		if step.StartedAt == nil {
			step.StartedAt = &started
		}

		err := e.dispatch(ctx, c, step)
		e.metrics.ObserveStepDuration(string(step.Kind), e.now().Sub(started))

		if err == nil {
			finished := e.now().UTC()
			step.FinishedAt = &finished
			step.LastError = ""
			return e.transition(ctx, c, step, enums.StepStatusCompleted)
		}

		step.LastError = err.Error()
		if transErr := e.transition(ctx, c, step, enums.StepStatusFailed); transErr != nil {
			return transErr
		}

		if step.RetryCount >= e.maxRetries {
			finished := e.now().UTC()
			step.FinishedAt = &finished
			e.metrics.IncStepFailure(string(step.Kind))
			e.logg.Error(ctx, "step exhausted retries", err)
			return fmt.Errorf("step %s failed after %d retries: %w", step.Kind, step.RetryCount, err)
		}

		step.RetryCount++
		e.metrics.IncStepRetry(string(step.Kind))
		e.logg.Warn(e.logg.WithField(ctx, "retry_count", step.RetryCount), "step hand-off failed, retrying")
	}
}

// transition moves a step to the next status, enforcing the state machine, and
// persists the context.
func (e *Executor) transition(ctx context.Context, c *Context, step *Step, next enums.StepStatus) error {
	if !step.Status.CanTransitionTo(next) {
		return pkgerrors.New(pkgerrors.CodeInternal,
			fmt.Sprintf("invalid step transition %s -> %s", step.Status, next))
	}
	step.Status = next
	return e.persist(ctx, c)
}

func (e *Executor) persist(ctx context.Context, c *Context) error {
	c.UpdatedAt = e.now().UTC()
	return e.store.Save(ctx, c)
}

// dispatch publishes the single externally-observable action for a step.
func (e *Executor) dispatch(ctx context.Context, c *Context, step *Step) error {
	switch step.Kind {
	case enums.StepKindPaymentSplit:
		return e.sink.Publish(ctx, enums.EventPaymentSplitRequested, buildPaymentSplit(c))
	case enums.StepKindNotification:
		split, err := splitForStep(c, step)
		if err != nil {
			return err
		}
		return e.sink.Publish(ctx, enums.EventVendorOrderNotification, events.VendorOrderNotificationEvent{
			OrderID:           c.OrderID,
			VendorID:          split.VendorID,
			ItemCount:         len(split.Items),
			SubtotalCents:     split.SubtotalCents,
			EstimatedDelivery: split.EstimatedDelivery,
		})
	case enums.StepKindInventoryAllocation:
		split, err := splitForStep(c, step)
		if err != nil {
			return err
		}
		items := make([]events.AllocationItem, 0, len(split.Items))
		for _, item := range split.Items {
			items = append(items, events.AllocationItem{ProductID: item.ProductID, Qty: item.Qty})
		}
		return e.sink.Publish(ctx, enums.EventVendorInventoryAllocation, events.VendorInventoryAllocationEvent{
			OrderID:           c.OrderID,
			VendorID:          split.VendorID,
			Items:             items,
			FulfillmentCenter: split.FulfillmentCenter,
		})
	case enums.StepKindFulfillmentRequest:
		split, err := splitForStep(c, step)
		if err != nil {
			return err
		}
		return e.sink.Publish(ctx, enums.EventVendorFulfillmentRequested, events.VendorFulfillmentRequestedEvent{
			OrderID:           c.OrderID,
			VendorID:          split.VendorID,
			Priority:          c.Options.Priority,
			EstimatedDelivery: split.EstimatedDelivery,
		})
	case enums.StepKindShippingCoordination:
		shipments := make([]events.ShipmentData, 0, len(c.Splits))
		for _, split := range c.Splits {
			shipments = append(shipments, events.ShipmentData{
				VendorID:          split.VendorID,
				ShippingCents:     split.ShippingCents,
				EstimatedDelivery: split.EstimatedDelivery,
			})
		}
		return e.sink.Publish(ctx, enums.EventMultiVendorShippingRequested, events.MultiVendorShippingRequestedEvent{
			OrderID:      c.OrderID,
			Consolidated: c.Options.ConsolidatedShipping,
			Shipments:    shipments,
		})
	case enums.StepKindCustomerNotification:
		estimates := make([]events.VendorDeliveryEstimate, 0, len(c.Splits))
		for _, split := range c.Splits {
			estimates = append(estimates, events.VendorDeliveryEstimate{
				VendorID:          split.VendorID,
				EstimatedDelivery: split.EstimatedDelivery,
			})
		}
		return e.sink.Publish(ctx, enums.EventCustomerMultiVendorOrderNotice, events.CustomerMultiVendorOrderNoticeEvent{
			OrderID:           c.OrderID,
			CustomerID:        c.CustomerID,
			VendorCount:       len(c.Splits),
			TotalCents:        c.TotalCents,
			DeliveryEstimates: estimates,
			EstimatedDelivery: latestDelivery(c.Splits),
		})
	default:
		return pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("unknown step kind %q", step.Kind))
	}
}

func buildPaymentSplit(c *Context) events.PaymentSplitRequestedEvent {
	settlements := make([]events.VendorSettlementData, 0, len(c.Splits))
	for _, split := range c.Splits {
		settlements = append(settlements, events.VendorSettlementData{
			VendorID:        split.VendorID,
			SubtotalCents:   split.SubtotalCents,
			ShippingCents:   split.ShippingCents,
			TaxCents:        split.TaxCents,
			CommissionCents: split.CommissionCents,
			BonusCents:      split.BonusCents,
			TotalCents:      split.TotalCents,
			PayoutCents:     split.PayoutCents,
		})
	}
	return events.PaymentSplitRequestedEvent{
		OrderID:     c.OrderID,
		Currency:    c.Currency,
		TotalCents:  c.TotalCents,
		Settlements: settlements,
	}
}

func splitForStep(c *Context, step *Step) (*splitter.VendorSplit, error) {
	if step.VendorID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal,
			fmt.Sprintf("step %s is missing its vendor", step.Kind))
	}
	for i := range c.Splits {
		if c.Splits[i].VendorID == *step.VendorID {
			return &c.Splits[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeInternal,
		fmt.Sprintf("no split for vendor %s", step.VendorID))
}

func latestDelivery(splits []splitter.VendorSplit) time.Time {
	var latest time.Time
	for _, split := range splits {
		if split.EstimatedDelivery.After(latest) {
			latest = split.EstimatedDelivery
		}
	}
	return latest
}
