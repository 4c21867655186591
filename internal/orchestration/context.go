package orchestration

import (
	"time"

	"github.com/google/uuid"

	"github.com/openmarket-labs/vendorflow-backend/internal/splitter"
	"github.com/openmarket-labs/vendorflow-backend/pkg/enums"
)

// Step is one atomic hand-off tracked with its own retry state. Owned by
// exactly one Context.
type Step struct {
	ID         uuid.UUID        `json:"id"`
	Name       string           `json:"name"`
	Kind       enums.StepKind   `json:"kind"`
	VendorID   *uuid.UUID       `json:"vendor_id,omitempty"`
	Status     enums.StepStatus `json:"status"`
	RetryCount int              `json:"retry_count"`
	LastError  string           `json:"last_error,omitempty"`
	StartedAt  *time.Time       `json:"started_at,omitempty"`
	FinishedAt *time.Time       `json:"finished_at,omitempty"`
}

// Options carries per-run caller choices.
type Options struct {
	Priority             string `json:"priority"`
	ConsolidatedShipping bool   `json:"consolidated_shipping"`
}

// Context is the persisted state of one coordination run. The splits are
// computed once at run start and never mutated; steps and statuses change as
// the executor advances.
type Context struct {
	OrderID    uuid.UUID                `json:"order_id"`
	CustomerID uuid.UUID                `json:"customer_id"`
	Currency   enums.Currency           `json:"currency"`
	TotalCents int                      `json:"total_cents"`
	Splits     []splitter.VendorSplit   `json:"splits"`
	Steps      []Step                   `json:"steps"`
	Status     enums.CoordinationStatus `json:"status"`
	Options    Options                  `json:"options"`
	CreatedAt  time.Time                `json:"created_at"`
	UpdatedAt  time.Time                `json:"updated_at"`
}

// CompletedSteps counts steps that reached completed.
func (c *Context) CompletedSteps() int {
	count := 0
	for _, step := range c.Steps {
		if step.Status == enums.StepStatusCompleted {
			count++
		}
	}
	return count
}

// ProgressPercent reports completion as a whole percentage.
func (c *Context) ProgressPercent() int {
	if len(c.Steps) == 0 {
		return 0
	}
	return c.CompletedSteps() * 100 / len(c.Steps)
}

// Snapshot is the caller-facing progress view of a run.
type Snapshot struct {
	OrderID         uuid.UUID                `json:"order_id"`
	Status          enums.CoordinationStatus `json:"status"`
	CompletedSteps  int                      `json:"completed_steps"`
	TotalSteps      int                      `json:"total_steps"`
	ProgressPercent int                      `json:"progress_percent"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

// Snapshot derives the progress view from the current context state.
func (c *Context) Snapshot() Snapshot {
	return Snapshot{
		OrderID:         c.OrderID,
		Status:          c.Status,
		CompletedSteps:  c.CompletedSteps(),
		TotalSteps:      len(c.Steps),
		ProgressPercent: c.ProgressPercent(),
		UpdatedAt:       c.UpdatedAt,
	}
}
