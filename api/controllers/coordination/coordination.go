package coordination

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/openmarket-labs/vendorflow-backend/api/responses"
	"github.com/openmarket-labs/vendorflow-backend/api/validators"
	"github.com/openmarket-labs/vendorflow-backend/internal/orchestration"
	pkgerrors "github.com/openmarket-labs/vendorflow-backend/pkg/errors"
	"github.com/openmarket-labs/vendorflow-backend/pkg/logger"
)

// Service is the slice of the orchestration service the controllers need.
type Service interface {
	Orchestrate(ctx context.Context, orderID uuid.UUID, opts orchestration.Options) (*orchestration.Context, error)
	Status(ctx context.Context, orderID uuid.UUID) (*orchestration.Snapshot, error)
}

type startCoordinationRequest struct {
	Priority             string `json:"priority" validate:"omitempty,oneof=standard express"`
	ConsolidatedShipping bool   `json:"consolidated_shipping"`
}

// Start kicks off a coordination run for the order in the URL.
// Re-submitting an already coordinated order returns the existing run unchanged.
func Start(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coordination service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload startCoordinationRequest
		if r.Body != nil && r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil && !errors.Is(err, io.EOF) {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		opts := orchestration.Options{
			Priority:             priorityOrDefault(payload.Priority),
			ConsolidatedShipping: payload.ConsolidatedShipping,
		}

		runCtx, err := svc.Orchestrate(r.Context(), orderID, opts)
		if err != nil {
			if appErr := pkgerrors.As(err); appErr != nil && appErr.Code() == pkgerrors.CodeConflict && runCtx != nil {
				responses.WriteSuccess(w, runCtx)
				return
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, runCtx)
	}
}

// Status reports coordination progress for the order in the URL.
func Status(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coordination service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := svc.Status(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	orderID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return orderID, nil
}

func priorityOrDefault(raw string) string {
	p := strings.ToLower(strings.TrimSpace(raw))
	if p == "" {
		return "standard"
	}
	return p
}
