package orchestration

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/openmarket-labs/vendorflow-backend/internal/splitter"
	"github.com/openmarket-labs/vendorflow-backend/pkg/enums"
)

// Plan turns vendor splits into the ordered step list, purely deterministic
// given the splits: one global payment-split step, three steps per vendor in
// split order, then the two global closing steps. Step count is always
// 1 + 3*len(splits) + 2.
func Plan(splits []splitter.VendorSplit) []Step {
	steps := make([]Step, 0, 3+3*len(splits))

	steps = append(steps, newStep(enums.StepKindPaymentSplit, "split payment across vendors", nil))

	for _, split := range splits {
		vendorID := split.VendorID
		steps = append(steps,
			newStep(enums.StepKindNotification, fmt.Sprintf("notify vendor %s", split.VendorName), &vendorID),
			newStep(enums.StepKindInventoryAllocation, fmt.Sprintf("allocate inventory for vendor %s", split.VendorName), &vendorID),
			newStep(enums.StepKindFulfillmentRequest, fmt.Sprintf("request fulfillment from vendor %s", split.VendorName), &vendorID),
		)
	}

	steps = append(steps,
		newStep(enums.StepKindShippingCoordination, "coordinate multi-vendor shipping", nil),
		newStep(enums.StepKindCustomerNotification, "notify customer", nil),
	)
	return steps
}

func newStep(kind enums.StepKind, name string, vendorID *uuid.UUID) Step {
	return Step{
		ID:       uuid.New(),
		Name:     name,
		Kind:     kind,
		VendorID: vendorID,
		Status:   enums.StepStatusPending,
	}
}
