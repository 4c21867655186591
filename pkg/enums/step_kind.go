package enums

import "fmt"

// StepKind identifies what a coordination step hands off downstream.
type StepKind string

const (
	StepKindPaymentSplit         StepKind = "payment-split"
	StepKindNotification         StepKind = "notification"
	StepKindInventoryAllocation  StepKind = "inventory-allocation"
	StepKindFulfillmentRequest   StepKind = "fulfillment-request"
	StepKindShippingCoordination StepKind = "shipping-coordination"
	StepKindCustomerNotification StepKind = "customer-notification"
)

var validStepKinds = []StepKind{
	StepKindPaymentSplit,
	StepKindNotification,
	StepKindInventoryAllocation,
	StepKindFulfillmentRequest,
	StepKindShippingCoordination,
	StepKindCustomerNotification,
}

// String implements fmt.Stringer.
func (s StepKind) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StepKind.
func (s StepKind) IsValid() bool {
	for _, candidate := range validStepKinds {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsVendorScoped reports whether the step is emitted once per vendor split.
func (s StepKind) IsVendorScoped() bool {
	switch s {
	case StepKindNotification, StepKindInventoryAllocation, StepKindFulfillmentRequest:
		return true
	default:
		return false
	}
}

// ParseStepKind converts raw input into a StepKind.
func ParseStepKind(value string) (StepKind, error) {
	for _, candidate := range validStepKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid step kind %q", value)
}
