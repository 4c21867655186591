package enums

import "fmt"

// EventType names the hand-off messages published to downstream collaborators.
type EventType string

const (
	EventPaymentSplitRequested          EventType = "PAYMENT_SPLIT_REQUESTED"
	EventVendorOrderNotification        EventType = "VENDOR_ORDER_NOTIFICATION"
	EventVendorInventoryAllocation      EventType = "VENDOR_INVENTORY_ALLOCATION_REQUESTED"
	EventVendorFulfillmentRequested     EventType = "VENDOR_FULFILLMENT_REQUESTED"
	EventMultiVendorShippingRequested   EventType = "MULTI_VENDOR_SHIPPING_COORDINATION_REQUESTED"
	EventCustomerMultiVendorOrderNotice EventType = "CUSTOMER_MULTI_VENDOR_ORDER_NOTIFICATION"
)

var validEventTypes = []EventType{
	EventPaymentSplitRequested,
	EventVendorOrderNotification,
	EventVendorInventoryAllocation,
	EventVendorFulfillmentRequested,
	EventMultiVendorShippingRequested,
	EventCustomerMultiVendorOrderNotice,
}

// String implements fmt.Stringer.
func (e EventType) String() string {
	return string(e)
}

// IsValid reports whether the value is a known EventType.
func (e EventType) IsValid() bool {
	for _, candidate := range validEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseEventType converts raw input into an EventType.
func ParseEventType(value string) (EventType, error) {
	for _, candidate := range validEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
