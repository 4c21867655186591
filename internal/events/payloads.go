package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/openmarket-labs/vendorflow-backend/pkg/enums"
)

// Envelope is the stable wrapper around every published payload.
type Envelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

// VendorSettlementData carries one vendor's computed money figures.
type VendorSettlementData struct {
	VendorID        uuid.UUID `json:"vendor_id"`
	SubtotalCents   int       `json:"subtotal_cents"`
	ShippingCents   int       `json:"shipping_cents"`
	TaxCents        int       `json:"tax_cents"`
	CommissionCents int       `json:"commission_cents"`
	BonusCents      int       `json:"bonus_cents"`
	TotalCents      int       `json:"total_cents"`
	PayoutCents     int       `json:"payout_cents"`
}

// PaymentSplitRequestedEvent asks the payment processor to split one charge
// into per-vendor settlements.
type PaymentSplitRequestedEvent struct {
	OrderID     uuid.UUID              `json:"order_id"`
	Currency    enums.Currency         `json:"currency"`
	TotalCents  int                    `json:"total_cents"`
	Settlements []VendorSettlementData `json:"settlements"`
}

// VendorOrderNotificationEvent tells one vendor a multi-vendor order includes
// their items.
type VendorOrderNotificationEvent struct {
	OrderID           uuid.UUID `json:"order_id"`
	VendorID          uuid.UUID `json:"vendor_id"`
	ItemCount         int       `json:"item_count"`
	SubtotalCents     int       `json:"subtotal_cents"`
	EstimatedDelivery time.Time `json:"estimated_delivery"`
}

// AllocationItem names one product line a vendor must reserve stock for.
type AllocationItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Qty       int       `json:"qty"`
}

// VendorInventoryAllocationEvent asks a vendor's warehouse to reserve stock.
type VendorInventoryAllocationEvent struct {
	OrderID           uuid.UUID        `json:"order_id"`
	VendorID          uuid.UUID        `json:"vendor_id"`
	Items             []AllocationItem `json:"items"`
	FulfillmentCenter *string          `json:"fulfillment_center,omitempty"`
}

// VendorFulfillmentRequestedEvent asks a vendor to pick, pack and hand the
// parcel to the carrier.
type VendorFulfillmentRequestedEvent struct {
	OrderID           uuid.UUID `json:"order_id"`
	VendorID          uuid.UUID `json:"vendor_id"`
	Priority          string    `json:"priority"`
	EstimatedDelivery time.Time `json:"estimated_delivery"`
}

// ShipmentData describes one vendor's parcel within a coordinated shipment.
type ShipmentData struct {
	VendorID          uuid.UUID `json:"vendor_id"`
	ShippingCents     int       `json:"shipping_cents"`
	EstimatedDelivery time.Time `json:"estimated_delivery"`
}

// MultiVendorShippingRequestedEvent asks the shipping service to coordinate
// parcels across every vendor in the order.
type MultiVendorShippingRequestedEvent struct {
	OrderID      uuid.UUID      `json:"order_id"`
	Consolidated bool           `json:"consolidated"`
	Shipments    []ShipmentData `json:"shipments"`
}

// VendorDeliveryEstimate is one vendor's expected delivery date within the
// customer notice.
type VendorDeliveryEstimate struct {
	VendorID          uuid.UUID `json:"vendor_id"`
	EstimatedDelivery time.Time `json:"estimated_delivery"`
}

// CustomerMultiVendorOrderNoticeEvent tells the customer their order fanned out
// to several vendors, each parcel's expected arrival, and when the slowest
// parcel should land.
type CustomerMultiVendorOrderNoticeEvent struct {
	OrderID           uuid.UUID                `json:"order_id"`
	CustomerID        uuid.UUID                `json:"customer_id"`
	VendorCount       int                      `json:"vendor_count"`
	TotalCents        int                      `json:"total_cents"`
	DeliveryEstimates []VendorDeliveryEstimate `json:"delivery_estimates"`
	EstimatedDelivery time.Time                `json:"estimated_delivery"`
}
