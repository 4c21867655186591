package splitter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/openmarket-labs/vendorflow-backend/internal/commission"
	"github.com/openmarket-labs/vendorflow-backend/pkg/config"
	"github.com/openmarket-labs/vendorflow-backend/pkg/db/models"
	"github.com/openmarket-labs/vendorflow-backend/pkg/enums"
	pkgerrors "github.com/openmarket-labs/vendorflow-backend/pkg/errors"
	"github.com/openmarket-labs/vendorflow-backend/pkg/logger"
)

// SplitItem is one order line assigned to a vendor slice, with its computed
// commission.
type SplitItem struct {
	ProductID       uuid.UUID             `json:"product_id"`
	Name            string                `json:"name"`
	Category        enums.ProductCategory `json:"category"`
	Qty             int                   `json:"qty"`
	UnitPriceCents  int                   `json:"unit_price_cents"`
	WeightGrams     int                   `json:"weight_grams"`
	CommissionCents int                   `json:"commission_cents"`
}

// VendorSplit is one vendor's slice of a multi-vendor order plus the full
// financial breakdown. Splits are computed once at coordination start and
// never mutated afterward.
type VendorSplit struct {
	VendorID          uuid.UUID   `json:"vendor_id"`
	VendorName        string      `json:"vendor_name"`
	FulfillmentCenter *string     `json:"fulfillment_center,omitempty"`
	Items             []SplitItem `json:"items"`
	SubtotalCents     int         `json:"subtotal_cents"`
	ShippingCents     int         `json:"shipping_cents"`
	TaxCents          int         `json:"tax_cents"`
	CommissionCents   int         `json:"commission_cents"`
	BonusCents        int         `json:"bonus_cents"`
	TotalCents        int         `json:"total_cents"`
	PayoutCents       int         `json:"payout_cents"`
	EstimatedDelivery time.Time   `json:"estimated_delivery"`
}

// VendorContext is everything the splitter needs to know about one vendor.
type VendorContext struct {
	Vendor    models.Vendor
	RateTable commission.RateTable
	Campaign  *commission.Campaign
}

// Splitter turns a priced order into per-vendor settlement splits.
type Splitter struct {
	cfg  config.SettlementConfig
	logg *logger.Logger
	now  func() time.Time
}

// New validates dependencies and builds a Splitter.
func New(cfg config.SettlementConfig, logg *logger.Logger) (*Splitter, error) {
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	if cfg.ReconcileToleranceCents < 0 {
		return nil, errors.New("reconcile tolerance must be non-negative")
	}
	return &Splitter{cfg: cfg, logg: logg, now: time.Now}, nil
}

// Split groups the order's items by vendor in first-appearance order and
// computes each vendor's settlement. It fails with a split conflict when an
// item references a vendor missing from the directory or when the summed
// subtotals drift from the order's stored subtotal beyond the tolerance.
func (s *Splitter) Split(ctx context.Context, order models.Order, vendors map[uuid.UUID]VendorContext) ([]VendorSplit, error) {
	if len(order.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order has no items")
	}

	var unknown error
	groups := map[uuid.UUID][]models.OrderItem{}
	vendorOrder := []uuid.UUID{}
	for _, item := range order.Items {
		if _, ok := vendors[item.VendorID]; !ok {
			unknown = multierr.Append(unknown, fmt.Errorf("item %s references unknown vendor %s", item.ProductID, item.VendorID))
			continue
		}
		if _, seen := groups[item.VendorID]; !seen {
			vendorOrder = append(vendorOrder, item.VendorID)
		}
		groups[item.VendorID] = append(groups[item.VendorID], item)
	}
	if unknown != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeSplitConflict, unknown, "order references vendors missing from the directory")
	}

	now := s.now().UTC()
	splits := make([]VendorSplit, 0, len(vendorOrder))
	subtotalSum := 0
	for _, vendorID := range vendorOrder {
		vc := vendors[vendorID]
		split := s.buildSplit(ctx, order, vc, groups[vendorID], now)
		subtotalSum += split.SubtotalCents
		splits = append(splits, split)
	}

	drift := subtotalSum - order.SubtotalCents
	if drift < 0 {
		drift = -drift
	}
	if drift > s.cfg.ReconcileToleranceCents {
		return nil, pkgerrors.New(pkgerrors.CodeSplitConflict,
			fmt.Sprintf("split subtotals (%d) drift from order subtotal (%d) beyond tolerance", subtotalSum, order.SubtotalCents))
	}

	return splits, nil
}

func (s *Splitter) buildSplit(ctx context.Context, order models.Order, vc VendorContext, items []models.OrderItem, now time.Time) VendorSplit {
	split := VendorSplit{
		VendorID:          vc.Vendor.ID,
		VendorName:        vc.Vendor.Name,
		FulfillmentCenter: vc.Vendor.FulfillmentCenter,
		Items:             make([]SplitItem, 0, len(items)),
	}

	weightGrams := 0
	for _, item := range items {
		quote := commission.Rate(vc.RateTable, vc.Vendor.Tier, item.Category, vc.Vendor.TrailingVolumeCents, vc.Campaign)
		if quote.UsedFallback {
			fields := map[string]any{
				"order_id":  order.ID.String(),
				"vendor_id": vc.Vendor.ID.String(),
				"category":  item.Category,
				"tier":      vc.Vendor.Tier,
			}
			s.logg.Warn(s.logg.WithFields(ctx, fields), "commission rate fell back to platform default")
		}

		itemCommission := commission.ItemCommissionCents(item.UnitPriceCents, item.Qty, quote.BaseRate)
		split.Items = append(split.Items, SplitItem{
			ProductID:       item.ProductID,
			Name:            item.Name,
			Category:        item.Category,
			Qty:             item.Qty,
			UnitPriceCents:  item.UnitPriceCents,
			WeightGrams:     item.WeightGrams,
			CommissionCents: itemCommission,
		})
		split.SubtotalCents += item.UnitPriceCents * item.Qty
		split.CommissionCents += itemCommission
		split.BonusCents += commission.ItemCommissionCents(item.UnitPriceCents, item.Qty, quote.BonusRate)
		weightGrams += item.WeightGrams * item.Qty
	}

	split.ShippingCents = s.shippingCents(split.SubtotalCents, weightGrams)
	split.TaxCents = s.taxCents(split.SubtotalCents)
	split.TotalCents = split.SubtotalCents + split.ShippingCents + split.TaxCents
	split.PayoutCents = split.TotalCents - split.CommissionCents
	split.EstimatedDelivery = now.Add(s.leadTime(vc.Vendor.FulfillmentCenter))
	return split
}

func (s *Splitter) shippingCents(subtotalCents, weightGrams int) int {
	if subtotalCents >= s.cfg.FreeShippingThresholdCents {
		return 0
	}
	kg := (weightGrams + 999) / 1000
	return s.cfg.ShippingBaseCents + kg*s.cfg.ShippingPerKgCents
}

func (s *Splitter) taxCents(subtotalCents int) int {
	rate := decimal.NewFromInt(int64(s.cfg.TaxRateBps)).Div(decimal.NewFromInt(10000))
	return int(decimal.NewFromInt(int64(subtotalCents)).Mul(rate).Round(0).IntPart())
}

func (s *Splitter) leadTime(fulfillmentCenter *string) time.Duration {
	if fulfillmentCenter != nil && *fulfillmentCenter != "" {
		return s.cfg.LeadTimeWithHub
	}
	return s.cfg.LeadTimeDefault
}
