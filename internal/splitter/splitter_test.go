package splitter

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmarket-labs/vendorflow-backend/internal/commission"
	"github.com/openmarket-labs/vendorflow-backend/pkg/config"
	"github.com/openmarket-labs/vendorflow-backend/pkg/db/models"
	"github.com/openmarket-labs/vendorflow-backend/pkg/enums"
	pkgerrors "github.com/openmarket-labs/vendorflow-backend/pkg/errors"
	"github.com/openmarket-labs/vendorflow-backend/pkg/logger"
)

func testSettlement() config.SettlementConfig {
	return config.SettlementConfig{
		TaxRateBps:                 800,
		ShippingBaseCents:          500,
		ShippingPerKgCents:         150,
		FreeShippingThresholdCents: 100_000,
		LeadTimeWithHub:            72 * time.Hour,
		LeadTimeDefault:            120 * time.Hour,
		ReconcileToleranceCents:    1,
	}
}

func testRateTable() commission.RateTable {
	return commission.RateTable{
		DefaultBps: 1000,
		TierCapBps: map[enums.VendorTier]int{
			enums.VendorTierStandard: 2000,
			enums.VendorTierSilver:   1500,
			enums.VendorTierGold:     1200,
			enums.VendorTierPlatinum: 800,
		},
	}
}

func newTestSplitter(t *testing.T) *Splitter {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "splitter-test", Output: io.Discard})
	s, err := New(testSettlement(), logg)
	require.NoError(t, err)
	return s
}

func vendorCtx(id uuid.UUID, name string, hub *string) VendorContext {
	return VendorContext{
		Vendor: models.Vendor{
			ID:   id,
			Name: name,
			Tier: enums.VendorTierStandard,

			FulfillmentCenter: hub,
		},
		RateTable: testRateTable(),
	}
}

func item(vendorID uuid.UUID, qty, unitPriceCents, weightGrams int) models.OrderItem {
	return models.OrderItem{
		ID:             uuid.New(),
		ProductID:      uuid.New(),
		VendorID:       vendorID,
		Name:           "widget",
		Category:       enums.ProductCategoryHome,
		Qty:            qty,
		UnitPriceCents: unitPriceCents,
		WeightGrams:    weightGrams,
	}
}

func TestSplitGroupsByVendorFirstAppearance(t *testing.T) {
	s := newTestSplitter(t)
	v1 := uuid.New()
	v2 := uuid.New()
	order := models.Order{
		ID:            uuid.New(),
		CustomerID:    uuid.New(),
		SubtotalCents: 3000,
		Items: []models.OrderItem{
			item(v2, 1, 1000, 500),
			item(v1, 1, 1500, 200),
			item(v2, 1, 500, 100),
		},
	}
	vendors := map[uuid.UUID]VendorContext{
		v1: vendorCtx(v1, "alpha", nil),
		v2: vendorCtx(v2, "beta", nil),
	}

	splits, err := s.Split(context.Background(), order, vendors)
	require.NoError(t, err)
	require.Len(t, splits, 2)

	assert.Equal(t, v2, splits[0].VendorID, "first-appearance vendor must come first")
	assert.Equal(t, v1, splits[1].VendorID)
	assert.Len(t, splits[0].Items, 2)
	assert.Len(t, splits[1].Items, 1)
}

func TestSplitMoneyInvariants(t *testing.T) {
	s := newTestSplitter(t)
	v1 := uuid.New()
	hub := "hub-west"
	order := models.Order{
		ID:            uuid.New(),
		CustomerID:    uuid.New(),
		SubtotalCents: 1000,
		Items:         []models.OrderItem{item(v1, 2, 500, 1200)},
	}
	vendors := map[uuid.UUID]VendorContext{v1: vendorCtx(v1, "alpha", &hub)}

	splits, err := s.Split(context.Background(), order, vendors)
	require.NoError(t, err)
	require.Len(t, splits, 1)

	split := splits[0]
	assert.Equal(t, 1000, split.SubtotalCents)
	// 2 items x 1200g = 2.4kg, billed as 3kg: 500 + 3*150.
	assert.Equal(t, 950, split.ShippingCents)
	// 8% of 1000.
	assert.Equal(t, 80, split.TaxCents)
	// 10% of 1000.
	assert.Equal(t, 100, split.CommissionCents)
	assert.Equal(t, split.SubtotalCents+split.ShippingCents+split.TaxCents, split.TotalCents)
	assert.Equal(t, split.TotalCents-split.CommissionCents, split.PayoutCents)
	assert.GreaterOrEqual(t, split.CommissionCents, 0)
	assert.LessOrEqual(t, split.CommissionCents, split.TotalCents)
}

func TestSplitFreeShippingAndLeadTimes(t *testing.T) {
	s := newTestSplitter(t)
	v1 := uuid.New()
	v2 := uuid.New()
	hub := "hub-east"
	order := models.Order{
		ID:            uuid.New(),
		CustomerID:    uuid.New(),
		SubtotalCents: 101_000,
		Items: []models.OrderItem{
			item(v1, 1, 100_000, 3000),
			item(v2, 1, 1000, 100),
		},
	}
	vendors := map[uuid.UUID]VendorContext{
		v1: vendorCtx(v1, "alpha", &hub),
		v2: vendorCtx(v2, "beta", nil),
	}

	before := time.Now().UTC()
	splits, err := s.Split(context.Background(), order, vendors)
	require.NoError(t, err)
	require.Len(t, splits, 2)

	assert.Zero(t, splits[0].ShippingCents, "subtotal over threshold ships free")
	assert.NotZero(t, splits[1].ShippingCents)

	hubDelivery := splits[0].EstimatedDelivery
	defaultDelivery := splits[1].EstimatedDelivery
	assert.True(t, hubDelivery.Before(defaultDelivery), "hub vendors deliver sooner")
	assert.True(t, hubDelivery.After(before.Add(71*time.Hour)))
	assert.True(t, defaultDelivery.After(before.Add(119*time.Hour)))
}

func TestSplitUnknownVendorFails(t *testing.T) {
	s := newTestSplitter(t)
	v1 := uuid.New()
	order := models.Order{
		ID:            uuid.New(),
		SubtotalCents: 500,
		Items:         []models.OrderItem{item(v1, 1, 500, 100)},
	}

	_, err := s.Split(context.Background(), order, map[uuid.UUID]VendorContext{})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeSplitConflict, appErr.Code())
}

func TestSplitSubtotalDriftFails(t *testing.T) {
	s := newTestSplitter(t)
	v1 := uuid.New()
	order := models.Order{
		ID:            uuid.New(),
		SubtotalCents: 9999,
		Items:         []models.OrderItem{item(v1, 1, 500, 100)},
	}
	vendors := map[uuid.UUID]VendorContext{v1: vendorCtx(v1, "alpha", nil)}

	_, err := s.Split(context.Background(), order, vendors)
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeSplitConflict, appErr.Code())
}

func TestSplitWithinToleranceSucceeds(t *testing.T) {
	s := newTestSplitter(t)
	v1 := uuid.New()
	order := models.Order{
		ID:            uuid.New(),
		SubtotalCents: 501,
		Items:         []models.OrderItem{item(v1, 1, 500, 100)},
	}
	vendors := map[uuid.UUID]VendorContext{v1: vendorCtx(v1, "alpha", nil)}

	_, err := s.Split(context.Background(), order, vendors)
	require.NoError(t, err)
}

func TestSplitCarriesCampaignBonus(t *testing.T) {
	s := newTestSplitter(t)
	v1 := uuid.New()
	order := models.Order{
		ID:            uuid.New(),
		SubtotalCents: 10_000,
		Items:         []models.OrderItem{item(v1, 1, 10_000, 100)},
	}
	vc := vendorCtx(v1, "alpha", nil)
	vc.Campaign = &commission.Campaign{FactorBps: 10_000, BonusBps: 200}
	vendors := map[uuid.UUID]VendorContext{v1: vc}

	splits, err := s.Split(context.Background(), order, vendors)
	require.NoError(t, err)
	require.Len(t, splits, 1)

	// bonus = subtotal x 2%, paid alongside commission so the payout
	// identity is untouched
	assert.Equal(t, 200, splits[0].BonusCents)
	assert.Equal(t, splits[0].TotalCents-splits[0].CommissionCents, splits[0].PayoutCents)
}

func TestSplitBonusZeroWithoutCampaign(t *testing.T) {
	s := newTestSplitter(t)
	v1 := uuid.New()
	order := models.Order{
		ID:            uuid.New(),
		SubtotalCents: 500,
		Items:         []models.OrderItem{item(v1, 1, 500, 100)},
	}
	vendors := map[uuid.UUID]VendorContext{v1: vendorCtx(v1, "alpha", nil)}

	splits, err := s.Split(context.Background(), order, vendors)
	require.NoError(t, err)
	require.Len(t, splits, 1)
	assert.Zero(t, splits[0].BonusCents)
}

func TestSplitEmptyOrderRejected(t *testing.T) {
	s := newTestSplitter(t)
	_, err := s.Split(context.Background(), models.Order{ID: uuid.New()}, nil)
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}
