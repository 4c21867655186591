package commission

import (
	"github.com/shopspring/decimal"

	"github.com/openmarket-labs/vendorflow-backend/pkg/enums"
)

// bps denominators expressed once so rate math stays in one place.
var (
	bpsDenominator = decimal.NewFromInt(10000)
	rateFloor      = decimal.Zero
	rateCeiling    = decimal.NewFromInt(1)
)

// VolumeTier reduces the base rate once trailing sales cross its threshold.
type VolumeTier struct {
	ThresholdCents int64
	DiscountBps    int
}

// Campaign is the time-bounded promotional adjustment in effect for a quote.
// FactorBps multiplies the base rate (8000 = x0.80); BonusBps adds to the
// vendor bonus rate.
type Campaign struct {
	FactorBps int
	BonusBps  int
}

// RateTable holds every input the rate lookup consults, already merged from
// stored rules and platform defaults.
type RateTable struct {
	DefaultBps        int
	CategoryBps       map[enums.ProductCategory]int
	VendorOverrideBps *int
	TierCapBps        map[enums.VendorTier]int
	VolumeTiers       []VolumeTier
}

// Quote is the effective commission rate pair for one vendor/category pairing.
type Quote struct {
	BaseRate  decimal.Decimal
	BonusRate decimal.Decimal
	// UsedFallback is set when an unknown tier or category forced the
	// platform default rate. Callers log it as a data-quality event.
	UsedFallback bool
}

// Rate resolves the effective commission rate for one item line.
//
// Lookup priority: explicit vendor override, then per-category base rate, then
// the platform default. The vendor tier cap is a ceiling on the resolved rate,
// never an addition. Volume discounts apply after the cap, campaign factor and
// bonus after that, and the final base rate is clamped to [0, 1].
func Rate(table RateTable, tier enums.VendorTier, category enums.ProductCategory, trailingVolumeCents int64, campaign *Campaign) Quote {
	quote := Quote{BonusRate: decimal.Zero}

	rateBps, usedFallback := resolveBaseBps(table, category)
	quote.UsedFallback = usedFallback

	if capBps, ok := table.TierCapBps[tier]; ok {
		if capBps < rateBps {
			rateBps = capBps
		}
	} else {
		// Unknown tier: fall back to the platform default, uncapped.
		rateBps = table.DefaultBps
		quote.UsedFallback = true
	}

	rateBps -= volumeDiscountBps(table.VolumeTiers, trailingVolumeCents)

	base := bpsToRate(rateBps)
	if campaign != nil {
		base = base.Mul(bpsToRate(campaign.FactorBps))
		quote.BonusRate = quote.BonusRate.Add(bpsToRate(campaign.BonusBps))
	}

	quote.BaseRate = clampRate(base)
	quote.BonusRate = clampRate(quote.BonusRate)
	return quote
}

// ItemCommissionCents computes the commission owed on one item line, rounding
// half away from zero to whole cents.
func ItemCommissionCents(unitPriceCents, qty int, rate decimal.Decimal) int {
	line := decimal.NewFromInt(int64(unitPriceCents) * int64(qty))
	return int(line.Mul(rate).Round(0).IntPart())
}

func resolveBaseBps(table RateTable, category enums.ProductCategory) (int, bool) {
	if table.VendorOverrideBps != nil {
		return *table.VendorOverrideBps, false
	}
	if !category.IsValid() {
		return table.DefaultBps, true
	}
	if bps, ok := table.CategoryBps[category]; ok {
		return bps, false
	}
	return table.DefaultBps, false
}

func volumeDiscountBps(tiers []VolumeTier, trailingVolumeCents int64) int {
	discount := 0
	for _, tier := range tiers {
		if trailingVolumeCents >= tier.ThresholdCents && tier.DiscountBps > discount {
			discount = tier.DiscountBps
		}
	}
	return discount
}

func bpsToRate(bps int) decimal.Decimal {
	return decimal.NewFromInt(int64(bps)).Div(bpsDenominator)
}

func clampRate(rate decimal.Decimal) decimal.Decimal {
	if rate.LessThan(rateFloor) {
		return rateFloor
	}
	if rate.GreaterThan(rateCeiling) {
		return rateCeiling
	}
	return rate
}
