package vendors

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/openmarket-labs/vendorflow-backend/internal/commission"
	"github.com/openmarket-labs/vendorflow-backend/internal/splitter"
	"github.com/openmarket-labs/vendorflow-backend/pkg/config"
	"github.com/openmarket-labs/vendorflow-backend/pkg/enums"
	"github.com/openmarket-labs/vendorflow-backend/pkg/logger"
)

// Directory resolves vendor profiles, merged rate tables and the active
// campaign for a set of vendor identifiers.
type Directory struct {
	repo Repository
	cfg  config.CommissionConfig
	logg *logger.Logger
	now  func() time.Time
}

// DirectoryParams wires a Directory.
type DirectoryParams struct {
	Repository Repository
	Config     config.CommissionConfig
	Logger     *logger.Logger
}

// NewDirectory validates dependencies and builds a Directory.
func NewDirectory(params DirectoryParams) (*Directory, error) {
	if params.Repository == nil {
		return nil, errors.New("vendors repository is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	return &Directory{
		repo: params.Repository,
		cfg:  params.Config,
		logg: params.Logger,
		now:  time.Now,
	}, nil
}

// Resolve loads every referenced vendor and assembles the splitter's vendor
// contexts. Vendors missing from the directory are simply absent from the
// result; the splitter turns that into a split conflict.
func (d *Directory) Resolve(ctx context.Context, vendorIDs []uuid.UUID) (map[uuid.UUID]splitter.VendorContext, error) {
	vendors, err := d.repo.FindVendors(ctx, vendorIDs)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(vendors))
	for _, vendor := range vendors {
		ids = append(ids, vendor.ID)
	}
	rules, err := d.repo.FindRules(ctx, ids)
	if err != nil {
		return nil, err
	}

	campaignRow, err := d.repo.FindActiveCampaign(ctx, d.now().UTC())
	if err != nil {
		return nil, err
	}
	var campaign *commission.Campaign
	if campaignRow != nil {
		campaign = &commission.Campaign{
			FactorBps: campaignRow.FactorBps,
			BonusBps:  campaignRow.BonusBps,
		}
	}

	categoryBps := map[enums.ProductCategory]int{}
	overrides := map[uuid.UUID]int{}
	for _, rule := range rules {
		switch {
		case rule.VendorID != nil:
			overrides[*rule.VendorID] = rule.RateBps
		case rule.Category != nil:
			categoryBps[*rule.Category] = rule.RateBps
		}
	}

	tierCaps := map[enums.VendorTier]int{
		enums.VendorTierStandard: d.cfg.TierCapStandardBps,
		enums.VendorTierSilver:   d.cfg.TierCapSilverBps,
		enums.VendorTierGold:     d.cfg.TierCapGoldBps,
		enums.VendorTierPlatinum: d.cfg.TierCapPlatinumBps,
	}
	volumeTiers := []commission.VolumeTier{
		{ThresholdCents: d.cfg.VolumeTier1ThresholdCents, DiscountBps: d.cfg.VolumeTier1DiscountBps},
		{ThresholdCents: d.cfg.VolumeTier2ThresholdCents, DiscountBps: d.cfg.VolumeTier2DiscountBps},
	}

	result := make(map[uuid.UUID]splitter.VendorContext, len(vendors))
	for _, vendor := range vendors {
		table := commission.RateTable{
			DefaultBps:  d.cfg.DefaultRateBps,
			CategoryBps: categoryBps,
			TierCapBps:  tierCaps,
			VolumeTiers: volumeTiers,
		}
		if bps, ok := overrides[vendor.ID]; ok {
			override := bps
			table.VendorOverrideBps = &override
		}
		result[vendor.ID] = splitter.VendorContext{
			Vendor:    vendor,
			RateTable: table,
			Campaign:  campaign,
		}
	}
	return result, nil
}
