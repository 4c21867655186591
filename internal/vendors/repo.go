package vendors

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openmarket-labs/vendorflow-backend/pkg/db/models"
)

// Repository exposes the vendor directory lookups coordination needs.
type Repository interface {
	FindVendors(ctx context.Context, ids []uuid.UUID) ([]models.Vendor, error)
	FindRules(ctx context.Context, vendorIDs []uuid.UUID) ([]models.CommissionRule, error)
	FindActiveCampaign(ctx context.Context, at time.Time) (*models.Campaign, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a vendors repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindVendors(ctx context.Context, ids []uuid.UUID) ([]models.Vendor, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var vendors []models.Vendor
	err := r.db.WithContext(ctx).
		Where("id IN ? AND active = ?", ids, true).
		Find(&vendors).Error
	if err != nil {
		return nil, err
	}
	return vendors, nil
}

// FindRules returns vendor-bound overrides plus category-wide base rates.
func (r *repository) FindRules(ctx context.Context, vendorIDs []uuid.UUID) ([]models.CommissionRule, error) {
	var rules []models.CommissionRule
	query := r.db.WithContext(ctx)
	if len(vendorIDs) > 0 {
		query = query.Where("vendor_id IN ? OR vendor_id IS NULL", vendorIDs)
	} else {
		query = query.Where("vendor_id IS NULL")
	}
	if err := query.Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// FindActiveCampaign returns the campaign covering the given instant, or nil.
// When windows overlap the most recently started campaign wins.
func (r *repository) FindActiveCampaign(ctx context.Context, at time.Time) (*models.Campaign, error) {
	var campaigns []models.Campaign
	err := r.db.WithContext(ctx).
		Where("starts_at <= ? AND ends_at > ?", at, at).
		Order("starts_at DESC").
		Limit(1).
		Find(&campaigns).Error
	if err != nil {
		return nil, err
	}
	if len(campaigns) == 0 {
		return nil, nil
	}
	return &campaigns[0], nil
}
