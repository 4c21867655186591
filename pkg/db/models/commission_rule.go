package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/openmarket-labs/vendorflow-backend/pkg/enums"
)

// CommissionRule stores one rate override. A rule with a vendor binds that
// vendor directly; a rule with only a category is the per-category base rate.
type CommissionRule struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	VendorID  *uuid.UUID             `gorm:"column:vendor_id;type:uuid" json:"vendor_id,omitempty"`
	Category  *enums.ProductCategory `gorm:"column:category;type:text" json:"category,omitempty"`
	RateBps   int                    `gorm:"column:rate_bps;not null" json:"rate_bps"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time              `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
