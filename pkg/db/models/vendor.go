package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/openmarket-labs/vendorflow-backend/pkg/enums"
)

// Vendor is one independent seller participating in the marketplace.
type Vendor struct {
	ID                  uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name                string           `gorm:"column:name;not null" json:"name"`
	Tier                enums.VendorTier `gorm:"column:tier;type:text;not null;default:'standard'" json:"tier"`
	FulfillmentCenter   *string          `gorm:"column:fulfillment_center" json:"fulfillment_center,omitempty"`
	TrailingVolumeCents int64            `gorm:"column:trailing_volume_cents;not null;default:0" json:"trailing_volume_cents"`
	Active              bool             `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt           time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
