package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/openmarket-labs/vendorflow-backend/pkg/enums"
)

// OrderItem captures the snapshot of one line within an order. Each item
// belongs to exactly one vendor.
type OrderItem struct {
	ID             uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID        uuid.UUID             `gorm:"column:order_id;type:uuid;not null" json:"order_id"`
	ProductID      uuid.UUID             `gorm:"column:product_id;type:uuid;not null" json:"product_id"`
	VendorID       uuid.UUID             `gorm:"column:vendor_id;type:uuid;not null" json:"vendor_id"`
	Name           string                `gorm:"column:name;not null" json:"name"`
	Category       enums.ProductCategory `gorm:"column:category;type:text;not null;default:'other'" json:"category"`
	Qty            int                   `gorm:"column:qty;not null" json:"qty"`
	UnitPriceCents int                   `gorm:"column:unit_price_cents;not null" json:"unit_price_cents"`
	WeightGrams    int                   `gorm:"column:weight_grams;not null;default:0" json:"weight_grams"`
	LengthMM       int                   `gorm:"column:length_mm;not null;default:0" json:"length_mm"`
	WidthMM        int                   `gorm:"column:width_mm;not null;default:0" json:"width_mm"`
	HeightMM       int                   `gorm:"column:height_mm;not null;default:0" json:"height_mm"`
	CreatedAt      time.Time             `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time             `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
