package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/openmarket-labs/vendorflow-backend/pkg/enums"
)

// Order is the already-priced customer purchase coordination fans out.
// Rows are written upstream; this service only reads them.
type Order struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CustomerID    uuid.UUID      `gorm:"column:customer_id;type:uuid;not null" json:"customer_id"`
	Currency      enums.Currency `gorm:"column:currency;type:text;not null;default:'USD'" json:"currency"`
	SubtotalCents int            `gorm:"column:subtotal_cents;not null" json:"subtotal_cents"`
	TotalCents    int            `gorm:"column:total_cents;not null" json:"total_cents"`
	Items         []OrderItem    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
