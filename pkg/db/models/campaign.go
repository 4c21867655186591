package models

import (
	"time"

	"github.com/google/uuid"
)

// Campaign is a time-bounded promotional adjustment to commission rates.
// FactorBps multiplies the base rate (8000 = ×0.80); BonusBps is added to
// the vendor bonus rate for the campaign window.
type Campaign struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	FactorBps int       `gorm:"column:factor_bps;not null;default:10000" json:"factor_bps"`
	BonusBps  int       `gorm:"column:bonus_bps;not null;default:0" json:"bonus_bps"`
	StartsAt  time.Time `gorm:"column:starts_at;not null" json:"starts_at"`
	EndsAt    time.Time `gorm:"column:ends_at;not null" json:"ends_at"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// ActiveAt reports whether the campaign window covers the given instant.
func (c Campaign) ActiveAt(at time.Time) bool {
	return !at.Before(c.StartsAt) && at.Before(c.EndsAt)
}
