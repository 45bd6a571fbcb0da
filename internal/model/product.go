package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product carries the inventory counter. AvailableQuantity is only ever
// mutated through conditional updates (see ProductRepository.Reserve/Release)
// and must never go negative.
type Product struct {
	BaseModel
	SKU  string `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku" validate:"required"`
	Name string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`

	AvailableQuantity int `gorm:"not null;default:0" json:"available_quantity" validate:"gte=0"`
	// ReorderPoint triggers a low-stock signal to the owning outlet when
	// available quantity falls to or below it after a reservation.
	ReorderPoint int `gorm:"not null;default:0" json:"reorder_point" validate:"gte=0"`

	Unit  string          `gorm:"type:varchar(20)" json:"unit"`
	Price decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"price"`

	OutletID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"outlet_id" validate:"uuid_required"`
	Outlet     *Outlet    `gorm:"foreignKey:OutletID" json:"outlet,omitempty" validate:"-"`
	CategoryID *uuid.UUID `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Category   *Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty" validate:"-"`
}

// BelowReorderPoint reports whether the counter is at or under the threshold.
func (p *Product) BelowReorderPoint() bool {
	return p.AvailableQuantity <= p.ReorderPoint
}
