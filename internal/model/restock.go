package model

import (
	"time"

	"github.com/google/uuid"
)

type RestockStatus string

const (
	RestockPending  RestockStatus = "pending"
	RestockApproved RestockStatus = "approved"
	RestockRejected RestockStatus = "rejected"
)

// RestockRequest asks for inventory to be credited to a product. The
// terminal state is set exactly once; re-processing must fail.
type RestockRequest struct {
	BaseModel
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id" validate:"uuid_required"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty" validate:"-"`
	OutletID  uuid.UUID `gorm:"type:uuid;not null;index" json:"outlet_id" validate:"uuid_required"`

	RequestedQuantity int `gorm:"not null" json:"requested_quantity" validate:"required,gt=0"`
	// Snapshot of the product's available quantity when the request was filed.
	QuantityAtRequest int `gorm:"not null" json:"quantity_at_request"`

	Status      RestockStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	AdminNote   string        `gorm:"type:text" json:"admin_note,omitempty"`
	ProcessedAt *time.Time    `json:"processed_at,omitempty"`
	ProcessedBy string        `gorm:"type:varchar(255)" json:"processed_by,omitempty"`
}

// Processed reports whether the request already reached a terminal state.
func (r *RestockRequest) Processed() bool {
	return r.Status != RestockPending
}
