package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// Payment method tags recorded on orders and credit payments.
const (
	PaymentCash    = "CASH"
	PaymentCredit  = "CREDIT"
	PaymentGateway = "GATEWAY" // verified against the external payment service
)

// Order is immutable once delivered or cancelled, except for administrative
// correction. Line items snapshot product name and price at reservation time
// so historical orders survive later catalog edits.
type Order struct {
	BaseModel
	// BuyerID is nil for guest checkout; the embedded contact snapshot is
	// then required instead.
	BuyerID *uuid.UUID `gorm:"type:uuid;index" json:"buyer_id,omitempty"`
	Buyer   *User      `gorm:"foreignKey:BuyerID" json:"buyer,omitempty" validate:"-"`

	GuestName  string `gorm:"type:varchar(255)" json:"guest_name,omitempty"`
	GuestEmail string `gorm:"type:varchar(255)" json:"guest_email,omitempty"`
	GuestPhone string `gorm:"type:varchar(20)" json:"guest_phone,omitempty"`

	OutletID uuid.UUID `gorm:"type:uuid;not null;index" json:"outlet_id" validate:"uuid_required"`
	Outlet   *Outlet   `gorm:"foreignKey:OutletID" json:"outlet,omitempty" validate:"-"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items" validate:"required,min=1,dive"`

	// TotalPrice always equals the exact sum of item price*quantity.
	TotalPrice decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_price"`

	Status        OrderStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	PaymentMethod string      `gorm:"type:varchar(20);not null" json:"payment_method" validate:"required,oneof=CASH CREDIT GATEWAY"`
	PaymentRef    string      `gorm:"type:varchar(255)" json:"payment_ref,omitempty"`

	// CreditStatus mirrors the linked credit transaction's stored status for
	// credit orders; empty otherwise.
	CreditStatus string `gorm:"type:varchar(20)" json:"credit_status,omitempty"`

	ShippingAddress string `gorm:"type:text;not null" json:"shipping_address" validate:"required"`
	ShippingCity    string `gorm:"type:varchar(100);not null" json:"shipping_city" validate:"required"`
}

// OrderItem is a purchase-time snapshot of a product line.
type OrderItem struct {
	BaseModel
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id" validate:"uuid_required"`

	ProductName string          `gorm:"type:varchar(255);not null" json:"product_name"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"unit_price"`
	Quantity    int             `gorm:"not null" json:"quantity" validate:"required,gt=0"`
}

// Subtotal returns price * quantity for the line.
func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// orderTransitions lists the allowed forward moves of the fulfillment
// lifecycle. Cancellation is handled separately: allowed from any
// pre-delivered, non-cancelled state.
var orderTransitions = map[OrderStatus]OrderStatus{
	OrderPending:    OrderProcessing,
	OrderProcessing: OrderShipped,
	OrderShipped:    OrderDelivered,
}

// CanTransitionTo reports whether the fulfillment move is legal.
func (o *Order) CanTransitionTo(next OrderStatus) bool {
	if next == OrderCancelled {
		return o.Status != OrderDelivered && o.Status != OrderCancelled
	}
	return orderTransitions[o.Status] == next
}

// Terminal reports whether the order can no longer be mutated normally.
func (o *Order) Terminal() bool {
	return o.Status == OrderDelivered || o.Status == OrderCancelled
}
