package notify

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types published on the notification channel.
const (
	EventLowStock            = "LowStock"
	EventOrderPlaced         = "OrderPlaced"
	EventOrderStatusChanged  = "OrderStatusChanged"
	EventCreditOpened        = "CreditOpened"
	EventCreditStatusChanged = "CreditStatusChanged"
	EventRestockProcessed    = "RestockProcessed"
)

// Channel names. Outlet-scoped channels carry the outlet id suffix.
func OutletChannel(outletID uuid.UUID) string {
	return "outlet:" + outletID.String()
}

const ChannelOrders = "orders"
const ChannelCredit = "credit"

// Envelope wraps every published event.
type Envelope struct {
	EventType  string      `json:"event_type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

func NewEnvelope(eventType string, payload interface{}) Envelope {
	return Envelope{
		EventType:  eventType,
		OccurredAt: time.Now(),
		Payload:    payload,
	}
}

type LowStockPayload struct {
	ProductID    uuid.UUID `json:"product_id"`
	ProductName  string    `json:"product_name"`
	SKU          string    `json:"sku"`
	Quantity     int       `json:"quantity"`
	ReorderPoint int       `json:"reorder_point"`
}

type OrderStatusPayload struct {
	OrderID uuid.UUID `json:"order_id"`
	Status  string    `json:"status"`
}

type CreditStatusPayload struct {
	CreditID  uuid.UUID       `json:"credit_id"`
	OrderID   uuid.UUID       `json:"order_id"`
	Status    string          `json:"status"`
	Remaining decimal.Decimal `json:"remaining_amount"`
}

type RestockProcessedPayload struct {
	RequestID uuid.UUID `json:"request_id"`
	ProductID uuid.UUID `json:"product_id"`
	Decision  string    `json:"decision"`
	Quantity  int       `json:"quantity"`
}
