package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreditStatus string

const (
	CreditPending       CreditStatus = "pending"
	CreditPartiallyPaid CreditStatus = "partially_paid"
	CreditPaid          CreditStatus = "paid"
	// CreditOverdue is never stored. It is a read-time overlay for any
	// non-paid transaction past its due date (see EffectiveStatus).
	CreditOverdue CreditStatus = "overdue"
)

// CreditTransaction is one ledger entry: a fixed principal, a running
// remaining balance, and an ordered list of payments. The invariant
// remaining == amount - sum(payments) holds at all times; remaining is only
// mutated through the conditional decrement in CreditRepository.
type CreditTransaction struct {
	BaseModel
	UserID   uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id" validate:"uuid_required"`
	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty" validate:"-"`
	OutletID uuid.UUID `gorm:"type:uuid;not null;index" json:"outlet_id" validate:"uuid_required"`
	Outlet   *Outlet   `gorm:"foreignKey:OutletID" json:"outlet,omitempty" validate:"-"`
	OrderID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"order_id" validate:"uuid_required"`
	Order    *Order    `gorm:"foreignKey:OrderID" json:"order,omitempty" validate:"-"`

	// Amount is the original principal, fixed at creation.
	Amount decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount" validate:"decimal_gt0"`
	// RemainingAmount starts equal to Amount and is monotonically
	// non-increasing.
	RemainingAmount decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"remaining_amount"`

	DueDate time.Time    `gorm:"not null" json:"due_date" validate:"required"`
	Status  CreditStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Notes   string       `gorm:"type:text" json:"notes,omitempty"`

	Payments []CreditPayment `gorm:"foreignKey:CreditTransactionID" json:"payments,omitempty"`
}

// CreditPayment is one recorded installment against a credit transaction.
type CreditPayment struct {
	BaseModel
	CreditTransactionID uuid.UUID       `gorm:"type:uuid;not null;index" json:"credit_transaction_id"`
	Amount              decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount" validate:"decimal_gt0"`
	Method              string          `gorm:"type:varchar(20);not null" json:"method" validate:"required,oneof=CASH GATEWAY"`
	ExternalRef         string          `gorm:"type:varchar(255)" json:"external_ref,omitempty"`
	PaidAt              time.Time       `gorm:"not null" json:"paid_at"`
}

// StoredStatus recomputes the persisted status from the remaining balance.
// Overdue never appears here.
func (c *CreditTransaction) StoredStatus() CreditStatus {
	switch {
	case c.RemainingAmount.IsZero():
		return CreditPaid
	case c.RemainingAmount.LessThan(c.Amount):
		return CreditPartiallyPaid
	default:
		return CreditPending
	}
}

// EffectiveStatus is the view-time classification: any non-paid transaction
// past its due date reports overdue regardless of partial-payment progress.
func (c *CreditTransaction) EffectiveStatus(now time.Time) CreditStatus {
	stored := c.StoredStatus()
	if stored != CreditPaid && now.After(c.DueDate) {
		return CreditOverdue
	}
	return stored
}

// PaidTotal sums the recorded payments.
func (c *CreditTransaction) PaidTotal() decimal.Decimal {
	total := decimal.Zero
	for _, p := range c.Payments {
		total = total.Add(p.Amount)
	}
	return total
}
