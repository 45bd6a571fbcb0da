package repository

import (
	"time"

	"go-commerce-ledger/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreditRepository interface {
	Create(tx *gorm.DB, credit *model.CreditTransaction) error
	FindByID(id uuid.UUID) (*model.CreditTransaction, error)
	FindByOrderID(orderID uuid.UUID) (*model.CreditTransaction, error)
	FindByUserID(userID uuid.UUID) ([]model.CreditTransaction, error)
	FindOverdue(now time.Time) ([]model.CreditTransaction, error)

	// UpdateTerms writes the term columns only. The running balance moves
	// exclusively through ApplyPayment and the status through SetStatus, so
	// a stale in-memory copy can never clobber a concurrent payment.
	UpdateTerms(tx *gorm.DB, credit *model.CreditTransaction) error

	// OutstandingTotal recomputes the user's used credit as the sum of
	// remaining amounts over non-paid transactions. Never read a stored
	// counter for this.
	OutstandingTotal(userID uuid.UUID) (decimal.Decimal, error)

	// ApplyPayment decrements remaining_amount in a single conditional
	// statement guarded by remaining_amount >= amount. Returns false when
	// the guard fails (over-payment or concurrent payment race) or the
	// transaction does not exist.
	ApplyPayment(tx *gorm.DB, id uuid.UUID, amount decimal.Decimal) (bool, error)
	AppendPayment(tx *gorm.DB, payment *model.CreditPayment) error
	SetStatus(tx *gorm.DB, id uuid.UUID, status model.CreditStatus) error
}

type creditRepo struct {
	db *gorm.DB
}

func NewCreditRepo(db *gorm.DB) CreditRepository {
	return &creditRepo{db}
}

func (r *creditRepo) Create(tx *gorm.DB, credit *model.CreditTransaction) error {
	return tx.Create(credit).Error
}

func (r *creditRepo) FindByID(id uuid.UUID) (*model.CreditTransaction, error) {
	var credit model.CreditTransaction
	err := r.db.Preload("Payments", func(db *gorm.DB) *gorm.DB {
		return db.Order("paid_at ASC")
	}).Preload("User").Preload("Outlet").
		First(&credit, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &credit, nil
}

func (r *creditRepo) FindByOrderID(orderID uuid.UUID) (*model.CreditTransaction, error) {
	var credit model.CreditTransaction
	err := r.db.Preload("Payments").First(&credit, "order_id = ?", orderID).Error
	if err != nil {
		return nil, err
	}
	return &credit, nil
}

func (r *creditRepo) FindByUserID(userID uuid.UUID) ([]model.CreditTransaction, error) {
	var credits []model.CreditTransaction
	err := r.db.Preload("Payments").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&credits).Error
	return credits, err
}

func (r *creditRepo) FindOverdue(now time.Time) ([]model.CreditTransaction, error) {
	var credits []model.CreditTransaction
	err := r.db.Preload("Payments").Preload("User").
		Where("status <> ? AND due_date < ?", model.CreditPaid, now).
		Order("due_date ASC").
		Find(&credits).Error
	return credits, err
}

func (r *creditRepo) UpdateTerms(tx *gorm.DB, credit *model.CreditTransaction) error {
	return tx.Model(credit).
		Select("due_date", "notes", "updated_by").
		Updates(credit).Error
}

func (r *creditRepo) OutstandingTotal(userID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.Model(&model.CreditTransaction{}).
		Where("user_id = ? AND status <> ?", userID, model.CreditPaid).
		Select("COALESCE(SUM(remaining_amount), 0)").
		Scan(&total).Error
	return total, err
}

func (r *creditRepo) ApplyPayment(tx *gorm.DB, id uuid.UUID, amount decimal.Decimal) (bool, error) {
	res := tx.Model(&model.CreditTransaction{}).
		Where("id = ? AND remaining_amount >= ?", id, amount).
		Update("remaining_amount", gorm.Expr("remaining_amount - ?", amount))
	return res.RowsAffected > 0, res.Error
}

func (r *creditRepo) AppendPayment(tx *gorm.DB, payment *model.CreditPayment) error {
	return tx.Create(payment).Error
}

func (r *creditRepo) SetStatus(tx *gorm.DB, id uuid.UUID, status model.CreditStatus) error {
	return tx.Model(&model.CreditTransaction{}).
		Where("id = ?", id).
		Update("status", string(status)).Error
}
