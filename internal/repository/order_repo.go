package repository

import (
	"time"

	"go-commerce-ledger/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(tx *gorm.DB, order *model.Order) error
	FindByID(id uuid.UUID) (*model.Order, error)
	FindAll(buyerID, outletID *uuid.UUID) ([]model.Order, error)

	// UpdateStatusIf moves the order status in a single conditional statement
	// guarded by the expected current status. Returns false when the order
	// was concurrently moved (or does not exist).
	UpdateStatusIf(tx *gorm.DB, id uuid.UUID, from, to model.OrderStatus, updatedBy string) (bool, error)
	SetCreditStatus(tx *gorm.DB, id uuid.UUID, creditStatus model.CreditStatus) error

	// Reporting rollups (read-only)
	SalesByDay(startDate, endDate time.Time) ([]SalesByDayData, error)
	GetDashboardStats() (*DashboardStats, error)
	GetFinancialSummary(startDate, endDate time.Time) (decimal.Decimal, decimal.Decimal, error)
}

// SalesByDayData for chart data
type SalesByDayData struct {
	Date    string          `json:"date"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// DashboardStats for overview stats
type DashboardStats struct {
	TotalOrders       int64           `json:"total_orders"`
	PendingOrders     int64           `json:"pending_orders"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	LowStockCount     int64           `json:"low_stock_count"`
	OutstandingCredit decimal.Decimal `json:"outstanding_credit"`
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db}
}

func (r *orderRepo) Create(tx *gorm.DB, order *model.Order) error {
	return tx.Create(order).Error
}

func (r *orderRepo) FindByID(id uuid.UUID) (*model.Order, error) {
	var order model.Order
	err := r.db.Preload("Items").Preload("Buyer").Preload("Outlet").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) FindAll(buyerID, outletID *uuid.UUID) ([]model.Order, error) {
	var orders []model.Order
	q := r.db.Preload("Items").Order("created_at DESC")
	if buyerID != nil {
		q = q.Where("buyer_id = ?", *buyerID)
	}
	if outletID != nil {
		q = q.Where("outlet_id = ?", *outletID)
	}
	err := q.Find(&orders).Error
	return orders, err
}

func (r *orderRepo) UpdateStatusIf(tx *gorm.DB, id uuid.UUID, from, to model.OrderStatus, updatedBy string) (bool, error) {
	res := tx.Model(&model.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_by": updatedBy,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *orderRepo) SetCreditStatus(tx *gorm.DB, id uuid.UUID, creditStatus model.CreditStatus) error {
	return tx.Model(&model.Order{}).
		Where("id = ?", id).
		Update("credit_status", string(creditStatus)).Error
}

func (r *orderRepo) SalesByDay(startDate, endDate time.Time) ([]SalesByDayData, error) {
	var results []SalesByDayData

	rows, err := r.db.Model(&model.Order{}).
		Select(`
			DATE(created_at) as date,
			COUNT(*) as orders,
			COALESCE(SUM(total_price), 0) as revenue
		`).
		Where("created_at BETWEEN ? AND ? AND status <> ?", startDate, endDate, model.OrderCancelled).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data SalesByDayData
		if err := rows.Scan(&data.Date, &data.Orders, &data.Revenue); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, nil
}

func (r *orderRepo) GetDashboardStats() (*DashboardStats, error) {
	var stats DashboardStats

	r.db.Model(&model.Order{}).Count(&stats.TotalOrders)
	r.db.Model(&model.Order{}).Where("status = ?", model.OrderPending).Count(&stats.PendingOrders)

	r.db.Model(&model.Order{}).
		Where("status <> ?", model.OrderCancelled).
		Select("COALESCE(SUM(total_price), 0)").
		Scan(&stats.TotalRevenue)

	r.db.Model(&model.Product{}).
		Where("available_quantity <= reorder_point").
		Count(&stats.LowStockCount)

	r.db.Model(&model.CreditTransaction{}).
		Where("status <> ?", model.CreditPaid).
		Select("COALESCE(SUM(remaining_amount), 0)").
		Scan(&stats.OutstandingCredit)

	return &stats, nil
}

func (r *orderRepo) GetFinancialSummary(startDate, endDate time.Time) (decimal.Decimal, decimal.Decimal, error) {
	var revenue decimal.Decimal
	var creditCollected decimal.Decimal

	err := r.db.Model(&model.Order{}).
		Where("status <> ? AND created_at BETWEEN ? AND ?", model.OrderCancelled, startDate, endDate).
		Select("COALESCE(SUM(total_price), 0)").
		Scan(&revenue).Error
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	err = r.db.Model(&model.CreditPayment{}).
		Where("paid_at BETWEEN ? AND ?", startDate, endDate).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&creditCollected).Error
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return revenue, creditCollected, nil
}
