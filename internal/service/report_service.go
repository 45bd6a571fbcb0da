package service

import (
	"time"

	"go-commerce-ledger/internal/repository"

	"github.com/shopspring/decimal"
)

// ReportService provides read-only rollups for dashboards. It consumes the
// ledger and order data but holds no invariants of its own.
type ReportService interface {
	GetSalesByDay(days int) ([]repository.SalesByDayData, error)
	GetDashboardStats() (*repository.DashboardStats, error)
	GetFinancialSummary(startDate, endDate time.Time) (*FinancialSummary, error)
}

type FinancialSummary struct {
	Revenue         decimal.Decimal `json:"revenue"`
	CreditCollected decimal.Decimal `json:"credit_collected"`
}

type reportService struct {
	orderRepo repository.OrderRepository
}

func NewReportService(orderRepo repository.OrderRepository) ReportService {
	return &reportService{orderRepo: orderRepo}
}

func (s *reportService) GetSalesByDay(days int) ([]repository.SalesByDayData, error) {
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)

	return s.orderRepo.SalesByDay(startDate, endDate)
}

func (s *reportService) GetDashboardStats() (*repository.DashboardStats, error) {
	return s.orderRepo.GetDashboardStats()
}

func (s *reportService) GetFinancialSummary(startDate, endDate time.Time) (*FinancialSummary, error) {
	revenue, collected, err := s.orderRepo.GetFinancialSummary(startDate, endDate)
	if err != nil {
		return nil, err
	}
	return &FinancialSummary{Revenue: revenue, CreditCollected: collected}, nil
}
