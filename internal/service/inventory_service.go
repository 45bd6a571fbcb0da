package service

import (
	"context"
	"errors"
	"fmt"

	"go-commerce-ledger/internal/metrics"
	"go-commerce-ledger/internal/model"
	"go-commerce-ledger/internal/notify"
	"go-commerce-ledger/internal/repository"
	"go-commerce-ledger/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InventoryService owns the available-quantity counter. All mutations go
// through conditional single-statement updates so the counter can never go
// negative, even under concurrent reservations.
type InventoryService interface {
	CreateProduct(req *model.Product, actorID string) error
	UpdateProduct(id uuid.UUID, req *model.Product, actorID string) (*model.Product, error)
	GetProducts(outletID *uuid.UUID) ([]model.Product, error)
	GetProduct(id uuid.UUID) (*model.Product, error)

	// Reserve decrements stock for one product. Returns ErrInsufficientStock
	// when the guard fails and ErrNotFound when the product does not exist.
	Reserve(ctx context.Context, productID uuid.UUID, quantity int) error
	// Release credits stock back (restock approval, order cancellation).
	Release(ctx context.Context, productID uuid.UUID, quantity int) error
}

type inventoryService struct {
	productRepo repository.ProductRepository
	db          *gorm.DB
	notifier    notify.Notifier
}

func NewInventoryService(productRepo repository.ProductRepository, db *gorm.DB, notifier notify.Notifier) InventoryService {
	return &inventoryService{
		productRepo: productRepo,
		db:          db,
		notifier:    notifier,
	}
}

func (s *inventoryService) CreateProduct(req *model.Product, actorID string) error {
	// 1. Validate struct
	if err := validateInput(req); err != nil {
		return err
	}

	// 2. Check SKU duplication
	existing, _ := s.productRepo.FindBySKU(req.SKU)
	if existing != nil && existing.ID != uuid.Nil {
		return fmt.Errorf("%w: SKU already exists", ErrValidation)
	}

	// 3. Set audit fields
	req.CreatedBy = actorID
	req.UpdatedBy = actorID

	return s.productRepo.Create(req)
}

func (s *inventoryService) UpdateProduct(id uuid.UUID, req *model.Product, actorID string) (*model.Product, error) {
	existing, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: product", ErrNotFound)
	}

	// Quantity is not updatable here. Stock only moves through Reserve and
	// Release so the counter invariant stays enforceable.
	existing.Name = req.Name
	existing.SKU = req.SKU
	existing.Unit = req.Unit
	existing.Price = req.Price
	existing.ReorderPoint = req.ReorderPoint
	existing.CategoryID = req.CategoryID
	existing.UpdatedBy = actorID

	if err := s.productRepo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *inventoryService) GetProducts(outletID *uuid.UUID) ([]model.Product, error) {
	return s.productRepo.FindAll(outletID)
}

func (s *inventoryService) GetProduct(id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: product", ErrNotFound)
	}
	return product, nil
}

func (s *inventoryService) Reserve(ctx context.Context, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}

	// 1. Single conditional decrement: available_quantity >= quantity.
	ok, err := s.productRepo.Reserve(s.db, productID, quantity)
	if err != nil {
		return err
	}
	if !ok {
		// 2. Distinguish missing product from insufficient stock.
		if _, ferr := s.productRepo.FindByID(productID); ferr != nil {
			if errors.Is(ferr, gorm.ErrRecordNotFound) {
				metrics.RecordReservation("not_found")
				return fmt.Errorf("%w: product", ErrNotFound)
			}
			return ferr
		}
		metrics.RecordReservation("insufficient")
		return ErrInsufficientStock
	}
	metrics.RecordReservation("ok")

	// 3. Low-stock signal: fire-and-forget, never rolls back the reservation.
	s.signalLowStock(ctx, productID)

	return nil
}

func (s *inventoryService) Release(ctx context.Context, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}

	ok, err := s.productRepo.Release(s.db, productID, quantity)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: product", ErrNotFound)
	}
	return nil
}

// signalLowStock publishes a low-stock event to the owning outlet when the
// post-reservation quantity is at or below the reorder point.
func (s *inventoryService) signalLowStock(ctx context.Context, productID uuid.UUID) {
	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		logger.Get().Warn("low-stock check failed",
			zap.String("product_id", productID.String()), zap.Error(err))
		return
	}
	if !product.BelowReorderPoint() {
		return
	}

	if count, err := s.productRepo.CountBelowReorderPoint(); err == nil && metrics.LowStockProducts != nil {
		metrics.LowStockProducts.Set(float64(count))
	}

	s.notifier.Publish(ctx, notify.OutletChannel(product.OutletID),
		notify.NewEnvelope(notify.EventLowStock, notify.LowStockPayload{
			ProductID:    product.ID,
			ProductName:  product.Name,
			SKU:          product.SKU,
			Quantity:     product.AvailableQuantity,
			ReorderPoint: product.ReorderPoint,
		}))
}
