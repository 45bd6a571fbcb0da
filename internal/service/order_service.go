package service

import (
	"context"
	"fmt"
	"time"

	"go-commerce-ledger/internal/model"
	"go-commerce-ledger/internal/notify"
	"go-commerce-ledger/internal/repository"
	"go-commerce-ledger/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type OrderService interface {
	// PlaceOrder validates the request, reserves stock for every line item
	// (rolling back already-applied reservations on any failure), and
	// persists the order with purchase-time snapshots. Credit orders also
	// open a ledger entry; if that fails the whole order is compensated.
	PlaceOrder(ctx context.Context, req *PlaceOrderRequest, actorID string) (*model.Order, error)
	CancelOrder(ctx context.Context, orderID uuid.UUID, actorID string) (*model.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, next model.OrderStatus, actorID string) (*model.Order, error)
	GetOrder(id uuid.UUID) (*model.Order, error)
	GetOrders(buyerID, outletID *uuid.UUID) ([]model.Order, error)
}

type OrderLine struct {
	ProductID uuid.UUID `json:"product_id" validate:"uuid_required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

type PlaceOrderRequest struct {
	// BuyerID is nil for guest checkout; guest contact info is then required.
	BuyerID    *uuid.UUID `json:"buyer_id"`
	GuestName  string     `json:"guest_name"`
	GuestEmail string     `json:"guest_email"`
	GuestPhone string     `json:"guest_phone"`

	OutletID uuid.UUID   `json:"outlet_id" validate:"uuid_required"`
	Items    []OrderLine `json:"items" validate:"required,min=1,dive"`

	PaymentMethod string `json:"payment_method" validate:"required,oneof=CASH CREDIT GATEWAY"`
	PaymentRef    string `json:"payment_ref"`

	ShippingAddress string `json:"shipping_address" validate:"required"`
	ShippingCity    string `json:"shipping_city" validate:"required"`

	// CreditDueDate is required when payment method is CREDIT.
	CreditDueDate *time.Time `json:"credit_due_date"`
}

type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	inventory   InventoryService
	credit      CreditService
	db          *gorm.DB
	notifier    notify.Notifier
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	inventory InventoryService,
	credit CreditService,
	db *gorm.DB,
	notifier notify.Notifier,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		inventory:   inventory,
		credit:      credit,
		db:          db,
		notifier:    notifier,
	}
}

// appliedReservation is one completed saga step with enough state to undo it.
type appliedReservation struct {
	productID uuid.UUID
	quantity  int
}

func (s *orderService) PlaceOrder(ctx context.Context, req *PlaceOrderRequest, actorID string) (*model.Order, error) {
	// 1. Struct validation
	if err := validateInput(req); err != nil {
		return nil, err
	}

	// 2. Buyer identity or complete guest contact info
	if req.BuyerID == nil {
		if req.GuestName == "" || req.GuestEmail == "" || req.GuestPhone == "" {
			return nil, fmt.Errorf("%w: guest checkout requires name, email and phone", ErrValidation)
		}
	}
	if req.PaymentMethod == model.PaymentCredit {
		if req.BuyerID == nil {
			return nil, fmt.Errorf("%w: credit orders require a registered buyer", ErrValidation)
		}
		if req.CreditDueDate == nil {
			return nil, fmt.Errorf("%w: credit orders require a due date", ErrValidation)
		}
	}

	// 3. Reserve stock per line item, snapshotting name and price at
	// reservation time. On any failure, release prior reservations in
	// reverse order and surface the first error.
	var applied []appliedReservation
	rollback := func() {
		for i := len(applied) - 1; i >= 0; i-- {
			step := applied[i]
			if err := s.inventory.Release(ctx, step.productID, step.quantity); err != nil {
				logger.Get().Error("reservation rollback failed",
					zap.String("product_id", step.productID.String()),
					zap.Int("quantity", step.quantity),
					zap.Error(err))
			}
		}
	}

	items := make([]model.OrderItem, 0, len(req.Items))
	total := decimal.Zero
	for _, line := range req.Items {
		product, err := s.productRepo.FindByID(line.ProductID)
		if err != nil {
			rollback()
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, line.ProductID)
		}
		if product.OutletID != req.OutletID {
			rollback()
			return nil, fmt.Errorf("%w: product belongs to another outlet", ErrUnauthorized)
		}

		if err := s.inventory.Reserve(ctx, line.ProductID, line.Quantity); err != nil {
			rollback()
			return nil, err
		}
		applied = append(applied, appliedReservation{productID: line.ProductID, quantity: line.Quantity})

		item := model.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    line.Quantity,
		}
		total = total.Add(item.Subtotal())
		items = append(items, item)
	}

	// 4. Persist the order with the exact computed total.
	order := &model.Order{
		BuyerID:         req.BuyerID,
		GuestName:       req.GuestName,
		GuestEmail:      req.GuestEmail,
		GuestPhone:      req.GuestPhone,
		OutletID:        req.OutletID,
		Items:           items,
		TotalPrice:      total,
		Status:          model.OrderPending,
		PaymentMethod:   req.PaymentMethod,
		PaymentRef:      req.PaymentRef,
		ShippingAddress: req.ShippingAddress,
		ShippingCity:    req.ShippingCity,
	}
	order.CreatedBy = actorID
	order.UpdatedBy = actorID

	if err := s.orderRepo.Create(s.db, order); err != nil {
		rollback()
		return nil, err
	}

	// 5. Credit orders open a ledger entry. If opening fails, compensate the
	// whole order: release stock and mark it cancelled.
	if req.PaymentMethod == model.PaymentCredit {
		_, err := s.credit.Open(ctx, &OpenCreditRequest{
			UserID:   *req.BuyerID,
			OutletID: req.OutletID,
			OrderID:  order.ID,
			Amount:   total,
			DueDate:  *req.CreditDueDate,
		}, actorID)
		if err != nil {
			rollback()
			if _, cerr := s.orderRepo.UpdateStatusIf(s.db, order.ID, model.OrderPending, model.OrderCancelled, actorID); cerr != nil {
				logger.Get().Error("order compensation failed",
					zap.String("order_id", order.ID.String()), zap.Error(cerr))
			}
			return nil, err
		}
	}

	s.notifier.Publish(ctx, notify.ChannelOrders,
		notify.NewEnvelope(notify.EventOrderPlaced, notify.OrderStatusPayload{
			OrderID: order.ID,
			Status:  string(order.Status),
		}))

	return s.orderRepo.FindByID(order.ID)
}

func (s *orderService) CancelOrder(ctx context.Context, orderID uuid.UUID, actorID string) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: order", ErrNotFound)
	}

	if !order.CanTransitionTo(model.OrderCancelled) {
		return nil, fmt.Errorf("%w: order is %s", ErrAlreadyProcessed, order.Status)
	}

	// Conditional move guards against a concurrent status change.
	ok, err := s.orderRepo.UpdateStatusIf(s.db, orderID, order.Status, model.OrderCancelled, actorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPersistenceConflict
	}

	// Return reserved stock. Failures here are logged, not surfaced: the
	// cancellation itself is already committed.
	for _, item := range order.Items {
		if err := s.inventory.Release(ctx, item.ProductID, item.Quantity); err != nil {
			logger.Get().Error("stock release on cancel failed",
				zap.String("order_id", orderID.String()),
				zap.String("product_id", item.ProductID.String()),
				zap.Error(err))
		}
	}

	s.notifier.Publish(ctx, notify.ChannelOrders,
		notify.NewEnvelope(notify.EventOrderStatusChanged, notify.OrderStatusPayload{
			OrderID: orderID,
			Status:  string(model.OrderCancelled),
		}))

	return s.orderRepo.FindByID(orderID)
}

func (s *orderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, next model.OrderStatus, actorID string) (*model.Order, error) {
	if next == model.OrderCancelled {
		return s.CancelOrder(ctx, orderID, actorID)
	}

	// Bounded optimistic retry: re-read, validate the transition, then move
	// conditionally on the observed status.
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		order, err := s.orderRepo.FindByID(orderID)
		if err != nil {
			return nil, fmt.Errorf("%w: order", ErrNotFound)
		}

		if !order.CanTransitionTo(next) {
			return nil, fmt.Errorf("%w: cannot move %s order to %s", ErrValidation, order.Status, next)
		}

		ok, err := s.orderRepo.UpdateStatusIf(s.db, orderID, order.Status, next, actorID)
		if err != nil {
			return nil, err
		}
		if ok {
			s.notifier.Publish(ctx, notify.ChannelOrders,
				notify.NewEnvelope(notify.EventOrderStatusChanged, notify.OrderStatusPayload{
					OrderID: orderID,
					Status:  string(next),
				}))
			return s.orderRepo.FindByID(orderID)
		}
	}
	return nil, ErrPersistenceConflict
}

func (s *orderService) GetOrder(id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: order", ErrNotFound)
	}
	return order, nil
}

func (s *orderService) GetOrders(buyerID, outletID *uuid.UUID) ([]model.Order, error) {
	return s.orderRepo.FindAll(buyerID, outletID)
}
