package service

import (
	"context"
	"fmt"
	"time"

	"go-commerce-ledger/internal/model"
	"go-commerce-ledger/internal/notify"
	"go-commerce-ledger/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RestockService runs the pending -> {approved, rejected} workflow.
// The terminal transition happens exactly once: it is a conditional update
// guarded by the pending status, so a second process attempt can never
// credit inventory twice.
type RestockService interface {
	CreateRequest(ctx context.Context, req *CreateRestockRequest, actorID string) (*model.RestockRequest, error)
	ProcessRequest(ctx context.Context, requestID uuid.UUID, decision, adminNote, actorID string) (*model.RestockRequest, error)
	GetRequest(id uuid.UUID) (*model.RestockRequest, error)
	GetRequests(outletID *uuid.UUID, status *model.RestockStatus) ([]model.RestockRequest, error)
}

type CreateRestockRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"uuid_required"`
	OutletID  uuid.UUID `json:"outlet_id" validate:"uuid_required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

type restockService struct {
	restockRepo repository.RestockRepository
	productRepo repository.ProductRepository
	inventory   InventoryService
	db          *gorm.DB
	notifier    notify.Notifier
	autoApprove bool
}

func NewRestockService(
	restockRepo repository.RestockRepository,
	productRepo repository.ProductRepository,
	inventory InventoryService,
	db *gorm.DB,
	notifier notify.Notifier,
	autoApprove bool,
) RestockService {
	return &restockService{
		restockRepo: restockRepo,
		productRepo: productRepo,
		inventory:   inventory,
		db:          db,
		notifier:    notifier,
		autoApprove: autoApprove,
	}
}

func (s *restockService) CreateRequest(ctx context.Context, req *CreateRestockRequest, actorID string) (*model.RestockRequest, error) {
	// 1. Validate input
	if err := validateInput(req); err != nil {
		return nil, err
	}

	// 2. Product must exist and belong to the requesting outlet
	product, err := s.productRepo.FindByID(req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("%w: product", ErrNotFound)
	}
	if product.OutletID != req.OutletID {
		return nil, fmt.Errorf("%w: product belongs to another outlet", ErrUnauthorized)
	}

	// 3. File the request with a quantity snapshot
	request := &model.RestockRequest{
		ProductID:         req.ProductID,
		OutletID:          req.OutletID,
		RequestedQuantity: req.Quantity,
		QuantityAtRequest: product.AvailableQuantity,
		Status:            model.RestockPending,
	}
	request.CreatedBy = actorID
	request.UpdatedBy = actorID

	if err := s.restockRepo.Create(request); err != nil {
		return nil, err
	}

	// 4. Auto-approval is an explicit configuration choice; admin review is
	// the default.
	if s.autoApprove {
		return s.ProcessRequest(ctx, request.ID, string(model.RestockApproved), "auto-approved", actorID)
	}

	return request, nil
}

func (s *restockService) ProcessRequest(ctx context.Context, requestID uuid.UUID, decision, adminNote, actorID string) (*model.RestockRequest, error) {
	// 1. Decision must be a terminal status
	var target model.RestockStatus
	switch decision {
	case string(model.RestockApproved):
		target = model.RestockApproved
	case string(model.RestockRejected):
		target = model.RestockRejected
	default:
		return nil, ErrInvalidDecision
	}

	request, err := s.restockRepo.FindByID(requestID)
	if err != nil {
		return nil, fmt.Errorf("%w: restock request", ErrNotFound)
	}

	// 2. Terminal transition and inventory credit apply as one unit.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		ok, err := s.restockRepo.MarkProcessed(tx, requestID, target, adminNote, actorID, time.Now())
		if err != nil {
			return err
		}
		if !ok {
			// The request exists (loaded above), so the guard failed on
			// status: it was already processed.
			return ErrAlreadyProcessed
		}

		if target == model.RestockApproved {
			released, err := s.productRepo.Release(tx, request.ProductID, request.RequestedQuantity)
			if err != nil {
				return err
			}
			if !released {
				return fmt.Errorf("%w: product", ErrNotFound)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, notify.OutletChannel(request.OutletID),
		notify.NewEnvelope(notify.EventRestockProcessed, notify.RestockProcessedPayload{
			RequestID: requestID,
			ProductID: request.ProductID,
			Decision:  string(target),
			Quantity:  request.RequestedQuantity,
		}))

	return s.restockRepo.FindByID(requestID)
}

func (s *restockService) GetRequest(id uuid.UUID) (*model.RestockRequest, error) {
	request, err := s.restockRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: restock request", ErrNotFound)
	}
	return request, nil
}

func (s *restockService) GetRequests(outletID *uuid.UUID, status *model.RestockStatus) ([]model.RestockRequest, error) {
	return s.restockRepo.FindAll(outletID, status)
}
