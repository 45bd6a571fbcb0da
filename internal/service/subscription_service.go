package service

import (
	"errors"
	"fmt"
	"time"

	"go-commerce-ledger/internal/model"
	"go-commerce-ledger/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrInvalidDateRange = errors.New("end date must not be before start date")

const dateLayout = "2006-01-02"

type SubscriptionService interface {
	Create(req *CreateSubscriptionRequest, actorID string) (*model.SubscriptionResponse, error)
	Update(id uuid.UUID, req *UpdateSubscriptionRequest, actorID string) (*model.SubscriptionResponse, error)
	Cancel(id uuid.UUID, actorID string) (*model.SubscriptionResponse, error)
	Get(id uuid.UUID) (*model.SubscriptionResponse, error)
	GetByUser(userID uuid.UUID) ([]model.SubscriptionResponse, error)
	GetExpiring(within time.Duration) ([]model.SubscriptionResponse, error)
}

type CreateSubscriptionRequest struct {
	UserID    uuid.UUID       `json:"user_id" validate:"uuid_required"`
	PlanCode  string          `json:"plan_code" validate:"required"`
	Price     decimal.Decimal `json:"price" validate:"decimal_gt0"`
	StartDate string          `json:"start_date" validate:"required"` // YYYY-MM-DD
	EndDate   string          `json:"end_date" validate:"required"`   // YYYY-MM-DD
	AutoRenew bool            `json:"auto_renew"`
	Note      string          `json:"note"`
}

type UpdateSubscriptionRequest struct {
	EndDate   *string `json:"end_date"` // YYYY-MM-DD
	AutoRenew *bool   `json:"auto_renew"`
	Note      *string `json:"note"`
}

type subscriptionService struct {
	subRepo  repository.SubscriptionRepository
	userRepo repository.UserRepository
}

func NewSubscriptionService(subRepo repository.SubscriptionRepository, userRepo repository.UserRepository) SubscriptionService {
	return &subscriptionService{subRepo: subRepo, userRepo: userRepo}
}

func (s *subscriptionService) Create(req *CreateSubscriptionRequest, actorID string) (*model.SubscriptionResponse, error) {
	// 1. Validate input
	if err := validateInput(req); err != nil {
		return nil, err
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid start date format (use YYYY-MM-DD)", ErrValidation)
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid end date format (use YYYY-MM-DD)", ErrValidation)
	}
	if end.Before(start) {
		return nil, ErrInvalidDateRange
	}

	// 2. Subscriber must exist
	if _, err := s.userRepo.FindByID(req.UserID); err != nil {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}

	sub := &model.Subscription{
		UserID:    req.UserID,
		PlanCode:  req.PlanCode,
		Price:     req.Price,
		StartDate: start,
		EndDate:   end,
		IsActive:  true,
		AutoRenew: req.AutoRenew,
		Note:      req.Note,
	}
	sub.CreatedBy = actorID
	sub.UpdatedBy = actorID

	if err := s.subRepo.Create(sub); err != nil {
		return nil, err
	}

	resp := sub.ToResponse()
	return &resp, nil
}

func (s *subscriptionService) Update(id uuid.UUID, req *UpdateSubscriptionRequest, actorID string) (*model.SubscriptionResponse, error) {
	sub, err := s.subRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: subscription", ErrNotFound)
	}

	if req.EndDate != nil {
		end, err := time.Parse(dateLayout, *req.EndDate)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid end date format (use YYYY-MM-DD)", ErrValidation)
		}
		if end.Before(sub.StartDate) {
			return nil, ErrInvalidDateRange
		}
		sub.EndDate = end
	}
	if req.AutoRenew != nil {
		sub.AutoRenew = *req.AutoRenew
	}
	if req.Note != nil {
		sub.Note = *req.Note
	}
	sub.UpdatedBy = actorID

	if err := s.subRepo.Update(sub); err != nil {
		return nil, err
	}
	resp := sub.ToResponse()
	return &resp, nil
}

func (s *subscriptionService) Cancel(id uuid.UUID, actorID string) (*model.SubscriptionResponse, error) {
	sub, err := s.subRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: subscription", ErrNotFound)
	}
	if !sub.IsActive {
		return nil, fmt.Errorf("%w: subscription is already cancelled", ErrAlreadyProcessed)
	}

	sub.IsActive = false
	sub.AutoRenew = false
	sub.UpdatedBy = actorID
	if err := s.subRepo.Update(sub); err != nil {
		return nil, err
	}
	resp := sub.ToResponse()
	return &resp, nil
}

func (s *subscriptionService) Get(id uuid.UUID) (*model.SubscriptionResponse, error) {
	sub, err := s.subRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: subscription", ErrNotFound)
	}
	resp := sub.ToResponse()
	return &resp, nil
}

func (s *subscriptionService) GetByUser(userID uuid.UUID) ([]model.SubscriptionResponse, error) {
	subs, err := s.subRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}
	responses := make([]model.SubscriptionResponse, len(subs))
	for i := range subs {
		responses[i] = subs[i].ToResponse()
	}
	return responses, nil
}

func (s *subscriptionService) GetExpiring(within time.Duration) ([]model.SubscriptionResponse, error) {
	now := time.Now()
	subs, err := s.subRepo.FindExpiring(now, now.Add(within))
	if err != nil {
		return nil, err
	}
	responses := make([]model.SubscriptionResponse, len(subs))
	for i := range subs {
		responses[i] = subs[i].ToResponse()
	}
	return responses, nil
}
