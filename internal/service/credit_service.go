package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-commerce-ledger/internal/metrics"
	"go-commerce-ledger/internal/model"
	"go-commerce-ledger/internal/notify"
	"go-commerce-ledger/internal/payment"
	"go-commerce-ledger/internal/repository"
	"go-commerce-ledger/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreditService maintains the per-transaction ledger invariant
// remaining == amount - sum(payments). The remaining balance only moves
// through the conditional decrement in the repository, so concurrent
// payments can never overdraw it.
type CreditService interface {
	Open(ctx context.Context, req *OpenCreditRequest, actorID string) (*CreditResponse, error)
	RecordPayment(ctx context.Context, req *RecordPaymentRequest, actorID string) (*CreditResponse, error)
	UpdateTerms(ctx context.Context, creditID uuid.UUID, req *UpdateTermsRequest, actorID string) (*CreditResponse, error)
	GetCredit(id uuid.UUID) (*CreditResponse, error)
	GetCreditsByUser(userID uuid.UUID) ([]CreditResponse, error)
	GetOverdueCredits() ([]CreditResponse, error)
}

type OpenCreditRequest struct {
	UserID   uuid.UUID       `json:"user_id" validate:"uuid_required"`
	OutletID uuid.UUID       `json:"outlet_id" validate:"uuid_required"`
	OrderID  uuid.UUID       `json:"order_id" validate:"uuid_required"`
	Amount   decimal.Decimal `json:"amount" validate:"decimal_gt0"`
	DueDate  time.Time       `json:"due_date" validate:"required"`
	Notes    string          `json:"notes"`
}

type RecordPaymentRequest struct {
	CreditID    uuid.UUID       `json:"credit_id" validate:"uuid_required"`
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method" validate:"required,oneof=CASH GATEWAY"`
	ExternalRef string          `json:"external_ref"`
}

type UpdateTermsRequest struct {
	DueDate *time.Time          `json:"due_date"`
	Notes   *string             `json:"notes"`
	Status  *model.CreditStatus `json:"status"`
}

// CreditResponse reports the effective (view-time) status alongside the
// stored transaction: non-paid entries past due date show as overdue.
type CreditResponse struct {
	model.CreditTransaction
	EffectiveStatus model.CreditStatus `json:"effective_status"`
}

func toCreditResponse(c *model.CreditTransaction, now time.Time) *CreditResponse {
	return &CreditResponse{
		CreditTransaction: *c,
		EffectiveStatus:   c.EffectiveStatus(now),
	}
}

type creditService struct {
	creditRepo repository.CreditRepository
	orderRepo  repository.OrderRepository
	userRepo   repository.UserRepository
	verifier   payment.Verifier
	db         *gorm.DB
	notifier   notify.Notifier
	now        func() time.Time
}

func NewCreditService(
	creditRepo repository.CreditRepository,
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	verifier payment.Verifier,
	db *gorm.DB,
	notifier notify.Notifier,
) CreditService {
	return &creditService{
		creditRepo: creditRepo,
		orderRepo:  orderRepo,
		userRepo:   userRepo,
		verifier:   verifier,
		db:         db,
		notifier:   notifier,
		now:        time.Now,
	}
}

func (s *creditService) Open(ctx context.Context, req *OpenCreditRequest, actorID string) (*CreditResponse, error) {
	// 1. Validate input
	if err := validateInput(req); err != nil {
		metrics.RecordCreditOperation("open", "validation_failed")
		return nil, err
	}

	// 2. Resolve debtor and order
	user, err := s.userRepo.FindByID(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}
	order, err := s.orderRepo.FindByID(req.OrderID)
	if err != nil {
		return nil, fmt.Errorf("%w: order", ErrNotFound)
	}
	if order.BuyerID == nil || *order.BuyerID != user.ID {
		return nil, fmt.Errorf("%w: order does not belong to user", ErrUnauthorized)
	}

	// 3. Credit limit check against the recomputed outstanding sum, never a
	// stored counter.
	outstanding, err := s.creditRepo.OutstandingTotal(user.ID)
	if err != nil {
		return nil, err
	}
	if outstanding.Add(req.Amount).GreaterThan(user.CreditLimit) {
		metrics.RecordCreditOperation("open", "limit_exceeded")
		return nil, fmt.Errorf("%w: outstanding %s + %s over limit %s",
			ErrCreditLimitExceeded, outstanding, req.Amount, user.CreditLimit)
	}

	// 4. Persist the ledger entry and mirror the status onto the order.
	credit := &model.CreditTransaction{
		UserID:          req.UserID,
		OutletID:        req.OutletID,
		OrderID:         req.OrderID,
		Amount:          req.Amount,
		RemainingAmount: req.Amount,
		DueDate:         req.DueDate,
		Status:          model.CreditPending,
		Notes:           req.Notes,
	}
	credit.CreatedBy = actorID
	credit.UpdatedBy = actorID

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.creditRepo.Create(tx, credit); err != nil {
			return err
		}
		return s.orderRepo.SetCreditStatus(tx, req.OrderID, model.CreditPending)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordCreditOperation("open", "ok")
	s.notifier.Publish(ctx, notify.ChannelCredit,
		notify.NewEnvelope(notify.EventCreditOpened, notify.CreditStatusPayload{
			CreditID:  credit.ID,
			OrderID:   credit.OrderID,
			Status:    string(credit.Status),
			Remaining: credit.RemainingAmount,
		}))

	return toCreditResponse(credit, s.now()), nil
}

func (s *creditService) RecordPayment(ctx context.Context, req *RecordPaymentRequest, actorID string) (*CreditResponse, error) {
	// 1. Validate input
	if err := validateInput(req); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		metrics.RecordCreditOperation("payment", "invalid_amount")
		return nil, ErrInvalidAmount
	}

	credit, err := s.creditRepo.FindByID(req.CreditID)
	if err != nil {
		return nil, fmt.Errorf("%w: credit transaction", ErrNotFound)
	}
	if req.Amount.GreaterThan(credit.RemainingAmount) {
		metrics.RecordCreditOperation("payment", "exceeds_remaining")
		return nil, ErrAmountExceedsRemaining
	}

	// 2. Third-party-confirmed payments must verify for the exact claimed
	// amount before any mutation happens.
	if req.Method == model.PaymentGateway {
		verified, verr := s.verifier.Verify(ctx, req.ExternalRef, req.Amount)
		if verr != nil {
			metrics.RecordCreditOperation("payment", "verification_error")
			return nil, fmt.Errorf("%w: %v", ErrPaymentVerificationFailed, verr)
		}
		if !verified {
			metrics.RecordCreditOperation("payment", "verification_failed")
			return nil, ErrPaymentVerificationFailed
		}
	}

	// 3. Apply atomically: conditional decrement guards the concurrent
	// over-payment race, then append the record and recompute status from
	// the fresh balance.
	var newStatus model.CreditStatus
	err = s.db.Transaction(func(tx *gorm.DB) error {
		ok, err := s.creditRepo.ApplyPayment(tx, req.CreditID, req.Amount)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAmountExceedsRemaining
		}

		pay := &model.CreditPayment{
			CreditTransactionID: req.CreditID,
			Amount:              req.Amount,
			Method:              req.Method,
			ExternalRef:         req.ExternalRef,
			PaidAt:              s.now(),
		}
		pay.CreatedBy = actorID
		if err := s.creditRepo.AppendPayment(tx, pay); err != nil {
			return err
		}

		var fresh model.CreditTransaction
		if err := tx.First(&fresh, "id = ?", req.CreditID).Error; err != nil {
			return err
		}
		newStatus = fresh.StoredStatus()

		if err := s.creditRepo.SetStatus(tx, req.CreditID, newStatus); err != nil {
			return err
		}
		return s.orderRepo.SetCreditStatus(tx, credit.OrderID, newStatus)
	})
	if err != nil {
		if errors.Is(err, ErrAmountExceedsRemaining) {
			metrics.RecordCreditOperation("payment", "lost_race")
		}
		return nil, err
	}

	metrics.RecordCreditOperation("payment", "ok")
	updated, err := s.creditRepo.FindByID(req.CreditID)
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, notify.ChannelCredit,
		notify.NewEnvelope(notify.EventCreditStatusChanged, notify.CreditStatusPayload{
			CreditID:  updated.ID,
			OrderID:   updated.OrderID,
			Status:    string(newStatus),
			Remaining: updated.RemainingAmount,
		}))

	return toCreditResponse(updated, s.now()), nil
}

func (s *creditService) UpdateTerms(ctx context.Context, creditID uuid.UUID, req *UpdateTermsRequest, actorID string) (*CreditResponse, error) {
	credit, err := s.creditRepo.FindByID(creditID)
	if err != nil {
		return nil, fmt.Errorf("%w: credit transaction", ErrNotFound)
	}

	if req.DueDate != nil {
		credit.DueDate = *req.DueDate
	}
	if req.Notes != nil {
		credit.Notes = *req.Notes
	}
	if req.Status != nil {
		// Overdue is a derived view, never a stored state.
		if *req.Status == model.CreditOverdue {
			return nil, fmt.Errorf("%w: overdue is derived, set the due date instead", ErrValidation)
		}
		// Direct status changes are administrative overrides, not normal
		// transitions. Log them as such.
		logger.Get().Warn("credit status override",
			zap.String("credit_id", creditID.String()),
			zap.String("from", string(credit.Status)),
			zap.String("to", string(*req.Status)),
			zap.String("actor", actorID))
	}
	credit.UpdatedBy = actorID

	// Terms, the status override, and the order mirror commit together. The
	// term write is column-selected so a payment landing between the read
	// above and this commit keeps its decremented balance.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.creditRepo.UpdateTerms(tx, credit); err != nil {
			return err
		}
		if req.Status != nil {
			if err := s.creditRepo.SetStatus(tx, creditID, *req.Status); err != nil {
				return err
			}
			return s.orderRepo.SetCreditStatus(tx, credit.OrderID, *req.Status)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.creditRepo.FindByID(creditID)
	if err != nil {
		return nil, err
	}
	return toCreditResponse(updated, s.now()), nil
}

func (s *creditService) GetCredit(id uuid.UUID) (*CreditResponse, error) {
	credit, err := s.creditRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: credit transaction", ErrNotFound)
	}
	return toCreditResponse(credit, s.now()), nil
}

func (s *creditService) GetCreditsByUser(userID uuid.UUID) ([]CreditResponse, error) {
	credits, err := s.creditRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	responses := make([]CreditResponse, len(credits))
	for i := range credits {
		responses[i] = *toCreditResponse(&credits[i], now)
	}
	return responses, nil
}

func (s *creditService) GetOverdueCredits() ([]CreditResponse, error) {
	now := s.now()
	credits, err := s.creditRepo.FindOverdue(now)
	if err != nil {
		return nil, err
	}
	responses := make([]CreditResponse, len(credits))
	for i := range credits {
		responses[i] = *toCreditResponse(&credits[i], now)
	}
	return responses, nil
}
