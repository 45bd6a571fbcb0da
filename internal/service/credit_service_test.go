package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-commerce-ledger/internal/model"
	"go-commerce-ledger/internal/notify"
	"go-commerce-ledger/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubVerifier struct {
	verified bool
	err      error
}

func (v stubVerifier) Verify(ctx context.Context, reference string, expectedAmount decimal.Decimal) (bool, error) {
	return v.verified, v.err
}

func newCreditFixture(t *testing.T, db *gorm.DB, verifier stubVerifier) *creditService {
	t.Helper()
	svc := NewCreditService(
		repository.NewCreditRepo(db),
		repository.NewOrderRepo(db),
		repository.NewUserRepo(db),
		verifier,
		db,
		notify.NopNotifier{},
	)
	return svc.(*creditService)
}

func openTestCredit(t *testing.T, db *gorm.DB, svc *creditService, amount, limit string) (*CreditResponse, *model.User) {
	t.Helper()
	outlet := createTestOutlet(t, db)
	user := createTestUser(t, db, limit)
	order := createTestOrder(t, db, user.ID, outlet.ID, amount)

	credit, err := svc.Open(context.Background(), &OpenCreditRequest{
		UserID:   user.ID,
		OutletID: outlet.ID,
		OrderID:  order.ID,
		Amount:   decimal.RequireFromString(amount),
		DueDate:  dueIn(30 * 24 * time.Hour),
	}, "tester")
	require.NoError(t, err)
	return credit, user
}

func TestOpenCreditStartsPendingWithFullBalance(t *testing.T) {
	db := setupTestDB(t)
	svc := newCreditFixture(t, db, stubVerifier{verified: true})

	credit, _ := openTestCredit(t, db, svc, "50000", "100000")

	assert.Equal(t, model.CreditPending, credit.Status)
	assert.Equal(t, model.CreditPending, credit.EffectiveStatus)
	assert.True(t, credit.Amount.Equal(credit.RemainingAmount))

	// The status is mirrored onto the order.
	var order model.Order
	require.NoError(t, db.First(&order, "id = ?", credit.OrderID).Error)
	assert.Equal(t, string(model.CreditPending), order.CreditStatus)
}

func TestOpenCreditEnforcesLimitFromLedgerSum(t *testing.T) {
	db := setupTestDB(t)
	svc := newCreditFixture(t, db, stubVerifier{verified: true})
	ctx := context.Background()

	outlet := createTestOutlet(t, db)
	user := createTestUser(t, db, "100000")

	// First credit uses 80000 of the 100000 limit.
	order1 := createTestOrder(t, db, user.ID, outlet.ID, "80000")
	_, err := svc.Open(ctx, &OpenCreditRequest{
		UserID:   user.ID,
		OutletID: outlet.ID,
		OrderID:  order1.ID,
		Amount:   decimal.RequireFromString("80000"),
		DueDate:  dueIn(30 * 24 * time.Hour),
	}, "tester")
	require.NoError(t, err)

	// A second credit of 30000 would exceed the limit.
	order2 := createTestOrder(t, db, user.ID, outlet.ID, "30000")
	_, err = svc.Open(ctx, &OpenCreditRequest{
		UserID:   user.ID,
		OutletID: outlet.ID,
		OrderID:  order2.ID,
		Amount:   decimal.RequireFromString("30000"),
		DueDate:  dueIn(30 * 24 * time.Hour),
	}, "tester")
	assert.ErrorIs(t, err, ErrCreditLimitExceeded)

	// Exactly hitting the limit is allowed.
	order3 := createTestOrder(t, db, user.ID, outlet.ID, "20000")
	_, err = svc.Open(ctx, &OpenCreditRequest{
		UserID:   user.ID,
		OutletID: outlet.ID,
		OrderID:  order3.ID,
		Amount:   decimal.RequireFromString("20000"),
		DueDate:  dueIn(30 * 24 * time.Hour),
	}, "tester")
	assert.NoError(t, err)
}

func TestOpenCreditRejectsForeignOrder(t *testing.T) {
	db := setupTestDB(t)
	svc := newCreditFixture(t, db, stubVerifier{verified: true})

	outlet := createTestOutlet(t, db)
	owner := createTestUser(t, db, "100000")
	other := createTestUser(t, db, "100000")
	order := createTestOrder(t, db, owner.ID, outlet.ID, "10000")

	_, err := svc.Open(context.Background(), &OpenCreditRequest{
		UserID:   other.ID,
		OutletID: outlet.ID,
		OrderID:  order.ID,
		Amount:   decimal.RequireFromString("10000"),
		DueDate:  dueIn(30 * 24 * time.Hour),
	}, "tester")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRecordPaymentFullPaysOff(t *testing.T) {
	db := setupTestDB(t)
	svc := newCreditFixture(t, db, stubVerifier{verified: true})
	credit, _ := openTestCredit(t, db, svc, "50000", "100000")

	paid, err := svc.RecordPayment(context.Background(), &RecordPaymentRequest{
		CreditID: credit.ID,
		Amount:   decimal.RequireFromString("50000"),
		Method:   model.PaymentCash,
	}, "tester")
	require.NoError(t, err)

	assert.Equal(t, model.CreditPaid, paid.Status)
	assert.Equal(t, model.CreditPaid, paid.EffectiveStatus)
	assert.True(t, paid.RemainingAmount.IsZero())

	var order model.Order
	require.NoError(t, db.First(&order, "id = ?", credit.OrderID).Error)
	assert.Equal(t, string(model.CreditPaid), order.CreditStatus)
}

func TestRecordPaymentOneCentShortStaysPartiallyPaid(t *testing.T) {
	db := setupTestDB(t)
	svc := newCreditFixture(t, db, stubVerifier{verified: true})
	credit, _ := openTestCredit(t, db, svc, "100.00", "100000")

	paid, err := svc.RecordPayment(context.Background(), &RecordPaymentRequest{
		CreditID: credit.ID,
		Amount:   decimal.RequireFromString("99.99"),
		Method:   model.PaymentCash,
	}, "tester")
	require.NoError(t, err)

	assert.Equal(t, model.CreditPartiallyPaid, paid.Status)
	assert.True(t, decimal.RequireFromString("0.01").Equal(paid.RemainingAmount))
}

func TestRecordPaymentOverRemainingRejectedWithoutMutation(t *testing.T) {
	db := setupTestDB(t)
	svc := newCreditFixture(t, db, stubVerifier{verified: true})
	credit, _ := openTestCredit(t, db, svc, "100.00", "100000")

	_, err := svc.RecordPayment(context.Background(), &RecordPaymentRequest{
		CreditID: credit.ID,
		Amount:   decimal.RequireFromString("100.01"),
		Method:   model.PaymentCash,
	}, "tester")
	assert.ErrorIs(t, err, ErrAmountExceedsRemaining)

	var fresh model.CreditTransaction
	require.NoError(t, db.Preload("Payments").First(&fresh, "id = ?", credit.ID).Error)
	assert.True(t, fresh.Amount.Equal(fresh.RemainingAmount))
	assert.Empty(t, fresh.Payments)
	assert.Equal(t, model.CreditPending, fresh.Status)
}

func TestRecordPaymentRejectsNonPositiveAmount(t *testing.T) {
	db := setupTestDB(t)
	svc := newCreditFixture(t, db, stubVerifier{verified: true})
	credit, _ := openTestCredit(t, db, svc, "100.00", "100000")

	for _, amount := range []string{"0", "-5"} {
		_, err := svc.RecordPayment(context.Background(), &RecordPaymentRequest{
			CreditID: credit.ID,
			Amount:   decimal.RequireFromString(amount),
			Method:   model.PaymentCash,
		}, "tester")
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
}

func TestRemainingEqualsAmountMinusPayments(t *testing.T) {
	db := setupTestDB(t)
	svc := newCreditFixture(t, db, stubVerifier{verified: true})
	credit, _ := openTestCredit(t, db, svc, "1000.00", "100000")
	ctx := context.Background()

	for _, amount := range []string{"250.50", "100.25", "399.25"} {
		_, err := svc.RecordPayment(ctx, &RecordPaymentRequest{
			CreditID: credit.ID,
			Amount:   decimal.RequireFromString(amount),
			Method:   model.PaymentCash,
		}, "tester")
		require.NoError(t, err)

		var fresh model.CreditTransaction
		require.NoError(t, db.Preload("Payments").First(&fresh, "id = ?", credit.ID).Error)
		assert.True(t, fresh.Amount.Sub(fresh.PaidTotal()).Equal(fresh.RemainingAmount),
			"remaining %s != amount %s - paid %s", fresh.RemainingAmount, fresh.Amount, fresh.PaidTotal())
	}

	final, err := svc.GetCredit(credit.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CreditPartiallyPaid, final.Status)
	assert.True(t, decimal.RequireFromString("250.00").Equal(final.RemainingAmount))
}

func TestOverdueIsDerivedNotStored(t *testing.T) {
	db := setupTestDB(t)
	svc := newCreditFixture(t, db, stubVerifier{verified: true})
	credit, _ := openTestCredit(t, db, svc, "100.00", "100000")

	// Jump the clock past the due date.
	svc.now = func() time.Time { return time.Now().Add(60 * 24 * time.Hour) }

	viewed, err := svc.GetCredit(credit.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CreditOverdue, viewed.EffectiveStatus)
	assert.Equal(t, model.CreditPending, viewed.Status, "stored status must not become overdue")

	overdue, err := svc.GetOverdueCredits()
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, credit.ID, overdue[0].ID)

	// Paying off an overdue credit still works and clears the overlay.
	paid, err := svc.RecordPayment(context.Background(), &RecordPaymentRequest{
		CreditID: credit.ID,
		Amount:   decimal.RequireFromString("100.00"),
		Method:   model.PaymentCash,
	}, "tester")
	require.NoError(t, err)
	assert.Equal(t, model.CreditPaid, paid.EffectiveStatus)
}

func TestGatewayPaymentRequiresVerification(t *testing.T) {
	db := setupTestDB(t)

	t.Run("gateway rejects", func(t *testing.T) {
		svc := newCreditFixture(t, db, stubVerifier{verified: false})
		credit, _ := openTestCredit(t, db, svc, "100.00", "100000")

		_, err := svc.RecordPayment(context.Background(), &RecordPaymentRequest{
			CreditID:    credit.ID,
			Amount:      decimal.RequireFromString("100.00"),
			Method:      model.PaymentGateway,
			ExternalRef: "ref-1",
		}, "tester")
		assert.ErrorIs(t, err, ErrPaymentVerificationFailed)

		var fresh model.CreditTransaction
		require.NoError(t, db.First(&fresh, "id = ?", credit.ID).Error)
		assert.True(t, fresh.Amount.Equal(fresh.RemainingAmount), "no mutation on failed verification")
	})

	t.Run("gateway unreachable", func(t *testing.T) {
		svc := newCreditFixture(t, db, stubVerifier{err: errors.New("connection refused")})
		credit, _ := openTestCredit(t, db, svc, "100.00", "100000")

		_, err := svc.RecordPayment(context.Background(), &RecordPaymentRequest{
			CreditID:    credit.ID,
			Amount:      decimal.RequireFromString("100.00"),
			Method:      model.PaymentGateway,
			ExternalRef: "ref-2",
		}, "tester")
		assert.ErrorIs(t, err, ErrPaymentVerificationFailed)
	})
}

func TestUpdateTermsRejectsOverdueStatus(t *testing.T) {
	db := setupTestDB(t)
	svc := newCreditFixture(t, db, stubVerifier{verified: true})
	credit, _ := openTestCredit(t, db, svc, "100.00", "100000")

	overdue := model.CreditOverdue
	_, err := svc.UpdateTerms(context.Background(), credit.ID, &UpdateTermsRequest{Status: &overdue}, "admin")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateTermsPreservesConcurrentPayment(t *testing.T) {
	db := setupTestDB(t)
	svc := newCreditFixture(t, db, stubVerifier{verified: true})
	credit, _ := openTestCredit(t, db, svc, "1000.00", "100000")

	// A term editor reads the row, then a payment lands before the editor
	// writes its changes back.
	repo := repository.NewCreditRepo(db)
	stale, err := repo.FindByID(credit.ID)
	require.NoError(t, err)

	_, err = svc.RecordPayment(context.Background(), &RecordPaymentRequest{
		CreditID: credit.ID,
		Amount:   decimal.RequireFromString("400.00"),
		Method:   model.PaymentCash,
	}, "tester")
	require.NoError(t, err)

	stale.Notes = "extended terms"
	stale.DueDate = dueIn(90 * 24 * time.Hour)
	require.NoError(t, repo.UpdateTerms(db, stale))

	fresh, err := svc.GetCredit(credit.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("600.00").Equal(fresh.RemainingAmount),
		"term update must not restore the balance, got %s", fresh.RemainingAmount)
	assert.Equal(t, model.CreditPartiallyPaid, fresh.Status)
	assert.Equal(t, "extended terms", fresh.Notes)
}

func TestUpdateTermsStatusOverrideMirrorsOntoOrder(t *testing.T) {
	db := setupTestDB(t)
	svc := newCreditFixture(t, db, stubVerifier{verified: true})
	credit, _ := openTestCredit(t, db, svc, "100.00", "100000")

	paid := model.CreditPaid
	updated, err := svc.UpdateTerms(context.Background(), credit.ID, &UpdateTermsRequest{Status: &paid}, "admin")
	require.NoError(t, err)
	assert.Equal(t, model.CreditPaid, updated.Status)

	var order model.Order
	require.NoError(t, db.First(&order, "id = ?", credit.OrderID).Error)
	assert.Equal(t, string(model.CreditPaid), order.CreditStatus)
}

func TestUpdateTermsMovesDueDate(t *testing.T) {
	db := setupTestDB(t)
	svc := newCreditFixture(t, db, stubVerifier{verified: true})
	credit, _ := openTestCredit(t, db, svc, "100.00", "100000")

	newDue := dueIn(90 * 24 * time.Hour)
	updated, err := svc.UpdateTerms(context.Background(), credit.ID, &UpdateTermsRequest{DueDate: &newDue}, "admin")
	require.NoError(t, err)
	assert.WithinDuration(t, newDue, updated.DueDate, time.Second)
}
