package service

import (
	"context"
	"testing"
	"time"

	"go-commerce-ledger/internal/model"
	"go-commerce-ledger/internal/notify"
	"go-commerce-ledger/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newOrderFixture(t *testing.T, db *gorm.DB) (OrderService, CreditService) {
	t.Helper()
	productRepo := repository.NewProductRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	creditRepo := repository.NewCreditRepo(db)
	userRepo := repository.NewUserRepo(db)

	inventory := NewInventoryService(productRepo, db, notify.NopNotifier{})
	credit := NewCreditService(creditRepo, orderRepo, userRepo, stubVerifier{verified: true}, db, notify.NopNotifier{})
	return NewOrderService(orderRepo, productRepo, inventory, credit, db, notify.NopNotifier{}), credit
}

func TestPlaceOrderComputesExactTotal(t *testing.T) {
	db := setupTestDB(t)
	outlet := createTestOutlet(t, db)
	buyer := createTestUser(t, db, "0")
	p1 := createTestProduct(t, db, outlet.ID, 10, 0, "15000.50")
	p2 := createTestProduct(t, db, outlet.ID, 10, 0, "2999.99")

	svc, _ := newOrderFixture(t, db)

	order, err := svc.PlaceOrder(context.Background(), &PlaceOrderRequest{
		BuyerID:  &buyer.ID,
		OutletID: outlet.ID,
		Items: []OrderLine{
			{ProductID: p1.ID, Quantity: 2},
			{ProductID: p2.ID, Quantity: 3},
		},
		PaymentMethod:   model.PaymentCash,
		ShippingAddress: "Jl. Test No. 1",
		ShippingCity:    "Jakarta",
	}, "tester")
	require.NoError(t, err)

	// 2*15000.50 + 3*2999.99 = 39000.97
	assert.True(t, decimal.RequireFromString("39000.97").Equal(order.TotalPrice),
		"got total %s", order.TotalPrice)
	assert.Equal(t, model.OrderPending, order.Status)
	require.Len(t, order.Items, 2)

	// Snapshots carry the purchase-time name and price.
	assert.Equal(t, p1.Name, order.Items[0].ProductName)
	assert.True(t, p1.Price.Equal(order.Items[0].UnitPrice))

	assert.Equal(t, 8, productQuantity(t, db, p1.ID))
	assert.Equal(t, 7, productQuantity(t, db, p2.ID))
}

func TestPlaceOrderRollsBackOnPartialFailure(t *testing.T) {
	db := setupTestDB(t)
	outlet := createTestOutlet(t, db)
	buyer := createTestUser(t, db, "0")
	p1 := createTestProduct(t, db, outlet.ID, 10, 0, "1000")
	p2 := createTestProduct(t, db, outlet.ID, 2, 0, "1000")

	svc, _ := newOrderFixture(t, db)

	_, err := svc.PlaceOrder(context.Background(), &PlaceOrderRequest{
		BuyerID:  &buyer.ID,
		OutletID: outlet.ID,
		Items: []OrderLine{
			{ProductID: p1.ID, Quantity: 5},
			{ProductID: p2.ID, Quantity: 5}, // only 2 available
		},
		PaymentMethod:   model.PaymentCash,
		ShippingAddress: "Jl. Test No. 1",
		ShippingCity:    "Jakarta",
	}, "tester")
	require.ErrorIs(t, err, ErrInsufficientStock)

	// First reservation released, second never applied, nothing persisted.
	assert.Equal(t, 10, productQuantity(t, db, p1.ID))
	assert.Equal(t, 2, productQuantity(t, db, p2.ID))

	var count int64
	require.NoError(t, db.Model(&model.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPlaceOrderRejectsForeignOutletProduct(t *testing.T) {
	db := setupTestDB(t)
	outlet := createTestOutlet(t, db)
	other := createTestOutlet(t, db)
	buyer := createTestUser(t, db, "0")
	ours := createTestProduct(t, db, outlet.ID, 10, 0, "1000")
	theirs := createTestProduct(t, db, other.ID, 10, 0, "1000")

	svc, _ := newOrderFixture(t, db)

	_, err := svc.PlaceOrder(context.Background(), &PlaceOrderRequest{
		BuyerID:  &buyer.ID,
		OutletID: outlet.ID,
		Items: []OrderLine{
			{ProductID: ours.ID, Quantity: 1},
			{ProductID: theirs.ID, Quantity: 1},
		},
		PaymentMethod:   model.PaymentCash,
		ShippingAddress: "Jl. Test No. 1",
		ShippingCity:    "Jakarta",
	}, "tester")
	assert.ErrorIs(t, err, ErrUnauthorized)

	// The reservation already taken for the first line is rolled back.
	assert.Equal(t, 10, productQuantity(t, db, ours.ID))
	assert.Equal(t, 10, productQuantity(t, db, theirs.ID))
}

func TestPlaceOrderGuestRequiresContactInfo(t *testing.T) {
	db := setupTestDB(t)
	outlet := createTestOutlet(t, db)
	product := createTestProduct(t, db, outlet.ID, 10, 0, "1000")

	svc, _ := newOrderFixture(t, db)

	_, err := svc.PlaceOrder(context.Background(), &PlaceOrderRequest{
		OutletID:        outlet.ID,
		Items:           []OrderLine{{ProductID: product.ID, Quantity: 1}},
		PaymentMethod:   model.PaymentCash,
		GuestName:       "Guest",
		ShippingAddress: "Jl. Test No. 1",
		ShippingCity:    "Jakarta",
	}, "tester")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 10, productQuantity(t, db, product.ID))
}

func TestPlaceOrderCreditOpensLedgerEntry(t *testing.T) {
	db := setupTestDB(t)
	outlet := createTestOutlet(t, db)
	buyer := createTestUser(t, db, "100000")
	product := createTestProduct(t, db, outlet.ID, 10, 0, "5000")

	svc, _ := newOrderFixture(t, db)
	due := dueIn(30 * 24 * time.Hour)

	order, err := svc.PlaceOrder(context.Background(), &PlaceOrderRequest{
		BuyerID:         &buyer.ID,
		OutletID:        outlet.ID,
		Items:           []OrderLine{{ProductID: product.ID, Quantity: 2}},
		PaymentMethod:   model.PaymentCredit,
		CreditDueDate:   &due,
		ShippingAddress: "Jl. Test No. 1",
		ShippingCity:    "Jakarta",
	}, "tester")
	require.NoError(t, err)

	var credit model.CreditTransaction
	require.NoError(t, db.First(&credit, "order_id = ?", order.ID).Error)
	assert.True(t, decimal.RequireFromString("10000").Equal(credit.Amount))
	assert.True(t, credit.Amount.Equal(credit.RemainingAmount))
	assert.Equal(t, model.CreditPending, credit.Status)
	assert.Equal(t, string(model.CreditPending), order.CreditStatus)
}

func TestPlaceOrderCreditOverLimitCompensates(t *testing.T) {
	db := setupTestDB(t)
	outlet := createTestOutlet(t, db)
	buyer := createTestUser(t, db, "1000") // far below the order total
	product := createTestProduct(t, db, outlet.ID, 10, 0, "5000")

	svc, _ := newOrderFixture(t, db)
	due := dueIn(30 * 24 * time.Hour)

	_, err := svc.PlaceOrder(context.Background(), &PlaceOrderRequest{
		BuyerID:         &buyer.ID,
		OutletID:        outlet.ID,
		Items:           []OrderLine{{ProductID: product.ID, Quantity: 2}},
		PaymentMethod:   model.PaymentCredit,
		CreditDueDate:   &due,
		ShippingAddress: "Jl. Test No. 1",
		ShippingCity:    "Jakarta",
	}, "tester")
	require.ErrorIs(t, err, ErrCreditLimitExceeded)

	// Stock released and the persisted order compensated to cancelled.
	assert.Equal(t, 10, productQuantity(t, db, product.ID))

	var order model.Order
	require.NoError(t, db.First(&order, "buyer_id = ?", buyer.ID).Error)
	assert.Equal(t, model.OrderCancelled, order.Status)
}

func TestCancelOrderReleasesStock(t *testing.T) {
	db := setupTestDB(t)
	outlet := createTestOutlet(t, db)
	buyer := createTestUser(t, db, "0")
	product := createTestProduct(t, db, outlet.ID, 10, 0, "1000")

	svc, _ := newOrderFixture(t, db)
	ctx := context.Background()

	order, err := svc.PlaceOrder(ctx, &PlaceOrderRequest{
		BuyerID:         &buyer.ID,
		OutletID:        outlet.ID,
		Items:           []OrderLine{{ProductID: product.ID, Quantity: 4}},
		PaymentMethod:   model.PaymentCash,
		ShippingAddress: "Jl. Test No. 1",
		ShippingCity:    "Jakarta",
	}, "tester")
	require.NoError(t, err)
	require.Equal(t, 6, productQuantity(t, db, product.ID))

	cancelled, err := svc.CancelOrder(ctx, order.ID, "tester")
	require.NoError(t, err)
	assert.Equal(t, model.OrderCancelled, cancelled.Status)
	assert.Equal(t, 10, productQuantity(t, db, product.ID))

	// A delivered or cancelled order cannot be cancelled again.
	_, err = svc.CancelOrder(ctx, order.ID, "tester")
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestUpdateStatusFollowsLifecycle(t *testing.T) {
	db := setupTestDB(t)
	outlet := createTestOutlet(t, db)
	buyer := createTestUser(t, db, "0")
	product := createTestProduct(t, db, outlet.ID, 10, 0, "1000")

	svc, _ := newOrderFixture(t, db)
	ctx := context.Background()

	order, err := svc.PlaceOrder(ctx, &PlaceOrderRequest{
		BuyerID:         &buyer.ID,
		OutletID:        outlet.ID,
		Items:           []OrderLine{{ProductID: product.ID, Quantity: 1}},
		PaymentMethod:   model.PaymentCash,
		ShippingAddress: "Jl. Test No. 1",
		ShippingCity:    "Jakarta",
	}, "tester")
	require.NoError(t, err)

	// Skipping a step is rejected.
	_, err = svc.UpdateStatus(ctx, order.ID, model.OrderShipped, "tester")
	assert.ErrorIs(t, err, ErrValidation)

	for _, next := range []model.OrderStatus{model.OrderProcessing, model.OrderShipped, model.OrderDelivered} {
		updated, err := svc.UpdateStatus(ctx, order.ID, next, "tester")
		require.NoError(t, err)
		assert.Equal(t, next, updated.Status)
	}

	// Delivered orders are immutable.
	_, err = svc.UpdateStatus(ctx, order.ID, model.OrderCancelled, "tester")
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newOrderFixture(t, db)

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), model.OrderProcessing, "tester")
	assert.ErrorIs(t, err, ErrNotFound)
}
