package service

import (
	"context"
	"testing"

	"go-commerce-ledger/internal/model"
	"go-commerce-ledger/internal/notify"
	"go-commerce-ledger/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newRestockFixture(t *testing.T, db *gorm.DB, autoApprove bool, notifier notify.Notifier) RestockService {
	t.Helper()
	productRepo := repository.NewProductRepo(db)
	inventory := NewInventoryService(productRepo, db, notify.NopNotifier{})
	return NewRestockService(repository.NewRestockRepo(db), productRepo, inventory, db, notifier, autoApprove)
}

func TestCreateRestockRequestSnapshotsQuantity(t *testing.T) {
	db := setupTestDB(t)
	outlet := createTestOutlet(t, db)
	product := createTestProduct(t, db, outlet.ID, 7, 10, "1000")

	svc := newRestockFixture(t, db, false, notify.NopNotifier{})

	request, err := svc.CreateRequest(context.Background(), &CreateRestockRequest{
		ProductID: product.ID,
		OutletID:  outlet.ID,
		Quantity:  50,
	}, "staff")
	require.NoError(t, err)

	assert.Equal(t, model.RestockPending, request.Status)
	assert.Equal(t, 50, request.RequestedQuantity)
	assert.Equal(t, 7, request.QuantityAtRequest)

	// Filing a request never touches inventory.
	assert.Equal(t, 7, productQuantity(t, db, product.ID))
}

func TestCreateRestockRequestForeignOutletRejected(t *testing.T) {
	db := setupTestDB(t)
	outlet := createTestOutlet(t, db)
	other := createTestOutlet(t, db)
	product := createTestProduct(t, db, outlet.ID, 7, 10, "1000")

	svc := newRestockFixture(t, db, false, notify.NopNotifier{})

	_, err := svc.CreateRequest(context.Background(), &CreateRestockRequest{
		ProductID: product.ID,
		OutletID:  other.ID,
		Quantity:  50,
	}, "staff")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestProcessRestockApproveCreditsInventoryExactlyOnce(t *testing.T) {
	db := setupTestDB(t)
	outlet := createTestOutlet(t, db)
	product := createTestProduct(t, db, outlet.ID, 7, 10, "1000")

	notifier := &capturingNotifier{}
	svc := newRestockFixture(t, db, false, notifier)
	ctx := context.Background()

	request, err := svc.CreateRequest(ctx, &CreateRestockRequest{
		ProductID: product.ID,
		OutletID:  outlet.ID,
		Quantity:  50,
	}, "staff")
	require.NoError(t, err)

	processed, err := svc.ProcessRequest(ctx, request.ID, string(model.RestockApproved), "looks good", "admin")
	require.NoError(t, err)
	assert.Equal(t, model.RestockApproved, processed.Status)
	assert.Equal(t, "looks good", processed.AdminNote)
	assert.Equal(t, "admin", processed.ProcessedBy)
	require.NotNil(t, processed.ProcessedAt)
	assert.Equal(t, 57, productQuantity(t, db, product.ID))

	events := notifier.eventsOfType(notify.EventRestockProcessed)
	require.Len(t, events, 1)
	assert.Equal(t, notify.OutletChannel(outlet.ID), events[0].Channel)

	// Second decision must fail and must not credit inventory again.
	_, err = svc.ProcessRequest(ctx, request.ID, string(model.RestockRejected), "", "admin")
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
	assert.Equal(t, 57, productQuantity(t, db, product.ID))

	final, err := svc.GetRequest(request.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RestockApproved, final.Status)
}

func TestProcessRestockRejectLeavesInventoryUntouched(t *testing.T) {
	db := setupTestDB(t)
	outlet := createTestOutlet(t, db)
	product := createTestProduct(t, db, outlet.ID, 7, 10, "1000")

	svc := newRestockFixture(t, db, false, notify.NopNotifier{})
	ctx := context.Background()

	request, err := svc.CreateRequest(ctx, &CreateRestockRequest{
		ProductID: product.ID,
		OutletID:  outlet.ID,
		Quantity:  50,
	}, "staff")
	require.NoError(t, err)

	processed, err := svc.ProcessRequest(ctx, request.ID, string(model.RestockRejected), "budget freeze", "admin")
	require.NoError(t, err)
	assert.Equal(t, model.RestockRejected, processed.Status)
	assert.Equal(t, 7, productQuantity(t, db, product.ID))
}

func TestProcessRestockInvalidDecision(t *testing.T) {
	db := setupTestDB(t)
	svc := newRestockFixture(t, db, false, notify.NopNotifier{})

	_, err := svc.ProcessRequest(context.Background(), uuid.New(), "maybe", "", "admin")
	assert.ErrorIs(t, err, ErrInvalidDecision)
}

func TestProcessRestockUnknownRequest(t *testing.T) {
	db := setupTestDB(t)
	svc := newRestockFixture(t, db, false, notify.NopNotifier{})

	_, err := svc.ProcessRequest(context.Background(), uuid.New(), string(model.RestockApproved), "", "admin")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAutoApproveProcessesImmediately(t *testing.T) {
	db := setupTestDB(t)
	outlet := createTestOutlet(t, db)
	product := createTestProduct(t, db, outlet.ID, 7, 10, "1000")

	svc := newRestockFixture(t, db, true, notify.NopNotifier{})

	request, err := svc.CreateRequest(context.Background(), &CreateRestockRequest{
		ProductID: product.ID,
		OutletID:  outlet.ID,
		Quantity:  50,
	}, "staff")
	require.NoError(t, err)

	assert.Equal(t, model.RestockApproved, request.Status)
	assert.Equal(t, "auto-approved", request.AdminNote)
	assert.Equal(t, 57, productQuantity(t, db, product.ID))
}
