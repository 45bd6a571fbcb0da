package service

import (
	"context"
	"sync"
	"testing"

	"go-commerce-ledger/internal/notify"
	"go-commerce-ledger/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserveDecrementsStock(t *testing.T) {
	db := setupTestDB(t)
	outlet := createTestOutlet(t, db)
	product := createTestProduct(t, db, outlet.ID, 10, 2, "15000")

	svc := NewInventoryService(repository.NewProductRepo(db), db, notify.NopNotifier{})

	require.NoError(t, svc.Reserve(context.Background(), product.ID, 4))
	assert.Equal(t, 6, productQuantity(t, db, product.ID))
}

func TestReserveInsufficientStock(t *testing.T) {
	db := setupTestDB(t)
	outlet := createTestOutlet(t, db)
	product := createTestProduct(t, db, outlet.ID, 5, 0, "15000")

	svc := NewInventoryService(repository.NewProductRepo(db), db, notify.NopNotifier{})
	ctx := context.Background()

	require.NoError(t, svc.Reserve(ctx, product.ID, 3))

	err := svc.Reserve(ctx, product.ID, 3)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// The failed reservation must not touch the counter.
	assert.Equal(t, 2, productQuantity(t, db, product.ID))
}

func TestReserveUnknownProduct(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInventoryService(repository.NewProductRepo(db), db, notify.NopNotifier{})

	err := svc.Reserve(context.Background(), uuid.New(), 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReserveRejectsNonPositiveQuantity(t *testing.T) {
	db := setupTestDB(t)
	outlet := createTestOutlet(t, db)
	product := createTestProduct(t, db, outlet.ID, 5, 0, "15000")

	svc := NewInventoryService(repository.NewProductRepo(db), db, notify.NopNotifier{})

	assert.ErrorIs(t, svc.Reserve(context.Background(), product.ID, 0), ErrValidation)
	assert.ErrorIs(t, svc.Reserve(context.Background(), product.ID, -1), ErrValidation)
	assert.Equal(t, 5, productQuantity(t, db, product.ID))
}

func TestConcurrentReservesConserveStock(t *testing.T) {
	db := setupTestDB(t)
	outlet := createTestOutlet(t, db)
	product := createTestProduct(t, db, outlet.ID, 50, 0, "15000")

	svc := NewInventoryService(repository.NewProductRepo(db), db, notify.NopNotifier{})
	ctx := context.Background()

	const workers = 10
	const perWorker = 7 // 10 * 7 = 70 > 50, so some must fail

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := svc.Reserve(ctx, product.ID, perWorker); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	remaining := productQuantity(t, db, product.ID)
	assert.GreaterOrEqual(t, remaining, 0, "stock must never go negative")
	assert.Equal(t, 50-succeeded*perWorker, remaining, "reserved units must add up exactly")
}

func TestReleaseRestoresStock(t *testing.T) {
	db := setupTestDB(t)
	outlet := createTestOutlet(t, db)
	product := createTestProduct(t, db, outlet.ID, 10, 0, "15000")

	svc := NewInventoryService(repository.NewProductRepo(db), db, notify.NopNotifier{})
	ctx := context.Background()

	require.NoError(t, svc.Reserve(ctx, product.ID, 6))
	require.NoError(t, svc.Release(ctx, product.ID, 6))
	assert.Equal(t, 10, productQuantity(t, db, product.ID))
}

func TestLowStockSignalFiresAtReorderPoint(t *testing.T) {
	db := setupTestDB(t)
	outlet := createTestOutlet(t, db)
	product := createTestProduct(t, db, outlet.ID, 5, 3, "15000")

	notifier := &capturingNotifier{}
	svc := NewInventoryService(repository.NewProductRepo(db), db, notifier)
	ctx := context.Background()

	// 5 -> 4, still above the reorder point: no signal.
	require.NoError(t, svc.Reserve(ctx, product.ID, 1))
	assert.Empty(t, notifier.eventsOfType(notify.EventLowStock))

	// 4 -> 3, at the reorder point: signal to the owning outlet.
	require.NoError(t, svc.Reserve(ctx, product.ID, 1))
	events := notifier.eventsOfType(notify.EventLowStock)
	require.Len(t, events, 1)
	assert.Equal(t, notify.OutletChannel(outlet.ID), events[0].Channel)

	payload, ok := events[0].Envelope.Payload.(notify.LowStockPayload)
	require.True(t, ok)
	assert.Equal(t, product.ID, payload.ProductID)
	assert.Equal(t, 3, payload.Quantity)
}

func TestUpdateProductDoesNotTouchQuantity(t *testing.T) {
	db := setupTestDB(t)
	outlet := createTestOutlet(t, db)
	product := createTestProduct(t, db, outlet.ID, 10, 2, "15000")

	svc := NewInventoryService(repository.NewProductRepo(db), db, notify.NopNotifier{})

	update := *product
	update.Name = "Renamed"
	update.AvailableQuantity = 9999

	updated, err := svc.UpdateProduct(product.ID, &update, "tester")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, 10, productQuantity(t, db, product.ID))
}
