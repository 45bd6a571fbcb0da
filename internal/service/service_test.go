package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"go-commerce-ledger/internal/model"
	"go-commerce-ledger/internal/notify"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// Single connection: sqlite serializes writes, which keeps concurrent
	// test cases deterministic.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.Outlet{}, &model.Privilege{}, &model.Role{}, &model.User{},
		&model.Category{}, &model.Product{},
		&model.Order{}, &model.OrderItem{},
		&model.RestockRequest{},
		&model.CreditTransaction{}, &model.CreditPayment{},
		&model.Subscription{},
	))
	return db
}

// capturingNotifier records published events for assertions.
type capturingNotifier struct {
	mu     sync.Mutex
	events []capturedEvent
}

type capturedEvent struct {
	Channel  string
	Envelope notify.Envelope
}

func (n *capturingNotifier) Publish(ctx context.Context, channel string, event notify.Envelope) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, capturedEvent{Channel: channel, Envelope: event})
}

func (n *capturingNotifier) eventsOfType(eventType string) []capturedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []capturedEvent
	for _, e := range n.events {
		if e.Envelope.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

func createTestOutlet(t *testing.T, db *gorm.DB) *model.Outlet {
	t.Helper()
	outlet := &model.Outlet{Name: "Outlet " + uuid.NewString()[:8]}
	require.NoError(t, db.Create(outlet).Error)
	return outlet
}

func createTestProduct(t *testing.T, db *gorm.DB, outletID uuid.UUID, quantity, reorderPoint int, price string) *model.Product {
	t.Helper()
	product := &model.Product{
		SKU:               "SKU-" + uuid.NewString()[:8],
		Name:              "Test Product",
		AvailableQuantity: quantity,
		ReorderPoint:      reorderPoint,
		Unit:              "pcs",
		Price:             decimal.RequireFromString(price),
		OutletID:          outletID,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func createTestUser(t *testing.T, db *gorm.DB, creditLimit string) *model.User {
	t.Helper()
	user := &model.User{
		Email:       uuid.NewString()[:8] + "@example.com",
		FullName:    "Test User",
		IsActive:    true,
		CreditLimit: decimal.RequireFromString(creditLimit),
	}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestOrder(t *testing.T, db *gorm.DB, buyerID, outletID uuid.UUID, total string) *model.Order {
	t.Helper()
	order := &model.Order{
		BuyerID:         &buyerID,
		OutletID:        outletID,
		TotalPrice:      decimal.RequireFromString(total),
		Status:          model.OrderPending,
		PaymentMethod:   model.PaymentCredit,
		ShippingAddress: "Jl. Test No. 1",
		ShippingCity:    "Jakarta",
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func productQuantity(t *testing.T, db *gorm.DB, productID uuid.UUID) int {
	t.Helper()
	var product model.Product
	require.NoError(t, db.First(&product, "id = ?", productID).Error)
	return product.AvailableQuantity
}

func dueIn(d time.Duration) time.Time {
	return time.Now().Add(d)
}
