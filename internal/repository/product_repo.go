package repository

import (
	"go-commerce-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(product *model.Product) error
	FindAll(outletID *uuid.UUID) ([]model.Product, error)
	FindByID(id uuid.UUID) (*model.Product, error)
	FindBySKU(sku string) (*model.Product, error)
	Update(product *model.Product) error

	// Reserve decrements available_quantity by qty in a single conditional
	// statement guarded by available_quantity >= qty. Returns false when the
	// guard fails (insufficient stock) or the product does not exist.
	Reserve(tx *gorm.DB, id uuid.UUID, qty int) (bool, error)
	// Release credits qty back to available_quantity. Returns false when the
	// product does not exist.
	Release(tx *gorm.DB, id uuid.UUID, qty int) (bool, error)

	CountBelowReorderPoint() (int64, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(product *model.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepo) FindAll(outletID *uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	q := r.db.Preload("Outlet").Preload("Category")
	if outletID != nil {
		q = q.Where("outlet_id = ?", *outletID)
	}
	err := q.Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.Preload("Outlet").Preload("Category").First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindBySKU(sku string) (*model.Product, error) {
	var product model.Product
	if err := r.db.First(&product, "sku = ?", sku).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) Update(product *model.Product) error {
	return r.db.Save(product).Error
}

func (r *productRepo) Reserve(tx *gorm.DB, id uuid.UUID, qty int) (bool, error) {
	res := tx.Model(&model.Product{}).
		Where("id = ? AND available_quantity >= ?", id, qty).
		Update("available_quantity", gorm.Expr("available_quantity - ?", qty))
	return res.RowsAffected > 0, res.Error
}

func (r *productRepo) Release(tx *gorm.DB, id uuid.UUID, qty int) (bool, error) {
	res := tx.Model(&model.Product{}).
		Where("id = ?", id).
		Update("available_quantity", gorm.Expr("available_quantity + ?", qty))
	return res.RowsAffected > 0, res.Error
}

func (r *productRepo) CountBelowReorderPoint() (int64, error) {
	var count int64
	err := r.db.Model(&model.Product{}).
		Where("available_quantity <= reorder_point").
		Count(&count).Error
	return count, err
}
