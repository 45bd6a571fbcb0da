package repository

import (
	"go-commerce-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OutletRepository interface {
	Create(outlet *model.Outlet) error
	FindAll() ([]model.Outlet, error)
	FindByID(id uuid.UUID) (*model.Outlet, error)
	Update(outlet *model.Outlet) error
}

type outletRepo struct {
	db *gorm.DB
}

func NewOutletRepo(db *gorm.DB) OutletRepository {
	return &outletRepo{db}
}

func (r *outletRepo) Create(outlet *model.Outlet) error {
	return r.db.Create(outlet).Error
}

func (r *outletRepo) FindAll() ([]model.Outlet, error) {
	var outlets []model.Outlet
	err := r.db.Order("name ASC").Find(&outlets).Error
	return outlets, err
}

func (r *outletRepo) FindByID(id uuid.UUID) (*model.Outlet, error) {
	var outlet model.Outlet
	if err := r.db.First(&outlet, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &outlet, nil
}

func (r *outletRepo) Update(outlet *model.Outlet) error {
	return r.db.Save(outlet).Error
}
