package repository

import (
	"time"

	"go-commerce-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RestockRepository interface {
	Create(req *model.RestockRequest) error
	FindByID(id uuid.UUID) (*model.RestockRequest, error)
	FindAll(outletID *uuid.UUID, status *model.RestockStatus) ([]model.RestockRequest, error)

	// MarkProcessed moves a request from pending to the given terminal status
	// in a single conditional statement. Returns false when the request was
	// already processed (or does not exist) so the caller can distinguish
	// exactly-once violations.
	MarkProcessed(tx *gorm.DB, id uuid.UUID, status model.RestockStatus, note, processedBy string, at time.Time) (bool, error)
}

type restockRepo struct {
	db *gorm.DB
}

func NewRestockRepo(db *gorm.DB) RestockRepository {
	return &restockRepo{db}
}

func (r *restockRepo) Create(req *model.RestockRequest) error {
	return r.db.Create(req).Error
}

func (r *restockRepo) FindByID(id uuid.UUID) (*model.RestockRequest, error) {
	var req model.RestockRequest
	if err := r.db.Preload("Product").First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *restockRepo) FindAll(outletID *uuid.UUID, status *model.RestockStatus) ([]model.RestockRequest, error) {
	var reqs []model.RestockRequest
	q := r.db.Preload("Product").Order("created_at DESC")
	if outletID != nil {
		q = q.Where("outlet_id = ?", *outletID)
	}
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	err := q.Find(&reqs).Error
	return reqs, err
}

func (r *restockRepo) MarkProcessed(tx *gorm.DB, id uuid.UUID, status model.RestockStatus, note, processedBy string, at time.Time) (bool, error) {
	res := tx.Model(&model.RestockRequest{}).
		Where("id = ? AND status = ?", id, model.RestockPending).
		Updates(map[string]interface{}{
			"status":       status,
			"admin_note":   note,
			"processed_by": processedBy,
			"processed_at": at,
			"updated_by":   processedBy,
		})
	return res.RowsAffected > 0, res.Error
}
