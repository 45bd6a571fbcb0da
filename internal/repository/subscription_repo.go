package repository

import (
	"time"

	"go-commerce-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubscriptionRepository interface {
	Create(sub *model.Subscription) error
	Update(sub *model.Subscription) error
	FindByID(id uuid.UUID) (*model.Subscription, error)
	FindByUserID(userID uuid.UUID) ([]model.Subscription, error)
	FindAll() ([]model.Subscription, error)

	// FindActiveOn returns subscriptions covering the given day.
	FindActiveOn(day time.Time) ([]model.Subscription, error)
	// FindExpiring returns active subscriptions ending within the window.
	FindExpiring(from, to time.Time) ([]model.Subscription, error)
}

type subscriptionRepo struct {
	db *gorm.DB
}

func NewSubscriptionRepo(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepo{db}
}

func (r *subscriptionRepo) Create(sub *model.Subscription) error {
	return r.db.Create(sub).Error
}

func (r *subscriptionRepo) Update(sub *model.Subscription) error {
	return r.db.Save(sub).Error
}

func (r *subscriptionRepo) FindByID(id uuid.UUID) (*model.Subscription, error) {
	var sub model.Subscription
	if err := r.db.Preload("User").First(&sub, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepo) FindByUserID(userID uuid.UUID) ([]model.Subscription, error) {
	var subs []model.Subscription
	err := r.db.Where("user_id = ?", userID).
		Order("start_date ASC").
		Find(&subs).Error
	return subs, err
}

func (r *subscriptionRepo) FindAll() ([]model.Subscription, error) {
	var subs []model.Subscription
	err := r.db.Preload("User").Order("start_date ASC").Find(&subs).Error
	return subs, err
}

func (r *subscriptionRepo) FindActiveOn(day time.Time) ([]model.Subscription, error) {
	var subs []model.Subscription
	err := r.db.Where("is_active = ? AND start_date <= ? AND end_date >= ?", true, day, day).
		Find(&subs).Error
	return subs, err
}

func (r *subscriptionRepo) FindExpiring(from, to time.Time) ([]model.Subscription, error) {
	var subs []model.Subscription
	err := r.db.Preload("User").
		Where("is_active = ? AND end_date BETWEEN ? AND ?", true, from, to).
		Order("end_date ASC").
		Find(&subs).Error
	return subs, err
}
