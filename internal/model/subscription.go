package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Subscription is a recurring plan purchased by a customer.
// Date range is inclusive on both ends.
type Subscription struct {
	BaseModel
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id" validate:"uuid_required"`
	User   *User     `gorm:"foreignKey:UserID" json:"user,omitempty" validate:"-"`

	PlanCode string          `gorm:"type:varchar(50);not null" json:"plan_code" validate:"required"`
	Price    decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"price"`

	StartDate time.Time `gorm:"type:date;not null;index" json:"start_date" validate:"required"`
	EndDate   time.Time `gorm:"type:date;not null;index" json:"end_date" validate:"required"`

	IsActive  bool   `gorm:"default:true" json:"is_active"`
	AutoRenew bool   `gorm:"default:false" json:"auto_renew"`
	Note      string `gorm:"type:text" json:"note,omitempty"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// ActiveOn reports whether the subscription covers the given day.
func (s *Subscription) ActiveOn(day time.Time) bool {
	if !s.IsActive {
		return false
	}
	return !day.Before(s.StartDate) && !day.After(s.EndDate)
}

// SubscriptionResponse for API responses with formatted dates.
type SubscriptionResponse struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	User      *UserResponse   `json:"user,omitempty"`
	PlanCode  string          `json:"plan_code"`
	Price     decimal.Decimal `json:"price"`
	StartDate string          `json:"start_date"`
	EndDate   string          `json:"end_date"`
	IsActive  bool            `json:"is_active"`
	AutoRenew bool            `json:"auto_renew"`
	Note      string          `json:"note,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// ToResponse converts Subscription to SubscriptionResponse
func (s *Subscription) ToResponse() SubscriptionResponse {
	resp := SubscriptionResponse{
		ID:        s.ID,
		UserID:    s.UserID,
		PlanCode:  s.PlanCode,
		Price:     s.Price,
		StartDate: s.StartDate.Format("2006-01-02"),
		EndDate:   s.EndDate.Format("2006-01-02"),
		IsActive:  s.IsActive,
		AutoRenew: s.AutoRenew,
		Note:      s.Note,
		CreatedAt: s.CreatedAt,
	}
	if s.User != nil {
		u := s.User.ToResponse()
		resp.User = &u
	}
	return resp
}
