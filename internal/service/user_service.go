package service

import (
	"errors"
	"fmt"

	"go-commerce-ledger/internal/model"
	"go-commerce-ledger/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrEmailTaken = errors.New("email is already registered")

type UserService interface {
	CreateUser(req *CreateUserRequest, actorID string) (*model.UserResponse, error)
	UpdateUser(id uuid.UUID, req *UpdateUserRequest, actorID string) (*model.UserResponse, error)
	UpdateUserPrivileges(id uuid.UUID, privilegeCodes []string, actorID string) (*model.UserResponse, error)
	GetUser(id uuid.UUID) (*model.UserResponse, error)
	GetUsers() ([]model.UserResponse, error)
	DeleteUser(id uuid.UUID) error
}

type CreateUserRequest struct {
	Email       string           `json:"email" validate:"required,email"`
	Password    string           `json:"password" validate:"required,min=8"`
	FullName    string           `json:"full_name" validate:"required"`
	PhoneNumber string           `json:"phone_number"`
	RoleCode    string           `json:"role_code" validate:"required,oneof=ADMIN OUTLET CUSTOMER"`
	OutletID    *uuid.UUID       `json:"outlet_id"`
	CreditLimit *decimal.Decimal `json:"credit_limit"`
}

type UpdateUserRequest struct {
	FullName    *string          `json:"full_name"`
	PhoneNumber *string          `json:"phone_number"`
	IsActive    *bool            `json:"is_active"`
	OutletID    *uuid.UUID       `json:"outlet_id"`
	CreditLimit *decimal.Decimal `json:"credit_limit"`
}

type userService struct {
	userRepo      repository.UserRepository
	roleRepo      repository.RoleRepository
	privilegeRepo repository.PrivilegeRepository
}

func NewUserService(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	privilegeRepo repository.PrivilegeRepository,
) UserService {
	return &userService{
		userRepo:      userRepo,
		roleRepo:      roleRepo,
		privilegeRepo: privilegeRepo,
	}
}

func (s *userService) CreateUser(req *CreateUserRequest, actorID string) (*model.UserResponse, error) {
	// 1. Validate input
	if err := validateInput(req); err != nil {
		return nil, err
	}

	// 2. Email must be unique
	if _, err := s.userRepo.FindByEmail(req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// 3. Resolve role and its seeded privileges
	role, err := s.roleRepo.FindByCode(req.RoleCode)
	if err != nil {
		return nil, fmt.Errorf("%w: role %s", ErrNotFound, req.RoleCode)
	}

	var privileges []model.Privilege
	if codes := model.PrivilegeCodesForRole(req.RoleCode); codes == nil {
		privileges, err = s.privilegeRepo.FindAll()
	} else {
		privileges, err = s.privilegeRepo.FindByCodes(codes)
	}
	if err != nil {
		return nil, err
	}

	// 4. Outlet staff must be tied to an outlet
	if req.RoleCode == model.RoleOutlet && req.OutletID == nil {
		return nil, fmt.Errorf("%w: outlet users require an outlet", ErrValidation)
	}

	user := &model.User{
		Email:       req.Email,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		RoleID:      &role.ID,
		OutletID:    req.OutletID,
		IsActive:    true,
		Privileges:  privileges,
	}
	if req.CreditLimit != nil {
		user.CreditLimit = *req.CreditLimit
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}
	user.CreatedBy = actorID
	user.UpdatedBy = actorID

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	return s.response(user.ID)
}

func (s *userService) UpdateUser(id uuid.UUID, req *UpdateUserRequest, actorID string) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = *req.PhoneNumber
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.OutletID != nil {
		user.OutletID = req.OutletID
	}
	if req.CreditLimit != nil {
		if req.CreditLimit.IsNegative() {
			return nil, fmt.Errorf("%w: credit limit cannot be negative", ErrValidation)
		}
		user.CreditLimit = *req.CreditLimit
	}
	user.UpdatedBy = actorID

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return s.response(id)
}

func (s *userService) UpdateUserPrivileges(id uuid.UUID, privilegeCodes []string, actorID string) (*model.UserResponse, error) {
	if _, err := s.userRepo.FindByID(id); err != nil {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}

	privileges, err := s.privilegeRepo.FindByCodes(privilegeCodes)
	if err != nil {
		return nil, err
	}
	if len(privileges) != len(privilegeCodes) {
		return nil, fmt.Errorf("%w: unknown privilege code", ErrValidation)
	}

	if err := s.userRepo.UpdatePrivileges(id, privileges); err != nil {
		return nil, err
	}
	return s.response(id)
}

func (s *userService) GetUser(id uuid.UUID) (*model.UserResponse, error) {
	return s.response(id)
}

func (s *userService) GetUsers() ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll()
	if err != nil {
		return nil, err
	}
	responses := make([]model.UserResponse, len(users))
	for i := range users {
		responses[i] = users[i].ToResponse()
	}
	return responses, nil
}

func (s *userService) DeleteUser(id uuid.UUID) error {
	if _, err := s.userRepo.FindByID(id); err != nil {
		return fmt.Errorf("%w: user", ErrNotFound)
	}
	return s.userRepo.Delete(id)
}

func (s *userService) response(id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}
	resp := user.ToResponse()
	return &resp, nil
}
