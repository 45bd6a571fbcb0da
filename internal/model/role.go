package model

// Role represents user roles in the system
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // ADMIN, OUTLET, CUSTOMER
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

// Role codes as constants
const (
	RoleAdmin    = "ADMIN"
	RoleOutlet   = "OUTLET"
	RoleCustomer = "CUSTOMER"
)

// DefaultRoles defines the default roles in the system
var DefaultRoles = []Role{
	{
		Code:        RoleAdmin,
		Name:        "Platform Administrator",
		Description: "Full platform access including restock review and credit overrides",
	},
	{
		Code:        RoleOutlet,
		Name:        "Outlet",
		Description: "Seller tenant managing its own catalog, restocks and receivables",
	},
	{
		Code:        RoleCustomer,
		Name:        "Customer",
		Description: "Buyer placing orders and paying down credit",
	},
}
