package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "product:create"
	Name string `gorm:"type:varchar(100)" json:"name"`
}

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	// User management
	{Code: "user:view", Name: "View User"},
	{Code: "user:create", Name: "Create User"},
	{Code: "user:update", Name: "Update User"},
	{Code: "user:delete", Name: "Delete User"},
	{Code: "user:update_privilege", Name: "Update User Privileges"},
	// Catalog
	{Code: "product:view", Name: "View Product"},
	{Code: "product:create", Name: "Create Product"},
	{Code: "product:update", Name: "Update Product"},
	{Code: "category:manage", Name: "Manage Categories"},
	// Orders
	{Code: "order:view", Name: "View Order"},
	{Code: "order:create", Name: "Create Order"},
	{Code: "order:update_status", Name: "Update Order Status"},
	// Restocking
	{Code: "restock:create", Name: "Create Restock Request"},
	{Code: "restock:process", Name: "Process Restock Request"},
	// Credit ledger
	{Code: "credit:open", Name: "Open Credit Transaction"},
	{Code: "credit:pay", Name: "Record Credit Payment"},
	{Code: "credit:override", Name: "Override Credit Terms"},
	// Reporting
	{Code: "report:view", Name: "View Reports"},
	// Subscriptions
	{Code: "subscription:manage", Name: "Manage Subscriptions"},
}

// privilegesByRole maps role codes to the privilege codes seeded for them.
var privilegesByRole = map[string][]string{
	RoleAdmin: nil, // nil means all
	RoleOutlet: {
		"product:view", "product:create", "product:update", "category:manage",
		"order:view", "order:update_status",
		"restock:create",
		"credit:open", "credit:pay",
		"report:view",
	},
	RoleCustomer: {
		"product:view",
		"order:view", "order:create",
		"credit:pay",
		"subscription:manage",
	},
}

// PrivilegeCodesForRole returns the seeded privilege codes for a role.
// A nil result means every privilege.
func PrivilegeCodesForRole(roleCode string) []string {
	return privilegesByRole[roleCode]
}
