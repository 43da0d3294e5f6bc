package identity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pos/backend/internal/domain/shared"
)

// Role is the closed set of user roles. Scope and capability checks hang off
// the role itself so callers never compare raw strings.
type Role string

const (
	RoleDirector   Role = "director"
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleStaff      Role = "staff"
	RoleTechnician Role = "technician"
)

// IsValid returns true if the role is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleDirector, RoleAdmin, RoleManager, RoleStaff, RoleTechnician:
		return true
	}
	return false
}

// HasGlobalScope returns true if the role can act across all stores
func (r Role) HasGlobalScope() bool {
	return r == RoleDirector || r == RoleAdmin
}

// CanProcessSales returns true if the role can create sales and returns
func (r Role) CanProcessSales() bool {
	switch r {
	case RoleDirector, RoleAdmin, RoleManager, RoleStaff:
		return true
	}
	return false
}

// CanManageInventory returns true if the role can adjust stock levels
func (r Role) CanManageInventory() bool {
	switch r {
	case RoleDirector, RoleAdmin, RoleManager:
		return true
	}
	return false
}

// CanRequestTransfers returns true if the role can request stock transfers
func (r Role) CanRequestTransfers() bool {
	switch r {
	case RoleDirector, RoleAdmin, RoleManager:
		return true
	}
	return false
}

// CanApproveTransfers returns true if the role can approve or reject transfers
func (r Role) CanApproveTransfers() bool {
	return r.HasGlobalScope()
}

// User represents an operator of the system. Sales staff carry a commission
// rate and an accumulated commission balance.
type User struct {
	shared.BaseAggregateRoot
	Username        string          `gorm:"type:varchar(150);uniqueIndex;not null"`
	Email           string          `gorm:"type:varchar(254)"`
	PasswordHash    string          `gorm:"type:varchar(128);not null"`
	Role            Role            `gorm:"type:varchar(20);not null;default:'staff'"`
	StoreID         *uuid.UUID      `gorm:"type:uuid;index"` // nil for global-scope roles
	CommissionRate  decimal.Decimal `gorm:"type:decimal(5,2);not null;default:5.00"`
	TotalCommission decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0.00"`
	IsActive        bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates a new user with the default commission rate
func NewUser(username, email, passwordHash string, role Role) (*User, error) {
	if username == "" {
		return nil, shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown role: "+string(role))
	}

	return &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          username,
		Email:             email,
		PasswordHash:      passwordHash,
		Role:              role,
		CommissionRate:    decimal.NewFromFloat(5.00),
		TotalCommission:   decimal.Zero,
		IsActive:          true,
	}, nil
}

// AssignStore assigns the user to a store. Store-scoped roles act only on
// their assigned store.
func (u *User) AssignStore(storeID uuid.UUID) {
	u.StoreID = &storeID
}

// CanAccessStore returns true if the user may act on the given store
func (u *User) CanAccessStore(storeID uuid.UUID) bool {
	if u.Role.HasGlobalScope() {
		return true
	}
	return u.StoreID != nil && *u.StoreID == storeID
}

// CreditCommission adds a sale's commission to the user's running balance.
// The caller must hold a row lock on the user when persisting concurrently.
func (u *User) CreditCommission(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_COMMISSION", "Commission amount cannot be negative")
	}
	u.TotalCommission = u.TotalCommission.Add(amount)
	u.IncrementVersion()
	return nil
}
