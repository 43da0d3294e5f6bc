package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pos/backend/internal/domain/identity"
)

// LoginInput is the input for authentication
type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	IP       string `json:"-"`
}

// LoginResult carries the issued token and the authenticated user
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// CreateUserInput is the input for registering a user
type CreateUserInput struct {
	Username       string           `json:"username" binding:"required,min=3,max=150"`
	Email          string           `json:"email" binding:"omitempty,email"`
	Password       string           `json:"password" binding:"required,min=8"`
	Role           string           `json:"role" binding:"required,oneof=director admin manager staff technician"`
	StoreID        *uuid.UUID       `json:"store_id"`
	CommissionRate *decimal.Decimal `json:"commission_rate"`
	CreatedBy      uuid.UUID        `json:"-"`
	IP             string           `json:"-"`
}

// UserResponse is the API representation of a user
type UserResponse struct {
	ID              uuid.UUID       `json:"id"`
	Username        string          `json:"username"`
	Email           string          `json:"email,omitempty"`
	Role            string          `json:"role"`
	StoreID         *uuid.UUID      `json:"store_id,omitempty"`
	CommissionRate  decimal.Decimal `json:"commission_rate"`
	TotalCommission decimal.Decimal `json:"total_commission"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ToUserResponse converts a user aggregate to its response form
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		Role:            string(u.Role),
		StoreID:         u.StoreID,
		CommissionRate:  u.CommissionRate,
		TotalCommission: u.TotalCommission,
		IsActive:        u.IsActive,
		CreatedAt:       u.CreatedAt,
	}
}
