package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("creates active user with default commission rate", func(t *testing.T) {
		user, err := NewUser("alice", "alice@example.com", "hashed", RoleStaff)

		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, RoleStaff, user.Role)
		assert.True(t, user.IsActive)
		assert.True(t, user.CommissionRate.Equal(decimal.NewFromFloat(5.00)))
		assert.True(t, user.TotalCommission.IsZero())
	})

	t.Run("rejects empty username", func(t *testing.T) {
		_, err := NewUser("", "a@b.com", "hashed", RoleStaff)
		assert.Error(t, err)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		_, err := NewUser("bob", "b@b.com", "hashed", Role("superuser"))
		assert.Error(t, err)
	})
}

func TestRole_Capabilities(t *testing.T) {
	tests := []struct {
		role             Role
		globalScope      bool
		processSales     bool
		manageInventory  bool
		approveTransfers bool
	}{
		{RoleDirector, true, true, true, true},
		{RoleAdmin, true, true, true, true},
		{RoleManager, false, true, true, false},
		{RoleStaff, false, true, false, false},
		{RoleTechnician, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.globalScope, tt.role.HasGlobalScope())
			assert.Equal(t, tt.processSales, tt.role.CanProcessSales())
			assert.Equal(t, tt.manageInventory, tt.role.CanManageInventory())
			assert.Equal(t, tt.approveTransfers, tt.role.CanApproveTransfers())
		})
	}
}

func TestUser_CanAccessStore(t *testing.T) {
	storeA := uuid.New()
	storeB := uuid.New()

	t.Run("global roles access any store", func(t *testing.T) {
		admin, err := NewUser("admin", "", "hashed", RoleAdmin)
		require.NoError(t, err)

		assert.True(t, admin.CanAccessStore(storeA))
		assert.True(t, admin.CanAccessStore(storeB))
	})

	t.Run("store roles access only their store", func(t *testing.T) {
		staff, err := NewUser("staff", "", "hashed", RoleStaff)
		require.NoError(t, err)
		staff.AssignStore(storeA)

		assert.True(t, staff.CanAccessStore(storeA))
		assert.False(t, staff.CanAccessStore(storeB))
	})

	t.Run("unassigned store role accesses nothing", func(t *testing.T) {
		staff, err := NewUser("staff2", "", "hashed", RoleStaff)
		require.NoError(t, err)

		assert.False(t, staff.CanAccessStore(storeA))
	})
}

func TestUser_CreditCommission(t *testing.T) {
	t.Run("accumulates commission", func(t *testing.T) {
		user, err := NewUser("cashier", "", "hashed", RoleStaff)
		require.NoError(t, err)

		require.NoError(t, user.CreditCommission(decimal.NewFromFloat(58.00)))
		require.NoError(t, user.CreditCommission(decimal.NewFromFloat(12.50)))

		assert.True(t, user.TotalCommission.Equal(decimal.NewFromFloat(70.50)))
		assert.Equal(t, 2, user.Version)
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		user, err := NewUser("cashier2", "", "hashed", RoleStaff)
		require.NoError(t, err)

		assert.Error(t, user.CreditCommission(decimal.NewFromFloat(-1)))
		assert.True(t, user.TotalCommission.IsZero())
	})
}
