package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*User, error)

	// FindByIDForUpdate finds a user by ID holding an exclusive row lock.
	// Used when crediting commission so concurrent sales by the same user
	// cannot lose an increment. Only meaningful inside a transaction scope.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByRoles finds users holding any of the given roles
	FindByRoles(ctx context.Context, roles ...Role) ([]User, error)

	// Save creates or updates a user
	Save(ctx context.Context, user *User) error
}
