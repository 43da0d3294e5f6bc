package catalog

import (
	"github.com/pos/backend/internal/domain/shared"
)

// Store is a physical retail location. Each store carries its own stock
// levels and its own sales attribution.
type Store struct {
	shared.BaseEntity
	Name    string `gorm:"type:varchar(200);not null"`
	Address string `gorm:"type:text"`
	Phone   string `gorm:"type:varchar(20)"`
	Email   string `gorm:"type:varchar(254)"`
}

// TableName returns the table name for GORM
func (Store) TableName() string {
	return "stores"
}

// NewStore creates a new store
func NewStore(name, address, phone, email string) (*Store, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Store name cannot be empty")
	}
	return &Store{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Address:    address,
		Phone:      phone,
		Email:      email,
	}, nil
}
