package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/pos/backend/internal/domain/shared"
)

// Action is the kind of operation being recorded
type Action string

const (
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionLogin   Action = "login"
	ActionLogout  Action = "logout"
	ActionSale    Action = "sale"
	ActionReturn  Action = "return"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// AuditLog is an append-only record of a user action. Entries are written
// inside the same database transaction as the mutation they describe, so a
// rolled-back operation leaves no trace.
type AuditLog struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Action      Action    `gorm:"size:20;not null;index"`
	ModelName   string    `gorm:"size:100;not null;index"`
	ObjectID    string    `gorm:"size:100;not null"`
	Description string    `gorm:"type:text"`
	IPAddress   string    `gorm:"size:45"`
	CreatedAt   time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (AuditLog) TableName() string {
	return "audit_logs"
}

// NewAuditLog creates an audit entry
func NewAuditLog(userID uuid.UUID, action Action, modelName, objectID, description, ipAddress string) (*AuditLog, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if modelName == "" {
		return nil, shared.NewDomainError("INVALID_MODEL", "Model name cannot be empty")
	}

	return &AuditLog{
		ID:          uuid.New(),
		UserID:      userID,
		Action:      action,
		ModelName:   modelName,
		ObjectID:    objectID,
		Description: description,
		IPAddress:   ipAddress,
		CreatedAt:   time.Now(),
	}, nil
}
