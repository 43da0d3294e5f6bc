package audit

import (
	"context"

	"github.com/google/uuid"

	"github.com/pos/backend/internal/domain/shared"
)

// AuditLogRepository is the append-only persistence port for audit entries.
// There is no update or delete; history is immutable once written.
type AuditLogRepository interface {
	Append(ctx context.Context, entry *AuditLog) error
	FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]*AuditLog, int64, error)
	FindByModel(ctx context.Context, modelName, objectID string) ([]*AuditLog, error)
}
