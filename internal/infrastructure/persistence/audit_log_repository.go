package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pos/backend/internal/domain/audit"
	"github.com/pos/backend/internal/domain/shared"
)

// GormAuditLogRepository implements AuditLogRepository using GORM. Entries
// are append-only; there is no update or delete path.
type GormAuditLogRepository struct {
	db *gorm.DB
}

// NewGormAuditLogRepository creates a new GormAuditLogRepository
func NewGormAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

// Append writes a new audit entry
func (r *GormAuditLogRepository) Append(ctx context.Context, entry *audit.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByUser finds audit entries for a user with their total count
func (r *GormAuditLogRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]*audit.AuditLog, int64, error) {
	base := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&audit.AuditLog{}).Where("user_id = ?", userID)
		if action, ok := filter.Filters["action"]; ok {
			query = query.Where("action = ?", action)
		}
		return query
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := base()
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var entries []*audit.AuditLog
	if err := query.Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// FindByModel finds the audit trail of one object, oldest first
func (r *GormAuditLogRepository) FindByModel(ctx context.Context, modelName, objectID string) ([]*audit.AuditLog, error) {
	var entries []*audit.AuditLog
	if err := r.db.WithContext(ctx).
		Where("model_name = ? AND object_id = ?", modelName, objectID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

var _ audit.AuditLogRepository = (*GormAuditLogRepository)(nil)
