package repositories

import (
	"context"

	"github.com/simha10/survey-ops-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// AuditRepository handles audit log data access. Append-only: there is no
// update or delete path, and the append runs inside the caller's transaction
// so an audit entry can never exist without the mutation it describes.
type AuditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// WithTx returns a copy bound to the given transaction
func (r *AuditRepository) WithTx(tx *gorm.DB) *AuditRepository {
	return &AuditRepository{db: tx}
}

// Append writes a new audit entry
func (r *AuditRepository) Append(ctx context.Context, userID uint, action, oldValue, newValue string) error {
	entry := &models.AuditLog{
		UserID:   userID,
		Action:   action,
		OldValue: oldValue,
		NewValue: newValue,
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByUser lists audit entries for a user, newest first
func (r *AuditRepository) ListByUser(ctx context.Context, userID uint, offset, limit int) ([]*models.AuditLog, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.AuditLog{}).Where("user_id = ?", userID)

	var total int64
	q.Count(&total)

	var entries []*models.AuditLog
	err := q.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&entries).Error

	return entries, total, err
}
