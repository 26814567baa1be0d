package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/itrun-git/itrun-back/internal/domain"
)

// FileDeletionRepository queues object storage keys whose deletion failed
type FileDeletionRepository interface {
	Enqueue(ctx context.Context, keys []string, reason string) error
	ListPending(ctx context.Context, maxAttempts, limit int) ([]*domain.PendingFileDeletion, error)
	Delete(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error
	Count(ctx context.Context) (int64, error)
}

type fileDeletionRepositoryImpl struct {
	db *gorm.DB
}

// NewFileDeletionRepository creates a new instance of FileDeletionRepository
func NewFileDeletionRepository(db *gorm.DB) FileDeletionRepository {
	return &fileDeletionRepositoryImpl{db: db}
}

// Enqueue inserts keys, ignoring keys that are already queued
func (r *fileDeletionRepositoryImpl) Enqueue(ctx context.Context, keys []string, reason string) error {
	if len(keys) == 0 {
		return nil
	}
	rows := make([]*domain.PendingFileDeletion, 0, len(keys))
	for _, key := range keys {
		if key == "" {
			continue
		}
		rows = append(rows, &domain.PendingFileDeletion{FileKey: key, Reason: reason})
	}
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "file_key"}}, DoNothing: true}).
		Create(&rows).Error
}

// ListPending lists queued keys that have not exhausted their attempts, oldest first
func (r *fileDeletionRepositoryImpl) ListPending(ctx context.Context, maxAttempts, limit int) ([]*domain.PendingFileDeletion, error) {
	var rows []*domain.PendingFileDeletion
	err := r.db.WithContext(ctx).
		Where("attempts < ?", maxAttempts).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *fileDeletionRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.PendingFileDeletion{}).Error
}

// MarkFailed bumps the attempt counter and stores the last error
func (r *fileDeletionRepositoryImpl) MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error {
	return r.db.WithContext(ctx).
		Model(&domain.PendingFileDeletion{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": lastError,
		}).Error
}

func (r *fileDeletionRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.PendingFileDeletion{}).Count(&count).Error
	return count, err
}
