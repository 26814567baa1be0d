package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/itrun-git/itrun-back/internal/domain"
)

// ActivityRepository stores the structural change log of boards
type ActivityRepository interface {
	WithTx(tx *gorm.DB) ActivityRepository
	Create(ctx context.Context, activity *domain.Activity) error
	ListByBoard(ctx context.Context, boardID uuid.UUID, limit int) ([]*domain.Activity, error)
}

type activityRepositoryImpl struct {
	db *gorm.DB
}

// NewActivityRepository creates a new instance of ActivityRepository
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepositoryImpl{db: db}
}

// WithTx returns a repository bound to tx
func (r *activityRepositoryImpl) WithTx(tx *gorm.DB) ActivityRepository {
	return &activityRepositoryImpl{db: tx}
}

func (r *activityRepositoryImpl) Create(ctx context.Context, activity *domain.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

// ListByBoard lists the newest entries first
func (r *activityRepositoryImpl) ListByBoard(ctx context.Context, boardID uuid.UUID, limit int) ([]*domain.Activity, error) {
	var activities []*domain.Activity
	err := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("created_at DESC").
		Limit(limit).
		Find(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}
