package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/itrun-git/itrun-back/internal/domain"
)

// LabelRepository defines the interface for board label data access
type LabelRepository interface {
	Create(ctx context.Context, label *domain.Label) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Label, error)
	ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.Label, error)
	CountInBoard(ctx context.Context, boardID uuid.UUID, ids []uuid.UUID) (int64, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type labelRepositoryImpl struct {
	db *gorm.DB
}

// NewLabelRepository creates a new instance of LabelRepository
func NewLabelRepository(db *gorm.DB) LabelRepository {
	return &labelRepositoryImpl{db: db}
}

func (r *labelRepositoryImpl) Create(ctx context.Context, label *domain.Label) error {
	return r.db.WithContext(ctx).Create(label).Error
}

func (r *labelRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Label, error) {
	var label domain.Label
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&label).Error; err != nil {
		return nil, err
	}
	return &label, nil
}

func (r *labelRepositoryImpl) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.Label, error) {
	var labels []*domain.Label
	err := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("name ASC").
		Find(&labels).Error
	if err != nil {
		return nil, err
	}
	return labels, nil
}

// CountInBoard counts how many of ids are labels of boardID
func (r *labelRepositoryImpl) CountInBoard(ctx context.Context, boardID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Label{}).
		Where("board_id = ? AND id IN ?", boardID, ids).
		Count(&count).Error
	return count, err
}

func (r *labelRepositoryImpl) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&domain.Label{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the label and detaches it from every card
func (r *labelRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("label_id = ?", id).Delete(&domain.CardLabel{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Label{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
