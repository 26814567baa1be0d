package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/itrun-git/itrun-back/internal/domain"
)

// ColumnRepository defines the interface for column data access.
// Position changes go through the ordering engine, which hands its
// transaction to WithTx.
type ColumnRepository interface {
	WithTx(tx *gorm.DB) ColumnRepository
	Create(ctx context.Context, column *domain.Column) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Column, error)
	ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.Column, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
	Delete(ctx context.Context, id uuid.UUID) ([]string, error)
}

type columnRepositoryImpl struct {
	db *gorm.DB
}

// NewColumnRepository creates a new instance of ColumnRepository
func NewColumnRepository(db *gorm.DB) ColumnRepository {
	return &columnRepositoryImpl{db: db}
}

// WithTx returns a repository bound to tx
func (r *columnRepositoryImpl) WithTx(tx *gorm.DB) ColumnRepository {
	return &columnRepositoryImpl{db: tx}
}

func (r *columnRepositoryImpl) Create(ctx context.Context, column *domain.Column) error {
	return r.db.WithContext(ctx).Create(column).Error
}

func (r *columnRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Column, error) {
	var col domain.Column
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&col).Error; err != nil {
		return nil, err
	}
	return &col, nil
}

// ListByBoard lists the columns of a board in position order
func (r *columnRepositoryImpl) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.Column, error) {
	var cols []*domain.Column
	err := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("position ASC").
		Find(&cols).Error
	if err != nil {
		return nil, err
	}
	return cols, nil
}

func (r *columnRepositoryImpl) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	res := r.db.WithContext(ctx).Model(&domain.Column{}).Where("id = ?", id).Update("name", name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the column and its cards. It does not touch sibling
// positions; callers run it inside DeleteAndCompact.
func (r *columnRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) ([]string, error) {
	return deleteColumnsTx(r.db.WithContext(ctx), []uuid.UUID{id})
}
