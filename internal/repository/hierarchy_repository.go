package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/itrun-git/itrun-back/internal/authz"
	"github.com/itrun-git/itrun-back/internal/domain"
)

// HierarchyRepository serves the lookups of the authorization gate
type HierarchyRepository interface {
	authz.MembershipFinder
	authz.HierarchyFinder
}

type hierarchyRepositoryImpl struct {
	db *gorm.DB
}

// NewHierarchyRepository creates a new instance of HierarchyRepository
func NewHierarchyRepository(db *gorm.DB) HierarchyRepository {
	return &hierarchyRepositoryImpl{db: db}
}

func (r *hierarchyRepositoryImpl) FindWorkspaceMember(ctx context.Context, workspaceID, userID uuid.UUID) (*domain.WorkspaceMember, error) {
	var m domain.WorkspaceMember
	if err := r.db.WithContext(ctx).Where("workspace_id = ? AND user_id = ?", workspaceID, userID).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *hierarchyRepositoryImpl) FindBoardMember(ctx context.Context, boardID, userID uuid.UUID) (*domain.BoardMember, error) {
	var m domain.BoardMember
	if err := r.db.WithContext(ctx).Where("board_id = ? AND user_id = ?", boardID, userID).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *hierarchyRepositoryImpl) FindWorkspace(ctx context.Context, id uuid.UUID) (*domain.Workspace, error) {
	var ws domain.Workspace
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&ws).Error; err != nil {
		return nil, err
	}
	return &ws, nil
}

func (r *hierarchyRepositoryImpl) FindBoard(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	var board domain.Board
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&board).Error; err != nil {
		return nil, err
	}
	return &board, nil
}

func (r *hierarchyRepositoryImpl) FindColumn(ctx context.Context, id uuid.UUID) (*domain.Column, error) {
	var col domain.Column
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&col).Error; err != nil {
		return nil, err
	}
	return &col, nil
}

func (r *hierarchyRepositoryImpl) FindCard(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	var card domain.Card
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&card).Error; err != nil {
		return nil, err
	}
	return &card, nil
}
