package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/itrun-git/itrun-back/internal/domain"
)

// BoardRepository defines the interface for board data access
type BoardRepository interface {
	Create(ctx context.Context, board *domain.Board, owner *domain.BoardMember) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Board, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Board, error)
	ListFavorites(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error)
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Board, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) ([]string, error)

	FindMember(ctx context.Context, boardID, userID uuid.UUID) (*domain.BoardMember, error)
	ListMembers(ctx context.Context, boardID uuid.UUID) ([]*domain.BoardMember, error)
	AddMember(ctx context.Context, member *domain.BoardMember) error
	UpdateMemberRole(ctx context.Context, boardID, userID uuid.UUID, role domain.Role) error
	RemoveMember(ctx context.Context, boardID, userID uuid.UUID) error
	CountMembers(ctx context.Context, boardID uuid.UUID) (int64, error)
	CountAdmins(ctx context.Context, boardID uuid.UUID) (int64, error)
	TouchLastViewed(ctx context.Context, boardID, userID uuid.UUID, at time.Time) error

	AddFavorite(ctx context.Context, favorite *domain.FavoriteBoard) error
	RemoveFavorite(ctx context.Context, boardID, userID uuid.UUID) (bool, error)
	IsFavorite(ctx context.Context, boardID, userID uuid.UUID) (bool, error)
}

// boardRepositoryImpl is the GORM implementation of BoardRepository
type boardRepositoryImpl struct {
	db *gorm.DB
}

// NewBoardRepository creates a new instance of BoardRepository
func NewBoardRepository(db *gorm.DB) BoardRepository {
	return &boardRepositoryImpl{db: db}
}

// Create inserts the board together with its first admin
func (r *boardRepositoryImpl) Create(ctx context.Context, board *domain.Board, owner *domain.BoardMember) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(board).Error; err != nil {
			return err
		}
		owner.BoardID = board.ID
		return tx.Create(owner).Error
	})
}

// FindByID finds a board by its ID
func (r *boardRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	var board domain.Board
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&board).Error; err != nil {
		return nil, err
	}
	return &board, nil
}

// ListByWorkspace lists the boards of a workspace, newest first
func (r *boardRepositoryImpl) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Board, error) {
	var boards []*domain.Board
	err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at DESC").
		Find(&boards).Error
	if err != nil {
		return nil, err
	}
	return boards, nil
}

// ListFavorites lists boards favorited by userID that they can still see
func (r *boardRepositoryImpl) ListFavorites(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error) {
	var boards []*domain.Board
	err := r.db.WithContext(ctx).
		Joins("JOIN favorite_boards ON favorite_boards.board_id = boards.id").
		Joins("JOIN board_members ON board_members.board_id = boards.id AND board_members.user_id = favorite_boards.user_id").
		Where("favorite_boards.user_id = ?", userID).
		Order("favorite_boards.created_at DESC").
		Find(&boards).Error
	if err != nil {
		return nil, err
	}
	return boards, nil
}

// ListRecent lists the boards userID viewed most recently
func (r *boardRepositoryImpl) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Board, error) {
	var boards []*domain.Board
	err := r.db.WithContext(ctx).
		Joins("JOIN board_members ON board_members.board_id = boards.id").
		Where("board_members.user_id = ? AND board_members.last_viewed_at IS NOT NULL", userID).
		Order("board_members.last_viewed_at DESC").
		Limit(limit).
		Find(&boards).Error
	if err != nil {
		return nil, err
	}
	return boards, nil
}

// Update applies column updates to a board
func (r *boardRepositoryImpl) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&domain.Board{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the board with its columns, cards, labels and memberships.
// Returns the object storage keys left behind.
func (r *boardRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) ([]string, error) {
	var keys []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var board domain.Board
		if err := tx.Where("id = ?", id).First(&board).Error; err != nil {
			return err
		}
		var err error
		keys, err = deleteBoardsTx(tx, []uuid.UUID{id})
		return err
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// FindMember finds the membership edge of userID on a board
func (r *boardRepositoryImpl) FindMember(ctx context.Context, boardID, userID uuid.UUID) (*domain.BoardMember, error) {
	var m domain.BoardMember
	err := r.db.WithContext(ctx).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMembers lists members, admins first then by join time
func (r *boardRepositoryImpl) ListMembers(ctx context.Context, boardID uuid.UUID) ([]*domain.BoardMember, error) {
	var members []*domain.BoardMember
	err := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("CASE WHEN role = 'admin' THEN 0 ELSE 1 END, joined_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// AddMember inserts a membership edge
func (r *boardRepositoryImpl) AddMember(ctx context.Context, member *domain.BoardMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// UpdateMemberRole changes the role of an existing edge
func (r *boardRepositoryImpl) UpdateMemberRole(ctx context.Context, boardID, userID uuid.UUID, role domain.Role) error {
	res := r.db.WithContext(ctx).
		Model(&domain.BoardMember{}).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RemoveMember deletes the edge together with the user's card memberships
// and favorite on this board
func (r *boardRepositoryImpl) RemoveMember(ctx context.Context, boardID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("board_id = ? AND user_id = ?", boardID, userID).Delete(&domain.BoardMember{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		cardIDs, err := cardIDsOfBoards(tx, []uuid.UUID{boardID})
		if err != nil {
			return err
		}
		if len(cardIDs) > 0 {
			if err := tx.Where("card_id IN ? AND user_id = ?", cardIDs, userID).Delete(&domain.CardMember{}).Error; err != nil {
				return err
			}
		}
		return tx.Where("board_id = ? AND user_id = ?", boardID, userID).Delete(&domain.FavoriteBoard{}).Error
	})
}

// CountMembers counts every edge of a board
func (r *boardRepositoryImpl) CountMembers(ctx context.Context, boardID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.BoardMember{}).Where("board_id = ?", boardID).Count(&count).Error
	return count, err
}

// CountAdmins counts admin edges of a board
func (r *boardRepositoryImpl) CountAdmins(ctx context.Context, boardID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.BoardMember{}).
		Where("board_id = ? AND role = ?", boardID, domain.RoleAdmin).
		Count(&count).Error
	return count, err
}

// TouchLastViewed records when userID last opened the board
func (r *boardRepositoryImpl) TouchLastViewed(ctx context.Context, boardID, userID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.BoardMember{}).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		UpdateColumn("last_viewed_at", at).Error
}

// AddFavorite inserts a favorite mark
func (r *boardRepositoryImpl) AddFavorite(ctx context.Context, favorite *domain.FavoriteBoard) error {
	return r.db.WithContext(ctx).Create(favorite).Error
}

// RemoveFavorite deletes a favorite mark and reports whether one existed
func (r *boardRepositoryImpl) RemoveFavorite(ctx context.Context, boardID, userID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		Delete(&domain.FavoriteBoard{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// IsFavorite reports whether userID favorited the board
func (r *boardRepositoryImpl) IsFavorite(ctx context.Context, boardID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.FavoriteBoard{}).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		Count(&count).Error
	return count > 0, err
}
