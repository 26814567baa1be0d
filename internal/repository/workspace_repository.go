package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/itrun-git/itrun-back/internal/domain"
)

// WorkspaceRepository defines the interface for workspace data access
type WorkspaceRepository interface {
	Create(ctx context.Context, workspace *domain.Workspace, owner *domain.WorkspaceMember) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Workspace, error)
	ExistsByName(ctx context.Context, name string, excludeID uuid.UUID) (bool, error)
	ListByMemberRole(ctx context.Context, userID uuid.UUID, role domain.Role) ([]*domain.Workspace, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) ([]string, error)

	FindMember(ctx context.Context, workspaceID, userID uuid.UUID) (*domain.WorkspaceMember, error)
	ListMembers(ctx context.Context, workspaceID uuid.UUID) ([]*domain.WorkspaceMember, error)
	AddMember(ctx context.Context, member *domain.WorkspaceMember) error
	UpdateMemberRole(ctx context.Context, workspaceID, userID uuid.UUID, role domain.Role) error
	BoardStandings(ctx context.Context, workspaceID, userID uuid.UUID) ([]BoardStanding, error)
	RemoveMember(ctx context.Context, workspaceID, userID uuid.UUID, abandoned []uuid.UUID) ([]string, error)
	CountMembers(ctx context.Context, workspaceID uuid.UUID) (int64, error)
	CountAdmins(ctx context.Context, workspaceID uuid.UUID) (int64, error)
}

// BoardStanding is one board membership of a user together with the
// board's head counts
type BoardStanding struct {
	BoardID   uuid.UUID
	BoardName string
	Role      domain.Role
	Admins    int64
	Members   int64
}

// workspaceRepositoryImpl is the GORM implementation of WorkspaceRepository
type workspaceRepositoryImpl struct {
	db *gorm.DB
}

// NewWorkspaceRepository creates a new instance of WorkspaceRepository
func NewWorkspaceRepository(db *gorm.DB) WorkspaceRepository {
	return &workspaceRepositoryImpl{db: db}
}

// Create inserts the workspace together with its first admin
func (r *workspaceRepositoryImpl) Create(ctx context.Context, workspace *domain.Workspace, owner *domain.WorkspaceMember) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(workspace).Error; err != nil {
			return err
		}
		owner.WorkspaceID = workspace.ID
		return tx.Create(owner).Error
	})
}

// FindByID finds a workspace by its ID
func (r *workspaceRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Workspace, error) {
	var ws domain.Workspace
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&ws).Error; err != nil {
		return nil, err
	}
	return &ws, nil
}

// ExistsByName reports whether another workspace already uses name
func (r *workspaceRepositoryImpl) ExistsByName(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&domain.Workspace{}).Where("name = ?", name)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByMemberRole lists workspaces where userID holds role, newest first
func (r *workspaceRepositoryImpl) ListByMemberRole(ctx context.Context, userID uuid.UUID, role domain.Role) ([]*domain.Workspace, error) {
	var workspaces []*domain.Workspace
	err := r.db.WithContext(ctx).
		Joins("JOIN workspace_members ON workspace_members.workspace_id = workspaces.id").
		Where("workspace_members.user_id = ? AND workspace_members.role = ?", userID, role).
		Order("workspaces.created_at DESC").
		Find(&workspaces).Error
	if err != nil {
		return nil, err
	}
	return workspaces, nil
}

// Update applies column updates to a workspace
func (r *workspaceRepositoryImpl) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&domain.Workspace{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the workspace with every board, column, card and membership
// below it. Returns the object storage keys left behind.
func (r *workspaceRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) ([]string, error) {
	var keys []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ws domain.Workspace
		if err := tx.Where("id = ?", id).First(&ws).Error; err != nil {
			return err
		}
		boardIDs, err := boardIDsOf(tx, id)
		if err != nil {
			return err
		}
		boardKeys, err := deleteBoardsTx(tx, boardIDs)
		if err != nil {
			return err
		}
		keys = append(keys, boardKeys...)
		if ws.ImageKey != "" {
			keys = append(keys, ws.ImageKey)
		}
		if err := tx.Where("workspace_id = ?", id).Delete(&domain.WorkspaceMember{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Workspace{}).Error
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// FindMember finds the membership edge of userID on a workspace
func (r *workspaceRepositoryImpl) FindMember(ctx context.Context, workspaceID, userID uuid.UUID) (*domain.WorkspaceMember, error) {
	var m domain.WorkspaceMember
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMembers lists members, admins first then by join time
func (r *workspaceRepositoryImpl) ListMembers(ctx context.Context, workspaceID uuid.UUID) ([]*domain.WorkspaceMember, error) {
	var members []*domain.WorkspaceMember
	err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("CASE WHEN role = 'admin' THEN 0 ELSE 1 END, joined_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// AddMember inserts a membership edge
func (r *workspaceRepositoryImpl) AddMember(ctx context.Context, member *domain.WorkspaceMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// UpdateMemberRole changes the role of an existing edge
func (r *workspaceRepositoryImpl) UpdateMemberRole(ctx context.Context, workspaceID, userID uuid.UUID, role domain.Role) error {
	res := r.db.WithContext(ctx).
		Model(&domain.WorkspaceMember{}).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// BoardStandings lists the boards of the workspace that userID belongs to
func (r *workspaceRepositoryImpl) BoardStandings(ctx context.Context, workspaceID, userID uuid.UUID) ([]BoardStanding, error) {
	var out []BoardStanding
	err := r.db.WithContext(ctx).
		Table("board_members AS bm").
		Select(`bm.board_id AS board_id, boards.name AS board_name, bm.role AS role,
			(SELECT COUNT(*) FROM board_members a WHERE a.board_id = bm.board_id AND a.role = ?) AS admins,
			(SELECT COUNT(*) FROM board_members m WHERE m.board_id = bm.board_id) AS members`, domain.RoleAdmin).
		Joins("JOIN boards ON boards.id = bm.board_id").
		Where("boards.workspace_id = ? AND bm.user_id = ?", workspaceID, userID).
		Order("boards.name").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveMember deletes the edge and everything that hangs off it inside the
// workspace: board memberships, card memberships and favorites. The abandoned
// boards, which userID was the last member of, are deleted with it. It
// returns the storage keys orphaned by those boards.
func (r *workspaceRepositoryImpl) RemoveMember(ctx context.Context, workspaceID, userID uuid.UUID, abandoned []uuid.UUID) ([]string, error) {
	var keys []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("workspace_id = ? AND user_id = ?", workspaceID, userID).Delete(&domain.WorkspaceMember{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if len(abandoned) > 0 {
			var owned []uuid.UUID
			if err := tx.Model(&domain.Board{}).Where("id IN ? AND workspace_id = ?", abandoned, workspaceID).Pluck("id", &owned).Error; err != nil {
				return err
			}
			var err error
			if keys, err = deleteBoardsTx(tx, owned); err != nil {
				return err
			}
		}

		boardIDs, err := boardIDsOf(tx, workspaceID)
		if err != nil {
			return err
		}
		if len(boardIDs) == 0 {
			return nil
		}
		cardIDs, err := cardIDsOfBoards(tx, boardIDs)
		if err != nil {
			return err
		}
		if len(cardIDs) > 0 {
			if err := tx.Where("card_id IN ? AND user_id = ?", cardIDs, userID).Delete(&domain.CardMember{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("board_id IN ? AND user_id = ?", boardIDs, userID).Delete(&domain.FavoriteBoard{}).Error; err != nil {
			return err
		}
		return tx.Where("board_id IN ? AND user_id = ?", boardIDs, userID).Delete(&domain.BoardMember{}).Error
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// CountMembers counts every edge of a workspace
func (r *workspaceRepositoryImpl) CountMembers(ctx context.Context, workspaceID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.WorkspaceMember{}).Where("workspace_id = ?", workspaceID).Count(&count).Error
	return count, err
}

// CountAdmins counts admin edges of a workspace
func (r *workspaceRepositoryImpl) CountAdmins(ctx context.Context, workspaceID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.WorkspaceMember{}).
		Where("workspace_id = ? AND role = ?", workspaceID, domain.RoleAdmin).
		Count(&count).Error
	return count, err
}
