package domain

import (
	"time"

	"github.com/google/uuid"
)

// Board belongs to a workspace and owns an ordered list of columns
type Board struct {
	BaseModel
	WorkspaceID uuid.UUID `gorm:"type:uuid;not null;index:idx_boards_workspace_id" json:"workspace_id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	ImageKey    string    `gorm:"type:text" json:"image_key"`
	CreatedBy   uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
}

// TableName specifies the table name for Board
func (Board) TableName() string {
	return "boards"
}

// BoardMember is the membership edge between a user and a board
type BoardMember struct {
	BaseModel
	BoardID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_board_members_board_id;uniqueIndex:uq_board_members_board_user" json:"board_id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index:idx_board_members_user_id;uniqueIndex:uq_board_members_board_user" json:"user_id"`
	Role         Role       `gorm:"type:varchar(20);not null" json:"role"`
	JoinedAt     time.Time  `gorm:"not null" json:"joined_at"`
	LastViewedAt *time.Time `gorm:"index:idx_board_members_last_viewed" json:"last_viewed_at"`
}

// TableName specifies the table name for BoardMember
func (BoardMember) TableName() string {
	return "board_members"
}

// FavoriteBoard marks a board as a favorite of one user
type FavoriteBoard struct {
	BaseModel
	BoardID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_favorite_boards_board_user" json:"board_id"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;index:idx_favorite_boards_user_id;uniqueIndex:uq_favorite_boards_board_user" json:"user_id"`
}

// TableName specifies the table name for FavoriteBoard
func (FavoriteBoard) TableName() string {
	return "favorite_boards"
}
