package domain

import (
	"time"

	"github.com/google/uuid"
)

// Visibility of a workspace
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityPublic  Visibility = "public"
)

// IsValid reports whether v is a known visibility
func (v Visibility) IsValid() bool {
	return v == VisibilityPrivate || v == VisibilityPublic
}

// Workspace is the top-level container of boards
type Workspace struct {
	BaseModel
	Name       string     `gorm:"type:varchar(100);not null;uniqueIndex:uq_workspaces_name" json:"name"`
	Visibility Visibility `gorm:"type:varchar(20);not null;default:'private'" json:"visibility"`
	ImageKey   string     `gorm:"type:text" json:"image_key"`
	CreatedBy  uuid.UUID  `gorm:"type:uuid;not null;index:idx_workspaces_created_by" json:"created_by"`
}

// TableName specifies the table name for Workspace
func (Workspace) TableName() string {
	return "workspaces"
}

// WorkspaceMember is the membership edge between a user and a workspace
type WorkspaceMember struct {
	BaseModel
	WorkspaceID uuid.UUID `gorm:"type:uuid;not null;index:idx_workspace_members_workspace_id;uniqueIndex:uq_workspace_members_workspace_user" json:"workspace_id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index:idx_workspace_members_user_id;uniqueIndex:uq_workspace_members_workspace_user" json:"user_id"`
	Role        Role      `gorm:"type:varchar(20);not null" json:"role"`
	JoinedAt    time.Time `gorm:"not null" json:"joined_at"`
}

// TableName specifies the table name for WorkspaceMember
func (WorkspaceMember) TableName() string {
	return "workspace_members"
}
