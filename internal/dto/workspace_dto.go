package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateWorkspaceRequest represents the request to create a new workspace
// @Description Request body for creating a workspace. visibility defaults to private.
type CreateWorkspaceRequest struct {
	Name       string `json:"name" binding:"required,notblank,max=100" example:"Marketing"`
	Visibility string `json:"visibility" binding:"omitempty,oneof=private public" example:"private"`
}

// UpdateWorkspaceNameRequest represents the request to rename a workspace
type UpdateWorkspaceNameRequest struct {
	Name string `json:"name" binding:"required,notblank,max=100" example:"Marketing EU"`
}

// UpdateWorkspaceVisibilityRequest represents the request to change visibility
type UpdateWorkspaceVisibilityRequest struct {
	Visibility string `json:"visibility" binding:"required,oneof=private public" example:"public"`
}

// JoinWorkspaceRequest carries an invite token
type JoinWorkspaceRequest struct {
	Token string `json:"token" binding:"required,notblank"`
}

// UpdateMemberRoleRequest represents a role change on a workspace or board member.
// Only promotion to admin is allowed.
type UpdateMemberRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin member" example:"admin"`
}

// WorkspaceResponse represents the workspace response
type WorkspaceResponse struct {
	ID         uuid.UUID `json:"workspaceId" example:"539167fb-b599-41ba-9ead-344a6d0b3a2f"`
	Name       string    `json:"name" example:"Marketing"`
	Visibility string    `json:"visibility" example:"private"`
	ImageURL   string    `json:"imageUrl,omitempty"`
	CreatedBy  uuid.UUID `json:"createdBy"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// MemberResponse represents a workspace or board member
type MemberResponse struct {
	UserID   uuid.UUID `json:"userId"`
	Role     string    `json:"role" example:"member"`
	JoinedAt time.Time `json:"joinedAt"`
}

// InviteLinkResponse is returned by the invite-link endpoint
type InviteLinkResponse struct {
	Link      string    `json:"link" example:"http://localhost:3000/invite?token=eyJ..."`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// JoinWorkspaceResponse reports the outcome of an invite
type JoinWorkspaceResponse struct {
	WorkspaceID   uuid.UUID `json:"workspaceId"`
	AlreadyMember bool      `json:"alreadyMember"`
}

// LeaveResponse reports the outcome of leaving a workspace or board.
// Deleted is true when the caller was the only member and the container was removed.
type LeaveResponse struct {
	Deleted bool `json:"deleted"`
}

// MessageResponse is a plain acknowledgement
type MessageResponse struct {
	Message string `json:"message" example:"Member removed"`
}
