package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CreateBoardRequest represents the request to create a new board.
// The optional image is sent as the multipart field "image".
type CreateBoardRequest struct {
	Name string `json:"name" form:"name" binding:"required,notblank,max=255" example:"Sprint 12"`
}

// UpdateBoardRequest represents the request to rename a board
type UpdateBoardRequest struct {
	Name string `json:"name" binding:"required,notblank,max=255" example:"Sprint 12 (done)"`
}

// AddBoardMemberRequest represents the request to add a board member.
// The user must already belong to the workspace.
type AddBoardMemberRequest struct {
	UserID uuid.UUID `json:"userId" binding:"required"`
	Role   string    `json:"role" binding:"omitempty,oneof=admin member" example:"member"`
}

// BoardResponse represents the board response
type BoardResponse struct {
	ID          uuid.UUID `json:"boardId"`
	WorkspaceID uuid.UUID `json:"workspaceId"`
	Name        string    `json:"name" example:"Sprint 12"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	IsFavorite  bool      `json:"isFavorite"`
	CreatedBy   uuid.UUID `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// BoardViewResponse is a board with its ordered columns and their ordered cards
type BoardViewResponse struct {
	BoardResponse
	Columns []ColumnWithCardsResponse `json:"columns"`
	Labels  []LabelResponse           `json:"labels"`
}

// ColumnWithCardsResponse is one column of a board view
type ColumnWithCardsResponse struct {
	ColumnResponse
	Cards []CardResponse `json:"cards"`
}

// ActivityResponse is one entry of a board's activity log
type ActivityResponse struct {
	ID         uuid.UUID       `json:"activityId"`
	ActorID    uuid.UUID       `json:"actorId"`
	Action     string          `json:"action" example:"card.moved"`
	EntityType string          `json:"entityType" example:"card"`
	EntityID   uuid.UUID       `json:"entityId"`
	Payload    json.RawMessage `json:"payload,omitempty" swaggertype:"object"`
	CreatedAt  time.Time       `json:"createdAt"`
}
