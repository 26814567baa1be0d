package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateCardRequest represents the request to create a card at the end of a column
// @Description labelIds must belong to the board and memberIds must be board members
type CreateCardRequest struct {
	Title       string      `json:"title" binding:"required,notblank,max=255" example:"Write release notes"`
	Description string      `json:"description" binding:"max=10000"`
	DueDate     *time.Time  `json:"dueDate,omitempty" example:"2026-11-01T12:00:00Z"`
	LabelIDs    []uuid.UUID `json:"labelIds,omitempty" binding:"omitempty,max=50"`
	MemberIDs   []uuid.UUID `json:"memberIds,omitempty" binding:"omitempty,max=50"`
}

// UpdateCardRequest represents the request to update a card. All fields are optional.
type UpdateCardRequest struct {
	Title       *string `json:"title" binding:"omitempty,notblank,max=255"`
	Description *string `json:"description" binding:"omitempty,max=10000"`
}

// MoveCardRequest moves a card to a column of the same board
// @Description newPosition is optional; without it the card goes to the end of newColumnId
type MoveCardRequest struct {
	NewColumnID uuid.UUID `json:"newColumnId" binding:"required"`
	NewPosition *int      `json:"newPosition,omitempty" example:"0"`
}

// DeadlineRequest sets or clears (null) the due date of a card
type DeadlineRequest struct {
	DueDate *time.Time `json:"dueDate"`
}

// CardResponse represents the card response
type CardResponse struct {
	ID          uuid.UUID   `json:"cardId"`
	ColumnID    uuid.UUID   `json:"columnId"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	IsCompleted bool        `json:"isCompleted"`
	DueDate     *time.Time  `json:"dueDate,omitempty"`
	CoverURL    string      `json:"coverUrl,omitempty"`
	Position    int         `json:"position"`
	LabelIDs    []uuid.UUID `json:"labelIds"`
	MemberIDs   []uuid.UUID `json:"memberIds"`
	CreatedBy   uuid.UUID   `json:"createdBy"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// CardMemberResponse represents a user assigned to a card
type CardMemberResponse struct {
	UserID    uuid.UUID `json:"userId"`
	CreatedAt time.Time `json:"assignedAt"`
}

// ToggleLabelResponse reports the labels of the card after a toggle
type ToggleLabelResponse struct {
	Attached bool            `json:"attached"`
	Labels   []LabelResponse `json:"labels"`
}
