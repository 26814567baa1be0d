package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateColumnRequest represents the request to create a column at the end of a board
type CreateColumnRequest struct {
	Name string `json:"name" binding:"required,notblank,max=255" example:"In progress"`
}

// UpdateColumnRequest represents the request to rename a column
type UpdateColumnRequest struct {
	Name string `json:"name" binding:"required,notblank,max=255" example:"Review"`
}

// MoveColumnRequest moves a column inside its board
// @Description newPosition is zero based and must be within 0..n-1
type MoveColumnRequest struct {
	NewPosition *int `json:"newPosition" binding:"required" example:"0"`
}

// CopyColumnRequest copies a column with its cards.
// targetBoardId defaults to the column's own board.
type CopyColumnRequest struct {
	TargetBoardID *uuid.UUID `json:"targetBoardId,omitempty"`
}

// ColumnResponse represents the column response
type ColumnResponse struct {
	ID        uuid.UUID `json:"columnId"`
	BoardID   uuid.UUID `json:"boardId"`
	Name      string    `json:"name" example:"To do"`
	Position  int       `json:"position" example:"0"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MoveAllCardsResponse reports how many cards were moved
type MoveAllCardsResponse struct {
	Moved int `json:"moved" example:"7"`
}
