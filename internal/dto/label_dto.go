package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateLabelRequest represents the request to create a board label
type CreateLabelRequest struct {
	Name  string `json:"name" binding:"required,notblank,max=100" example:"bug"`
	Color string `json:"color" binding:"required,hexcolor,max=7" example:"#ff0000"`
}

// UpdateLabelRequest represents the request to update a label. All fields are optional.
type UpdateLabelRequest struct {
	Name  *string `json:"name" binding:"omitempty,notblank,max=100"`
	Color *string `json:"color" binding:"omitempty,hexcolor,max=7"`
}

// LabelResponse represents the label response
type LabelResponse struct {
	ID        uuid.UUID `json:"labelId"`
	BoardID   uuid.UUID `json:"boardId"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
}
