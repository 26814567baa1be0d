package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateCommentRequest represents the request to create a new comment
type CreateCommentRequest struct {
	Text string `json:"text" binding:"required,notblank,max=5000" example:"Looks good to me"`
}

// CommentResponse represents the comment response
type CommentResponse struct {
	ID        uuid.UUID `json:"commentId"`
	CardID    uuid.UUID `json:"cardId"`
	AuthorID  uuid.UUID `json:"authorId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}
