package dto

import (
	"time"

	"github.com/google/uuid"
)

// AttachmentResponse represents a file attached to a card
type AttachmentResponse struct {
	ID          uuid.UUID `json:"attachmentId"`
	CardID      uuid.UUID `json:"cardId"`
	FileName    string    `json:"fileName" example:"spec.pdf"`
	FileSize    int64     `json:"fileSize" example:"52344"`
	ContentType string    `json:"contentType" example:"application/pdf"`
	UploadedBy  uuid.UUID `json:"uploadedBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CountResponse wraps a count
type CountResponse struct {
	Count int64 `json:"count" example:"3"`
}

// DownloadURLResponse is a presigned download link
type DownloadURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}
