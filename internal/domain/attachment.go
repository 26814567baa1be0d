package domain

import "github.com/google/uuid"

// Attachment is a file uploaded to a card.
// FileKey holds the object storage key only, never a full URL.
type Attachment struct {
	BaseModel
	CardID      uuid.UUID `gorm:"type:uuid;not null;index:idx_attachments_card_id" json:"card_id"`
	FileName    string    `gorm:"type:varchar(255);not null" json:"file_name"`
	FileKey     string    `gorm:"type:text;not null" json:"file_key"`
	FileSize    int64     `gorm:"not null" json:"file_size"`
	ContentType string    `gorm:"type:varchar(100);not null" json:"content_type"`
	UploadedBy  uuid.UUID `gorm:"type:uuid;not null;index:idx_attachments_uploaded_by" json:"uploaded_by"`
}

// TableName specifies the table name for Attachment
func (Attachment) TableName() string {
	return "attachments"
}
