package domain

import "github.com/google/uuid"

// Comment represents a comment on a card
type Comment struct {
	BaseModel
	CardID   uuid.UUID `gorm:"type:uuid;not null;index:idx_comments_card_id" json:"card_id"`
	AuthorID uuid.UUID `gorm:"type:uuid;not null;index:idx_comments_author_id" json:"author_id"`
	Text     string    `gorm:"type:text;not null" json:"text"`
}

// TableName specifies the table name for Comment
func (Comment) TableName() string {
	return "comments"
}
