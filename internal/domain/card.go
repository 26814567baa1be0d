package domain

import (
	"time"

	"github.com/google/uuid"
)

// Card is an ordered item of a column. Position is dense and zero based per column.
type Card struct {
	BaseModel
	ColumnID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_cards_column_position,priority:1" json:"column_id"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	IsCompleted bool       `gorm:"not null;default:false" json:"is_completed"`
	DueDate     *time.Time `gorm:"index:idx_cards_due_date" json:"due_date"`
	CoverKey    string     `gorm:"type:text" json:"cover_key"`
	Position    int        `gorm:"not null;index:idx_cards_column_position,priority:2" json:"position"`
	CreatedBy   uuid.UUID  `gorm:"type:uuid;not null" json:"created_by"`
}

// TableName specifies the table name for Card
func (Card) TableName() string {
	return "cards"
}

// CardMember assigns a user to a card
type CardMember struct {
	BaseModel
	CardID uuid.UUID `gorm:"type:uuid;not null;index:idx_card_members_card_id;uniqueIndex:uq_card_members_card_user" json:"card_id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_card_members_user_id;uniqueIndex:uq_card_members_card_user" json:"user_id"`
}

// TableName specifies the table name for CardMember
func (CardMember) TableName() string {
	return "card_members"
}

// CardLabel attaches a board label to a card
type CardLabel struct {
	BaseModel
	CardID  uuid.UUID `gorm:"type:uuid;not null;index:idx_card_labels_card_id;uniqueIndex:uq_card_labels_card_label" json:"card_id"`
	LabelID uuid.UUID `gorm:"type:uuid;not null;index:idx_card_labels_label_id;uniqueIndex:uq_card_labels_card_label" json:"label_id"`
}

// TableName specifies the table name for CardLabel
func (CardLabel) TableName() string {
	return "card_labels"
}
