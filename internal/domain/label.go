package domain

import "github.com/google/uuid"

// Label is a board-scoped colored tag
type Label struct {
	BaseModel
	BoardID uuid.UUID `gorm:"type:uuid;not null;index:idx_labels_board_id" json:"board_id"`
	Name    string    `gorm:"type:varchar(100);not null" json:"name"`
	Color   string    `gorm:"type:varchar(7);not null" json:"color"`
}

// TableName specifies the table name for Label
func (Label) TableName() string {
	return "labels"
}
