package domain

import "github.com/google/uuid"

// Column is an ordered item of a board. Position is dense and zero based per board.
type Column struct {
	BaseModel
	BoardID  uuid.UUID `gorm:"type:uuid;not null;index:idx_board_columns_board_position,priority:1" json:"board_id"`
	Name     string    `gorm:"type:varchar(255);not null" json:"name"`
	Position int       `gorm:"not null;index:idx_board_columns_board_position,priority:2" json:"position"`
}

// TableName specifies the table name for Column
func (Column) TableName() string {
	return "board_columns"
}
