package domain

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ActivityAction names a structural change recorded in a board's activity log
type ActivityAction string

const (
	ActivityColumnCreated ActivityAction = "column.created"
	ActivityColumnMoved   ActivityAction = "column.moved"
	ActivityColumnCopied  ActivityAction = "column.copied"
	ActivityColumnDeleted ActivityAction = "column.deleted"
	ActivityCardCreated   ActivityAction = "card.created"
	ActivityCardMoved     ActivityAction = "card.moved"
	ActivityCardDeleted   ActivityAction = "card.deleted"
	ActivityCardsMovedAll ActivityAction = "cards.moved_all"
)

// Activity is one entry of a board's activity log
type Activity struct {
	BaseModel
	BoardID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_activities_board_created,priority:1" json:"board_id"`
	ActorID    uuid.UUID      `gorm:"type:uuid;not null" json:"actor_id"`
	Action     ActivityAction `gorm:"type:varchar(50);not null" json:"action"`
	EntityType string         `gorm:"type:varchar(20);not null" json:"entity_type"`
	EntityID   uuid.UUID      `gorm:"type:uuid;not null" json:"entity_id"`
	Payload    datatypes.JSON `json:"payload"`
}

// TableName specifies the table name for Activity
func (Activity) TableName() string {
	return "activities"
}
