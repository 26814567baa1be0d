package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/itrun-git/itrun-back/internal/domain"
	"github.com/itrun-git/itrun-back/internal/repository"
)

// activityLog appends entries to a board's activity log, inside the
// transaction of the change it describes when there is one
type activityLog struct {
	repo   repository.ActivityRepository
	logger *zap.Logger
}

func (l activityLog) record(ctx context.Context, tx *gorm.DB, boardID, actorID uuid.UUID, action domain.ActivityAction, entityType string, entityID uuid.UUID, payload map[string]interface{}) error {
	var raw datatypes.JSON
	if len(payload) > 0 {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal activity payload: %w", err)
		}
		raw = b
	}
	repo := l.repo
	if tx != nil {
		repo = repo.WithTx(tx)
	}
	return repo.Create(ctx, &domain.Activity{
		BoardID:    boardID,
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Payload:    raw,
	})
}

// recordAfter logs a change that already committed. Failures are logged only.
func (l activityLog) recordAfter(ctx context.Context, boardID, actorID uuid.UUID, action domain.ActivityAction, entityType string, entityID uuid.UUID, payload map[string]interface{}) {
	if err := l.record(ctx, nil, boardID, actorID, action, entityType, entityID, payload); err != nil {
		l.logger.Warn("Failed to record activity",
			zap.String("board_id", boardID.String()),
			zap.String("action", string(action)),
			zap.Error(err))
	}
}
