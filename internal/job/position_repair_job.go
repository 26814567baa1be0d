package job

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/itrun-git/itrun-back/internal/lock"
	"github.com/itrun-git/itrun-back/internal/metrics"
	"github.com/itrun-git/itrun-back/internal/ordering"
)

// Repacker is the part of the ordering engine the repair job needs
type Repacker interface {
	Drifted(ctx context.Context, scope ordering.Scope) ([]uuid.UUID, error)
	Repack(ctx context.Context, scope ordering.Scope, parentID uuid.UUID) (int, error)
}

// PositionRepairJob rewrites positions of containers that are no longer dense
type PositionRepairJob struct {
	engine  Repacker
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewPositionRepairJob creates a new PositionRepairJob instance
func NewPositionRepairJob(engine Repacker, m *metrics.Metrics, logger *zap.Logger) *PositionRepairJob {
	return &PositionRepairJob{engine: engine, metrics: m, logger: logger}
}

func (j *PositionRepairJob) Name() string { return "position_repair" }

// Run repacks drifted boards (columns) then drifted columns (cards).
// A parent that is busy is skipped until the next run.
func (j *PositionRepairJob) Run(ctx context.Context) error {
	var errs []error
	for _, scope := range []ordering.Scope{ordering.Columns, ordering.Cards} {
		if err := j.repairScope(ctx, scope); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (j *PositionRepairJob) repairScope(ctx context.Context, scope ordering.Scope) error {
	parents, err := j.engine.Drifted(ctx, scope)
	if err != nil {
		return err
	}
	if len(parents) == 0 {
		return nil
	}

	j.logger.Warn("Found drifted positions",
		zap.String("scope", scope.Name),
		zap.Int("parents", len(parents)),
	)

	var errs []error
	for _, parentID := range parents {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		changed, err := j.engine.Repack(ctx, scope, parentID)
		if errors.Is(err, lock.ErrBusy) {
			j.logger.Debug("Skipping busy parent", zap.String("scope", scope.Name), zap.String("parent_id", parentID.String()))
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("repack %s %s: %w", scope.Name, parentID, err))
			continue
		}
		if j.metrics != nil {
			j.metrics.RecordPositionsRepaired(scope.Name, changed)
		}
		j.logger.Info("Repaired positions",
			zap.String("scope", scope.Name),
			zap.String("parent_id", parentID.String()),
			zap.Int("rows", changed),
		)
	}
	return errors.Join(errs...)
}
