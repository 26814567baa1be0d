// Package ordering keeps the position column of sibling rows dense.
//
// Every container (a board for columns, a column for cards) holds items whose
// positions are exactly 0..n-1. Each operation runs in one database
// transaction while holding the lock of every container it touches, so
// concurrent moves on the same container never interleave and a failed
// operation leaves all positions untouched.
package ordering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/itrun-git/itrun-back/internal/lock"
)

var (
	// ErrInvalidPosition is returned when a target index is outside the allowed range
	ErrInvalidPosition = errors.New("ordering: position out of range")
	// ErrItemNotFound is returned when the item is not a child of the claimed parent
	ErrItemNotFound = errors.New("ordering: item not found in parent")
	// ErrSameParent is returned by MoveAll when source and target are the same container
	ErrSameParent = errors.New("ordering: source and target parent are the same")
)

// Scope names the table holding the items and the column referencing their parent
type Scope struct {
	Name   string
	Table  string
	Parent string
}

var (
	// Columns are ordered within a board
	Columns = Scope{Name: "column", Table: "board_columns", Parent: "board_id"}
	// Cards are ordered within a column
	Cards = Scope{Name: "card", Table: "cards", Parent: "column_id"}
)

func (s Scope) lockKey(parentID uuid.UUID) string {
	return s.Table + ":" + parentID.String()
}

// Entry is one item of an ordered snapshot
type Entry struct {
	ID       uuid.UUID
	Position int
}

// Recorder receives engine metrics. *metrics.Metrics implements it.
type Recorder interface {
	RecordOrderingOp(scope, op string)
	RecordLockWait(scope string, wait time.Duration, busy bool)
}

// Engine applies position changes under per-container locks
type Engine struct {
	db       *gorm.DB
	locker   lock.Locker
	logger   *zap.Logger
	recorder Recorder
	tracer   trace.Tracer
}

// Option configures an Engine
type Option func(*Engine)

// WithRecorder attaches a metrics recorder
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// NewEngine creates an Engine
func NewEngine(db *gorm.DB, locker lock.Locker, logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		db:     db,
		locker: locker,
		logger: logger,
		tracer: otel.Tracer("github.com/itrun-git/itrun-back/internal/ordering"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// run takes the locks of parents, opens a transaction and calls fn inside it
func (e *Engine) run(ctx context.Context, scope Scope, op string, parents []uuid.UUID, fn func(tx *gorm.DB) error) error {
	ctx, span := e.tracer.Start(ctx, "ordering."+op, trace.WithAttributes(
		attribute.String("ordering.scope", scope.Name),
		attribute.Int("ordering.parents", len(parents)),
	))
	defer span.End()

	keys := make([]string, len(parents))
	for i, p := range parents {
		keys[i] = scope.lockKey(p)
	}

	start := time.Now()
	release, err := e.locker.Acquire(ctx, keys...)
	if e.recorder != nil {
		e.recorder.RecordLockWait(scope.Name, time.Since(start), errors.Is(err, lock.ErrBusy))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lock not acquired")
		e.logger.Warn("Ordering lock not acquired",
			zap.String("scope", scope.Name),
			zap.String("op", op),
			zap.Strings("keys", keys),
			zap.Error(err),
		)
		return err
	}
	defer release()

	if err := e.db.WithContext(ctx).Transaction(fn); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if e.recorder != nil {
		e.recorder.RecordOrderingOp(scope.Name, op)
	}
	return nil
}

// Append inserts a new item at the end of parent. create receives the
// transaction and the assigned position and must insert the row.
func (e *Engine) Append(ctx context.Context, scope Scope, parentID uuid.UUID, create func(tx *gorm.DB, position int) error) (int, error) {
	var position int
	err := e.run(ctx, scope, "append", []uuid.UUID{parentID}, func(tx *gorm.DB) error {
		n, err := count(tx, scope, parentID)
		if err != nil {
			return err
		}
		position = n
		return create(tx, position)
	})
	return position, err
}

// Move reports where an item was and where it ended up. Both sides are
// read under the parent locks.
type Move struct {
	FromParent uuid.UUID
	ToParent   uuid.UUID
	From       int
	To         int
}

// Changed reports whether the move wrote anything
func (m Move) Changed() bool {
	return m.FromParent != m.ToParent || m.From != m.To
}

// MoveWithin moves an item to target inside its own parent.
// Valid targets are 0..n-1. Moving to the current position writes nothing.
func (e *Engine) MoveWithin(ctx context.Context, scope Scope, parentID, itemID uuid.UUID, target int) (Move, error) {
	mv := Move{FromParent: parentID, ToParent: parentID, To: target}
	err := e.run(ctx, scope, "move_within", []uuid.UUID{parentID}, func(tx *gorm.DB) error {
		from, err := moveWithin(tx, scope, parentID, itemID, target)
		mv.From = from
		return err
	})
	return mv, err
}

// MoveAcross re-parents an item. A nil target appends to the target parent,
// otherwise target must be within 0..m where m is the target's current size.
// When source equals target the call behaves like MoveWithin and a nil
// target means the last slot.
func (e *Engine) MoveAcross(ctx context.Context, scope Scope, sourceID, targetID, itemID uuid.UUID, target *int) (Move, error) {
	mv := Move{FromParent: sourceID, ToParent: targetID}
	if sourceID == targetID {
		err := e.run(ctx, scope, "move_within", []uuid.UUID{sourceID}, func(tx *gorm.DB) error {
			pos, err := resolveWithinTarget(tx, scope, sourceID, target)
			if err != nil {
				return err
			}
			mv.To = pos
			mv.From, err = moveWithin(tx, scope, sourceID, itemID, pos)
			return err
		})
		return mv, err
	}

	err := e.run(ctx, scope, "move_across", []uuid.UUID{sourceID, targetID}, func(tx *gorm.DB) error {
		old, err := positionOf(tx, scope, sourceID, itemID)
		if err != nil {
			return err
		}
		m, err := count(tx, scope, targetID)
		if err != nil {
			return err
		}
		pos := m
		if target != nil {
			pos = *target
			if pos < 0 || pos > m {
				return fmt.Errorf("%w: %d not in [0, %d]", ErrInvalidPosition, pos, m)
			}
		}

		if err := shiftFrom(tx, scope, sourceID, old+1, -1); err != nil {
			return err
		}
		if err := shiftFrom(tx, scope, targetID, pos, 1); err != nil {
			return err
		}
		if err := place(tx, scope, itemID, map[string]interface{}{
			scope.Parent: targetID,
			"position":   pos,
		}); err != nil {
			return err
		}
		mv.From, mv.To = old, pos
		return nil
	})
	return mv, err
}

// DeleteAndCompact calls remove inside the transaction and closes the gap it leaves
func (e *Engine) DeleteAndCompact(ctx context.Context, scope Scope, parentID, itemID uuid.UUID, remove func(tx *gorm.DB) error) error {
	return e.run(ctx, scope, "delete", []uuid.UUID{parentID}, func(tx *gorm.DB) error {
		old, err := positionOf(tx, scope, parentID, itemID)
		if err != nil {
			return err
		}
		if err := remove(tx); err != nil {
			return err
		}
		return shiftFrom(tx, scope, parentID, old+1, -1)
	})
}

// CopyWithAppend appends a duplicate built by clone to targetParentID.
// The source item is never written.
func (e *Engine) CopyWithAppend(ctx context.Context, scope Scope, targetParentID uuid.UUID, clone func(tx *gorm.DB, position int) error) (int, error) {
	var position int
	err := e.run(ctx, scope, "copy", []uuid.UUID{targetParentID}, func(tx *gorm.DB) error {
		n, err := count(tx, scope, targetParentID)
		if err != nil {
			return err
		}
		position = n
		return clone(tx, position)
	})
	return position, err
}

// MoveAll appends every item of source to the end of target keeping their order.
// Returns the number of items moved.
func (e *Engine) MoveAll(ctx context.Context, scope Scope, sourceID, targetID uuid.UUID) (int, error) {
	if sourceID == targetID {
		return 0, ErrSameParent
	}
	var moved int
	err := e.run(ctx, scope, "move_all", []uuid.UUID{sourceID, targetID}, func(tx *gorm.DB) error {
		m, err := count(tx, scope, targetID)
		if err != nil {
			return err
		}
		if err := repack(tx, scope, sourceID); err != nil {
			return err
		}
		res := tx.Table(scope.Table).
			Where(scope.Parent+" = ?", sourceID).
			UpdateColumns(map[string]interface{}{
				scope.Parent: targetID,
				"position":   gorm.Expr("position + ?", m),
			})
		if res.Error != nil {
			return res.Error
		}
		moved = int(res.RowsAffected)
		return nil
	})
	return moved, err
}

// Repack rewrites positions of parent to 0..n-1 keeping the current order.
// Returns the number of rows whose position changed.
func (e *Engine) Repack(ctx context.Context, scope Scope, parentID uuid.UUID) (int, error) {
	var changed int
	err := e.run(ctx, scope, "repack", []uuid.UUID{parentID}, func(tx *gorm.DB) error {
		entries, err := list(tx, scope, parentID)
		if err != nil {
			return err
		}
		for i, entry := range entries {
			if entry.Position == i {
				continue
			}
			if err := place(tx, scope, entry.ID, map[string]interface{}{"position": i}); err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	return changed, err
}

// Positions returns the ordered items of parent
func (e *Engine) Positions(ctx context.Context, scope Scope, parentID uuid.UUID) ([]Entry, error) {
	return list(e.db.WithContext(ctx), scope, parentID)
}

// Drifted lists parents whose positions are not exactly 0..n-1
func (e *Engine) Drifted(ctx context.Context, scope Scope) ([]uuid.UUID, error) {
	var rows []struct {
		ParentID uuid.UUID
	}
	err := e.db.WithContext(ctx).
		Table(scope.Table).
		Select(scope.Parent + " AS parent_id").
		Group(scope.Parent).
		Having("MIN(position) <> 0 OR MAX(position) <> COUNT(*) - 1 OR COUNT(DISTINCT position) <> COUNT(*)").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("find drifted %s parents: %w", scope.Name, err)
	}
	ids := make([]uuid.UUID, len(rows))
	for i, r := range rows {
		ids[i] = r.ParentID
	}
	return ids, nil
}
