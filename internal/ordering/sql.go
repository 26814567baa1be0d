package ordering

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func count(tx *gorm.DB, scope Scope, parentID uuid.UUID) (int, error) {
	var n int64
	if err := tx.Table(scope.Table).Where(scope.Parent+" = ?", parentID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", scope.Name, err)
	}
	return int(n), nil
}

func positionOf(tx *gorm.DB, scope Scope, parentID, itemID uuid.UUID) (int, error) {
	var row struct {
		Position int
	}
	res := tx.Table(scope.Table).
		Select("position").
		Where("id = ? AND "+scope.Parent+" = ?", itemID, parentID).
		Limit(1).
		Scan(&row)
	if res.Error != nil {
		return 0, fmt.Errorf("read %s position: %w", scope.Name, res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, ErrItemNotFound
	}
	return row.Position, nil
}

func list(tx *gorm.DB, scope Scope, parentID uuid.UUID) ([]Entry, error) {
	var entries []Entry
	err := tx.Table(scope.Table).
		Select("id, position").
		Where(scope.Parent+" = ?", parentID).
		Order("position ASC, created_at ASC, id ASC").
		Scan(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", scope.Name, err)
	}
	return entries, nil
}

// shiftRange adds delta to every sibling with position in [from, to]
func shiftRange(tx *gorm.DB, scope Scope, parentID uuid.UUID, from, to, delta int) error {
	if from > to {
		return nil
	}
	return tx.Table(scope.Table).
		Where(scope.Parent+" = ? AND position >= ? AND position <= ?", parentID, from, to).
		UpdateColumn("position", gorm.Expr("position + ?", delta)).Error
}

// shiftFrom adds delta to every sibling with position >= from
func shiftFrom(tx *gorm.DB, scope Scope, parentID uuid.UUID, from, delta int) error {
	return tx.Table(scope.Table).
		Where(scope.Parent+" = ? AND position >= ?", parentID, from).
		UpdateColumn("position", gorm.Expr("position + ?", delta)).Error
}

func place(tx *gorm.DB, scope Scope, itemID uuid.UUID, values map[string]interface{}) error {
	values["updated_at"] = time.Now().UTC()
	return tx.Table(scope.Table).Where("id = ?", itemID).UpdateColumns(values).Error
}

// repack closes gaps inside one parent within an open transaction
func repack(tx *gorm.DB, scope Scope, parentID uuid.UUID) error {
	entries, err := list(tx, scope, parentID)
	if err != nil {
		return err
	}
	for i, entry := range entries {
		if entry.Position != i {
			if err := place(tx, scope, entry.ID, map[string]interface{}{"position": i}); err != nil {
				return err
			}
		}
	}
	return nil
}

func moveWithin(tx *gorm.DB, scope Scope, parentID, itemID uuid.UUID, target int) (int, error) {
	p, err := positionOf(tx, scope, parentID, itemID)
	if err != nil {
		return 0, err
	}
	n, err := count(tx, scope, parentID)
	if err != nil {
		return 0, err
	}
	if target < 0 || target > n-1 {
		return 0, fmt.Errorf("%w: %d not in [0, %d]", ErrInvalidPosition, target, n-1)
	}

	switch {
	case target == p:
		return p, nil
	case target < p:
		if err := shiftRange(tx, scope, parentID, target, p-1, 1); err != nil {
			return 0, err
		}
	default:
		if err := shiftRange(tx, scope, parentID, p+1, target, -1); err != nil {
			return 0, err
		}
	}
	return p, place(tx, scope, itemID, map[string]interface{}{"position": target})
}

// resolveWithinTarget turns an omitted target into the last slot of parent
func resolveWithinTarget(tx *gorm.DB, scope Scope, parentID uuid.UUID, target *int) (int, error) {
	if target != nil {
		return *target, nil
	}
	n, err := count(tx, scope, parentID)
	if err != nil {
		return 0, err
	}
	return n - 1, nil
}
