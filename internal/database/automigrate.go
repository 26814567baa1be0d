package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/itrun-git/itrun-back/internal/domain"
)

// modelInfo holds information about a domain model and its table name
type modelInfo struct {
	model     interface{}
	tableName string
}

func models() []modelInfo {
	return []modelInfo{
		{&domain.Workspace{}, "workspaces"},
		{&domain.WorkspaceMember{}, "workspace_members"},
		{&domain.Board{}, "boards"},
		{&domain.BoardMember{}, "board_members"},
		{&domain.FavoriteBoard{}, "favorite_boards"},
		{&domain.Column{}, "board_columns"},
		{&domain.Card{}, "cards"},
		{&domain.CardMember{}, "card_members"},
		{&domain.Label{}, "labels"},
		{&domain.CardLabel{}, "card_labels"},
		{&domain.Comment{}, "comments"},
		{&domain.Attachment{}, "attachments"},
		{&domain.Activity{}, "activities"},
		{&domain.PendingFileDeletion{}, "pending_file_deletions"},
	}
}

// Models lists every persisted domain model
func Models() []interface{} {
	list := models()
	out := make([]interface{}, len(list))
	for i, m := range list {
		out[i] = m.model
	}
	return out
}

// AutoMigrate runs GORM auto-migration for all domain models
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run auto-migration: %w", err)
	}
	return nil
}

// SafeAutoMigrate migrates table by table so a failure names the table
func SafeAutoMigrate(db *gorm.DB, logger *zap.Logger) error {
	migrator := db.Migrator()
	list := models()

	logger.Info("Starting auto-migration", zap.Int("total_models", len(list)))

	for _, m := range list {
		existed := migrator.HasTable(m.model)
		if err := db.AutoMigrate(m.model); err != nil {
			logger.Error("Failed to migrate table",
				zap.String("table", m.tableName),
				zap.Bool("table_existed", existed),
				zap.Error(err),
			)
			return fmt.Errorf("failed to migrate table %s: %w", m.tableName, err)
		}
		logger.Debug("Migrated table",
			zap.String("table", m.tableName),
			zap.Bool("was_existing", existed),
		)
	}

	logger.Info("Auto-migration completed", zap.Int("tables_migrated", len(list)))
	return nil
}

// SafeAutoMigrateWithRetry runs SafeAutoMigrate up to maxRetries times with linear backoff
func SafeAutoMigrateWithRetry(db *gorm.DB, logger *zap.Logger, maxRetries int) error {
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = SafeAutoMigrate(db, logger)
		if err == nil {
			return nil
		}
		if attempt < maxRetries {
			backoff := time.Duration(attempt) * time.Second
			logger.Warn("Migration attempt failed, retrying",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", maxRetries),
				zap.Duration("backoff", backoff),
				zap.Error(err),
			)
			time.Sleep(backoff)
		}
	}
	return fmt.Errorf("migration failed after %d attempts: %w", maxRetries, err)
}
