package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/itrun-git/itrun-back/internal/domain"
)

// Rows reference their parents by id only, so every delete below removes
// dependents explicitly inside the caller's transaction. Each helper returns
// the object storage keys that became orphaned; the caller deletes those
// after commit.

func deleteCardsTx(tx *gorm.DB, cardIDs []uuid.UUID) ([]string, error) {
	if len(cardIDs) == 0 {
		return nil, nil
	}

	var keys []string
	var attachmentKeys []string
	if err := tx.Model(&domain.Attachment{}).Where("card_id IN ?", cardIDs).Pluck("file_key", &attachmentKeys).Error; err != nil {
		return nil, err
	}
	keys = append(keys, attachmentKeys...)

	var coverKeys []string
	if err := tx.Model(&domain.Card{}).Where("id IN ? AND cover_key <> ''", cardIDs).Pluck("cover_key", &coverKeys).Error; err != nil {
		return nil, err
	}
	keys = append(keys, coverKeys...)

	for _, model := range []interface{}{&domain.Comment{}, &domain.Attachment{}, &domain.CardMember{}, &domain.CardLabel{}} {
		if err := tx.Where("card_id IN ?", cardIDs).Delete(model).Error; err != nil {
			return nil, err
		}
	}
	if err := tx.Where("id IN ?", cardIDs).Delete(&domain.Card{}).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

func deleteColumnsTx(tx *gorm.DB, columnIDs []uuid.UUID) ([]string, error) {
	if len(columnIDs) == 0 {
		return nil, nil
	}

	var cardIDs []uuid.UUID
	if err := tx.Model(&domain.Card{}).Where("column_id IN ?", columnIDs).Pluck("id", &cardIDs).Error; err != nil {
		return nil, err
	}
	keys, err := deleteCardsTx(tx, cardIDs)
	if err != nil {
		return nil, err
	}
	if err := tx.Where("id IN ?", columnIDs).Delete(&domain.Column{}).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

func deleteBoardsTx(tx *gorm.DB, boardIDs []uuid.UUID) ([]string, error) {
	if len(boardIDs) == 0 {
		return nil, nil
	}

	var columnIDs []uuid.UUID
	if err := tx.Model(&domain.Column{}).Where("board_id IN ?", boardIDs).Pluck("id", &columnIDs).Error; err != nil {
		return nil, err
	}
	keys, err := deleteColumnsTx(tx, columnIDs)
	if err != nil {
		return nil, err
	}

	var imageKeys []string
	if err := tx.Model(&domain.Board{}).Where("id IN ? AND image_key <> ''", boardIDs).Pluck("image_key", &imageKeys).Error; err != nil {
		return nil, err
	}
	keys = append(keys, imageKeys...)

	for _, model := range []interface{}{&domain.Label{}, &domain.Activity{}, &domain.FavoriteBoard{}, &domain.BoardMember{}} {
		if err := tx.Where("board_id IN ?", boardIDs).Delete(model).Error; err != nil {
			return nil, err
		}
	}
	if err := tx.Where("id IN ?", boardIDs).Delete(&domain.Board{}).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

// boardIDsOf lists the boards of a workspace
func boardIDsOf(tx *gorm.DB, workspaceID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := tx.Model(&domain.Board{}).Where("workspace_id = ?", workspaceID).Pluck("id", &ids).Error
	return ids, err
}

// cardIDsOfBoards lists every card under the given boards
func cardIDsOfBoards(tx *gorm.DB, boardIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(boardIDs) == 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	err := tx.Model(&domain.Card{}).
		Joins("JOIN board_columns ON board_columns.id = cards.column_id").
		Where("board_columns.board_id IN ?", boardIDs).
		Pluck("cards.id", &ids).Error
	return ids, err
}
