package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/itrun-git/itrun-back/internal/domain"
)

// CardRepository defines the interface for card data access
type CardRepository interface {
	WithTx(tx *gorm.DB) CardRepository
	Create(ctx context.Context, card *domain.Card) error
	CreateBatch(ctx context.Context, cards []*domain.Card) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)
	ListByColumn(ctx context.Context, columnID uuid.UUID) ([]*domain.Card, error)
	ListByColumns(ctx context.Context, columnIDs []uuid.UUID) ([]*domain.Card, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) ([]string, error)

	ListMembers(ctx context.Context, cardID uuid.UUID) ([]*domain.CardMember, error)
	ListMembersOf(ctx context.Context, cardIDs []uuid.UUID) ([]*domain.CardMember, error)
	IsMember(ctx context.Context, cardID, userID uuid.UUID) (bool, error)
	AddMembers(ctx context.Context, members []*domain.CardMember) error
	RemoveMember(ctx context.Context, cardID, userID uuid.UUID) (bool, error)

	ListLabels(ctx context.Context, cardID uuid.UUID) ([]*domain.Label, error)
	ListLabelLinksOf(ctx context.Context, cardIDs []uuid.UUID) ([]*domain.CardLabel, error)
	HasLabel(ctx context.Context, cardID, labelID uuid.UUID) (bool, error)
	AddLabels(ctx context.Context, links []*domain.CardLabel) error
	RemoveLabel(ctx context.Context, cardID, labelID uuid.UUID) (bool, error)
}

type cardRepositoryImpl struct {
	db *gorm.DB
}

// NewCardRepository creates a new instance of CardRepository
func NewCardRepository(db *gorm.DB) CardRepository {
	return &cardRepositoryImpl{db: db}
}

// WithTx returns a repository bound to tx
func (r *cardRepositoryImpl) WithTx(tx *gorm.DB) CardRepository {
	return &cardRepositoryImpl{db: tx}
}

func (r *cardRepositoryImpl) Create(ctx context.Context, card *domain.Card) error {
	return r.db.WithContext(ctx).Create(card).Error
}

// CreateBatch inserts cards in one statement
func (r *cardRepositoryImpl) CreateBatch(ctx context.Context, cards []*domain.Card) error {
	if len(cards) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&cards).Error
}

func (r *cardRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	var card domain.Card
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&card).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

// ListByColumn lists the cards of a column in position order
func (r *cardRepositoryImpl) ListByColumn(ctx context.Context, columnID uuid.UUID) ([]*domain.Card, error) {
	var cards []*domain.Card
	err := r.db.WithContext(ctx).
		Where("column_id = ?", columnID).
		Order("position ASC").
		Find(&cards).Error
	if err != nil {
		return nil, err
	}
	return cards, nil
}

// ListByColumns lists the cards of several columns ordered by column then position
func (r *cardRepositoryImpl) ListByColumns(ctx context.Context, columnIDs []uuid.UUID) ([]*domain.Card, error) {
	if len(columnIDs) == 0 {
		return []*domain.Card{}, nil
	}
	var cards []*domain.Card
	err := r.db.WithContext(ctx).
		Where("column_id IN ?", columnIDs).
		Order("column_id, position ASC").
		Find(&cards).Error
	if err != nil {
		return nil, err
	}
	return cards, nil
}

// Update applies field updates. Position and column_id are owned by the ordering engine.
func (r *cardRepositoryImpl) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&domain.Card{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the card with its comments, attachments, members and labels
func (r *cardRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) ([]string, error) {
	return deleteCardsTx(r.db.WithContext(ctx), []uuid.UUID{id})
}

func (r *cardRepositoryImpl) ListMembers(ctx context.Context, cardID uuid.UUID) ([]*domain.CardMember, error) {
	return r.ListMembersOf(ctx, []uuid.UUID{cardID})
}

func (r *cardRepositoryImpl) ListMembersOf(ctx context.Context, cardIDs []uuid.UUID) ([]*domain.CardMember, error) {
	var members []*domain.CardMember
	if len(cardIDs) == 0 {
		return members, nil
	}
	err := r.db.WithContext(ctx).
		Where("card_id IN ?", cardIDs).
		Order("created_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *cardRepositoryImpl) IsMember(ctx context.Context, cardID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.CardMember{}).
		Where("card_id = ? AND user_id = ?", cardID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *cardRepositoryImpl) AddMembers(ctx context.Context, members []*domain.CardMember) error {
	if len(members) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&members).Error
}

func (r *cardRepositoryImpl) RemoveMember(ctx context.Context, cardID, userID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("card_id = ? AND user_id = ?", cardID, userID).
		Delete(&domain.CardMember{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListLabels lists the labels attached to a card
func (r *cardRepositoryImpl) ListLabels(ctx context.Context, cardID uuid.UUID) ([]*domain.Label, error) {
	var labels []*domain.Label
	err := r.db.WithContext(ctx).
		Joins("JOIN card_labels ON card_labels.label_id = labels.id").
		Where("card_labels.card_id = ?", cardID).
		Order("labels.name ASC").
		Find(&labels).Error
	if err != nil {
		return nil, err
	}
	return labels, nil
}

func (r *cardRepositoryImpl) ListLabelLinksOf(ctx context.Context, cardIDs []uuid.UUID) ([]*domain.CardLabel, error) {
	var links []*domain.CardLabel
	if len(cardIDs) == 0 {
		return links, nil
	}
	if err := r.db.WithContext(ctx).Where("card_id IN ?", cardIDs).Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

func (r *cardRepositoryImpl) HasLabel(ctx context.Context, cardID, labelID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.CardLabel{}).
		Where("card_id = ? AND label_id = ?", cardID, labelID).
		Count(&count).Error
	return count > 0, err
}

func (r *cardRepositoryImpl) AddLabels(ctx context.Context, links []*domain.CardLabel) error {
	if len(links) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&links).Error
}

func (r *cardRepositoryImpl) RemoveLabel(ctx context.Context, cardID, labelID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("card_id = ? AND label_id = ?", cardID, labelID).
		Delete(&domain.CardLabel{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
