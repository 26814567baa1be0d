package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/itrun-git/itrun-back/internal/authz"
	"github.com/itrun-git/itrun-back/internal/domain"
	"github.com/itrun-git/itrun-back/internal/dto"
	"github.com/itrun-git/itrun-back/internal/metrics"
	"github.com/itrun-git/itrun-back/internal/ordering"
	"github.com/itrun-git/itrun-back/internal/repository"
	"github.com/itrun-git/itrun-back/internal/response"
)

// CardService defines the interface for card business logic.
// Paths carry workspace, board and column ids; card operations add the card id.
type CardService interface {
	CreateCard(ctx context.Context, userID uuid.UUID, path authz.Path, req *dto.CreateCardRequest) (*dto.CardResponse, error)
	ListCards(ctx context.Context, userID uuid.UUID, path authz.Path) ([]dto.CardResponse, error)
	GetCard(ctx context.Context, userID uuid.UUID, path authz.Path) (*dto.CardResponse, error)
	UpdateCard(ctx context.Context, userID uuid.UUID, path authz.Path, req *dto.UpdateCardRequest) (*dto.CardResponse, error)
	DeleteCard(ctx context.Context, userID uuid.UUID, path authz.Path) error
	MoveCard(ctx context.Context, userID uuid.UUID, path authz.Path, req *dto.MoveCardRequest) (*dto.CardResponse, error)
	SetCompleted(ctx context.Context, userID uuid.UUID, path authz.Path, completed bool) (*dto.CardResponse, error)
	SetDeadline(ctx context.Context, userID uuid.UUID, path authz.Path, dueDate *time.Time) (*dto.CardResponse, error)

	ListMembers(ctx context.Context, userID uuid.UUID, path authz.Path) ([]dto.CardMemberResponse, error)
	AddMember(ctx context.Context, userID uuid.UUID, path authz.Path, targetID uuid.UUID) error
	RemoveMember(ctx context.Context, userID uuid.UUID, path authz.Path, targetID uuid.UUID) error
	Subscribe(ctx context.Context, userID uuid.UUID, path authz.Path) error
	Unsubscribe(ctx context.Context, userID uuid.UUID, path authz.Path) error

	ListLabels(ctx context.Context, userID uuid.UUID, path authz.Path) ([]dto.LabelResponse, error)
	ToggleLabel(ctx context.Context, userID uuid.UUID, path authz.Path, labelID uuid.UUID) (*dto.ToggleLabelResponse, error)
}

// cardServiceImpl is the implementation of CardService
type cardServiceImpl struct {
	gate      *authz.Gate
	engine    *ordering.Engine
	cardRepo  repository.CardRepository
	boardRepo repository.BoardRepository
	labelRepo repository.LabelRepository
	activity  activityLog
	s3Client  S3Client
	files     *fileJanitor
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewCardService creates a new instance of CardService
func NewCardService(
	gate *authz.Gate,
	engine *ordering.Engine,
	cardRepo repository.CardRepository,
	boardRepo repository.BoardRepository,
	labelRepo repository.LabelRepository,
	activityRepo repository.ActivityRepository,
	fileDeletionRepo repository.FileDeletionRepository,
	s3Client S3Client,
	m *metrics.Metrics,
	logger *zap.Logger,
) CardService {
	return &cardServiceImpl{
		gate:      gate,
		engine:    engine,
		cardRepo:  cardRepo,
		boardRepo: boardRepo,
		labelRepo: labelRepo,
		activity:  activityLog{repo: activityRepo, logger: logger},
		s3Client:  s3Client,
		files:     &fileJanitor{s3: s3Client, pending: fileDeletionRepo, logger: logger},
		metrics:   m,
		logger:    logger,
	}
}

// CreateCard appends a card to the column with optional labels and members
func (s *cardServiceImpl) CreateCard(ctx context.Context, userID uuid.UUID, path authz.Path, req *dto.CreateCardRequest) (*dto.CardResponse, error) {
	path.CardID = uuid.Nil
	res, err := s.gate.Authorize(ctx, path, userID, authz.AnyMember)
	if err != nil {
		return nil, err
	}

	labelIDs := removeDuplicateUUIDs(req.LabelIDs)
	memberIDs := removeDuplicateUUIDs(req.MemberIDs)
	if err := s.checkLabels(ctx, res.Board.ID, labelIDs); err != nil {
		return nil, err
	}
	if err := s.checkBoardMembers(ctx, res.Board.ID, memberIDs); err != nil {
		return nil, err
	}

	card := &domain.Card{
		ColumnID:    res.Column.ID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		DueDate:     req.DueDate,
		CreatedBy:   userID,
	}
	_, err = s.engine.Append(ctx, ordering.Cards, res.Column.ID, func(tx *gorm.DB, position int) error {
		cards := s.cardRepo.WithTx(tx)
		card.Position = position
		if err := cards.Create(ctx, card); err != nil {
			return err
		}
		links := make([]*domain.CardLabel, len(labelIDs))
		for i, id := range labelIDs {
			links[i] = &domain.CardLabel{CardID: card.ID, LabelID: id}
		}
		if err := cards.AddLabels(ctx, links); err != nil {
			return err
		}
		members := make([]*domain.CardMember, len(memberIDs))
		for i, id := range memberIDs {
			members[i] = &domain.CardMember{CardID: card.ID, UserID: id}
		}
		if err := cards.AddMembers(ctx, members); err != nil {
			return err
		}
		return s.activity.record(ctx, tx, res.Board.ID, userID, domain.ActivityCardCreated, "card", card.ID,
			map[string]interface{}{"columnId": res.Column.ID, "title": card.Title, "position": position})
	})
	if err != nil {
		return nil, orderingError(err, "Column not found")
	}

	if s.metrics != nil {
		s.metrics.IncrementCardCreated()
	}
	s.logger.Info("Card created",
		zap.String("card_id", card.ID.String()),
		zap.String("column_id", res.Column.ID.String()),
		zap.Int("position", card.Position))

	deco := cardDecorations{
		labels:  map[uuid.UUID][]uuid.UUID{card.ID: labelIDs},
		members: map[uuid.UUID][]uuid.UUID{card.ID: memberIDs},
	}
	return toCardResponse(card, deco, s.s3Client.GetFileURL), nil
}

// ListCards lists the column's cards in position order
func (s *cardServiceImpl) ListCards(ctx context.Context, userID uuid.UUID, path authz.Path) ([]dto.CardResponse, error) {
	path.CardID = uuid.Nil
	res, err := s.gate.Authorize(ctx, path, userID, authz.AnyMember)
	if err != nil {
		return nil, err
	}
	cards, err := s.cardRepo.ListByColumn(ctx, res.Column.ID)
	if err != nil {
		return nil, response.NewInternalError("Failed to list cards", err)
	}
	deco, err := loadCardDecorations(ctx, s.cardRepo, cards)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CardResponse, len(cards))
	for i, c := range cards {
		out[i] = *toCardResponse(c, deco, s.s3Client.GetFileURL)
	}
	return out, nil
}

func (s *cardServiceImpl) GetCard(ctx context.Context, userID uuid.UUID, path authz.Path) (*dto.CardResponse, error) {
	res, err := s.gate.Authorize(ctx, path, userID, authz.AnyMember)
	if err != nil {
		return nil, err
	}
	return s.cardResponse(ctx, res.Card)
}

// UpdateCard changes title and description. Absent fields are left alone.
func (s *cardServiceImpl) UpdateCard(ctx context.Context, userID uuid.UUID, path authz.Path, req *dto.UpdateCardRequest) (*dto.CardResponse, error) {
	res, err := s.gate.Authorize(ctx, path, userID, authz.AnyMember)
	if err != nil {
		return nil, err
	}
	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if len(updates) == 0 {
		return s.cardResponse(ctx, res.Card)
	}
	return s.update(ctx, res.Card.ID, updates)
}

// DeleteCard removes the card and closes the gap it leaves in the column
func (s *cardServiceImpl) DeleteCard(ctx context.Context, userID uuid.UUID, path authz.Path) error {
	res, err := s.gate.Authorize(ctx, path, userID, authz.Admin)
	if err != nil {
		return err
	}

	var keys []string
	err = s.engine.DeleteAndCompact(ctx, ordering.Cards, res.Column.ID, res.Card.ID, func(tx *gorm.DB) error {
		var err error
		keys, err = s.cardRepo.WithTx(tx).Delete(ctx, res.Card.ID)
		if err != nil {
			return err
		}
		return s.activity.record(ctx, tx, res.Board.ID, userID, domain.ActivityCardDeleted, "card", res.Card.ID,
			map[string]interface{}{"columnId": res.Column.ID, "title": res.Card.Title})
	})
	if err != nil {
		return orderingError(err, "Card not found")
	}

	s.files.deleteFiles(ctx, "card_deleted", keys...)
	s.logger.Info("Card deleted",
		zap.String("card_id", res.Card.ID.String()),
		zap.String("column_id", res.Column.ID.String()),
		zap.Int("files", len(keys)))
	return nil
}

// MoveCard moves the card within its column or to another column of the same
// board. Without a position the card goes to the end of the target column.
func (s *cardServiceImpl) MoveCard(ctx context.Context, userID uuid.UUID, path authz.Path, req *dto.MoveCardRequest) (*dto.CardResponse, error) {
	res, err := s.gate.Authorize(ctx, path, userID, authz.AnyMember)
	if err != nil {
		return nil, err
	}
	if req.NewColumnID != res.Column.ID {
		if _, err := s.gate.Resolve(ctx, authz.Path{BoardID: res.Board.ID, ColumnID: req.NewColumnID}); err != nil {
			return nil, err
		}
	}

	mv, err := s.engine.MoveAcross(ctx, ordering.Cards, res.Column.ID, req.NewColumnID, res.Card.ID, req.NewPosition)
	if err != nil {
		return nil, orderingError(err, "Card not found")
	}
	if mv.Changed() {
		s.activity.recordAfter(ctx, res.Board.ID, userID, domain.ActivityCardMoved, "card", res.Card.ID,
			map[string]interface{}{
				"fromColumnId": mv.FromParent,
				"toColumnId":   mv.ToParent,
				"from":         mv.From,
				"to":           mv.To,
			})
	}

	card, err := s.cardRepo.FindByID(ctx, res.Card.ID)
	if err != nil {
		return nil, repoError(err, "Card not found", "load card")
	}
	return s.cardResponse(ctx, card)
}

func (s *cardServiceImpl) SetCompleted(ctx context.Context, userID uuid.UUID, path authz.Path, completed bool) (*dto.CardResponse, error) {
	res, err := s.gate.Authorize(ctx, path, userID, authz.AnyMember)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, res.Card.ID, map[string]interface{}{"is_completed": completed})
}

// SetDeadline sets or, with a nil date, clears the due date
func (s *cardServiceImpl) SetDeadline(ctx context.Context, userID uuid.UUID, path authz.Path, dueDate *time.Time) (*dto.CardResponse, error) {
	res, err := s.gate.Authorize(ctx, path, userID, authz.AnyMember)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, res.Card.ID, map[string]interface{}{"due_date": dueDate})
}

func (s *cardServiceImpl) ListMembers(ctx context.Context, userID uuid.UUID, path authz.Path) ([]dto.CardMemberResponse, error) {
	res, err := s.gate.Authorize(ctx, path, userID, authz.AnyMember)
	if err != nil {
		return nil, err
	}
	members, err := s.cardRepo.ListMembers(ctx, res.Card.ID)
	if err != nil {
		return nil, response.NewInternalError("Failed to list card members", err)
	}
	out := make([]dto.CardMemberResponse, len(members))
	for i, m := range members {
		out[i] = dto.CardMemberResponse{UserID: m.UserID, CreatedAt: m.CreatedAt}
	}
	return out, nil
}

// AddMember assigns a board member to the card
func (s *cardServiceImpl) AddMember(ctx context.Context, userID uuid.UUID, path authz.Path, targetID uuid.UUID) error {
	res, err := s.gate.Authorize(ctx, path, userID, authz.Admin)
	if err != nil {
		return err
	}
	if err := s.checkBoardMembers(ctx, res.Board.ID, []uuid.UUID{targetID}); err != nil {
		return err
	}
	return s.assign(ctx, res.Card.ID, targetID, "User is already assigned to this card")
}

func (s *cardServiceImpl) RemoveMember(ctx context.Context, userID uuid.UUID, path authz.Path, targetID uuid.UUID) error {
	res, err := s.gate.Authorize(ctx, path, userID, authz.Admin)
	if err != nil {
		return err
	}
	return s.unassign(ctx, res.Card.ID, targetID, "User is not assigned to this card")
}

// Subscribe assigns the caller to the card
func (s *cardServiceImpl) Subscribe(ctx context.Context, userID uuid.UUID, path authz.Path) error {
	res, err := s.gate.Authorize(ctx, path, userID, authz.AnyMember)
	if err != nil {
		return err
	}
	return s.assign(ctx, res.Card.ID, userID, "You are already subscribed to this card")
}

func (s *cardServiceImpl) Unsubscribe(ctx context.Context, userID uuid.UUID, path authz.Path) error {
	res, err := s.gate.Authorize(ctx, path, userID, authz.AnyMember)
	if err != nil {
		return err
	}
	return s.unassign(ctx, res.Card.ID, userID, "You are not subscribed to this card")
}

func (s *cardServiceImpl) ListLabels(ctx context.Context, userID uuid.UUID, path authz.Path) ([]dto.LabelResponse, error) {
	res, err := s.gate.Authorize(ctx, path, userID, authz.AnyMember)
	if err != nil {
		return nil, err
	}
	return s.labels(ctx, res.Card.ID)
}

// ToggleLabel attaches the label when absent and detaches it otherwise
func (s *cardServiceImpl) ToggleLabel(ctx context.Context, userID uuid.UUID, path authz.Path, labelID uuid.UUID) (*dto.ToggleLabelResponse, error) {
	res, err := s.gate.Authorize(ctx, path, userID, authz.AnyMember)
	if err != nil {
		return nil, err
	}
	label, err := s.labelRepo.FindByID(ctx, labelID)
	if err != nil || label.BoardID != res.Board.ID {
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewInternalError("Failed to load label", err)
		}
		return nil, response.NewNotFoundError("Label not found")
	}

	removed, err := s.cardRepo.RemoveLabel(ctx, res.Card.ID, labelID)
	if err != nil {
		return nil, response.NewInternalError("Failed to detach label", err)
	}
	if !removed {
		err := s.cardRepo.AddLabels(ctx, []*domain.CardLabel{{CardID: res.Card.ID, LabelID: labelID}})
		if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.NewInternalError("Failed to attach label", err)
		}
	}

	labels, err := s.labels(ctx, res.Card.ID)
	if err != nil {
		return nil, err
	}
	return &dto.ToggleLabelResponse{Attached: !removed, Labels: labels}, nil
}

func (s *cardServiceImpl) labels(ctx context.Context, cardID uuid.UUID) ([]dto.LabelResponse, error) {
	labels, err := s.cardRepo.ListLabels(ctx, cardID)
	if err != nil {
		return nil, response.NewInternalError("Failed to list card labels", err)
	}
	return toLabelResponses(labels), nil
}

func (s *cardServiceImpl) assign(ctx context.Context, cardID, userID uuid.UUID, duplicateMsg string) error {
	err := s.cardRepo.AddMembers(ctx, []*domain.CardMember{{CardID: cardID, UserID: userID}})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return response.NewAppError(response.ErrCodeAlreadyExists, duplicateMsg, "")
	}
	if err != nil {
		return response.NewInternalError("Failed to assign card member", err)
	}
	return nil
}

func (s *cardServiceImpl) unassign(ctx context.Context, cardID, userID uuid.UUID, missingMsg string) error {
	removed, err := s.cardRepo.RemoveMember(ctx, cardID, userID)
	if err != nil {
		return response.NewInternalError("Failed to remove card member", err)
	}
	if !removed {
		return response.NewNotFoundError(missingMsg)
	}
	return nil
}

// checkLabels fails unless every id names a label of the board
func (s *cardServiceImpl) checkLabels(ctx context.Context, boardID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	n, err := s.labelRepo.CountInBoard(ctx, boardID, ids)
	if err != nil {
		return response.NewInternalError("Failed to check labels", err)
	}
	if n != int64(len(ids)) {
		return response.NewBadRequestError("Labels must belong to this board")
	}
	return nil
}

// checkBoardMembers fails unless every id is a member of the board
func (s *cardServiceImpl) checkBoardMembers(ctx context.Context, boardID uuid.UUID, ids []uuid.UUID) error {
	for _, id := range ids {
		if _, err := s.boardRepo.FindMember(ctx, boardID, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewBadRequestError("User is not a member of this board")
			}
			return response.NewInternalError("Failed to check board membership", err)
		}
	}
	return nil
}

func (s *cardServiceImpl) update(ctx context.Context, cardID uuid.UUID, updates map[string]interface{}) (*dto.CardResponse, error) {
	if err := s.cardRepo.Update(ctx, cardID, updates); err != nil {
		return nil, repoError(err, "Card not found", "update card")
	}
	card, err := s.cardRepo.FindByID(ctx, cardID)
	if err != nil {
		return nil, repoError(err, "Card not found", "load card")
	}
	return s.cardResponse(ctx, card)
}

func (s *cardServiceImpl) cardResponse(ctx context.Context, card *domain.Card) (*dto.CardResponse, error) {
	deco, err := loadCardDecorations(ctx, s.cardRepo, []*domain.Card{card})
	if err != nil {
		return nil, err
	}
	return toCardResponse(card, deco, s.s3Client.GetFileURL), nil
}
