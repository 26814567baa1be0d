package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/itrun-git/itrun-back/internal/authz"
	"github.com/itrun-git/itrun-back/internal/domain"
	"github.com/itrun-git/itrun-back/internal/dto"
	"github.com/itrun-git/itrun-back/internal/ordering"
	"github.com/itrun-git/itrun-back/internal/repository"
	"github.com/itrun-git/itrun-back/internal/response"
)

const (
	copySuffix    = " (Copy)"
	maxColumnName = 255
)

// ColumnService defines the interface for column business logic.
// Every path carries the workspace and board ids taken from the route.
type ColumnService interface {
	CreateColumn(ctx context.Context, userID uuid.UUID, path authz.Path, req *dto.CreateColumnRequest) (*dto.ColumnResponse, error)
	ListColumns(ctx context.Context, userID uuid.UUID, path authz.Path) ([]dto.ColumnResponse, error)
	RenameColumn(ctx context.Context, userID uuid.UUID, path authz.Path, name string) (*dto.ColumnResponse, error)
	DeleteColumn(ctx context.Context, userID uuid.UUID, path authz.Path) error
	MoveColumn(ctx context.Context, userID uuid.UUID, path authz.Path, newPosition int) ([]dto.ColumnResponse, error)
	CopyColumn(ctx context.Context, userID uuid.UUID, path authz.Path, targetBoardID *uuid.UUID) (*dto.ColumnResponse, error)
	MoveAllCards(ctx context.Context, userID uuid.UUID, path authz.Path, targetColumnID uuid.UUID) (*dto.MoveAllCardsResponse, error)
}

// columnServiceImpl is the implementation of ColumnService
type columnServiceImpl struct {
	gate       *authz.Gate
	engine     *ordering.Engine
	columnRepo repository.ColumnRepository
	cardRepo   repository.CardRepository
	activity   activityLog
	files      *fileJanitor
	logger     *zap.Logger
}

// NewColumnService creates a new instance of ColumnService
func NewColumnService(
	gate *authz.Gate,
	engine *ordering.Engine,
	columnRepo repository.ColumnRepository,
	cardRepo repository.CardRepository,
	activityRepo repository.ActivityRepository,
	fileDeletionRepo repository.FileDeletionRepository,
	s3Client S3Client,
	logger *zap.Logger,
) ColumnService {
	return &columnServiceImpl{
		gate:       gate,
		engine:     engine,
		columnRepo: columnRepo,
		cardRepo:   cardRepo,
		activity:   activityLog{repo: activityRepo, logger: logger},
		files:      &fileJanitor{s3: s3Client, pending: fileDeletionRepo, logger: logger},
		logger:     logger,
	}
}

// CreateColumn appends a column to the board
func (s *columnServiceImpl) CreateColumn(ctx context.Context, userID uuid.UUID, path authz.Path, req *dto.CreateColumnRequest) (*dto.ColumnResponse, error) {
	path.ColumnID = uuid.Nil
	res, err := s.gate.Authorize(ctx, path, userID, authz.AnyMember)
	if err != nil {
		return nil, err
	}

	column := &domain.Column{BoardID: res.Board.ID, Name: strings.TrimSpace(req.Name)}
	_, err = s.engine.Append(ctx, ordering.Columns, res.Board.ID, func(tx *gorm.DB, position int) error {
		column.Position = position
		if err := s.columnRepo.WithTx(tx).Create(ctx, column); err != nil {
			return err
		}
		return s.activity.record(ctx, tx, res.Board.ID, userID, domain.ActivityColumnCreated, "column", column.ID,
			map[string]interface{}{"name": column.Name, "position": position})
	})
	if err != nil {
		return nil, orderingError(err, "Board not found")
	}

	s.logger.Info("Column created",
		zap.String("column_id", column.ID.String()),
		zap.String("board_id", res.Board.ID.String()),
		zap.Int("position", column.Position))
	return toColumnResponse(column), nil
}

// ListColumns lists the board's columns in position order
func (s *columnServiceImpl) ListColumns(ctx context.Context, userID uuid.UUID, path authz.Path) ([]dto.ColumnResponse, error) {
	path.ColumnID = uuid.Nil
	res, err := s.gate.Authorize(ctx, path, userID, authz.AnyMember)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, res.Board.ID)
}

func (s *columnServiceImpl) RenameColumn(ctx context.Context, userID uuid.UUID, path authz.Path, name string) (*dto.ColumnResponse, error) {
	res, err := s.gate.Authorize(ctx, path, userID, authz.AnyMember)
	if err != nil {
		return nil, err
	}
	if err := s.columnRepo.UpdateName(ctx, res.Column.ID, strings.TrimSpace(name)); err != nil {
		return nil, repoError(err, "Column not found", "rename column")
	}
	column, err := s.columnRepo.FindByID(ctx, res.Column.ID)
	if err != nil {
		return nil, repoError(err, "Column not found", "load column")
	}
	return toColumnResponse(column), nil
}

// DeleteColumn removes the column with its cards and closes the gap it leaves
func (s *columnServiceImpl) DeleteColumn(ctx context.Context, userID uuid.UUID, path authz.Path) error {
	res, err := s.gate.Authorize(ctx, path, userID, authz.Admin)
	if err != nil {
		return err
	}

	var keys []string
	err = s.engine.DeleteAndCompact(ctx, ordering.Columns, res.Board.ID, res.Column.ID, func(tx *gorm.DB) error {
		var err error
		keys, err = s.columnRepo.WithTx(tx).Delete(ctx, res.Column.ID)
		if err != nil {
			return err
		}
		return s.activity.record(ctx, tx, res.Board.ID, userID, domain.ActivityColumnDeleted, "column", res.Column.ID,
			map[string]interface{}{"name": res.Column.Name})
	})
	if err != nil {
		return orderingError(err, "Column not found")
	}

	s.files.deleteFiles(ctx, "column_deleted", keys...)
	s.logger.Info("Column deleted",
		zap.String("column_id", res.Column.ID.String()),
		zap.String("board_id", res.Board.ID.String()),
		zap.Int("files", len(keys)))
	return nil
}

// MoveColumn moves the column to newPosition and returns the reordered list
func (s *columnServiceImpl) MoveColumn(ctx context.Context, userID uuid.UUID, path authz.Path, newPosition int) ([]dto.ColumnResponse, error) {
	res, err := s.gate.Authorize(ctx, path, userID, authz.AnyMember)
	if err != nil {
		return nil, err
	}
	mv, err := s.engine.MoveWithin(ctx, ordering.Columns, res.Board.ID, res.Column.ID, newPosition)
	if err != nil {
		return nil, orderingError(err, "Column not found")
	}
	if mv.Changed() {
		s.activity.recordAfter(ctx, res.Board.ID, userID, domain.ActivityColumnMoved, "column", res.Column.ID,
			map[string]interface{}{"from": mv.From, "to": mv.To})
	}
	return s.list(ctx, res.Board.ID)
}

// CopyColumn appends a copy of the column and its cards to the same board or
// to another board of the same workspace. Labels and card members are copied
// only within the same board.
func (s *columnServiceImpl) CopyColumn(ctx context.Context, userID uuid.UUID, path authz.Path, targetBoardID *uuid.UUID) (*dto.ColumnResponse, error) {
	res, err := s.gate.Authorize(ctx, path, userID, authz.AnyMember)
	if err != nil {
		return nil, err
	}
	target := res.Board
	if targetBoardID != nil && *targetBoardID != res.Board.ID {
		tres, err := s.gate.Authorize(ctx, authz.Path{WorkspaceID: res.Board.WorkspaceID, BoardID: *targetBoardID}, userID, authz.AnyMember)
		if err != nil {
			return nil, err
		}
		target = tres.Board
	}
	sameBoard := target.ID == res.Board.ID
	source := res.Column

	copied := &domain.Column{BoardID: target.ID, Name: copyName(source.Name)}
	var cardCount int
	_, err = s.engine.CopyWithAppend(ctx, ordering.Columns, target.ID, func(tx *gorm.DB, position int) error {
		columns := s.columnRepo.WithTx(tx)
		cards := s.cardRepo.WithTx(tx)

		copied.Position = position
		if err := columns.Create(ctx, copied); err != nil {
			return err
		}
		originals, err := cards.ListByColumn(ctx, source.ID)
		if err != nil {
			return err
		}
		cardCount = len(originals)
		if err := copyCards(ctx, cards, originals, copied.ID, userID, sameBoard); err != nil {
			return err
		}
		return s.activity.record(ctx, tx, target.ID, userID, domain.ActivityColumnCopied, "column", copied.ID,
			map[string]interface{}{"sourceColumnId": source.ID, "sourceBoardId": res.Board.ID, "cards": cardCount})
	})
	if err != nil {
		return nil, orderingError(err, "Board not found")
	}

	s.logger.Info("Column copied",
		zap.String("source_column_id", source.ID.String()),
		zap.String("column_id", copied.ID.String()),
		zap.String("target_board_id", target.ID.String()),
		zap.Int("cards", cardCount))
	return toColumnResponse(copied), nil
}

// MoveAllCards appends every card of the column to targetColumnID on the same board
func (s *columnServiceImpl) MoveAllCards(ctx context.Context, userID uuid.UUID, path authz.Path, targetColumnID uuid.UUID) (*dto.MoveAllCardsResponse, error) {
	res, err := s.gate.Authorize(ctx, path, userID, authz.AnyMember)
	if err != nil {
		return nil, err
	}
	if targetColumnID == res.Column.ID {
		return nil, response.NewBadRequestError("Source and target column must differ")
	}
	if _, err := s.gate.Resolve(ctx, authz.Path{BoardID: res.Board.ID, ColumnID: targetColumnID}); err != nil {
		return nil, err
	}

	moved, err := s.engine.MoveAll(ctx, ordering.Cards, res.Column.ID, targetColumnID)
	if err != nil {
		return nil, orderingError(err, "Column not found")
	}
	if moved > 0 {
		s.activity.recordAfter(ctx, res.Board.ID, userID, domain.ActivityCardsMovedAll, "column", res.Column.ID,
			map[string]interface{}{"targetColumnId": targetColumnID, "moved": moved})
	}
	return &dto.MoveAllCardsResponse{Moved: moved}, nil
}

func (s *columnServiceImpl) list(ctx context.Context, boardID uuid.UUID) ([]dto.ColumnResponse, error) {
	columns, err := s.columnRepo.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, response.NewInternalError("Failed to list columns", err)
	}
	return toColumnResponses(columns), nil
}

// copyCards clones originals into columnID keeping their order
func copyCards(ctx context.Context, cards repository.CardRepository, originals []*domain.Card, columnID, userID uuid.UUID, withLinks bool) error {
	if len(originals) == 0 {
		return nil
	}
	clones := make([]*domain.Card, len(originals))
	cloneOf := make(map[uuid.UUID]uuid.UUID, len(originals))
	sourceIDs := make([]uuid.UUID, len(originals))
	for i, c := range originals {
		clones[i] = &domain.Card{
			ColumnID:    columnID,
			Title:       c.Title,
			Description: c.Description,
			IsCompleted: c.IsCompleted,
			DueDate:     c.DueDate,
			Position:    i,
			CreatedBy:   userID,
		}
		sourceIDs[i] = c.ID
	}
	if err := cards.CreateBatch(ctx, clones); err != nil {
		return err
	}
	if !withLinks {
		return nil
	}
	for i, c := range originals {
		cloneOf[c.ID] = clones[i].ID
	}

	links, err := cards.ListLabelLinksOf(ctx, sourceIDs)
	if err != nil {
		return err
	}
	newLinks := make([]*domain.CardLabel, len(links))
	for i, l := range links {
		newLinks[i] = &domain.CardLabel{CardID: cloneOf[l.CardID], LabelID: l.LabelID}
	}
	if err := cards.AddLabels(ctx, newLinks); err != nil {
		return err
	}

	members, err := cards.ListMembersOf(ctx, sourceIDs)
	if err != nil {
		return err
	}
	newMembers := make([]*domain.CardMember, len(members))
	for i, m := range members {
		newMembers[i] = &domain.CardMember{CardID: cloneOf[m.CardID], UserID: m.UserID}
	}
	return cards.AddMembers(ctx, newMembers)
}

// copyName appends the copy suffix, trimming the original to fit
func copyName(name string) string {
	limit := maxColumnName - utf8.RuneCountInString(copySuffix)
	if utf8.RuneCountInString(name) > limit {
		name = string([]rune(name)[:limit])
	}
	return name + copySuffix
}
