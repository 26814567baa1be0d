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
	"github.com/itrun-git/itrun-back/internal/client"
	"github.com/itrun-git/itrun-back/internal/domain"
	"github.com/itrun-git/itrun-back/internal/dto"
	"github.com/itrun-git/itrun-back/internal/metrics"
	"github.com/itrun-git/itrun-back/internal/repository"
	"github.com/itrun-git/itrun-back/internal/response"
)

const (
	recentBoardsLimit    = 5
	defaultActivityLimit = 50
	maxActivityLimit     = 200
)

// BoardService defines the interface for board business logic
type BoardService interface {
	CreateBoard(ctx context.Context, userID, workspaceID uuid.UUID, req *dto.CreateBoardRequest, image *FileUpload) (*dto.BoardResponse, error)
	ListBoards(ctx context.Context, userID, workspaceID uuid.UUID) ([]*dto.BoardResponse, error)
	GetBoard(ctx context.Context, userID, boardID uuid.UUID) (*dto.BoardResponse, error)
	UpdateBoard(ctx context.Context, userID, boardID uuid.UUID, req *dto.UpdateBoardRequest) (*dto.BoardResponse, error)
	UpdateImage(ctx context.Context, userID, boardID uuid.UUID, image *FileUpload) (*dto.BoardResponse, error)
	DeleteBoard(ctx context.Context, userID, boardID uuid.UUID) error

	AddFavorite(ctx context.Context, userID, boardID uuid.UUID) error
	RemoveFavorite(ctx context.Context, userID, boardID uuid.UUID) error
	ListFavorites(ctx context.Context, userID uuid.UUID) ([]*dto.BoardResponse, error)
	ListRecent(ctx context.Context, userID uuid.UUID) ([]*dto.BoardResponse, error)

	ListMembers(ctx context.Context, userID, boardID uuid.UUID) ([]dto.MemberResponse, error)
	AddMember(ctx context.Context, userID, boardID uuid.UUID, req *dto.AddBoardMemberRequest) (*dto.MemberResponse, error)
	UpdateMemberRole(ctx context.Context, userID, boardID, targetID uuid.UUID, role string) (*dto.MemberResponse, error)
	RemoveMember(ctx context.Context, userID, boardID, targetID uuid.UUID) error
	Leave(ctx context.Context, userID, boardID uuid.UUID) (*dto.LeaveResponse, error)

	GetView(ctx context.Context, userID, boardID uuid.UUID) (*dto.BoardViewResponse, error)
	ListActivity(ctx context.Context, userID, boardID uuid.UUID, limit int) ([]dto.ActivityResponse, error)
}

// boardServiceImpl is the implementation of BoardService
type boardServiceImpl struct {
	gate          *authz.Gate
	boardRepo     repository.BoardRepository
	workspaceRepo repository.WorkspaceRepository
	columnRepo    repository.ColumnRepository
	cardRepo      repository.CardRepository
	labelRepo     repository.LabelRepository
	activityRepo  repository.ActivityRepository
	s3Client      S3Client
	files         *fileJanitor
	metrics       *metrics.Metrics
	logger        *zap.Logger
}

// NewBoardService creates a new instance of BoardService
func NewBoardService(
	gate *authz.Gate,
	boardRepo repository.BoardRepository,
	workspaceRepo repository.WorkspaceRepository,
	columnRepo repository.ColumnRepository,
	cardRepo repository.CardRepository,
	labelRepo repository.LabelRepository,
	activityRepo repository.ActivityRepository,
	fileDeletionRepo repository.FileDeletionRepository,
	s3Client S3Client,
	m *metrics.Metrics,
	logger *zap.Logger,
) BoardService {
	return &boardServiceImpl{
		gate:          gate,
		boardRepo:     boardRepo,
		workspaceRepo: workspaceRepo,
		columnRepo:    columnRepo,
		cardRepo:      cardRepo,
		labelRepo:     labelRepo,
		activityRepo:  activityRepo,
		s3Client:      s3Client,
		files:         &fileJanitor{s3: s3Client, pending: fileDeletionRepo, logger: logger},
		metrics:       m,
		logger:        logger,
	}
}

// CreateBoard creates a board in the workspace. Only workspace admins may create boards.
func (s *boardServiceImpl) CreateBoard(ctx context.Context, userID, workspaceID uuid.UUID, req *dto.CreateBoardRequest, image *FileUpload) (*dto.BoardResponse, error) {
	if _, err := s.gate.Authorize(ctx, authz.Path{WorkspaceID: workspaceID}, userID, authz.Admin); err != nil {
		return nil, err
	}

	board := &domain.Board{
		WorkspaceID: workspaceID,
		Name:        strings.TrimSpace(req.Name),
		CreatedBy:   userID,
	}
	if image != nil {
		key, err := uploadFile(ctx, s.s3Client, client.EntityBoards, workspaceID, image)
		if err != nil {
			return nil, err
		}
		board.ImageKey = key
	}

	owner := &domain.BoardMember{UserID: userID, Role: domain.RoleAdmin, JoinedAt: time.Now()}
	if err := s.boardRepo.Create(ctx, board, owner); err != nil {
		s.files.deleteFiles(ctx, "board_create_rollback", board.ImageKey)
		return nil, response.NewInternalError("Failed to create board", err)
	}

	if s.metrics != nil {
		s.metrics.IncrementBoardCreated()
	}
	s.logger.Info("Board created",
		zap.String("board_id", board.ID.String()),
		zap.String("workspace_id", workspaceID.String()),
		zap.String("user_id", userID.String()))

	return toBoardResponse(board, false, s.s3Client.GetFileURL), nil
}

// ListBoards lists the boards of a workspace, newest first
func (s *boardServiceImpl) ListBoards(ctx context.Context, userID, workspaceID uuid.UUID) ([]*dto.BoardResponse, error) {
	if _, err := s.gate.Authorize(ctx, authz.Path{WorkspaceID: workspaceID}, userID, authz.AnyMember); err != nil {
		return nil, err
	}
	boards, err := s.boardRepo.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, response.NewInternalError("Failed to list boards", err)
	}
	return s.toBoardResponses(ctx, userID, boards)
}

// GetBoard returns a board and records that the caller viewed it
func (s *boardServiceImpl) GetBoard(ctx context.Context, userID, boardID uuid.UUID) (*dto.BoardResponse, error) {
	res, err := s.gate.Authorize(ctx, authz.Path{BoardID: boardID}, userID, authz.AnyMember)
	if err != nil {
		return nil, err
	}
	s.touch(ctx, boardID, userID)
	return s.boardResponse(ctx, userID, res.Board)
}

func (s *boardServiceImpl) UpdateBoard(ctx context.Context, userID, boardID uuid.UUID, req *dto.UpdateBoardRequest) (*dto.BoardResponse, error) {
	if _, err := s.gate.Authorize(ctx, authz.Path{BoardID: boardID}, userID, authz.AnyMember); err != nil {
		return nil, err
	}
	return s.update(ctx, userID, boardID, map[string]interface{}{"name": strings.TrimSpace(req.Name)})
}

// UpdateImage uploads a new board image and deletes the previous one best-effort
func (s *boardServiceImpl) UpdateImage(ctx context.Context, userID, boardID uuid.UUID, image *FileUpload) (*dto.BoardResponse, error) {
	res, err := s.gate.Authorize(ctx, authz.Path{BoardID: boardID}, userID, authz.AnyMember)
	if err != nil {
		return nil, err
	}
	key, err := uploadFile(ctx, s.s3Client, client.EntityBoards, res.Board.WorkspaceID, image)
	if err != nil {
		return nil, err
	}
	out, err := s.update(ctx, userID, boardID, map[string]interface{}{"image_key": key})
	if err != nil {
		s.files.deleteFiles(ctx, "board_image_rollback", key)
		return nil, err
	}
	s.files.deleteFiles(ctx, "board_image_replaced", res.Board.ImageKey)
	return out, nil
}

// DeleteBoard removes the board with its columns, cards and labels
func (s *boardServiceImpl) DeleteBoard(ctx context.Context, userID, boardID uuid.UUID) error {
	if _, err := s.gate.Authorize(ctx, authz.Path{BoardID: boardID}, userID, authz.Admin); err != nil {
		return err
	}
	return s.delete(ctx, boardID, "board_deleted")
}

func (s *boardServiceImpl) delete(ctx context.Context, boardID uuid.UUID, reason string) error {
	keys, err := s.boardRepo.Delete(ctx, boardID)
	if err != nil {
		return repoError(err, "Board not found", "delete board")
	}
	s.files.deleteFiles(ctx, reason, keys...)
	s.logger.Info("Board deleted",
		zap.String("board_id", boardID.String()),
		zap.Int("files", len(keys)))
	return nil
}

func (s *boardServiceImpl) AddFavorite(ctx context.Context, userID, boardID uuid.UUID) error {
	if _, err := s.gate.Authorize(ctx, authz.Path{BoardID: boardID}, userID, authz.AnyMember); err != nil {
		return err
	}
	err := s.boardRepo.AddFavorite(ctx, &domain.FavoriteBoard{BoardID: boardID, UserID: userID})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return response.NewAppError(response.ErrCodeAlreadyExists, "Board is already a favorite", "")
	}
	if err != nil {
		return response.NewInternalError("Failed to add favorite", err)
	}
	return nil
}

func (s *boardServiceImpl) RemoveFavorite(ctx context.Context, userID, boardID uuid.UUID) error {
	if _, err := s.gate.Authorize(ctx, authz.Path{BoardID: boardID}, userID, authz.AnyMember); err != nil {
		return err
	}
	removed, err := s.boardRepo.RemoveFavorite(ctx, boardID, userID)
	if err != nil {
		return response.NewInternalError("Failed to remove favorite", err)
	}
	if !removed {
		return response.NewNotFoundError("Board is not a favorite")
	}
	return nil
}

// ListFavorites lists the caller's favorite boards
func (s *boardServiceImpl) ListFavorites(ctx context.Context, userID uuid.UUID) ([]*dto.BoardResponse, error) {
	boards, err := s.boardRepo.ListFavorites(ctx, userID)
	if err != nil {
		return nil, response.NewInternalError("Failed to list favorites", err)
	}
	out := make([]*dto.BoardResponse, len(boards))
	for i, b := range boards {
		out[i] = toBoardResponse(b, true, s.s3Client.GetFileURL)
	}
	return out, nil
}

// ListRecent lists the boards the caller viewed most recently
func (s *boardServiceImpl) ListRecent(ctx context.Context, userID uuid.UUID) ([]*dto.BoardResponse, error) {
	boards, err := s.boardRepo.ListRecent(ctx, userID, recentBoardsLimit)
	if err != nil {
		return nil, response.NewInternalError("Failed to list recent boards", err)
	}
	return s.toBoardResponses(ctx, userID, boards)
}

func (s *boardServiceImpl) ListMembers(ctx context.Context, userID, boardID uuid.UUID) ([]dto.MemberResponse, error) {
	if _, err := s.gate.Authorize(ctx, authz.Path{BoardID: boardID}, userID, authz.AnyMember); err != nil {
		return nil, err
	}
	members, err := s.boardRepo.ListMembers(ctx, boardID)
	if err != nil {
		return nil, response.NewInternalError("Failed to list members", err)
	}
	return toBoardMemberResponses(members), nil
}

// AddMember adds a workspace member to the board
func (s *boardServiceImpl) AddMember(ctx context.Context, userID, boardID uuid.UUID, req *dto.AddBoardMemberRequest) (*dto.MemberResponse, error) {
	res, err := s.gate.Authorize(ctx, authz.Path{BoardID: boardID}, userID, authz.Admin)
	if err != nil {
		return nil, err
	}

	role := domain.RoleMember
	if req.Role != "" {
		role = domain.Role(req.Role)
		if !role.IsValid() {
			return nil, response.NewValidationError("Invalid role", req.Role)
		}
	}

	if _, err := s.workspaceRepo.FindMember(ctx, res.Board.WorkspaceID, req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewBadRequestError("User is not a member of this workspace")
		}
		return nil, response.NewInternalError("Failed to check workspace membership", err)
	}

	member := &domain.BoardMember{BoardID: boardID, UserID: req.UserID, Role: role, JoinedAt: time.Now()}
	if err := s.boardRepo.AddMember(ctx, member); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.NewAppError(response.ErrCodeAlreadyExists, "User is already a member of this board", "")
		}
		return nil, response.NewInternalError("Failed to add member", err)
	}
	return &dto.MemberResponse{UserID: member.UserID, Role: string(member.Role), JoinedAt: member.JoinedAt}, nil
}

// UpdateMemberRole promotes a board member. Demotion is rejected.
func (s *boardServiceImpl) UpdateMemberRole(ctx context.Context, userID, boardID, targetID uuid.UUID, role string) (*dto.MemberResponse, error) {
	if _, err := s.gate.Authorize(ctx, authz.Path{BoardID: boardID}, userID, authz.Admin); err != nil {
		return nil, err
	}
	target, err := s.boardRepo.FindMember(ctx, boardID, targetID)
	if err != nil {
		return nil, repoError(err, "Member not found", "load member")
	}
	newRole, noop, err := checkRoleChange(target.Role, role)
	if err != nil {
		return nil, err
	}
	if !noop {
		if err := s.boardRepo.UpdateMemberRole(ctx, boardID, targetID, newRole); err != nil {
			return nil, repoError(err, "Member not found", "update member role")
		}
	}
	return &dto.MemberResponse{UserID: target.UserID, Role: string(newRole), JoinedAt: target.JoinedAt}, nil
}

// RemoveMember removes a plain member together with their card memberships on the board
func (s *boardServiceImpl) RemoveMember(ctx context.Context, userID, boardID, targetID uuid.UUID) error {
	if _, err := s.gate.Authorize(ctx, authz.Path{BoardID: boardID}, userID, authz.Admin); err != nil {
		return err
	}
	if userID == targetID {
		return response.NewBadRequestError("Use leave to remove yourself")
	}
	target, err := s.boardRepo.FindMember(ctx, boardID, targetID)
	if err != nil {
		return repoError(err, "Member not found", "load member")
	}
	if err := checkRemoval(userID, targetID, target.Role); err != nil {
		return err
	}
	if err := s.boardRepo.RemoveMember(ctx, boardID, targetID); err != nil {
		return repoError(err, "Member not found", "remove member")
	}
	return nil
}

// Leave removes the caller from the board. The sole member leaving deletes the board.
func (s *boardServiceImpl) Leave(ctx context.Context, userID, boardID uuid.UUID) (*dto.LeaveResponse, error) {
	res, err := s.gate.Authorize(ctx, authz.Path{BoardID: boardID}, userID, authz.AnyMember)
	if err != nil {
		return nil, err
	}
	admins, err := s.boardRepo.CountAdmins(ctx, boardID)
	if err != nil {
		return nil, response.NewInternalError("Failed to count admins", err)
	}
	members, err := s.boardRepo.CountMembers(ctx, boardID)
	if err != nil {
		return nil, response.NewInternalError("Failed to count members", err)
	}

	outcome, err := checkLeave(res.Membership.Role, admins, members)
	if err != nil {
		return nil, err
	}
	if outcome == leaveDeleteContainer {
		if err := s.delete(ctx, boardID, "board_abandoned"); err != nil {
			return nil, err
		}
		return &dto.LeaveResponse{Deleted: true}, nil
	}
	if err := s.boardRepo.RemoveMember(ctx, boardID, userID); err != nil {
		return nil, repoError(err, "Member not found", "leave board")
	}
	return &dto.LeaveResponse{}, nil
}

// GetView returns the board with its ordered columns, their ordered cards and the board labels
func (s *boardServiceImpl) GetView(ctx context.Context, userID, boardID uuid.UUID) (*dto.BoardViewResponse, error) {
	res, err := s.gate.Authorize(ctx, authz.Path{BoardID: boardID}, userID, authz.AnyMember)
	if err != nil {
		return nil, err
	}
	s.touch(ctx, boardID, userID)

	board, err := s.boardResponse(ctx, userID, res.Board)
	if err != nil {
		return nil, err
	}
	columns, err := s.columnRepo.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, response.NewInternalError("Failed to list columns", err)
	}
	columnIDs := make([]uuid.UUID, len(columns))
	for i, col := range columns {
		columnIDs[i] = col.ID
	}
	cards, err := s.cardRepo.ListByColumns(ctx, columnIDs)
	if err != nil {
		return nil, response.NewInternalError("Failed to list cards", err)
	}
	deco, err := loadCardDecorations(ctx, s.cardRepo, cards)
	if err != nil {
		return nil, err
	}
	labels, err := s.labelRepo.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, response.NewInternalError("Failed to list labels", err)
	}

	byColumn := make(map[uuid.UUID][]dto.CardResponse, len(columns))
	for _, card := range cards {
		byColumn[card.ColumnID] = append(byColumn[card.ColumnID], *toCardResponse(card, deco, s.s3Client.GetFileURL))
	}
	view := &dto.BoardViewResponse{
		BoardResponse: *board,
		Columns:       make([]dto.ColumnWithCardsResponse, len(columns)),
		Labels:        toLabelResponses(labels),
	}
	for i, col := range columns {
		colCards := byColumn[col.ID]
		if colCards == nil {
			colCards = []dto.CardResponse{}
		}
		view.Columns[i] = dto.ColumnWithCardsResponse{ColumnResponse: *toColumnResponse(col), Cards: colCards}
	}
	return view, nil
}

// ListActivity lists the newest structural changes on the board
func (s *boardServiceImpl) ListActivity(ctx context.Context, userID, boardID uuid.UUID, limit int) ([]dto.ActivityResponse, error) {
	if _, err := s.gate.Authorize(ctx, authz.Path{BoardID: boardID}, userID, authz.AnyMember); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}
	entries, err := s.activityRepo.ListByBoard(ctx, boardID, limit)
	if err != nil {
		return nil, response.NewInternalError("Failed to list activity", err)
	}
	out := make([]dto.ActivityResponse, len(entries))
	for i, a := range entries {
		out[i] = toActivityResponse(a)
	}
	return out, nil
}

func (s *boardServiceImpl) touch(ctx context.Context, boardID, userID uuid.UUID) {
	if err := s.boardRepo.TouchLastViewed(ctx, boardID, userID, time.Now()); err != nil {
		s.logger.Warn("Failed to record board view",
			zap.String("board_id", boardID.String()),
			zap.Error(err))
	}
}

func (s *boardServiceImpl) update(ctx context.Context, userID, boardID uuid.UUID, updates map[string]interface{}) (*dto.BoardResponse, error) {
	if err := s.boardRepo.Update(ctx, boardID, updates); err != nil {
		return nil, repoError(err, "Board not found", "update board")
	}
	board, err := s.boardRepo.FindByID(ctx, boardID)
	if err != nil {
		return nil, repoError(err, "Board not found", "load board")
	}
	return s.boardResponse(ctx, userID, board)
}

func (s *boardServiceImpl) boardResponse(ctx context.Context, userID uuid.UUID, board *domain.Board) (*dto.BoardResponse, error) {
	favorite, err := s.boardRepo.IsFavorite(ctx, board.ID, userID)
	if err != nil {
		return nil, response.NewInternalError("Failed to check favorite", err)
	}
	return toBoardResponse(board, favorite, s.s3Client.GetFileURL), nil
}

func (s *boardServiceImpl) toBoardResponses(ctx context.Context, userID uuid.UUID, boards []*domain.Board) ([]*dto.BoardResponse, error) {
	favorites, err := s.boardRepo.ListFavorites(ctx, userID)
	if err != nil {
		return nil, response.NewInternalError("Failed to list favorites", err)
	}
	isFavorite := make(map[uuid.UUID]bool, len(favorites))
	for _, f := range favorites {
		isFavorite[f.ID] = true
	}
	out := make([]*dto.BoardResponse, len(boards))
	for i, b := range boards {
		out[i] = toBoardResponse(b, isFavorite[b.ID], s.s3Client.GetFileURL)
	}
	return out, nil
}

// loadCardDecorations fetches label and member ids for cards
func loadCardDecorations(ctx context.Context, repo repository.CardRepository, cards []*domain.Card) (cardDecorations, error) {
	ids := make([]uuid.UUID, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	links, err := repo.ListLabelLinksOf(ctx, ids)
	if err != nil {
		return cardDecorations{}, response.NewInternalError("Failed to load card labels", err)
	}
	members, err := repo.ListMembersOf(ctx, ids)
	if err != nil {
		return cardDecorations{}, response.NewInternalError("Failed to load card members", err)
	}
	return newCardDecorations(links, members), nil
}
