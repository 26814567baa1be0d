package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/itrun-git/itrun-back/internal/domain"
	"github.com/itrun-git/itrun-back/internal/response"
)

// memStore is an in-memory MembershipFinder and HierarchyFinder
type memStore struct {
	workspaces map[uuid.UUID]*domain.Workspace
	boards     map[uuid.UUID]*domain.Board
	columns    map[uuid.UUID]*domain.Column
	cards      map[uuid.UUID]*domain.Card
	wsMembers  map[[2]uuid.UUID]domain.Role
	bMembers   map[[2]uuid.UUID]domain.Role
	failWith   error
}

func newMemStore() *memStore {
	return &memStore{
		workspaces: map[uuid.UUID]*domain.Workspace{},
		boards:     map[uuid.UUID]*domain.Board{},
		columns:    map[uuid.UUID]*domain.Column{},
		cards:      map[uuid.UUID]*domain.Card{},
		wsMembers:  map[[2]uuid.UUID]domain.Role{},
		bMembers:   map[[2]uuid.UUID]domain.Role{},
	}
}

func (s *memStore) FindWorkspaceMember(_ context.Context, workspaceID, userID uuid.UUID) (*domain.WorkspaceMember, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	role, ok := s.wsMembers[[2]uuid.UUID{workspaceID, userID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &domain.WorkspaceMember{WorkspaceID: workspaceID, UserID: userID, Role: role}, nil
}

func (s *memStore) FindBoardMember(_ context.Context, boardID, userID uuid.UUID) (*domain.BoardMember, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	role, ok := s.bMembers[[2]uuid.UUID{boardID, userID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &domain.BoardMember{BoardID: boardID, UserID: userID, Role: role}, nil
}

func (s *memStore) FindWorkspace(_ context.Context, id uuid.UUID) (*domain.Workspace, error) {
	if w, ok := s.workspaces[id]; ok {
		return w, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memStore) FindBoard(_ context.Context, id uuid.UUID) (*domain.Board, error) {
	if b, ok := s.boards[id]; ok {
		return b, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memStore) FindColumn(_ context.Context, id uuid.UUID) (*domain.Column, error) {
	if c, ok := s.columns[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memStore) FindCard(_ context.Context, id uuid.UUID) (*domain.Card, error) {
	if c, ok := s.cards[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fixture struct {
	store  *memStore
	gate   *Gate
	ws     uuid.UUID
	board  uuid.UUID
	column uuid.UUID
	card   uuid.UUID
	admin  uuid.UUID
	member uuid.UUID
	other  uuid.UUID
}

func newFixture() *fixture {
	s := newMemStore()
	f := &fixture{
		store:  s,
		gate:   NewGate(s, s),
		ws:     uuid.New(),
		board:  uuid.New(),
		column: uuid.New(),
		card:   uuid.New(),
		admin:  uuid.New(),
		member: uuid.New(),
		other:  uuid.New(),
	}
	s.workspaces[f.ws] = &domain.Workspace{BaseModel: domain.BaseModel{ID: f.ws}, Name: "ws"}
	s.boards[f.board] = &domain.Board{BaseModel: domain.BaseModel{ID: f.board}, WorkspaceID: f.ws}
	s.columns[f.column] = &domain.Column{BaseModel: domain.BaseModel{ID: f.column}, BoardID: f.board}
	s.cards[f.card] = &domain.Card{BaseModel: domain.BaseModel{ID: f.card}, ColumnID: f.column}
	s.wsMembers[[2]uuid.UUID{f.ws, f.admin}] = domain.RoleAdmin
	s.wsMembers[[2]uuid.UUID{f.ws, f.member}] = domain.RoleMember
	s.bMembers[[2]uuid.UUID{f.board, f.admin}] = domain.RoleAdmin
	s.bMembers[[2]uuid.UUID{f.board, f.member}] = domain.RoleMember
	return f
}

func assertAppCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *response.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestAuthorize_Boundary(t *testing.T) {
	f := newFixture()
	cardPath := Path{WorkspaceID: f.ws, BoardID: f.board, ColumnID: f.column, CardID: f.card}

	tests := []struct {
		name     string
		userID   uuid.UUID
		req      Requirement
		wantCode string
	}{
		{name: "non-member on member op", userID: f.other, req: AnyMember, wantCode: response.ErrCodeForbidden},
		{name: "non-member on admin op", userID: f.other, req: Admin, wantCode: response.ErrCodeForbidden},
		{name: "member on member op", userID: f.member, req: AnyMember},
		{name: "member on admin op", userID: f.member, req: Admin, wantCode: response.ErrCodeForbidden},
		{name: "admin on admin op", userID: f.admin, req: Admin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.gate.Authorize(context.Background(), cardPath, tt.userID, tt.req)
			if tt.wantCode != "" {
				assertAppCode(t, err, tt.wantCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, f.card, res.Card.ID)
			assert.Equal(t, f.column, res.Column.ID)
			assert.Equal(t, f.board, res.Board.ID)
			assert.Equal(t, f.ws, res.Workspace.ID)
			assert.Equal(t, ScopeBoard, res.Membership.Scope)
		})
	}
}

func TestAuthorize_WorkspaceOnlyPath(t *testing.T) {
	f := newFixture()

	res, err := f.gate.Authorize(context.Background(), Path{WorkspaceID: f.ws}, f.admin, Admin)
	require.NoError(t, err)
	assert.Equal(t, ScopeWorkspace, res.Membership.Scope)
	assert.Nil(t, res.Board)

	_, err = f.gate.Authorize(context.Background(), Path{WorkspaceID: f.ws}, f.member, Admin)
	assertAppCode(t, err, response.ErrCodeForbidden)
}

func TestAuthorize_BoardMemberWithoutWorkspaceEdgeUsesBoard(t *testing.T) {
	f := newFixture()
	guest := uuid.New()
	f.store.bMembers[[2]uuid.UUID{f.board, guest}] = domain.RoleMember

	_, err := f.gate.Authorize(context.Background(), Path{BoardID: f.board}, guest, AnyMember)
	assert.NoError(t, err)
}

func TestResolve_PathMismatchIsNotFound(t *testing.T) {
	f := newFixture()
	strayColumn := uuid.New()
	f.store.columns[strayColumn] = &domain.Column{BaseModel: domain.BaseModel{ID: strayColumn}, BoardID: uuid.New()}

	tests := []struct {
		name string
		path Path
	}{
		{name: "card under another column", path: Path{BoardID: f.board, ColumnID: strayColumn, CardID: f.card}},
		{name: "column under another board", path: Path{BoardID: f.board, ColumnID: strayColumn}},
		{name: "board under another workspace", path: Path{WorkspaceID: uuid.New(), BoardID: f.board}},
		{name: "missing card", path: Path{BoardID: f.board, ColumnID: f.column, CardID: uuid.New()}},
		{name: "missing board", path: Path{BoardID: uuid.New()}},
		{name: "missing workspace", path: Path{WorkspaceID: uuid.New()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// even an admin gets NOT_FOUND, never FORBIDDEN
			_, err := f.gate.Authorize(context.Background(), tt.path, f.admin, Admin)
			assertAppCode(t, err, response.ErrCodeNotFound)
		})
	}
}

func TestResolve_CardOnlyWalksUp(t *testing.T) {
	f := newFixture()

	res, err := f.gate.Resolve(context.Background(), Path{CardID: f.card})
	require.NoError(t, err)
	assert.Equal(t, f.column, res.Column.ID)
	assert.Equal(t, f.board, res.Board.ID)
	assert.Equal(t, f.ws, res.Workspace.ID)
}

func TestRequireMembership_StoreFailureIsInternal(t *testing.T) {
	f := newFixture()
	f.store.failWith = errors.New("connection reset")

	_, err := f.gate.RequireBoardMember(context.Background(), f.board, f.admin)
	assertAppCode(t, err, response.ErrCodeInternal)
}

func TestAuthorize_EmptyPath(t *testing.T) {
	f := newFixture()

	_, err := f.gate.Authorize(context.Background(), Path{}, f.admin, AnyMember)
	assertAppCode(t, err, response.ErrCodeValidation)
}
