// Package authz checks workspace and board membership before any guarded operation.
package authz

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/itrun-git/itrun-back/internal/domain"
	"github.com/itrun-git/itrun-back/internal/response"
)

// Requirement is the role an operation needs on its scope container
type Requirement int

const (
	AnyMember Requirement = iota
	Admin
)

func (r Requirement) String() string {
	if r == Admin {
		return "admin"
	}
	return "member"
}

// ScopeKind is the container level a check is evaluated against
type ScopeKind string

const (
	ScopeWorkspace ScopeKind = "workspace"
	ScopeBoard     ScopeKind = "board"
)

// MembershipFinder looks up membership edges. Missing edges return gorm.ErrRecordNotFound.
type MembershipFinder interface {
	FindWorkspaceMember(ctx context.Context, workspaceID, userID uuid.UUID) (*domain.WorkspaceMember, error)
	FindBoardMember(ctx context.Context, boardID, userID uuid.UUID) (*domain.BoardMember, error)
}

// HierarchyFinder looks up containers. Missing rows return gorm.ErrRecordNotFound.
type HierarchyFinder interface {
	FindWorkspace(ctx context.Context, id uuid.UUID) (*domain.Workspace, error)
	FindBoard(ctx context.Context, id uuid.UUID) (*domain.Board, error)
	FindColumn(ctx context.Context, id uuid.UUID) (*domain.Column, error)
	FindCard(ctx context.Context, id uuid.UUID) (*domain.Card, error)
}

// Membership is the edge that satisfied a check
type Membership struct {
	Scope       ScopeKind
	ContainerID uuid.UUID
	UserID      uuid.UUID
	Role        domain.Role
}

// IsAdmin reports whether the edge carries the admin role
func (m *Membership) IsAdmin() bool {
	return m != nil && m.Role == domain.RoleAdmin
}

// Path is the hierarchy claimed by a request. Zero ids are not part of the path.
type Path struct {
	WorkspaceID uuid.UUID
	BoardID     uuid.UUID
	ColumnID    uuid.UUID
	CardID      uuid.UUID
}

// Resolved holds the containers loaded while walking a Path
type Resolved struct {
	Workspace  *domain.Workspace
	Board      *domain.Board
	Column     *domain.Column
	Card       *domain.Card
	Membership *Membership
}

// Gate is the single authorization capability shared by every service
type Gate struct {
	members MembershipFinder
	tree    HierarchyFinder
}

// NewGate creates a Gate
func NewGate(members MembershipFinder, tree HierarchyFinder) *Gate {
	return &Gate{members: members, tree: tree}
}

// RequireMembership fails with FORBIDDEN when userID has no edge on the container
func (g *Gate) RequireMembership(ctx context.Context, scope ScopeKind, containerID, userID uuid.UUID) (*Membership, error) {
	var role domain.Role
	switch scope {
	case ScopeWorkspace:
		m, err := g.members.FindWorkspaceMember(ctx, containerID, userID)
		if err != nil {
			return nil, membershipError(err, "You are not a member of this workspace")
		}
		role = m.Role
	case ScopeBoard:
		m, err := g.members.FindBoardMember(ctx, containerID, userID)
		if err != nil {
			return nil, membershipError(err, "You are not a member of this board")
		}
		role = m.Role
	default:
		return nil, response.NewInternalError("Unknown authorization scope", errors.New(string(scope)))
	}
	return &Membership{Scope: scope, ContainerID: containerID, UserID: userID, Role: role}, nil
}

// RequireAdmin fails with FORBIDDEN unless userID holds the admin role on the container
func (g *Gate) RequireAdmin(ctx context.Context, scope ScopeKind, containerID, userID uuid.UUID) (*Membership, error) {
	m, err := g.RequireMembership(ctx, scope, containerID, userID)
	if err != nil {
		return nil, err
	}
	if !m.IsAdmin() {
		return nil, response.NewForbiddenError("Only a " + string(scope) + " admin can perform this action")
	}
	return m, nil
}

// RequireWorkspaceMember checks membership of a workspace
func (g *Gate) RequireWorkspaceMember(ctx context.Context, workspaceID, userID uuid.UUID) (*Membership, error) {
	return g.RequireMembership(ctx, ScopeWorkspace, workspaceID, userID)
}

// RequireWorkspaceAdmin checks the admin role on a workspace
func (g *Gate) RequireWorkspaceAdmin(ctx context.Context, workspaceID, userID uuid.UUID) (*Membership, error) {
	return g.RequireAdmin(ctx, ScopeWorkspace, workspaceID, userID)
}

// RequireBoardMember checks membership of a board
func (g *Gate) RequireBoardMember(ctx context.Context, boardID, userID uuid.UUID) (*Membership, error) {
	return g.RequireMembership(ctx, ScopeBoard, boardID, userID)
}

// RequireBoardAdmin checks the admin role on a board
func (g *Gate) RequireBoardAdmin(ctx context.Context, boardID, userID uuid.UUID) (*Membership, error) {
	return g.RequireAdmin(ctx, ScopeBoard, boardID, userID)
}

// Resolve loads every container named by p, deepest first, and checks that
// each one really belongs to the parent claimed by p. Anything missing or
// attached elsewhere is NOT_FOUND so existence outside the path never leaks.
func (g *Gate) Resolve(ctx context.Context, p Path) (*Resolved, error) {
	res := &Resolved{}

	if p.CardID != uuid.Nil {
		card, err := g.tree.FindCard(ctx, p.CardID)
		if err != nil {
			return nil, lookupError(err, "card")
		}
		if p.ColumnID != uuid.Nil && card.ColumnID != p.ColumnID {
			return nil, response.NewNotFoundError("Card not found")
		}
		res.Card = card
		p.ColumnID = card.ColumnID
	}

	if p.ColumnID != uuid.Nil {
		col, err := g.tree.FindColumn(ctx, p.ColumnID)
		if err != nil {
			return nil, lookupError(err, "column")
		}
		if p.BoardID != uuid.Nil && col.BoardID != p.BoardID {
			return nil, response.NewNotFoundError("Column not found")
		}
		res.Column = col
		p.BoardID = col.BoardID
	}

	if p.BoardID != uuid.Nil {
		board, err := g.tree.FindBoard(ctx, p.BoardID)
		if err != nil {
			return nil, lookupError(err, "board")
		}
		if p.WorkspaceID != uuid.Nil && board.WorkspaceID != p.WorkspaceID {
			return nil, response.NewNotFoundError("Board not found")
		}
		res.Board = board
		p.WorkspaceID = board.WorkspaceID
	}

	if p.WorkspaceID != uuid.Nil {
		ws, err := g.tree.FindWorkspace(ctx, p.WorkspaceID)
		if err != nil {
			return nil, lookupError(err, "workspace")
		}
		res.Workspace = ws
	}

	return res, nil
}

// Authorize resolves p and checks req on the deepest container: the board
// when the path reaches one, otherwise the workspace.
func (g *Gate) Authorize(ctx context.Context, p Path, userID uuid.UUID, req Requirement) (*Resolved, error) {
	res, err := g.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}

	scope, containerID := ScopeWorkspace, uuid.Nil
	switch {
	case res.Board != nil:
		scope, containerID = ScopeBoard, res.Board.ID
	case res.Workspace != nil:
		containerID = res.Workspace.ID
	default:
		return nil, response.NewValidationError("Nothing to authorize against", "empty path")
	}

	if req == Admin {
		res.Membership, err = g.RequireAdmin(ctx, scope, containerID, userID)
	} else {
		res.Membership, err = g.RequireMembership(ctx, scope, containerID, userID)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func membershipError(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return response.NewForbiddenError(msg)
	}
	return response.NewInternalError("Failed to check membership", err)
}

func lookupError(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return response.NewNotFoundError(strings.ToUpper(entity[:1]) + entity[1:] + " not found")
	}
	return response.NewInternalError("Failed to load "+entity, err)
}
