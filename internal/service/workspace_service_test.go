package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itrun-git/itrun-back/internal/domain"
	"github.com/itrun-git/itrun-back/internal/dto"
	"github.com/itrun-git/itrun-back/internal/response"
)

func TestWorkspaceService_CreateAndList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, guest := uuid.New(), uuid.New()

	ws, err := env.workspaces.CreateWorkspace(ctx, owner, &dto.CreateWorkspaceRequest{Name: "  Marketing "})
	require.NoError(t, err)
	assert.Equal(t, "Marketing", ws.Name)
	assert.Equal(t, string(domain.VisibilityPrivate), ws.Visibility)

	_, err = env.workspaces.CreateWorkspace(ctx, guest, &dto.CreateWorkspaceRequest{Name: "Marketing"})
	assertCode(t, err, response.ErrCodeAlreadyExists)

	env.join(t, ws.ID, guest)

	own, err := env.workspaces.ListOwnWorkspaces(ctx, owner)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, ws.ID, own[0].ID)

	guestList, err := env.workspaces.ListGuestWorkspaces(ctx, guest)
	require.NoError(t, err)
	require.Len(t, guestList, 1)

	ownOfGuest, err := env.workspaces.ListOwnWorkspaces(ctx, guest)
	require.NoError(t, err)
	assert.Empty(t, ownOfGuest)

	members, err := env.workspaces.ListMembers(ctx, guest, ws.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, owner, members[0].UserID, "admins first")
}

func TestWorkspaceService_InvalidVisibility(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.workspaces.CreateWorkspace(context.Background(), uuid.New(), &dto.CreateWorkspaceRequest{Name: "x", Visibility: "secret"})
	assertCode(t, err, response.ErrCodeValidation)
}

func TestWorkspaceService_AuthorizationBoundary(t *testing.T) {
	env := newTestEnv(t)
	f := env.seed(t)
	ctx := context.Background()
	stranger := uuid.New()

	_, err := env.workspaces.GetWorkspace(ctx, stranger, f.ws.ID)
	assertCode(t, err, response.ErrCodeForbidden)

	_, err = env.workspaces.UpdateName(ctx, f.member, f.ws.ID, "renamed")
	assertCode(t, err, response.ErrCodeForbidden)

	updated, err := env.workspaces.UpdateName(ctx, f.owner, f.ws.ID, "renamed")
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)

	_, err = env.workspaces.GetWorkspace(ctx, f.owner, uuid.New())
	assertCode(t, err, response.ErrCodeNotFound)
}

func TestWorkspaceService_RenameToTakenName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := uuid.New()
	_, err := env.workspaces.CreateWorkspace(ctx, owner, &dto.CreateWorkspaceRequest{Name: "a"})
	require.NoError(t, err)
	b, err := env.workspaces.CreateWorkspace(ctx, owner, &dto.CreateWorkspaceRequest{Name: "b"})
	require.NoError(t, err)

	_, err = env.workspaces.UpdateName(ctx, owner, b.ID, "a")
	assertCode(t, err, response.ErrCodeAlreadyExists)

	same, err := env.workspaces.UpdateName(ctx, owner, b.ID, "b")
	require.NoError(t, err)
	assert.Equal(t, "b", same.Name)
}

func TestWorkspaceService_UpdateVisibility(t *testing.T) {
	env := newTestEnv(t)
	f := env.seed(t)

	ws, err := env.workspaces.UpdateVisibility(context.Background(), f.owner, f.ws.ID, "public")
	require.NoError(t, err)
	assert.Equal(t, "public", ws.Visibility)

	_, err = env.workspaces.UpdateVisibility(context.Background(), f.owner, f.ws.ID, "hidden")
	assertCode(t, err, response.ErrCodeValidation)
}

func TestWorkspaceService_UpdateImageReplacesOld(t *testing.T) {
	env := newTestEnv(t)
	f := env.seed(t)
	ctx := context.Background()

	first, err := env.workspaces.UpdateImage(ctx, f.owner, f.ws.ID, upload("a.png", "one"))
	require.NoError(t, err)
	require.NotEmpty(t, first.ImageURL)

	second, err := env.workspaces.UpdateImage(ctx, f.owner, f.ws.ID, upload("b.png", "two"))
	require.NoError(t, err)
	assert.NotEqual(t, first.ImageURL, second.ImageURL)
	require.Len(t, env.s3.DeletedKeys(), 1)
	assert.True(t, strings.HasSuffix(first.ImageURL, env.s3.DeletedKeys()[0]))
	assert.Len(t, env.s3.Objects, 1)
}

func TestWorkspaceService_InviteFlow(t *testing.T) {
	env := newTestEnv(t)
	f := env.seed(t)
	ctx := context.Background()
	newcomer := uuid.New()

	_, err := env.workspaces.GenerateInviteLink(ctx, f.member, f.ws.ID)
	assertCode(t, err, response.ErrCodeForbidden)

	link, err := env.workspaces.GenerateInviteLink(ctx, f.owner, f.ws.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link.Link, "http://localhost:3000/invite?token="))
	assert.WithinDuration(t, time.Now().Add(time.Hour), link.ExpiresAt, 5*time.Second)

	joined, err := env.workspaces.JoinWithToken(ctx, newcomer, link.Token)
	require.NoError(t, err)
	assert.Equal(t, f.ws.ID, joined.WorkspaceID)
	assert.False(t, joined.AlreadyMember)

	again, err := env.workspaces.JoinWithToken(ctx, newcomer, link.Token)
	require.NoError(t, err)
	assert.True(t, again.AlreadyMember)

	_, err = env.workspaces.JoinWithToken(ctx, newcomer, "not-a-token")
	assertCode(t, err, response.ErrCodeUnauthorized)
}

func TestWorkspaceService_JoinDeletedWorkspace(t *testing.T) {
	env := newTestEnv(t)
	f := env.seed(t)
	ctx := context.Background()

	token, _, err := env.invites.Issue(f.ws.ID)
	require.NoError(t, err)
	require.NoError(t, env.workspaces.DeleteWorkspace(ctx, f.owner, f.ws.ID))

	_, err = env.workspaces.JoinWithToken(ctx, uuid.New(), token)
	assertCode(t, err, response.ErrCodeNotFound)
}

func TestInviteTokens(t *testing.T) {
	tokens := NewInviteTokens("secret", time.Hour, "https://app.example.com")
	id := uuid.New()

	token, _, err := tokens.Issue(id)
	require.NoError(t, err)
	got, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	t.Run("expired", func(t *testing.T) {
		tokens.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { tokens.now = time.Now }()
		_, err := tokens.Parse(token)
		assert.True(t, errors.Is(err, errInvalidInvite))
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewInviteTokens("other", time.Hour, "")
		_, err := other.Parse(token)
		assert.ErrorIs(t, err, errInvalidInvite)
	})

	t.Run("link escapes token", func(t *testing.T) {
		assert.Equal(t, "https://app.example.com/invite?token=a%2Bb", tokens.Link("a+b"))
	})
}

func TestWorkspaceService_RoleChanges(t *testing.T) {
	env := newTestEnv(t)
	f := env.seed(t)
	ctx := context.Background()

	_, err := env.workspaces.UpdateMemberRole(ctx, f.member, f.ws.ID, f.owner, "member")
	assertCode(t, err, response.ErrCodeForbidden)

	promoted, err := env.workspaces.UpdateMemberRole(ctx, f.owner, f.ws.ID, f.member, "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin", promoted.Role)

	same, err := env.workspaces.UpdateMemberRole(ctx, f.owner, f.ws.ID, f.member, "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin", same.Role)

	_, err = env.workspaces.UpdateMemberRole(ctx, f.owner, f.ws.ID, f.member, "member")
	assertCode(t, err, response.ErrCodeBadRequest)

	_, err = env.workspaces.UpdateMemberRole(ctx, f.owner, f.ws.ID, uuid.New(), "admin")
	assertCode(t, err, response.ErrCodeNotFound)
}

func TestWorkspaceService_RemoveMember(t *testing.T) {
	env := newTestEnv(t)
	f := env.seed(t)
	ctx := context.Background()

	assertCode(t, env.workspaces.RemoveMember(ctx, f.owner, f.ws.ID, f.owner), response.ErrCodeBadRequest)
	assertCode(t, env.workspaces.RemoveMember(ctx, f.owner, f.ws.ID, uuid.New()), response.ErrCodeNotFound)
	assertCode(t, env.workspaces.RemoveMember(ctx, f.member, f.ws.ID, f.owner), response.ErrCodeForbidden)

	second := uuid.New()
	env.join(t, f.ws.ID, second)
	_, err := env.workspaces.UpdateMemberRole(ctx, f.owner, f.ws.ID, second, "admin")
	require.NoError(t, err)
	assertCode(t, env.workspaces.RemoveMember(ctx, f.owner, f.ws.ID, second), response.ErrCodeForbidden)

	require.NoError(t, env.workspaces.RemoveMember(ctx, f.owner, f.ws.ID, f.member))

	_, err = env.boards.GetBoard(ctx, f.member, f.board.ID)
	assertCode(t, err, response.ErrCodeForbidden)
}

func TestWorkspaceService_LastAdminCannotLeave(t *testing.T) {
	env := newTestEnv(t)
	f := env.seed(t)

	_, err := env.workspaces.Leave(context.Background(), f.owner, f.ws.ID)
	assertCode(t, err, response.ErrCodeBadRequest)

	_, err = env.workspaces.GetWorkspace(context.Background(), f.owner, f.ws.ID)
	require.NoError(t, err)
}

func TestWorkspaceService_Leave(t *testing.T) {
	env := newTestEnv(t)
	f := env.seed(t)
	ctx := context.Background()

	left, err := env.workspaces.Leave(ctx, f.member, f.ws.ID)
	require.NoError(t, err)
	assert.False(t, left.Deleted)

	_, err = env.boards.ListMembers(ctx, f.member, f.board.ID)
	assertCode(t, err, response.ErrCodeForbidden)

	last, err := env.workspaces.Leave(ctx, f.owner, f.ws.ID)
	require.NoError(t, err)
	assert.True(t, last.Deleted)

	_, err = env.workspaces.GetWorkspace(ctx, f.owner, f.ws.ID)
	assertCode(t, err, response.ErrCodeNotFound)
}

// handOverBoard makes member the board's admin and takes owner off the board
func (e *testEnv) handOverBoard(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()
	_, err := e.boards.UpdateMemberRole(ctx, f.owner, f.board.ID, f.member, "admin")
	require.NoError(t, err)
	_, err = e.boards.Leave(ctx, f.owner, f.board.ID)
	require.NoError(t, err)
}

func TestWorkspaceService_SoleBoardAdminCannotLeave(t *testing.T) {
	env := newTestEnv(t)
	f := env.seed(t)
	ctx := context.Background()

	third := uuid.New()
	env.join(t, f.ws.ID, third)
	_, err := env.boards.AddMember(ctx, f.owner, f.board.ID, &dto.AddBoardMemberRequest{UserID: third})
	require.NoError(t, err)
	env.handOverBoard(t, f)

	_, err = env.workspaces.Leave(ctx, f.member, f.ws.ID)
	assertCode(t, err, response.ErrCodeBadRequest)
	assertCode(t, env.workspaces.RemoveMember(ctx, f.owner, f.ws.ID, f.member), response.ErrCodeBadRequest)

	members, err := env.boards.ListMembers(ctx, third, f.board.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	admins := 0
	for _, m := range members {
		if m.Role == "admin" {
			admins++
		}
	}
	assert.Equal(t, 1, admins)

	// once the board has a second admin the member may go
	_, err = env.boards.UpdateMemberRole(ctx, f.member, f.board.ID, third, "admin")
	require.NoError(t, err)
	_, err = env.workspaces.Leave(ctx, f.member, f.ws.ID)
	require.NoError(t, err)
}

func TestWorkspaceService_LeaveDeletesBoardsWithNoOneLeft(t *testing.T) {
	env := newTestEnv(t)
	f := env.seed(t)
	ctx := context.Background()

	withImage, err := env.boards.UpdateImage(ctx, f.member, f.board.ID, upload("board.png", "img"))
	require.NoError(t, err)
	env.handOverBoard(t, f)

	left, err := env.workspaces.Leave(ctx, f.member, f.ws.ID)
	require.NoError(t, err)
	assert.False(t, left.Deleted)

	_, err = env.boards.GetBoard(ctx, f.owner, f.board.ID)
	assertCode(t, err, response.ErrCodeNotFound)
	require.Len(t, env.s3.DeletedKeys(), 1)
	assert.True(t, strings.HasSuffix(withImage.ImageURL, env.s3.DeletedKeys()[0]))

	_, err = env.workspaces.GetWorkspace(ctx, f.owner, f.ws.ID)
	require.NoError(t, err)
}

func TestWorkspaceService_RemoveMemberDeletesBoardsWithNoOneLeft(t *testing.T) {
	env := newTestEnv(t)
	f := env.seed(t)
	ctx := context.Background()

	env.handOverBoard(t, f)
	require.NoError(t, env.workspaces.RemoveMember(ctx, f.owner, f.ws.ID, f.member))

	boards, err := env.boards.ListBoards(ctx, f.owner, f.ws.ID)
	require.NoError(t, err)
	assert.Empty(t, boards)
}

func TestWorkspaceService_DeleteCascadesAndCleansFiles(t *testing.T) {
	env := newTestEnv(t)
	f := env.seed(t)
	ctx := context.Background()

	_, err := env.workspaces.UpdateImage(ctx, f.owner, f.ws.ID, upload("logo.png", "logo"))
	require.NoError(t, err)
	cols := env.createColumns(t, f, "Todo")
	cards := env.createCards(t, f, cols[0].ID, "one")
	_, err = env.files.UploadAttachment(ctx, f.owner, f.cardPath(cols[0].ID, cards[0].ID), upload("a.txt", "data"))
	require.NoError(t, err)
	require.Len(t, env.s3.Objects, 2)

	assertCode(t, env.workspaces.DeleteWorkspace(ctx, f.member, f.ws.ID), response.ErrCodeForbidden)
	require.NoError(t, env.workspaces.DeleteWorkspace(ctx, f.owner, f.ws.ID))

	assert.Empty(t, env.s3.Objects)
	for _, model := range []interface{}{&domain.Board{}, &domain.Column{}, &domain.Card{}, &domain.Attachment{}, &domain.WorkspaceMember{}} {
		var n int64
		require.NoError(t, env.db.Model(model).Count(&n).Error)
		assert.Zero(t, n, "%T", model)
	}
}

func TestWorkspaceService_FailedFileDeleteIsQueued(t *testing.T) {
	env := newTestEnv(t)
	f := env.seed(t)
	ctx := context.Background()

	_, err := env.workspaces.UpdateImage(ctx, f.owner, f.ws.ID, upload("logo.png", "logo"))
	require.NoError(t, err)
	env.s3.DeleteFileFunc = func(context.Context, string) error { return errors.New("s3 down") }

	require.NoError(t, env.workspaces.DeleteWorkspace(ctx, f.owner, f.ws.ID))

	queued, err := env.pending.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), queued)
}
