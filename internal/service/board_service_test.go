package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itrun-git/itrun-back/internal/dto"
	"github.com/itrun-git/itrun-back/internal/response"
)

func TestBoardService_CreateRequiresWorkspaceAdmin(t *testing.T) {
	env := newTestEnv(t)
	f := env.seed(t)
	ctx := context.Background()

	_, err := env.boards.CreateBoard(ctx, f.member, f.ws.ID, &dto.CreateBoardRequest{Name: "Mine"}, nil)
	assertCode(t, err, response.ErrCodeForbidden)

	board, err := env.boards.CreateBoard(ctx, f.owner, f.ws.ID, &dto.CreateBoardRequest{Name: "With image"}, upload("cover.png", "img"))
	require.NoError(t, err)
	assert.NotEmpty(t, board.ImageURL)
	assert.Equal(t, f.ws.ID, board.WorkspaceID)

	boards, err := env.boards.ListBoards(ctx, f.member, f.ws.ID)
	require.NoError(t, err)
	assert.Len(t, boards, 2)

	_, err = env.boards.ListBoards(ctx, uuid.New(), f.ws.ID)
	assertCode(t, err, response.ErrCodeForbidden)
}

func TestBoardService_UpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	f := env.seed(t)
	ctx := context.Background()

	updated, err := env.boards.UpdateBoard(ctx, f.member, f.board.ID, &dto.UpdateBoardRequest{Name: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	withImage, err := env.boards.UpdateImage(ctx, f.member, f.board.ID, upload("b.png", "img"))
	require.NoError(t, err)
	assert.NotEmpty(t, withImage.ImageURL)

	assertCode(t, env.boards.DeleteBoard(ctx, f.member, f.board.ID), response.ErrCodeForbidden)
	require.NoError(t, env.boards.DeleteBoard(ctx, f.owner, f.board.ID))
	assert.Empty(t, env.s3.Objects)

	_, err = env.boards.GetBoard(ctx, f.owner, f.board.ID)
	assertCode(t, err, response.ErrCodeNotFound)
}

func TestBoardService_Favorites(t *testing.T) {
	env := newTestEnv(t)
	f := env.seed(t)
	ctx := context.Background()

	require.NoError(t, env.boards.AddFavorite(ctx, f.member, f.board.ID))
	assertCode(t, env.boards.AddFavorite(ctx, f.member, f.board.ID), response.ErrCodeAlreadyExists)

	favorites, err := env.boards.ListFavorites(ctx, f.member)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.True(t, favorites[0].IsFavorite)

	board, err := env.boards.GetBoard(ctx, f.member, f.board.ID)
	require.NoError(t, err)
	assert.True(t, board.IsFavorite)

	ownerView, err := env.boards.GetBoard(ctx, f.owner, f.board.ID)
	require.NoError(t, err)
	assert.False(t, ownerView.IsFavorite)

	require.NoError(t, env.boards.RemoveFavorite(ctx, f.member, f.board.ID))
	assertCode(t, env.boards.RemoveFavorite(ctx, f.member, f.board.ID), response.ErrCodeNotFound)
}

func TestBoardService_Recent(t *testing.T) {
	env := newTestEnv(t)
	f := env.seed(t)
	ctx := context.Background()

	recent, err := env.boards.ListRecent(ctx, f.member)
	require.NoError(t, err)
	assert.Empty(t, recent)

	_, err = env.boards.GetBoard(ctx, f.member, f.board.ID)
	require.NoError(t, err)

	recent, err = env.boards.ListRecent(ctx, f.member)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, f.board.ID, recent[0].ID)
}

func TestBoardService_Members(t *testing.T) {
	env := newTestEnv(t)
	f := env.seed(t)
	ctx := context.Background()

	outsider := uuid.New()
	_, err := env.boards.AddMember(ctx, f.owner, f.board.ID, &dto.AddBoardMemberRequest{UserID: outsider})
	assertCode(t, err, response.ErrCodeBadRequest)

	_, err = env.boards.AddMember(ctx, f.owner, f.board.ID, &dto.AddBoardMemberRequest{UserID: f.member})
	assertCode(t, err, response.ErrCodeAlreadyExists)

	newcomer := uuid.New()
	env.join(t, f.ws.ID, newcomer)
	_, err = env.boards.AddMember(ctx, f.member, f.board.ID, &dto.AddBoardMemberRequest{UserID: newcomer})
	assertCode(t, err, response.ErrCodeForbidden)

	added, err := env.boards.AddMember(ctx, f.owner, f.board.ID, &dto.AddBoardMemberRequest{UserID: newcomer, Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, "admin", added.Role)

	members, err := env.boards.ListMembers(ctx, f.member, f.board.ID)
	require.NoError(t, err)
	assert.Len(t, members, 3)

	assertCode(t, env.boards.RemoveMember(ctx, f.owner, f.board.ID, newcomer), response.ErrCodeForbidden)
	assertCode(t, env.boards.RemoveMember(ctx, f.owner, f.board.ID, f.owner), response.ErrCodeBadRequest)
	require.NoError(t, env.boards.RemoveMember(ctx, f.owner, f.board.ID, f.member))

	_, err = env.boards.UpdateMemberRole(ctx, f.owner, f.board.ID, newcomer, "member")
	assertCode(t, err, response.ErrCodeBadRequest)
}

func TestBoardService_RemovedMemberLosesCardAssignments(t *testing.T) {
	env := newTestEnv(t)
	f := env.seed(t)
	ctx := context.Background()

	cols := env.createColumns(t, f, "Todo")
	card, err := env.cards.CreateCard(ctx, f.owner, f.columnPath(cols[0].ID), &dto.CreateCardRequest{Title: "t", MemberIDs: []uuid.UUID{f.member}})
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{f.member}, card.MemberIDs)

	require.NoError(t, env.boards.RemoveMember(ctx, f.owner, f.board.ID, f.member))

	got, err := env.cards.GetCard(ctx, f.owner, f.cardPath(cols[0].ID, card.ID))
	require.NoError(t, err)
	assert.Empty(t, got.MemberIDs)
}

func TestBoardService_Leave(t *testing.T) {
	env := newTestEnv(t)
	f := env.seed(t)
	ctx := context.Background()

	_, err := env.boards.Leave(ctx, f.owner, f.board.ID)
	assertCode(t, err, response.ErrCodeBadRequest)

	left, err := env.boards.Leave(ctx, f.member, f.board.ID)
	require.NoError(t, err)
	assert.False(t, left.Deleted)

	last, err := env.boards.Leave(ctx, f.owner, f.board.ID)
	require.NoError(t, err)
	assert.True(t, last.Deleted)

	boards, err := env.boards.ListBoards(ctx, f.owner, f.ws.ID)
	require.NoError(t, err)
	assert.Empty(t, boards)
}

func TestBoardService_ViewAndActivity(t *testing.T) {
	env := newTestEnv(t)
	f := env.seed(t)
	ctx := context.Background()

	cols := env.createColumns(t, f, "Todo", "Done")
	env.createCards(t, f, cols[0].ID, "a", "b")
	label, err := env.labels.CreateLabel(ctx, f.owner, f.board.ID, &dto.CreateLabelRequest{Name: "bug", Color: "#FF0000"})
	require.NoError(t, err)

	view, err := env.boards.GetView(ctx, f.member, f.board.ID)
	require.NoError(t, err)
	require.Len(t, view.Columns, 2)
	assert.Equal(t, "Todo", view.Columns[0].Name)
	assert.Equal(t, []string{"a", "b"}, cardTitles(view.Columns[0].Cards))
	assert.NotNil(t, view.Columns[1].Cards)
	assert.Empty(t, view.Columns[1].Cards)
	require.Len(t, view.Labels, 1)
	assert.Equal(t, label.ID, view.Labels[0].ID)
	assert.Equal(t, "#ff0000", view.Labels[0].Color)

	activity, err := env.boards.ListActivity(ctx, f.member, f.board.ID, 0)
	require.NoError(t, err)
	assert.Len(t, activity, 4)

	limited, err := env.boards.ListActivity(ctx, f.member, f.board.ID, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
