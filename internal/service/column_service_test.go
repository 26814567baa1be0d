package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itrun-git/itrun-back/internal/authz"
	"github.com/itrun-git/itrun-back/internal/domain"
	"github.com/itrun-git/itrun-back/internal/dto"
	"github.com/itrun-git/itrun-back/internal/ordering"
	"github.com/itrun-git/itrun-back/internal/response"
)

func TestColumnService_MoveLastToFront(t *testing.T) {
	env := newTestEnv(t)
	f := env.seed(t)
	cols := env.createColumns(t, f, "A", "B", "C")

	ordered, err := env.columns.MoveColumn(context.Background(), f.member, f.columnPath(cols[2].ID), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "B"}, columnNames(ordered))
	for i, c := range ordered {
		assert.Equal(t, i, c.Position)
	}
}

func TestColumnService_MoveRoundTripAndNoop(t *testing.T) {
	env := newTestEnv(t)
	f := env.seed(t)
	ctx := context.Background()
	cols := env.createColumns(t, f, "A", "B", "C")

	_, err := env.columns.MoveColumn(ctx, f.owner, f.columnPath(cols[2].ID), 0)
	require.NoError(t, err)
	back, err := env.columns.MoveColumn(ctx, f.owner, f.columnPath(cols[2].ID), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, columnNames(back))

	same, err := env.columns.MoveColumn(ctx, f.owner, f.columnPath(cols[1].ID), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, columnNames(same))
}

func TestColumnService_MoveActivityUsesLockedPositions(t *testing.T) {
	env, locker, engine := newInterleavingEnv(t)
	f := env.seed(t)
	ctx := context.Background()
	cols := env.createColumns(t, f, "A", "B", "C")

	// C jumps to the front after A is loaded, so A already sits at 1
	locker.beforeNextAcquire(func() {
		_, err := engine.MoveWithin(ctx, ordering.Columns, f.board.ID, cols[2].ID, 0)
		require.NoError(t, err)
	})
	ordered, err := env.columns.MoveColumn(ctx, f.owner, f.columnPath(cols[0].ID), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "B"}, columnNames(ordered))

	activity, err := env.boards.ListActivity(ctx, f.owner, f.board.ID, 0)
	require.NoError(t, err)
	for _, a := range activity {
		assert.NotEqual(t, string(domain.ActivityColumnMoved), a.Action)
	}

	_, err = env.columns.MoveColumn(ctx, f.owner, f.columnPath(cols[0].ID), 2)
	require.NoError(t, err)
	activity, err = env.boards.ListActivity(ctx, f.owner, f.board.ID, 1)
	require.NoError(t, err)
	require.Len(t, activity, 1)
	assert.Equal(t, string(domain.ActivityColumnMoved), activity[0].Action)
	assert.JSONEq(t, `{"from":1,"to":2}`, string(activity[0].Payload))
}

func TestColumnService_MoveOutOfRange(t *testing.T) {
	env := newTestEnv(t)
	f := env.seed(t)
	cols := env.createColumns(t, f, "A", "B")

	_, err := env.columns.MoveColumn(context.Background(), f.owner, f.columnPath(cols[0].ID), 2)
	assertCode(t, err, response.ErrCodeInvalidPosition)

	_, err = env.columns.MoveColumn(context.Background(), f.owner, f.columnPath(cols[0].ID), -1)
	assertCode(t, err, response.ErrCodeInvalidPosition)
}

func TestColumnService_PathMismatchIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	f := env.seed(t)
	ctx := context.Background()
	cols := env.createColumns(t, f, "A")

	other, err := env.boards.CreateBoard(ctx, f.owner, f.ws.ID, &dto.CreateBoardRequest{Name: "Other"}, nil)
	require.NoError(t, err)

	wrongBoard := authz.Path{WorkspaceID: f.ws.ID, BoardID: other.ID, ColumnID: cols[0].ID}
	_, err = env.columns.MoveColumn(ctx, f.owner, wrongBoard, 0)
	assertCode(t, err, response.ErrCodeNotFound)

	wrongWorkspace := f.columnPath(cols[0].ID)
	wrongWorkspace.WorkspaceID = uuid.New()
	_, err = env.columns.RenameColumn(ctx, f.owner, wrongWorkspace, "x")
	assertCode(t, err, response.ErrCodeNotFound)
}

func TestColumnService_Busy(t *testing.T) {
	env := newTestEnvWithLocker(t, busyLocker{})
	f := env.seed(t)

	_, err := env.columns.CreateColumn(context.Background(), f.owner, f.boardPath(), &dto.CreateColumnRequest{Name: "A"})
	assertCode(t, err, response.ErrCodeConflict)
}

func TestColumnService_RenameAndList(t *testing.T) {
	env := newTestEnv(t)
	f := env.seed(t)
	ctx := context.Background()
	cols := env.createColumns(t, f, "A", "B")

	renamed, err := env.columns.RenameColumn(ctx, f.member, f.columnPath(cols[1].ID), "  Review ")
	require.NoError(t, err)
	assert.Equal(t, "Review", renamed.Name)
	assert.Equal(t, 1, renamed.Position)

	list, err := env.columns.ListColumns(ctx, f.member, f.boardPath())
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "Review"}, columnNames(list))

	_, err = env.columns.ListColumns(ctx, uuid.New(), f.boardPath())
	assertCode(t, err, response.ErrCodeForbidden)
}

func TestColumnService_DeleteCompacts(t *testing.T) {
	env := newTestEnv(t)
	f := env.seed(t)
	ctx := context.Background()
	cols := env.createColumns(t, f, "A", "B", "C")
	cards := env.createCards(t, f, cols[1].ID, "x")
	_, err := env.files.UploadCover(ctx, f.owner, f.cardPath(cols[1].ID, cards[0].ID), upload("c.png", "img"))
	require.NoError(t, err)

	assertCode(t, env.columns.DeleteColumn(ctx, f.member, f.columnPath(cols[1].ID)), response.ErrCodeForbidden)
	require.NoError(t, env.columns.DeleteColumn(ctx, f.owner, f.columnPath(cols[1].ID)))

	list, err := env.columns.ListColumns(ctx, f.owner, f.boardPath())
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, columnNames(list))
	assert.Equal(t, 1, list[1].Position)

	var n int64
	require.NoError(t, env.db.Model(&domain.Card{}).Count(&n).Error)
	assert.Zero(t, n)
	assert.Empty(t, env.s3.Objects)
}

func TestColumnService_CopyWithinBoard(t *testing.T) {
	env := newTestEnv(t)
	f := env.seed(t)
	ctx := context.Background()
	cols := env.createColumns(t, f, "Todo", "Done")

	label, err := env.labels.CreateLabel(ctx, f.owner, f.board.ID, &dto.CreateLabelRequest{Name: "bug", Color: "#ff0000"})
	require.NoError(t, err)
	_, err = env.cards.CreateCard(ctx, f.owner, f.columnPath(cols[0].ID), &dto.CreateCardRequest{
		Title: "first", LabelIDs: []uuid.UUID{label.ID}, MemberIDs: []uuid.UUID{f.member},
	})
	require.NoError(t, err)
	env.createCards(t, f, cols[0].ID, "second")

	copied, err := env.columns.CopyColumn(ctx, f.member, f.columnPath(cols[0].ID), nil)
	require.NoError(t, err)
	assert.Equal(t, "Todo (Copy)", copied.Name)
	assert.Equal(t, 2, copied.Position)

	cards, err := env.cards.ListCards(ctx, f.member, f.columnPath(copied.ID))
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, cardTitles(cards))
	assert.Equal(t, []uuid.UUID{label.ID}, cards[0].LabelIDs)
	assert.Equal(t, []uuid.UUID{f.member}, cards[0].MemberIDs)

	source, err := env.cards.ListCards(ctx, f.member, f.columnPath(cols[0].ID))
	require.NoError(t, err)
	assert.Len(t, source, 2)
}

func TestColumnService_CopyToOtherBoard(t *testing.T) {
	env := newTestEnv(t)
	f := env.seed(t)
	ctx := context.Background()
	cols := env.createColumns(t, f, "Todo")

	label, err := env.labels.CreateLabel(ctx, f.owner, f.board.ID, &dto.CreateLabelRequest{Name: "bug", Color: "#ff0000"})
	require.NoError(t, err)
	_, err = env.cards.CreateCard(ctx, f.owner, f.columnPath(cols[0].ID), &dto.CreateCardRequest{Title: "first", LabelIDs: []uuid.UUID{label.ID}})
	require.NoError(t, err)

	target, err := env.boards.CreateBoard(ctx, f.owner, f.ws.ID, &dto.CreateBoardRequest{Name: "Target"}, nil)
	require.NoError(t, err)

	_, err = env.columns.CopyColumn(ctx, f.member, f.columnPath(cols[0].ID), &target.ID)
	assertCode(t, err, response.ErrCodeForbidden)

	copied, err := env.columns.CopyColumn(ctx, f.owner, f.columnPath(cols[0].ID), &target.ID)
	require.NoError(t, err)
	assert.Equal(t, target.ID, copied.BoardID)
	assert.Equal(t, 0, copied.Position)

	cards, err := env.cards.ListCards(ctx, f.owner, authz.Path{WorkspaceID: f.ws.ID, BoardID: target.ID, ColumnID: copied.ID})
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Empty(t, cards[0].LabelIDs)

	foreign, err := env.workspaces.CreateWorkspace(ctx, f.owner, &dto.CreateWorkspaceRequest{Name: "foreign"})
	require.NoError(t, err)
	foreignBoard, err := env.boards.CreateBoard(ctx, f.owner, foreign.ID, &dto.CreateBoardRequest{Name: "X"}, nil)
	require.NoError(t, err)
	_, err = env.columns.CopyColumn(ctx, f.owner, f.columnPath(cols[0].ID), &foreignBoard.ID)
	assertCode(t, err, response.ErrCodeNotFound)
}

func TestCopyName(t *testing.T) {
	assert.Equal(t, "Todo (Copy)", copyName("Todo"))
	long := copyName(strings.Repeat("é", 300))
	assert.Equal(t, maxColumnName, len([]rune(long)))
	assert.True(t, strings.HasSuffix(long, copySuffix))
}

func TestColumnService_MoveAllCards(t *testing.T) {
	env := newTestEnv(t)
	f := env.seed(t)
	ctx := context.Background()
	cols := env.createColumns(t, f, "X", "Y")
	env.createCards(t, f, cols[0].ID, "p", "q")
	env.createCards(t, f, cols[1].ID, "s")

	_, err := env.columns.MoveAllCards(ctx, f.owner, f.columnPath(cols[0].ID), cols[0].ID)
	assertCode(t, err, response.ErrCodeBadRequest)

	_, err = env.columns.MoveAllCards(ctx, f.owner, f.columnPath(cols[0].ID), uuid.New())
	assertCode(t, err, response.ErrCodeNotFound)

	moved, err := env.columns.MoveAllCards(ctx, f.member, f.columnPath(cols[0].ID), cols[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 2, moved.Moved)

	target, err := env.cards.ListCards(ctx, f.owner, f.columnPath(cols[1].ID))
	require.NoError(t, err)
	assert.Equal(t, []string{"s", "p", "q"}, cardTitles(target))
	for i, c := range target {
		assert.Equal(t, i, c.Position)
	}

	activity, err := env.boards.ListActivity(ctx, f.owner, f.board.ID, 1)
	require.NoError(t, err)
	require.Len(t, activity, 1)
	assert.Equal(t, string(domain.ActivityCardsMovedAll), activity[0].Action)
}
