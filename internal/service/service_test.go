package service

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/itrun-git/itrun-back/internal/authz"
	"github.com/itrun-git/itrun-back/internal/client"
	"github.com/itrun-git/itrun-back/internal/database"
	"github.com/itrun-git/itrun-back/internal/domain"
	"github.com/itrun-git/itrun-back/internal/dto"
	"github.com/itrun-git/itrun-back/internal/lock"
	"github.com/itrun-git/itrun-back/internal/metrics"
	"github.com/itrun-git/itrun-back/internal/ordering"
	"github.com/itrun-git/itrun-back/internal/repository"
)

// testEnv wires every service against one in-memory database
type testEnv struct {
	db         *gorm.DB
	s3         *client.MockS3Client
	invites    *InviteTokens
	pending    repository.FileDeletionRepository
	workspaces WorkspaceService
	boards     BoardService
	columns    ColumnService
	cards      CardService
	files      CardFileService
	comments   CommentService
	labels     LabelService
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithLocker(t, lock.NewLocalLocker(time.Second))
}

func newTestEnvWithLocker(t *testing.T, locker lock.Locker) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	log := zap.NewNop()
	m := metrics.NewWithRegistry(prometheus.NewRegistry(), log)
	s3 := client.NewMockS3Client()

	hierarchy := repository.NewHierarchyRepository(db)
	gate := authz.NewGate(hierarchy, hierarchy)
	engine := ordering.NewEngine(db, locker, log, ordering.WithRecorder(m))

	workspaceRepo := repository.NewWorkspaceRepository(db)
	boardRepo := repository.NewBoardRepository(db)
	columnRepo := repository.NewColumnRepository(db)
	cardRepo := repository.NewCardRepository(db)
	labelRepo := repository.NewLabelRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	pending := repository.NewFileDeletionRepository(db)
	invites := NewInviteTokens("invite-secret", time.Hour, "http://localhost:3000/")

	return &testEnv{
		db:         db,
		s3:         s3,
		invites:    invites,
		pending:    pending,
		workspaces: NewWorkspaceService(gate, workspaceRepo, pending, s3, invites, m, log),
		boards:     NewBoardService(gate, boardRepo, workspaceRepo, columnRepo, cardRepo, labelRepo, activityRepo, pending, s3, m, log),
		columns:    NewColumnService(gate, engine, columnRepo, cardRepo, activityRepo, pending, s3, log),
		cards:      NewCardService(gate, engine, cardRepo, boardRepo, labelRepo, activityRepo, pending, s3, m, log),
		files:      NewCardFileService(gate, repository.NewAttachmentRepository(db), cardRepo, pending, s3, 1024, log),
		comments:   NewCommentService(gate, repository.NewCommentRepository(db)),
		labels:     NewLabelService(gate, labelRepo),
	}
}

// fixture is a workspace and board owned by owner, with member added to both
type fixture struct {
	owner  uuid.UUID
	member uuid.UUID
	ws     *dto.WorkspaceResponse
	board  *dto.BoardResponse
}

func (e *testEnv) seed(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{owner: uuid.New(), member: uuid.New()}

	var err error
	f.ws, err = e.workspaces.CreateWorkspace(ctx, f.owner, &dto.CreateWorkspaceRequest{Name: "ws-" + uuid.NewString()[:8]})
	require.NoError(t, err)
	e.join(t, f.ws.ID, f.member)

	f.board, err = e.boards.CreateBoard(ctx, f.owner, f.ws.ID, &dto.CreateBoardRequest{Name: "Roadmap"}, nil)
	require.NoError(t, err)
	_, err = e.boards.AddMember(ctx, f.owner, f.board.ID, &dto.AddBoardMemberRequest{UserID: f.member})
	require.NoError(t, err)
	return f
}

func (e *testEnv) join(t *testing.T, workspaceID, userID uuid.UUID) {
	t.Helper()
	token, _, err := e.invites.Issue(workspaceID)
	require.NoError(t, err)
	_, err = e.workspaces.JoinWithToken(context.Background(), userID, token)
	require.NoError(t, err)
}

func (f *fixture) boardPath() authz.Path {
	return authz.Path{WorkspaceID: f.ws.ID, BoardID: f.board.ID}
}

func (f *fixture) columnPath(columnID uuid.UUID) authz.Path {
	p := f.boardPath()
	p.ColumnID = columnID
	return p
}

func (f *fixture) cardPath(columnID, cardID uuid.UUID) authz.Path {
	p := f.columnPath(columnID)
	p.CardID = cardID
	return p
}

func (e *testEnv) createColumns(t *testing.T, f *fixture, names ...string) []*dto.ColumnResponse {
	t.Helper()
	out := make([]*dto.ColumnResponse, len(names))
	for i, name := range names {
		col, err := e.columns.CreateColumn(context.Background(), f.owner, f.boardPath(), &dto.CreateColumnRequest{Name: name})
		require.NoError(t, err)
		out[i] = col
	}
	return out
}

func (e *testEnv) createCards(t *testing.T, f *fixture, columnID uuid.UUID, titles ...string) []*dto.CardResponse {
	t.Helper()
	out := make([]*dto.CardResponse, len(titles))
	for i, title := range titles {
		card, err := e.cards.CreateCard(context.Background(), f.owner, f.columnPath(columnID), &dto.CreateCardRequest{Title: title})
		require.NoError(t, err)
		out[i] = card
	}
	return out
}

func columnNames(cols []dto.ColumnResponse) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}

func cardTitles(cards []dto.CardResponse) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Title
	}
	return out
}

func upload(name, content string) *FileUpload {
	return &FileUpload{
		Reader:      bytes.NewReader([]byte(content)),
		FileName:    name,
		Size:        int64(len(content)),
		ContentType: "text/plain",
	}
}

func seedColumn(t *testing.T, e *testEnv, f *fixture, name string, position int) uuid.UUID {
	t.Helper()
	col := &domain.Column{BoardID: f.board.ID, Name: name, Position: position}
	require.NoError(t, e.db.Create(col).Error)
	return col.ID
}

func seedCard(t *testing.T, e *testEnv, columnID uuid.UUID, title string, position int) uuid.UUID {
	t.Helper()
	card := &domain.Card{ColumnID: columnID, Title: title, Position: position, CreatedBy: uuid.New()}
	require.NoError(t, e.db.Create(card).Error)
	return card.ID
}

// interleavingLocker runs a pending callback once, right before the next
// lock is taken, to stage a concurrent change
type interleavingLocker struct {
	lock.Locker
	mu     sync.Mutex
	before func()
}

func (l *interleavingLocker) beforeNextAcquire(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.before = fn
}

func (l *interleavingLocker) Acquire(ctx context.Context, keys ...string) (func(), error) {
	l.mu.Lock()
	fn := l.before
	l.before = nil
	l.mu.Unlock()
	if fn != nil {
		fn()
	}
	return l.Locker.Acquire(ctx, keys...)
}

// newInterleavingEnv returns an env plus a second engine sharing its locks
func newInterleavingEnv(t *testing.T) (*testEnv, *interleavingLocker, *ordering.Engine) {
	t.Helper()
	locker := &interleavingLocker{Locker: lock.NewLocalLocker(time.Second)}
	env := newTestEnvWithLocker(t, locker)
	return env, locker, ordering.NewEngine(env.db, locker, zap.NewNop())
}

// busyLocker never grants a lock
type busyLocker struct{}

func (busyLocker) Acquire(context.Context, ...string) (func(), error) {
	return nil, lock.ErrBusy
}
