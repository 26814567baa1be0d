package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/itrun-git/itrun-back/internal/client"
	"github.com/itrun-git/itrun-back/internal/config"
	"github.com/itrun-git/itrun-back/internal/database"
	"github.com/itrun-git/itrun-back/internal/dto"
	"github.com/itrun-git/itrun-back/internal/lock"
	"github.com/itrun-git/itrun-back/internal/metrics"
	"github.com/itrun-git/itrun-back/internal/ordering"
	"github.com/itrun-git/itrun-back/internal/response"
	"github.com/itrun-git/itrun-back/internal/service"
)

const testSecret = "test-secret"

// setupTestRouter creates a router over an in-memory database
func setupTestRouter(t *testing.T, basePath string) (*gin.Engine, *prometheus.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))

	registry := prometheus.NewRegistry()
	log := zap.NewNop()
	m := metrics.NewWithRegistry(registry, log)

	r := Setup(Config{
		DB:             db,
		Logger:         log,
		JWTSecret:      testSecret,
		BasePath:       basePath,
		AllowedOrigins: []string{"http://localhost:3000"},
		Metrics:        m,
		Gatherer:       registry,
		Engine:         ordering.NewEngine(db, lock.NewLocalLocker(time.Second), log, ordering.WithRecorder(m)),
		S3Client:       client.NewMockS3Client(),
		Invites:        service.NewInviteTokens("invite-secret", time.Hour, "http://localhost:3000/"),
		MaxFileSize:    1 << 20,
		RateLimit:      config.RateLimitConfig{Enabled: true, RPS: 1000, Burst: 1000},
	})
	return r, registry
}

// apiClient issues authenticated JSON requests as one user
type apiClient struct {
	t      *testing.T
	router http.Handler
	base   string
	token  string
}

func newClient(t *testing.T, router http.Handler, base string, userID uuid.UUID) *apiClient {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID.String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return &apiClient{t: t, router: router, base: base, token: token}
}

func (c *apiClient) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, c.base+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	return w
}

// ok performs a request, asserts the status and decodes the data envelope into out
func (c *apiClient) ok(method, path string, body interface{}, status int, out interface{}) {
	c.t.Helper()
	w := c.do(method, path, body)
	require.Equal(c.t, status, w.Code, "%s %s: %s", method, path, w.Body.String())
	if out == nil {
		return
	}
	env := struct {
		Data json.RawMessage `json:"data"`
	}{}
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NoError(c.t, json.Unmarshal(env.Data, out))
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body.Error.Code
}

func intPtr(v int) *int { return &v }

func TestMetricsEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t, "/api")

	for _, path := range []string{"/metrics", "/api/metrics"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
			assert.Contains(t, w.Body.String(), "# HELP")
		})
	}
}

func TestMetricsEndpoint_ContainsDomainMetrics(t *testing.T) {
	_, registry := setupTestRouter(t, "/api")

	families, err := registry.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, name := range []string{
		"itrun_api_workspaces_total",
		"itrun_api_boards_total",
		"itrun_api_cards_total",
		"itrun_api_pending_file_deletions",
	} {
		assert.True(t, names[name], "registry should contain %s", name)
	}
}

func TestHealthAndReady(t *testing.T) {
	router, _ := setupTestRouter(t, "/api")

	for _, path := range []string{"/health", "/ready", "/api/health", "/api/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router, _ := setupTestRouter(t, "/api")

	req := httptest.NewRequest(http.MethodGet, "/api/workspaces/own", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, response.ErrCodeUnauthorized, errorCode(t, w))
}

func TestCORSPreflight(t *testing.T) {
	router, _ := setupTestRouter(t, "/api")

	req := httptest.NewRequest(http.MethodOptions, "/api/workspaces/own", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestBoardFlow(t *testing.T) {
	router, _ := setupTestRouter(t, "/api")
	ownerID, guestID, strangerID := uuid.New(), uuid.New(), uuid.New()
	owner := newClient(t, router, "/api", ownerID)
	guest := newClient(t, router, "/api", guestID)
	stranger := newClient(t, router, "/api", strangerID)

	var ws dto.WorkspaceResponse
	owner.ok(http.MethodPost, "/workspaces", dto.CreateWorkspaceRequest{Name: "Marketing"}, http.StatusCreated, &ws)

	var board dto.BoardResponse
	owner.ok(http.MethodPost, "/workspaces/"+ws.ID.String()+"/boards", dto.CreateBoardRequest{Name: "Launch"}, http.StatusCreated, &board)

	columnsURL := "/workspaces/" + ws.ID.String() + "/boards/" + board.ID.String() + "/columns"
	cols := make([]dto.ColumnResponse, 3)
	for i, name := range []string{"To do", "Doing", "Done"} {
		owner.ok(http.MethodPost, columnsURL, dto.CreateColumnRequest{Name: name}, http.StatusCreated, &cols[i])
		assert.Equal(t, i, cols[i].Position)
	}

	todoCards := columnsURL + "/" + cols[0].ID.String() + "/cards"
	cards := make([]dto.CardResponse, 3)
	for i, title := range []string{"a", "b", "c"} {
		owner.ok(http.MethodPost, todoCards, dto.CreateCardRequest{Title: title}, http.StatusCreated, &cards[i])
		assert.Equal(t, i, cards[i].Position)
	}

	t.Run("stranger is forbidden", func(t *testing.T) {
		w := stranger.do(http.MethodGet, columnsURL, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, response.ErrCodeForbidden, errorCode(t, w))
	})

	t.Run("move card across columns", func(t *testing.T) {
		var moved dto.CardResponse
		owner.ok(http.MethodPost, todoCards+"/"+cards[0].ID.String()+"/move",
			dto.MoveCardRequest{NewColumnID: cols[1].ID, NewPosition: intPtr(0)}, http.StatusOK, &moved)
		assert.Equal(t, cols[1].ID, moved.ColumnID)
		assert.Equal(t, 0, moved.Position)

		var remaining []dto.CardResponse
		owner.ok(http.MethodGet, todoCards, nil, http.StatusOK, &remaining)
		require.Len(t, remaining, 2)
		assert.Equal(t, "b", remaining[0].Title)
		assert.Equal(t, 0, remaining[0].Position)
		assert.Equal(t, 1, remaining[1].Position)
	})

	t.Run("move card out of range", func(t *testing.T) {
		w := owner.do(http.MethodPost, todoCards+"/"+cards[1].ID.String()+"/move",
			dto.MoveCardRequest{NewColumnID: cols[2].ID, NewPosition: intPtr(5)})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, response.ErrCodeInvalidPosition, errorCode(t, w))

		w = owner.do(http.MethodPost, todoCards+"/"+cards[1].ID.String()+"/move",
			dto.MoveCardRequest{NewColumnID: cols[2].ID, NewPosition: intPtr(-1)})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, response.ErrCodeInvalidPosition, errorCode(t, w))
	})

	t.Run("move column", func(t *testing.T) {
		var ordered []dto.ColumnResponse
		owner.ok(http.MethodPost, columnsURL+"/"+cols[2].ID.String()+"/move",
			dto.MoveColumnRequest{NewPosition: intPtr(0)}, http.StatusOK, &ordered)
		require.Len(t, ordered, 3)
		assert.Equal(t, []uuid.UUID{cols[2].ID, cols[0].ID, cols[1].ID},
			[]uuid.UUID{ordered[0].ID, ordered[1].ID, ordered[2].ID})
		for i, c := range ordered {
			assert.Equal(t, i, c.Position)
		}
	})

	t.Run("copy column appends to board", func(t *testing.T) {
		var copied dto.ColumnResponse
		owner.ok(http.MethodPost, columnsURL+"/"+cols[0].ID.String()+"/copy", nil, http.StatusCreated, &copied)
		assert.Equal(t, "To do (Copy)", copied.Name)
		assert.Equal(t, 3, copied.Position)

		var copiedCards []dto.CardResponse
		owner.ok(http.MethodGet, columnsURL+"/"+copied.ID.String()+"/cards", nil, http.StatusOK, &copiedCards)
		assert.Len(t, copiedCards, 2)
	})

	t.Run("move all cards", func(t *testing.T) {
		var res dto.MoveAllCardsResponse
		owner.ok(http.MethodPatch, columnsURL+"/"+cols[0].ID.String()+"/move-all/"+cols[1].ID.String(), nil, http.StatusOK, &res)
		assert.Equal(t, 2, res.Moved)

		var doing []dto.CardResponse
		owner.ok(http.MethodGet, columnsURL+"/"+cols[1].ID.String()+"/cards", nil, http.StatusOK, &doing)
		require.Len(t, doing, 3)
		assert.Equal(t, "a", doing[0].Title)
		for i, c := range doing {
			assert.Equal(t, i, c.Position)
		}
	})

	t.Run("invited guest joins and sees the workspace", func(t *testing.T) {
		var invite dto.InviteLinkResponse
		owner.ok(http.MethodGet, "/workspaces/"+ws.ID.String()+"/invite-link", nil, http.StatusOK, &invite)
		require.NotEmpty(t, invite.Token)

		guest.ok(http.MethodPost, "/workspaces/join", dto.JoinWorkspaceRequest{Token: invite.Token}, http.StatusOK, nil)

		var guestWorkspaces []dto.WorkspaceResponse
		guest.ok(http.MethodGet, "/workspaces/guest", nil, http.StatusOK, &guestWorkspaces)
		require.Len(t, guestWorkspaces, 1)
		assert.Equal(t, ws.ID, guestWorkspaces[0].ID)

		w := guest.do(http.MethodDelete, "/workspaces/"+ws.ID.String(), nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("board view is dense", func(t *testing.T) {
		var view dto.BoardViewResponse
		owner.ok(http.MethodGet, "/boards/"+board.ID.String()+"/view", nil, http.StatusOK, &view)
		require.Len(t, view.Columns, 4)
		for i, col := range view.Columns {
			assert.Equal(t, i, col.Position)
			for j, card := range col.Cards {
				assert.Equal(t, j, card.Position)
			}
		}
	})

	t.Run("delete column compacts board", func(t *testing.T) {
		owner.ok(http.MethodDelete, columnsURL+"/"+cols[2].ID.String(), nil, http.StatusOK, nil)

		var remaining []dto.ColumnResponse
		owner.ok(http.MethodGet, columnsURL, nil, http.StatusOK, &remaining)
		require.Len(t, remaining, 3)
		for i, c := range remaining {
			assert.Equal(t, i, c.Position)
			assert.NotEqual(t, cols[2].ID, c.ID)
		}
	})
}

func TestUnknownRouteUsesJSONEnvelope(t *testing.T) {
	router, _ := setupTestRouter(t, "/api")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), response.ErrCodeNotFound))
}

func TestMalformedIDIsValidationError(t *testing.T) {
	router, _ := setupTestRouter(t, "/api")
	owner := newClient(t, router, "/api", uuid.New())

	w := owner.do(http.MethodGet, "/workspaces/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), response.ErrCodeValidation))
}
