package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itrun-git/itrun-back/internal/validation"
)

// setupTestRouter returns an engine that authenticates every request as userID
func setupTestRouter(userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	if err := validation.Register(); err != nil {
		panic(err)
	}
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if userID != uuid.Nil {
			c.Set(ContextUserID, userID)
		}
		c.Next()
	})
	return router
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewBuffer(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func doMultipart(t *testing.T, router *gin.Engine, method, path string, fields map[string]string, fileField, fileName string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// decodeData unmarshals the data field of a success envelope into out
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func assertErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	assert.Equal(t, status, w.Code, w.Body.String())
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, code, env.Error.Code)
}

func TestCurrentUserID_Missing(t *testing.T) {
	router := setupTestRouter(uuid.Nil)
	router.GET("/me", func(c *gin.Context) {
		if _, ok := currentUserID(c); ok {
			c.Status(http.StatusOK)
		}
	})

	w := doJSON(router, http.MethodGet, "/me", nil)
	assertErrorCode(t, w, http.StatusUnauthorized, "UNAUTHORIZED")
}

func TestCardPath_InvalidIDs(t *testing.T) {
	router := setupTestRouter(uuid.New())
	router.GET("/w/:workspaceId/b/:boardId/c/:columnId/k/:cardId", func(c *gin.Context) {
		path, ok := cardPath(c)
		if ok {
			c.JSON(http.StatusOK, path)
		}
	})

	valid := uuid.New().String()
	tests := []struct {
		name string
		url  string
	}{
		{"bad workspace", "/w/nope/b/" + valid + "/c/" + valid + "/k/" + valid},
		{"bad board", "/w/" + valid + "/b/nope/c/" + valid + "/k/" + valid},
		{"bad column", "/w/" + valid + "/b/" + valid + "/c/nope/k/" + valid},
		{"bad card", "/w/" + valid + "/b/" + valid + "/c/" + valid + "/k/nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, http.MethodGet, tt.url, nil)
			assertErrorCode(t, w, http.StatusBadRequest, "VALIDATION_ERROR")
		})
	}

	w := doJSON(router, http.MethodGet, "/w/"+valid+"/b/"+valid+"/c/"+valid+"/k/"+valid, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
