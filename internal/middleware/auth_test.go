package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itrun-git/itrun-back/internal/handler"
	"github.com/itrun-git/itrun-back/internal/response"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func setupAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(testSecret))
	router.GET("/me", func(c *gin.Context) {
		v, _ := c.Get(handler.ContextUserID)
		tok, _ := c.Get(handler.ContextToken)
		c.JSON(http.StatusOK, gin.H{"userId": v.(uuid.UUID).String(), "token": tok})
	})
	return router
}

func decodeErrorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body.Error.Code
}

func TestAuth(t *testing.T) {
	userID := uuid.New()
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"user_id claim", "Bearer " + signToken(t, testSecret, jwt.SigningMethodHS256, jwt.MapClaims{"user_id": userID.String(), "exp": exp}), http.StatusOK},
		{"sub claim", "Bearer " + signToken(t, testSecret, jwt.SigningMethodHS512, jwt.MapClaims{"sub": userID.String(), "exp": exp}), http.StatusOK},
		{"uid claim", "Bearer " + signToken(t, testSecret, jwt.SigningMethodHS256, jwt.MapClaims{"uid": userID.String()}), http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, "other", jwt.SigningMethodHS256, jwt.MapClaims{"user_id": userID.String()}), http.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, testSecret, jwt.SigningMethodHS256, jwt.MapClaims{"user_id": userID.String(), "exp": time.Now().Add(-time.Minute).Unix()}), http.StatusUnauthorized},
		{"no user claim", "Bearer " + signToken(t, testSecret, jwt.SigningMethodHS256, jwt.MapClaims{"email": "a@b.c"}), http.StatusUnauthorized},
		{"user id not uuid", "Bearer " + signToken(t, testSecret, jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "42"}), http.StatusUnauthorized},
	}

	router := setupAuthRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus == http.StatusOK {
				var body map[string]string
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, userID.String(), body["userId"])
				assert.NotEmpty(t, body["token"])
				return
			}
			assert.Equal(t, response.ErrCodeUnauthorized, decodeErrorCode(t, w))
		})
	}
}

func TestAuth_RejectsNoneAlgorithm(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": uuid.NewString()}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	setupAuthRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
