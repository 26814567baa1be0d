package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/itrun-git/itrun-back/internal/handler"
	"github.com/itrun-git/itrun-back/internal/response"
)

// userIDClaims are tried in order; tokens from the auth service use user_id,
// federated logins carry sub.
var userIDClaims = []string{"user_id", "sub", "uid"}

// Auth returns a middleware that validates HMAC-signed JWT bearer tokens
func Auth(jwtSecret string) gin.HandlerFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.AbortWithError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Authorization header is required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			response.AbortWithError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Invalid authorization header format")
			return
		}
		tokenString := parts[1]

		claims := jwt.MapClaims{}
		token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			response.AbortWithError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Invalid or expired token")
			return
		}

		var userIDStr string
		for _, key := range userIDClaims {
			if v, ok := claims[key].(string); ok && v != "" {
				userIDStr = v
				break
			}
		}
		if userIDStr == "" {
			response.AbortWithError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "User ID not found in token")
			return
		}

		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			response.AbortWithError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Invalid user ID format")
			return
		}

		c.Set(handler.ContextUserID, userID)
		c.Set(handler.ContextToken, tokenString)

		c.Next()
	}
}
