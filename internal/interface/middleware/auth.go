package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/videotube/videotube-api/internal/domain/repository"
	"github.com/videotube/videotube-api/pkg/helpers"
	"github.com/videotube/videotube-api/pkg/response"
)

// Context keys set by Auth for downstream handlers.
const (
	CtxUserIDKey = "userID"
	CtxUserKey   = "user"
)

// Auth is the session resolver: it reads the access token from the
// accessToken cookie first, then the Authorization Bearer header, verifies it
// and loads the caller's identity (sanitized) into the Gin context. It is the
// sole gate for every protected route.
func Auth(users repository.UserRepository, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := accessTokenFrom(c)
		if token == "" {
			response.AbortError(c, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		u, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil || u == nil {
			response.AbortError(c, http.StatusUnauthorized, "invalid token", nil)
			return
		}
		c.Set(CtxUserIDKey, u.ID)
		c.Set(CtxUserKey, u.Public())
		c.Next()
	}
}

func accessTokenFrom(c *gin.Context) string {
	if t, err := c.Cookie(helpers.AccessTokenCookie); err == nil && t != "" {
		return t
	}
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}
