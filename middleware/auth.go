package middleware

import (
	"net/http"
	"strings"

	"hotel-reservation/utils"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID  = "userID"
	ctxIsAdmin = "isAdmin"
)

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	// Websocket clients cannot set headers; they pass the token as a query.
	return strings.TrimSpace(c.Query("token"))
}

// RequireAuth rejects the request unless a valid access token supplies an
// actor identity {id, isAdmin}.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"code": "error.unauthorized", "message": "missing access token"},
			})
			return
		}
		claims, err := utils.ParseAccessToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"code": "error.unauthorized", "message": "invalid or expired access token"},
			})
			return
		}
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxIsAdmin, claims.IsAdmin)
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{"code": "error.forbidden", "message": "admin access required"},
			})
			return
		}
		c.Next()
	}
}

// ActorID returns the authenticated user's id, or 0 on public routes.
func ActorID(c *gin.Context) uint {
	if v, ok := c.Get(ctxUserID); ok {
		if id, ok2 := v.(uint); ok2 {
			return id
		}
	}
	return 0
}

func IsAdmin(c *gin.Context) bool {
	if v, ok := c.Get(ctxIsAdmin); ok {
		if b, ok2 := v.(bool); ok2 {
			return b
		}
	}
	return false
}
