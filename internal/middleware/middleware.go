package middleware

import (
	"net/http"
	"strings"

	"progress-service/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey  = "userID"
	isAdminKey = "isAdmin"
)

// RequireUser resolves the caller identity. The gateway normally injects
// X-User-ID after validating the session; a direct JWT in the
// Authorization header is accepted as a fallback. Requests without either
// are rejected.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			fromToken, err := utils.GetUserIDFromToken(c)
			if err != nil {
				utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid token", err)
				c.Abort()
				return
			}
			userID = fromToken
		}
		if userID == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
			c.Abort()
			return
		}

		c.Set(userIDKey, userID)
		c.Set(isAdminKey, hasAdminPermission(c.GetHeader("X-User-Permissions")))
		c.Next()
	}
}

func hasAdminPermission(header string) bool {
	if header == "" {
		return false
	}
	for _, perm := range strings.Split(header, ",") {
		perm = strings.TrimSpace(perm)
		if strings.HasPrefix(perm, "admin") || strings.HasPrefix(perm, "manager") {
			return true
		}
	}
	return false
}

// UserID returns the identity resolved by RequireUser.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// IsAdmin reports whether the caller carries an admin or manager permission.
func IsAdmin(c *gin.Context) bool {
	return c.GetBool(isAdminKey)
}
