package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const UserIDKey = "user_id"

// RequireUserID extracts the caller identity from the X-User-ID header
// (with a userId query-parameter fallback for older extension builds) and
// rejects anonymous requests.
func RequireUserID() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			userID = c.Query("userId")
		}
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "User ID required",
			})
			c.Abort()
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// UserID reads the identity set by RequireUserID.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
