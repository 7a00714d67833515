package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const sessionCookieName = "session_id"

const contextKeyUserID = "user_id"

// RequireSession rejects requests without a valid session cookie and
// binds the session's user id into the gin context for handlers.
func RequireSession(sessions *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(sessionCookieName)
		if err != nil || sessionID == "" {
			unauthorized(c)
			return
		}
		userID, ok := sessions.GetUserID(c.Request.Context(), sessionID)
		if !ok {
			unauthorized(c)
			return
		}
		c.Set(contextKeyUserID, userID)
		c.Next()
	}
}

// UserIDFromContext returns the user id RequireSession bound, or 0 on an
// unauthenticated route.
func UserIDFromContext(c *gin.Context) int64 {
	v, ok := c.Get(contextKeyUserID)
	if !ok {
		return 0
	}
	id, _ := v.(int64)
	return id
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
}
