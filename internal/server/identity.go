package server

import "github.com/gin-gonic/gin"

const (
	userIDKey = "auth.user_id"
	emailKey  = "auth.email"
)

// withIdentity stores the authenticated user on the gin context. Handlers
// read it back via UserID and Email.
func withIdentity(c *gin.Context, userID, email string) {
	c.Set(userIDKey, userID)
	c.Set(emailKey, email)
}

// UserID returns the authenticated user's id and true if set.
func UserID(c *gin.Context) (string, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

// Email returns the authenticated user's email and true if set.
func Email(c *gin.Context) (string, bool) {
	v, ok := c.Get(emailKey)
	if !ok {
		return "", false
	}
	email, ok := v.(string)
	return email, ok
}
