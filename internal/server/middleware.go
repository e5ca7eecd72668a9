package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"snapfeed/backend/internal/security"
)

const bearerPrefix = "bearer "

// RequireAuth validates the Bearer access token and puts the caller's
// identity on the context. Failures answer 401 with a message naming the
// failure class so clients know whether to refresh.
func RequireAuth(tokens *security.TokenProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing authorization token"})
			return
		}
		userID, email, err := tokens.Verify(token)
		if err != nil {
			message := "invalid token"
			if errors.Is(err, security.ErrTokenExpired) {
				message = "token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": message})
			return
		}
		withIdentity(c, userID, email)
		c.Next()
	}
}

// extractBearer returns the Bearer token from the Authorization header, or ""
// when missing or malformed.
func extractBearer(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}

// RequestLogger logs one line per request with method, path, status, and
// duration, plus the authenticated principal when one was established.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		}
		if email, ok := Email(c); ok {
			attrs = append(attrs, "user", email)
		}
		slog.Info("http request", attrs...)
	}
}
