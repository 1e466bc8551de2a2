package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatsync/internal/auth"
)

// ContextKeyUserID is the context key for storing user ID.
const ContextKeyUserID = "user_id"

// AuthMiddleware validates the session cookie, falling back to a bearer header.
func AuthMiddleware(authService *auth.Service, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(auth.CookieName)
		if err != nil || token == "" {
			token = bearerToken(c.GetHeader("Authorization"))
		}
		if token == "" {
			logger.Debug().Str("path", c.Request.URL.Path).Msg("missing session token")
			fail(c, http.StatusUnauthorized, "Unauthorized - No Token Provided")
			return
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			logger.Debug().Err(err).Msg("invalid token")
			fail(c, http.StatusUnauthorized, "Unauthorized - Invalid Token")
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" {
		return ""
	}
	return strings.TrimSpace(token)
}

// currentUser returns the authenticated user id set by AuthMiddleware.
func currentUser(c *gin.Context) string {
	return c.GetString(ContextKeyUserID)
}

// LoggerMiddleware creates a middleware that logs HTTP requests.
func LoggerMiddleware(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Msg("http request")
	}
}
