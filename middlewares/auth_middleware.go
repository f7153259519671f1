package middlewares

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"food-storefront/log"
	"food-storefront/services"

	"github.com/gin-gonic/gin"
)

const (
	SessionCookie = "sf_session"
	AdminHeader   = "X-Admin-Token"

	userIDKey = "userID"
	tokenKey  = "sessionToken"
)

// SessionToken pulls the session token from the Authorization header, falling
// back to the session cookie.
func SessionToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if v, err := c.Cookie(SessionCookie); err == nil {
		return v
	}
	return ""
}

func resolveSession(c *gin.Context, accounts *services.Accounts) error {
	token := SessionToken(c)
	sess, err := accounts.Session(c.Request.Context(), token)
	if err != nil {
		return err
	}
	c.Set(userIDKey, sess.UserID)
	c.Set(tokenKey, token)
	return nil
}

// OptionalAuth attaches the logged-in user when a valid session is present
// and lets anonymous requests through.
func OptionalAuth(accounts *services.Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := resolveSession(c, accounts); err != nil && !errors.Is(err, services.ErrNotLoggedIn) {
			l := log.WithComponent("auth")
			l.Error().Err(err).Msg("resolve session")
		}
		c.Next()
	}
}

// AuthMiddleware rejects requests without a live session.
func AuthMiddleware(accounts *services.Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := resolveSession(c, accounts)
		switch {
		case err == nil:
			c.Next()
		case errors.Is(err, services.ErrNotLoggedIn):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		default:
			l := log.WithComponent("auth")
			l.Error().Err(err).Msg("resolve session")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
	}
}

// UserID returns the logged-in user's id, or "" for anonymous requests.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// Token returns the session token accepted by the auth middleware.
func Token(c *gin.Context) string {
	return c.GetString(tokenKey)
}

// AdminToken guards the dashboard with a shared secret. An empty token leaves
// it open.
func AdminToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}
		got := c.GetHeader(AdminHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin token required"})
			return
		}
		c.Next()
	}
}
