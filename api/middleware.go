package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storehouse-app/storehouse/internal/domain"
	"github.com/storehouse-app/storehouse/internal/service/auth"
)

const userContextKey = "current_user"

// SessionKeyHeader identifies an anonymous client so its drafts survive
// navigation; authenticated callers are keyed by user ID instead.
const SessionKeyHeader = "X-Session-Key"

type Middleware struct {
	auth auth.AuthUseCase
}

func NewMiddleware(authService auth.AuthUseCase) *Middleware {
	return &Middleware{auth: authService}
}

// RequireAuth aborts with 401 unless a valid bearer token identifies a
// known user whose token version is still current.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := m.resolveUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "error": "authentication required"})
			return
		}
		c.Set(userContextKey, user)
		c.Next()
	}
}

// OptionalAuth sets the caller when a valid token is present and never
// aborts; unauthenticated requests simply carry no user.
func (m *Middleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, ok := m.resolveUser(c); ok {
			c.Set(userContextKey, user)
		}
		c.Next()
	}
}

func (m *Middleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || user.Role != domain.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"code": "FORBIDDEN", "error": "admin access required"})
			return
		}
		c.Next()
	}
}

func (m *Middleware) resolveUser(c *gin.Context) (*domain.User, bool) {
	header := c.GetHeader("Authorization")
	if len(header) < 8 || !strings.EqualFold(header[:7], "bearer ") {
		return nil, false
	}

	claims, err := m.auth.ParseAccessToken(strings.TrimSpace(header[7:]))
	if err != nil {
		return nil, false
	}

	ctx, cancel := contextWithTimeout(c, 5*time.Second)
	defer cancel()

	user, err := m.auth.GetUser(ctx, claims.UserID)
	if err != nil {
		return nil, false
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, false
	}
	return user, true
}

func CurrentUser(c *gin.Context) *domain.User {
	v, exists := c.Get(userContextKey)
	if !exists {
		return nil
	}
	user, _ := v.(*domain.User)
	return user
}

// SessionKey scopes draft storage: the user ID when authenticated, the
// client-provided session header otherwise.
func SessionKey(c *gin.Context) string {
	if user := CurrentUser(c); user != nil {
		return user.ID.String()
	}
	return c.GetHeader(SessionKeyHeader)
}
