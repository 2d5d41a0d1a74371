package middlewares

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/seembe/seembe/internal/actorctx"
	"github.com/seembe/seembe/internal/auth"
	"github.com/seembe/seembe/internal/authz"
	"github.com/seembe/seembe/internal/domain/user"
)

// Keep these interfaces small so tests can fake them easily.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type UserResolver interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type AuthMiddleware struct {
	jwt       TokenVerifier
	users     UserResolver
	transport auth.Transport
}

func NewAuthMiddleware(jwt TokenVerifier, users UserResolver, transport auth.Transport) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, users: users, transport: transport}
}

// RequireAuth extracts the session credential, verifies it and resolves the
// subject to a live user. Every failure path clears the credential and
// answers 401 with the same generic message, so callers cannot probe which
// step failed.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := m.transport.Extract(c)

		if err != nil {
			m.reject(c)
			return
		}

		claims, err := m.jwt.Verify(raw)

		if err != nil {
			m.reject(c)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		u, err := m.users.GetByID(ctx, claims.Subject)

		if err != nil || !u.Active {
			// token subject no longer resolves to a live account
			m.reject(c)
			return
		}

		// Stash the resolved identity on the context; the hash never travels.
		SetIdentity(c, authz.Identity{ID: u.ID, Email: u.Email, Role: u.Role})

		c.Request = c.Request.WithContext(actorctx.WithUserID(c.Request.Context(), u.ID))

		c.Next()
	}
}

func (m *AuthMiddleware) reject(c *gin.Context) {
	m.transport.Clear(c)

	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "unauthorized",
			"message": "Not authorized",
		},
	})
}

// Helpers so handlers don't need to know the magic keys.

func SetIdentity(c *gin.Context, id authz.Identity) {
	c.Set(ctxUserIDKey, id.ID)
	c.Set(ctxEmailKey, id.Email)
	c.Set(ctxRoleKey, id.Role)
}

func IdentityFromContext(c *gin.Context) (authz.Identity, bool) {
	id, okID := c.Get(ctxUserIDKey)
	email, _ := c.Get(ctxEmailKey)
	role, okRole := c.Get(ctxRoleKey)

	if !okID || !okRole {
		return authz.Identity{}, false
	}

	idStr, ok1 := id.(string)
	roleStr, ok2 := role.(string)
	emailStr, _ := email.(string)

	if !ok1 || !ok2 || idStr == "" {
		return authz.Identity{}, false
	}

	return authz.Identity{ID: idStr, Email: emailStr, Role: roleStr}, true
}

func UserIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxUserIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

func RoleFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxRoleKey)
	if !ok {
		return "", false
	}
	role, ok := v.(string)
	return role, ok
}
