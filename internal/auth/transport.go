package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

var ErrNoCredential = errors.New("no credential presented")

// Transport moves the session token between server and client. The cookie
// transport is what the app wires up; BearerTransport satisfies the same
// interface so the channel can be swapped without touching the middleware.
type Transport interface {
	Extract(ctx *gin.Context) (string, error)
	Set(ctx *gin.Context, token string, ttl time.Duration)
	Clear(ctx *gin.Context)
}

// CookieTransport stores the token in an httpOnly, SameSite=Lax cookie.
// Secure is only set in production so local HTTP development keeps working.
type CookieTransport struct {
	Name   string
	Secure bool
}

func NewCookieTransport(name string, secure bool) *CookieTransport {
	return &CookieTransport{Name: name, Secure: secure}
}

func (t *CookieTransport) Extract(ctx *gin.Context) (string, error) {
	raw, err := ctx.Cookie(t.Name)

	if err != nil || raw == "" {
		return "", ErrNoCredential
	}

	return raw, nil
}

func (t *CookieTransport) Set(ctx *gin.Context, token string, ttl time.Duration) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(
		t.Name,
		token,
		int(ttl.Seconds()),
		"/",
		"",
		t.Secure,
		true, // HttpOnly.
	)
}

func (t *CookieTransport) Clear(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(
		t.Name,
		"",
		-1,
		"/",
		"",
		t.Secure,
		true,
	)
}

// BearerTransport reads the token from the Authorization header. Set is a
// no-op: with header transport the client stores the token itself, so the
// handler returns it in the response body instead.
type BearerTransport struct{}

func (BearerTransport) Extract(ctx *gin.Context) (string, error) {
	header := ctx.GetHeader("Authorization")

	if !strings.HasPrefix(header, "Bearer ") {
		return "", ErrNoCredential
	}

	raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))

	if raw == "" {
		return "", ErrNoCredential
	}

	return raw, nil
}

func (BearerTransport) Set(ctx *gin.Context, token string, ttl time.Duration) {}

func (BearerTransport) Clear(ctx *gin.Context) {}
