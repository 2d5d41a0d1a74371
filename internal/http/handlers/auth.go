package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/seembe/seembe/internal/auth"
	"github.com/seembe/seembe/internal/config"
	"github.com/seembe/seembe/internal/domain/user"
	"github.com/seembe/seembe/internal/http/middlewares"
	"github.com/seembe/seembe/internal/security"
)

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
}

type UserWriter interface {
	Create(ctx context.Context, email, passwordHash, name, role string) (user.User, error)
}

type AuthHandler struct {
	users      UserReader
	userWriter UserWriter
	jwt        *auth.Manager
	transport  auth.Transport
	cfg        config.Config
}

func NewAuthHandler(users UserReader, userWriter UserWriter, jwtManager *auth.Manager, transport auth.Transport, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		users:      users,
		userWriter: userWriter,
		jwt:        jwtManager,
		transport:  transport,
		cfg:        cfg,
	}
}

// Register creates the account, then signs the new user in by setting the
// session credential.
func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	hash, err := security.HashPassword(req.Password, h.cfg.BcryptCost)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	u, err := h.userWriter.Create(cctx, req.Email, hash, req.Name, "")

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondBadRequest(ctx, "User already exists", nil)
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	if err := h.startSession(ctx, u.ID); err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"user": u})
}

// Login verifies credentials. Unknown email and wrong password answer with
// the identical 401 so accounts cannot be enumerated.
func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		RespondUnauthorized(ctx, "invalid_credentials", "Invalid email or password")
		return
	}

	if !foundUser.Active {
		RespondUnauthorized(ctx, "invalid_credentials", "Invalid email or password")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnauthorized(ctx, "invalid_credentials", "Invalid email or password")
		return
	}

	if err := h.startSession(ctx, foundUser.ID); err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": foundUser})
}

// Logout clears the client-held credential. The token itself stays valid
// until expiry: there is no server-side revocation list.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	h.transport.Clear(ctx)

	ctx.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Profile returns the acting user, re-read so the response reflects the
// freshest record.
func (h *AuthHandler) Profile(ctx *gin.Context) {
	identity, ok := middlewares.IdentityFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Not authorized")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, identity.ID)

	if err != nil {
		RespondUnauthorized(ctx, "unauthorized", "Not authorized")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *AuthHandler) startSession(ctx *gin.Context, userID string) error {
	token, err := h.jwt.Issue(userID)

	if err != nil {
		return err
	}

	h.transport.Set(ctx, token, h.jwt.TTL())

	return nil
}
