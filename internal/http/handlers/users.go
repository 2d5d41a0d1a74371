package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/seembe/seembe/internal/authz"
	"github.com/seembe/seembe/internal/config"
	"github.com/seembe/seembe/internal/domain/user"
	"github.com/seembe/seembe/internal/http/middlewares"
	"github.com/seembe/seembe/internal/security"
)

type UserStore interface {
	Create(ctx context.Context, email, passwordHash, name, role string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	List(ctx context.Context, limit, offset int) ([]user.User, int, error)
	Update(ctx context.Context, u user.User) (user.User, error)
	Delete(ctx context.Context, id string) error
}

// UsersHandler serves the admin user management routes plus the self-service
// profile update. The router wraps everything except UpdateMe in RequireAdmin.
type UsersHandler struct {
	repo UserStore
	cfg  config.Config
}

func NewUsersHandler(repo UserStore, cfg config.Config) *UsersHandler {
	return &UsersHandler{repo: repo, cfg: cfg}
}

func (h *UsersHandler) List(ctx *gin.Context) {
	limit, offset := pagination(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	items, total, err := h.repo.List(cctx, limit, offset)

	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"users": items,
		"total": total,
	})
}

func (h *UsersHandler) GetByID(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.repo.GetByID(cctx, ctx.Param("id"))

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not fetch user")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *UsersHandler) Create(ctx *gin.Context) {
	var req user.AdminCreateUserRequest

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

	role := req.Role

	if role == "" {
		role = authz.RoleUser
	}

	created, err := h.repo.Create(cctx, req.Email, hash, req.Name, role)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondBadRequest(ctx, "User already exists", nil)
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"user": created})
}

func (h *UsersHandler) Update(ctx *gin.Context) {
	h.applyUpdate(ctx, ctx.Param("id"))
}

// UpdateMe lets any authenticated user edit their own profile.
func (h *UsersHandler) UpdateMe(ctx *gin.Context) {
	identity, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Not authorized")
		return
	}

	h.applyUpdate(ctx, identity.ID)
}

func (h *UsersHandler) applyUpdate(ctx *gin.Context, id string) {
	var req user.UpdateProfileRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not update user")
		return
	}

	if req.Name != "" {
		u.Name = req.Name
	}

	if req.Email != "" {
		u.Email = req.Email
	}

	// any password change is re-hashed before it touches storage
	if req.Password != "" {
		hash, err := security.HashPassword(req.Password, h.cfg.BcryptCost)

		if err != nil {
			RespondInternal(ctx, "Could not update user")
			return
		}

		u.PasswordHash = hash
	}

	updated, err := h.repo.Update(cctx, u)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondBadRequest(ctx, "Email is already in use", nil)
			return
		}

		RespondInternal(ctx, "Could not update user")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": updated})
}

func (h *UsersHandler) Delete(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if err := h.repo.Delete(cctx, ctx.Param("id")); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not delete user")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
