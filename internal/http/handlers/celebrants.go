package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/seembe/seembe/internal/authz"
	"github.com/seembe/seembe/internal/config"
	"github.com/seembe/seembe/internal/domain/celebrant"
	"github.com/seembe/seembe/internal/http/middlewares"
)

type CelebrantsStore interface {
	Create(ctx context.Context, c celebrant.Celebrant) (celebrant.Celebrant, error)
	GetByID(ctx context.Context, id string) (celebrant.Celebrant, error)
	List(ctx context.Context, filter celebrant.ListFilter) ([]celebrant.Celebrant, int, error)
	Update(ctx context.Context, id string, req celebrant.UpdateCelebrantRequest) (celebrant.Celebrant, error)
	Delete(ctx context.Context, id string) error
}

type EventsCounter interface {
	CountByCelebrant(ctx context.Context, celebrantID string) (int, error)
}

type CelebrantsHandler struct {
	repo   CelebrantsStore
	events EventsCounter
	guard  authz.Guard
}

func NewCelebrantsHandler(repo CelebrantsStore, events EventsCounter, guard authz.Guard) *CelebrantsHandler {
	return &CelebrantsHandler{repo: repo, events: events, guard: guard}
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func pagination(ctx *gin.Context) (limit, offset int) {
	limit = defaultPageSize

	if raw := ctx.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	if limit > maxPageSize {
		limit = maxPageSize
	}

	page := 1

	if raw := ctx.Query("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page = n
		}
	}

	return limit, (page - 1) * limit
}

func (h *CelebrantsHandler) Create(ctx *gin.Context) {
	identity, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Not authorized")
		return
	}

	var req celebrant.CreateCelebrantRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	created, err := h.repo.Create(cctx, celebrant.NewFromCreateRequest(identity.ID, req))

	if err != nil {
		if errors.Is(err, celebrant.ErrNameTaken) {
			RespondBadRequest(ctx, "A celebrant with this name already exists", nil)
			return
		}

		RespondInternal(ctx, "Could not create celebrant")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"celebrant": created})
}

func (h *CelebrantsHandler) List(ctx *gin.Context) {
	identity, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Not authorized")
		return
	}

	filter := celebrant.ListFilter{}
	filter.Limit, filter.Offset = pagination(ctx)

	// non-admins only ever see their own celebrants
	if ownerID, scoped := h.guard.ListScope(identity); scoped {
		filter.OwnerID = &ownerID
	}

	if name := ctx.Query("name"); name != "" {
		filter.Name = &name
	}

	if rel := ctx.Query("relationship"); rel != "" {
		filter.Relationship = &rel
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	items, total, err := h.repo.List(cctx, filter)

	if err != nil {
		RespondInternal(ctx, "Could not list celebrants")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"celebrants": items,
		"total":      total,
	})
}

// fetchAuthorized loads the celebrant and applies the owner-or-admin rule.
// A deny renders exactly like a miss, so existence never leaks.
func (h *CelebrantsHandler) fetchAuthorized(ctx *gin.Context) (celebrant.Celebrant, bool) {
	identity, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Not authorized")
		return celebrant.Celebrant{}, false
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	c, err := h.repo.GetByID(cctx, ctx.Param("id"))

	if err != nil {
		if errors.Is(err, celebrant.ErrNotFound) {
			RespondNotFound(ctx, "Celebrant not found")
			return celebrant.Celebrant{}, false
		}

		RespondInternal(ctx, "Could not fetch celebrant")
		return celebrant.Celebrant{}, false
	}

	if !h.guard.CanAccess(identity, c.UserID) {
		RespondNotFound(ctx, "Celebrant not found")
		return celebrant.Celebrant{}, false
	}

	return c, true
}

func (h *CelebrantsHandler) GetByID(ctx *gin.Context) {
	c, ok := h.fetchAuthorized(ctx)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"celebrant": c})
}

func (h *CelebrantsHandler) Update(ctx *gin.Context) {
	c, ok := h.fetchAuthorized(ctx)
	if !ok {
		return
	}

	var req celebrant.UpdateCelebrantRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	updated, err := h.repo.Update(cctx, c.ID, req)

	if err != nil {
		if errors.Is(err, celebrant.ErrNameTaken) {
			RespondBadRequest(ctx, "A celebrant with this name already exists", nil)
			return
		}

		RespondInternal(ctx, "Could not update celebrant")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"celebrant": updated})
}

func (h *CelebrantsHandler) Delete(ctx *gin.Context) {
	c, ok := h.fetchAuthorized(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	// a celebrant with events must be cleaned up first
	count, err := h.events.CountByCelebrant(cctx, c.ID)

	if err != nil {
		RespondInternal(ctx, "Could not delete celebrant")
		return
	}

	if count > 0 {
		RespondConflict(ctx, "celebrant_in_use",
			fmt.Sprintf("Cannot delete celebrant: %d associated event(s) exist", count))
		return
	}

	if err := h.repo.Delete(cctx, c.ID); err != nil {
		RespondInternal(ctx, "Could not delete celebrant")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Celebrant deleted successfully"})
}
