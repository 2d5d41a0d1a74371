package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/seembe/seembe/internal/authz"
	"github.com/seembe/seembe/internal/config"
	"github.com/seembe/seembe/internal/domain/celebrant"
	"github.com/seembe/seembe/internal/domain/event"
	"github.com/seembe/seembe/internal/http/middlewares"
)

type EventsStore interface {
	Create(ctx context.Context, e event.Event) (event.Event, error)
	GetByID(ctx context.Context, id string) (event.Event, error)
	List(ctx context.Context, filter event.ListFilter) ([]event.Event, int, error)
	Update(ctx context.Context, id string, req event.UpdateEventRequest) (event.Event, error)
	Delete(ctx context.Context, id string) error
}

type CelebrantReader interface {
	GetByID(ctx context.Context, id string) (celebrant.Celebrant, error)
}

type EventsHandler struct {
	repo       EventsStore
	celebrants CelebrantReader
	guard      authz.Guard
}

func NewEventsHandler(repo EventsStore, celebrants CelebrantReader, guard authz.Guard) *EventsHandler {
	return &EventsHandler{repo: repo, celebrants: celebrants, guard: guard}
}

func (h *EventsHandler) Create(ctx *gin.Context) {
	identity, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Not authorized")
		return
	}

	var req event.CreateEventRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	// the referenced celebrant must exist and be the caller's; a stranger's
	// celebrant renders as not found
	c, err := h.celebrants.GetByID(cctx, req.CelebrantID)

	if err != nil || !h.guard.CanAccess(identity, c.UserID) {
		if err != nil && !errors.Is(err, celebrant.ErrNotFound) {
			RespondInternal(ctx, "Could not create event")
			return
		}

		RespondNotFound(ctx, "Celebrant not found")
		return
	}

	created, err := h.repo.Create(cctx, event.NewFromCreateRequest(identity.ID, req))

	if err != nil {
		RespondInternal(ctx, "Could not create event")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"event": created})
}

func (h *EventsHandler) List(ctx *gin.Context) {
	identity, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Not authorized")
		return
	}

	filter := event.ListFilter{}
	filter.Limit, filter.Offset = pagination(ctx)

	if ownerID, scoped := h.guard.ListScope(identity); scoped {
		filter.OwnerID = &ownerID
	}

	if celebrantID := ctx.Query("celebrantId"); celebrantID != "" {
		filter.CelebrantID = &celebrantID
	}

	if status := ctx.Query("status"); status != "" {
		filter.Status = &status
	}

	if raw := ctx.Query("from"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.From = &t
		}
	}

	if raw := ctx.Query("to"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.To = &t
		}
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	items, total, err := h.repo.List(cctx, filter)

	if err != nil {
		RespondInternal(ctx, "Could not list events")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"events": items,
		"total":  total,
	})
}

func (h *EventsHandler) fetchAuthorized(ctx *gin.Context) (event.Event, bool) {
	identity, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Not authorized")
		return event.Event{}, false
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	e, err := h.repo.GetByID(cctx, ctx.Param("id"))

	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			RespondNotFound(ctx, "Event not found")
			return event.Event{}, false
		}

		RespondInternal(ctx, "Could not fetch event")
		return event.Event{}, false
	}

	if !h.guard.CanAccess(identity, e.UserID) {
		RespondNotFound(ctx, "Event not found")
		return event.Event{}, false
	}

	return e, true
}

func (h *EventsHandler) GetByID(ctx *gin.Context) {
	e, ok := h.fetchAuthorized(ctx)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"event": e})
}

func (h *EventsHandler) Update(ctx *gin.Context) {
	e, ok := h.fetchAuthorized(ctx)
	if !ok {
		return
	}

	var req event.UpdateEventRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	updated, err := h.repo.Update(cctx, e.ID, req)

	if err != nil {
		RespondInternal(ctx, "Could not update event")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"event": updated})
}

func (h *EventsHandler) Delete(ctx *gin.Context) {
	e, ok := h.fetchAuthorized(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if err := h.repo.Delete(cctx, e.ID); err != nil {
		RespondInternal(ctx, "Could not delete event")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully"})
}
