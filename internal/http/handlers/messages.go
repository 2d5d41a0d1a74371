package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/seembe/seembe/internal/authz"
	"github.com/seembe/seembe/internal/config"
	"github.com/seembe/seembe/internal/domain/event"
	"github.com/seembe/seembe/internal/domain/message"
	"github.com/seembe/seembe/internal/http/middlewares"
)

type MessagesStore interface {
	Create(ctx context.Context, m message.Message) (message.Message, error)
	GetByID(ctx context.Context, id string) (message.Message, error)
	ListByEvent(ctx context.Context, eventID string) ([]message.Message, error)
	Update(ctx context.Context, id, content string) (message.Message, error)
	Delete(ctx context.Context, id string) error
}

type EventReader interface {
	GetByID(ctx context.Context, id string) (event.Event, error)
}

// Messages belong to events; every operation here authorizes against the
// parent event's owner, not the message row.
type MessagesHandler struct {
	repo   MessagesStore
	events EventReader
	guard  authz.Guard
}

func NewMessagesHandler(repo MessagesStore, events EventReader, guard authz.Guard) *MessagesHandler {
	return &MessagesHandler{repo: repo, events: events, guard: guard}
}

func (h *MessagesHandler) authorizeEvent(ctx *gin.Context, eventID string) (authz.Identity, bool) {
	identity, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Not authorized")
		return authz.Identity{}, false
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	e, err := h.events.GetByID(cctx, eventID)

	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			RespondNotFound(ctx, "Event not found")
			return authz.Identity{}, false
		}

		RespondInternal(ctx, "Could not fetch event")
		return authz.Identity{}, false
	}

	if !h.guard.CanAccess(identity, e.UserID) {
		RespondNotFound(ctx, "Event not found")
		return authz.Identity{}, false
	}

	return identity, true
}

func (h *MessagesHandler) ListByEvent(ctx *gin.Context) {
	eventID := ctx.Param("eventId")

	if _, ok := h.authorizeEvent(ctx, eventID); !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	items, err := h.repo.ListByEvent(cctx, eventID)

	if err != nil {
		RespondInternal(ctx, "Could not list messages")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"messages": items})
}

func (h *MessagesHandler) Create(ctx *gin.Context) {
	eventID := ctx.Param("eventId")

	identity, ok := h.authorizeEvent(ctx, eventID)
	if !ok {
		return
	}

	var req message.CreateMessageRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	created, err := h.repo.Create(cctx, message.New(identity.ID, eventID, req.Content))

	if err != nil {
		RespondInternal(ctx, "Could not create message")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": created})
}

// fetchAuthorized loads a message by id and checks the parent event's owner.
// Absent and denied answer with the identical body, so probing ids reveals
// nothing about which messages exist.
func (h *MessagesHandler) fetchAuthorized(ctx *gin.Context) (message.Message, bool) {
	identity, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Not authorized")
		return message.Message{}, false
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	m, err := h.repo.GetByID(cctx, ctx.Param("id"))

	if err != nil {
		if errors.Is(err, message.ErrNotFound) {
			RespondNotFound(ctx, "Message not found")
			return message.Message{}, false
		}

		RespondInternal(ctx, "Could not fetch message")
		return message.Message{}, false
	}

	e, err := h.events.GetByID(cctx, m.EventID)

	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			RespondNotFound(ctx, "Message not found")
			return message.Message{}, false
		}

		RespondInternal(ctx, "Could not fetch message")
		return message.Message{}, false
	}

	if !h.guard.CanAccess(identity, e.UserID) {
		RespondNotFound(ctx, "Message not found")
		return message.Message{}, false
	}

	return m, true
}

func (h *MessagesHandler) Update(ctx *gin.Context) {
	m, ok := h.fetchAuthorized(ctx)
	if !ok {
		return
	}

	var req message.UpdateMessageRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	updated, err := h.repo.Update(cctx, m.ID, req.Content)

	if err != nil {
		RespondInternal(ctx, "Could not update message")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": updated})
}

func (h *MessagesHandler) Delete(ctx *gin.Context) {
	m, ok := h.fetchAuthorized(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if err := h.repo.Delete(cctx, m.ID); err != nil {
		RespondInternal(ctx, "Could not delete message")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Message deleted successfully"})
}
