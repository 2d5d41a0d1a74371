package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/seembe/seembe/internal/authz"
	"github.com/seembe/seembe/internal/domain/event"
	"github.com/seembe/seembe/internal/domain/message"
	"github.com/seembe/seembe/internal/http/middlewares"
)

type fakeMessagesRepo struct {
	byID map[string]message.Message

	deleted []string
}

func newFakeMessagesRepo(items ...message.Message) *fakeMessagesRepo {
	r := &fakeMessagesRepo{byID: map[string]message.Message{}}
	for _, m := range items {
		r.byID[m.ID] = m
	}
	return r
}

func (r *fakeMessagesRepo) Create(_ context.Context, m message.Message) (message.Message, error) {
	r.byID[m.ID] = m
	return m, nil
}

func (r *fakeMessagesRepo) GetByID(_ context.Context, id string) (message.Message, error) {
	m, ok := r.byID[id]
	if !ok {
		return message.Message{}, message.ErrNotFound
	}
	return m, nil
}

func (r *fakeMessagesRepo) ListByEvent(_ context.Context, eventID string) ([]message.Message, error) {
	var out []message.Message
	for _, m := range r.byID {
		if m.EventID == eventID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMessagesRepo) Update(_ context.Context, id, content string) (message.Message, error) {
	m, ok := r.byID[id]
	if !ok {
		return message.Message{}, message.ErrNotFound
	}
	m.Content = content
	r.byID[id] = m
	return m, nil
}

func (r *fakeMessagesRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return message.ErrNotFound
	}
	delete(r.byID, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func testMessagesRouter(t *testing.T, repo *fakeMessagesRepo, events *fakeEventsRepo, identity authz.Identity) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	h := NewMessagesHandler(repo, events, authz.Guard{})

	router := gin.New()
	router.Use(func(c *gin.Context) {
		middlewares.SetIdentity(c, identity)
	})

	router.GET("/api/messages/event/:eventId", h.ListByEvent)
	router.POST("/api/messages/event/:eventId", h.Create)
	router.PUT("/api/messages/:id", h.Update)
	router.DELETE("/api/messages/:id", h.Delete)

	return router
}

func TestMessageCreateAndList(t *testing.T) {
	parent := event.Event{ID: "e-1", UserID: owner.ID, CelebrantID: ownCelebrantID, Title: "Birthday"}

	tests := []struct {
		name       string
		identity   authz.Identity
		wantStatus int
	}{
		{"owner of parent event", owner, http.StatusCreated},
		{"stranger to parent event", stranger, http.StatusNotFound},
		{"admin", admin, http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeMessagesRepo()
			router := testMessagesRouter(t, repo, newFakeEventsRepo(parent), tt.identity)

			rec := doJSON(t, router, http.MethodPost, "/api/messages/event/e-1",
				`{"content":"Happy birthday!"}`)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}

			if tt.wantStatus != http.StatusCreated {
				// the parent event must not be acknowledged to strangers
				if !strings.Contains(rec.Body.String(), "Event not found") {
					t.Errorf("body = %s, want event not-found message", rec.Body.String())
				}
				return
			}

			listRec := doJSON(t, router, http.MethodGet, "/api/messages/event/e-1", "")

			if listRec.Code != http.StatusOK {
				t.Fatalf("list status = %d (body %s)", listRec.Code, listRec.Body.String())
			}

			if !strings.Contains(listRec.Body.String(), "Happy birthday!") {
				t.Errorf("list body = %s, want the created message", listRec.Body.String())
			}
		})
	}
}

func TestMessageProbeAnswersIdentically(t *testing.T) {
	parent := event.Event{ID: "e-1", UserID: owner.ID, CelebrantID: ownCelebrantID, Title: "Birthday"}
	msg := message.Message{ID: "m-1", UserID: owner.ID, EventID: parent.ID, Content: "secret note"}

	repo := newFakeMessagesRepo(msg)
	router := testMessagesRouter(t, repo, newFakeEventsRepo(parent), stranger)

	denied := doJSON(t, router, http.MethodPut, "/api/messages/m-1", `{"content":"probe"}`)
	absent := doJSON(t, router, http.MethodPut, "/api/messages/no-such-id", `{"content":"probe"}`)

	if denied.Code != http.StatusNotFound || absent.Code != http.StatusNotFound {
		t.Fatalf("status denied=%d absent=%d, want both 404", denied.Code, absent.Code)
	}

	// someone else's message and a missing one must be indistinguishable
	if denied.Body.String() != absent.Body.String() {
		t.Errorf("response bodies differ:\n denied: %s\n absent: %s",
			denied.Body.String(), absent.Body.String())
	}
}

func TestMessageUpdateGuardsParentEvent(t *testing.T) {
	parent := event.Event{ID: "e-1", UserID: owner.ID, CelebrantID: ownCelebrantID, Title: "Birthday"}
	msg := message.Message{ID: "m-1", UserID: owner.ID, EventID: parent.ID, Content: "original"}

	t.Run("stranger cannot update", func(t *testing.T) {
		repo := newFakeMessagesRepo(msg)
		router := testMessagesRouter(t, repo, newFakeEventsRepo(parent), stranger)

		rec := doJSON(t, router, http.MethodPut, "/api/messages/m-1", `{"content":"tampered"}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}

		if repo.byID["m-1"].Content != "original" {
			t.Error("denied update must not mutate the message")
		}
	})

	t.Run("owner updates", func(t *testing.T) {
		repo := newFakeMessagesRepo(msg)
		router := testMessagesRouter(t, repo, newFakeEventsRepo(parent), owner)

		rec := doJSON(t, router, http.MethodPut, "/api/messages/m-1", `{"content":"edited"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
		}

		if repo.byID["m-1"].Content != "edited" {
			t.Errorf("content = %q, want edited", repo.byID["m-1"].Content)
		}
	})

	t.Run("delete denied for stranger", func(t *testing.T) {
		repo := newFakeMessagesRepo(msg)
		router := testMessagesRouter(t, repo, newFakeEventsRepo(parent), stranger)

		rec := doJSON(t, router, http.MethodDelete, "/api/messages/m-1", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}

		if len(repo.deleted) != 0 {
			t.Error("denied delete must not remove the message")
		}
	})
}
