package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/seembe/seembe/internal/authz"
	"github.com/seembe/seembe/internal/config"
	"github.com/seembe/seembe/internal/domain/user"
	"github.com/seembe/seembe/internal/http/middlewares"
	"github.com/seembe/seembe/internal/security"
)

type fakeUserStore struct {
	*fakeUserRepo

	deleted []string
	updated []user.User
}

func newFakeUserStore(users ...user.User) *fakeUserStore {
	return &fakeUserStore{fakeUserRepo: newFakeUserRepo(users...)}
}

func (r *fakeUserStore) List(_ context.Context, limit, offset int) ([]user.User, int, error) {
	var out []user.User
	for _, u := range r.byID {
		out = append(out, u)
	}
	return out, len(out), nil
}

func (r *fakeUserStore) Update(_ context.Context, u user.User) (user.User, error) {
	if _, ok := r.byID[u.ID]; !ok {
		return user.User{}, user.ErrNotFound
	}
	r.byID[u.ID] = u
	r.updated = append(r.updated, u)
	return u, nil
}

func (r *fakeUserStore) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return user.ErrNotFound
	}
	delete(r.byID, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func testUsersRouter(t *testing.T, repo *fakeUserStore, identity authz.Identity) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	h := NewUsersHandler(repo, config.Config{BcryptCost: 4})

	router := gin.New()
	router.Use(func(c *gin.Context) {
		middlewares.SetIdentity(c, identity)
	})

	router.GET("/api/users", h.List)
	router.POST("/api/users", h.Create)
	router.GET("/api/users/:id", h.GetByID)
	router.PUT("/api/users/me", h.UpdateMe)
	router.PUT("/api/users/:id", h.Update)
	router.DELETE("/api/users/:id", h.Delete)

	return router
}

func TestAdminCreateUser(t *testing.T) {
	repo := newFakeUserStore()
	router := testUsersRouter(t, repo, admin)

	rec := doJSON(t, router, http.MethodPost, "/api/users",
		`{"name":"Carol","email":"carol@example.com","password":"secret123","role":"admin"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
	}

	if len(repo.created) != 1 {
		t.Fatalf("created %d users, want 1", len(repo.created))
	}

	created := repo.created[0]

	if created.Role != authz.RoleAdmin {
		t.Errorf("role = %q, want admin", created.Role)
	}

	if created.PasswordHash == "secret123" {
		t.Error("password stored in plaintext")
	}
}

func TestAdminCreateUserRejectsUnknownRole(t *testing.T) {
	router := testUsersRouter(t, newFakeUserStore(), admin)

	rec := doJSON(t, router, http.MethodPost, "/api/users",
		`{"name":"Carol","email":"carol@example.com","password":"secret123","role":"superuser"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestUpdateMe(t *testing.T) {
	hash, err := security.HashPassword("old-password", 4)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	self := user.User{
		ID:           owner.ID,
		Email:        owner.Email,
		PasswordHash: hash,
		Name:         "Owner",
		Role:         authz.RoleUser,
		Active:       true,
	}

	t.Run("partial update keeps other fields", func(t *testing.T) {
		repo := newFakeUserStore(self)
		router := testUsersRouter(t, repo, owner)

		rec := doJSON(t, router, http.MethodPut, "/api/users/me", `{"name":"New Name"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
		}

		got := repo.byID[self.ID]

		if got.Name != "New Name" {
			t.Errorf("name = %q, want New Name", got.Name)
		}

		if got.Email != self.Email {
			t.Errorf("email changed unexpectedly: %q", got.Email)
		}

		if got.PasswordHash != hash {
			t.Error("password hash changed without a password in the request")
		}
	})

	t.Run("password change re-hashes", func(t *testing.T) {
		repo := newFakeUserStore(self)
		router := testUsersRouter(t, repo, owner)

		rec := doJSON(t, router, http.MethodPut, "/api/users/me", `{"password":"new-password"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
		}

		got := repo.byID[self.ID]

		if got.PasswordHash == hash || got.PasswordHash == "new-password" {
			t.Error("password was not re-hashed")
		}

		if err := security.CheckPassword(got.PasswordHash, "new-password"); err != nil {
			t.Errorf("new password does not verify: %v", err)
		}
	})
}

func TestAdminDeleteUser(t *testing.T) {
	victim := user.User{ID: "u-9", Email: "bye@example.com", Name: "Bye", Role: authz.RoleUser, Active: true}
	repo := newFakeUserStore(victim)
	router := testUsersRouter(t, repo, admin)

	rec := doJSON(t, router, http.MethodDelete, "/api/users/u-9", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
	}

	if len(repo.deleted) != 1 || repo.deleted[0] != "u-9" {
		t.Errorf("deleted = %v, want [u-9]", repo.deleted)
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/users/u-9", "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rec.Code)
	}

	if !strings.Contains(rec.Body.String(), "User not found") {
		t.Errorf("body = %s, want not-found message", rec.Body.String())
	}
}
