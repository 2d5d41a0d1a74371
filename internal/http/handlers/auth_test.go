package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/seembe/seembe/internal/auth"
	"github.com/seembe/seembe/internal/authz"
	"github.com/seembe/seembe/internal/config"
	"github.com/seembe/seembe/internal/domain/user"
	"github.com/seembe/seembe/internal/http/middlewares"
	"github.com/seembe/seembe/internal/security"
)

const testCookieName = "seembe_session"

type fakeUserRepo struct {
	byEmail map[string]user.User
	byID    map[string]user.User

	createErr error
	created   []user.User
}

func newFakeUserRepo(users ...user.User) *fakeUserRepo {
	r := &fakeUserRepo{
		byEmail: map[string]user.User{},
		byID:    map[string]user.User{},
	}

	for _, u := range users {
		r.byEmail[u.Email] = u
		r.byID[u.ID] = u
	}

	return r
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (user.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) Create(_ context.Context, email, passwordHash, name, role string) (user.User, error) {
	if r.createErr != nil {
		return user.User{}, r.createErr
	}

	if _, ok := r.byEmail[email]; ok {
		return user.User{}, user.ErrEmailTaken
	}

	if role == "" {
		role = authz.RoleUser
	}

	u := user.User{
		ID:           "u-" + name,
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         role,
		Active:       true,
	}

	r.byEmail[email] = u
	r.byID[u.ID] = u
	r.created = append(r.created, u)

	return u, nil
}

func testAuthRouter(t *testing.T, repo *fakeUserRepo, identity *authz.Identity) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	cfg := config.Config{BcryptCost: 4}
	jwtManager := auth.NewManager("test-secret", time.Hour)
	transport := auth.NewCookieTransport(testCookieName, false)

	h := NewAuthHandler(repo, repo, jwtManager, transport, cfg)

	router := gin.New()

	if identity != nil {
		router.Use(func(c *gin.Context) {
			middlewares.SetIdentity(c, *identity)
		})
	}

	router.POST("/api/auth/register", h.Register)
	router.POST("/api/auth/login", h.Login)
	router.POST("/api/auth/logout", h.Logout)
	router.GET("/api/auth/profile", h.Profile)

	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == testCookieName {
			return c
		}
	}
	return nil
}

func TestRegisterCreatesUserAndSession(t *testing.T) {
	repo := newFakeUserRepo()
	router := testAuthRouter(t, repo, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register",
		`{"name":"Ada","email":"ada@example.com","password":"secret123"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var body struct {
		User user.User `json:"user"`
	}

	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	if body.User.Email != "ada@example.com" {
		t.Errorf("email = %q, want ada@example.com", body.User.Email)
	}

	if body.User.Role != authz.RoleUser {
		t.Errorf("role = %q, want %q", body.User.Role, authz.RoleUser)
	}

	cookie := sessionCookie(rec)

	if cookie == nil || cookie.Value == "" {
		t.Fatal("expected a session cookie to be set")
	}

	if !cookie.HttpOnly {
		t.Error("session cookie must be httpOnly")
	}

	// the stored hash must not be the plaintext
	if len(repo.created) != 1 {
		t.Fatalf("created %d users, want 1", len(repo.created))
	}

	if repo.created[0].PasswordHash == "secret123" {
		t.Error("password stored in plaintext")
	}

	if strings.Contains(rec.Body.String(), "secret123") ||
		strings.Contains(rec.Body.String(), repo.created[0].PasswordHash) {
		t.Error("response leaks password material")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo(user.User{
		ID:     "u-1",
		Email:  "taken@example.com",
		Active: true,
	})
	router := testAuthRouter(t, repo, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register",
		`{"name":"Bob","email":"taken@example.com","password":"secret123"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	if !strings.Contains(rec.Body.String(), "User already exists") {
		t.Errorf("body = %s, want duplicate user message", rec.Body.String())
	}
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"short password", `{"name":"Ada","email":"ada@example.com","password":"abc"}`},
		{"bad email", `{"name":"Ada","email":"not-an-email","password":"secret123"}`},
		{"missing name", `{"email":"ada@example.com","password":"secret123"}`},
		{"malformed json", `{"name":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := testAuthRouter(t, newFakeUserRepo(), nil)

			rec := doJSON(t, router, http.MethodPost, "/api/auth/register", tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	hash, err := security.HashPassword("correct-horse", 4)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	active := user.User{
		ID:           "u-1",
		Email:        "ada@example.com",
		PasswordHash: hash,
		Name:         "Ada",
		Role:         authz.RoleUser,
		Active:       true,
	}

	inactive := active
	inactive.ID = "u-2"
	inactive.Email = "gone@example.com"
	inactive.Active = false

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "valid credentials",
			body:       `{"email":"ada@example.com","password":"correct-horse"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "wrong password",
			body:       `{"email":"ada@example.com","password":"wrong"}`,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unknown email",
			body:       `{"email":"nobody@example.com","password":"correct-horse"}`,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "deactivated account",
			body:       `{"email":"gone@example.com","password":"correct-horse"}`,
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := testAuthRouter(t, newFakeUserRepo(active, inactive), nil)

			rec := doJSON(t, router, http.MethodPost, "/api/auth/login", tt.body)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}

			if tt.wantStatus == http.StatusOK {
				if sessionCookie(rec) == nil {
					t.Error("expected a session cookie on successful login")
				}
				return
			}

			// every failure reads identically so accounts can't be enumerated
			if !strings.Contains(rec.Body.String(), "Invalid email or password") {
				t.Errorf("body = %s, want the generic credentials message", rec.Body.String())
			}

			if sessionCookie(rec) != nil {
				t.Error("failed login must not set a session cookie")
			}
		})
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	router := testAuthRouter(t, newFakeUserRepo(), nil)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/logout", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	cookie := sessionCookie(rec)

	if cookie == nil {
		t.Fatal("expected an expiring session cookie")
	}

	if cookie.Value != "" || cookie.MaxAge >= 0 {
		t.Errorf("cookie not cleared: value=%q maxAge=%d", cookie.Value, cookie.MaxAge)
	}
}

func TestProfile(t *testing.T) {
	u := user.User{
		ID:     "u-1",
		Email:  "ada@example.com",
		Name:   "Ada",
		Role:   authz.RoleUser,
		Active: true,
	}

	t.Run("authenticated", func(t *testing.T) {
		identity := authz.Identity{ID: u.ID, Email: u.Email, Role: u.Role}
		router := testAuthRouter(t, newFakeUserRepo(u), &identity)

		rec := doJSON(t, router, http.MethodGet, "/api/auth/profile", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}

		if !strings.Contains(rec.Body.String(), "ada@example.com") {
			t.Errorf("body = %s, want profile payload", rec.Body.String())
		}
	})

	t.Run("no identity", func(t *testing.T) {
		router := testAuthRouter(t, newFakeUserRepo(u), nil)

		rec := doJSON(t, router, http.MethodGet, "/api/auth/profile", "")

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})
}
