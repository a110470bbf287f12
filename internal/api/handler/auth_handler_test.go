package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"

	"studentms/internal/api/middleware"
	"studentms/internal/app/service"
	"studentms/internal/common"
	"studentms/internal/common/security"
	"studentms/internal/domain/model"
	"studentms/internal/domain/repository"
	"studentms/internal/platform/config"
)

func TestMain(m *testing.M) {
	config.Load()
	security.InitJWT()
	os.Exit(m.Run())
}

type memUserRepo struct {
	users map[string]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*model.User)}
}

func (m *memUserRepo) Create(ctx context.Context, user *model.User) error {
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *memUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *memUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, common.ErrNotFound
}

func (m *memUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, common.ErrNotFound
}

func (m *memUserRepo) List(ctx context.Context, filter repository.ListUsersFilter) ([]model.User, int, error) {
	return nil, 0, nil
}

func (m *memUserRepo) UpdateProfile(ctx context.Context, id string, profile model.Profile) error {
	return nil
}

func (m *memUserRepo) UpdatePreferences(ctx context.Context, id string, prefs model.Preferences) error {
	return nil
}

func (m *memUserRepo) UpdatePassword(ctx context.Context, id, newHash string, history model.PasswordHistory, changedAt time.Time) error {
	return nil
}

func (m *memUserRepo) RecordLoginFailure(ctx context.Context, id string, threshold int, lockUntil time.Time) (int, *time.Time, error) {
	u, ok := m.users[id]
	if !ok {
		return 0, nil, common.ErrNotFound
	}
	u.FailedLoginAttempts++
	return u.FailedLoginAttempts, nil, nil
}

func (m *memUserRepo) ResetLoginFailures(ctx context.Context, id string, lastLogin time.Time) error {
	u, ok := m.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.FailedLoginAttempts = 0
	u.LastLogin = &lastLogin
	return nil
}

func (m *memUserRepo) Ban(ctx context.Context, id, bannedBy, reason string, at time.Time) error {
	return nil
}

func (m *memUserRepo) Unban(ctx context.Context, id string) error  { return nil }
func (m *memUserRepo) Delete(ctx context.Context, id string) error { return nil }

func (m *memUserRepo) Stats(ctx context.Context, recentSince time.Time) (*model.UserStats, error) {
	return &model.UserStats{}, nil
}

func newAuthTestServer(repo repository.UserRepository) http.Handler {
	authService := service.NewAuthService(repo, 8, 5, 30*time.Minute)
	authHandler := NewAuthHandler(authService)

	r := chi.NewRouter()
	r.Use(jwtauth.Verify(security.TokenAuth, security.TokenFromSessionCookie, jwtauth.TokenFromHeader))
	r.Route("/api/v1/auth", func(auth chi.Router) {
		auth.Group(func(public chi.Router) {
			authHandler.RegisterPublicRoutes(public)
		})
		auth.Group(func(protected chi.Router) {
			protected.Use(middleware.Authenticator(repo))
			authHandler.RegisterProtectedRoutes(protected)
		})
		auth.Group(func(admin chi.Router) {
			admin.Use(middleware.Authenticator(repo), middleware.RequireRole(model.RoleAdmin))
			authHandler.RegisterAdminRoutes(admin)
		})
	})
	return r
}

func postJSON(t *testing.T, handler http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) common.Envelope {
	t.Helper()
	var envelope common.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return envelope
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == security.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestSignupLoginVerifyFlow(t *testing.T) {
	repo := newMemUserRepo()
	server := newAuthTestServer(repo)

	rec := postJSON(t, server, "/api/v1/auth/signup", map[string]string{
		"username": "jdoe",
		"email":    "jdoe@example.com",
		"password": "Secret@123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if c := sessionCookie(rec); c != nil {
		t.Fatal("signup must not start a session")
	}

	rec = postJSON(t, server, "/api/v1/auth/login", map[string]string{
		"email":    "jdoe@example.com",
		"password": "Secret@123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	envelope := decodeEnvelope(t, rec)
	if !envelope.Success {
		t.Fatalf("expected success envelope: %s", rec.Body.String())
	}
	cookie := sessionCookie(rec)
	if cookie == nil || cookie.Value == "" {
		t.Fatal("login must set the session cookie")
	}
	if !cookie.HttpOnly {
		t.Fatal("session cookie must be HttpOnly")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/verify", nil)
	req.AddCookie(cookie)
	verifyRec := httptest.NewRecorder()
	server.ServeHTTP(verifyRec, req)
	if verifyRec.Code != http.StatusOK {
		t.Fatalf("verify: expected 200, got %d: %s", verifyRec.Code, verifyRec.Body.String())
	}
	var verified struct {
		Success bool `json:"success"`
		Data    struct {
			Username string `json:"username"`
			Role     string `json:"role"`
		} `json:"data"`
	}
	if err := json.Unmarshal(verifyRec.Body.Bytes(), &verified); err != nil {
		t.Fatalf("decode verify: %v", err)
	}
	if verified.Data.Username != "jdoe" || verified.Data.Role != model.RoleFaculty {
		t.Fatalf("unexpected identity: %+v", verified.Data)
	}
}

func TestLoginRejectionEnvelope(t *testing.T) {
	repo := newMemUserRepo()
	server := newAuthTestServer(repo)

	rec := postJSON(t, server, "/api/v1/auth/login", map[string]string{
		"email":    "ghost@example.com",
		"password": "whatever1",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope.Success || envelope.Error == nil {
		t.Fatalf("expected failure envelope: %s", rec.Body.String())
	}
	if envelope.Error.Code != common.CodeInvalidCredentials {
		t.Fatalf("expected INVALID_CREDENTIALS, got %s", envelope.Error.Code)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	repo := newMemUserRepo()
	server := newAuthTestServer(repo)

	postJSON(t, server, "/api/v1/auth/signup", map[string]string{
		"username": "jdoe",
		"email":    "jdoe@example.com",
		"password": "Secret@123",
	})
	loginRec := postJSON(t, server, "/api/v1/auth/login", map[string]string{
		"email":    "jdoe@example.com",
		"password": "Secret@123",
	})
	cookie := sessionCookie(loginRec)
	if cookie == nil {
		t.Fatal("login cookie missing")
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", rec.Code)
	}
	cleared := sessionCookie(rec)
	if cleared == nil || cleared.MaxAge != -1 {
		t.Fatalf("logout must expire the cookie: %+v", cleared)
	}
}

func TestVerifyWithoutToken(t *testing.T) {
	server := newAuthTestServer(newMemUserRepo())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/verify", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope.Error == nil || envelope.Error.Code != common.CodeMissingToken {
		t.Fatalf("expected MISSING_TOKEN: %s", rec.Body.String())
	}
}

func TestRegisterRequiresAdmin(t *testing.T) {
	repo := newMemUserRepo()
	server := newAuthTestServer(repo)

	hash, err := security.HashPassword("Admin@1234")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	repo.Create(context.Background(), &model.User{
		ID: "admin-1", Username: "root", Email: "root@example.com",
		HashedPassword: hash, Role: model.RoleAdmin,
	})
	repo.Create(context.Background(), &model.User{
		ID: "faculty-1", Username: "prof", Email: "prof@example.com",
		HashedPassword: hash, Role: model.RoleFaculty,
	})

	payload := map[string]string{
		"username": "newadmin",
		"email":    "newadmin@example.com",
		"password": "Secret@123",
		"role":     model.RoleAdmin,
	}
	body, _ := json.Marshal(payload)

	facultyToken, _ := security.GenerateToken("faculty-1", model.RoleFaculty)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+facultyToken)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("faculty register: expected 403, got %d", rec.Code)
	}

	adminToken, _ := security.GenerateToken("admin-1", model.RoleAdmin)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("admin register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if c := sessionCookie(rec); c == nil || c.Value == "" {
		t.Fatal("register must set the session cookie")
	}
	envelope := decodeEnvelope(t, rec)
	if !envelope.Success {
		t.Fatalf("expected success envelope: %s", rec.Body.String())
	}
}
