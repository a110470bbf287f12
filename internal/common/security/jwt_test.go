package security

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"

	"studentms/internal/platform/config"
)

func TestMain(m *testing.M) {
	config.Load()
	InitJWT()
	os.Exit(m.Run())
}

func TestGenerateTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("user-1", "Admin")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	decoded, err := jwtauth.VerifyToken(TokenAuth, token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	claims, err := decoded.AsMap(context.Background())
	if err != nil {
		t.Fatalf("claims: %v", err)
	}

	userID, err := GetUserIDFromClaims(claims)
	if err != nil || userID != "user-1" {
		t.Fatalf("user_id claim: %q %v", userID, err)
	}
	role, err := GetUserRoleFromClaims(claims)
	if err != nil || role != "Admin" {
		t.Fatalf("role claim: %q %v", role, err)
	}
}

func TestTokenFromSessionCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := TokenFromSessionCookie(r); got != "" {
		t.Fatalf("expected empty token without cookie, got %q", got)
	}

	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "abc123"})
	if got := TokenFromSessionCookie(r); got != "abc123" {
		t.Fatalf("expected cookie value, got %q", got)
	}
}

func TestSessionCookieLifecycle(t *testing.T) {
	w := httptest.NewRecorder()
	SetSessionCookie(w, "tok")

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != SessionCookieName || c.Value != "tok" {
		t.Fatalf("unexpected cookie: %+v", c)
	}
	if !c.HttpOnly || c.SameSite != http.SameSiteStrictMode {
		t.Fatal("cookie must be HttpOnly with SameSite=Strict")
	}
	if c.MaxAge <= 0 {
		t.Fatal("cookie must carry the token lifetime")
	}

	w = httptest.NewRecorder()
	ClearSessionCookie(w)
	cleared := w.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge != -1 {
		t.Fatalf("clearing must expire the cookie: %+v", cleared)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	_, token, err := TokenAuth.Encode(map[string]interface{}{
		"user_id": "user-1",
		"role":    "Faculty",
		"exp":     time.Now().Add(-time.Minute).Unix(),
		"iat":     time.Now().Add(-2 * time.Minute).Unix(),
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	if _, err := jwtauth.VerifyToken(TokenAuth, token); !errors.Is(err, jwtauth.ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestWrongKeyRejected(t *testing.T) {
	other := jwtauth.New("HS256", []byte("some-other-secret"), nil)
	_, token, err := other.Encode(map[string]interface{}{
		"user_id": "user-1",
		"role":    "Faculty",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	if _, err := jwtauth.VerifyToken(TokenAuth, token); err == nil {
		t.Fatal("token signed with a different key must not verify")
	}
}
