package api

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
)

type mockSessions struct {
	revoked map[string]time.Duration
	err     error
}

func (m *mockSessions) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.revoked[token] = ttl
	return nil
}

func (m *mockSessions) IsRevoked(ctx context.Context, token string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.revoked[token]
	return ok, nil
}

type mockAuth struct {
	userID string
	err    error
}

func (m *mockAuth) IssueToken(userID string) (string, time.Time, error) {
	return "issued-token", time.Now().Add(time.Hour), m.err
}

func (m *mockAuth) VerifyToken(token string) (string, time.Time, error) {
	if m.err != nil {
		return "", time.Time{}, m.err
	}
	return m.userID, time.Now().Add(time.Hour), nil
}

func identityEcho() echo.HandlerFunc {
	return func(c echo.Context) error {
		identity, _ := currentIdentity(c)
		return c.String(http.StatusOK, identity.UserID)
	}
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	c, rec := newTestContext(t, http.MethodGet, "/api/v1/task", "")

	mw := AuthMiddleware(&mockAuth{userID: "user-1"}, nil)
	if err := mw(identityEcho())(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 got %d", rec.Code)
	}
	var resp errorResponse
	if err := sonic.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Message != msgLoginFirst {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	c, rec := newTestContext(t, http.MethodGet, "/api/v1/task", "")
	c.Request().AddCookie(&http.Cookie{Name: authCookieName, Value: "garbage"})

	mw := AuthMiddleware(&mockAuth{err: errors.New("bad signature")}, nil)
	if err := mw(identityEcho())(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403 got %d", rec.Code)
	}
	var resp errorResponse
	if err := sonic.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Message != msgInvalidToken {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
}

func TestAuthMiddlewareRevokedToken(t *testing.T) {
	sessions := &mockSessions{revoked: map[string]time.Duration{"a.b.c": time.Minute}}

	c, rec := newTestContext(t, http.MethodGet, "/api/v1/task", "")
	c.Request().Header.Set(echo.HeaderAuthorization, "Bearer a.b.c")

	mw := AuthMiddleware(&mockAuth{userID: "user-1"}, sessions)
	if err := mw(identityEcho())(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403 got %d", rec.Code)
	}
}

func TestAuthMiddlewareSessionsError(t *testing.T) {
	sessions := &mockSessions{err: errors.New("redis down")}

	c, rec := newTestContext(t, http.MethodGet, "/api/v1/task", "")
	c.Request().Header.Set(echo.HeaderAuthorization, "Bearer a.b.c")

	mw := AuthMiddleware(&mockAuth{userID: "user-1"}, sessions)
	if err := mw(identityEcho())(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500 got %d", rec.Code)
	}
}

func TestAuthMiddlewareCookieToken(t *testing.T) {
	c, rec := newTestContext(t, http.MethodGet, "/api/v1/task", "")
	c.Request().AddCookie(&http.Cookie{Name: authCookieName, Value: "a.b.c"})

	mw := AuthMiddleware(&mockAuth{userID: "user-7"}, &mockSessions{revoked: map[string]time.Duration{}})
	if err := mw(identityEcho())(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	if rec.Body.String() != "user-7" {
		t.Fatalf("identity not propagated: %q", rec.Body.String())
	}
}

func TestAuthMiddlewareBearerWinsOverCookie(t *testing.T) {
	verified := ""
	auth := verifyFunc(func(token string) (string, time.Time, error) {
		verified = token
		return "user-1", time.Now().Add(time.Hour), nil
	})

	c, rec := newTestContext(t, http.MethodGet, "/api/v1/task", "")
	c.Request().Header.Set(echo.HeaderAuthorization, "Bearer h.p.s")
	c.Request().AddCookie(&http.Cookie{Name: authCookieName, Value: "cookie-token"})

	mw := AuthMiddleware(auth, nil)
	if err := mw(identityEcho())(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	if verified != "h.p.s" {
		t.Fatalf("expected the bearer token to be verified, got %q", verified)
	}
}

type verifyFunc func(token string) (string, time.Time, error)

func (f verifyFunc) IssueToken(userID string) (string, time.Time, error) {
	return "", time.Time{}, errors.New("not implemented")
}

func (f verifyFunc) VerifyToken(token string) (string, time.Time, error) {
	return f(token)
}

func TestBearerToken(t *testing.T) {
	testCases := map[string]struct {
		header string
		want   string
	}{
		"empty":         {"", ""},
		"no_prefix":     {"a.b.c", ""},
		"wrong_scheme":  {"Basic a.b.c", ""},
		"not_a_jwt":     {"Bearer opaque", ""},
		"too_many_dots": {"Bearer a.b.c.d", ""},
		"valid":         {"Bearer a.b.c", "a.b.c"},
		"padded":        {"  Bearer a.b.c  ", "a.b.c"},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			if got := bearerToken(tc.header); got != tc.want {
				t.Fatalf("bearerToken(%q) = %q, want %q", tc.header, got, tc.want)
			}
		})
	}
}
