package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := Authenticate(testIssuer())(okHandler)
	err := h(c)

	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", httpErr.Code)
	}
}

func TestAuthenticate_InvalidFormat(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"no bearer prefix", "Token abc123"},
		{"missing token", "Bearer"},
		{"empty value", "Bearer "},
		{"basic auth", "Basic dXNlcjpwYXNz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", tt.header)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			h := Authenticate(testIssuer())(okHandler)
			err := h(c)

			httpErr, ok := err.(*echo.HTTPError)
			if !ok {
				t.Fatalf("expected echo.HTTPError, got %T", err)
			}
			if httpErr.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", httpErr.Code)
			}
		})
	}
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	issuer := testIssuer()
	tokenStr, _ := issuer.IssueAccessToken(1, "u@x.com", "user", time.Now().Add(-25*time.Hour))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := Authenticate(issuer)(okHandler)
	err := h(c)

	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %v", err)
	}
}

func TestAuthenticate_AttachesIdentity(t *testing.T) {
	issuer := testIssuer()
	tokenStr, _ := issuer.IssueAccessToken(42, "a@x.com", "admin", time.Now())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got Identity
	handler := func(c echo.Context) error {
		id, ok := IdentityFromContext(c.Request().Context())
		if !ok {
			t.Fatal("expected identity on request context")
		}
		got = id
		return c.String(http.StatusOK, "ok")
	}

	if err := Authenticate(issuer)(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.UserID != 42 || got.Email != "a@x.com" || got.Role != "admin" {
		t.Errorf("unexpected identity: %+v", got)
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		identity *Identity
		roles    []string
		wantCode int // 0 means handler ran
	}{
		{"no identity", nil, []string{"admin"}, http.StatusUnauthorized},
		{"user on admin route", &Identity{UserID: 1, Role: "user"}, []string{"admin"}, http.StatusForbidden},
		{"admin on admin route", &Identity{UserID: 1, Role: "admin"}, []string{"admin"}, 0},
		{"admin passes user route", &Identity{UserID: 1, Role: "admin"}, []string{"user"}, 0},
		{"user on user route", &Identity{UserID: 1, Role: "user"}, []string{"user"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.identity != nil {
				req = req.WithContext(WithIdentity(req.Context(), *tt.identity))
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := RequireRole(tt.roles...)(okHandler)(c)

			if tt.wantCode == 0 {
				if err != nil {
					t.Fatalf("expected handler to run, got %v", err)
				}
				return
			}
			httpErr, ok := err.(*echo.HTTPError)
			if !ok {
				t.Fatalf("expected echo.HTTPError, got %T", err)
			}
			if httpErr.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, httpErr.Code)
			}
		})
	}
}

func TestValidRole(t *testing.T) {
	if !ValidRole("user") || !ValidRole("admin") {
		t.Error("expected user and admin to be valid roles")
	}
	if ValidRole("superuser") || ValidRole("") {
		t.Error("unexpected role accepted")
	}
}
