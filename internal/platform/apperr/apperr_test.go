package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		err    *Error
		status int
	}{
		{Validation("bad input"), http.StatusBadRequest},
		{Auth("invalid credentials"), http.StatusUnauthorized},
		{Forbidden("insufficient permissions"), http.StatusForbidden},
		{NotFound("user not found"), http.StatusNotFound},
		{Conflict("email already registered"), http.StatusConflict},
		{Internal("query failed", errors.New("conn refused")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := tt.err.Status(); got != tt.status {
			t.Errorf("%v: expected status %d, got %d", tt.err, tt.status, got)
		}
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Internal("query failed", cause)
	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to be reachable via errors.Is")
	}
	wrapped := fmt.Errorf("outer: %w", err)
	if !IsKind(wrapped, KindInternal) {
		t.Error("expected IsKind to see through wrapping")
	}
}

func TestHTTPErrorHandler_MapsKinds(t *testing.T) {
	logger := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler(logger)

	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"conflict", Conflict("email already registered"), http.StatusConflict, "email already registered"},
		{"auth", Auth("invalid credentials"), http.StatusUnauthorized, "invalid credentials"},
		{"internal hides detail", Internal("query failed", errors.New("conn refused")), http.StatusInternalServerError, "internal server error"},
		{"echo error passthrough", echo.NewHTTPError(http.StatusTeapot, "short and stout"), http.StatusTeapot, "short and stout"},
		{"unknown error", errors.New("surprise"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			e.HTTPErrorHandler(tt.err, c)

			if rec.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.body) {
				t.Errorf("body %q does not contain %q", rec.Body.String(), tt.body)
			}
			if tt.name == "internal hides detail" && strings.Contains(rec.Body.String(), "conn refused") {
				t.Error("internal cause leaked into response body")
			}
		})
	}
}
