package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/makerspace/membership-service/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("lookup: %w", domain.ErrUserNotFound), http.StatusNotFound},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrUserExists, http.StatusConflict},
		{domain.ErrNoChatAccount, http.StatusUnprocessableEntity},
		{domain.ErrInvalidSignature, http.StatusUnauthorized},
		{domain.ErrMembershipInactive, http.StatusForbidden},
		{domain.ErrAlreadyInGuild, http.StatusConflict},
		{fmt.Errorf("square: %w", domain.ErrSubscriptionNotFound), http.StatusNotFound},
		{echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest},
		{errors.New("mongo exploded"), http.StatusInternalServerError},
	}

	h := NewHTTPErrorHandler(zerolog.Nop())
	for _, tc := range cases {
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

		h(tc.err, c)

		if rec.Code != tc.code {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.code, rec.Code)
		}
	}
}

func TestHTTPErrorHandler_Envelope(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(errors.New("secret driver detail"), c)

	if body := rec.Body.String(); body != "{\"error\":\"internal server error\"}\n" {
		t.Fatalf("unexpected body %q", body)
	}
}
