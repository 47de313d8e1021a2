package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestHealthHandler_Readiness(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	cases := []struct {
		name   string
		checks map[string]HealthCheck
		code   int
	}{
		{"all up", map[string]HealthCheck{"mongodb": ok, "redis": ok}, http.StatusOK},
		{"redis down", map[string]HealthCheck{"mongodb": ok, "redis": down}, http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)

			if err := NewHealthHandler(tc.checks).Readiness(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
			if tc.code != http.StatusOK && !strings.Contains(rec.Body.String(), "connection refused") {
				t.Fatalf("expected dependency error in body: %s", rec.Body.String())
			}
		})
	}
}
