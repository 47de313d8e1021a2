package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/makerspace/membership-service/internal/core/domain"
	"github.com/makerspace/membership-service/internal/core/ports"
)

type stubMemberService struct {
	users       map[string]*domain.User
	creator     []string
	sponsorship *ports.SponsorshipCheckoutInput
}

func (s *stubMemberService) GetMember(_ context.Context, userID string) (*domain.User, error) {
	u, ok := s.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (s *stubMemberService) UpdateCreatorTypes(_ context.Context, userID string, types []string) (*domain.User, error) {
	s.creator = types
	return &domain.User{UserID: userID, CreatorTypes: types}, nil
}

func (s *stubMemberService) SponsorshipCheckout(_ context.Context, in ports.SponsorshipCheckoutInput) (*ports.PaymentLink, error) {
	s.sponsorship = &in
	return &ports.PaymentLink{ID: "PL1", URL: "https://square.link/u/x"}, nil
}

func (s *stubMemberService) MembershipCheckout(_ context.Context, userID string) (*ports.PaymentLink, error) {
	return &ports.PaymentLink{ID: "PL2", URL: "https://square.link/u/y"}, nil
}

// newMemberContext builds a context as the Auth middleware leaves it.
func newMemberContext(req *http.Request, rec *httptest.ResponseRecorder, userID, role string) echo.Context {
	e := echo.New()
	e.Validator = NewValidator()
	c := e.NewContext(req, rec)
	c.Set("user_id", userID)
	c.Set("role", role)
	return c
}

func TestMemberHandler_Get_SelfAndAdmin(t *testing.T) {
	svc := &stubMemberService{users: map[string]*domain.User{"U1": {UserID: "U1", Username: "alice"}}}
	h := NewMemberHandler(svc)

	for _, caller := range []struct{ id, role string }{{"U1", domain.RoleMember}, {"ADMIN", domain.RoleAdmin}} {
		req := httptest.NewRequest(http.MethodGet, "/v1/members/U1", nil)
		rec := httptest.NewRecorder()
		c := newMemberContext(req, rec, caller.id, caller.role)
		c.SetParamNames("userID")
		c.SetParamValues("U1")

		if err := h.Get(c); err != nil {
			t.Fatalf("%s: unexpected error: %v", caller.role, err)
		}
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"username":"alice"`) {
			t.Fatalf("%s: unexpected response %d %s", caller.role, rec.Code, rec.Body.String())
		}
	}
}

func TestMemberHandler_UpdateCreatorTypes(t *testing.T) {
	svc := &stubMemberService{}
	h := NewMemberHandler(svc)

	req, rec := postJSON("/v1/members/U1/creator-types", `{"creator_types":["Maker","Artist"]}`)
	c := newMemberContext(req, rec, "U1", domain.RoleMember)
	c.SetParamNames("userID")
	c.SetParamValues("U1")

	if err := h.UpdateCreatorTypes(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(svc.creator) != 2 || svc.creator[0] != domain.CreatorMaker {
		t.Fatalf("unexpected creator types: %v", svc.creator)
	}
}

func TestMemberHandler_UpdateCreatorTypes_RejectsUnknownCategory(t *testing.T) {
	svc := &stubMemberService{}
	h := NewMemberHandler(svc)

	req, rec := postJSON("/v1/members/U1/creator-types", `{"creator_types":["Woodworker"]}`)
	c := newMemberContext(req, rec, "U1", domain.RoleMember)
	c.SetParamNames("userID")
	c.SetParamValues("U1")

	err := h.UpdateCreatorTypes(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
	if svc.creator != nil {
		t.Fatal("service must not be called")
	}
}

func TestMemberHandler_SponsorshipCheckout(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		donor string
	}{
		{"attributed", `{"recipient_id":"U1","recurring":true}`, "D1"},
		{"anonymous", `{"recipient_id":"U1","anonymous":true}`, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubMemberService{}
			h := NewMemberHandler(svc)

			req, rec := postJSON("/v1/sponsorships/checkout", tc.body)
			if err := h.SponsorshipCheckout(newMemberContext(req, rec, "D1", domain.RoleMember)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != http.StatusCreated {
				t.Fatalf("expected 201, got %d", rec.Code)
			}
			if svc.sponsorship.DonorID != tc.donor || svc.sponsorship.RecipientID != "U1" {
				t.Fatalf("unexpected input: %+v", svc.sponsorship)
			}
		})
	}
}

func TestMemberHandler_SponsorshipCheckout_RequiresRecipient(t *testing.T) {
	h := NewMemberHandler(&stubMemberService{})

	req, rec := postJSON("/v1/sponsorships/checkout", `{"recurring":true}`)
	err := h.SponsorshipCheckout(newMemberContext(req, rec, "D1", domain.RoleMember))

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}

func TestMemberHandler_Subscribe(t *testing.T) {
	h := NewMemberHandler(&stubMemberService{})

	req, rec := postJSON("/v1/members/U1/subscribe", "")
	c := newMemberContext(req, rec, "U1", domain.RoleMember)
	c.SetParamNames("userID")
	c.SetParamValues("U1")

	if err := h.Subscribe(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated || !strings.Contains(rec.Body.String(), "square.link") {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}
