package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/makerspace/membership-service/internal/core/domain"
	"github.com/makerspace/membership-service/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, username, password string) (string, *domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, username, password)
}

func postJSON(path, body string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req, httptest.NewRecorder()
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := echo.New()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			if in.Username != "alice" || in.ExternalChatID != "998877" {
				t.Fatalf("unexpected input: %+v", in)
			}
			if in.Role != domain.RoleMember {
				t.Fatalf("self-registration must create members, got %q", in.Role)
			}
			return &domain.User{
				UserID:         "U1",
				Username:       in.Username,
				Role:           in.Role,
				ExternalChatID: in.ExternalChatID,
				PasswordHash:   "hash",
				Membership:     domain.Membership{Status: domain.MembershipNone},
			}, nil
		},
	}
	handler := NewAuthHandler(stub)

	req, rec := postJSON("/auth/register", `{"username":"alice","password":"secret","email":"a@example.com","external_chat_id":"998877","role":"admin"}`)
	if err := handler.Register(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user in response")
	}
	if user["username"] != "alice" || user["external_chat_id"] != "998877" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Fatal("password hash must not be serialised")
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	e := echo.New()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}

	req, rec := postJSON("/auth/register", `{"username":"bob","password":"x"}`)
	_ = NewAuthHandler(stub).Register(e.NewContext(req, rec))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	e := echo.New()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}

	req, rec := postJSON("/auth/register", "not-json")
	_ = NewAuthHandler(stub).Register(e.NewContext(req, rec))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := echo.New()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, password string) (string, *domain.User, error) {
			if username != "alice" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", username, password)
			}
			return "token123", &domain.User{UserID: "U1", Username: "alice", Role: domain.RoleAdmin}, nil
		},
	}

	req, rec := postJSON("/auth/login", `{"username":"alice","password":"secret"}`)
	if err := NewAuthHandler(stub).Login(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" {
		t.Fatalf("expected token, got %v", resp["token"])
	}
}

func TestAuthHandler_Login_Failures(t *testing.T) {
	for _, failure := range []error{domain.ErrInvalidCredentials, domain.ErrUserNotFound} {
		e := echo.New()
		stub := &stubAuthService{
			loginFn: func(ctx context.Context, username, password string) (string, *domain.User, error) {
				return "", nil, failure
			},
		}

		req, rec := postJSON("/auth/login", `{"username":"ghost","password":"bad"}`)
		_ = NewAuthHandler(stub).Login(e.NewContext(req, rec))

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%v: expected 401, got %d", failure, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "invalid credentials") {
			t.Fatalf("%v: unexpected body %s", failure, rec.Body.String())
		}
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	e := echo.New()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, password string) (string, *domain.User, error) {
			t.Fatalf("should not be called")
			return "", nil, nil
		},
	}

	req, rec := postJSON("/auth/login", "{")
	_ = NewAuthHandler(stub).Login(e.NewContext(req, rec))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
