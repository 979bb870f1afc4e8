package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/persome/account-system/internal/core/domain"
	"github.com/persome/account-system/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (domain.UserData, error)
	signInFn   func(ctx context.Context, identifier, password string) (ports.SignInResult, error)
	signOutFn  func(ctx context.Context, userID, reason string) error
	refreshFn  func(ctx context.Context, refreshToken string) (ports.SignInResult, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (domain.UserData, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) SignIn(ctx context.Context, identifier, password string) (ports.SignInResult, error) {
	return s.signInFn(ctx, identifier, password)
}

func (s *stubAuthService) SignOut(ctx context.Context, userID, reason string) error {
	return s.signOutFn(ctx, userID, reason)
}

func (s *stubAuthService) RefreshTokens(ctx context.Context, refreshToken string) (ports.SignInResult, error) {
	return s.refreshFn(ctx, refreshToken)
}

func newTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (domain.UserData, error) {
			if in.Username != "alice" || in.Role != domain.RoleClient {
				t.Fatalf("unexpected input: %+v", in)
			}
			return domain.UserData{ID: "u1", Username: in.Username, Role: in.Role}, nil
		},
	}
	handler := NewAuthHandler(stub)

	body := `{"full_name":"Alice","username":"alice","email":"a@example.com","password":"longenough","role":"CLIENT"}`
	c, rec := newTestContext(t, http.MethodPost, "/auth/register", body)

	if err := handler.Register(c); err != nil {
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
	if !ok || user["username"] != "alice" || user["role"] != "CLIENT" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_Register_RejectsShortPassword(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (domain.UserData, error) {
			t.Fatalf("service must not be called for invalid payload")
			return domain.UserData{}, nil
		},
	}
	handler := NewAuthHandler(stub)

	body := `{"full_name":"Bob","username":"bob","email":"b@example.com","password":"short","role":"CLIENT"}`
	c, _ := newTestContext(t, http.MethodPost, "/auth/register", body)

	err := handler.Register(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_Register_RejectsUnknownRole(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{})

	body := `{"full_name":"Bob","username":"bob","email":"b@example.com","password":"longenough","role":"SUPERUSER"}`
	c, _ := newTestContext(t, http.MethodPost, "/auth/register", body)

	err := handler.Register(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		signInFn: func(_ context.Context, identifier, password string) (ports.SignInResult, error) {
			if identifier != "alice" || password != "s3cret99" {
				t.Fatalf("unexpected credentials: %s %s", identifier, password)
			}
			return ports.SignInResult{
				AccessToken:  "at",
				RefreshToken: "rt",
				IsFirstTime:  true,
				User:         domain.UserData{ID: "u1", Username: "alice", Role: domain.RoleClient},
			}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/auth/login", `{"identifier":"alice","password":"s3cret99"}`)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["access_token"] != "at" || resp["refresh_token"] != "rt" || resp["is_first_time"] != true {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

// Service errors pass through untouched; the central error handler maps them
// to status codes.
func TestAuthHandler_Login_PropagatesServiceError(t *testing.T) {
	stub := &stubAuthService{
		signInFn: func(context.Context, string, string) (ports.SignInResult, error) {
			return ports.SignInResult{}, domain.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/auth/login", `{"identifier":"alice","password":"wrong"}`)

	if err := handler.Login(c); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	var gotUserID, gotReason string
	stub := &stubAuthService{
		signOutFn: func(_ context.Context, userID, reason string) error {
			gotUserID, gotReason = userID, reason
			return nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/auth/logout", `{"reason":"switch_account"}`)
	c.Set("user_id", "u1")
	c.Set("role", domain.RoleClient)

	if err := handler.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if gotUserID != "u1" || gotReason != "switch_account" {
		t.Fatalf("unexpected sign-out args: %s %s", gotUserID, gotReason)
	}
}

func TestAuthHandler_Logout_DefaultsReason(t *testing.T) {
	var gotReason string
	stub := &stubAuthService{
		signOutFn: func(_ context.Context, _, reason string) error {
			gotReason = reason
			return nil
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/auth/logout", "")
	c.Set("user_id", "u1")
	c.Set("role", domain.RoleClient)

	if err := handler.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if gotReason != "user_initiated" {
		t.Fatalf("expected default reason, got %q", gotReason)
	}
}

func TestAuthHandler_Logout_Unauthenticated(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{})

	c, _ := newTestContext(t, http.MethodPost, "/auth/logout", "")

	err := handler.Logout(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuthHandler_Refresh(t *testing.T) {
	stub := &stubAuthService{
		refreshFn: func(_ context.Context, token string) (ports.SignInResult, error) {
			if token != "rt" {
				t.Fatalf("unexpected token %q", token)
			}
			return ports.SignInResult{AccessToken: "at2", RefreshToken: "rt2", User: domain.UserData{ID: "u1"}}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/auth/refresh", `{"refresh_token":"rt"}`)

	if err := handler.Refresh(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["access_token"] != "at2" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}
