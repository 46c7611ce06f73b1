package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/jerseyhub/gallery-system/internal/api/metrics"
	"github.com/jerseyhub/gallery-system/internal/core/domain"
	"github.com/jerseyhub/gallery-system/internal/core/ports"
)

type stubAuthService struct {
	loginFn  func(ctx context.Context, input ports.LoginInput) (*ports.AuthResult, error)
	signupFn func(ctx context.Context, input ports.SignupInput) (*ports.AuthResult, error)
	loggedOut []string
}

func (s *stubAuthService) Login(ctx context.Context, input ports.LoginInput) (*ports.AuthResult, error) {
	return s.loginFn(ctx, input)
}

func (s *stubAuthService) Signup(ctx context.Context, input ports.SignupInput) (*ports.AuthResult, error) {
	return s.signupFn(ctx, input)
}

func (s *stubAuthService) Logout(guestSession string) {
	s.loggedOut = append(s.loggedOut, guestSession)
}

func (s *stubAuthService) Resolve(ctx context.Context, userID string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func newTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Login_CodeMode(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, input ports.LoginInput) (*ports.AuthResult, error) {
			if input.AccessCode != "123456" || input.GuestSession != "gs-1" {
				t.Fatalf("unexpected input: %+v", input)
			}
			return &ports.AuthResult{
				Token: "token123",
				User:  &domain.User{ID: "u1", Name: "Karim", Handle: "u123456", Role: domain.RoleUser, Points: domain.WholePoints(10)},
			}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/api/v1/auth/login", `{"access_code":"123456","guest_session":"gs-1"}`)
	if err := h.Login(c); err != nil {
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
	user, ok := resp["user"].(map[string]any)
	if !ok || user["handle"] != "u123456" || user["points"] != 10.0 {
		t.Fatalf("unexpected user payload: %+v", user)
	}
}

func TestAuthHandler_Login_ReplayedDownload(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, input ports.LoginInput) (*ports.AuthResult, error) {
			return &ports.AuthResult{
				Token: "token123",
				User:  &domain.User{ID: "u1", Role: domain.RoleUser, Points: domain.WholePoints(9)},
				Replay: &ports.ReplayOutcome{
					Command:  domain.DeferredCommand{Kind: domain.CommandDownload, DesignID: "d1"},
					Download: &ports.DownloadResult{DesignID: "d1", SourceLink: "https://example.com/d1", Remaining: domain.WholePoints(9)},
				},
			}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/api/v1/auth/login", `{"access_code":"123456"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	replay, ok := resp["replay"].(map[string]any)
	if !ok {
		t.Fatalf("expected replay in response: %v", resp)
	}
	if replay["design_id"] != "d1" || replay["source_link"] != "https://example.com/d1" || replay["points"] != 9.0 {
		t.Fatalf("unexpected replay payload: %+v", replay)
	}
}

func TestAuthHandler_Login_CountsAttempts(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, input ports.LoginInput) (*ports.AuthResult, error) {
			if input.AccessCode != "" {
				return &ports.AuthResult{Token: "t", User: &domain.User{ID: "u1", Role: domain.RoleUser}}, nil
			}
			return nil, domain.ErrBanned
		},
	}
	h := NewAuthHandler(stub)

	codeOK := testutil.ToFloat64(metrics.LoginsTotal.WithLabelValues("code", "ok"))
	adminBanned := testutil.ToFloat64(metrics.LoginsTotal.WithLabelValues("admin", "banned"))

	c, _ := newTestContext(t, http.MethodPost, "/api/v1/auth/login", `{"access_code":"123456"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	c, _ = newTestContext(t, http.MethodPost, "/api/v1/auth/login", `{"username":"fahim4mm","password":"wrong"}`)
	if err := h.Login(c); !errors.Is(err, domain.ErrBanned) {
		t.Fatalf("expected ErrBanned, got %v", err)
	}

	if got := testutil.ToFloat64(metrics.LoginsTotal.WithLabelValues("code", "ok")); got != codeOK+1 {
		t.Fatalf("code/ok: expected %v, got %v", codeOK+1, got)
	}
	if got := testutil.ToFloat64(metrics.LoginsTotal.WithLabelValues("admin", "banned")); got != adminBanned+1 {
		t.Fatalf("admin/banned: expected %v, got %v", adminBanned+1, got)
	}
}

func TestAuthHandler_Login_Errors(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, input ports.LoginInput) (*ports.AuthResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/api/v1/auth/login", `{"access_code":"000000"}`)
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Signup_Validation(t *testing.T) {
	stub := &stubAuthService{
		signupFn: func(ctx context.Context, input ports.SignupInput) (*ports.AuthResult, error) {
			t.Fatalf("service must not be called on invalid payload")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub)

	cases := []string{
		`{"access_code":"123456"}`,           // missing name
		`{"name":"Karim","access_code":"12"}`, // short code
		`{"name":"Karim","access_code":"abcdef"}`, // non-numeric code
	}
	for _, body := range cases {
		c, _ := newTestContext(t, http.MethodPost, "/api/v1/auth/signup", body)
		err := h.Signup(c)
		var he *echo.HTTPError
		if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %v", body, err)
		}
	}
}

func TestAuthHandler_Signup_Success(t *testing.T) {
	stub := &stubAuthService{
		signupFn: func(ctx context.Context, input ports.SignupInput) (*ports.AuthResult, error) {
			if input.Name != "Karim" || input.AccessCode != "123456" {
				t.Fatalf("unexpected input: %+v", input)
			}
			return &ports.AuthResult{
				Token: "token123",
				User:  &domain.User{ID: "u1", Name: "Karim", Role: domain.RoleUser, Points: domain.WholePoints(10)},
			}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/api/v1/auth/signup", `{"name":"Karim","access_code":"123456"}`)
	if err := h.Signup(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	stub := &stubAuthService{}
	h := NewAuthHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/api/v1/auth/logout", `{"guest_session":"gs-9"}`)
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if len(stub.loggedOut) != 1 || stub.loggedOut[0] != "gs-9" {
		t.Fatalf("expected guest session cleared, got %v", stub.loggedOut)
	}
}
