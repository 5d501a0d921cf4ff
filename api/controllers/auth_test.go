package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/webmarket/internal/auth"
	"github.com/angelmondragon/webmarket/internal/users"
	pkgAuth "github.com/angelmondragon/webmarket/pkg/auth"
	"github.com/angelmondragon/webmarket/pkg/config"
	"github.com/angelmondragon/webmarket/pkg/enums"
	pkgerrors "github.com/angelmondragon/webmarket/pkg/errors"
)

type stubAuthService struct {
	login       *auth.LoginResponse
	refresh     *auth.RefreshResponse
	err         error
	gotToken    string
	gotAccessID string
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return s.login, s.err
}

func (s *stubAuthService) Refresh(ctx context.Context, accessToken string, req auth.RefreshRequest) (*auth.RefreshResponse, error) {
	s.gotToken = accessToken
	return s.refresh, s.err
}

func (s *stubAuthService) Logout(ctx context.Context, accessID string) error {
	s.gotAccessID = accessID
	return s.err
}

type stubRegisterService struct {
	err   error
	calls int
}

func (s *stubRegisterService) Register(ctx context.Context, req auth.RegisterRequest) (*users.UserDTO, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &users.UserDTO{ID: 1, Name: req.Name, Email: req.Email, Role: "user"}, nil
}

func TestAuthLoginSetsTokenHeader(t *testing.T) {
	svc := &stubAuthService{login: &auth.LoginResponse{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer"}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"asha@example.com","password":"Secret#1"}`))
	rec := httptest.NewRecorder()

	AuthLogin(svc, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if got := rec.Header().Get(tokenHeader); got != "access" {
		t.Fatalf("expected token header, got %q", got)
	}
	var body auth.LoginResponse
	decodeData(t, rec, &body)
	if body.RefreshToken != "refresh" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestAuthLoginInvalidPayload(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"not-an-email"}`))
	rec := httptest.NewRecorder()

	AuthLogin(&stubAuthService{}, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestAuthLoginInvalidCredentials(t *testing.T) {
	svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"asha@example.com","password":"nope"}`))
	rec := httptest.NewRecorder()

	AuthLogin(svc, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestAuthRegisterCreatesAndSignsIn(t *testing.T) {
	reg := &stubRegisterService{}
	svc := &stubAuthService{login: &auth.LoginResponse{AccessToken: "access", RefreshToken: "refresh"}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(`{"name":"Asha","email":"asha@example.com","password":"Secret#1"}`))
	rec := httptest.NewRecorder()

	AuthRegister(reg, svc, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}
	if reg.calls != 1 {
		t.Fatalf("expected one register call, got %d", reg.calls)
	}
}

func TestAuthRegisterConflict(t *testing.T) {
	reg := &stubRegisterService{err: pkgerrors.New(pkgerrors.CodeConflict, "email already registered")}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(`{"name":"Asha","email":"asha@example.com","password":"Secret#1"}`))
	rec := httptest.NewRecorder()

	AuthRegister(reg, &stubAuthService{}, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
}

func TestAuthRefreshRequiresBearer(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{"refresh_token":"abc"}`))
	rec := httptest.NewRecorder()

	AuthRefresh(&stubAuthService{}, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestAuthRefreshForwardsToken(t *testing.T) {
	svc := &stubAuthService{refresh: &auth.RefreshResponse{AccessToken: "next", RefreshToken: "rotated"}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{"refresh_token":"abc"}`))
	req.Header.Set("Authorization", "Bearer old-token")
	rec := httptest.NewRecorder()

	AuthRefresh(svc, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.gotToken != "old-token" {
		t.Fatalf("expected access token forwarded, got %q", svc.gotToken)
	}
	if got := rec.Header().Get(tokenHeader); got != "next" {
		t.Fatalf("expected new token header, got %q", got)
	}
}

func TestAuthLogoutAcceptsExpiredToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 5}
	token, err := pkgAuth.MintAccessToken(cfg, time.Now().Add(-time.Hour), pkgAuth.AccessTokenPayload{UserID: 3, Role: enums.UserRoleUser, JTI: "session-1"})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	svc := &stubAuthService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	AuthLogout(svc, cfg, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.gotAccessID != "session-1" {
		t.Fatalf("expected session-1 revoked, got %q", svc.gotAccessID)
	}
}
