package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	pkgAuth "github.com/angelmondragon/webmarket/pkg/auth"
	"github.com/angelmondragon/webmarket/pkg/auth/session"
	"github.com/angelmondragon/webmarket/pkg/config"
	"github.com/angelmondragon/webmarket/pkg/db/models"
	"github.com/angelmondragon/webmarket/pkg/enums"
	pkgerrors "github.com/angelmondragon/webmarket/pkg/errors"
	"github.com/angelmondragon/webmarket/pkg/security"
	"gorm.io/gorm"
)

var testJWT = config.JWTConfig{
	Secret:                 "secret",
	Issuer:                 "webmarket",
	ExpirationMinutes:      30,
	RefreshTokenTTLMinutes: 600,
}

func TestServiceLoginIssuesTokens(t *testing.T) {
	password := "shopper-secret"
	user := &models.User{
		ID:           7,
		Name:         "Asha",
		Email:        "asha@example.com",
		PasswordHash: mustHashPassword(t, password),
		Role:         enums.UserRoleUser,
	}
	svc, sessions, err := buildTestService(user)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	resp, err := svc.Login(context.Background(), LoginRequest{Email: " ASHA@example.com ", Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != 7 || claims.Role != enums.UserRoleUser {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.ID == "" || sessions.generated[claims.ID] != 7 {
		t.Fatalf("expected session bound to jti %q, got %v", claims.ID, sessions.generated)
	}
	if resp.RefreshToken != "refresh-token" {
		t.Fatalf("unexpected refresh token %q", resp.RefreshToken)
	}
	if resp.TokenType != "Bearer" || resp.ExpiresIn != 1800 {
		t.Fatalf("unexpected token metadata %+v", resp)
	}
	if resp.User == nil || resp.User.Email != user.Email || resp.User.LastLoginAt == nil {
		t.Fatalf("unexpected user %+v", resp.User)
	}
}

func TestServiceLoginRejectsBadCredentials(t *testing.T) {
	user := &models.User{ID: 1, Email: "asha@example.com", PasswordHash: mustHashPassword(t, "right-password"), Role: enums.UserRoleUser}
	svc, sessions, err := buildTestService(user)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	cases := []LoginRequest{
		{Email: "asha@example.com", Password: "wrong-password"},
		{Email: "nobody@example.com", Password: "right-password"},
		{Email: "  ", Password: "right-password"},
	}
	for _, req := range cases {
		_, err := svc.Login(context.Background(), req)
		if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
			t.Fatalf("expected unauthorized for %q, got %v", req.Email, err)
		}
		if pkgerrors.As(err).Message() != invalidCredentialsMessage {
			t.Fatalf("unexpected message %q", pkgerrors.As(err).Message())
		}
	}
	if len(sessions.generated) != 0 {
		t.Fatalf("no session expected, got %v", sessions.generated)
	}
}

func TestServiceRefreshRotatesAndReloadsRole(t *testing.T) {
	password := "shopper-secret"
	user := &models.User{ID: 3, Email: "ravi@example.com", PasswordHash: mustHashPassword(t, password), Role: enums.UserRoleUser}
	svc, sessions, err := buildTestService(user)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	login, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	user.Role = enums.UserRoleAdmin

	refreshed, err := svc.Refresh(context.Background(), login.AccessToken, RefreshRequest{RefreshToken: "refresh-token"})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	claims, err := pkgAuth.ParseAccessToken(testJWT, refreshed.AccessToken)
	if err != nil {
		t.Fatalf("parse refreshed token: %v", err)
	}
	if claims.ID != "rotated-jti" {
		t.Fatalf("expected rotated jti, got %q", claims.ID)
	}
	if !claims.IsAdmin() {
		t.Fatalf("expected role to be reloaded, got %s", claims.Role)
	}
	if refreshed.RefreshToken != "rotated-refresh" {
		t.Fatalf("unexpected refresh token %q", refreshed.RefreshToken)
	}
	if _, ok := sessions.generated[sessions.lastRotatedFrom]; ok {
		t.Fatal("old session should be gone after rotation")
	}

	if _, err := svc.Refresh(context.Background(), login.AccessToken, RefreshRequest{RefreshToken: "wrong"}); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for bad refresh token, got %v", err)
	}
	if _, err := svc.Refresh(context.Background(), "garbage", RefreshRequest{RefreshToken: "refresh-token"}); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for bad access token, got %v", err)
	}
}

func TestServiceRefreshAcceptsExpiredAccessToken(t *testing.T) {
	user := &models.User{ID: 5, Email: "old@example.com", Role: enums.UserRoleUser}
	svc, sessions, err := buildTestService(user)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	sessions.generated["old-jti"] = user.ID

	expired, err := pkgAuth.MintAccessToken(testJWT, time.Now().Add(-2*time.Hour), pkgAuth.AccessTokenPayload{UserID: 5, Role: enums.UserRoleUser, JTI: "old-jti"})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := svc.Refresh(context.Background(), expired, RefreshRequest{RefreshToken: "refresh-token"}); err != nil {
		t.Fatalf("refresh with expired access token: %v", err)
	}
}

func TestServiceLogoutRevokes(t *testing.T) {
	svc, sessions, err := buildTestService(&models.User{ID: 1})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	sessions.generated["jti-1"] = 1

	if err := svc.Logout(context.Background(), "jti-1"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok := sessions.generated["jti-1"]; ok {
		t.Fatal("expected session revoked")
	}
	if err := svc.Logout(context.Background(), ""); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	sessions.revokeErr = errors.New("redis down")
	if err := svc.Logout(context.Background(), "jti-2"); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestNewServiceRequiresDeps(t *testing.T) {
	if _, err := NewService(ServiceParams{SessionManager: newStubSessionManager()}); err == nil {
		t.Fatal("expected missing user repo error")
	}
	if _, err := NewService(ServiceParams{UserRepo: stubUserRepo{}}); err == nil {
		t.Fatal("expected missing session manager error")
	}
}

func buildTestService(user *models.User) (Service, *stubSessionManager, error) {
	sessionMgr := newStubSessionManager()
	svc, err := NewService(ServiceParams{
		UserRepo:       stubUserRepo{user: user},
		SessionManager: sessionMgr,
		JWTConfig:      testJWT,
	})
	return svc, sessionMgr, err
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

type stubUserRepo struct {
	user *models.User
	err  error
}

func (s stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.user == nil || s.user.Email != email {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s stubUserRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s stubUserRepo) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	if s.user != nil && s.user.ID == id {
		s.user.LastLoginAt = &at
	}
	return nil
}

type stubSessionManager struct {
	generated       map[string]uint
	lastRotatedFrom string
	revokeErr       error
}

func newStubSessionManager() *stubSessionManager {
	return &stubSessionManager{generated: map[string]uint{}}
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string, userID uint) (string, error) {
	s.generated[accessID] = userID
	return "refresh-token", nil
}

func (s *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (*session.Rotation, error) {
	userID, ok := s.generated[oldAccessID]
	if !ok || provided != "refresh-token" {
		return nil, session.ErrInvalidRefreshToken
	}
	delete(s.generated, oldAccessID)
	s.lastRotatedFrom = oldAccessID
	s.generated["rotated-jti"] = userID
	return &session.Rotation{AccessID: "rotated-jti", RefreshToken: "rotated-refresh", UserID: userID}, nil
}

func (s *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	if s.revokeErr != nil {
		return s.revokeErr
	}
	delete(s.generated, accessID)
	return nil
}
