package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/davemorenodev/loungelab-backend/internal/identity"
	pkgAuth "github.com/davemorenodev/loungelab-backend/pkg/auth"
	"github.com/davemorenodev/loungelab-backend/pkg/auth/session"
	"github.com/davemorenodev/loungelab-backend/pkg/config"
	"github.com/davemorenodev/loungelab-backend/pkg/db/models"
	pkgerrors "github.com/davemorenodev/loungelab-backend/pkg/errors"
	"github.com/davemorenodev/loungelab-backend/pkg/security"
)

type stubUserRepo struct {
	user          *models.User
	lastLoginAt   time.Time
	lastLoginUser uuid.UUID
}

func (r *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if r.user == nil || r.user.Email != email {
		return nil, gorm.ErrRecordNotFound
	}
	return r.user, nil
}

func (r *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if r.user == nil || r.user.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return r.user, nil
}

func (r *stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.lastLoginUser = id
	r.lastLoginAt = at
	return nil
}

type stubSessionManager struct {
	generated []string
	revoked   []string
	rotateErr error

	rotatedFrom string
}

func (m *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	m.generated = append(m.generated, accessID)
	return "refresh-" + accessID, nil
}

func (m *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if m.rotateErr != nil {
		return "", "", m.rotateErr
	}
	m.rotatedFrom = oldAccessID
	return "rotated-access-id", "rotated-refresh-token", nil
}

func (m *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	m.revoked = append(m.revoked, accessID)
	return nil
}

type stubPublisher struct {
	transitions []identity.Transition
}

func (p *stubPublisher) Publish(ctx context.Context, transition identity.Transition) {
	p.transitions = append(p.transitions, transition)
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "loungelab-test",
		ExpirationMinutes: 15,
	}
}

func testUser(t *testing.T, email, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	return &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	}
}

func newAuthService(t *testing.T, repo *stubUserRepo, sessions *stubSessionManager, publisher *stubPublisher) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		Transitions:    publisher,
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestLoginPublishesSignedInWithCartToken(t *testing.T) {
	user := testUser(t, "shopper@example.com", "correct horse")
	repo := &stubUserRepo{user: user}
	sessions := &stubSessionManager{}
	publisher := &stubPublisher{}
	svc := newAuthService(t, repo, sessions, publisher)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "Shopper@Example.com",
		Password: "correct horse",
	}, "cart-tok")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected both tokens in the response")
	}
	if resp.User == nil || resp.User.Email != user.Email {
		t.Fatalf("unexpected user payload: %+v", resp.User)
	}
	if repo.lastLoginUser != user.ID {
		t.Fatal("last login not recorded")
	}

	if len(publisher.transitions) != 1 {
		t.Fatalf("expected one transition, got %d", len(publisher.transitions))
	}
	transition := publisher.transitions[0]
	if transition.Event != identity.EventSignedIn {
		t.Fatalf("expected signed_in, got %s", transition.Event)
	}
	if transition.CartToken != "cart-tok" {
		t.Fatalf("transition must carry the request's cart token, got %q", transition.CartToken)
	}
	if transition.UserID == nil || *transition.UserID != user.ID {
		t.Fatal("transition must carry the user id")
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	user := testUser(t, "shopper@example.com", "correct horse")
	cases := []struct {
		name     string
		email    string
		password string
		active   bool
	}{
		{"unknown email", "nobody@example.com", "correct horse", true},
		{"wrong password", "shopper@example.com", "wrong", true},
		{"inactive account", "shopper@example.com", "correct horse", false},
		{"blank email", "", "correct horse", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			user.IsActive = tc.active
			publisher := &stubPublisher{}
			svc := newAuthService(t, &stubUserRepo{user: user}, &stubSessionManager{}, publisher)

			_, err := svc.Login(context.Background(), LoginRequest{Email: tc.email, Password: tc.password}, "tok")
			domainErr := pkgerrors.As(err)
			if domainErr == nil || domainErr.Code() != pkgerrors.CodeUnauthorized {
				t.Fatalf("expected unauthorized, got %v", err)
			}
			if len(publisher.transitions) != 0 {
				t.Fatal("failed login must not publish a transition")
			}
		})
	}
}

func TestLogoutRevokesAndPublishesSignedOut(t *testing.T) {
	sessions := &stubSessionManager{}
	publisher := &stubPublisher{}
	svc := newAuthService(t, &stubUserRepo{}, sessions, publisher)
	userID := uuid.New()

	if err := svc.Logout(context.Background(), userID, "access-1", "cart-tok"); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "access-1" {
		t.Fatalf("expected session access-1 revoked, got %v", sessions.revoked)
	}
	if len(publisher.transitions) != 1 || publisher.transitions[0].Event != identity.EventSignedOut {
		t.Fatalf("expected one signed_out transition, got %+v", publisher.transitions)
	}
	if publisher.transitions[0].CartToken != "cart-tok" {
		t.Fatal("sign-out transition must carry the cart token")
	}
}

func TestRefreshRotatesAndPublishesTokenRefreshed(t *testing.T) {
	userID := uuid.New()
	cfg := testJWTConfig()
	accessToken, err := pkgAuth.MintAccessToken(cfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: userID,
		JTI:    "old-access-id",
	})
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}

	sessions := &stubSessionManager{}
	publisher := &stubPublisher{}
	svc := newAuthService(t, &stubUserRepo{}, sessions, publisher)

	resp, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  accessToken,
		RefreshToken: "refresh-old",
	}, "cart-tok")
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if sessions.rotatedFrom != "old-access-id" {
		t.Fatalf("rotation must use the jti of the presented token, got %q", sessions.rotatedFrom)
	}
	if resp.RefreshToken != "rotated-refresh-token" {
		t.Fatalf("unexpected refresh token %q", resp.RefreshToken)
	}
	if resp.User != nil {
		t.Fatal("refresh response carries no user payload")
	}

	if len(publisher.transitions) != 1 {
		t.Fatalf("expected one transition, got %d", len(publisher.transitions))
	}
	transition := publisher.transitions[0]
	if transition.Event != identity.EventTokenRefreshed {
		t.Fatalf("expected token_refreshed, got %s", transition.Event)
	}
	if transition.UserID == nil || *transition.UserID != userID {
		t.Fatal("transition must carry the user id")
	}
}

func TestRefreshRejectsInvalidInputs(t *testing.T) {
	publisher := &stubPublisher{}
	svc := newAuthService(t, &stubUserRepo{}, &stubSessionManager{rotateErr: session.ErrInvalidRefreshToken}, publisher)

	_, err := svc.Refresh(context.Background(), RefreshRequest{AccessToken: "garbage", RefreshToken: "x"}, "tok")
	domainErr := pkgerrors.As(err)
	if domainErr == nil || domainErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for malformed access token, got %v", err)
	}

	accessToken, err := pkgAuth.MintAccessToken(testJWTConfig(), time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		JTI:    "id",
	})
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}
	_, err = svc.Refresh(context.Background(), RefreshRequest{AccessToken: accessToken, RefreshToken: "stale"}, "tok")
	domainErr = pkgerrors.As(err)
	if domainErr == nil || domainErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for rejected rotation, got %v", err)
	}
	if len(publisher.transitions) != 0 {
		t.Fatal("failed refresh must not publish a transition")
	}
}
