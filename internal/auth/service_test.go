package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"vrecorder/internal/api"
	"vrecorder/internal/session"
	"vrecorder/internal/tokens"
)

// Mock backend for testing
type mockBackend struct {
	loginFunc    func(ctx context.Context, req api.LoginRequest) (*api.LoginResponse, error)
	registerFunc func(ctx context.Context, req api.RegisterRequest) error
}

func (m *mockBackend) Login(ctx context.Context, req api.LoginRequest) (*api.LoginResponse, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, req)
	}
	return &api.LoginResponse{
		AccessToken:  "access",
		RefreshToken: "refresh",
		User:         api.UserInfo{Name: "Li Na", Phone: req.Phone, WorkID: "N-1024"},
	}, nil
}

func (m *mockBackend) Register(ctx context.Context, req api.RegisterRequest) error {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, req)
	}
	return nil
}

type fixture struct {
	svc      *Service
	sessions *session.Manager
	tokens   *tokens.Store
	now      *time.Time
	logouts  []string
}

func newFixture(t *testing.T, backend Backend) *fixture {
	t.Helper()
	now := time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)
	f := &fixture{now: &now}

	kv := session.NewMemoryStore()
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.sessions = session.NewManager(kv,
		session.WithClock(func() time.Time { return *f.now }),
		session.WithLogger(quiet),
	)
	f.tokens = tokens.NewStore(kv)
	f.svc = NewService(backend, f.sessions, f.tokens, quiet)
	f.svc.OnLogout(func(reason string) { f.logouts = append(f.logouts, reason) })
	return f
}

func TestLogin_CreatesSessionAndTokens(t *testing.T) {
	f := newFixture(t, &mockBackend{})
	ctx := context.Background()

	user, err := f.svc.Login(ctx, LoginRequest{Phone: "138", Password: "pw", RememberMe: true})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.WorkID != "N-1024" {
		t.Errorf("Expected work id N-1024, got %s", user.WorkID)
	}

	sess, err := f.sessions.Get(ctx)
	if err != nil {
		t.Fatalf("Expected session after login: %v", err)
	}
	if !sess.RememberMe {
		t.Error("Expected remember me to be stored")
	}
	if tok, _ := f.tokens.AccessToken(ctx); tok != "access" {
		t.Errorf("Expected stored access token, got %q", tok)
	}
}

func TestLogin_Rejected(t *testing.T) {
	f := newFixture(t, &mockBackend{
		loginFunc: func(ctx context.Context, req api.LoginRequest) (*api.LoginResponse, error) {
			return nil, &api.AuthError{Status: http.StatusUnauthorized, Reason: api.ReasonUnauthorized}
		},
	})

	_, err := f.svc.Login(context.Background(), LoginRequest{Phone: "138", Password: "bad"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := f.sessions.Get(context.Background()); !errors.Is(err, session.ErrSessionNotFound) {
		t.Error("Expected no session after rejected login")
	}
}

func TestLogin_EmptyCredentials(t *testing.T) {
	f := newFixture(t, &mockBackend{
		loginFunc: func(ctx context.Context, req api.LoginRequest) (*api.LoginResponse, error) {
			t.Error("Backend should not be called")
			return nil, nil
		},
	})

	if _, err := f.svc.Login(context.Background(), LoginRequest{}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_BackendFailureIsWrapped(t *testing.T) {
	f := newFixture(t, &mockBackend{
		loginFunc: func(ctx context.Context, req api.LoginRequest) (*api.LoginResponse, error) {
			return nil, &api.HTTPError{Status: 503, Message: "maintenance"}
		},
	})

	_, err := f.svc.Login(context.Background(), LoginRequest{Phone: "138", Password: "pw"})
	var httpErr *api.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Status != 503 {
		t.Errorf("Expected wrapped HTTPError, got %v", err)
	}
}

func TestGuard_AuthErrorClearsEverything(t *testing.T) {
	f := newFixture(t, &mockBackend{})
	ctx := context.Background()
	f.svc.Login(ctx, LoginRequest{Phone: "138", Password: "pw"})

	err := f.svc.Guard(ctx, &api.AuthError{Status: 401, Reason: api.ReasonUnauthorized})
	if !errors.Is(err, ErrLoginRequired) {
		t.Fatalf("Expected ErrLoginRequired, got %v", err)
	}
	if _, err := f.sessions.Get(ctx); !errors.Is(err, session.ErrSessionNotFound) {
		t.Error("Expected session to be cleared")
	}
	if _, err := f.tokens.Load(ctx); !errors.Is(err, tokens.ErrNoToken) {
		t.Error("Expected tokens to be cleared")
	}
	if len(f.logouts) != 1 || f.logouts[0] != string(api.ReasonUnauthorized) {
		t.Errorf("Expected one logout notification, got %v", f.logouts)
	}
}

func TestGuard_PassesOtherErrors(t *testing.T) {
	f := newFixture(t, &mockBackend{})
	ctx := context.Background()
	f.svc.Login(ctx, LoginRequest{Phone: "138", Password: "pw"})

	orig := &api.HTTPError{Status: 500, Message: "boom"}
	if err := f.svc.Guard(ctx, orig); err != orig {
		t.Errorf("Expected error unchanged, got %v", err)
	}
	if f.svc.Guard(ctx, nil) != nil {
		t.Error("Expected nil to stay nil")
	}
	if _, err := f.sessions.Get(ctx); err != nil {
		t.Error("Session must survive non-auth errors")
	}
	if len(f.logouts) != 0 {
		t.Errorf("Expected no logout, got %v", f.logouts)
	}
}

func TestCheck_ExpiredSessionDropsTokens(t *testing.T) {
	f := newFixture(t, &mockBackend{})
	ctx := context.Background()
	f.svc.Login(ctx, LoginRequest{Phone: "138", Password: "pw"})

	*f.now = f.now.Add(3 * time.Hour)

	res, err := f.svc.Check(ctx)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if res.Valid || res.Reason != session.ReasonSessionExpired {
		t.Errorf("Expected session_expired, got %+v", res)
	}
	if _, err := f.tokens.Load(ctx); !errors.Is(err, tokens.ErrNoToken) {
		t.Error("Expected tokens dropped with the session")
	}
	if len(f.logouts) != 1 || f.logouts[0] != "session_expired" {
		t.Errorf("Expected session_expired logout, got %v", f.logouts)
	}
}

func TestCheck_RememberMeKeepsTokens(t *testing.T) {
	f := newFixture(t, &mockBackend{})
	ctx := context.Background()
	f.svc.Login(ctx, LoginRequest{Phone: "138", Password: "pw", RememberMe: true})

	*f.now = f.now.Add(3 * time.Hour)

	res, _ := f.svc.Check(ctx)
	if !res.Valid || res.Reason != session.ReasonAutoRefresh {
		t.Errorf("Expected auto_refresh, got %+v", res)
	}
	if _, err := f.tokens.Load(ctx); err != nil {
		t.Errorf("Expected tokens kept, got %v", err)
	}
}

func TestLogout(t *testing.T) {
	f := newFixture(t, &mockBackend{})
	ctx := context.Background()
	f.svc.Login(ctx, LoginRequest{Phone: "138", Password: "pw"})

	if err := f.svc.Logout(ctx); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if err := f.svc.Logout(ctx); err != nil {
		t.Fatalf("Second logout failed: %v", err)
	}
	st, _ := f.svc.Status(ctx)
	if st.Authenticated {
		t.Error("Expected unauthenticated status after logout")
	}
}

func TestStatus(t *testing.T) {
	f := newFixture(t, &mockBackend{})
	ctx := context.Background()
	f.svc.Login(ctx, LoginRequest{Phone: "138", Password: "pw"})

	*f.now = f.now.Add(100 * time.Minute)

	st, err := f.svc.Status(ctx)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if !st.Authenticated || st.User == nil || st.User.Name != "Li Na" {
		t.Errorf("Unexpected status %+v", st)
	}
	if st.TimeLeftMs != (20 * time.Minute).Milliseconds() {
		t.Errorf("Expected 20m left, got %dms", st.TimeLeftMs)
	}
	if !st.ShouldRefresh {
		t.Error("Expected should_refresh with 20m left")
	}
	if st.TokenExpiresAt != nil {
		t.Error("Opaque test token should have no expiry")
	}
}

func TestRegister(t *testing.T) {
	var got api.RegisterRequest
	f := newFixture(t, &mockBackend{
		registerFunc: func(ctx context.Context, req api.RegisterRequest) error {
			got = req
			return nil
		},
	})

	err := f.svc.Register(context.Background(), RegisterRequest{Name: "Wang", Phone: "139", Password: "secret1", WorkID: "N-2"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if got.WorkID != "N-2" || got.Name != "Wang" {
		t.Errorf("Unexpected register payload %+v", got)
	}
	if _, err := f.sessions.Get(context.Background()); !errors.Is(err, session.ErrSessionNotFound) {
		t.Error("Register must not sign in")
	}
}

func TestCheck_NoSessionIsQuiet(t *testing.T) {
	f := newFixture(t, &mockBackend{})

	res, err := f.svc.Check(context.Background())
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if res.Valid || res.Reason != session.ReasonNoSession {
		t.Errorf("Expected no_session, got %+v", res)
	}
	if len(f.logouts) != 0 {
		t.Errorf("Expected no logout notification, got %v", f.logouts)
	}
}
