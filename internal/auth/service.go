// Package auth signs caregivers in and out and owns the reaction to
// authentication failures: any *api.AuthError that reaches Guard clears the
// session and tokens and notifies the front end to show the login screen.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"vrecorder/internal/api"
	"vrecorder/internal/session"
	"vrecorder/internal/tokens"
)

var (
	// ErrLoginRequired is returned once local credentials have been dropped
	ErrLoginRequired = errors.New("please log in again")
	// ErrInvalidCredentials is returned when the backend rejects a login
	ErrInvalidCredentials = errors.New("invalid phone or password")
)

// Backend is the subset of the API client used for authentication
type Backend interface {
	Login(ctx context.Context, req api.LoginRequest) (*api.LoginResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) error
}

// LogoutFunc is told why the user was signed out
type LogoutFunc func(reason string)

// Service coordinates backend login with the local session and token stores
type Service struct {
	backend  Backend
	sessions *session.Manager
	tokens   *tokens.Store
	logger   *slog.Logger
	onLogout LogoutFunc
}

// NewService creates an authentication service
func NewService(backend Backend, sessions *session.Manager, tokenStore *tokens.Store, logger *slog.Logger) *Service {
	return &Service{
		backend:  backend,
		sessions: sessions,
		tokens:   tokenStore,
		logger:   logger,
		onLogout: func(string) {},
	}
}

// OnLogout registers the hook fired whenever local credentials are dropped
func (s *Service) OnLogout(fn LogoutFunc) {
	if fn == nil {
		fn = func(string) {}
	}
	s.onLogout = fn
}

// Sessions exposes the session manager for read-only status queries
func (s *Service) Sessions() *session.Manager {
	return s.sessions
}

// Login authenticates against the backend, stores the token pair and
// starts a local session
func (s *Service) Login(ctx context.Context, req LoginRequest) (*session.User, error) {
	if req.Phone == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	resp, err := s.backend.Login(ctx, api.LoginRequest{Phone: req.Phone, Password: req.Password})
	if err != nil {
		var authErr *api.AuthError
		if errors.As(err, &authErr) {
			s.logger.Warn("Login rejected", "phone", req.Phone, "status", authErr.Status)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login failed: %w", err)
	}
	if resp.AccessToken == "" {
		return nil, errors.New("login failed: backend returned no access token")
	}

	if err := s.tokens.Save(ctx, tokens.Pair{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}); err != nil {
		return nil, err
	}

	user := session.User{
		Name:   resp.User.Name,
		Phone:  resp.User.Phone,
		WorkID: resp.User.WorkID,
	}
	if user.Phone == "" {
		user.Phone = req.Phone
	}
	if err := s.sessions.Create(ctx, user, req.RememberMe); err != nil {
		if clearErr := s.tokens.Clear(ctx); clearErr != nil {
			s.logger.Warn("Failed to roll back tokens", "error", clearErr.Error())
		}
		return nil, err
	}

	s.logger.Info("Logged in", "work_id", user.WorkID, "remember_me", req.RememberMe)
	return &user, nil
}

// Register creates a backend account. It does not sign the user in.
func (s *Service) Register(ctx context.Context, req RegisterRequest) error {
	err := s.backend.Register(ctx, api.RegisterRequest{
		Name:     req.Name,
		Phone:    req.Phone,
		Password: req.Password,
		WorkID:   req.WorkID,
	})
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	s.logger.Info("Registered account", "work_id", req.WorkID)
	return nil
}

// Logout drops the session and tokens
func (s *Service) Logout(ctx context.Context) error {
	if err := s.dropCredentials(ctx); err != nil {
		return err
	}
	s.logger.Info("Logged out")
	s.onLogout("logout")
	return nil
}

// Check validates the session. An invalid verdict also drops the tokens;
// an expired one fires the logout hook.
func (s *Service) Check(ctx context.Context) (session.Result, error) {
	res, err := s.sessions.Validate(ctx)
	if err != nil {
		return session.Result{}, err
	}
	if res.Valid {
		return res, nil
	}

	if err := s.tokens.Clear(ctx); err != nil {
		return res, err
	}
	if res.Reason != session.ReasonNoSession {
		s.onLogout(string(res.Reason))
	}
	return res, nil
}

// Refresh extends the session window. It reports false without a session.
func (s *Service) Refresh(ctx context.Context) (bool, error) {
	return s.sessions.Refresh(ctx)
}

// Status reports the current session without changing it
func (s *Service) Status(ctx context.Context) (*Status, error) {
	sess, err := s.sessions.Get(ctx)
	if errors.Is(err, session.ErrSessionNotFound) {
		return &Status{}, nil
	}
	if err != nil {
		return nil, err
	}

	left, err := s.sessions.TimeLeft(ctx)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sessions.ShouldRefresh(ctx)
	if err != nil {
		return nil, err
	}

	st := &Status{
		Authenticated: left > 0,
		User:          &sess.User,
		LoginTime:     &sess.LoginTime,
		ExpiresAt:     &sess.ExpiresAt,
		RememberMe:    sess.RememberMe,
		TimeLeftMs:    left.Milliseconds(),
		ShouldRefresh: refresh,
	}
	if tok, err := s.tokens.AccessToken(ctx); err == nil {
		if exp, ok := tokens.AccessExpiry(tok); ok {
			st.TokenExpiresAt = &exp
		}
	}
	return st, nil
}

// Guard is the boundary for errors coming back from the API client. An
// authentication failure drops local credentials, fires the logout hook
// and becomes ErrLoginRequired; anything else is returned unchanged.
func (s *Service) Guard(ctx context.Context, err error) error {
	var authErr *api.AuthError
	if !errors.As(err, &authErr) {
		return err
	}

	s.logger.Warn("Authentication failure, signing out",
		"reason", authErr.Reason,
		"status", authErr.Status,
		"server_message", authErr.ServerMessage,
	)
	if dropErr := s.dropCredentials(ctx); dropErr != nil {
		s.logger.Error("Failed to drop credentials", "error", dropErr.Error())
	}
	s.onLogout(string(authErr.Reason))
	return ErrLoginRequired
}

func (s *Service) dropCredentials(ctx context.Context) error {
	if err := s.sessions.Clear(ctx); err != nil {
		return err
	}
	return s.tokens.Clear(ctx)
}
