// Package session keeps the device's single authentication session.
// The session is a cached identity snapshot with a two-tier expiry policy:
// a short rolling window and, when "remember me" was chosen at login, an
// absolute ceiling measured from the original login inside which the
// window is silently renewed.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	// SessionDuration is the short-lived session window
	SessionDuration = 2 * time.Hour
	// RememberMeDuration caps the lifetime of a remembered session
	RememberMeDuration = 7 * 24 * time.Hour
	// RefreshThreshold is how close to expiry ShouldRefresh starts reporting true
	RefreshThreshold = 30 * time.Minute

	sessionKey = "session"
)

var (
	// ErrSessionNotFound is returned when no usable session is stored
	ErrSessionNotFound = errors.New("session not found")
)

// Manager owns the session record in a Store
type Manager struct {
	mu     sync.Mutex
	store  Store
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Manager
type Option func(*Manager)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the logger used for session lifecycle events
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager creates a session manager on top of store
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create starts a new session for user, replacing any existing one
func (m *Manager) Create(ctx context.Context, user User, rememberMe bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	sess := &Session{
		User:       user,
		LoginTime:  now,
		ExpiresAt:  now.Add(SessionDuration),
		RememberMe: rememberMe,
	}
	if err := m.put(ctx, sess); err != nil {
		return err
	}

	m.logger.Info("Session created",
		"work_id", user.WorkID,
		"remember_me", rememberMe,
		"expires_at", sess.ExpiresAt,
	)
	return nil
}

// Get returns the stored session or ErrSessionNotFound
func (m *Manager) Get(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.get(ctx)
}

// Validate applies the expiry policy. A remembered session past its short
// window but within RememberMeDuration of login is renewed in place. Both
// failing verdicts remove the stored record.
func (m *Manager) Validate(ctx context.Context) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.get(ctx)
	if errors.Is(err, ErrSessionNotFound) {
		return Result{Reason: ReasonNoSession}, nil
	}
	if err != nil {
		return Result{}, err
	}

	now := m.now()
	if !now.After(sess.ExpiresAt) {
		return Result{Valid: true}, nil
	}

	reason := ReasonSessionExpired
	if sess.RememberMe {
		if now.Sub(sess.LoginTime) <= RememberMeDuration {
			if err := m.refresh(ctx, sess); err != nil {
				return Result{}, err
			}
			m.logger.Info("Session auto-refreshed",
				"work_id", sess.User.WorkID,
				"login_time", sess.LoginTime,
			)
			return Result{Valid: true, Reason: ReasonAutoRefresh}, nil
		}
		reason = ReasonRememberMeExpired
	}

	if err := m.store.Delete(ctx, sessionKey); err != nil {
		return Result{}, fmt.Errorf("failed to purge expired session: %w", err)
	}
	m.logger.Info("Session expired", "work_id", sess.User.WorkID, "reason", reason)
	return Result{Reason: reason}, nil
}

// Refresh extends the short window from now. LoginTime is kept, so the
// remember-me ceiling still counts from the original login. It reports
// false when there is no session.
func (m *Manager) Refresh(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.get(ctx)
	if errors.Is(err, ErrSessionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := m.refresh(ctx, sess); err != nil {
		return false, err
	}
	return true, nil
}

// Clear removes the session. Clearing an absent session is not an error.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Delete(ctx, sessionKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// TimeLeft returns the time until the short window closes, never negative.
// It is zero when there is no session.
func (m *Manager) TimeLeft(ctx context.Context) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.timeLeft(ctx)
}

// ShouldRefresh reports whether the window is still open but closes
// within RefreshThreshold
func (m *Manager) ShouldRefresh(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	left, err := m.timeLeft(ctx)
	if err != nil {
		return false, err
	}
	return left > 0 && left < RefreshThreshold, nil
}

func (m *Manager) timeLeft(ctx context.Context) (time.Duration, error) {
	sess, err := m.get(ctx)
	if errors.Is(err, ErrSessionNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return max(0, sess.ExpiresAt.Sub(m.now())), nil
}

func (m *Manager) refresh(ctx context.Context, sess *Session) error {
	sess.ExpiresAt = m.now().Add(SessionDuration)
	return m.put(ctx, sess)
}

func (m *Manager) get(ctx context.Context) (*Session, error) {
	raw, err := m.store.Get(ctx, sessionKey)
	if errors.Is(err, ErrKeyNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		m.logger.Warn("Discarding malformed session record", "error", err.Error())
		return nil, ErrSessionNotFound
	}
	sess := rec.session()
	if sess == nil {
		m.logger.Warn("Discarding incomplete session record")
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// put writes the whole record in one Set. Expiry is decided by Validate,
// so the store entry carries no TTL of its own.
func (m *Manager) put(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(newRecord(sess))
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := m.store.Set(ctx, sessionKey, string(data), 0); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}
