package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

var testUser = User{Name: "Li Na", Phone: "13800000000", WorkID: "N-1024"}

func newTestManager(t *testing.T) (*Manager, Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)}
	store := NewMemoryStore()
	mgr := NewManager(store,
		WithClock(clock.Now),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return mgr, store, clock
}

func TestValidate_FreshSession(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	ctx := context.Background()

	if err := mgr.Create(ctx, testUser, false); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	res, err := mgr.Validate(ctx)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !res.Valid || res.Reason != ReasonNone {
		t.Errorf("Expected valid session with no reason, got %+v", res)
	}
}

func TestValidate_ShortSessionExpires(t *testing.T) {
	mgr, _, clock := newTestManager(t)
	ctx := context.Background()

	mgr.Create(ctx, testUser, false)
	clock.Advance(SessionDuration + time.Millisecond)

	res, err := mgr.Validate(ctx)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if res.Valid || res.Reason != ReasonSessionExpired {
		t.Errorf("Expected session_expired, got %+v", res)
	}
	if _, err := mgr.Get(ctx); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected expired session to be purged, got %v", err)
	}
}

func TestValidate_ExactExpiryIsStillValid(t *testing.T) {
	mgr, _, clock := newTestManager(t)
	ctx := context.Background()

	mgr.Create(ctx, testUser, false)
	clock.Advance(SessionDuration)

	res, _ := mgr.Validate(ctx)
	if !res.Valid {
		t.Errorf("Expected session valid at exactly its expiry, got %+v", res)
	}
}

func TestValidate_RememberMeAutoRefresh(t *testing.T) {
	mgr, _, clock := newTestManager(t)
	ctx := context.Background()

	mgr.Create(ctx, testUser, true)
	before, _ := mgr.Get(ctx)
	clock.Advance(3 * time.Hour)

	res, err := mgr.Validate(ctx)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !res.Valid || res.Reason != ReasonAutoRefresh {
		t.Fatalf("Expected auto_refresh, got %+v", res)
	}

	left, err := mgr.TimeLeft(ctx)
	if err != nil {
		t.Fatalf("TimeLeft failed: %v", err)
	}
	if left != SessionDuration {
		t.Errorf("Expected renewed window of %v, got %v", SessionDuration, left)
	}

	after, _ := mgr.Get(ctx)
	if !after.LoginTime.Equal(before.LoginTime) {
		t.Errorf("LoginTime changed on refresh: %v -> %v", before.LoginTime, after.LoginTime)
	}
}

func TestValidate_RememberMeCapIsAbsolute(t *testing.T) {
	mgr, _, clock := newTestManager(t)
	ctx := context.Background()

	mgr.Create(ctx, testUser, true)

	// Keep renewing inside the cap; the ceiling still counts from login.
	for i := 0; i < 3; i++ {
		clock.Advance(2 * 24 * time.Hour)
		res, _ := mgr.Validate(ctx)
		if res.Reason != ReasonAutoRefresh {
			t.Fatalf("Round %d: expected auto_refresh, got %+v", i, res)
		}
	}

	clock.Advance(2 * 24 * time.Hour) // 8 days since login
	res, _ := mgr.Validate(ctx)
	if res.Valid || res.Reason != ReasonRememberMeExpired {
		t.Errorf("Expected remember_me_expired, got %+v", res)
	}
}

func TestValidate_RememberMeExpiredAfterEightDays(t *testing.T) {
	mgr, _, clock := newTestManager(t)
	ctx := context.Background()

	mgr.Create(ctx, testUser, true)
	clock.Advance(8 * 24 * time.Hour)

	res, err := mgr.Validate(ctx)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if res.Valid || res.Reason != ReasonRememberMeExpired {
		t.Fatalf("Expected remember_me_expired, got %+v", res)
	}

	// The stale record is purged, so a second check reports no session.
	res, _ = mgr.Validate(ctx)
	if res.Reason != ReasonNoSession {
		t.Errorf("Expected no_session after purge, got %+v", res)
	}
}

func TestValidate_RememberMeCapBoundary(t *testing.T) {
	mgr, _, clock := newTestManager(t)
	ctx := context.Background()

	mgr.Create(ctx, testUser, true)
	clock.Advance(RememberMeDuration)
	if res, _ := mgr.Validate(ctx); res.Reason != ReasonAutoRefresh {
		t.Fatalf("Expected auto_refresh at exactly 7 days, got %+v", res)
	}

	mgr.Clear(ctx)
	mgr.Create(ctx, testUser, true)
	clock.Advance(RememberMeDuration + time.Minute)
	if res, _ := mgr.Validate(ctx); res.Reason != ReasonRememberMeExpired {
		t.Errorf("Expected remember_me_expired just past 7 days, got %+v", res)
	}
}

func TestValidate_NoSession(t *testing.T) {
	mgr, _, _ := newTestManager(t)

	res, err := mgr.Validate(context.Background())
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if res.Valid || res.Reason != ReasonNoSession {
		t.Errorf("Expected no_session, got %+v", res)
	}
}

func TestGet_NoSession(t *testing.T) {
	mgr, _, _ := newTestManager(t)

	sess, err := mgr.Get(context.Background())
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
	if sess != nil {
		t.Errorf("Expected nil session, got %+v", sess)
	}
}

func TestGet_RoundTrip(t *testing.T) {
	mgr, _, clock := newTestManager(t)
	ctx := context.Background()

	mgr.Create(ctx, testUser, true)

	sess, err := mgr.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if sess.User != testUser {
		t.Errorf("Expected user %+v, got %+v", testUser, sess.User)
	}
	if !sess.RememberMe {
		t.Error("Expected RememberMe to be true")
	}
	if !sess.LoginTime.Equal(clock.Now()) {
		t.Errorf("Expected login time %v, got %v", clock.Now(), sess.LoginTime)
	}
	if !sess.ExpiresAt.After(sess.LoginTime) {
		t.Error("Expected expiry after login time")
	}
}

func TestGet_MalformedOrPartialRecord(t *testing.T) {
	cases := map[string]string{
		"not json":         "{bad",
		"wrong shape":      `{"isAuthenticated":true,"userInfo":"x","loginTime":1,"sessionExpiry":2}`,
		"missing userInfo": `{"isAuthenticated":true,"loginTime":1,"sessionExpiry":2}`,
		"missing expiry":   `{"isAuthenticated":true,"userInfo":{"name":"a"},"loginTime":1}`,
		"not authed":       `{"isAuthenticated":false,"userInfo":{"name":"a"},"loginTime":1,"sessionExpiry":2}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			mgr, store, _ := newTestManager(t)
			ctx := context.Background()
			store.Set(ctx, sessionKey, raw, 0)

			if _, err := mgr.Get(ctx); !errors.Is(err, ErrSessionNotFound) {
				t.Errorf("Expected ErrSessionNotFound, got %v", err)
			}
		})
	}
}

func TestClear_RemovesRecordAndIsIdempotent(t *testing.T) {
	mgr, store, _ := newTestManager(t)
	ctx := context.Background()

	mgr.Create(ctx, testUser, false)

	if err := mgr.Clear(ctx); err != nil {
		t.Fatalf("First Clear failed: %v", err)
	}
	if err := mgr.Clear(ctx); err != nil {
		t.Fatalf("Second Clear failed: %v", err)
	}

	if ok, _ := store.Exists(ctx, sessionKey); ok {
		t.Error("Expected session record to be removed")
	}
	if _, err := mgr.Get(ctx); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestRefresh(t *testing.T) {
	mgr, _, clock := newTestManager(t)
	ctx := context.Background()

	ok, err := mgr.Refresh(ctx)
	if err != nil || ok {
		t.Fatalf("Expected (false, nil) without session, got (%v, %v)", ok, err)
	}

	mgr.Create(ctx, testUser, false)
	clock.Advance(90 * time.Minute)

	ok, err = mgr.Refresh(ctx)
	if err != nil || !ok {
		t.Fatalf("Expected (true, nil), got (%v, %v)", ok, err)
	}
	left, _ := mgr.TimeLeft(ctx)
	if left != SessionDuration {
		t.Errorf("Expected %v left after refresh, got %v", SessionDuration, left)
	}
}

func TestTimeLeft(t *testing.T) {
	mgr, _, clock := newTestManager(t)
	ctx := context.Background()

	if left, _ := mgr.TimeLeft(ctx); left != 0 {
		t.Errorf("Expected 0 without session, got %v", left)
	}

	mgr.Create(ctx, testUser, false)
	clock.Advance(45 * time.Minute)
	if left, _ := mgr.TimeLeft(ctx); left != 75*time.Minute {
		t.Errorf("Expected 75m left, got %v", left)
	}

	clock.Advance(3 * time.Hour)
	if left, _ := mgr.TimeLeft(ctx); left != 0 {
		t.Errorf("Expected 0 once expired, got %v", left)
	}
}

func TestShouldRefresh_Boundaries(t *testing.T) {
	tests := []struct {
		name    string
		advance time.Duration
		want    bool
	}{
		{"fresh", 0, false},
		{"exactly 30m left", SessionDuration - RefreshThreshold, false},
		{"just under 30m left", SessionDuration - RefreshThreshold + time.Second, true},
		{"1ms left", SessionDuration - time.Millisecond, true},
		{"0 left", SessionDuration, false},
		{"expired", SessionDuration + time.Minute, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr, _, clock := newTestManager(t)
			ctx := context.Background()
			mgr.Create(ctx, testUser, false)
			clock.Advance(tt.advance)

			got, err := mgr.ShouldRefresh(ctx)
			if err != nil {
				t.Fatalf("ShouldRefresh failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

type failingStore struct {
	Store
}

func (failingStore) Get(context.Context, string) (string, error) {
	return "", errors.New("connection refused")
}

func TestValidate_StoreErrorPropagates(t *testing.T) {
	mgr := NewManager(failingStore{NewMemoryStore()})

	if _, err := mgr.Validate(context.Background()); err == nil {
		t.Fatal("Expected store error to propagate")
	}
}
