package session

import "time"

// User is the identity snapshot cached for display. It is not a credential.
type User struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	WorkID string `json:"workId"`
}

// Session is the reconstructed authentication session
type Session struct {
	User       User      `json:"user"`
	LoginTime  time.Time `json:"login_time"`
	ExpiresAt  time.Time `json:"expires_at"`
	RememberMe bool      `json:"remember_me"`
}

// Reason explains a validation verdict
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonNoSession         Reason = "no_session"
	ReasonAutoRefresh       Reason = "auto_refresh"
	ReasonRememberMeExpired Reason = "remember_me_expired"
	ReasonSessionExpired    Reason = "session_expired"
)

// Result is the tagged outcome of Manager.Validate
type Result struct {
	Valid  bool   `json:"is_valid"`
	Reason Reason `json:"reason,omitempty"`
}

// record is the persisted form. All fields live in one JSON value so a
// session is written and removed as a unit. Pointer fields distinguish
// "absent" from zero values.
type record struct {
	IsAuthenticated *bool  `json:"isAuthenticated"`
	UserInfo        *User  `json:"userInfo"`
	LoginTime       *int64 `json:"loginTime"`
	SessionExpiry   *int64 `json:"sessionExpiry"`
	RememberMe      bool   `json:"rememberMe"`
}

func newRecord(s *Session) record {
	authenticated := true
	user := s.User
	login := s.LoginTime.UnixMilli()
	expiry := s.ExpiresAt.UnixMilli()
	return record{
		IsAuthenticated: &authenticated,
		UserInfo:        &user,
		LoginTime:       &login,
		SessionExpiry:   &expiry,
		RememberMe:      s.RememberMe,
	}
}

// session returns nil when any required field is missing
func (r record) session() *Session {
	if r.IsAuthenticated == nil || !*r.IsAuthenticated ||
		r.UserInfo == nil || r.LoginTime == nil || r.SessionExpiry == nil {
		return nil
	}
	return &Session{
		User:       *r.UserInfo,
		LoginTime:  time.UnixMilli(*r.LoginTime),
		ExpiresAt:  time.UnixMilli(*r.SessionExpiry),
		RememberMe: r.RememberMe,
	}
}
