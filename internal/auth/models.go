package auth

import (
	"time"

	"vrecorder/internal/session"
)

// LoginRequest is the login form payload
type LoginRequest struct {
	Phone      string `json:"phone" binding:"required"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

// RegisterRequest is the registration form payload
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=50"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	WorkID   string `json:"work_id" binding:"required"`
}

// Status summarises the current session for display
type Status struct {
	Authenticated  bool          `json:"authenticated"`
	User           *session.User `json:"user,omitempty"`
	LoginTime      *time.Time    `json:"login_time,omitempty"`
	ExpiresAt      *time.Time    `json:"expires_at,omitempty"`
	RememberMe     bool          `json:"remember_me"`
	TimeLeftMs     int64         `json:"time_left_ms"`
	ShouldRefresh  bool          `json:"should_refresh"`
	TokenExpiresAt *time.Time    `json:"token_expires_at,omitempty"`
}
