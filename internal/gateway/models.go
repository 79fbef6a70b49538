package gateway

import (
	"vrecorder/internal/auth"
	"vrecorder/internal/model"
	"vrecorder/internal/session"
)

// LoginPath is where the web front end shows the login form
const LoginPath = "/login"

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success  bool   `json:"success"`
	Error    string `json:"error"`
	Code     string `json:"code,omitempty"`
	Details  string `json:"details,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Redirect string `json:"redirect,omitempty"`
	Prompt   string `json:"prompt,omitempty"`
}

// LoginResponse is returned after a successful login
type LoginResponse struct {
	User    *session.User `json:"user"`
	Session *auth.Status  `json:"session"`
}

// SessionResponse reports the session state
type SessionResponse struct {
	*auth.Status
	Reason session.Reason `json:"reason,omitempty"`
}

// NavigateRequest moves the schedule one day
type NavigateRequest struct {
	Direction string `json:"direction" binding:"required"`
}

// ConfirmRequest carries the user's answer to a confirmation prompt
type ConfirmRequest struct {
	Confirm bool `json:"confirm"`
}

// TransitionResponse is returned after a status change
type TransitionResponse struct {
	Appointment *model.Appointment `json:"appointment"`
	Next        string             `json:"next,omitempty"`
}
