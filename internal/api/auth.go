package api

import (
	"context"
	"net/http"
)

// LoginRequest is the credential payload for /auth/login
type LoginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// RegisterRequest is the payload for /auth/register
type RegisterRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	WorkID   string `json:"work_id"`
}

// UserInfo is the identity returned at login
type UserInfo struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	WorkID string `json:"work_id"`
}

// LoginResponse carries the token pair and the user's identity
type LoginResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	User         UserInfo `json:"user"`
}

// Login exchanges credentials for tokens
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates a caregiver account
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/auth/register", nil, req, nil)
}
