// Package tokens keeps the backend's access/refresh token pair next to the
// session record. The API client reads the access token from here.
package tokens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vrecorder/internal/session"

	"github.com/golang-jwt/jwt/v5"
)

const tokensKey = "tokens"

// ErrNoToken is returned when no access token is stored
var ErrNoToken = errors.New("no access token")

// Pair is the token pair issued by the backend at login
type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Store persists the token pair in a session.Store
type Store struct {
	kv session.Store
}

// NewStore creates a token store over kv
func NewStore(kv session.Store) *Store {
	return &Store{kv: kv}
}

// Save replaces the stored pair
func (s *Store) Save(ctx context.Context, p Pair) error {
	if p.AccessToken == "" {
		return errors.New("access token cannot be empty")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal tokens: %w", err)
	}
	if err := s.kv.Set(ctx, tokensKey, string(data), 0); err != nil {
		return fmt.Errorf("failed to store tokens: %w", err)
	}
	return nil
}

// Load returns the stored pair or ErrNoToken
func (s *Store) Load(ctx context.Context) (Pair, error) {
	raw, err := s.kv.Get(ctx, tokensKey)
	if errors.Is(err, session.ErrKeyNotFound) {
		return Pair{}, ErrNoToken
	}
	if err != nil {
		return Pair{}, fmt.Errorf("failed to read tokens: %w", err)
	}

	var p Pair
	if err := json.Unmarshal([]byte(raw), &p); err != nil || p.AccessToken == "" {
		return Pair{}, ErrNoToken
	}
	return p, nil
}

// AccessToken returns the bearer token, or ErrNoToken
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	p, err := s.Load(ctx)
	if err != nil {
		return "", err
	}
	return p.AccessToken, nil
}

// Clear removes the pair
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, tokensKey); err != nil {
		return fmt.Errorf("failed to clear tokens: %w", err)
	}
	return nil
}

// AccessExpiry reads the exp claim of a JWT access token. The signature is
// not checked: the client has no key, it only wants the hint. ok is false
// for opaque tokens or tokens without exp.
func AccessExpiry(token string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
