// Package auth talks to the external auth service. This codebase has no
// authentication scheme of its own: tokens are minted and validated by the
// backend platform, we only forward them.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrInvalidToken is returned when the auth service rejects a token.
var ErrInvalidToken = errors.New("invalid token")

// User is the identity the auth service vouches for.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// DisplayID is the identifier shown in chat: the email local part when
// present, otherwise the first 8 characters of the subject id.
func (u User) DisplayID() string {
	if u.Email != "" {
		if at := strings.IndexByte(u.Email, '@'); at > 0 {
			return u.Email[:at]
		}
		return u.Email
	}
	if len(u.ID) > 8 {
		return u.ID[:8]
	}
	return u.ID
}

// TokenValidator validates bearer tokens against the auth backend.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (User, error)
}

// Client is an HTTP client for the auth service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds an auth client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

// ValidateToken resolves a bearer token to a user.
func (c *Client) ValidateToken(ctx context.Context, token string) (User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/user", nil)
	if err != nil {
		return User{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return User{}, fmt.Errorf("auth request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return User{}, ErrInvalidToken
	}
	if resp.StatusCode != http.StatusOK {
		return User{}, fmt.Errorf("auth service status %d", resp.StatusCode)
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return User{}, fmt.Errorf("decode auth response: %w", err)
	}
	if user.ID == "" {
		return User{}, ErrInvalidToken
	}
	return user, nil
}

// Session is an authenticated session as issued by the auth backend.
type Session struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

// SignInWithPassword exchanges email+password for a session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (Session, error) {
	return c.postCredentials(ctx, "/v1/token?grant_type=password", email, password)
}

// SignUp registers a new account and returns its session.
func (c *Client) SignUp(ctx context.Context, email, password string) (Session, error) {
	return c.postCredentials(ctx, "/v1/signup", email, password)
}

func (c *Client) postCredentials(ctx context.Context, path, email, password string) (Session, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return Session{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return Session{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Session{}, fmt.Errorf("auth request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Message != "" {
			return Session{}, errors.New(apiErr.Message)
		}
		return Session{}, fmt.Errorf("auth service status %d", resp.StatusCode)
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return Session{}, fmt.Errorf("decode auth response: %w", err)
	}
	return session, nil
}
