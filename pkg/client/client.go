// Package client is a typed Go client for the note-app HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is the public projection of an account.
type User struct {
	ID        uuid.UUID `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Email     string    `json:"email" yaml:"email"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// Note is a note owned by the session user.
type Note struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"ownerId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// APIError is a non-2xx response.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("%d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

// IsUnauthorized reports whether err is a rejected or missing session.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// Client calls the API rooted at baseURL, e.g. "http://localhost:8080/api".
type Client struct {
	baseURL string
	http    *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type loginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    User   `json:"user"`
}

// RequestOTP asks the server to mail a login code to email.
func (c *Client) RequestOTP(ctx context.Context, email, name string) error {
	body := map[string]string{"email": email, "name": name}
	return c.do(ctx, nil, http.MethodPost, "/auth/request-otp", body, nil)
}

// VerifyOTP exchanges a mailed code for a session.
func (c *Client) VerifyOTP(ctx context.Context, email, code string) (*Session, error) {
	var resp loginResponse
	body := map[string]string{"email": email, "otp": code}
	if err := c.do(ctx, nil, http.MethodPost, "/auth/verify-otp", body, &resp); err != nil {
		return nil, err
	}
	return &Session{Token: resp.Token, User: resp.User}, nil
}

// GoogleLogin exchanges a Google ID token for a session.
func (c *Client) GoogleLogin(ctx context.Context, idToken string) (*Session, error) {
	var resp loginResponse
	if err := c.do(ctx, nil, http.MethodPost, "/auth/google-login", map[string]string{"token": idToken}, &resp); err != nil {
		return nil, err
	}
	return &Session{Token: resp.Token, User: resp.User}, nil
}

// Me returns the session user as the server sees it.
func (c *Client) Me(ctx context.Context, s *Session) (*User, error) {
	var resp struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, s, http.MethodGet, "/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// CreateNote stores a note for the session user.
func (c *Client) CreateNote(ctx context.Context, s *Session, title, content string) (*Note, error) {
	var note Note
	body := map[string]string{"title": title, "content": content}
	if err := c.do(ctx, s, http.MethodPost, "/notes", body, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// ListNotes returns the session user's notes.
func (c *Client) ListNotes(ctx context.Context, s *Session) ([]Note, error) {
	notes := []Note{}
	if err := c.do(ctx, s, http.MethodGet, "/notes", nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// DeleteNote removes one of the session user's notes.
func (c *Client) DeleteNote(ctx context.Context, s *Session, id uuid.UUID) error {
	return c.do(ctx, s, http.MethodDelete, "/notes/"+id.String(), nil, nil)
}

func (c *Client) do(ctx context.Context, s *Session, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s != nil {
		if s.Token == "" {
			return ErrNoSession
		}
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
