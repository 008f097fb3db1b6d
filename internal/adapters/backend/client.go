// Package backend is the HTTP client for the community application's REST
// API. The gateway forwards the session identity as headers; the backend
// remains the authority on every permission check.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dkraev/parley/internal/core"
	"github.com/dkraev/parley/internal/domain"
)

const (
	headerEmail = "X-User-Email"
	headerRole  = "X-User-Role"
)

type Client struct {
	baseURL string
	http    *http.Client
}

var (
	_ core.RoomService        = (*Client)(nil)
	_ core.MessageService     = (*Client)(nil)
	_ core.ParticipantService = (*Client)(nil)
)

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) FetchRoom(ctx context.Context, id domain.RoomID, as domain.Identity) (*domain.Room, error) {
	var room domain.Room
	if err := c.do(ctx, as, http.MethodGet, fmt.Sprintf("/api/rooms/%s", id), nil, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (c *Client) FetchMessages(ctx context.Context, room domain.RoomID, as domain.Identity) ([]domain.Message, error) {
	var msgs []domain.Message
	if err := c.do(ctx, as, http.MethodGet, fmt.Sprintf("/api/rooms/%s/messages", room), nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (c *Client) PostMessage(ctx context.Context, room domain.RoomID, as domain.Identity, content string) (*domain.Message, error) {
	body := struct {
		Content string `json:"content"`
	}{Content: content}
	var msg domain.Message
	if err := c.do(ctx, as, http.MethodPost, fmt.Sprintf("/api/rooms/%s/messages", room), body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *Client) DeleteMessage(ctx context.Context, id domain.MessageID, as domain.Identity) error {
	return c.do(ctx, as, http.MethodDelete, fmt.Sprintf("/api/messages/%s", id), nil, nil)
}

func (c *Client) FetchParticipants(ctx context.Context, room domain.RoomID, as domain.Identity) ([]domain.Participant, error) {
	var parts []domain.Participant
	if err := c.do(ctx, as, http.MethodGet, fmt.Sprintf("/api/rooms/%s/participants", room), nil, &parts); err != nil {
		return nil, err
	}
	return parts, nil
}

func (c *Client) do(ctx context.Context, as domain.Identity, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(headerEmail, as.Email)
	req.Header.Set(headerRole, string(as.Role))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if err := classify(resp.StatusCode); err != nil {
		io.Copy(io.Discard, resp.Body)
		return err
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.NetworkError{Err: err}
	}
	return nil
}

// classify maps HTTP status codes onto the domain taxonomy. Server-side
// failures count as transient: background polling retries them silently.
func classify(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case status == http.StatusForbidden:
		return domain.ErrForbidden
	case status == http.StatusNotFound:
		return domain.ErrNotFound
	default:
		return &domain.NetworkError{Err: fmt.Errorf("unexpected status %d", status)}
	}
}
