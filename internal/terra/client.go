package terra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the public Terra Mystica server
	DefaultBaseURL = "https://terra.snellman.net"

	viewGamePath = "/app/view-game/"
)

// Fetch error taxonomy. The client never retries; that is the caller's call.
var (
	ErrRemoteUnavailable = errors.New("remote game service unavailable")
	ErrMalformedSnapshot = errors.New("malformed game state snapshot")
)

// Client fetches game state from the Terra Mystica server
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Terra Mystica API client
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// FetchGameState retrieves the current snapshot for a game by id
func (c *Client) FetchGameState(ctx context.Context, gameID string) (*GameState, error) {
	form := url.Values{}
	form.Set("game", gameID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+viewGamePath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d, body: %s", ErrRemoteUnavailable, resp.StatusCode, string(body))
	}

	var state GameState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}

	return &state, nil
}

// ViewGameURL returns the human-facing viewer page for a game
func (c *Client) ViewGameURL(gameID string) string {
	return fmt.Sprintf("%s/game/%s/", c.baseURL, gameID)
}
