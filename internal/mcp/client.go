package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vcnotifier/vc-notifier/internal/biz/domain"
)

// DefaultBaseURL is the notifier's local API address
const DefaultBaseURL = "http://127.0.0.1:9877"

// Client is the HTTP client for the notifier's local API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Subscriptions lists a guild's subscribers
type Subscriptions struct {
	GuildID     string   `json:"guild_id"`
	Subscribers []string `json:"subscribers"`
}

// subscriptionResult mirrors the API's subscribe/unsubscribe reply
type subscriptionResult struct {
	Success bool `json:"success"`
	Changed bool `json:"changed"`
}

// ============ Presence ============

// GetPresence gets the current voice presence of every tracked guild
func (c *Client) GetPresence(ctx context.Context) (*domain.PresenceView, error) {
	var view domain.PresenceView
	if err := c.get(ctx, "/api/presence", &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// ============ Subscriptions ============

// GetSubscribers gets a guild's subscribers
func (c *Client) GetSubscribers(ctx context.Context, guildID string) (*Subscriptions, error) {
	var result Subscriptions
	if err := c.get(ctx, "/api/subscriptions/"+url.PathEscape(guildID), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Subscribe subscribes a username; returns false if it already was
func (c *Client) Subscribe(ctx context.Context, guildID, username string) (bool, error) {
	var result subscriptionResult
	body := map[string]string{"username": username}
	if err := c.post(ctx, "/api/subscriptions/"+url.PathEscape(guildID), body, &result); err != nil {
		return false, err
	}
	return result.Changed, nil
}

// Unsubscribe unsubscribes a username; returns false if it was not subscribed
func (c *Client) Unsubscribe(ctx context.Context, guildID, username string) (bool, error) {
	var result subscriptionResult
	path := fmt.Sprintf("/api/subscriptions/%s/%s", url.PathEscape(guildID), url.PathEscape(username))
	if err := c.delete(ctx, path, &result); err != nil {
		return false, err
	}
	return result.Changed, nil
}

// ============ HTTP Helpers ============

func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, result)
}

func (c *Client) post(ctx context.Context, path string, body interface{}, result interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, result)
}

func (c *Client) delete(ctx context.Context, path string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, result)
}

func (c *Client) do(req *http.Request, result interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP %s failed: %w", req.Method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
