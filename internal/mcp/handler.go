package mcp

import (
	"context"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vcnotifier/vc-notifier/internal/biz/domain"
	"github.com/vcnotifier/vc-notifier/internal/biz/usecase"
)

// Handler handles MCP tool calls using the HTTP client
type Handler struct {
	client *Client
}

// NewHandler creates a new MCP handler
func NewHandler(client *Client) *Handler {
	return &Handler{client: client}
}

// ============ Presence ============

// WhoIsOnInput optionally restricts the listing to one guild
type WhoIsOnInput struct {
	GuildID string `json:"guild_id,omitempty" jsonschema:"only list this guild; all guilds when empty"`
}

// WhoIsOnOutput is the presence listing
type WhoIsOnOutput struct {
	Text        string                 `json:"text" jsonschema:"human-readable listing, one block per channel"`
	Communities []domain.CommunityView `json:"communities" jsonschema:"structured listing of guilds and channels"`
}

// WhoIsOn lists voice channel occupants
func (h *Handler) WhoIsOn(ctx context.Context, req *sdk.CallToolRequest, input WhoIsOnInput) (*sdk.CallToolResult, WhoIsOnOutput, error) {
	view, err := h.client.GetPresence(ctx)
	if err != nil {
		return nil, WhoIsOnOutput{}, err
	}

	if input.GuildID != "" {
		filtered := domain.PresenceView{Communities: []domain.CommunityView{}}
		for _, c := range view.Communities {
			if c.ID == input.GuildID {
				filtered.Communities = append(filtered.Communities, c)
			}
		}
		view = &filtered
	}
	if view.Communities == nil {
		view.Communities = []domain.CommunityView{}
	}

	return nil, WhoIsOnOutput{
		Text:        usecase.FormatPresence(*view),
		Communities: view.Communities,
	}, nil
}

// ============ Subscriptions ============

// GuildInput identifies a guild
type GuildInput struct {
	GuildID string `json:"guild_id" jsonschema:"the guild ID"`
}

// SubscribersOutput lists a guild's subscribers
type SubscribersOutput struct {
	GuildID     string   `json:"guild_id"`
	Subscribers []string `json:"subscribers" jsonschema:"usernames in subscription order"`
}

// ListSubscribers lists a guild's subscribers
func (h *Handler) ListSubscribers(ctx context.Context, req *sdk.CallToolRequest, input GuildInput) (*sdk.CallToolResult, SubscribersOutput, error) {
	if input.GuildID == "" {
		return nil, SubscribersOutput{}, fmt.Errorf("guild_id is required")
	}

	subs, err := h.client.GetSubscribers(ctx, input.GuildID)
	if err != nil {
		return nil, SubscribersOutput{}, err
	}
	if subs.Subscribers == nil {
		subs.Subscribers = []string{}
	}
	return nil, SubscribersOutput{GuildID: input.GuildID, Subscribers: subs.Subscribers}, nil
}

// SubscriptionInput identifies a guild subscription
type SubscriptionInput struct {
	GuildID  string `json:"guild_id" jsonschema:"the guild ID"`
	Username string `json:"username" jsonschema:"the platform username to mention"`
}

// SubscriptionOutput reports the outcome of a subscription change
type SubscriptionOutput struct {
	Success bool   `json:"success"`
	Changed bool   `json:"changed" jsonschema:"false when nothing had to change"`
	Message string `json:"message"`
}

// Subscribe adds a username to a guild's notifications
func (h *Handler) Subscribe(ctx context.Context, req *sdk.CallToolRequest, input SubscriptionInput) (*sdk.CallToolResult, SubscriptionOutput, error) {
	if err := input.validate(); err != nil {
		return nil, SubscriptionOutput{}, err
	}

	added, err := h.client.Subscribe(ctx, input.GuildID, input.Username)
	if err != nil {
		return nil, SubscriptionOutput{}, err
	}

	msg := fmt.Sprintf("%s subscribed in guild %s", input.Username, input.GuildID)
	if !added {
		msg = fmt.Sprintf("%s was already subscribed in guild %s", input.Username, input.GuildID)
	}
	return nil, SubscriptionOutput{Success: true, Changed: added, Message: msg}, nil
}

// Unsubscribe removes a username from a guild's notifications
func (h *Handler) Unsubscribe(ctx context.Context, req *sdk.CallToolRequest, input SubscriptionInput) (*sdk.CallToolResult, SubscriptionOutput, error) {
	if err := input.validate(); err != nil {
		return nil, SubscriptionOutput{}, err
	}

	removed, err := h.client.Unsubscribe(ctx, input.GuildID, input.Username)
	if err != nil {
		return nil, SubscriptionOutput{}, err
	}

	msg := fmt.Sprintf("%s unsubscribed in guild %s", input.Username, input.GuildID)
	if !removed {
		msg = fmt.Sprintf("%s was not subscribed in guild %s", input.Username, input.GuildID)
	}
	return nil, SubscriptionOutput{Success: true, Changed: removed, Message: msg}, nil
}

func (in SubscriptionInput) validate() error {
	if in.GuildID == "" {
		return fmt.Errorf("guild_id is required")
	}
	if in.Username == "" {
		return fmt.Errorf("username is required")
	}
	return nil
}
