package repo

import (
	"context"

	"github.com/vcnotifier/vc-notifier/internal/biz/domain"
)

// PlatformRepo is the chat platform interface
// Responsible for sending messages and managing channels on Discord
type PlatformRepo interface {
	// SendText sends a text message to a channel
	SendText(ctx context.Context, channelID, text string) error

	// CreateTextChannel creates a text channel in a guild
	CreateTextChannel(ctx context.Context, communityID, name, reason string) (*domain.Channel, error)

	// Channel looks up a live channel; returns nil, nil if it does not exist
	Channel(ctx context.Context, channelID string) (*domain.Channel, error)

	// Community looks up a guild; returns nil, nil if it is unknown
	Community(ctx context.Context, communityID string) (*domain.Community, error)
}
