package data

import (
	"context"

	"github.com/vcnotifier/vc-notifier/internal/biz/domain"
	"github.com/vcnotifier/vc-notifier/internal/biz/repo"
	"github.com/vcnotifier/vc-notifier/internal/infra/discord"
)

// discordRepo implements the platform repository on Discord
type discordRepo struct {
	client *discord.Client
}

// NewDiscordRepo creates a new Discord repository
func NewDiscordRepo(client *discord.Client) repo.PlatformRepo {
	return &discordRepo{client: client}
}

// SendText sends a text message
func (r *discordRepo) SendText(ctx context.Context, channelID, text string) error {
	return r.client.SendMessage(ctx, channelID, text)
}

// CreateTextChannel creates a text channel
func (r *discordRepo) CreateTextChannel(ctx context.Context, communityID, name, reason string) (*domain.Channel, error) {
	ch, err := r.client.CreateTextChannel(ctx, communityID, name, reason)
	if err != nil {
		return nil, err
	}
	return toDomainChannel(ch, communityID), nil
}

// Channel looks up a live channel
func (r *discordRepo) Channel(ctx context.Context, channelID string) (*domain.Channel, error) {
	ch, err := r.client.GetChannel(ctx, channelID)
	if err != nil || ch == nil {
		return nil, err
	}
	return toDomainChannel(ch, ch.GuildID), nil
}

// Community looks up a guild
func (r *discordRepo) Community(ctx context.Context, communityID string) (*domain.Community, error) {
	g, err := r.client.GetGuild(ctx, communityID)
	if err != nil || g == nil {
		return nil, err
	}
	return &domain.Community{ID: g.ID, Name: g.Name}, nil
}

func toDomainChannel(ch *discord.Channel, communityID string) *domain.Channel {
	if ch.GuildID != "" {
		communityID = ch.GuildID
	}
	return &domain.Channel{ID: ch.ID, Name: ch.Name, CommunityID: communityID}
}
