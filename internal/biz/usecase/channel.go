package usecase

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/vcnotifier/vc-notifier/internal/biz/domain"
	"github.com/vcnotifier/vc-notifier/internal/biz/repo"
)

// ChannelConfig configures notification channel provisioning
type ChannelConfig struct {
	Name   string // Name of the provisioned text channel
	Reason string // Audit log reason
}

// DefaultChannelConfig returns the default provisioning settings
func DefaultChannelConfig() ChannelConfig {
	return ChannelConfig{
		Name:   "VC Notifications",
		Reason: "Automatically generated by VC Notifier bot",
	}
}

// ChannelUsecase resolves and provisions the notification channel of each guild
type ChannelUsecase struct {
	platformRepo repo.PlatformRepo
	registryRepo repo.RegistryRepo
	config       ChannelConfig

	provisioning singleflight.Group
}

// NewChannelUsecase creates a new channel usecase
func NewChannelUsecase(platformRepo repo.PlatformRepo, registryRepo repo.RegistryRepo, config ChannelConfig) *ChannelUsecase {
	defaults := DefaultChannelConfig()
	if config.Name == "" {
		config.Name = defaults.Name
	}
	if config.Reason == "" {
		config.Reason = defaults.Reason
	}
	return &ChannelUsecase{
		platformRepo: platformRepo,
		registryRepo: registryRepo,
		config:       config,
	}
}

// Resolve returns the cached notification channel if it still exists.
// Returns nil when nothing is cached or the cached channel is gone; the stale
// entry is left in place and overwritten by the next Provision.
func (uc *ChannelUsecase) Resolve(ctx context.Context, communityID string) (*domain.Channel, error) {
	channelID, err := uc.registryRepo.NotificationChannel(ctx, communityID)
	if err != nil {
		return nil, fmt.Errorf("get cached channel: %w", err)
	}
	if channelID == "" {
		return nil, nil
	}

	ch, err := uc.platformRepo.Channel(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("lookup channel %s: %w", channelID, err)
	}
	return ch, nil
}

// Provision creates a new notification channel and caches it
func (uc *ChannelUsecase) Provision(ctx context.Context, communityID string) (*domain.Channel, error) {
	community, err := uc.platformRepo.Community(ctx, communityID)
	if err != nil {
		return nil, fmt.Errorf("lookup guild %s: %w", communityID, err)
	}
	if community == nil {
		return nil, &domain.ResolutionError{CommunityID: communityID, Err: domain.ErrCommunityNotFound}
	}

	ch, err := uc.platformRepo.CreateTextChannel(ctx, communityID, uc.config.Name, uc.config.Reason)
	if err != nil {
		return nil, fmt.Errorf("create notification channel: %w", err)
	}

	if err := uc.registryRepo.SetNotificationChannel(ctx, communityID, ch.ID); err != nil {
		return nil, fmt.Errorf("cache notification channel: %w", err)
	}

	fmt.Printf("[Channel] Provisioned '%s' (%s) for guild %s\n", ch.Name, ch.ID, communityID)
	return ch, nil
}

// ResolveOrProvision resolves the notification channel, provisioning one if needed.
// Concurrent callers for the same guild share a single in-flight attempt.
func (uc *ChannelUsecase) ResolveOrProvision(ctx context.Context, communityID string) (*domain.Channel, error) {
	ch, err := uc.Resolve(ctx, communityID)
	if err != nil || ch != nil {
		return ch, err
	}

	v, err, _ := uc.provisioning.Do(communityID, func() (interface{}, error) {
		// Another caller may have finished provisioning while we waited
		if ch, err := uc.Resolve(ctx, communityID); err != nil || ch != nil {
			return ch, err
		}
		return uc.Provision(ctx, communityID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Channel), nil
}
