package usecase

import (
	"context"
	"fmt"

	"github.com/vcnotifier/vc-notifier/internal/biz/domain"
	"github.com/vcnotifier/vc-notifier/internal/biz/repo"
)

// NotifyUsecase composes and sends presence notifications
type NotifyUsecase struct {
	channelUC    *ChannelUsecase
	registryRepo repo.RegistryRepo
	platformRepo repo.PlatformRepo
}

// NewNotifyUsecase creates a new notify usecase
func NewNotifyUsecase(channelUC *ChannelUsecase, registryRepo repo.RegistryRepo, platformRepo repo.PlatformRepo) *NotifyUsecase {
	return &NotifyUsecase{
		channelUC:    channelUC,
		registryRepo: registryRepo,
		platformRepo: platformRepo,
	}
}

// Notify sends message to the guild's notification channel, mentioning every
// subscriber except opts.OmittedUsername
func (uc *NotifyUsecase) Notify(ctx context.Context, communityID, message string, opts domain.NotifyOptions) error {
	ch, err := uc.channelUC.ResolveOrProvision(ctx, communityID)
	if err != nil {
		return fmt.Errorf("resolve notification channel: %w", err)
	}

	subscribers, err := uc.registryRepo.Subscribers(ctx, communityID)
	if err != nil {
		return fmt.Errorf("get subscribers: %w", err)
	}

	prefix := domain.MentionPrefix(subscribers, opts.OmittedUsername)
	text := domain.ComposeNotification(prefix, message)

	if err := uc.platformRepo.SendText(ctx, ch.ID, text); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}
