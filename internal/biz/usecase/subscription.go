package usecase

import (
	"context"
	"strings"

	"github.com/vcnotifier/vc-notifier/internal/biz/domain"
	"github.com/vcnotifier/vc-notifier/internal/biz/repo"
)

// SubscriptionUsecase manages who is mentioned in a guild's notifications
type SubscriptionUsecase struct {
	registryRepo repo.RegistryRepo
}

// NewSubscriptionUsecase creates a new subscription usecase
func NewSubscriptionUsecase(registryRepo repo.RegistryRepo) *SubscriptionUsecase {
	return &SubscriptionUsecase{registryRepo: registryRepo}
}

// Subscribe adds a username; returns false if it was already subscribed
func (uc *SubscriptionUsecase) Subscribe(ctx context.Context, communityID, username string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return false, domain.ErrInvalidUsername
	}
	return uc.registryRepo.AddSubscriber(ctx, communityID, username)
}

// Unsubscribe removes a username; returns false if it was not subscribed
func (uc *SubscriptionUsecase) Unsubscribe(ctx context.Context, communityID, username string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return false, domain.ErrInvalidUsername
	}
	return uc.registryRepo.RemoveSubscriber(ctx, communityID, username)
}

// Subscribers lists a guild's subscribers
func (uc *SubscriptionUsecase) Subscribers(ctx context.Context, communityID string) ([]string, error) {
	return uc.registryRepo.Subscribers(ctx, communityID)
}
