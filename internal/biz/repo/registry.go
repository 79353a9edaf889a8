package repo

import "context"

// RegistryRepo is the notification registry interface
// Holds subscriber usernames and the notification channel per guild
type RegistryRepo interface {
	// AddSubscriber subscribes a username; returns false if it already was
	AddSubscriber(ctx context.Context, communityID, username string) (bool, error)

	// RemoveSubscriber unsubscribes a username; returns false if it was not subscribed
	RemoveSubscriber(ctx context.Context, communityID, username string) (bool, error)

	// Subscribers lists usernames in subscription order
	Subscribers(ctx context.Context, communityID string) ([]string, error)

	// NotificationChannel returns the cached channel ID, or "" if none
	NotificationChannel(ctx context.Context, communityID string) (string, error)

	// SetNotificationChannel caches the channel ID
	SetNotificationChannel(ctx context.Context, communityID, channelID string) error

	// Close closes the registry
	Close() error
}
