package repo

import "github.com/vcnotifier/vc-notifier/internal/biz/domain"

// PresenceRepo is the presence store interface
// Authoritative guild -> channel -> occupants mapping plus display-name caches.
// All reads return copies; unknown IDs are treated as empty, never as errors.
type PresenceRepo interface {
	// Occupants returns a snapshot of a channel, creating empty entries on first sight
	Occupants(communityID, channelID string) domain.Snapshot

	// AddOccupant removes the member from every channel in the guild, then appends it
	// to the target channel if not already present
	AddOccupant(communityID, channelID, memberID string)

	// RemoveOccupant removes every occurrence of the member from the channel
	RemoveOccupant(communityID, channelID, memberID string)

	// Locate finds the channel a member currently occupies within a guild
	Locate(communityID, memberID string) (channelID string, ok bool)

	// UpdateDisplayName overwrites the cached display name
	UpdateDisplayName(kind domain.EntityKind, id, name string)

	// DisplayName returns the cached display name, or the ID when unknown
	DisplayName(kind domain.EntityKind, id string) string

	// View returns a point-in-time copy of the whole store
	View() domain.PresenceView
}
