package data

import (
	"sort"
	"sync"

	"github.com/vcnotifier/vc-notifier/internal/biz/domain"
	"github.com/vcnotifier/vc-notifier/internal/biz/repo"
)

// presenceRepo implements the in-memory presence store
type presenceRepo struct {
	mu sync.RWMutex

	// guildID -> channelID -> occupants
	guilds map[string]map[string]domain.Occupants

	communityNames map[string]string
	channelNames   map[string]string
	memberNames    map[string]string
}

// NewPresenceRepo creates a new presence store
func NewPresenceRepo() repo.PresenceRepo {
	return &presenceRepo{
		guilds:         make(map[string]map[string]domain.Occupants),
		communityNames: make(map[string]string),
		channelNames:   make(map[string]string),
		memberNames:    make(map[string]string),
	}
}

// Occupants returns a snapshot of a channel
func (r *presenceRepo) Occupants(communityID, channelID string) domain.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return domain.CloneSnapshot(r.channelLocked(communityID, channelID))
}

// AddOccupant moves the member into the channel
func (r *presenceRepo) AddOccupant(communityID, channelID, memberID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// A member can only be connected to one voice channel per guild
	r.removeFromGuildLocked(communityID, memberID)

	occupants := r.channelLocked(communityID, channelID)
	if !domain.ContainsIdentifier(occupants, memberID) {
		r.guilds[communityID][channelID] = append(occupants, memberID)
	}
}

// RemoveOccupant removes every occurrence of the member from the channel
func (r *presenceRepo) RemoveOccupant(communityID, channelID, memberID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	occupants := r.channelLocked(communityID, channelID)
	r.guilds[communityID][channelID] = without(occupants, memberID)
}

// Locate finds the channel a member occupies
func (r *presenceRepo) Locate(communityID, memberID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for channelID, occupants := range r.guilds[communityID] {
		if domain.ContainsIdentifier(occupants, memberID) {
			return channelID, true
		}
	}
	return "", false
}

// UpdateDisplayName overwrites a cached display name
func (r *presenceRepo) UpdateDisplayName(kind domain.EntityKind, id, name string) {
	if id == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if names := r.namesLocked(kind); names != nil {
		names[id] = name
	}
}

// DisplayName returns a cached display name, falling back to the ID
func (r *presenceRepo) DisplayName(kind domain.EntityKind, id string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.displayNameLocked(kind, id)
}

// View returns a deep copy of the store, sorted by ID
func (r *presenceRepo) View() domain.PresenceView {
	r.mu.RLock()
	defer r.mu.RUnlock()

	view := domain.PresenceView{Communities: []domain.CommunityView{}}
	for _, guildID := range sortedKeys(r.guilds) {
		channels := r.guilds[guildID]
		cv := domain.CommunityView{
			ID:       guildID,
			Name:     r.displayNameLocked(domain.KindCommunity, guildID),
			Channels: make([]domain.ChannelView, 0, len(channels)),
		}
		for _, channelID := range sortedKeys(channels) {
			occupants := channels[channelID]
			chv := domain.ChannelView{
				ID:        channelID,
				Name:      r.displayNameLocked(domain.KindChannel, channelID),
				Occupants: make([]domain.Member, 0, len(occupants)),
			}
			for _, memberID := range occupants {
				chv.Occupants = append(chv.Occupants, domain.Member{
					ID:   memberID,
					Name: r.displayNameLocked(domain.KindMember, memberID),
				})
			}
			cv.Channels = append(cv.Channels, chv)
		}
		view.Communities = append(view.Communities, cv)
	}
	return view
}

// channelLocked returns the live sequence, auto-vivifying guild and channel entries
func (r *presenceRepo) channelLocked(communityID, channelID string) domain.Occupants {
	guild, ok := r.guilds[communityID]
	if !ok {
		guild = make(map[string]domain.Occupants)
		r.guilds[communityID] = guild
	}
	occupants, ok := guild[channelID]
	if !ok {
		occupants = domain.Occupants{}
		guild[channelID] = occupants
	}
	return occupants
}

func (r *presenceRepo) removeFromGuildLocked(communityID, memberID string) {
	guild := r.guilds[communityID]
	for channelID, occupants := range guild {
		if domain.ContainsIdentifier(occupants, memberID) {
			guild[channelID] = without(occupants, memberID)
		}
	}
}

func (r *presenceRepo) namesLocked(kind domain.EntityKind) map[string]string {
	switch kind {
	case domain.KindCommunity:
		return r.communityNames
	case domain.KindChannel:
		return r.channelNames
	case domain.KindMember:
		return r.memberNames
	default:
		return nil
	}
}

func (r *presenceRepo) displayNameLocked(kind domain.EntityKind, id string) string {
	if names := r.namesLocked(kind); names != nil {
		if name, ok := names[id]; ok && name != "" {
			return name
		}
	}
	return id
}

// without returns a new sequence with every occurrence of id removed
func without(occupants domain.Occupants, id string) domain.Occupants {
	out := make(domain.Occupants, 0, len(occupants))
	for _, v := range occupants {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
