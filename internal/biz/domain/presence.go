package domain

// Community represents a guild
type Community struct {
	ID   string
	Name string
}

// Channel represents a channel within a guild
type Channel struct {
	ID          string
	Name        string
	CommunityID string
}

// VoiceState is one half of a voice-state change.
// A nil Channel means the member is not connected to any voice channel.
type VoiceState struct {
	Community Community
	Channel   *Channel
	Member    Member
}

// IsActive reports whether the member occupies a voice channel
func (s *VoiceState) IsActive() bool {
	return s != nil && s.Channel != nil && s.Channel.ID != ""
}

// VoiceStateEvent is a raw voice-state change wrapped into domain records
type VoiceStateEvent struct {
	ID     string
	Before *VoiceState
	After  *VoiceState
}

// CommunityID returns the guild the event belongs to
func (e *VoiceStateEvent) CommunityID() string {
	if e.After != nil && e.After.Community.ID != "" {
		return e.After.Community.ID
	}
	if e.Before != nil {
		return e.Before.Community.ID
	}
	return ""
}

// EntityKind selects a display-name cache
type EntityKind int

const (
	KindCommunity EntityKind = iota
	KindChannel
	KindMember
)

func (k EntityKind) String() string {
	switch k {
	case KindCommunity:
		return "community"
	case KindChannel:
		return "channel"
	case KindMember:
		return "member"
	default:
		return "unknown"
	}
}

// Occupants is the live, ordered sequence of member IDs in a channel.
// Insertion order is arrival order.
type Occupants []string

// Snapshot is an independent point-in-time copy of an occupant sequence
type Snapshot []string

// ContainsIdentifier reports whether id is in the sequence
func ContainsIdentifier(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// CloneSnapshot copies the occupant sequence into storage it does not share
func CloneSnapshot(occupants Occupants) Snapshot {
	out := make(Snapshot, len(occupants))
	copy(out, occupants)
	return out
}

// ChannelView is a point-in-time copy of one tracked channel
type ChannelView struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Occupants []Member `json:"occupants"`
}

// CommunityView is a point-in-time copy of one tracked guild
type CommunityView struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Channels []ChannelView `json:"channels"`
}

// PresenceView is a point-in-time copy of the whole presence store
type PresenceView struct {
	Communities []CommunityView `json:"communities"`
}

// Empty reports whether no guild is tracked
func (v PresenceView) Empty() bool {
	return len(v.Communities) == 0
}
