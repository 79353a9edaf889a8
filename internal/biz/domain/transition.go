package domain

// TransitionKind classifies a channel occupancy change
type TransitionKind string

const (
	TransitionNone  TransitionKind = ""
	TransitionJoin  TransitionKind = "join"
	TransitionLeave TransitionKind = "leave"
)

// Transition is a detected join or leave
type Transition struct {
	Kind      TransitionKind
	Community Community
	Channel   Channel
	Member    Member
}

// HasJoined is true iff memberID is absent from before and present in after
func HasJoined(memberID string, before, after Snapshot) bool {
	return !ContainsIdentifier(before, memberID) && ContainsIdentifier(after, memberID)
}

// HasLeft is true iff memberID is present in before and absent from after
func HasLeft(memberID string, before, after Snapshot) bool {
	return ContainsIdentifier(before, memberID) && !ContainsIdentifier(after, memberID)
}

// DetectTransition classifies the change of one channel between two snapshots
func DetectTransition(memberID string, before, after Snapshot) TransitionKind {
	switch {
	case HasJoined(memberID, before, after):
		return TransitionJoin
	case HasLeft(memberID, before, after):
		return TransitionLeave
	default:
		return TransitionNone
	}
}
