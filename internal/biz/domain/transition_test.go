package domain

import "testing"

func TestHasLeft_MemberRemoved(t *testing.T) {
	before := Snapshot{"A", "B"}
	after := Snapshot{"A"}

	if !HasLeft("B", before, after) {
		t.Error("Expected B to have left")
	}
	if HasJoined("B", before, after) {
		t.Error("Expected B not to have joined")
	}
	if HasJoined("A", before, after) || HasLeft("A", before, after) {
		t.Error("Expected no transition for A")
	}
}

func TestHasJoined_EmptyBefore(t *testing.T) {
	before := Snapshot{}
	after := Snapshot{"M"}

	if !HasJoined("M", before, after) {
		t.Error("Expected M to have joined")
	}
	if HasLeft("M", before, after) {
		t.Error("Expected M not to have left")
	}
	// Reverse relation
	if !HasLeft("M", after, before) {
		t.Error("Expected M to have left when snapshots are swapped")
	}
}

func TestDetectTransition_Reordered(t *testing.T) {
	before := Snapshot{"A", "B"}
	after := Snapshot{"B", "A"}

	if got := DetectTransition("A", before, after); got != TransitionNone {
		t.Errorf("Expected no transition, got %q", got)
	}
}

func TestDetectTransition(t *testing.T) {
	tests := []struct {
		name   string
		before Snapshot
		after  Snapshot
		want   TransitionKind
	}{
		{"join", nil, Snapshot{"m"}, TransitionJoin},
		{"leave", Snapshot{"m"}, nil, TransitionLeave},
		{"absent", Snapshot{"x"}, Snapshot{"y"}, TransitionNone},
		{"stays", Snapshot{"m"}, Snapshot{"m", "x"}, TransitionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectTransition("m", tt.before, tt.after); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}
