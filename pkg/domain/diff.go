package domain

import (
	"reflect"
)

// StateDiff represents the changes a turn made to a ConversationState.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	ActiveFlow    *FlowKind `json:"active_flow,omitempty"`
	AwaitingField *string   `json:"awaiting_field,omitempty"`

	// Slots contains only changed, added or deleted keys.
	// For deletions, the key is present with a nil value.
	Slots map[string]any `json:"slots,omitempty"`

	Paused    *bool `json:"paused,omitempty"`
	Completed *bool `json:"completed,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState.
// It returns nil when nothing changed.
func Diff(oldState, newState *ConversationState) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{}

	if oldState == nil || oldState.ActiveFlow != newState.ActiveFlow {
		flow := newState.ActiveFlow
		diff.ActiveFlow = &flow
	}
	if oldState == nil || oldState.AwaitingField != newState.AwaitingField {
		field := newState.AwaitingField
		diff.AwaitingField = &field
	}

	var oldSlots Slots
	if oldState != nil {
		oldSlots = oldState.Slots
	}
	diff.Slots = diffSlots(oldSlots, newState.Slots)

	paused := newState.PausedFlow != nil
	if oldState == nil || (oldState.PausedFlow != nil) != paused {
		diff.Paused = &paused
	}
	completed := newState.LastCompletedFlow != nil
	if oldState == nil || (oldState.LastCompletedFlow != nil) != completed {
		diff.Completed = &completed
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffSlots(old, new Slots) map[string]any {
	delta := make(map[string]any)

	for k, newVal := range new {
		oldVal, exists := old[k]
		if !exists || !reflect.DeepEqual(oldVal, newVal) {
			delta[k] = newVal
		}
	}

	for k := range old {
		if _, exists := new[k]; !exists {
			delta[k] = nil
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.ActiveFlow == nil &&
		d.AwaitingField == nil &&
		len(d.Slots) == 0 &&
		d.Paused == nil &&
		d.Completed == nil
}
