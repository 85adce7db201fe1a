package domain

// FlowKind identifies which guided form owns the conversation.
type FlowKind string

const (
	FlowNone FlowKind = ""
	FlowEMI  FlowKind = "EMI"
	FlowLoan FlowKind = "LOAN"
)

// PausedFlow is the snapshot taken when another topic interrupts an in-progress flow.
type PausedFlow struct {
	ActiveFlow    FlowKind `json:"active_flow"`
	AwaitingField string   `json:"awaiting_field,omitempty"`
	Slots         Slots    `json:"slots"`
}

// CompletedFlow is retained after a flow finishes so that a single field can be
// corrected and the result recomputed without re-asking everything.
type CompletedFlow struct {
	Flow  FlowKind `json:"flow"`
	Slots Slots    `json:"slots"`
}

// ConversationState is the mutable record of one session's flow progress.
//
// It only stores state. Flow controllers and the supervisor mutate it; the
// oracle-backed components never do.
type ConversationState struct {
	// ActiveFlow is the flow that currently owns the turn (FlowNone when idle).
	ActiveFlow FlowKind `json:"active_flow,omitempty"`

	// AwaitingField is set when the last turn ended by asking for a specific field.
	AwaitingField string `json:"awaiting_field,omitempty"`

	// Slots holds the collected answers of the active or most recently completed flow.
	Slots Slots `json:"slots"`

	// PausedFlow holds at most one interrupted flow. There is no pause stack.
	PausedFlow *PausedFlow `json:"paused_flow,omitempty"`

	// LastCompletedFlow holds the slots of the last flow that produced a result.
	LastCompletedFlow *CompletedFlow `json:"last_completed_flow,omitempty"`
}

// NewConversationState creates an empty state for a new session.
func NewConversationState() *ConversationState {
	return &ConversationState{
		Slots: make(Slots),
	}
}

// ResetFlow clears the active flow, its slots and any paused flow.
// LastCompletedFlow is left alone; the caller decides whether to drop it.
func (s *ConversationState) ResetFlow() {
	s.ActiveFlow = FlowNone
	s.AwaitingField = ""
	s.Slots = make(Slots)
	s.PausedFlow = nil
}

// PauseCurrentFlow snapshots the active flow and clears the active fields.
// A second pause overwrites the first (last write wins).
func (s *ConversationState) PauseCurrentFlow() {
	s.PausedFlow = &PausedFlow{
		ActiveFlow:    s.ActiveFlow,
		AwaitingField: s.AwaitingField,
		Slots:         s.Slots.Clone(),
	}
	s.ActiveFlow = FlowNone
	s.AwaitingField = ""
}

// ResumePausedFlow restores the paused flow, if any. It reports whether a flow was resumed.
func (s *ConversationState) ResumePausedFlow() bool {
	if s.PausedFlow == nil {
		return false
	}
	s.ActiveFlow = s.PausedFlow.ActiveFlow
	s.AwaitingField = s.PausedFlow.AwaitingField
	s.Slots = s.PausedFlow.Slots
	if s.Slots == nil {
		s.Slots = make(Slots)
	}
	s.PausedFlow = nil
	return true
}

// CompleteActiveFlow archives the current slots into LastCompletedFlow and
// clears the active fields. Slots stay populated for later correction.
func (s *ConversationState) CompleteActiveFlow() {
	s.LastCompletedFlow = &CompletedFlow{
		Flow:  s.ActiveFlow,
		Slots: s.Slots.Clone(),
	}
	s.ActiveFlow = FlowNone
	s.AwaitingField = ""
}

// Clone returns a deep copy of the state.
func (s *ConversationState) Clone() *ConversationState {
	c := &ConversationState{
		ActiveFlow:    s.ActiveFlow,
		AwaitingField: s.AwaitingField,
		Slots:         s.Slots.Clone(),
	}
	if s.PausedFlow != nil {
		p := *s.PausedFlow
		p.Slots = s.PausedFlow.Slots.Clone()
		c.PausedFlow = &p
	}
	if s.LastCompletedFlow != nil {
		l := *s.LastCompletedFlow
		l.Slots = s.LastCompletedFlow.Slots.Clone()
		c.LastCompletedFlow = &l
	}
	return c
}
