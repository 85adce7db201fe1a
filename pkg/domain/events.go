package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTurn          EventType = "turn"
	EventFlowStart     EventType = "flow_start"
	EventFlowPause     EventType = "flow_pause"
	EventFlowResume    EventType = "flow_resume"
	EventFlowComplete  EventType = "flow_complete"
	EventFlowInterrupt EventType = "flow_interrupt"
	EventOracleFailure EventType = "oracle_failure"
)

// Route is the branch of the dispatcher that produced a turn's reply.
type Route string

const (
	RouteReset  Route = "reset"
	RouteEMI    Route = "emi"
	RouteLoan   Route = "loan"
	RouteResume Route = "resume_completed"
	RouteRAG    Route = "rag"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
}

// TurnEvent is emitted once per handled message.
type TurnEvent struct {
	EventBase
	Route    Route         `json:"route"`
	Duration time.Duration `json:"duration"`
}

// FlowEvent represents a flow lifecycle transition.
type FlowEvent struct {
	EventBase
	Flow          FlowKind `json:"flow"`
	AwaitingField string   `json:"awaiting_field,omitempty"`
}

// OracleEvent represents an absorbed oracle failure.
type OracleEvent struct {
	EventBase
	Component string `json:"component"`
	Reason    string `json:"reason"`
}

// LifecycleHooks defines callbacks for assistant observability.
// Every field is optional.
type LifecycleHooks struct {
	OnTurn          func(context.Context, *TurnEvent)
	OnFlowEvent     func(context.Context, *FlowEvent)
	OnOracleFailure func(context.Context, *OracleEvent)
}

// EmitTurn invokes OnTurn if set.
func (h LifecycleHooks) EmitTurn(ctx context.Context, e *TurnEvent) {
	if h.OnTurn != nil {
		e.Type = EventTurn
		h.OnTurn(ctx, e)
	}
}

// EmitFlow invokes OnFlowEvent if set.
func (h LifecycleHooks) EmitFlow(ctx context.Context, e *FlowEvent) {
	if h.OnFlowEvent != nil {
		h.OnFlowEvent(ctx, e)
	}
}

// EmitOracleFailure invokes OnOracleFailure if set.
func (h LifecycleHooks) EmitOracleFailure(ctx context.Context, e *OracleEvent) {
	if h.OnOracleFailure != nil {
		e.Type = EventOracleFailure
		h.OnOracleFailure(ctx, e)
	}
}

// Merge combines two hook sets; both callbacks run, receiver first.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnTurn:          chain(h.OnTurn, other.OnTurn),
		OnFlowEvent:     chain(h.OnFlowEvent, other.OnFlowEvent),
		OnOracleFailure: chain(h.OnOracleFailure, other.OnOracleFailure),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
