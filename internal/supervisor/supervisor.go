// Package supervisor is the per-turn dispatcher. It composes the flow
// controllers, the intent router and the RAG answerer into the
// reset / continue / resume / route policy.
package supervisor

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/banktalk/banktalk/internal/flow"
	"github.com/banktalk/banktalk/internal/logging"
	"github.com/banktalk/banktalk/internal/nlu"
	"github.com/banktalk/banktalk/pkg/domain"
	"github.com/banktalk/banktalk/pkg/ports"
)

const (
	// ResetReply confirms a reset.
	ResetReply = "All values have been cleared. How can I help you?"
	// FallbackReply is used when the RAG answerer is missing or fails.
	FallbackReply = "Sorry, I couldn't find an answer to that right now. I can still help you calculate an EMI or check your home loan eligibility."
)

var resetPhrases = map[string]struct{}{
	"reset":      {},
	"clear":      {},
	"start over": {},
	"clear emi":  {},
	"clear loan": {},
}

// IsReset reports whether message is one of the reset commands.
func IsReset(message string) bool {
	_, ok := resetPhrases[strings.ToLower(strings.TrimSpace(message))]
	return ok
}

// Router is satisfied by *nlu.Router.
type Router interface {
	Route(ctx context.Context, message string) nlu.Action
}

// Deps are the collaborators a Supervisor dispatches to.
type Deps struct {
	EMI       flow.Controller
	Loan      flow.Controller
	Extractor flow.FieldExtractor // used to detect updates to a completed EMI
	Router    Router
	Answerer  ports.Answerer // may be nil
}

// Reply is the outcome of one turn.
type Reply struct {
	Text    string
	Route   domain.Route
	Output  any      // tool result when a flow computed one this turn
	Sources []domain.Source // RAG sources
}

// Supervisor dispatches one message against one session's state.
// It holds no session data and is safe for concurrent use on distinct states.
type Supervisor struct {
	deps          Deps
	logger        *slog.Logger
	hooks         domain.LifecycleHooks
	keepCompleted bool
}

// Option configures the Supervisor.
type Option func(*Supervisor)

// WithLogger configures the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Supervisor) {
		s.logger = logger
	}
}

// WithHooks registers lifecycle hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Supervisor) {
		s.hooks = hooks
	}
}

// WithKeepCompletedOnReset keeps LastCompletedFlow across a reset command.
// By default a reset forgets it too.
func WithKeepCompletedOnReset(keep bool) Option {
	return func(s *Supervisor) {
		s.keepCompleted = keep
	}
}

// New creates a Supervisor.
func New(deps Deps, opts ...Option) *Supervisor {
	s := &Supervisor{
		deps:   deps,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "supervisor")
	return s
}

// Handle runs one turn. It mutates state in place and never fails: every
// collaborator failure has already degraded to a reply by the time it gets here.
func (s *Supervisor) Handle(ctx context.Context, sessionID string, state *domain.ConversationState, message string) Reply {
	start := time.Now()
	t := &turn{s: s, ctx: ctx, sessionID: sessionID, state: state}

	reply := t.dispatch(message)

	s.hooks.EmitTurn(ctx, &domain.TurnEvent{
		EventBase: domain.EventBase{Timestamp: start, SessionID: sessionID},
		Route:     reply.Route,
		Duration:  time.Since(start),
	})
	s.logger.Debug("Turn handled",
		"session_id", sessionID,
		"route", reply.Route,
		"flow", state.ActiveFlow,
		"awaiting_field", state.AwaitingField,
	)
	return reply
}

// turn carries the per-call context through the dispatch steps.
type turn struct {
	s         *Supervisor
	ctx       context.Context
	sessionID string
	state     *domain.ConversationState
}

func (t *turn) dispatch(message string) Reply {
	state := t.state

	if IsReset(message) {
		state.ResetFlow()
		if !t.s.keepCompleted {
			state.LastCompletedFlow = nil
		}
		return Reply{Text: ResetReply, Route: domain.RouteReset}
	}

	switch state.ActiveFlow {
	case domain.FlowEMI:
		res := t.s.deps.EMI.Handle(t.ctx, state, message)
		if !res.Interrupt {
			return t.finish(domain.RouteEMI, res)
		}
		t.pause(domain.FlowEMI)

	case domain.FlowLoan:
		res := t.s.deps.Loan.Handle(t.ctx, state, message)
		if res.Completed() || res.Response != "" {
			return t.finish(domain.RouteLoan, res)
		}
		t.pause(domain.FlowLoan)
	}

	if reply, ok := t.resumeCompleted(message); ok {
		return reply
	}

	switch action := t.s.deps.Router.Route(t.ctx, message); action {
	case nlu.StartEMI:
		state.ResetFlow()
		state.LastCompletedFlow = nil
		t.start(domain.FlowEMI)
		return t.finish(domain.RouteEMI, t.s.deps.EMI.Handle(t.ctx, state, message))

	case nlu.StartLoan:
		state.ResetFlow()
		t.start(domain.FlowLoan)
		return t.finish(domain.RouteLoan, t.s.deps.Loan.Handle(t.ctx, state, message))
	}

	return t.rag(message)
}

// resumeCompleted reopens a finished EMI when the message restates any EMI field.
func (t *turn) resumeCompleted(message string) (Reply, bool) {
	state := t.state
	last := state.LastCompletedFlow
	if state.ActiveFlow != domain.FlowNone || last == nil || last.Flow != domain.FlowEMI {
		return Reply{}, false
	}

	if len(t.s.deps.Extractor.Extract(t.ctx, message, nlu.EMISchema)) == 0 {
		return Reply{}, false
	}

	state.Slots = last.Slots.Clone()
	state.LastCompletedFlow = nil
	t.start(domain.FlowEMI)

	res := t.s.deps.EMI.Handle(t.ctx, state, message)
	reply := t.finish(domain.RouteResume, res)
	return reply, true
}

// finish archives a completed flow and builds the reply.
func (t *turn) finish(route domain.Route, res flow.Result) Reply {
	if res.Completed() {
		kind := t.state.ActiveFlow
		t.state.CompleteActiveFlow()
		t.flowEvent(domain.EventFlowComplete, kind, "")
	}
	return Reply{Text: res.Response, Route: route, Output: res.Output}
}

func (t *turn) rag(message string) Reply {
	reply := Reply{Text: FallbackReply, Route: domain.RouteRAG}

	if t.s.deps.Answerer != nil {
		ans, err := t.s.deps.Answerer.Answer(t.ctx, message)
		switch {
		case err != nil:
			t.s.logger.Warn("Answerer failed", "session_id", t.sessionID, "err", err)
		case ans != nil && strings.TrimSpace(ans.Text) != "":
			reply.Text = ans.Text
			reply.Sources = ans.Sources
		}
	}

	// A side question answered here must not abandon the form it interrupted.
	if t.state.ResumePausedFlow() {
		t.flowEvent(domain.EventFlowResume, t.state.ActiveFlow, t.state.AwaitingField)
	}
	return reply
}

func (t *turn) start(kind domain.FlowKind) {
	t.state.ActiveFlow = kind
	t.flowEvent(domain.EventFlowStart, kind, "")
}

func (t *turn) pause(kind domain.FlowKind) {
	awaiting := t.state.AwaitingField
	t.flowEvent(domain.EventFlowInterrupt, kind, awaiting)
	t.state.PauseCurrentFlow()
	t.flowEvent(domain.EventFlowPause, kind, awaiting)
}

func (t *turn) flowEvent(typ domain.EventType, kind domain.FlowKind, awaiting string) {
	t.s.logger.Debug("Flow event", "session_id", t.sessionID, "event", typ, "flow", kind, "awaiting_field", awaiting)
	t.s.hooks.EmitFlow(t.ctx, &domain.FlowEvent{
		EventBase:     domain.EventBase{Timestamp: time.Now(), Type: typ, SessionID: t.sessionID},
		Flow:          kind,
		AwaitingField: awaiting,
	})
}
