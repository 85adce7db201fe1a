package banktalk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/banktalk/banktalk/internal/flow"
	"github.com/banktalk/banktalk/internal/logging"
	"github.com/banktalk/banktalk/internal/nlu"
	"github.com/banktalk/banktalk/internal/sanitize"
	"github.com/banktalk/banktalk/internal/supervisor"
	"github.com/banktalk/banktalk/pkg/adapters/memory"
	"github.com/banktalk/banktalk/pkg/domain"
	"github.com/banktalk/banktalk/pkg/ports"
	"github.com/banktalk/banktalk/pkg/session"
)

// Assistant is the high-level entry point of the library.
// It owns the session store and runs one supervisor turn per Chat call.
type Assistant struct {
	sessions *session.Manager
	sup      *supervisor.Supervisor

	store         ports.StateStore
	locker        ports.DistributedLocker
	lockTTL       time.Duration
	answerer      ports.Answerer
	hooks         domain.LifecycleHooks
	logger        *slog.Logger
	keepCompleted bool
	maxInputSize  int
}

// Option defines a functional option for configuring the Assistant.
type Option func(*Assistant)

// WithStore sets the state store (default: in-memory).
func WithStore(store ports.StateStore) Option {
	return func(a *Assistant) {
		a.store = store
	}
}

// WithLocker enables a distributed lock around each turn.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(a *Assistant) {
		a.locker = locker
	}
}

// WithLockTTL overrides the distributed lock TTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(a *Assistant) {
		a.lockTTL = ttl
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assistant) {
		a.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(a *Assistant) {
		a.hooks = hooks
	}
}

// WithAnswerer sets the collaborator for open questions.
// Without one every open question gets the fallback reply.
func WithAnswerer(answerer ports.Answerer) Option {
	return func(a *Assistant) {
		a.answerer = answerer
	}
}

// WithKeepCompletedOnReset keeps the last completed flow across a reset command.
func WithKeepCompletedOnReset(keep bool) Option {
	return func(a *Assistant) {
		a.keepCompleted = keep
	}
}

// WithMaxInputSize overrides the message size limit in bytes.
func WithMaxInputSize(n int) Option {
	return func(a *Assistant) {
		a.maxInputSize = n
	}
}

// Response is the result of one Chat call.
type Response struct {
	SessionID     string            `json:"session_id"`
	Reply         string            `json:"reply"`
	ActiveFlow    domain.FlowKind   `json:"active_flow"`
	AwaitingField string            `json:"awaiting_field,omitempty"`
	Route         domain.Route      `json:"route"`
	Output        any               `json:"output,omitempty"`
	Sources       []domain.Source   `json:"sources,omitempty"`
	Diff          *domain.StateDiff `json:"diff,omitempty"`
}

// New builds an Assistant around the given oracle.
func New(oracle ports.Oracle, opts ...Option) (*Assistant, error) {
	if oracle == nil {
		return nil, errors.New("oracle is required")
	}

	a := &Assistant{}
	for _, opt := range opts {
		opt(a)
	}
	if a.store == nil {
		a.store = memory.NewStore()
	}
	if a.logger == nil {
		a.logger = logging.NewNop()
	}

	nluOpts := []nlu.Option{nlu.WithLogger(a.logger), nlu.WithHooks(a.hooks)}
	extractor := nlu.NewExtractor(oracle, nluOpts...)
	validator := nlu.NewValidator(oracle, nluOpts...)

	deps := supervisor.Deps{
		EMI:       flow.NewEMI(extractor, validator),
		Loan:      flow.NewLoan(extractor),
		Extractor: extractor,
		Router:    nlu.NewRouter(oracle, nluOpts...),
		Answerer:  a.answerer,
	}
	a.sup = supervisor.New(deps,
		supervisor.WithLogger(a.logger),
		supervisor.WithHooks(a.hooks),
		supervisor.WithKeepCompletedOnReset(a.keepCompleted),
	)

	sessOpts := []session.Option{session.WithLogger(a.logger)}
	if a.locker != nil {
		sessOpts = append(sessOpts, session.WithLocker(a.locker))
	}
	if a.lockTTL > 0 {
		sessOpts = append(sessOpts, session.WithLockTTL(a.lockTTL))
	}
	a.sessions = session.NewManager(a.store, sessOpts...)

	return a, nil
}

// Chat handles one user message for sessionID.
// A session that does not exist yet starts empty and is created by this call.
func (a *Assistant) Chat(ctx context.Context, sessionID, message string) (*Response, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, errors.New("session id is required")
	}

	clean, err := sanitize.Input(message, a.maxInputSize)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(clean) == "" {
		return nil, domain.ErrEmptyMessage
	}

	resp := &Response{SessionID: sessionID}
	err = a.sessions.Update(ctx, sessionID, func(ctx context.Context, state *domain.ConversationState) error {
		before := state.Clone()
		reply := a.sup.Handle(ctx, sessionID, state, clean)

		resp.Reply = reply.Text
		resp.Route = reply.Route
		resp.Output = reply.Output
		resp.Sources = reply.Sources
		resp.ActiveFlow = state.ActiveFlow
		resp.AwaitingField = state.AwaitingField
		resp.Diff = domain.Diff(before, state)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("chat turn failed: %w", err)
	}
	return resp, nil
}

// Session returns a copy of the stored state for sessionID.
func (a *Assistant) Session(ctx context.Context, sessionID string) (*domain.ConversationState, error) {
	return a.sessions.Load(ctx, sessionID)
}

// Reset clears the session's flow state the same way the reset command does.
func (a *Assistant) Reset(ctx context.Context, sessionID string) error {
	return a.sessions.Update(ctx, sessionID, func(_ context.Context, state *domain.ConversationState) error {
		state.ResetFlow()
		if !a.keepCompleted {
			state.LastCompletedFlow = nil
		}
		return nil
	})
}

// Delete removes the session entirely.
func (a *Assistant) Delete(ctx context.Context, sessionID string) error {
	return a.sessions.Delete(ctx, sessionID)
}

// Sessions lists the stored session ids.
func (a *Assistant) Sessions(ctx context.Context) ([]string, error) {
	return a.sessions.List(ctx)
}
