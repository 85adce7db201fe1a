// Package nlu wraps the text-understanding oracle behind three narrow,
// fail-closed components: the field Extractor, the answer Validator and the
// intent Router.
//
// None of them returns an error. An unreachable oracle, a reply without JSON
// or a reply of the wrong shape all collapse to "nothing extracted", "not an
// answer" and "use RAG" respectively.
package nlu

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/banktalk/banktalk/internal/logging"
	"github.com/banktalk/banktalk/pkg/domain"
	"github.com/banktalk/banktalk/pkg/ports"
)

// Component names used in logs and oracle-failure events.
const (
	ComponentExtractor = "extractor"
	ComponentValidator = "validator"
	ComponentRouter    = "router"
)

// Option configures an nlu component.
type Option func(*caller)

// WithLogger sets the logger used to report absorbed oracle failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *caller) {
		c.logger = logger
	}
}

// WithHooks sets the lifecycle hooks notified of absorbed oracle failures.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(c *caller) {
		c.hooks = hooks
	}
}

// caller is the shared oracle round trip: one call, one decode, no retries.
type caller struct {
	oracle    ports.Oracle
	component string
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
}

func newCaller(oracle ports.Oracle, component string, opts []Option) caller {
	c := caller{
		oracle:    oracle,
		component: component,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	c.logger = c.logger.With("component", component)
	return c
}

func userPrompt(message string) string {
	return "User message:\n\"" + message + "\""
}

// ask returns the decoded JSON object, or nil after logging the failure.
func (c *caller) ask(ctx context.Context, system, message string) map[string]any {
	if c.oracle == nil {
		c.fail(ctx, "no_oracle", nil)
		return nil
	}

	raw, err := c.oracle.Complete(ctx, system, userPrompt(message))
	if err != nil {
		c.fail(ctx, "oracle_error", err)
		return nil
	}

	obj, err := DecodeObject(raw)
	if err != nil {
		reason := "bad_json"
		if errors.Is(err, ErrNoJSON) {
			reason = "no_json"
		}
		c.fail(ctx, reason, err)
		return nil
	}
	return obj
}

func (c *caller) fail(ctx context.Context, reason string, err error) {
	c.logger.Warn("Oracle reply discarded", "reason", reason, "err", err)
	c.hooks.EmitOracleFailure(ctx, &domain.OracleEvent{
		EventBase: domain.EventBase{Timestamp: time.Now()},
		Component: c.component,
		Reason:    reason,
	})
}
