// Package metrics exposes assistant activity as Prometheus collectors fed by
// lifecycle hooks.
package metrics

import (
	"context"
	"strings"

	"github.com/banktalk/banktalk/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Collectors groups the assistant's metrics.
type Collectors struct {
	Turns          *prometheus.CounterVec
	FlowEvents     *prometheus.CounterVec
	OracleFailures *prometheus.CounterVec
	TurnDuration   *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Collectors, error) {
	c := &Collectors{
		Turns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "banktalk_turns_total",
				Help: "Total number of handled messages by route",
			},
			[]string{"route"},
		),
		FlowEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "banktalk_flow_events_total",
				Help: "Flow lifecycle transitions",
			},
			[]string{"flow", "event"},
		),
		OracleFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "banktalk_oracle_failures_total",
				Help: "Oracle replies discarded as unusable",
			},
			[]string{"component"},
		),
		TurnDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "banktalk_turn_duration_seconds",
				Help:    "Duration of a turn including oracle calls",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"route"},
		),
	}

	for _, col := range []prometheus.Collector{c.Turns, c.FlowEvents, c.OracleFailures, c.TurnDuration} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Hooks returns lifecycle hooks that record into the collectors.
func (c *Collectors) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurn: func(_ context.Context, e *domain.TurnEvent) {
			route := string(e.Route)
			c.Turns.WithLabelValues(route).Inc()
			c.TurnDuration.WithLabelValues(route).Observe(e.Duration.Seconds())
		},
		OnFlowEvent: func(_ context.Context, e *domain.FlowEvent) {
			// flow_start -> start
			event := strings.TrimPrefix(string(e.Type), "flow_")
			c.FlowEvents.WithLabelValues(string(e.Flow), event).Inc()
		},
		OnOracleFailure: func(_ context.Context, e *domain.OracleEvent) {
			c.OracleFailures.WithLabelValues(e.Component).Inc()
		},
	}
}
