// Package eino implements ports.Oracle over an eino chat model.
package eino

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// DefaultTimeout bounds a single oracle call.
const DefaultTimeout = 30 * time.Second

// ErrEmptyReply is returned when the model answers with no content.
var ErrEmptyReply = errors.New("model returned an empty reply")

// Oracle sends one system + user exchange to a chat model per call.
type Oracle struct {
	model       model.BaseChatModel
	timeout     time.Duration
	temperature *float32
}

// Option configures the Oracle.
type Option func(*Oracle)

// WithTimeout sets the per-call deadline. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(o *Oracle) {
		o.timeout = d
	}
}

// WithTemperature pins the sampling temperature.
func WithTemperature(t float32) Option {
	return func(o *Oracle) {
		o.temperature = &t
	}
}

// New wraps a chat model.
func New(m model.BaseChatModel, opts ...Option) *Oracle {
	o := &Oracle{model: m, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Config selects an OpenAI-compatible endpoint.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
}

// NewOpenAI builds an Oracle backed by an OpenAI-compatible chat model.
func NewOpenAI(ctx context.Context, cfg Config, opts ...Option) (*Oracle, error) {
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		BaseURL: cfg.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init chat model: %w", err)
	}
	// Extraction and routing want repeatable answers.
	opts = append([]Option{WithTemperature(0)}, opts...)
	return New(chatModel, opts...), nil
}

// Complete implements ports.Oracle.
func (o *Oracle) Complete(ctx context.Context, system, user string) (string, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	var callOpts []model.Option
	if o.temperature != nil {
		callOpts = append(callOpts, model.WithTemperature(*o.temperature))
	}

	resp, err := o.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(user),
	}, callOpts...)
	if err != nil {
		return "", fmt.Errorf("chat model generate failed: %w", err)
	}
	if resp == nil || resp.Content == "" {
		return "", ErrEmptyReply
	}
	return resp.Content, nil
}
