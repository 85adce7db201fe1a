package flow

import (
	"context"

	"github.com/banktalk/banktalk/internal/nlu"
	"github.com/banktalk/banktalk/pkg/domain"
)

// fakeExtractor returns canned slots per message, whatever the schema.
type fakeExtractor struct {
	replies map[string]domain.Slots
	calls   int
}

func (f *fakeExtractor) Extract(ctx context.Context, message string, schema *nlu.Schema) domain.Slots {
	f.calls++
	out := make(domain.Slots)
	for k, v := range f.replies[message] {
		if _, ok := schema.Field(k); ok {
			out[k] = v
		}
	}
	return out
}

// fakeValidator accepts the messages it knows.
type fakeValidator struct {
	answers map[string]any
	calls   int
}

func (f *fakeValidator) Validate(ctx context.Context, field nlu.Field, message string) nlu.Validation {
	f.calls++
	if v, ok := f.answers[message]; ok {
		return nlu.Validation{IsAnswer: true, Value: v}
	}
	return nlu.Validation{}
}
