package nlu

import (
	"context"

	"github.com/banktalk/banktalk/pkg/domain"
	"github.com/banktalk/banktalk/pkg/ports"
)

// Extractor pulls explicitly stated field values out of a message.
type Extractor struct {
	c caller
}

// NewExtractor creates an Extractor backed by oracle.
func NewExtractor(oracle ports.Oracle, opts ...Option) *Extractor {
	return &Extractor{c: newCaller(oracle, ComponentExtractor, opts)}
}

// Extract returns only the schema fields that were present and coerced
// cleanly. An empty result means nothing usable was found.
func (e *Extractor) Extract(ctx context.Context, message string, schema *Schema) domain.Slots {
	out := make(domain.Slots)

	obj := e.c.ask(ctx, schema.extractionPrompt(), message)
	if obj == nil {
		return out
	}

	for _, f := range schema.Fields {
		raw, ok := obj[f.Name]
		if !ok || raw == nil {
			continue
		}
		if v, ok := f.Coerce(raw); ok {
			out[f.Name] = v
		}
	}
	return out
}
