package nlu

import (
	"context"
	"fmt"

	"github.com/banktalk/banktalk/pkg/ports"
)

// Validation is the verdict on whether a reply answers the awaited field.
type Validation struct {
	IsAnswer bool
	Value    any
}

// Validator decides whether a free-text reply answers one specific question.
type Validator struct {
	c caller
}

// NewValidator creates a Validator backed by oracle.
func NewValidator(oracle ports.Oracle, opts ...Option) *Validator {
	return &Validator{c: newCaller(oracle, ComponentValidator, opts)}
}

func validationPrompt(field Field) string {
	return fmt.Sprintf(`You are validating whether a user message answers a specific question.

Expected field: %s (%s)

Rules:
- Respond ONLY in valid JSON.
- Do NOT guess.
- If the message does not clearly answer the expected field, return is_answer=false.
- If it answers, extract and normalize the value.

JSON format:
{
  "is_answer": false,
  "value": null
}
`, field.Name, field.Description)
}

// Validate asks the oracle whether message answers field and coerces the value.
// A value that does not coerce to the field's type is not an answer.
func (v *Validator) Validate(ctx context.Context, field Field, message string) Validation {
	obj := v.c.ask(ctx, validationPrompt(field), message)
	if obj == nil {
		return Validation{}
	}

	if ok, _ := obj["is_answer"].(bool); !ok {
		return Validation{}
	}

	value, ok := field.Coerce(obj["value"])
	if !ok {
		return Validation{}
	}
	return Validation{IsAnswer: true, Value: value}
}
