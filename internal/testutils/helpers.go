// Package testutils holds test doubles shared by the adapter and facade tests.
package testutils

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/banktalk/banktalk/pkg/domain"
)

// ScriptedOracle answers oracle prompts from fixed tables keyed by the user
// message. It recognises which component is asking from the system prompt.
// Unknown messages get "nothing found" replies: no fields, not an answer,
// USE_RAG.
type ScriptedOracle struct {
	// Routes maps a message to the router action.
	Routes map[string]string
	// Extract maps a message to the extracted fields.
	Extract map[string]map[string]any
	// Answers maps a message to the validator value; presence means is_answer=true.
	Answers map[string]any

	mu    sync.Mutex
	calls int
}

// Complete implements ports.Oracle.
func (o *ScriptedOracle) Complete(_ context.Context, system, user string) (string, error) {
	o.mu.Lock()
	o.calls++
	o.mu.Unlock()

	msg := Message(user)
	switch {
	case strings.Contains(system, "intent routing"):
		action := "USE_RAG"
		if a, ok := o.Routes[msg]; ok {
			action = a
		}
		return `{"action": "` + action + `"}`, nil

	case strings.Contains(system, "validating whether"):
		v, ok := o.Answers[msg]
		if !ok {
			return `{"is_answer": false, "value": null}`, nil
		}
		return encode(map[string]any{"is_answer": true, "value": v}), nil
	}

	fields, ok := o.Extract[msg]
	if !ok {
		return "{}", nil
	}
	return "Here you go:\n" + encode(fields), nil
}

// Calls returns how many prompts were answered.
func (o *ScriptedOracle) Calls() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.calls
}

// Message recovers the raw user message from the oracle user prompt.
func Message(user string) string {
	msg := strings.TrimPrefix(user, "User message:\n")
	return strings.TrimSuffix(strings.TrimPrefix(msg, `"`), `"`)
}

func encode(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

// StaticAnswerer returns the same answer for every question.
type StaticAnswerer struct {
	Text    string
	Sources []domain.Source
	Err     error
}

// Answer implements ports.Answerer.
func (a StaticAnswerer) Answer(context.Context, string) (*domain.Answer, error) {
	if a.Err != nil {
		return nil, a.Err
	}
	return &domain.Answer{Text: a.Text, Sources: a.Sources}, nil
}
