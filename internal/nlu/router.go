package nlu

import (
	"context"

	"github.com/banktalk/banktalk/pkg/ports"
)

// Action is the router's decision for a message no flow owns.
type Action string

const (
	StartEMI  Action = "START_EMI"
	StartLoan Action = "START_LOAN"
	UseRAG    Action = "USE_RAG"
)

const routingPrompt = `You are an intent routing engine for a banking chatbot.

Decide ONE action:
- START_EMI (only if user message contains calculate/check EMI or gives numbers)
- START_LOAN (only if user message contains: eligible/calculate/check/apply AND "home loan" OR "loan")
- USE_RAG (for explanations, info, definitions, policies, documents, cards, etc.)

IMPORTANT:
- Do NOT choose START_EMI for general EMI information.
- Do NOT choose START_LOAN for general loan info.
- If unsure, choose USE_RAG.

Return ONLY JSON:
{ "action": "START_EMI | START_LOAN | USE_RAG" }
`

// Router classifies messages that no flow currently owns.
type Router struct {
	c caller
}

// NewRouter creates a Router backed by oracle.
func NewRouter(oracle ports.Oracle, opts ...Option) *Router {
	return &Router{c: newCaller(oracle, ComponentRouter, opts)}
}

// Route never starts a form on ambiguity: anything but an exact
// START_EMI or START_LOAN decision is UseRAG.
func (r *Router) Route(ctx context.Context, message string) Action {
	obj := r.c.ask(ctx, routingPrompt, message)
	if obj == nil {
		return UseRAG
	}

	action, _ := obj["action"].(string)
	switch Action(action) {
	case StartEMI, StartLoan, UseRAG:
		return Action(action)
	}
	r.c.fail(ctx, "unknown_action", nil)
	return UseRAG
}
