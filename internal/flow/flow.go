// Package flow implements the two slot-filling forms, EMI and home-loan
// eligibility. Controllers hold no per-session data: every turn is a function
// of the ConversationState it is handed and the user's message.
package flow

import (
	"context"

	"github.com/banktalk/banktalk/internal/calc"
	"github.com/banktalk/banktalk/internal/nlu"
	"github.com/banktalk/banktalk/pkg/domain"
)

// Result is the outcome of one flow turn.
//
// Response is empty when the controller has nothing to say. Output holds the
// tool result (*calc.EMIResult or *calc.EligibilityResult) on the turn that
// computed it. Interrupt means the message does not belong to the flow and the
// caller should route it elsewhere.
type Result struct {
	Response  string
	Output    any
	Interrupt bool
}

// Completed reports whether the turn produced a final tool result. An EMI
// validation error is reported in Output but leaves the flow open.
func (r Result) Completed() bool {
	if res, ok := r.Output.(*calc.EMIResult); ok {
		return res.OK()
	}
	return r.Output != nil
}

// Controller handles one turn of a flow.
type Controller interface {
	Kind() domain.FlowKind
	Handle(ctx context.Context, state *domain.ConversationState, message string) Result
}

// FieldExtractor is satisfied by *nlu.Extractor.
type FieldExtractor interface {
	Extract(ctx context.Context, message string, schema *nlu.Schema) domain.Slots
}

// AnswerValidator is satisfied by *nlu.Validator.
type AnswerValidator interface {
	Validate(ctx context.Context, field nlu.Field, message string) nlu.Validation
}

// nextMissing returns the first field of order not yet in slots.
func nextMissing(order []string, slots domain.Slots) (string, bool) {
	for _, f := range order {
		if !slots.Has(f) {
			return f, true
		}
	}
	return "", false
}

// ask sets the awaited field and returns its question.
func ask(state *domain.ConversationState, field string) Result {
	state.AwaitingField = field
	return Result{Response: Question(field)}
}
