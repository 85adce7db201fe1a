package flow

import (
	"context"

	"github.com/banktalk/banktalk/internal/calc"
	"github.com/banktalk/banktalk/internal/nlu"
	"github.com/banktalk/banktalk/internal/parse"
	"github.com/banktalk/banktalk/pkg/domain"
)

// EMI collects principal, rate and tenure_months, then computes the installment.
type EMI struct {
	extractor FieldExtractor
	validator AnswerValidator
	order     []string
}

// NewEMI creates the EMI controller.
func NewEMI(extractor FieldExtractor, validator AnswerValidator) *EMI {
	return &EMI{
		extractor: extractor,
		validator: validator,
		order:     nlu.EMISchema.Names(),
	}
}

func (c *EMI) Kind() domain.FlowKind { return domain.FlowEMI }

// Handle runs one EMI turn.
//
// Extraction always runs first so that a message restating any field
// overwrites it. An awaited field that extraction missed goes through the
// fast paths and then the validator; a reply the validator rejects is an
// interrupt rather than a re-ask.
func (c *EMI) Handle(ctx context.Context, state *domain.ConversationState, message string) Result {
	extracted := c.extractor.Extract(ctx, message, nlu.EMISchema)
	for k, v := range extracted {
		state.Slots[k] = v
	}

	if expected := state.AwaitingField; expected != "" {
		if extracted.Has(expected) {
			state.AwaitingField = ""
		} else if res, done := c.resolveAwaited(ctx, state, expected, message); done {
			return res
		}
	}

	if field, missing := nextMissing(c.order, state.Slots); missing {
		return ask(state, field)
	}

	result := c.compute(state.Slots)
	if !result.OK() {
		// The offending value is not kept as an answer; ask for it again.
		delete(state.Slots, result.Field)
		state.AwaitingField = result.Field
		return Result{Response: FormatEMI(result) + "\n" + Question(result.Field), Output: result}
	}
	state.AwaitingField = ""
	return Result{Response: FormatEMI(result), Output: result}
}

// resolveAwaited applies the fast paths for the awaited field. It returns
// done=true when the turn ends here (re-ask or interrupt).
func (c *EMI) resolveAwaited(ctx context.Context, state *domain.ConversationState, expected, message string) (Result, bool) {
	if expected == "tenure_months" {
		months, ok := parse.DurationMonths(message)
		if !ok {
			return Result{Response: Question(expected)}, true
		}
		state.Slots[expected] = months
		state.AwaitingField = ""
		return Result{}, false
	}

	if n, ok := parse.Number(message); ok {
		state.Slots[expected] = n
		state.AwaitingField = ""
		return Result{}, false
	}

	field, ok := nlu.EMISchema.Field(expected)
	if !ok {
		return Result{Interrupt: true}, true
	}
	v := c.validator.Validate(ctx, field, message)
	if !v.IsAnswer {
		return Result{Interrupt: true}, true
	}
	state.Slots[expected] = v.Value
	state.AwaitingField = ""
	return Result{}, false
}

func (c *EMI) compute(slots domain.Slots) *calc.EMIResult {
	principal, _ := slots.Float("principal")
	rate, _ := slots.Float("rate")
	tenure, _ := slots.Int("tenure_months")
	return calc.CalculateEMI(principal, rate, tenure)
}
