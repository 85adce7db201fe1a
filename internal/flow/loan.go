package flow

import (
	"context"

	"github.com/banktalk/banktalk/internal/calc"
	"github.com/banktalk/banktalk/internal/nlu"
	"github.com/banktalk/banktalk/internal/parse"
	"github.com/banktalk/banktalk/pkg/domain"
)

// Loan collects the six eligibility answers, then applies the eligibility rules.
//
// Unlike EMI it never interrupts and has no validator fallback: an awaited
// field is resolved by the amount parser or the extractor, otherwise the same
// question is asked again.
type Loan struct {
	extractor FieldExtractor
	order     []string
}

// NewLoan creates the loan eligibility controller.
func NewLoan(extractor FieldExtractor) *Loan {
	return &Loan{
		extractor: extractor,
		order:     nlu.LoanSchema.Names(),
	}
}

func (c *Loan) Kind() domain.FlowKind { return domain.FlowLoan }

// Handle runs one loan turn.
func (c *Loan) Handle(ctx context.Context, state *domain.ConversationState, message string) Result {
	if field := state.AwaitingField; field != "" {
		v, ok := c.numeric(field, message)
		if !ok {
			v, ok = c.extractor.Extract(ctx, message, nlu.LoanSchema)[field]
		}
		if !ok {
			return Result{Response: Question(field)}
		}
		state.Slots[field] = v
		state.AwaitingField = ""
		return c.advance(state)
	}

	for k, v := range c.extractor.Extract(ctx, message, nlu.LoanSchema) {
		state.Slots[k] = v
	}
	return c.advance(state)
}

// numeric is the deterministic fast path for numeric fields.
func (c *Loan) numeric(field, message string) (any, bool) {
	f, ok := nlu.LoanSchema.Field(field)
	if !ok || f.Type == nlu.Enum {
		return nil, false
	}
	n, ok := parse.Amount(message)
	if !ok {
		return nil, false
	}
	if f.Type == nlu.Integer {
		return int(n), true
	}
	return n, true
}

// advance asks the next missing field or, when none is left, computes.
func (c *Loan) advance(state *domain.ConversationState) Result {
	if field, missing := nextMissing(c.order, state.Slots); missing {
		return ask(state, field)
	}

	result := calc.Eligibility(eligibilityInput(state.Slots))
	state.AwaitingField = ""
	return Result{Response: FormatEligibility(result), Output: result}
}

func eligibilityInput(slots domain.Slots) calc.EligibilityInput {
	var in calc.EligibilityInput
	in.LoanType, _ = slots.String("loan_type")
	in.Age, _ = slots.Int("age")
	in.EmploymentType, _ = slots.String("employment_type")
	in.MonthlyIncome, _ = slots.Float("monthly_income")
	in.MonthlyExpenses, _ = slots.Float("monthly_expenses")
	in.TenureYears, _ = slots.Int("tenure_years")
	return in
}
