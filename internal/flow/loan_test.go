package flow

import (
	"context"
	"testing"

	"github.com/banktalk/banktalk/internal/calc"
	"github.com/banktalk/banktalk/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoanState() *domain.ConversationState {
	s := domain.NewConversationState()
	s.ActiveFlow = domain.FlowLoan
	return s
}

func TestLoan_FullConversation(t *testing.T) {
	ctx := context.Background()
	ext := &fakeExtractor{replies: map[string]domain.Slots{
		"fresh one":          {"loan_type": "fresh"},
		"I am a salaried guy": {"employment_type": "salaried"},
	}}
	c := NewLoan(ext)
	s := newLoanState()

	steps := []struct {
		msg  string
		want string
	}{
		{"check my home loan eligibility", Question("loan_type")},
		{"fresh one", Question("age")},
		{"30", Question("employment_type")},
		{"I am a salaried guy", Question("monthly_income")},
		{"1 lakh", Question("monthly_expenses")},
		{"20,000", Question("tenure_years")},
	}
	for _, st := range steps {
		res := c.Handle(ctx, s, st.msg)
		require.Equal(t, st.want, res.Response, "after %q", st.msg)
		require.False(t, res.Interrupt)
	}

	res := c.Handle(ctx, s, "20")
	require.True(t, res.Completed())
	out, ok := res.Output.(*calc.EligibilityResult)
	require.True(t, ok)
	assert.True(t, out.Eligible)
	assert.Equal(t, int64(4526368), out.EligibleAmount)
	assert.Equal(t, int64(80000), out.NetIncome)
	assert.Equal(t, int64(40000), out.EligibleEMI)
	assert.Contains(t, res.Response, "₹4,526,368")
	assert.Empty(t, s.AwaitingField)

	assert.Equal(t, 30, s.Slots["age"])
	assert.Equal(t, 100000.0, s.Slots["monthly_income"])
	assert.Equal(t, 20, s.Slots["tenure_years"])
}

func TestLoan_NumericFastPathSkipsEnumFields(t *testing.T) {
	ctx := context.Background()
	ext := &fakeExtractor{}
	c := NewLoan(ext)
	s := newLoanState()
	s.AwaitingField = "employment_type"
	s.Slots["loan_type"] = "fresh"
	s.Slots["age"] = 30

	res := c.Handle(ctx, s, "5")
	assert.Equal(t, Question("employment_type"), res.Response)
	assert.False(t, s.Slots.Has("employment_type"))
	assert.Equal(t, 1, ext.calls)
}

func TestLoan_AwaitedFieldOnlyTakesThatField(t *testing.T) {
	ctx := context.Background()
	ext := &fakeExtractor{replies: map[string]domain.Slots{
		"salaried, earning 90k": {"employment_type": "salaried", "monthly_income": 90000.0},
	}}
	c := NewLoan(ext)
	s := newLoanState()
	s.Slots["loan_type"] = "fresh"
	s.Slots["age"] = 40
	s.AwaitingField = "employment_type"

	res := c.Handle(ctx, s, "salaried, earning 90k")
	assert.Equal(t, Question("monthly_income"), res.Response)
	assert.Equal(t, "salaried", s.Slots["employment_type"])
	assert.False(t, s.Slots.Has("monthly_income"))
}

func TestLoan_FirstMessageFillsSeveralFields(t *testing.T) {
	ctx := context.Background()
	ext := &fakeExtractor{replies: map[string]domain.Slots{
		"am I eligible for a balance transfer, I'm 35 and self employed": {
			"loan_type": "balance_transfer", "age": 35, "employment_type": "self_employed",
		},
	}}
	c := NewLoan(ext)
	s := newLoanState()

	res := c.Handle(ctx, s, "am I eligible for a balance transfer, I'm 35 and self employed")
	assert.Equal(t, Question("monthly_income"), res.Response)
	assert.Equal(t, "monthly_income", s.AwaitingField)
}

func TestLoan_Ineligible(t *testing.T) {
	ctx := context.Background()
	c := NewLoan(&fakeExtractor{})
	s := newLoanState()
	s.Slots = domain.Slots{
		"loan_type": "fresh", "age": 20, "employment_type": "salaried",
		"monthly_income": 50000.0, "monthly_expenses": 10000.0,
	}
	s.AwaitingField = "tenure_years"

	res := c.Handle(ctx, s, "10")
	require.True(t, res.Completed())
	assert.Equal(t, "You are not eligible for a home loan.\nReason: Age not eligible", res.Response)
}

func TestLoan_UnresolvedReasks(t *testing.T) {
	ctx := context.Background()
	c := NewLoan(&fakeExtractor{})
	s := newLoanState()
	s.Slots["loan_type"] = "fresh"
	s.AwaitingField = "age"

	res := c.Handle(ctx, s, "why do you need that?")
	assert.Equal(t, Question("age"), res.Response)
	assert.False(t, res.Interrupt)
	assert.Nil(t, res.Output)
	assert.Equal(t, "age", s.AwaitingField)
}
