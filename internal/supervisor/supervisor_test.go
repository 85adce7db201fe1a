package supervisor

import (
	"context"
	"errors"
	"testing"

	"github.com/banktalk/banktalk/internal/calc"
	"github.com/banktalk/banktalk/internal/flow"
	"github.com/banktalk/banktalk/internal/nlu"
	"github.com/banktalk/banktalk/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExtractor map[string]domain.Slots

func (f fakeExtractor) Extract(ctx context.Context, message string, schema *nlu.Schema) domain.Slots {
	out := make(domain.Slots)
	for k, v := range f[message] {
		if _, ok := schema.Field(k); ok {
			out[k] = v
		}
	}
	return out
}

type rejectAll struct{}

func (rejectAll) Validate(context.Context, nlu.Field, string) nlu.Validation { return nlu.Validation{} }

type fakeRouter map[string]nlu.Action

func (f fakeRouter) Route(ctx context.Context, message string) nlu.Action {
	if a, ok := f[message]; ok {
		return a
	}
	return nlu.UseRAG
}

type fakeAnswerer struct {
	err   error
	asked []string
}

func (f *fakeAnswerer) Answer(ctx context.Context, q string) (*domain.Answer, error) {
	f.asked = append(f.asked, q)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Answer{Text: "answer to: " + q, Sources: []domain.Source{{PDFName: "faq.pdf", PageNum: 2}}}, nil
}

// silentLoan never replies, which the supervisor treats as an implicit interrupt.
type silentLoan struct{}

func (silentLoan) Kind() domain.FlowKind { return domain.FlowLoan }
func (silentLoan) Handle(context.Context, *domain.ConversationState, string) flow.Result {
	return flow.Result{}
}

func newSupervisor(ext fakeExtractor, router fakeRouter, ans *fakeAnswerer, opts ...Option) *Supervisor {
	return New(Deps{
		EMI:       flow.NewEMI(ext, rejectAll{}),
		Loan:      flow.NewLoan(ext),
		Extractor: ext,
		Router:    router,
		Answerer:  ans,
	}, opts...)
}

func completedEMI() *domain.CompletedFlow {
	return &domain.CompletedFlow{
		Flow:  domain.FlowEMI,
		Slots: domain.Slots{"principal": 500000.0, "rate": 9.0, "tenure_months": 60},
	}
}

func TestIsReset(t *testing.T) {
	for _, m := range []string{"reset", " RESET ", "Clear", "start over", "clear emi", "Clear Loan"} {
		assert.True(t, IsReset(m), m)
	}
	for _, m := range []string{"please reset", "clear all", "", "restart"} {
		assert.False(t, IsReset(m), m)
	}
}

func TestReset_MidFlow(t *testing.T) {
	sup := newSupervisor(fakeExtractor{}, fakeRouter{}, &fakeAnswerer{})
	state := domain.NewConversationState()
	state.ActiveFlow = domain.FlowLoan
	state.AwaitingField = "age"
	state.Slots["loan_type"] = "fresh"
	state.PausedFlow = &domain.PausedFlow{ActiveFlow: domain.FlowEMI, Slots: domain.Slots{"rate": 9.0}}
	state.LastCompletedFlow = completedEMI()

	reply := sup.Handle(context.Background(), "s", state, "Reset")

	assert.Equal(t, ResetReply, reply.Text)
	assert.Equal(t, domain.RouteReset, reply.Route)
	assert.Equal(t, domain.NewConversationState(), state)
}

func TestReset_KeepCompleted(t *testing.T) {
	sup := newSupervisor(fakeExtractor{}, fakeRouter{}, &fakeAnswerer{}, WithKeepCompletedOnReset(true))
	state := domain.NewConversationState()
	state.ActiveFlow = domain.FlowEMI
	state.LastCompletedFlow = completedEMI()

	sup.Handle(context.Background(), "s", state, "clear")

	assert.Equal(t, domain.FlowNone, state.ActiveFlow)
	assert.Empty(t, state.Slots)
	assert.Equal(t, completedEMI(), state.LastCompletedFlow)
}

func TestInterrupt_RAGDetourResumesIdentically(t *testing.T) {
	ans := &fakeAnswerer{}
	sup := newSupervisor(fakeExtractor{}, fakeRouter{}, ans)
	ctx := context.Background()

	state := domain.NewConversationState()
	state.ActiveFlow = domain.FlowEMI
	state.AwaitingField = "rate"
	state.Slots["principal"] = 500000.0
	before := state.Clone()

	reply := sup.Handle(ctx, "s", state, "what is a CIBIL score?")

	assert.Equal(t, domain.RouteRAG, reply.Route)
	assert.Equal(t, "answer to: what is a CIBIL score?", reply.Text)
	assert.Equal(t, []domain.Source{{PDFName: "faq.pdf", PageNum: 2}}, reply.Sources)
	assert.Equal(t, before, state, "active flow, awaiting field and slots are restored exactly")

	// And the form carries on where it left off.
	reply = sup.Handle(ctx, "s", state, "9")
	assert.Equal(t, flow.Question("tenure_months"), reply.Text)
	reply = sup.Handle(ctx, "s", state, "60")
	require.NotNil(t, reply.Output)
	assert.Equal(t, 10379.18, reply.Output.(*calc.EMIResult).EMI)
}

func TestInterrupt_AnswererFailureStillResumes(t *testing.T) {
	sup := newSupervisor(fakeExtractor{}, fakeRouter{}, &fakeAnswerer{err: errors.New("index offline")})
	state := domain.NewConversationState()
	state.ActiveFlow = domain.FlowEMI
	state.AwaitingField = "principal"

	reply := sup.Handle(context.Background(), "s", state, "tell me about savings accounts")

	assert.Equal(t, FallbackReply, reply.Text)
	assert.Equal(t, domain.FlowEMI, state.ActiveFlow)
	assert.Equal(t, "principal", state.AwaitingField)
	assert.Nil(t, state.PausedFlow)
}

func TestInterrupt_RoutedToNewFlowDropsPaused(t *testing.T) {
	router := fakeRouter{"check my home loan eligibility": nlu.StartLoan}
	sup := newSupervisor(fakeExtractor{}, router, &fakeAnswerer{})
	state := domain.NewConversationState()
	state.ActiveFlow = domain.FlowEMI
	state.AwaitingField = "rate"
	state.Slots["principal"] = 500000.0

	reply := sup.Handle(context.Background(), "s", state, "check my home loan eligibility")

	assert.Equal(t, domain.RouteLoan, reply.Route)
	assert.Equal(t, flow.Question("loan_type"), reply.Text)
	assert.Equal(t, domain.FlowLoan, state.ActiveFlow)
	assert.Nil(t, state.PausedFlow)
	assert.Empty(t, state.Slots)
}

func TestResumeCompletedEMIOnUpdate(t *testing.T) {
	ext := fakeExtractor{"make the rate 10%": {"rate": 10.0}}
	router := fakeRouter{}
	sup := newSupervisor(ext, router, &fakeAnswerer{})
	state := domain.NewConversationState()
	state.LastCompletedFlow = completedEMI()

	reply := sup.Handle(context.Background(), "s", state, "make the rate 10%")

	assert.Equal(t, domain.RouteResume, reply.Route)
	out, ok := reply.Output.(*calc.EMIResult)
	require.True(t, ok)
	assert.Equal(t, 10.0, out.Rate)
	assert.Equal(t, 500000.0, out.Principal)
	assert.Equal(t, 60, out.TenureMonths)

	// The recomputed flow is archived again so it can be corrected once more.
	assert.Equal(t, domain.FlowNone, state.ActiveFlow)
	require.NotNil(t, state.LastCompletedFlow)
	assert.Equal(t, 10.0, state.LastCompletedFlow.Slots["rate"])
}

func TestResumeCompleted_IgnoresUnrelatedMessages(t *testing.T) {
	ans := &fakeAnswerer{}
	sup := newSupervisor(fakeExtractor{}, fakeRouter{}, ans)
	state := domain.NewConversationState()
	state.LastCompletedFlow = completedEMI()

	reply := sup.Handle(context.Background(), "s", state, "what is a repo rate?")

	assert.Equal(t, domain.RouteRAG, reply.Route)
	assert.Equal(t, completedEMI(), state.LastCompletedFlow)
}

func TestResumeCompleted_OnlyForEMI(t *testing.T) {
	ext := fakeExtractor{"rate 10": {"rate": 10.0}}
	sup := newSupervisor(ext, fakeRouter{}, &fakeAnswerer{})
	state := domain.NewConversationState()
	state.LastCompletedFlow = &domain.CompletedFlow{Flow: domain.FlowLoan, Slots: domain.Slots{"age": 30}}

	reply := sup.Handle(context.Background(), "s", state, "rate 10")
	assert.Equal(t, domain.RouteRAG, reply.Route)
}

func TestRouting_StartEMIClearsCompleted(t *testing.T) {
	ext := fakeExtractor{"calculate emi for 5 lakh at 9% for 5 years": {"principal": 500000.0, "rate": 9.0, "tenure_months": 60}}
	router := fakeRouter{"calculate emi for 5 lakh at 9% for 5 years": nlu.StartEMI}
	sup := newSupervisor(ext, router, &fakeAnswerer{})
	state := domain.NewConversationState()
	state.LastCompletedFlow = &domain.CompletedFlow{Flow: domain.FlowLoan, Slots: domain.Slots{"age": 30}}

	reply := sup.Handle(context.Background(), "s", state, "calculate emi for 5 lakh at 9% for 5 years")

	assert.Equal(t, domain.RouteEMI, reply.Route)
	require.NotNil(t, reply.Output)
	require.NotNil(t, state.LastCompletedFlow)
	assert.Equal(t, domain.FlowEMI, state.LastCompletedFlow.Flow, "one-shot EMI is archived for later correction")
}

func TestRouting_StartLoanKeepsCompleted(t *testing.T) {
	router := fakeRouter{"am I eligible for a home loan": nlu.StartLoan}
	sup := newSupervisor(fakeExtractor{}, router, &fakeAnswerer{})
	state := domain.NewConversationState()
	state.LastCompletedFlow = completedEMI()

	reply := sup.Handle(context.Background(), "s", state, "am I eligible for a home loan")

	assert.Equal(t, flow.Question("loan_type"), reply.Text)
	assert.Equal(t, domain.FlowLoan, state.ActiveFlow)
	assert.Equal(t, completedEMI(), state.LastCompletedFlow)
}

func TestRouting_DefaultsToRAG(t *testing.T) {
	ans := &fakeAnswerer{}
	sup := newSupervisor(fakeExtractor{}, fakeRouter{}, ans)
	state := domain.NewConversationState()

	reply := sup.Handle(context.Background(), "s", state, "emi")

	assert.Equal(t, domain.RouteRAG, reply.Route)
	assert.Equal(t, []string{"emi"}, ans.asked)
	assert.Equal(t, domain.FlowNone, state.ActiveFlow)
}

func TestRouting_NoAnswerer(t *testing.T) {
	sup := New(Deps{
		EMI:       flow.NewEMI(fakeExtractor{}, rejectAll{}),
		Loan:      flow.NewLoan(fakeExtractor{}),
		Extractor: fakeExtractor{},
		Router:    fakeRouter{},
	})
	reply := sup.Handle(context.Background(), "s", domain.NewConversationState(), "hello")
	assert.Equal(t, FallbackReply, reply.Text)
}

func TestLoan_CompletionArchives(t *testing.T) {
	sup := newSupervisor(fakeExtractor{}, fakeRouter{}, &fakeAnswerer{})
	state := domain.NewConversationState()
	state.ActiveFlow = domain.FlowLoan
	state.Slots = domain.Slots{
		"loan_type": "fresh", "age": 30, "employment_type": "salaried",
		"monthly_income": 100000.0, "monthly_expenses": 20000.0,
	}
	state.AwaitingField = "tenure_years"

	reply := sup.Handle(context.Background(), "s", state, "20")

	assert.Equal(t, domain.RouteLoan, reply.Route)
	assert.Contains(t, reply.Text, "₹4,526,368")
	assert.Equal(t, domain.FlowNone, state.ActiveFlow)
	require.NotNil(t, state.LastCompletedFlow)
	assert.Equal(t, domain.FlowLoan, state.LastCompletedFlow.Flow)
}

func TestLoan_SilentTurnIsImplicitInterrupt(t *testing.T) {
	ans := &fakeAnswerer{}
	sup := New(Deps{
		EMI:       flow.NewEMI(fakeExtractor{}, rejectAll{}),
		Loan:      silentLoan{},
		Extractor: fakeExtractor{},
		Router:    fakeRouter{},
		Answerer:  ans,
	})
	state := domain.NewConversationState()
	state.ActiveFlow = domain.FlowLoan
	state.AwaitingField = "age"
	// A pause left over from earlier: the newer interruption replaces it.
	state.PausedFlow = &domain.PausedFlow{ActiveFlow: domain.FlowEMI, AwaitingField: "rate", Slots: domain.Slots{}}

	reply := sup.Handle(context.Background(), "s", state, "what's the FD rate?")

	assert.Equal(t, domain.RouteRAG, reply.Route)
	assert.Equal(t, []string{"what's the FD rate?"}, ans.asked)
	assert.Equal(t, domain.FlowLoan, state.ActiveFlow, "last pause wins")
	assert.Equal(t, "age", state.AwaitingField)
	assert.Nil(t, state.PausedFlow)
}

func TestHooks(t *testing.T) {
	var routes []domain.Route
	var events []domain.EventType
	hooks := domain.LifecycleHooks{
		OnTurn: func(ctx context.Context, e *domain.TurnEvent) {
			assert.Equal(t, "sess-1", e.SessionID)
			routes = append(routes, e.Route)
		},
		OnFlowEvent: func(ctx context.Context, e *domain.FlowEvent) {
			events = append(events, e.Type)
		},
	}
	router := fakeRouter{"emi please": nlu.StartEMI}
	sup := newSupervisor(fakeExtractor{}, router, &fakeAnswerer{}, WithHooks(hooks))
	state := domain.NewConversationState()
	ctx := context.Background()

	sup.Handle(ctx, "sess-1", state, "emi please")
	sup.Handle(ctx, "sess-1", state, "what is EMI?")

	assert.Equal(t, []domain.Route{domain.RouteEMI, domain.RouteRAG}, routes)
	assert.Equal(t, []domain.EventType{
		domain.EventFlowStart,
		domain.EventFlowInterrupt,
		domain.EventFlowPause,
		domain.EventFlowResume,
	}, events)
}
