package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/banktalk/banktalk/internal/logging"
	"github.com/banktalk/banktalk/pkg/domain"
	"github.com/banktalk/banktalk/pkg/ports"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of answers kept in memory.
const DefaultCacheSize = 256

// NoContextReply is returned when retrieval finds nothing for a question.
const NoContextReply = "I could not find information about that in the bank's documents."

// ErrEmptyAnswer is returned when the oracle produces no grounded answer.
var ErrEmptyAnswer = errors.New("oracle returned an empty answer")

const groundedPrompt = `You are a banking assistant answering customer questions.

Answer ONLY from the context passages provided.
- If the context does not contain the answer, say that the information is not available in the documents.
- Do not use outside knowledge.
- Keep figures, rates and fees exactly as written in the context.
`

const consolidatePrompt = `You are a banking communication assistant.

Your task is to rewrite the text below so it is clear, concise, and easy for the general public to understand.

Guidelines:
- Keep all key information, but remove unnecessary words or repetition.
- Do not add, assume, or change any information or tone.
- Use simple and professional language suited for a bank's customers.
- If the text is already clear and concise, leave it unchanged.

Return only the improved answer text.
`

// Answerer implements ports.Answerer: retrieve, answer from the retrieved
// chunks, then rewrite the answer for readability.
type Answerer struct {
	retriever Retriever
	oracle    ports.Oracle
	topK      int
	cacheSize int
	cache     *lru.Cache[string, domain.Answer]
	logger    *slog.Logger
}

// Option configures the Answerer.
type Option func(*Answerer)

// WithTopK sets how many chunks ground each answer.
func WithTopK(k int) Option {
	return func(a *Answerer) {
		a.topK = k
	}
}

// WithCacheSize sets the answer cache size. Zero disables caching.
func WithCacheSize(n int) Option {
	return func(a *Answerer) {
		a.cacheSize = n
	}
}

// WithLogger configures the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Answerer) {
		a.logger = logger
	}
}

// NewAnswerer creates an Answerer.
func NewAnswerer(retriever Retriever, oracle ports.Oracle, opts ...Option) (*Answerer, error) {
	a := &Answerer{
		retriever: retriever,
		oracle:    oracle,
		topK:      DefaultTopK,
		cacheSize: DefaultCacheSize,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("component", "rag")

	if a.cacheSize > 0 {
		cache, err := lru.New[string, domain.Answer](a.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create answer cache: %w", err)
		}
		a.cache = cache
	}
	return a, nil
}

// Answer implements ports.Answerer.
func (a *Answerer) Answer(ctx context.Context, question string) (*domain.Answer, error) {
	key := strings.ToLower(strings.Join(strings.Fields(question), " "))
	if a.cache != nil {
		if cached, ok := a.cache.Get(key); ok {
			return cloneAnswer(cached), nil
		}
	}

	chunks, err := a.retriever.Retrieve(ctx, question, a.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}
	if len(chunks) == 0 {
		return &domain.Answer{Text: NoContextReply}, nil
	}

	draft, err := a.oracle.Complete(ctx, groundedPrompt, groundedInput(question, chunks))
	if err != nil {
		return nil, fmt.Errorf("grounded answer failed: %w", err)
	}
	draft = strings.TrimSpace(draft)
	if draft == "" {
		return nil, ErrEmptyAnswer
	}

	ans := domain.Answer{Text: a.consolidate(ctx, draft), Sources: sources(chunks)}
	if a.cache != nil {
		a.cache.Add(key, ans)
	}
	return cloneAnswer(ans), nil
}

// consolidate never fails: the draft stands when the rewrite is unusable.
func (a *Answerer) consolidate(ctx context.Context, draft string) string {
	out, err := a.oracle.Complete(ctx, consolidatePrompt, "ANSWER:\n"+draft)
	if err != nil {
		a.logger.Warn("Answer rewrite failed, keeping draft", "err", err)
		return draft
	}
	if out = strings.TrimSpace(out); out == "" {
		return draft
	}
	return out
}

func groundedInput(question string, chunks []Chunk) string {
	var b strings.Builder
	b.WriteString("Context:\n")
	for i, c := range chunks {
		fmt.Fprintf(&b, "\n[%d] (%s)\n%s\n", i+1, c.Source(), c.Content)
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	return b.String()
}

func sources(chunks []Chunk) []domain.Source {
	seen := make(map[domain.Source]struct{}, len(chunks))
	out := make([]domain.Source, 0, len(chunks))
	for _, c := range chunks {
		s := c.Source()
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func cloneAnswer(a domain.Answer) *domain.Answer {
	a.Sources = append([]domain.Source(nil), a.Sources...)
	return &a
}
