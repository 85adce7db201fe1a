package ports

import (
	"context"

	"github.com/banktalk/banktalk/pkg/domain"
)

// Oracle is a text-completion backend (typically an LLM).
//
// Its output is untrusted. Callers must parse and validate every reply and
// treat any error or malformed text as "no information".
type Oracle interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// OracleFunc adapts a plain function to the Oracle interface.
type OracleFunc func(ctx context.Context, system, user string) (string, error)

// Complete calls f.
func (f OracleFunc) Complete(ctx context.Context, system, user string) (string, error) {
	return f(ctx, system, user)
}

// Answerer answers free-form questions, usually from a document corpus.
type Answerer interface {
	Answer(ctx context.Context, question string) (*domain.Answer, error)
}
