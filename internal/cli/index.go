package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/banktalk/banktalk/pkg/rag"
)

// IndexStats summarizes a BuildIndex run.
type IndexStats struct {
	Documents int
	Pages     int
	Chunks    int
}

// BuildIndex chunks the corpus at corpusPath and writes a fresh search index
// at indexPath. An existing index is replaced only when force is set.
func BuildIndex(ctx context.Context, corpusPath, indexPath string, chunker *rag.Chunker, force bool) (*IndexStats, error) {
	if corpusPath == "" || indexPath == "" {
		return nil, errors.New("both corpus_path and index_path are required")
	}

	corpus, err := rag.LoadCorpus(corpusPath)
	if err != nil {
		return nil, err
	}

	stats := &IndexStats{Documents: len(corpus.Documents)}
	for _, d := range corpus.Documents {
		stats.Pages += len(d.Pages)
	}

	chunks := chunker.Chunks(corpus)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("corpus %s has no text to index", corpusPath)
	}
	stats.Chunks = len(chunks)

	if _, err := os.Stat(indexPath); err == nil {
		if !force {
			return nil, fmt.Errorf("index %s already exists (use --force to rebuild)", indexPath)
		}
		if err := os.RemoveAll(indexPath); err != nil {
			return nil, fmt.Errorf("failed to remove old index: %w", err)
		}
	}

	retriever, err := rag.CreateRetriever(indexPath)
	if err != nil {
		return nil, err
	}
	if err := retriever.Add(ctx, chunks); err != nil {
		_ = retriever.Close()
		return nil, err
	}
	if err := retriever.Close(); err != nil {
		return nil, fmt.Errorf("failed to flush index: %w", err)
	}
	return stats, nil
}
