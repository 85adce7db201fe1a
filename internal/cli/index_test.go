package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/banktalk/banktalk/pkg/rag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const corpusYAML = `
documents:
  - name: home-loans.pdf
    pages:
      - num: 1
        text: Home loans are available for salaried and self employed applicants.
      - num: 2
        text: Balance transfer moves an existing home loan to a lower rate.
        tables:
          - "| Tenure | Rate |"
  - name: cards.pdf
    pages:
      - num: 3
        text: Credit cards carry an annual fee waived above a spend threshold.
`

func TestBuildIndex(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	corpus := filepath.Join(dir, "corpus.yaml")
	require.NoError(t, os.WriteFile(corpus, []byte(corpusYAML), 0644))
	index := filepath.Join(dir, "index.bleve")

	stats, err := BuildIndex(ctx, corpus, index, rag.NewChunker(), false)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Documents)
	assert.Equal(t, 3, stats.Pages)
	assert.Equal(t, 4, stats.Chunks)

	_, err = BuildIndex(ctx, corpus, index, rag.NewChunker(), false)
	assert.ErrorContains(t, err, "already exists")

	_, err = BuildIndex(ctx, corpus, index, rag.NewChunker(), true)
	require.NoError(t, err)

	r, err := rag.OpenRetriever(index)
	require.NoError(t, err)
	defer r.Close()

	n, err := r.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), n)

	chunks, err := r.Retrieve(ctx, "balance transfer", 1)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "home-loans.pdf p.2", chunks[0].Source().String())
}

func TestBuildIndex_Errors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	_, err := BuildIndex(ctx, "", filepath.Join(dir, "i"), rag.NewChunker(), false)
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("documents:\n  - name: blank.pdf\n    pages:\n      - num: 1\n        text: \"  \"\n"), 0644))
	_, err = BuildIndex(ctx, empty, filepath.Join(dir, "i"), rag.NewChunker(), false)
	assert.ErrorContains(t, err, "no text")
}
