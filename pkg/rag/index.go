package rag

import (
	"context"
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// DefaultTopK is how many chunks are retrieved per question.
const DefaultTopK = 4

const batchSize = 500

// Retriever returns the chunks most relevant to a question.
type Retriever interface {
	Retrieve(ctx context.Context, question string, k int) ([]Chunk, error)
}

// BleveRetriever is a lexical chunk index.
type BleveRetriever struct {
	index bleve.Index
}

type chunkDoc struct {
	Document string `json:"document"`
	Page     int    `json:"page"`
	Content  string `json:"content"`
}

func chunkMapping() mapping.IndexMapping {
	content := bleve.NewTextFieldMapping()
	content.Analyzer = en.AnalyzerName

	name := bleve.NewTextFieldMapping()
	name.Analyzer = keyword.Name

	page := bleve.NewNumericFieldMapping()

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("content", content)
	doc.AddFieldMappingsAt("document", name)
	doc.AddFieldMappingsAt("page", page)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	return m
}

// NewMemRetriever creates an empty in-memory index.
func NewMemRetriever() (*BleveRetriever, error) {
	idx, err := bleve.NewMemOnly(chunkMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}
	return &BleveRetriever{index: idx}, nil
}

// CreateRetriever creates a new on-disk index at path. The path must not exist.
func CreateRetriever(path string) (*BleveRetriever, error) {
	idx, err := bleve.New(path, chunkMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create index at %s: %w", path, err)
	}
	return &BleveRetriever{index: idx}, nil
}

// OpenRetriever opens an index written by CreateRetriever.
func OpenRetriever(path string) (*BleveRetriever, error) {
	idx, err := bleve.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index at %s: %w", path, err)
	}
	return &BleveRetriever{index: idx}, nil
}

// Add indexes chunks in batches. Chunks with an existing ID are replaced.
func (r *BleveRetriever) Add(ctx context.Context, chunks []Chunk) error {
	batch := r.index.NewBatch()
	for _, c := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := batch.Index(c.ID, chunkDoc{Document: c.Document, Page: c.Page, Content: c.Content}); err != nil {
			return fmt.Errorf("failed to index chunk %s: %w", c.ID, err)
		}
		if batch.Size() >= batchSize {
			if err := r.index.Batch(batch); err != nil {
				return fmt.Errorf("failed to write batch: %w", err)
			}
			batch.Reset()
		}
	}
	if batch.Size() > 0 {
		if err := r.index.Batch(batch); err != nil {
			return fmt.Errorf("failed to write batch: %w", err)
		}
	}
	return nil
}

// Retrieve implements Retriever.
func (r *BleveRetriever) Retrieve(ctx context.Context, question string, k int) ([]Chunk, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	q := bleve.NewMatchQuery(question)
	q.SetField("content")
	req := bleve.NewSearchRequest(q)
	req.Size = k
	req.Fields = []string{"document", "page", "content"}

	res, err := r.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	out := make([]Chunk, 0, len(res.Hits))
	for _, hit := range res.Hits {
		c := Chunk{ID: hit.ID}
		c.Document, _ = hit.Fields["document"].(string)
		c.Content, _ = hit.Fields["content"].(string)
		if p, ok := hit.Fields["page"].(float64); ok {
			c.Page = int(p)
		}
		out = append(out, c)
	}
	return out, nil
}

// Count returns the number of indexed chunks.
func (r *BleveRetriever) Count() (uint64, error) {
	return r.index.DocCount()
}

// Close releases the index.
func (r *BleveRetriever) Close() error {
	return r.index.Close()
}
