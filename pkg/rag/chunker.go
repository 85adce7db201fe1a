package rag

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/banktalk/banktalk/pkg/domain"
)

const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 200
)

// Chunk is the unit of retrieval.
type Chunk struct {
	ID       string `json:"id"`
	Document string `json:"document"`
	Page     int    `json:"page"`
	Content  string `json:"content"`
}

// Source is the chunk's provenance.
func (c Chunk) Source() domain.Source {
	return domain.Source{PDFName: c.Document, PageNum: c.Page}
}

// Chunker splits page text into overlapping windows measured in characters.
// Splits prefer paragraph breaks, then line breaks, then spaces.
type Chunker struct {
	Size    int
	Overlap int
}

var separators = []string{"\n\n", "\n", " ", ""}

// NewChunker returns a Chunker with the default window.
func NewChunker() *Chunker {
	return &Chunker{Size: DefaultChunkSize, Overlap: DefaultChunkOverlap}
}

// Chunks splits every page of the corpus. Each table becomes a single chunk
// regardless of its length.
func (c *Chunker) Chunks(corpus *Corpus) []Chunk {
	var out []Chunk
	for _, doc := range corpus.Documents {
		for _, page := range doc.Pages {
			if strings.TrimSpace(page.Text) != "" {
				for i, text := range c.Split(page.Text) {
					out = append(out, Chunk{
						ID:       fmt.Sprintf("%s_page%d_chunk%d", doc.Name, page.Num, i),
						Document: doc.Name,
						Page:     page.Num,
						Content:  text,
					})
				}
			}
			for i, table := range page.Tables {
				if strings.TrimSpace(table) == "" {
					continue
				}
				out = append(out, Chunk{
					ID:       fmt.Sprintf("%s_page%d_table%d", doc.Name, page.Num, i),
					Document: doc.Name,
					Page:     page.Num,
					Content:  table,
				})
			}
		}
	}
	return out
}

// Split breaks text into pieces of at most Size characters where possible.
func (c *Chunker) Split(text string) []string {
	return c.split(text, separators)
}

func (c *Chunker) split(text string, seps []string) []string {
	sep, rest := seps[len(seps)-1], []string(nil)
	for i, s := range seps {
		if s == "" || strings.Contains(text, s) {
			sep, rest = s, seps[i+1:]
			break
		}
	}

	var parts []string
	if sep == "" {
		for _, r := range text {
			parts = append(parts, string(r))
		}
	} else {
		parts = strings.Split(text, sep)
	}

	var out, small []string
	for _, p := range parts {
		if runeLen(p) < c.Size {
			small = append(small, p)
			continue
		}
		if len(small) > 0 {
			out = append(out, c.merge(small, sep)...)
			small = nil
		}
		if len(rest) == 0 {
			out = append(out, p)
		} else {
			out = append(out, c.split(p, rest)...)
		}
	}
	if len(small) > 0 {
		out = append(out, c.merge(small, sep)...)
	}
	return out
}

// merge packs parts into windows, carrying up to Overlap characters of the
// previous window into the next one.
func (c *Chunker) merge(parts []string, sep string) []string {
	sepLen := runeLen(sep)
	var (
		out     []string
		current []string
		total   int
	)
	joinCost := func() int {
		if len(current) > 0 {
			return sepLen
		}
		return 0
	}

	for _, p := range parts {
		n := runeLen(p)
		if total+n+joinCost() > c.Size && len(current) > 0 {
			if doc := strings.TrimSpace(strings.Join(current, sep)); doc != "" {
				out = append(out, doc)
			}
			for total > c.Overlap || (total+n+joinCost() > c.Size && total > 0) {
				drop := runeLen(current[0])
				if len(current) > 1 {
					drop += sepLen
				}
				total -= drop
				current = current[1:]
			}
		}
		total += n + joinCost()
		current = append(current, p)
	}
	if doc := strings.TrimSpace(strings.Join(current, sep)); doc != "" {
		out = append(out, doc)
	}
	return out
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }
