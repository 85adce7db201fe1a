// Package rag answers open questions from a corpus of bank documents.
//
// Documents arrive as pre-extracted pages. They are split into chunks, stored
// in a bleve index and retrieved lexically; the oracle writes an answer that
// is grounded in the retrieved chunks only.
package rag

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"gopkg.in/yaml.v3"
)

// Corpus is a set of pre-extracted documents.
type Corpus struct {
	Documents []Document `json:"documents" yaml:"documents"`
}

// Document is one source file, usually a PDF.
type Document struct {
	Name  string `json:"name" yaml:"name"`
	Pages []Page `json:"pages" yaml:"pages"`
}

// Page holds the text and the rendered tables of one page.
type Page struct {
	Num    int      `json:"num" yaml:"num"`
	Text   string   `json:"text" yaml:"text"`
	Tables []string `json:"tables,omitempty" yaml:"tables,omitempty"`
}

// LoadCorpus reads a corpus file. The format follows the extension:
// .json is JSON, anything else is YAML.
func LoadCorpus(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus: %w", err)
	}

	var c Corpus
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = sonic.Unmarshal(data, &c)
	default:
		err = yaml.Unmarshal(data, &c)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode corpus %s: %w", path, err)
	}

	for i, d := range c.Documents {
		if strings.TrimSpace(d.Name) == "" {
			return nil, fmt.Errorf("document %d has no name", i)
		}
	}
	return &c, nil
}
