package rag

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunker_ShortTextIsOneChunk(t *testing.T) {
	c := NewChunker()
	got := c.Split("Para one.\n\nPara two.")
	assert.Equal(t, []string{"Para one.\n\nPara two."}, got)
}

func TestChunker_WindowsOverlap(t *testing.T) {
	words := make([]string, 300)
	for i := range words {
		words[i] = fmt.Sprintf("w%04d", i)
	}
	text := strings.Join(words, " ")

	got := NewChunker().Split(text)
	require.Greater(t, len(got), 2)

	for i, chunk := range got {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), DefaultChunkSize, "chunk %d", i)
	}
	for i := 1; i < len(got); i++ {
		first := strings.Fields(got[i])[0]
		assert.Contains(t, got[i-1], first, "chunk %d should start inside the previous window", i)
	}
	assert.True(t, strings.HasPrefix(got[0], "w0000"))
	assert.True(t, strings.HasSuffix(got[len(got)-1], "w0299"))
}

func TestChunker_LongWordIsCut(t *testing.T) {
	c := &Chunker{Size: 10, Overlap: 0}
	got := c.Split(strings.Repeat("x", 25))
	assert.Equal(t, []string{"xxxxxxxxxx", "xxxxxxxxxx", "xxxxx"}, got)
}

func TestChunker_Corpus(t *testing.T) {
	corpus := &Corpus{Documents: []Document{{
		Name: "fees.pdf",
		Pages: []Page{
			{Num: 2, Text: "Processing fee is 0.5%.", Tables: []string{"| a | b |", "  "}},
			{Num: 3, Text: "   "},
		},
	}}}

	got := NewChunker().Chunks(corpus)
	require.Len(t, got, 2)
	assert.Equal(t, "fees.pdf_page2_chunk0", got[0].ID)
	assert.Equal(t, "fees.pdf_page2_table0", got[1].ID)
	assert.Equal(t, "| a | b |", got[1].Content)
	assert.Equal(t, "fees.pdf p.2", got[1].Source().String())
}
