package domain

import "fmt"

// Answer is the reply produced by the retrieval fallback.
type Answer struct {
	Text    string   `json:"text"`
	Sources []Source `json:"sources,omitempty"`
}

// Source is the provenance of a retrieved passage.
type Source struct {
	PDFName string `json:"pdf_name"`
	PageNum int    `json:"page_num"`
}

// String renders the source as "home-loans.pdf p.4".
func (s Source) String() string {
	return fmt.Sprintf("%s p.%d", s.PDFName, s.PageNum)
}
