// Package engine is the generic statement-extraction core: document
// classification, block segmentation, multi-line section matching with
// alternation, cross-section document context and output item assembly.
// Institution-specific extractors are expressed on top of it as pattern
// data plus a builder function; see internal/extractors.
package engine

import "strings"

// Document is an immutable, line-addressed view over the decoded text of
// one statement. The engine only ever reads it.
type Document struct {
	lines []string
	text  string
}

// NewDocument splits decoded statement text into lines. Windows line
// endings are normalized so patterns never see a trailing \r.
func NewDocument(text string) *Document {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	return &Document{
		lines: strings.Split(normalized, "\n"),
		text:  normalized,
	}
}

// NewDocumentFromPages joins per-page text from the upstream PDF producer
// into one document.
func NewDocumentFromPages(pages []string) *Document {
	return NewDocument(strings.Join(pages, "\n"))
}

// Len returns the number of lines.
func (d *Document) Len() int { return len(d.lines) }

// Line returns the i-th line (zero-based).
func (d *Document) Line(i int) string { return d.lines[i] }

// Text returns the full normalized text, used for marker matching and
// document-level context rules.
func (d *Document) Text() string { return d.text }
