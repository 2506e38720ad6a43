package engine

import (
	"regexp"
	"strings"
)

// ContextRule extracts document-level values once per parse. Every line of
// the document is tested against the pattern; named capture groups of each
// matching line are stored in the context, later matches overwriting
// earlier ones.
type ContextRule struct {
	pattern *regexp.Regexp
}

// DocumentType identifies one institution's statement family: marker
// predicates used for classification, document-context rules run once per
// document, and the ordered blocks producing transactions.
//
// A DocumentType is assembled once during extractor setup and must not be
// mutated once parsing starts; it is then safe to share across
// concurrently parsed documents, because each parse gets its own Context.
type DocumentType struct {
	label        string
	markers      []string
	requireAll   bool
	contextRules []ContextRule
	blocks       []*compiledBlock
}

// NewDocumentType creates a document type matched when ANY of the marker
// substrings occurs in the document text.
func NewDocumentType(label string, markers ...string) *DocumentType {
	if len(markers) == 0 {
		panic("engine: document type needs at least one marker")
	}
	return &DocumentType{label: label, markers: markers}
}

// MatchAllMarkers switches classification to require every marker, for
// institutions whose individual fingerprints are too generic.
func (dt *DocumentType) MatchAllMarkers() *DocumentType {
	dt.requireAll = true
	return dt
}

// AddContextRule registers a document-level extraction pattern. Named
// capture groups become context keys.
func (dt *DocumentType) AddContextRule(pattern string) *DocumentType {
	dt.contextRules = append(dt.contextRules, ContextRule{pattern: regexp.MustCompile(pattern)})
	return dt
}

// AddBlock registers a block. Blocks run in registration order; pattern
// and rule definition errors panic here, at setup time.
func (dt *DocumentType) AddBlock(b Block) *DocumentType {
	dt.blocks = append(dt.blocks, b.compile())
	return dt
}

// Label names the institution's statement family.
func (dt *DocumentType) Label() string { return dt.label }

// Matches evaluates the marker predicate against the full document text.
func (dt *DocumentType) Matches(doc *Document) bool {
	text := doc.Text()
	for _, m := range dt.markers {
		found := containsMarker(text, m)
		if dt.requireAll && !found {
			return false
		}
		if !dt.requireAll && found {
			return true
		}
	}
	return dt.requireAll
}

// Parse runs the document-context rules once against the whole document,
// then every registered block in order. Items are returned in block
// registration order, match order within each block; the sequence is
// stable for a given input. Per-match failures are embedded in items; only
// a missing-context condition aborts with an error.
func (dt *DocumentType) Parse(doc *Document) ([]Item, error) {
	ctx := NewContext()

	for _, cr := range dt.contextRules {
		for i := 0; i < doc.Len(); i++ {
			m := cr.pattern.FindStringSubmatch(doc.Line(i))
			if m == nil {
				continue
			}
			for gi, name := range cr.pattern.SubexpNames() {
				if name != "" && gi < len(m) {
					ctx.Put(name, m[gi])
				}
			}
		}
	}

	items := []Item{}
	for _, b := range dt.blocks {
		blockItems, err := b.scan(doc, ctx)
		if err != nil {
			return nil, err
		}
		items = append(items, blockItems...)
	}
	return items, nil
}

func containsMarker(text, marker string) bool {
	return marker != "" && strings.Contains(text, marker)
}
