// Package extractors is the institution catalogue. Each extractor is a
// data-driven engine.DocumentType: identifying markers, document-context
// patterns and the ordered block/rule definitions for one institution's
// statement family.
package extractors

import (
	"github.com/insightdelivered/statement-extractor/internal/engine"
	"github.com/insightdelivered/statement-extractor/internal/securities"
)

// New assembles the registry of all supported institutions. Registration
// order matters: when markers are ambiguous the first registered type
// wins. Call this once at startup, before any parsing.
func New(resolver securities.Resolver) *engine.Registry {
	r := engine.NewRegistry()
	r.Add(ScorePriority(resolver))
	return r
}
