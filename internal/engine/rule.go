package engine

import (
	"fmt"
	"regexp"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// Fields is the merged map of named captures (plus synthesized values such
// as a composed date) handed to a rule's builder. It lives only for the
// duration of building one transaction.
type Fields map[string]string

// Get returns the captured value for name, "" when absent.
func (f Fields) Get(name string) string { return f[name] }

// Has reports whether name was captured by any matched pattern.
func (f Fields) Has(name string) bool {
	_, ok := f[name]
	return ok
}

// Builder materializes a domain transaction from the merged field map and
// the live document context. Builders are pure: branching (e.g. BUY vs
// SELL) happens on captured field values, never on captured mutable state.
// A builder may return both a transaction and an error; the transaction is
// then surfaced on a failed item instead of being dropped.
type Builder func(v Fields, ctx *Context) (*models.Transaction, error)

// Sequence is one candidate shape for a section: an ordered list of line
// patterns, each matched on a later line than the previous one.
type Sequence []string

// Section matches one or more consecutive-ish lines of a block span.
// A single candidate makes a plain mandatory section; several candidates
// form an ordered-choice group where the first fully matching candidate
// wins and later ones are never attempted.
type Section struct {
	Name       string
	Candidates []Sequence
}

// Sect declares a plain section from a pattern sequence.
func Sect(name string, patterns ...string) Section {
	return Section{Name: name, Candidates: []Sequence{patterns}}
}

// OneOf declares an alternative-group section tried in declaration order.
func OneOf(name string, candidates ...Sequence) Section {
	return Section{Name: name, Candidates: candidates}
}

// Rule parses the lines of one block match into a transaction. Sections
// are evaluated in order, each starting at the line after the previous
// section's last consumed line. Context lists document-context keys merged
// into the field map before the builder runs.
type Rule struct {
	Sections []Section
	// Require lists field names that must be present in the merged map
	// after all sections matched; a candidate path that captures none of
	// them fails the match instead of reaching the builder.
	Require []string
	Context []string
	Build   Builder
}

type compiledSequence []*regexp.Regexp

type compiledSection struct {
	name       string
	candidates []compiledSequence
}

type compiledRule struct {
	sections []compiledSection
	require  []string
	ctxKeys  []string
	build    Builder
	// window is how many lines a span may need: the sum over sections of
	// their longest candidate.
	window int
}

// compile validates a rule definition and pre-compiles its patterns.
// Definition errors (bad regexp, duplicate capture names across sections,
// a context key shadowing a capture) panic: they are programmer mistakes
// in an extractor, not runtime conditions.
func (r Rule) compile() *compiledRule {
	if len(r.Sections) == 0 {
		panic("engine: rule declares no sections")
	}
	if r.Build == nil {
		panic("engine: rule declares no builder")
	}

	cr := &compiledRule{require: r.Require, ctxKeys: r.Context, build: r.Build}
	seen := make(map[string]string) // capture name -> section that declared it

	for _, sec := range r.Sections {
		if len(sec.Candidates) == 0 {
			panic(fmt.Sprintf("engine: section %q has no candidates", sec.Name))
		}
		cs := compiledSection{name: sec.Name}
		longest := 0
		names := make(map[string]bool)
		for _, cand := range sec.Candidates {
			if len(cand) == 0 {
				panic(fmt.Sprintf("engine: section %q has an empty candidate", sec.Name))
			}
			var seq compiledSequence
			for _, pat := range cand {
				re := regexp.MustCompile(pat)
				for _, n := range re.SubexpNames() {
					if n != "" {
						names[n] = true
					}
				}
				seq = append(seq, re)
			}
			if len(cand) > longest {
				longest = len(cand)
			}
			cs.candidates = append(cs.candidates, seq)
		}
		for n := range names {
			if prev, dup := seen[n]; dup {
				panic(fmt.Sprintf("engine: field %q declared by sections %q and %q", n, prev, sec.Name))
			}
			seen[n] = sec.Name
		}
		cr.window += longest
		cr.sections = append(cr.sections, cs)
	}

	for _, n := range r.Require {
		if _, ok := seen[n]; !ok {
			panic(fmt.Sprintf("engine: required field %q is not captured by any section", n))
		}
	}

	for _, k := range r.Context {
		if prev, dup := seen[k]; dup {
			panic(fmt.Sprintf("engine: context key %q shadows a capture of section %q", k, prev))
		}
	}

	return cr
}

// evaluate runs the rule against the span [start, end) of doc. It returns
// the output item and the index of the last line consumed. A fatal error
// (missing document context) aborts the whole document parse.
func (cr *compiledRule) evaluate(doc *Document, start, end int, ctx *Context) (Item, int, error) {
	fields := make(Fields)
	pos := start
	last := start

	for _, sec := range cr.sections {
		matched, consumed := sec.match(doc, pos, end, fields)
		if !matched {
			text := ""
			if pos < doc.Len() {
				text = doc.Line(pos)
			}
			err := &SectionNotMatchedError{Section: sec.name, Line: pos + 1, Text: text}
			return Item{Failure: err.Error(), Line: start + 1}, start, nil
		}
		pos = consumed + 1
		last = consumed
	}

	for _, name := range cr.require {
		if !fields.Has(name) {
			return Item{
				Failure: fmt.Sprintf("required field %q not captured at line %d", name, start+1),
				Line:    start + 1,
			}, last, nil
		}
	}

	for _, key := range cr.ctxKeys {
		v, err := ctx.Get(key)
		if err != nil {
			return Item{}, last, err
		}
		fields[key] = v
	}

	txn, err := cr.build(fields, ctx)
	item := Item{Transaction: txn, Line: start + 1}
	if err != nil {
		item.Failure = err.Error()
	}
	return item, last, nil
}

// match tries each candidate in order and commits to the first whose
// patterns all match within [pos, end), each on a later line than the
// previous. On success the candidate's captures are merged into fields and
// the index of the last matched line is returned.
func (s *compiledSection) match(doc *Document, pos, end int, fields Fields) (bool, int) {
	for _, cand := range s.candidates {
		trial := make(Fields)
		cur := pos
		last := -1
		ok := true
		for _, re := range cand {
			line := -1
			for i := cur; i < end; i++ {
				if m := re.FindStringSubmatch(doc.Line(i)); m != nil {
					capture(re, m, trial)
					line = i
					break
				}
			}
			if line < 0 {
				ok = false
				break
			}
			last = line
			cur = line + 1
		}
		if ok {
			for k, v := range trial {
				fields[k] = v
			}
			return true, last
		}
	}
	return false, -1
}

func capture(re *regexp.Regexp, m []string, into Fields) {
	for i, name := range re.SubexpNames() {
		if name != "" && i < len(m) {
			into[name] = m[i]
		}
	}
}
