package engine

import "regexp"

// Block binds a start-line pattern (and optional end-line pattern) to one
// transaction rule. Every non-overlapping match of the start pattern
// within a document yields one output item, success or failure. Blocks
// hold no per-match state; anything shared between matches travels through
// the document Context.
type Block struct {
	// Start matches the first line of a span.
	Start string
	// End, when set, delimits the span: it extends to the first line
	// matching End (exclusive) or the document end. When empty the span
	// covers as many lines as the rule's sections can consume.
	End  string
	Rule Rule
}

type compiledBlock struct {
	start *regexp.Regexp
	end   *regexp.Regexp
	rule  *compiledRule
}

func (b Block) compile() *compiledBlock {
	cb := &compiledBlock{
		start: regexp.MustCompile(b.Start),
		rule:  b.Rule.compile(),
	}
	if b.End != "" {
		cb.end = regexp.MustCompile(b.End)
	}
	return cb
}

// scan walks the document discovering spans in order and evaluating the
// bound rule on each. Zero matches is not an error: absence of one
// transaction type is normal for a statement. Scanning resumes after the
// last line the rule actually consumed, so consumed spans never overlap
// while an adjacent candidate start is never skipped.
func (cb *compiledBlock) scan(doc *Document, ctx *Context) ([]Item, error) {
	var items []Item

	for i := 0; i < doc.Len(); i++ {
		if !cb.start.MatchString(doc.Line(i)) {
			continue
		}

		end := cb.spanEnd(doc, i)
		item, last, err := cb.rule.evaluate(doc, i, end, ctx)
		if err != nil {
			return nil, err
		}
		items = append(items, item)

		if last > i {
			i = last
		}
	}

	return items, nil
}

// spanEnd returns the exclusive end index of the span starting at line i.
func (cb *compiledBlock) spanEnd(doc *Document, i int) int {
	if cb.end != nil {
		for j := i + 1; j < doc.Len(); j++ {
			if cb.end.MatchString(doc.Line(j)) {
				return j
			}
		}
		return doc.Len()
	}

	end := i + cb.rule.window
	if end > doc.Len() {
		end = doc.Len()
	}
	return end
}
