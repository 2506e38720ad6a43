package engine

import "fmt"

// UnrecognizedDocumentError means no registered document type's markers
// matched the input text. Fatal: no items are produced for the document.
type UnrecognizedDocumentError struct{}

func (e *UnrecognizedDocumentError) Error() string {
	return "unrecognized document: no registered document type matched"
}

// MissingContextError means a rule requested a document-context key that
// was never populated. Fatal for the document, since it indicates the
// document-type definition and the document do not fit each other.
type MissingContextError struct {
	Key string
}

func (e *MissingContextError) Error() string {
	return fmt.Sprintf("missing document context %q", e.Key)
}

// SectionNotMatchedError means one block match failed to satisfy a
// mandatory section (or every alternative of a oneOf section). Local to
// that match: it is reported on the output item and scanning continues.
type SectionNotMatchedError struct {
	Section string
	Line    int // 1-based line number where matching stopped
	Text    string
}

func (e *SectionNotMatchedError) Error() string {
	return fmt.Sprintf("section %q not matched at line %d: %q", e.Section, e.Line, e.Text)
}
