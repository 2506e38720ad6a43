package engine

// Registry holds every registered document type in registration order.
// Registration must complete before concurrent parsing begins; afterwards
// the registry is read-only and lock-free on the hot path.
type Registry struct {
	types []*DocumentType
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers a document type. When several types' markers could match
// the same text, the first registered one wins. Ambiguity is a
// configuration defect, resolved deterministically rather than silently.
func (r *Registry) Add(dt *DocumentType) {
	r.types = append(r.types, dt)
}

// Types returns the registered document types in registration order.
func (r *Registry) Types() []*DocumentType {
	return r.types
}

// Classify selects the first registered document type whose markers match
// the document text.
func (r *Registry) Classify(doc *Document) (*DocumentType, error) {
	for _, dt := range r.types {
		if dt.Matches(doc) {
			return dt, nil
		}
	}
	return nil, &UnrecognizedDocumentError{}
}

// Extract classifies the document and parses it with the selected type.
// Parsing the same input twice yields identical item sequences.
func (r *Registry) Extract(doc *Document) ([]Item, error) {
	dt, err := r.Classify(doc)
	if err != nil {
		return nil, err
	}
	return dt.Parse(doc)
}
