// Package securities defines the instrument lookup-or-create collaborator.
// The extraction engine only supplies well-formed identity fields; what
// backs the resolver (an application model, a database, a remote master
// data service) is up to the embedding application.
package securities

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Identity carries the fields an extractor captures about an instrument.
// At least one of ISIN, WKN (CUSIP on US statements) or Ticker should be
// set alongside the name.
type Identity struct {
	Name     string `json:"name"`
	ISIN     string `json:"isin,omitempty"`
	WKN      string `json:"wkn,omitempty"`
	Ticker   string `json:"ticker,omitempty"`
	Currency string `json:"currency,omitempty"`
}

// Security is a handle to a resolved instrument record.
type Security struct {
	ID uuid.UUID `json:"id"`
	Identity
}

// Resolver looks up or creates the instrument for an identity. Resolve
// must be idempotent for identical identity tuples within one run and
// safe for concurrent use, since documents are parsed in parallel.
type Resolver interface {
	Resolve(identity Identity) (*Security, error)
}

// MemoryResolver is an in-process Resolver used by the CLI and tests.
type MemoryResolver struct {
	mu   sync.Mutex
	byID map[string]*Security
}

func NewMemoryResolver() *MemoryResolver {
	return &MemoryResolver{byID: make(map[string]*Security)}
}

// Resolve returns the previously created security for an identical
// identity tuple, or creates a new one.
func (r *MemoryResolver) Resolve(identity Identity) (*Security, error) {
	key := strings.Join([]string{identity.Name, identity.ISIN, identity.WKN, identity.Ticker, identity.Currency}, "\x1f")

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.byID[key]; ok {
		return s, nil
	}
	s := &Security{ID: uuid.New(), Identity: identity}
	r.byID[key] = s
	return s, nil
}

// Len reports how many distinct securities have been created.
func (r *MemoryResolver) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}
