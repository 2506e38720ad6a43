package engine

// Context threads document-level values (a statement's year, its base
// currency) into every block rule evaluated for the same document. One
// Context is allocated per parse and discarded afterwards; values never
// leak across documents. Values are raw strings; coercion happens at the
// point of use.
type Context struct {
	values map[string]string
}

// NewContext returns an empty per-document context.
func NewContext() *Context {
	return &Context{values: make(map[string]string)}
}

// Put stores a value, overwriting any prior value for the key.
func (c *Context) Put(key, value string) {
	c.values[key] = value
}

// Get returns the value for key or a MissingContextError. A missing key
// indicates a mismatch between the document-type definition and the
// document and is fatal for the whole parse.
func (c *Context) Get(key string) (string, error) {
	v, ok := c.values[key]
	if !ok {
		return "", &MissingContextError{Key: key}
	}
	return v, nil
}

// Has reports whether key is populated.
func (c *Context) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}
