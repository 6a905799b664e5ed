package gateway

import (
	"encoding/json"
	"fmt"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"
)

// Envelope extracts the logical payload from the backend's duck-typed
// response shapes. The same resource may arrive as a bare array, `{data:
// [...]}`, or `{products: [...]}` depending on which backend module served
// it; an Envelope tries its JMESPath expressions in order and returns the
// first non-null match, normalizing that inconsistency at one boundary.
type Envelope struct {
	exprs []string
}

// NewEnvelope compiles the candidate extraction expressions. Expressions are
// validated eagerly so a bad expression fails at construction, not at
// request time.
func NewEnvelope(exprs ...string) (*Envelope, error) {
	if len(exprs) == 0 {
		return nil, fmt.Errorf("envelope requires at least one expression")
	}
	for _, expr := range exprs {
		if strings.TrimSpace(expr) == "" {
			return nil, fmt.Errorf("envelope expression cannot be blank")
		}
		if _, err := jmespath.Compile(expr); err != nil {
			return nil, fmt.Errorf("compile envelope expression %q: %w", expr, err)
		}
	}
	return &Envelope{exprs: exprs}, nil
}

// MustEnvelope is NewEnvelope for package-level defaults with known-good
// expressions.
func MustEnvelope(exprs ...string) *Envelope {
	e, err := NewEnvelope(exprs...)
	if err != nil {
		panic(err)
	}
	return e
}

// Unwrap extracts the payload from a raw response document. When no
// expression matches, the document itself is returned so plain (already
// unwrapped) responses pass through.
func (e *Envelope) Unwrap(raw []byte) (json.RawMessage, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	for _, expr := range e.exprs {
		v, err := jmespath.Search(expr, doc)
		if err != nil || v == nil {
			continue
		}
		out, marshalErr := json.Marshal(v)
		if marshalErr != nil {
			return nil, fmt.Errorf("re-encode unwrapped response: %w", marshalErr)
		}
		return out, nil
	}
	return raw, nil
}

// Decode unwraps the document and unmarshals the payload into out.
func (e *Envelope) Decode(raw []byte, out any) error {
	payload, err := e.Unwrap(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode unwrapped response: %w", err)
	}
	return nil
}

// Default envelopes for the storefront API's known resource shapes.
var (
	// ProductsEnvelope handles list endpoints that wrap as data, products,
	// or return the array bare.
	ProductsEnvelope = MustEnvelope("data", "products")

	// DataEnvelope handles single-object endpoints wrapped as {data: {...}}.
	DataEnvelope = MustEnvelope("data")

	// UserEnvelope handles auth/profile endpoints that wrap the profile as
	// user or data.
	UserEnvelope = MustEnvelope("user", "data")
)
