package fhir

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// Bundle is a decoded FHIR Bundle. The engine reads and writes resources
// through Resource views that share the decoded maps, so marshaling the
// bundle returns every untouched element exactly as decoded.
type Bundle struct {
	raw map[string]interface{}
}

// NewBundle wraps an already decoded bundle.
func NewBundle(raw map[string]interface{}) *Bundle {
	if raw == nil {
		raw = map[string]interface{}{}
	}
	return &Bundle{raw: raw}
}

// ParseBundle decodes a bundle. Numbers are kept as json.Number.
func ParseBundle(data []byte) (*Bundle, error) {
	b := &Bundle{}
	if err := b.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return b, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *Bundle) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode bundle: %w", err)
	}
	if raw == nil {
		return errors.New("decode bundle: bundle is null")
	}
	b.raw = raw
	return nil
}

// MarshalJSON implements json.Marshaler.
func (b *Bundle) MarshalJSON() ([]byte, error) {
	if b == nil || b.raw == nil {
		return []byte("null"), nil
	}
	return json.Marshal(b.raw)
}

// Raw returns the decoded bundle.
func (b *Bundle) Raw() map[string]interface{} { return b.raw }

// ResourceType returns the bundle's resourceType element.
func (b *Bundle) ResourceType() string { return stringAt(b.raw, "resourceType") }

// Resources returns a view of every entry resource in entry order. Entries
// without a resource object are skipped.
func (b *Bundle) Resources() []Resource {
	entries := listAt(b.raw, "entry")
	out := make([]Resource, 0, len(entries))
	for _, e := range entries {
		em, ok := e.(map[string]interface{})
		if !ok {
			continue
		}
		rm, ok := em["resource"].(map[string]interface{})
		if !ok {
			continue
		}
		out = append(out, NewResource(rm))
	}
	return out
}

// Lookup finds the first entry resource with the given type and id.
func (b *Bundle) Lookup(resourceType, id string) (Resource, bool) {
	for _, r := range b.Resources() {
		if r.ResourceType() == resourceType && r.ID() == id {
			return r, true
		}
	}
	return nil, false
}

// Compositions returns the bundle's Composition resources.
func (b *Bundle) Compositions() []*Composition {
	var out []*Composition
	for _, r := range b.Resources() {
		if c, ok := r.(*Composition); ok {
			out = append(out, c)
		}
	}
	return out
}
