package unify

import (
	"strings"

	"github.com/goccy/go-json"
)

// Bindings maps variable names to ground argument names. Insertion order
// is preserved and observable: iteration and the JSON form both follow
// the order in which variables were first bound, so serialized proofs
// are reproducible.
type Bindings struct {
	names  []string
	values map[string]string
}

// NewBindings returns an empty binding set.
func NewBindings() *Bindings {
	return &Bindings{values: make(map[string]string)}
}

// Bind records a value for name. The first binding wins; rebinding an
// existing name is ignored (unification checks consistency before
// calling Bind).
func (b *Bindings) Bind(name, value string) {
	if _, ok := b.values[name]; ok {
		return
	}
	b.names = append(b.names, name)
	b.values[name] = value
}

// Lookup returns the value bound to name.
func (b *Bindings) Lookup(name string) (string, bool) {
	if b == nil {
		return "", false
	}
	v, ok := b.values[name]
	return v, ok
}

// Has reports whether name is bound.
func (b *Bindings) Has(name string) bool {
	_, ok := b.Lookup(name)
	return ok
}

// Len returns the number of bound variables.
func (b *Bindings) Len() int {
	if b == nil {
		return 0
	}
	return len(b.names)
}

// Names returns the bound variable names in binding order.
func (b *Bindings) Names() []string {
	if b == nil {
		return nil
	}
	out := make([]string, len(b.names))
	copy(out, b.names)
	return out
}

// String renders the bindings as `?x=Tom ?y=Ann` in binding order.
func (b *Bindings) String() string {
	if b.Len() == 0 {
		return ""
	}

	var sb strings.Builder
	for i, name := range b.names {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte('?')
		sb.WriteString(name)
		sb.WriteByte('=')
		sb.WriteString(b.values[name])
	}
	return sb.String()
}

// MarshalJSON emits an object whose keys appear in binding order.
func (b *Bindings) MarshalJSON() ([]byte, error) {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, name := range b.names {
		if i > 0 {
			sb.WriteByte(',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(b.values[name])
		if err != nil {
			return nil, err
		}
		sb.Write(k)
		sb.WriteByte(':')
		sb.Write(v)
	}
	sb.WriteByte('}')
	return []byte(sb.String()), nil
}
