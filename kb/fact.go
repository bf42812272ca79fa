package kb

import "fmt"

// FactID identifies a stored fact. IDs are assigned from a per-store
// counter and never reused; the zero value is never issued.
type FactID uint32

// Fact is a (subject, relation, object) triple with an existence level
// and optional metadata. Facts are immutable except for the existence
// level, which only moves upward through Store.UpgradeExistence.
type Fact struct {
	ID        FactID
	Subject   string
	Relation  string
	Object    string
	Existence Existence
	Metadata  map[string]string
}

// Triple returns the canonical `subject relation object` rendering.
func (f *Fact) Triple() string {
	return fmt.Sprintf("%s %s %s", f.Subject, f.Relation, f.Object)
}

// FactOptions contains configuration for Store.AddFact.
type FactOptions struct {
	// Existence is the level of the new fact.
	Existence Existence

	// Metadata is attached verbatim, e.g. canonical-rewrite annotations.
	Metadata map[string]string
}

// WithExistence sets the existence level of the inserted fact.
func WithExistence(e Existence) func(o *FactOptions) {
	return func(o *FactOptions) {
		o.Existence = e
	}
}

// WithMetadata attaches metadata to the inserted fact.
func WithMetadata(md map[string]string) func(o *FactOptions) {
	return func(o *FactOptions) {
		o.Metadata = md
	}
}

type tripleKey struct {
	subject  string
	relation string
	object   string
}

func (f *Fact) key() tripleKey {
	return tripleKey{subject: f.Subject, relation: f.Relation, object: f.Object}
}
