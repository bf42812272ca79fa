package infer

import "sort"

// Relations holds the relation properties the strategies consult:
// symmetry, transitivity, registered inverses, default rules, and
// composition rules. It is plain configuration owned by whoever builds
// the engine; there is no process-wide registry. Mutation happens only
// through the registration methods, before inference begins.
type Relations struct {
	hierarchy    string
	symmetric    map[string]struct{}
	transitive   map[string]struct{}
	inverse      map[string]string
	defaults     []DefaultRule
	compositions []CompositionRule
}

// DefaultHierarchy is the relation the inheritance walk follows unless
// reconfigured.
const DefaultHierarchy = "IS_A"

// NewRelations returns an empty configuration with the IS_A hierarchy.
func NewRelations() *Relations {
	return &Relations{
		hierarchy:  DefaultHierarchy,
		symmetric:  make(map[string]struct{}),
		transitive: make(map[string]struct{}),
		inverse:    make(map[string]string),
	}
}

// SetHierarchy changes the relation inheritance and default-exception
// walks follow.
func (r *Relations) SetHierarchy(relation string) {
	r.hierarchy = relation
}

// Hierarchy returns the hierarchy relation.
func (r *Relations) Hierarchy() string { return r.hierarchy }

// SetSymmetric declares a relation symmetric.
func (r *Relations) SetSymmetric(relation string) {
	r.symmetric[relation] = struct{}{}
}

// IsSymmetric reports whether a relation is symmetric.
func (r *Relations) IsSymmetric(relation string) bool {
	_, ok := r.symmetric[relation]
	return ok
}

// Symmetric returns the symmetric relations in sorted order.
func (r *Relations) Symmetric() []string { return sortedKeys(r.symmetric) }

// SetTransitive declares a relation transitive.
func (r *Relations) SetTransitive(relation string) {
	r.transitive[relation] = struct{}{}
}

// IsTransitive reports whether a relation is transitive.
func (r *Relations) IsTransitive(relation string) bool {
	_, ok := r.transitive[relation]
	return ok
}

// SetInverse registers a and b as inverses of each other, in both
// directions.
func (r *Relations) SetInverse(a, b string) {
	r.inverse[a] = b
	r.inverse[b] = a
}

// Transitive returns the transitive relations in sorted order.
func (r *Relations) Transitive() []string { return sortedKeys(r.transitive) }

// InverseOf returns the registered inverse of a relation.
func (r *Relations) InverseOf(relation string) (string, bool) {
	inv, ok := r.inverse[relation]
	return inv, ok
}

// Inverses returns a copy of the inverse table. Both directions of each
// pair are present, so replaying the entries through SetInverse rebuilds
// the same table.
func (r *Relations) Inverses() map[string]string {
	out := make(map[string]string, len(r.inverse))
	for k, v := range r.inverse {
		out[k] = v
	}
	return out
}

// DefaultRule is a typical-case rule with named exceptions: members of
// Class get (Relation, Object) unless they, or a class on their
// hierarchy chain, appear in Exceptions.
type DefaultRule struct {
	Class      string   `json:"class"`
	Relation   string   `json:"relation"`
	Object     string   `json:"object"`
	Exceptions []string `json:"exceptions,omitempty"`
}

// AddDefault registers a default rule.
func (r *Relations) AddDefault(d DefaultRule) {
	r.defaults = append(r.defaults, d)
}

// Defaults returns the registered default rules in registration order.
func (r *Relations) Defaults() []DefaultRule { return r.defaults }

// Pattern is a triple template. Fields starting with `?` are variables;
// anything else matches exactly.
type Pattern struct {
	Subject  string `json:"subject"`
	Relation string `json:"relation"`
	Object   string `json:"object"`
}

// CompositionRule derives its Head triple whenever every Body pattern is
// satisfiable under one consistent variable assignment.
type CompositionRule struct {
	Name string    `json:"name"`
	Head Pattern   `json:"head"`
	Body []Pattern `json:"body"`
}

// AddComposition registers a composition rule.
func (r *Relations) AddComposition(c CompositionRule) {
	r.compositions = append(r.compositions, c)
}

// Compositions returns the registered composition rules in registration
// order.
func (r *Relations) Compositions() []CompositionRule { return r.compositions }

func isVar(s string) bool {
	return len(s) > 1 && s[0] == '?'
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
