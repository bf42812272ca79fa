// Package logic defines the statement trees that facts, goals, and rules
// are made of. The node shapes form a closed sum: terms are literals or
// holes (quantified variables), nodes are statements, And/Or/Not
// compounds, or by-name references resolved in a second pass. Every
// traversal is an exhaustive type switch; there is no structural probing.
package logic

import "strings"

// Term is an argument position inside a statement: a ground literal or a
// variable hole.
type Term interface{ isTerm() }

// Literal is a ground constant argument. Comparison is exact and
// case-sensitive.
type Literal struct {
	Value string
}

func (Literal) isTerm() {}

// Hole is a quantified variable argument.
type Hole struct {
	Name string
}

func (Hole) isTerm() {}

// Lit returns a literal term.
func Lit(value string) Literal { return Literal{Value: value} }

// Var returns a hole term.
func Var(name string) Hole { return Hole{Name: name} }

// Node is a statement tree: a leaf statement, a compound, or a by-name
// reference.
type Node interface{ isNode() }

// Statement is a leaf: an operator applied to argument terms.
type Statement struct {
	Operator string
	Args     []Term
}

func (*Statement) isNode() {}

// NewStatement builds a leaf statement.
func NewStatement(operator string, args ...Term) *Statement {
	return &Statement{Operator: operator, Args: args}
}

// CompoundKind distinguishes the three compound node forms.
type CompoundKind int

const (
	// And requires every part.
	And CompoundKind = iota
	// Or requires at least one part.
	Or
	// Not negates its single part.
	Not
)

// String returns the canonical compound token.
func (k CompoundKind) String() string {
	switch k {
	case And:
		return "AND"
	case Or:
		return "OR"
	case Not:
		return "NOT"
	default:
		return "UNKNOWN"
	}
}

// Compound combines parts under And, Or, or Not.
type Compound struct {
	Kind  CompoundKind
	Parts []Node
}

func (*Compound) isNode() {}

// NewCompound builds a compound node.
func NewCompound(kind CompoundKind, parts ...Node) *Compound {
	return &Compound{Kind: kind, Parts: parts}
}

// Ref names another registered statement. Refs only survive until
// ResolveRefs replaces them; an unresolved Ref reaching evaluation is an
// error.
type Ref struct {
	Name string
}

func (*Ref) isNode() {}

// NewRef builds a by-name reference.
func NewRef(name string) *Ref { return &Ref{Name: name} }

// Flatten returns the leaf statements of n, descending through And and Or
// but never into Not: a negated literal is not a positive candidate.
func Flatten(n Node) []*Statement {
	var out []*Statement
	flattenInto(n, false, &out)
	return out
}

// FlattenAll returns every leaf statement of n including those under Not.
// Premise-level walks use this form.
func FlattenAll(n Node) []*Statement {
	var out []*Statement
	flattenInto(n, true, &out)
	return out
}

func flattenInto(n Node, descendNot bool, out *[]*Statement) {
	switch n := n.(type) {
	case *Statement:
		*out = append(*out, n)
	case *Compound:
		if n.Kind == Not && !descendNot {
			return
		}
		for _, p := range n.Parts {
			flattenInto(p, descendNot, out)
		}
	case *Ref:
		// Unresolved references contribute no leaves.
	}
}

// Vars returns the hole names of n in first-appearance order, deduped.
func Vars(n Node) []string {
	var out []string
	seen := make(map[string]struct{})

	for _, st := range FlattenAll(n) {
		for _, a := range st.Args {
			h, ok := a.(Hole)
			if !ok {
				continue
			}
			if _, dup := seen[h.Name]; dup {
				continue
			}
			seen[h.Name] = struct{}{}
			out = append(out, h.Name)
		}
	}
	return out
}

// Format renders the statement as a fact string `OP(a, b)`. Holes are
// resolved through the callback; unresolved holes render as `?name` so
// partial instantiations stay inspectable.
func (s *Statement) Format(resolve func(name string) (string, bool)) string {
	var b strings.Builder
	b.WriteString(s.Operator)
	b.WriteByte('(')
	for i, a := range s.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		switch t := a.(type) {
		case Literal:
			b.WriteString(t.Value)
		case Hole:
			if resolve != nil {
				if v, ok := resolve(t.Name); ok {
					b.WriteString(v)
					continue
				}
			}
			b.WriteByte('?')
			b.WriteString(t.Name)
		}
	}
	b.WriteByte(')')
	return b.String()
}

// String renders the statement with all holes unresolved.
func (s *Statement) String() string { return s.Format(nil) }
