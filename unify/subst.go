package unify

import (
	"strings"

	"github.com/hupe1980/symgo/logic"
)

// Substitute returns a copy of n with every bound hole replaced by its
// ground literal. Unbound holes survive, so the result can be partially
// instantiated.
func Substitute(n logic.Node, b *Bindings) logic.Node {
	switch n := n.(type) {
	case *logic.Statement:
		args := make([]logic.Term, len(n.Args))
		for i, a := range n.Args {
			if h, ok := a.(logic.Hole); ok {
				if v, bound := b.Lookup(h.Name); bound {
					args[i] = logic.Lit(v)
					continue
				}
			}
			args[i] = a
		}
		return &logic.Statement{Operator: n.Operator, Args: args}
	case *logic.Compound:
		parts := make([]logic.Node, len(n.Parts))
		for i, p := range n.Parts {
			parts[i] = Substitute(p, b)
		}
		return &logic.Compound{Kind: n.Kind, Parts: parts}
	default:
		return n
	}
}

// Instantiate renders n as a fact string with bound variables
// substituted and still-unbound ones prefixed `?name`. Compounds render
// as `AND(part, part)` and so on.
func Instantiate(n logic.Node, b *Bindings) string {
	switch n := n.(type) {
	case *logic.Statement:
		return n.Format(b.Lookup)
	case *logic.Compound:
		var sb strings.Builder
		sb.WriteString(n.Kind.String())
		sb.WriteByte('(')
		for i, p := range n.Parts {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(Instantiate(p, b))
		}
		sb.WriteByte(')')
		return sb.String()
	case *logic.Ref:
		return "@" + n.Name
	default:
		return ""
	}
}

// Level computes the constructivist level of n with the bindings deciding
// which holes count as substituted.
func Level(n logic.Node, b *Bindings) int {
	return logic.Level(n, b.Has)
}
