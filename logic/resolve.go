package logic

import "fmt"

// ErrUnresolvedRef occurs when a by-name reference does not match any
// registered statement during the resolution pass.
type ErrUnresolvedRef struct {
	// Name is the reference that could not be resolved.
	Name string
}

// Error implements the error interface.
func (e *ErrUnresolvedRef) Error() string {
	return fmt.Sprintf("unresolved reference %q", e.Name)
}

// ResolveRefs returns a copy of n with every Ref replaced by its entry in
// table. Resolution runs to fixpoint through compounds, so references can
// be registered before or after their users. A Ref missing from the table
// fails with ErrUnresolvedRef; a Ref cycle fails the same way once the
// depth guard trips.
func ResolveRefs(n Node, table map[string]Node) (Node, error) {
	return resolve(n, table, 0)
}

// refDepthLimit bounds Ref-through-Ref chains. Legitimate graphs are
// shallow; anything deeper is a cycle.
const refDepthLimit = 64

func resolve(n Node, table map[string]Node, depth int) (Node, error) {
	switch n := n.(type) {
	case *Statement:
		return n, nil
	case *Compound:
		parts := make([]Node, len(n.Parts))
		for i, p := range n.Parts {
			r, err := resolve(p, table, depth)
			if err != nil {
				return nil, err
			}
			parts[i] = r
		}
		return &Compound{Kind: n.Kind, Parts: parts}, nil
	case *Ref:
		if depth >= refDepthLimit {
			return nil, &ErrUnresolvedRef{Name: n.Name}
		}
		target, ok := table[n.Name]
		if !ok {
			return nil, &ErrUnresolvedRef{Name: n.Name}
		}
		return resolve(target, table, depth+1)
	default:
		return n, nil
	}
}
