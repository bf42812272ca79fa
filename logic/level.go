package logic

// Level computes the constructivist level of a statement tree: every node
// counts one, ground arguments count one, and holes count one only when
// the bound callback reports them as substituted. Higher levels mean more
// concrete trees; a fully ground statement with two arguments levels at 3.
func Level(n Node, bound func(name string) bool) int {
	switch n := n.(type) {
	case *Statement:
		lvl := 1
		for _, a := range n.Args {
			switch t := a.(type) {
			case Literal:
				lvl++
			case Hole:
				if bound != nil && bound(t.Name) {
					lvl++
				}
			}
		}
		return lvl
	case *Compound:
		lvl := 1
		for _, p := range n.Parts {
			lvl += Level(p, bound)
		}
		return lvl
	case *Ref:
		return 1
	default:
		return 0
	}
}
