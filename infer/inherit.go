package infer

import "github.com/hupe1980/symgo/kb"

// ancestors walks the hierarchy relation upward from subject, breadth
// first, bounded by the depth option. The returned slice is in
// discovery order and excludes the subject itself; the accompanying
// chains map holds the witnessing fact chain for each ancestor.
func (e *Engine) ancestors(src kb.Source, subject string) ([]string, map[string][]string) {
	var order []string
	chains := make(map[string][]string)

	visited := map[string]struct{}{subject: {}}
	frontier := []*hop{{node: subject}}

	for depth := 0; depth < e.opts.MaxDepth && len(frontier) > 0; depth++ {
		var next []*hop
		for _, h := range frontier {
			for _, f := range src.FactsBySubject(h.node) {
				if !usable(f) || f.Relation != e.rel.Hierarchy() {
					continue
				}
				if _, seen := visited[f.Object]; seen {
					continue
				}
				visited[f.Object] = struct{}{}

				reached := &hop{node: f.Object, via: f, prev: h}
				order = append(order, f.Object)
				chains[f.Object] = chainSteps(reached)
				next = append(next, reached)
			}
		}
		frontier = next
	}
	return order, chains
}

// Inheritance propagates a property fact attached to a superclass down
// the hierarchy chain. The nearest ancestor holding the property wins
// and is reported as InheritedFrom.
func (e *Engine) Inheritance(src kb.Source, subject, relation, object string) Result {
	order, chains := e.ancestors(src, subject)

	for _, ancestor := range order {
		for _, f := range src.FactsBySubject(ancestor) {
			if usable(f) && f.Relation == relation && f.Object == object {
				return Result{
					Truth:         TrueCertain,
					Method:        "inheritance",
					Steps:         append(chains[ancestor], f.Triple()),
					InheritedFrom: ancestor,
				}
			}
		}
	}
	return Result{}
}

// Default applies the registered typical-case rules. A rule fires when
// the subject belongs to the rule's class via the hierarchy chain; an
// exception naming the subject or any class on its chain refutes the
// triple instead.
func (e *Engine) Default(src kb.Source, subject, relation, object string) Result {
	var chain []string
	chainKnown := false

	for _, d := range e.rel.Defaults() {
		if d.Relation != relation || d.Object != object {
			continue
		}

		if !chainKnown {
			order, _ := e.ancestors(src, subject)
			chain = append([]string{subject}, order...)
			chainKnown = true
		}

		if !contains(chain, d.Class) {
			continue
		}

		for _, name := range chain {
			if contains(d.Exceptions, name) {
				return Result{
					Truth:  False,
					Method: "default",
					Reason: "exception_applies",
					Steps:  []string{name + " is an exception"},
				}
			}
		}

		return Result{
			Truth:  TrueDefault,
			Method: "default",
			Steps:  []string{subject + " falls under " + d.Class + " by default"},
		}
	}
	return Result{}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
