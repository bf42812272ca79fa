package infer

import "github.com/hupe1980/symgo/kb"

// groundField resolves a pattern field against the binding. The second
// return is false for an unbound variable.
func groundField(field string, binding map[string]string) (string, bool) {
	if !isVar(field) {
		return field, true
	}
	v, ok := binding[field]
	return v, ok
}

// matchPattern checks one pattern against one fact, extending the
// binding. The input binding is never mutated; a consistent match
// returns the extended copy.
func matchPattern(p Pattern, f *kb.Fact, binding map[string]string) (map[string]string, bool) {
	next := binding
	copied := false

	bind := func(field, value string) bool {
		if !isVar(field) {
			return field == value
		}
		if v, ok := next[field]; ok {
			return v == value
		}
		if !copied {
			extended := make(map[string]string, len(next)+1)
			for k, v := range next {
				extended[k] = v
			}
			next = extended
			copied = true
		}
		next[field] = value
		return true
	}

	if !bind(p.Subject, f.Subject) || !bind(p.Relation, f.Relation) || !bind(p.Object, f.Object) {
		return nil, false
	}
	return next, true
}

// solve enumerates consistent assignments of the body goals over the
// source, depth-first, left to right. emit receives each complete
// assignment with its premise facts; returning true stops the search.
func solve(src kb.Source, goals []Pattern, binding map[string]string, premises []*kb.Fact, emit func(binding map[string]string, premises []*kb.Fact) bool) bool {
	if len(goals) == 0 {
		return emit(binding, premises)
	}

	goal := goals[0]

	var candidates []*kb.Fact
	if subject, ok := groundField(goal.Subject, binding); ok {
		candidates = src.FactsBySubject(subject)
	} else {
		candidates = src.All()
	}

	for _, f := range candidates {
		if !usable(f) {
			continue
		}
		next, ok := matchPattern(goal, f, binding)
		if !ok {
			continue
		}
		if solve(src, goals[1:], next, append(premises, f), emit) {
			return true
		}
	}
	return false
}

// Composition applies the registered composition rules: the head is
// matched against the queried triple, then every body goal must be
// satisfiable under one consistent variable assignment.
func (e *Engine) Composition(src kb.Source, subject, relation, object string) Result {
	for _, c := range e.rel.Compositions() {
		binding := make(map[string]string)

		bindHead := func(field, value string) bool {
			if !isVar(field) {
				return field == value
			}
			if v, ok := binding[field]; ok {
				return v == value
			}
			binding[field] = value
			return true
		}

		if !bindHead(c.Head.Subject, subject) ||
			!bindHead(c.Head.Relation, relation) ||
			!bindHead(c.Head.Object, object) {
			continue
		}

		var result Result
		found := solve(src, c.Body, binding, nil, func(_ map[string]string, premises []*kb.Fact) bool {
			steps := make([]string, 0, len(premises))
			for _, f := range premises {
				steps = append(steps, f.Triple())
			}
			result = Result{Truth: TrueCertain, Method: "composition", Steps: steps}
			return true
		})
		if found {
			return result
		}
	}
	return Result{}
}
