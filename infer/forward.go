package infer

import "github.com/hupe1980/symgo/kb"

// ChainResult reports one forward-chaining run.
type ChainResult struct {
	// Derived counts the facts added across all iterations.
	Derived int

	// Iterations is the number of expansion passes performed.
	Iterations int

	// Saturated is true when the last pass added nothing, i.e. the
	// store reached its fixed point before the iteration cap.
	Saturated bool
}

// ForwardChain expands the store to a saturating fixed point by
// repeatedly applying symmetric, transitive, inverse, and composition
// derivation. Version unification absorbs re-derivations, so running
// the chain again on its own output adds nothing. maxIterations <= 0
// uses the engine default.
func (e *Engine) ForwardChain(store *kb.Store, maxIterations int) (ChainResult, error) {
	limit := maxIterations
	if limit <= 0 {
		limit = e.opts.MaxIterations
	}

	var result ChainResult
	for result.Iterations < limit {
		result.Iterations++

		added, err := e.expand(store)
		if err != nil {
			return result, err
		}
		result.Derived += added

		if added == 0 {
			result.Saturated = true
			break
		}
	}
	return result, nil
}

// expand runs one derivation pass. Premises come from a snapshot of the
// store taken at the start of the pass; facts derived mid-pass become
// premises in the next iteration. Derived facts carry the minimum
// existence of their premises.
func (e *Engine) expand(store *kb.Store) (int, error) {
	before := store.NumFacts()
	snapshot := store.All()

	for _, f := range snapshot {
		if !usable(f) {
			continue
		}

		if e.rel.IsSymmetric(f.Relation) {
			if _, err := store.AddFact(f.Object, f.Relation, f.Subject, kb.WithExistence(f.Existence)); err != nil {
				return 0, err
			}
		}

		if inv, ok := e.rel.InverseOf(f.Relation); ok {
			if _, err := store.AddFact(f.Object, inv, f.Subject, kb.WithExistence(f.Existence)); err != nil {
				return 0, err
			}
		}

		if e.rel.IsTransitive(f.Relation) {
			for _, g := range snapshot {
				if !usable(g) || g.Relation != f.Relation || g.Subject != f.Object {
					continue
				}
				if g.Object == f.Subject {
					// A two-hop cycle would derive a self loop.
					continue
				}
				level := minExistence(f.Existence, g.Existence)
				if _, err := store.AddFact(f.Subject, f.Relation, g.Object, kb.WithExistence(level)); err != nil {
					return 0, err
				}
			}
		}
	}

	src := kb.FactSet(snapshot)
	for _, c := range e.rel.Compositions() {
		var solveErr error
		solve(src, c.Body, make(map[string]string), nil, func(binding map[string]string, premises []*kb.Fact) bool {
			subject, ok1 := groundField(c.Head.Subject, binding)
			relation, ok2 := groundField(c.Head.Relation, binding)
			object, ok3 := groundField(c.Head.Object, binding)
			if !ok1 || !ok2 || !ok3 {
				// Head variables missing from the body stay unbound;
				// nothing to assert.
				return false
			}

			level := kb.Certain
			for _, p := range premises {
				level = minExistence(level, p.Existence)
			}

			if _, err := store.AddFact(subject, relation, object, kb.WithExistence(level)); err != nil {
				solveErr = err
				return true
			}
			return false
		})
		if solveErr != nil {
			return 0, solveErr
		}
	}

	return store.NumFacts() - before, nil
}

func minExistence(a, b kb.Existence) kb.Existence {
	if a < b {
		return a
	}
	return b
}
