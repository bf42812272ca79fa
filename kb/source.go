package kb

// Source is the fact-lookup surface the inference strategies consume. A
// *Store implements it; FactSet adapts an ad-hoc fact slice, which is how
// tests and theory-branch experiments feed facts without a store.
type Source interface {
	// All returns every fact in a deterministic order.
	All() []*Fact

	// FactsBySubject returns the subject's facts in the same order.
	FactsBySubject(subject string) []*Fact
}

// FactSet adapts a plain fact slice to Source. Lookups scan linearly;
// the adapter exists for convenience, not throughput.
type FactSet []*Fact

// All implements Source.
func (fs FactSet) All() []*Fact { return fs }

// FactsBySubject implements Source.
func (fs FactSet) FactsBySubject(subject string) []*Fact {
	var out []*Fact
	for _, f := range fs {
		if f.Subject == subject {
			out = append(out, f)
		}
	}
	return out
}

// NewFactSet builds a FactSet from bare triples at Certain existence,
// assigning sequential ids. Convenience for tests and experiments.
func NewFactSet(triples ...[3]string) FactSet {
	out := make(FactSet, 0, len(triples))
	for i, t := range triples {
		out = append(out, &Fact{
			ID:        FactID(i + 1),
			Subject:   t[0],
			Relation:  t[1],
			Object:    t[2],
			Existence: Certain,
		})
	}
	return out
}
