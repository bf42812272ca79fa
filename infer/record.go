package infer

// RelationsRecord is the serializable form of a Relations table. It
// carries everything needed to rebuild the table: the hierarchy
// relation, the symmetric and transitive sets, the inverse pairs, and
// the default and composition rules in registration order.
type RelationsRecord struct {
	Hierarchy    string            `json:"hierarchy"`
	Symmetric    []string          `json:"symmetric,omitempty"`
	Transitive   []string          `json:"transitive,omitempty"`
	Inverses     map[string]string `json:"inverses,omitempty"`
	Defaults     []DefaultRule     `json:"defaults,omitempty"`
	Compositions []CompositionRule `json:"compositions,omitempty"`
}

// Snapshot captures the table as a record. The sets come out sorted so
// equal tables produce equal records.
func (r *Relations) Snapshot() RelationsRecord {
	return RelationsRecord{
		Hierarchy:    r.hierarchy,
		Symmetric:    r.Symmetric(),
		Transitive:   r.Transitive(),
		Inverses:     r.Inverses(),
		Defaults:     r.Defaults(),
		Compositions: r.Compositions(),
	}
}

// RestoreRelations rebuilds a Relations table from a record. An empty
// hierarchy falls back to DefaultHierarchy.
func RestoreRelations(rec RelationsRecord) *Relations {
	r := NewRelations()
	if rec.Hierarchy != "" {
		r.SetHierarchy(rec.Hierarchy)
	}
	for _, rel := range rec.Symmetric {
		r.SetSymmetric(rel)
	}
	for _, rel := range rec.Transitive {
		r.SetTransitive(rel)
	}
	for a, b := range rec.Inverses {
		r.SetInverse(a, b)
	}
	for _, d := range rec.Defaults {
		r.AddDefault(d)
	}
	for _, c := range rec.Compositions {
		r.AddComposition(c)
	}
	return r
}
