package kb

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/symgo/diamond"
)

// FactRecord is the wire form of one fact. Field order is insignificant;
// the `_existence` field is required and detected by pointer presence,
// so a record that merely omits it never restores as level zero.
type FactRecord struct {
	Subject   string            `json:"subject"`
	Relation  string            `json:"relation"`
	Object    string            `json:"object"`
	Existence *Existence        `json:"_existence"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// SnapshotFacts serializes every fact in insertion order.
func (s *Store) SnapshotFacts() []FactRecord {
	out := make([]FactRecord, 0, len(s.order))
	for _, id := range s.order {
		f := s.facts[id]
		e := f.Existence
		out = append(out, FactRecord{
			Subject:   f.Subject,
			Relation:  f.Relation,
			Object:    f.Object,
			Existence: &e,
			Metadata:  f.Metadata,
		})
	}
	return out
}

// RestoreFacts replaces the store's facts with the snapshot. Every record
// is validated before any mutation: on a malformed snapshot the store
// keeps its prior state. Restore is a rebuild, not a merge: records are
// inserted verbatim (no version unification), concepts referenced by the
// records are ensured, and existing concepts survive untouched.
func (s *Store) RestoreFacts(records []FactRecord) error {
	for i, r := range records {
		if err := validateRecord(i, r); err != nil {
			return err
		}
	}

	s.nextID = 1
	s.facts = make(map[FactID]*Fact, len(records))
	s.order = s.order[:0]
	s.bySubject = make(map[string]*roaring.Bitmap)
	s.bySubjectRelation = make(map[string]*roaring.Bitmap)
	s.byTriple = make(map[tripleKey][]FactID)

	for _, r := range records {
		if _, err := s.EnsureConcept(r.Subject); err != nil {
			return err
		}
		if _, err := s.EnsureConcept(r.Object); err != nil {
			return err
		}

		f := &Fact{
			ID:        s.nextID,
			Subject:   r.Subject,
			Relation:  r.Relation,
			Object:    r.Object,
			Existence: *r.Existence,
			Metadata:  r.Metadata,
		}
		s.nextID++
		s.insert(f)
	}
	return nil
}

// ConceptRecord is the wire form of one concept. Prototypes are not
// carried: they are deterministic in the label and theory, so restore
// re-stamps them.
type ConceptRecord struct {
	Label    string          `json:"label"`
	Uses     uint64          `json:"uses,omitempty"`
	Diamonds []DiamondRecord `json:"diamonds,omitempty"`
}

// DiamondRecord carries only a diamond's bounds. Center, radius,
// relevance and fingerprint are derived on restore.
type DiamondRecord struct {
	Min []int8 `json:"min"`
	Max []int8 `json:"max"`
}

// SnapshotConcepts serializes every concept in creation order.
func (s *Store) SnapshotConcepts() []ConceptRecord {
	out := make([]ConceptRecord, 0, len(s.conceptOrder))
	for _, label := range s.conceptOrder {
		c := s.concepts[label]
		rec := ConceptRecord{Label: label, Uses: c.Uses}
		for _, d := range c.Diamonds {
			rec.Diamonds = append(rec.Diamonds, DiamondRecord{Min: d.Min, Max: d.Max})
		}
		out = append(out, rec)
	}
	return out
}

// RestoreConcepts applies concept records, creating missing concepts in
// record order and replacing the diamonds and use counters of existing
// ones. Every record is validated before any mutation. A zero Uses keeps
// the counter the ensure produced.
func (s *Store) RestoreConcepts(records []ConceptRecord) error {
	rebuilt := make([][]*diamond.Diamond, len(records))
	for i, r := range records {
		if r.Label == "" {
			return &ErrInvalidRecord{Index: i, Reason: "missing label"}
		}
		ds := make([]*diamond.Diamond, 0, len(r.Diamonds))
		for _, dr := range r.Diamonds {
			if len(dr.Min) != s.space.Geometry() {
				return &ErrInvalidRecord{Index: i, Reason: "diamond axes do not match the space geometry"}
			}
			d, err := diamond.FromBounds(dr.Min, dr.Max)
			if err != nil {
				return &ErrInvalidRecord{Index: i, Reason: err.Error()}
			}
			ds = append(ds, d)
		}
		rebuilt[i] = ds
	}

	for i, r := range records {
		c, err := s.EnsureConcept(r.Label)
		if err != nil {
			return err
		}
		c.Diamonds = rebuilt[i]
		if r.Uses > 0 {
			c.Uses = r.Uses
		}
	}
	return nil
}

func validateRecord(i int, r FactRecord) error {
	switch {
	case r.Subject == "":
		return &ErrInvalidRecord{Index: i, Reason: "missing subject"}
	case r.Relation == "":
		return &ErrInvalidRecord{Index: i, Reason: "missing relation"}
	case r.Object == "":
		return &ErrInvalidRecord{Index: i, Reason: "missing object"}
	case r.Existence == nil:
		return &ErrInvalidRecord{Index: i, Reason: "missing _existence"}
	case !r.Existence.Valid():
		return &ErrInvalidRecord{Index: i, Reason: "existence level outside the scale"}
	default:
		return nil
	}
}
