// Package kb implements the concept/fact store: indexed triples with
// versioned existence levels, labeled concepts with bounded-diamond
// regions, protection and forgetting, and snapshot/restore.
//
// A Store has no internal locking. It assumes a single logical owner per
// instance; callers that share a store across goroutines serialize their
// own access, the way the root facade does.
package kb

import (
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/symgo/hdc"
)

// Options contains configuration for a Store.
type Options struct {
	// Theory labels the stamp theory concept prototypes are drawn in.
	// Stores forked for hypothetical branches use distinct theories so
	// their prototypes do not collide with the base store's.
	Theory string
}

// DefaultOptions returns the default Store options.
func DefaultOptions() Options {
	return Options{
		Theory: hdc.DefaultTheory,
	}
}

// Store holds facts and concepts with their indexes. Fact ids ascend in
// insertion order, so iterating an id bitmap yields insertion order.
type Store struct {
	space  *hdc.Space
	theory string

	nextID FactID
	facts  map[FactID]*Fact
	order  []FactID

	bySubject         map[string]*roaring.Bitmap
	bySubjectRelation map[string]*roaring.Bitmap
	byTriple          map[tripleKey][]FactID

	concepts     map[string]*Concept
	conceptOrder []string
	protected    map[string]struct{}
}

// NewStore creates an empty store bound to the given space.
func NewStore(space *hdc.Space, optFns ...func(o *Options)) *Store {
	opts := DefaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Store{
		space:             space,
		theory:            opts.Theory,
		nextID:            1,
		facts:             make(map[FactID]*Fact),
		bySubject:         make(map[string]*roaring.Bitmap),
		bySubjectRelation: make(map[string]*roaring.Bitmap),
		byTriple:          make(map[tripleKey][]FactID),
		concepts:          make(map[string]*Concept),
		protected:         make(map[string]struct{}),
	}
}

// Space returns the vector space the store stamps into.
func (s *Store) Space() *hdc.Space { return s.space }

// Theory returns the stamp theory concept prototypes are drawn in.
func (s *Store) Theory() string { return s.theory }

// NumFacts returns the number of stored facts.
func (s *Store) NumFacts() int { return len(s.facts) }

// NumConcepts returns the number of known concepts.
func (s *Store) NumConcepts() int { return len(s.concepts) }

// EnsureConcept returns the concept for label, creating it on first
// reference. Creation stamps the prototype vector from the label in the
// store's theory. Every call counts as a use.
func (s *Store) EnsureConcept(label string) (*Concept, error) {
	if label == "" {
		return nil, ErrEmptyLabel
	}

	if c, ok := s.concepts[label]; ok {
		c.Uses++
		return c, nil
	}

	c := &Concept{
		Label:     label,
		Prototype: s.space.FromNameTheory(label, s.theory),
		Uses:      1,
	}
	s.concepts[label] = c
	s.conceptOrder = append(s.conceptOrder, label)
	return c, nil
}

// Concept returns the concept for label without creating it.
func (s *Store) Concept(label string) (*Concept, bool) {
	c, ok := s.concepts[label]
	return c, ok
}

// Concepts returns all concepts in creation order.
func (s *Store) Concepts() []*Concept {
	out := make([]*Concept, 0, len(s.conceptOrder))
	for _, label := range s.conceptOrder {
		out = append(out, s.concepts[label])
	}
	return out
}

// AddFact inserts a triple with version unification: when the store
// already holds the same triple at an existence level greater than or
// equal to the new fact's, nothing is inserted and the id of the
// best-level holder is returned. A strictly higher level coexists with
// the retained lower-level facts, and the triple index is re-sorted
// descending. The default level is Certain.
func (s *Store) AddFact(subject, relation, object string, optFns ...func(o *FactOptions)) (FactID, error) {
	opts := FactOptions{Existence: Certain}
	for _, fn := range optFns {
		fn(&opts)
	}

	if err := validateTriple(subject, relation, object); err != nil {
		return 0, err
	}
	if !opts.Existence.Valid() {
		return 0, ErrInvalidExistence
	}

	key := tripleKey{subject: subject, relation: relation, object: object}
	if ids := s.byTriple[key]; len(ids) > 0 {
		best := s.facts[ids[0]]
		if opts.Existence <= best.Existence {
			return best.ID, nil
		}
	}

	// Subject and object are concept references; relations are not.
	if _, err := s.EnsureConcept(subject); err != nil {
		return 0, err
	}
	if _, err := s.EnsureConcept(object); err != nil {
		return 0, err
	}

	f := &Fact{
		ID:        s.nextID,
		Subject:   subject,
		Relation:  relation,
		Object:    object,
		Existence: opts.Existence,
		Metadata:  opts.Metadata,
	}
	s.nextID++
	s.insert(f)

	return f.ID, nil
}

func (s *Store) insert(f *Fact) {
	s.facts[f.ID] = f
	s.order = append(s.order, f.ID)

	s.postings(s.bySubject, f.Subject).Add(uint32(f.ID))
	s.postings(s.bySubjectRelation, subjectRelationKey(f.Subject, f.Relation)).Add(uint32(f.ID))

	key := f.key()
	s.byTriple[key] = append(s.byTriple[key], f.ID)
	s.resortTriple(key)
}

func (s *Store) postings(index map[string]*roaring.Bitmap, key string) *roaring.Bitmap {
	bm, ok := index[key]
	if !ok {
		bm = roaring.New()
		index[key] = bm
	}
	return bm
}

// resortTriple restores descending existence order for one triple bucket.
// The sort is stable, so facts at equal levels keep insertion order.
func (s *Store) resortTriple(key tripleKey) {
	ids := s.byTriple[key]
	sort.SliceStable(ids, func(i, j int) bool {
		return s.facts[ids[i]].Existence > s.facts[ids[j]].Existence
	})
}

// Fact returns the fact with the given id.
func (s *Store) Fact(id FactID) (*Fact, bool) {
	f, ok := s.facts[id]
	return f, ok
}

// All returns every fact in insertion order. Implements Source.
func (s *Store) All() []*Fact {
	out := make([]*Fact, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.facts[id])
	}
	return out
}

// FactsBySubject returns the subject's facts in insertion order.
// Implements Source.
func (s *Store) FactsBySubject(subject string) []*Fact {
	return s.collect(s.bySubject[subject])
}

// FactsBySubjectRelation returns the facts for (subject, relation) at or
// above min, in insertion order. Pass Impossible for no level filter.
func (s *Store) FactsBySubjectRelation(subject, relation string, min Existence) []*Fact {
	var out []*Fact
	bm := s.bySubjectRelation[subjectRelationKey(subject, relation)]
	if bm == nil {
		return nil
	}

	it := bm.Iterator()
	for it.HasNext() {
		f := s.facts[FactID(it.Next())]
		if f.Existence >= min {
			out = append(out, f)
		}
	}
	return out
}

// BestFact returns the highest-existence fact for (subject, relation,
// object), ties broken by insertion order. An empty object matches any
// object. Absence is not an error.
func (s *Store) BestFact(subject, relation, object string) (*Fact, bool) {
	if object != "" {
		ids := s.byTriple[tripleKey{subject: subject, relation: relation, object: object}]
		if len(ids) == 0 {
			return nil, false
		}
		return s.facts[ids[0]], true
	}

	var best *Fact
	bm := s.bySubjectRelation[subjectRelationKey(subject, relation)]
	if bm == nil {
		return nil, false
	}

	it := bm.Iterator()
	for it.HasNext() {
		f := s.facts[FactID(it.Next())]
		if best == nil || f.Existence > best.Existence {
			best = f
		}
	}
	return best, best != nil
}

// FactsByExistence returns every fact at or above min, in insertion
// order.
func (s *Store) FactsByExistence(min Existence) []*Fact {
	var out []*Fact
	for _, id := range s.order {
		if f := s.facts[id]; f.Existence >= min {
			out = append(out, f)
		}
	}
	return out
}

// FactsWithExistence returns all of the subject's facts sorted by
// existence descending, stable for equal levels.
func (s *Store) FactsWithExistence(subject string) []*Fact {
	out := s.FactsBySubject(subject)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Existence > out[j].Existence
	})
	return out
}

// UpgradeExistence raises a fact's level in place. It succeeds only when
// the new level is strictly greater than the current one; downgrades and
// unknown ids leave the store unchanged and return false.
func (s *Store) UpgradeExistence(id FactID, level Existence) bool {
	f, ok := s.facts[id]
	if !ok || !level.Valid() || level <= f.Existence {
		return false
	}

	f.Existence = level
	s.resortTriple(f.key())
	return true
}

// RemoveFact deletes a fact from the store and every index. A missing id
// is a no-op returning false.
func (s *Store) RemoveFact(id FactID) bool {
	f, ok := s.facts[id]
	if !ok {
		return false
	}

	delete(s.facts, id)
	s.order = removeID(s.order, id)

	s.removePosting(s.bySubject, f.Subject, id)
	s.removePosting(s.bySubjectRelation, subjectRelationKey(f.Subject, f.Relation), id)

	key := f.key()
	if ids := removeID(s.byTriple[key], id); len(ids) > 0 {
		s.byTriple[key] = ids
	} else {
		delete(s.byTriple, key)
	}
	return true
}

func (s *Store) removePosting(index map[string]*roaring.Bitmap, key string, id FactID) {
	bm, ok := index[key]
	if !ok {
		return
	}
	bm.Remove(uint32(id))
	if bm.IsEmpty() {
		delete(index, key)
	}
}

func (s *Store) collect(bm *roaring.Bitmap) []*Fact {
	if bm == nil {
		return nil
	}

	out := make([]*Fact, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, s.facts[FactID(it.Next())])
	}
	return out
}

func removeID(ids []FactID, id FactID) []FactID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

func validateTriple(subject, relation, object string) error {
	switch {
	case strings.TrimSpace(subject) == "":
		return wrapTriple("subject")
	case strings.TrimSpace(relation) == "":
		return wrapTriple("relation")
	case strings.TrimSpace(object) == "":
		return wrapTriple("object")
	default:
		return nil
	}
}

func subjectRelationKey(subject, relation string) string {
	return subject + "\x1f" + relation
}
