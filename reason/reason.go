// Package reason answers geometric queries over the concept space:
// abduction guesses the cause behind an observation by inverting a
// relation's role permutation, and analogy completes a:b :: c:? by
// offsetting diamond centers. Both rank against the store's concepts;
// neither mutates anything.
package reason

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hupe1980/symgo/hdc"
	"github.com/hupe1980/symgo/internal/hash"
	"github.com/hupe1980/symgo/kb"
)

// ErrUnknownRelation occurs when abduction is asked about a relation
// with no registered permutation.
var ErrUnknownRelation = errors.New("unknown relation")

// ErrUnknownConcept occurs when analogy names a concept the store does
// not hold.
type ErrUnknownConcept struct {
	// Label is the missing concept.
	Label string
}

// Error implements the error interface.
func (e *ErrUnknownConcept) Error() string {
	return fmt.Sprintf("unknown concept %q", e.Label)
}

// Band is the qualitative confidence band of a hypothesis.
type Band string

const (
	// BandCertain marks similarity at or above the certain threshold.
	BandCertain Band = "TRUE_CERTAIN"
	// BandPlausible marks similarity at or above the plausible
	// threshold.
	BandPlausible Band = "PLAUSIBLE"
)

// Options contains configuration for a Reasoner.
type Options struct {
	// CertainThreshold is the similarity at which a hypothesis is
	// reported as certain.
	CertainThreshold float64

	// PlausibleThreshold is the similarity below which no hypothesis is
	// returned at all.
	PlausibleThreshold float64

	// Slack widens the diamond containment gate during abduction.
	// Zero means geometry/8.
	Slack int
}

// DefaultOptions returns the default Reasoner options.
func DefaultOptions() Options {
	return Options{
		CertainThreshold:   0.85,
		PlausibleThreshold: 0.65,
	}
}

// Reasoner runs abductive and analogical queries against a store.
type Reasoner struct {
	space *hdc.Space
	store *kb.Store
	opts  Options
	perms map[string]*hdc.Permutation
}

// New creates a Reasoner over the given space and store.
func New(space *hdc.Space, store *kb.Store, optFns ...func(o *Options)) *Reasoner {
	opts := DefaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Slack <= 0 {
		opts.Slack = space.Geometry() / 8
	}

	return &Reasoner{
		space: space,
		store: store,
		opts:  opts,
		perms: make(map[string]*hdc.Permutation),
	}
}

// RegisterRelation derives the relation's role permutation
// deterministically from its name, so every engine instance agrees on
// how a relation permutes its filler.
func (r *Reasoner) RegisterRelation(relation string) *hdc.Permutation {
	p := r.space.NewPermutation(int64(hash.Seed(relation, "permutation")))
	r.perms[relation] = p
	return p
}

// RegisterPermutation overrides the permutation for a relation.
func (r *Reasoner) RegisterPermutation(relation string, p *hdc.Permutation) {
	r.perms[relation] = p
}

// Permutation returns the registered permutation for a relation.
func (r *Reasoner) Permutation(relation string) (*hdc.Permutation, bool) {
	p, ok := r.perms[relation]
	return p, ok
}

// RegisteredRelations returns the relations with a permutation, sorted.
// Because RegisterRelation derives permutations from names alone, this
// list is all a snapshot needs to rebuild the reasoner.
func (r *Reasoner) RegisteredRelations() []string {
	out := make([]string, 0, len(r.perms))
	for relation := range r.perms {
		out = append(out, relation)
	}
	sort.Strings(out)
	return out
}

// Hypothesis is an abductive answer: the concept whose region best
// explains the observation, with its similarity and confidence band.
type Hypothesis struct {
	Concept    string
	Band       Band
	Similarity float64
}

// Abduce estimates the cause behind an observation under the given
// relation: the observation is unpermuted back into filler position and
// ranked against every concept. Concepts with observed diamonds must
// pass the coarse containment gate before their prototype similarity
// counts. A nil hypothesis without error means nothing cleared the
// plausible threshold.
func (r *Reasoner) Abduce(observation hdc.Vector, relation string) (*Hypothesis, error) {
	p, ok := r.perms[relation]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRelation, relation)
	}

	estimate, err := r.space.Unpermute(observation, p)
	if err != nil {
		return nil, err
	}
	point := estimate.Components()

	var (
		best    string
		bestSim float64
	)
	for _, c := range r.store.Concepts() {
		if len(c.Diamonds) > 0 && !r.gate(c, point) {
			continue
		}

		sim, err := r.space.Similarity(estimate, c.Prototype)
		if err != nil {
			return nil, err
		}
		if sim > bestSim {
			best = c.Label
			bestSim = sim
		}
	}

	switch {
	case best == "":
		return nil, nil
	case bestSim >= r.opts.CertainThreshold:
		return &Hypothesis{Concept: best, Band: BandCertain, Similarity: bestSim}, nil
	case bestSim >= r.opts.PlausibleThreshold:
		return &Hypothesis{Concept: best, Band: BandPlausible, Similarity: bestSim}, nil
	default:
		return nil, nil
	}
}

// gate reports whether any of the concept's diamonds coarsely contains
// the point.
func (r *Reasoner) gate(c *kb.Concept, point []int8) bool {
	for _, d := range c.Diamonds {
		if ok, err := d.CoarseContains(point, r.opts.Slack); err == nil && ok {
			return true
		}
	}
	return false
}

// Analogy is an analogical answer: the concept nearest to c + (b − a),
// with the residual distance after snapping to its center. Distance 0
// means a concept sits exactly at the implied point.
type Analogy struct {
	Concept  string
	Distance int
	Target   []int8
}

// Analogize completes a:b :: c:? by applying the center offset implied
// by a→b to c and snapping to the nearest concept center.
func (r *Reasoner) Analogize(a, b, c string) (*Analogy, error) {
	ca, err := r.center(a)
	if err != nil {
		return nil, err
	}
	cb, err := r.center(b)
	if err != nil {
		return nil, err
	}
	cc, err := r.center(c)
	if err != nil {
		return nil, err
	}

	target := make([]int8, len(cc))
	for i := range target {
		target[i] = clampInt8(int(cc[i]) + int(cb[i]) - int(ca[i]))
	}

	var (
		best     string
		bestDist int
		found    bool
	)
	for _, cn := range r.store.Concepts() {
		dist, ok := nearestCenterDistance(cn, target)
		if !ok {
			continue
		}
		if !found || dist < bestDist {
			best = cn.Label
			bestDist = dist
			found = true
		}
	}
	if !found {
		return nil, nil
	}

	return &Analogy{Concept: best, Distance: bestDist, Target: target}, nil
}

func (r *Reasoner) center(label string) ([]int8, error) {
	c, ok := r.store.Concept(label)
	if !ok {
		return nil, &ErrUnknownConcept{Label: label}
	}
	return c.Center(), nil
}

// nearestCenterDistance returns the smallest L1 distance from target to
// one of the concept's diamond centers, falling back to the prototype
// for unobserved concepts.
func nearestCenterDistance(c *kb.Concept, target []int8) (int, bool) {
	if len(c.Diamonds) == 0 {
		return l1(c.Center(), target)
	}

	var (
		best  int
		found bool
	)
	for _, d := range c.Diamonds {
		dist, err := d.CenterDistance(target)
		if err != nil {
			continue
		}
		if !found || dist < best {
			best = dist
			found = true
		}
	}
	return best, found
}

func l1(a, b []int8) (int, bool) {
	if len(a) != len(b) {
		return 0, false
	}

	sum := 0
	for i := range a {
		d := int(a[i]) - int(b[i])
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return sum, true
}

func clampInt8(v int) int8 {
	switch {
	case v > 127:
		return 127
	case v < -127:
		return -127
	default:
		return int8(v)
	}
}
