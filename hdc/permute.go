package hdc

import "math/rand"

// Permutation is a fixed component permutation used to encode relation
// roles: permuting the filler before bundling marks which slot it fills,
// and the inverse permutation recovers it. Permutations are deterministic
// for a given (geometry, seed) pair.
type Permutation struct {
	forward []int
	inverse []int
}

// NewPermutation returns the seeded Fisher-Yates permutation of the
// Space's axes.
func (s *Space) NewPermutation(seed int64) *Permutation {
	rng := rand.New(rand.NewSource(seed))

	forward := rng.Perm(s.geometry)
	inverse := make([]int, len(forward))
	for i, j := range forward {
		inverse[j] = i
	}
	return &Permutation{forward: forward, inverse: inverse}
}

// Size returns the number of axes the permutation covers.
func (p *Permutation) Size() int { return len(p.forward) }

// Permute moves every set bit i to position forward[i].
func (s *Space) Permute(v Vector, p *Permutation) (Vector, error) {
	return s.applyPerm(v, p.forward)
}

// Unpermute inverts Permute exactly: Unpermute(Permute(v,p), p) == v.
func (s *Space) Unpermute(v Vector, p *Permutation) (Vector, error) {
	return s.applyPerm(v, p.inverse)
}

func (s *Space) applyPerm(v Vector, mapping []int) (Vector, error) {
	if err := s.check(v); err != nil {
		return Vector{}, err
	}
	if len(mapping) != s.geometry {
		return Vector{}, &ErrGeometryMismatch{Expected: s.geometry, Actual: len(mapping)}
	}

	out := newVector(s.geometry)
	for i, ok := v.bits.NextSet(0); ok; i, ok = v.bits.NextSet(i + 1) {
		out.bits.Set(uint(mapping[i]))
	}
	return out, nil
}
