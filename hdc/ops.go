package hdc

import (
	"sort"

	"github.com/bits-and-blooms/bitset"
)

// Bind combines two vectors into a role-filler pair. The operation is
// commutative and geometry-preserving; under the dense strategy it is also
// exactly self-inverse.
func (s *Space) Bind(a, b Vector) (Vector, error) {
	if err := s.check(a); err != nil {
		return Vector{}, err
	}
	if err := s.check(b); err != nil {
		return Vector{}, err
	}

	out := a.bits.SymmetricDifference(b.bits)
	if s.strategy == StrategySparse {
		out = thin(out, s.maxActive)
	}
	return Vector{geometry: s.geometry, bits: out}, nil
}

// BindAll left-folds Bind over the inputs. A single input returns an
// independent copy; no input is an error.
func (s *Space) BindAll(vs ...Vector) (Vector, error) {
	if len(vs) == 0 {
		return Vector{}, ErrEmptyInput
	}
	if len(vs) == 1 {
		if err := s.check(vs[0]); err != nil {
			return Vector{}, err
		}
		return vs[0].Clone(), nil
	}

	acc, err := s.Bind(vs[0], vs[1])
	if err != nil {
		return Vector{}, err
	}
	for _, v := range vs[2:] {
		acc, err = s.Bind(acc, v)
		if err != nil {
			return Vector{}, err
		}
	}
	return acc, nil
}

// Bundle aggregates the inputs into a vector that stays similar to each of
// them. Dense: per-component majority vote with ties toward 1. Sparse:
// thinned union. A single input returns an independent copy; no input is
// an error.
func (s *Space) Bundle(vs []Vector) (Vector, error) {
	if len(vs) == 0 {
		return Vector{}, ErrEmptyInput
	}
	for _, v := range vs {
		if err := s.check(v); err != nil {
			return Vector{}, err
		}
	}
	if len(vs) == 1 {
		return vs[0].Clone(), nil
	}

	if s.strategy == StrategySparse {
		union := vs[0].bits.Clone()
		for _, v := range vs[1:] {
			union.InPlaceUnion(v.bits)
		}
		return Vector{geometry: s.geometry, bits: thin(union, s.maxActive)}, nil
	}

	counts := make([]int, s.geometry)
	for _, v := range vs {
		for i, ok := v.bits.NextSet(0); ok; i, ok = v.bits.NextSet(i + 1) {
			counts[i]++
		}
	}

	out := newVector(s.geometry)
	n := len(vs)
	for i, c := range counts {
		if 2*c >= n { // ties toward 1
			out.bits.Set(uint(i))
		}
	}
	return out, nil
}

// Similarity returns a value in [0,1]: 1 iff the vectors are equal,
// symmetric in its arguments, and reflexive. Dense uses normalized
// Hamming agreement, sparse uses the Jaccard index.
func (s *Space) Similarity(a, b Vector) (float64, error) {
	if err := s.check(a); err != nil {
		return 0, err
	}
	if err := s.check(b); err != nil {
		return 0, err
	}

	if s.strategy == StrategySparse {
		union := a.bits.UnionCardinality(b.bits)
		if union == 0 {
			return 1.0, nil
		}
		inter := a.bits.IntersectionCardinality(b.bits)
		return float64(inter) / float64(union), nil
	}

	hamming := a.bits.SymmetricDifferenceCardinality(b.bits)
	return 1.0 - float64(hamming)/float64(s.geometry), nil
}

// Distance returns 1 - Similarity.
func (s *Space) Distance(a, b Vector) (float64, error) {
	sim, err := s.Similarity(a, b)
	if err != nil {
		return 0, err
	}
	return 1.0 - sim, nil
}

// thin deterministically reduces bs to at most max set bits. Survivors
// are chosen by a multiplicative hash over the bit index, so the outcome
// depends only on the set itself, not on how it was produced.
func thin(bs *bitset.BitSet, max int) *bitset.BitSet {
	if max <= 0 || int(bs.Count()) <= max {
		return bs
	}

	idx := make([]uint, 0, bs.Count())
	for i, ok := bs.NextSet(0); ok; i, ok = bs.NextSet(i + 1) {
		idx = append(idx, i)
	}

	sort.Slice(idx, func(a, b int) bool {
		ka, kb := thinKey(idx[a]), thinKey(idx[b])
		if ka == kb {
			return idx[a] < idx[b]
		}
		return ka < kb
	})

	out := bitset.New(bs.Len())
	for _, i := range idx[:max] {
		out.Set(i)
	}
	return out
}

func thinKey(i uint) uint32 {
	return uint32(i) * 2654435761 // Knuth multiplicative hash
}
