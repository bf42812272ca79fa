// Package hdc implements the hyperdimensional bit-vector algebra that gives
// concepts and statements a geometric representation.
//
// A Space fixes the vector geometry (bit width) and the strategy for one
// engine instance. Every operation checks that its operands share the
// Space's geometry; a mismatch is an input error, never a silent
// truncation.
//
// # Strategies
//
// StrategyDense (default) uses full-density vectors:
//
//   - Bind is componentwise XOR: commutative and exactly self-inverse,
//     so Bind(Bind(a,b), b) == a.
//   - Bundle is a per-component majority vote with ties toward 1; the
//     result stays >0.5 similar to each dissimilar contributing input.
//   - Similarity is 1 - normalizedHamming, in [0,1], 1 iff equal.
//
// StrategySparse keeps vectors at a low active-bit density. Bind is XOR
// followed by deterministic thinning whenever the combined density exceeds
// twice the stamp density. Thinning is operand-order independent, so
// binding stays commutative and deterministic, but bit-exact inverse
// recovery only holds while no thinning has occurred; after composing
// three or more vectors, recovery degrades to a similarity floor (well
// above chance, typically >0.25). Callers must not assume bit-exact
// round-trips under this strategy. Similarity is the Jaccard index, and
// orthogonality is judged against the strategy's chance similarity rather
// than the dense 0.5 midpoint.
//
// # Determinism
//
// FromName stamps are derived from an FNV seed over (name, theory):
// identical inputs always produce identical vectors, and different
// theories for the same name are quasi-orthogonal. Random() draws from the
// Space's seeded generator, so a Space constructed with the same options
// replays the same sequence.
package hdc
