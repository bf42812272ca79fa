package hdc

import (
	"math"
	"math/rand"

	"github.com/hupe1980/symgo/internal/hash"
)

// DefaultTheory is the theory label used by FromName.
const DefaultTheory = "default"

// Strategy selects the vector algebra used by a Space.
type Strategy int

const (
	// StrategyDense uses full-density vectors with exact XOR binding.
	StrategyDense Strategy = iota
	// StrategySparse uses low-density vectors with capped XOR binding.
	StrategySparse
)

// String returns the canonical strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategyDense:
		return "dense"
	case StrategySparse:
		return "sparse"
	default:
		return "unknown"
	}
}

// StrategyFromString parses a canonical strategy name.
func StrategyFromString(name string) (Strategy, error) {
	switch name {
	case "dense":
		return StrategyDense, nil
	case "sparse":
		return StrategySparse, nil
	default:
		return 0, ErrUnknownStrategy
	}
}

// Options contains configuration for a Space.
type Options struct {
	// Strategy selects the vector algebra (dense or sparse).
	Strategy Strategy

	// Seed initializes the Space's random generator. Spaces built with the
	// same options replay the same Random() sequence.
	Seed int64

	// OrthogonalityEpsilon is the half-width of the band around the
	// strategy's chance similarity within which IsOrthogonal reports true.
	OrthogonalityEpsilon float64

	// SparseDensity is the fraction of active bits in sparse stamps.
	// Ignored by the dense strategy.
	SparseDensity float64
}

// DefaultOptions returns the default Space options.
func DefaultOptions() Options {
	return Options{
		Strategy:             StrategyDense,
		Seed:                 1,
		OrthogonalityEpsilon: 0.05,
		SparseDensity:        1.0 / 16,
	}
}

// Space fixes the geometry and strategy for one engine instance and
// implements the vector algebra. A Space is not safe for concurrent use;
// it belongs to a single logical owner like the store it serves.
type Space struct {
	geometry  int
	strategy  Strategy
	seed      int64
	epsilon   float64
	density   float64
	active    int // active bits per sparse stamp
	maxActive int // thinning cap for sparse combinations
	chance    float64
	rng       *rand.Rand
}

// New creates a Space with the given geometry.
func New(geometry int, optFns ...func(o *Options)) (*Space, error) {
	if geometry <= 0 {
		return nil, ErrInvalidGeometry
	}

	opts := DefaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Strategy != StrategyDense && opts.Strategy != StrategySparse {
		return nil, ErrUnknownStrategy
	}

	s := &Space{
		geometry: geometry,
		strategy: opts.Strategy,
		seed:     opts.Seed,
		epsilon:  opts.OrthogonalityEpsilon,
		density:  opts.SparseDensity,
		rng:      rand.New(rand.NewSource(opts.Seed)),
	}

	if s.strategy == StrategySparse {
		s.active = int(s.density*float64(geometry) + 0.5)
		if s.active < 1 {
			s.active = 1
		}
		s.maxActive = 2 * s.active

		// Chance similarity of two independent sparse stamps: expected
		// intersection k^2/G over expected union 2k - k^2/G.
		k := float64(s.active)
		g := float64(geometry)
		s.chance = (k * k / g) / (2*k - k*k/g)
	} else {
		s.chance = 0.5
	}

	return s, nil
}

// Geometry returns the Space's bit width.
func (s *Space) Geometry() int { return s.geometry }

// Strategy returns the Space's vector algebra.
func (s *Space) Strategy() Strategy { return s.strategy }

// Seed returns the seed the Space's generator was created with.
func (s *Space) Seed() int64 { return s.seed }

// Epsilon returns the orthogonality tolerance.
func (s *Space) Epsilon() float64 { return s.epsilon }

// SparseDensity returns the configured fraction of active bits.
// It is meaningful only for StrategySparse.
func (s *Space) SparseDensity() float64 { return s.density }

// Random returns a fresh vector from the Space's seeded generator.
func (s *Space) Random() Vector {
	return s.randomFrom(s.rng)
}

// RandomSeeded returns a vector drawn deterministically from seed,
// independent of the Space's generator state.
func (s *Space) RandomSeeded(seed int64) Vector {
	return s.randomFrom(rand.New(rand.NewSource(seed)))
}

// FromName returns the deterministic stamp for name under DefaultTheory.
func (s *Space) FromName(name string) Vector {
	return s.FromNameTheory(name, DefaultTheory)
}

// FromNameTheory returns the deterministic stamp for (name, theory).
// Identical inputs always yield identical vectors; different theories for
// the same name yield quasi-orthogonal vectors.
func (s *Space) FromNameTheory(name, theory string) Vector {
	seed := int64(hash.Seed(name, theory))
	return s.randomFrom(rand.New(rand.NewSource(seed)))
}

func (s *Space) randomFrom(rng *rand.Rand) Vector {
	v := newVector(s.geometry)

	if s.strategy == StrategySparse {
		for _, i := range rng.Perm(s.geometry)[:s.active] {
			v.bits.Set(uint(i))
		}
		return v
	}

	for i := 0; i < s.geometry; i++ {
		if rng.Int63()&1 == 1 {
			v.bits.Set(uint(i))
		}
	}
	return v
}

// IsOrthogonal reports whether the similarity of a and b lies within the
// configured band around the strategy's chance similarity (0.5 for dense,
// the expected Jaccard of independent stamps for sparse).
func (s *Space) IsOrthogonal(a, b Vector) (bool, error) {
	sim, err := s.Similarity(a, b)
	if err != nil {
		return false, err
	}
	return math.Abs(sim-s.chance) <= s.epsilon, nil
}

func (s *Space) check(v Vector) error {
	if v.geometry != s.geometry || v.bits == nil {
		return &ErrGeometryMismatch{Expected: s.geometry, Actual: v.geometry}
	}
	return nil
}
