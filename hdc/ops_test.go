package hdc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBind(t *testing.T) {
	s, err := New(1024)
	require.NoError(t, err)

	a := s.FromName("fire")
	b := s.FromName("smoke")

	t.Run("commutative", func(t *testing.T) {
		ab, err := s.Bind(a, b)
		require.NoError(t, err)
		ba, err := s.Bind(b, a)
		require.NoError(t, err)

		assert.True(t, ab.Equal(ba))
	})

	t.Run("self-inverse", func(t *testing.T) {
		ab, err := s.Bind(a, b)
		require.NoError(t, err)
		back, err := s.Bind(ab, b)
		require.NoError(t, err)

		assert.True(t, back.Equal(a))
	})

	t.Run("result is quasi-orthogonal to operands", func(t *testing.T) {
		ab, err := s.Bind(a, b)
		require.NoError(t, err)

		sim, err := s.Similarity(ab, a)
		require.NoError(t, err)
		assert.Greater(t, sim, 0.42)
		assert.Less(t, sim, 0.58)
	})

	t.Run("geometry mismatch", func(t *testing.T) {
		_, err := s.Bind(a, mkvec(512, 0))
		var gm *ErrGeometryMismatch
		assert.ErrorAs(t, err, &gm)
	})

	t.Run("zero vector rejected", func(t *testing.T) {
		_, err := s.Bind(a, Vector{})
		var gm *ErrGeometryMismatch
		require.ErrorAs(t, err, &gm)
		assert.Equal(t, 0, gm.Actual)
	})
}

func TestBindAll(t *testing.T) {
	s, err := New(256)
	require.NoError(t, err)

	t.Run("empty input", func(t *testing.T) {
		_, err := s.BindAll()
		assert.ErrorIs(t, err, ErrEmptyInput)
	})

	t.Run("single input returns independent copy", func(t *testing.T) {
		a := s.FromName("solo")
		got, err := s.BindAll(a)
		require.NoError(t, err)

		require.True(t, got.Equal(a))

		// Mutating the copy's storage must not touch the original.
		got.bits.Flip(0)
		assert.False(t, got.Equal(a))
	})

	t.Run("fold matches pairwise binds", func(t *testing.T) {
		a, b, c := s.FromName("a"), s.FromName("b"), s.FromName("c")

		abc, err := s.BindAll(a, b, c)
		require.NoError(t, err)

		ab, err := s.Bind(a, b)
		require.NoError(t, err)
		want, err := s.Bind(ab, c)
		require.NoError(t, err)

		assert.True(t, abc.Equal(want))
	})
}

func TestBundle(t *testing.T) {
	s, err := New(4)
	require.NoError(t, err)

	t.Run("empty input", func(t *testing.T) {
		_, err := s.Bundle(nil)
		assert.ErrorIs(t, err, ErrEmptyInput)
	})

	t.Run("single input returns independent copy", func(t *testing.T) {
		a := mkvec(4, 0, 2)
		got, err := s.Bundle([]Vector{a})
		require.NoError(t, err)

		require.True(t, got.Equal(a))
		got.bits.Flip(1)
		assert.False(t, got.Equal(a))
	})

	t.Run("majority vote", func(t *testing.T) {
		got, err := s.Bundle([]Vector{
			mkvec(4, 0, 1),
			mkvec(4, 0, 2),
			mkvec(4, 0, 3),
		})
		require.NoError(t, err)

		// Only bit 0 reaches a majority of 3.
		assert.True(t, got.Equal(mkvec(4, 0)))
	})

	t.Run("ties break toward one", func(t *testing.T) {
		got, err := s.Bundle([]Vector{mkvec(4, 0), mkvec(4, 1)})
		require.NoError(t, err)

		assert.True(t, got.Equal(mkvec(4, 0, 1)))
	})

	t.Run("retrievability", func(t *testing.T) {
		big, err := New(1024)
		require.NoError(t, err)

		vs := []Vector{
			big.FromName("v1"),
			big.FromName("v2"),
			big.FromName("v3"),
			big.FromName("v4"),
			big.FromName("v5"),
		}
		bundle, err := big.Bundle(vs)
		require.NoError(t, err)

		for _, v := range vs {
			sim, err := big.Similarity(bundle, v)
			require.NoError(t, err)
			assert.Greater(t, sim, 0.5)
		}
	})
}

func TestSimilarity(t *testing.T) {
	s, err := New(8)
	require.NoError(t, err)

	t.Run("reflexive", func(t *testing.T) {
		a := mkvec(8, 0, 3, 5)
		sim, err := s.Similarity(a, a)
		require.NoError(t, err)
		assert.Equal(t, 1.0, sim)
	})

	t.Run("symmetric", func(t *testing.T) {
		a := mkvec(8, 0, 1, 2)
		b := mkvec(8, 2, 3)

		ab, err := s.Similarity(a, b)
		require.NoError(t, err)
		ba, err := s.Similarity(b, a)
		require.NoError(t, err)

		assert.Equal(t, ab, ba)
	})

	t.Run("counts disagreeing axes", func(t *testing.T) {
		a := mkvec(8, 0, 1, 2, 3)
		b := mkvec(8, 0, 1)

		sim, err := s.Similarity(a, b)
		require.NoError(t, err)
		assert.InDelta(t, 0.75, sim, 1e-12)
	})

	t.Run("one only for equal vectors", func(t *testing.T) {
		a := mkvec(8, 0)
		b := mkvec(8, 1)

		sim, err := s.Similarity(a, b)
		require.NoError(t, err)
		assert.Less(t, sim, 1.0)
	})

	t.Run("distance complements similarity", func(t *testing.T) {
		a := mkvec(8, 0, 1, 2, 3)
		b := mkvec(8, 0, 1)

		d, err := s.Distance(a, b)
		require.NoError(t, err)
		assert.InDelta(t, 0.25, d, 1e-12)
	})
}

func TestSparseStrategy(t *testing.T) {
	newSparse := func(t *testing.T) *Space {
		t.Helper()
		s, err := New(1024, func(o *Options) { o.Strategy = StrategySparse })
		require.NoError(t, err)
		return s
	}

	t.Run("stamps are deterministic and sparse", func(t *testing.T) {
		s := newSparse(t)

		a := s.FromName("Dog")
		assert.True(t, a.Equal(s.FromName("Dog")))
		assert.Equal(t, s.active, a.Count())
	})

	t.Run("bind commutative", func(t *testing.T) {
		s := newSparse(t)
		a, b := s.FromName("a"), s.FromName("b")

		ab, err := s.Bind(a, b)
		require.NoError(t, err)
		ba, err := s.Bind(b, a)
		require.NoError(t, err)

		assert.True(t, ab.Equal(ba))
	})

	t.Run("bind caps density", func(t *testing.T) {
		s := newSparse(t)

		acc := s.FromName("seed")
		for _, name := range []string{"a", "b", "c", "d", "e"} {
			var err error
			acc, err = s.Bind(acc, s.FromName(name))
			require.NoError(t, err)
			assert.LessOrEqual(t, acc.Count(), s.maxActive)
		}
	})

	t.Run("self-inverse exact for fresh stamps", func(t *testing.T) {
		s := newSparse(t)
		a, b := s.FromName("a"), s.FromName("b")

		ab, err := s.Bind(a, b)
		require.NoError(t, err)
		back, err := s.Bind(ab, b)
		require.NoError(t, err)

		// No thinning can occur below the density cap, so recovery is
		// still bit-exact at this composition depth.
		assert.True(t, back.Equal(a))
	})

	t.Run("recovery floor after thinning", func(t *testing.T) {
		s := newSparse(t)
		a, b, c := s.FromName("a"), s.FromName("b"), s.FromName("c")

		abc, err := s.BindAll(a, b, c)
		require.NoError(t, err)
		back, err := s.Bind(abc, c)
		require.NoError(t, err)

		exact, err := s.Bind(a, b)
		require.NoError(t, err)

		sim, err := s.Similarity(back, exact)
		require.NoError(t, err)
		assert.Greater(t, sim, 0.25)
		assert.Less(t, sim, 1.0)
	})

	t.Run("jaccard similarity", func(t *testing.T) {
		s, err := New(8, func(o *Options) { o.Strategy = StrategySparse })
		require.NoError(t, err)

		a := mkvec(8, 0, 1, 2)
		b := mkvec(8, 1, 2, 3)

		sim, err := s.Similarity(a, b)
		require.NoError(t, err)
		assert.InDelta(t, 0.5, sim, 1e-12) // 2 shared of 4 total

		self, err := s.Similarity(a, a)
		require.NoError(t, err)
		assert.Equal(t, 1.0, self)
	})

	t.Run("bundle is thinned union", func(t *testing.T) {
		s := newSparse(t)
		a, b := s.FromName("a"), s.FromName("b")

		got, err := s.Bundle([]Vector{a, b})
		require.NoError(t, err)

		assert.LessOrEqual(t, got.Count(), s.maxActive)

		sim, err := s.Similarity(got, a)
		require.NoError(t, err)
		assert.Greater(t, sim, 0.25)
	})
}
