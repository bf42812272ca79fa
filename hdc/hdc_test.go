package hdc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mkvec builds a raw vector with the given bits set. Test helper only;
// production vectors always come from a Space.
func mkvec(geometry int, idxs ...int) Vector {
	v := newVector(geometry)
	for _, i := range idxs {
		v.bits.Set(uint(i))
	}
	return v
}

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		s, err := New(1024)
		require.NoError(t, err)

		assert.Equal(t, 1024, s.Geometry())
		assert.Equal(t, StrategyDense, s.Strategy())
	})

	t.Run("invalid geometry", func(t *testing.T) {
		_, err := New(0)
		assert.ErrorIs(t, err, ErrInvalidGeometry)

		_, err = New(-8)
		assert.ErrorIs(t, err, ErrInvalidGeometry)
	})

	t.Run("unknown strategy", func(t *testing.T) {
		_, err := New(512, func(o *Options) { o.Strategy = Strategy(99) })
		assert.ErrorIs(t, err, ErrUnknownStrategy)
	})

	t.Run("sparse sizing", func(t *testing.T) {
		s, err := New(1024, func(o *Options) { o.Strategy = StrategySparse })
		require.NoError(t, err)

		assert.Equal(t, 64, s.active)
		assert.Equal(t, 128, s.maxActive)
	})
}

func TestStrategyFromString(t *testing.T) {
	tests := []struct {
		name    string
		want    Strategy
		wantErr bool
	}{
		{name: "dense", want: StrategyDense},
		{name: "sparse", want: StrategySparse},
		{name: "fractal", wantErr: true},
		{name: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("parse "+tt.name, func(t *testing.T) {
			got, err := StrategyFromString(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownStrategy)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.name, got.String())
		})
	}
}

func TestFromName(t *testing.T) {
	s, err := New(1024)
	require.NoError(t, err)

	t.Run("deterministic", func(t *testing.T) {
		a := s.FromName("Dog")
		b := s.FromName("Dog")
		assert.True(t, a.Equal(b))
	})

	t.Run("default theory alias", func(t *testing.T) {
		assert.True(t, s.FromName("Dog").Equal(s.FromNameTheory("Dog", DefaultTheory)))
	})

	t.Run("theories are quasi-orthogonal", func(t *testing.T) {
		a := s.FromNameTheory("Dog", "default")
		b := s.FromNameTheory("Dog", "counterfactual")

		require.False(t, a.Equal(b))

		sim, err := s.Similarity(a, b)
		require.NoError(t, err)
		assert.Greater(t, sim, 0.42)
		assert.Less(t, sim, 0.58)
	})

	t.Run("names are quasi-orthogonal", func(t *testing.T) {
		sim, err := s.Similarity(s.FromName("Dog"), s.FromName("Cat"))
		require.NoError(t, err)
		assert.Greater(t, sim, 0.42)
		assert.Less(t, sim, 0.58)
	})
}

func TestRandom(t *testing.T) {
	t.Run("seeded spaces replay the same sequence", func(t *testing.T) {
		s1, err := New(512, func(o *Options) { o.Seed = 7 })
		require.NoError(t, err)
		s2, err := New(512, func(o *Options) { o.Seed = 7 })
		require.NoError(t, err)

		assert.True(t, s1.Random().Equal(s2.Random()))
		assert.True(t, s1.Random().Equal(s2.Random()))
	})

	t.Run("different seeds diverge", func(t *testing.T) {
		s1, err := New(512, func(o *Options) { o.Seed = 7 })
		require.NoError(t, err)
		s2, err := New(512, func(o *Options) { o.Seed = 8 })
		require.NoError(t, err)

		assert.False(t, s1.Random().Equal(s2.Random()))
	})

	t.Run("seeded draw independent of space state", func(t *testing.T) {
		s, err := New(512)
		require.NoError(t, err)

		a := s.RandomSeeded(42)
		s.Random() // advance the space generator
		b := s.RandomSeeded(42)

		assert.True(t, a.Equal(b))
	})
}

func TestIsOrthogonal(t *testing.T) {
	s, err := New(8)
	require.NoError(t, err)

	t.Run("exact half agreement", func(t *testing.T) {
		a := mkvec(8, 0, 1, 2, 3)
		b := mkvec(8, 0, 1, 4, 5) // differs on 4 of 8 axes

		ok, err := s.IsOrthogonal(a, b)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("self is never orthogonal", func(t *testing.T) {
		a := mkvec(8, 0, 1)
		ok, err := s.IsOrthogonal(a, a)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("geometry mismatch", func(t *testing.T) {
		_, err := s.IsOrthogonal(mkvec(8, 0), mkvec(16, 0))
		var gm *ErrGeometryMismatch
		require.ErrorAs(t, err, &gm)
		assert.Equal(t, 8, gm.Expected)
		assert.Equal(t, 16, gm.Actual)
	})
}
