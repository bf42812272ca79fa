package kb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProtection(t *testing.T) {
	store := newTestStore(t)

	_, err := store.EnsureConcept("Dog")
	require.NoError(t, err)
	_, err = store.EnsureConcept("Cat")
	require.NoError(t, err)

	store.Protect("Dog")
	store.Protect("Cat")
	store.Protect("Fish") // unknown, ignored

	assert.True(t, store.IsProtected("Dog"))
	assert.False(t, store.IsProtected("Fish"))
	assert.Equal(t, []string{"Cat", "Dog"}, store.ListProtected())

	store.Unprotect("Dog")
	assert.False(t, store.IsProtected("Dog"))
	assert.Equal(t, []string{"Cat"}, store.ListProtected())
}

func TestForget(t *testing.T) {
	seed := func(t *testing.T) *Store {
		t.Helper()

		store := newTestStore(t)
		_, err := store.AddFact("Dog", "IS_A", "mammal")
		require.NoError(t, err)
		_, err = store.AddFact("Cat", "IS_A", "mammal")
		require.NoError(t, err)
		_, err = store.AddFact("Dog", "CHASES", "Cat")
		require.NoError(t, err)
		return store
	}

	t.Run("exact concept cascades both directions", func(t *testing.T) {
		store := seed(t)

		result, err := store.Forget(ForgetSpec{Concept: "Cat"})
		require.NoError(t, err)

		assert.Equal(t, []string{"Cat"}, result.Removed)
		assert.Equal(t, 1, result.Count)
		assert.Empty(t, result.WouldRemove)
		assert.Empty(t, result.Protected)

		_, ok := store.Concept("Cat")
		assert.False(t, ok)
		assert.Empty(t, store.FactsBySubject("Cat"))
		assert.Len(t, store.FactsBySubject("Dog"), 1, "Dog CHASES Cat removed with the object")
	})

	t.Run("protected concepts are excluded and reported", func(t *testing.T) {
		store := seed(t)
		store.Protect("Dog")

		result, err := store.Forget(ForgetSpec{Concept: "Dog"})
		require.NoError(t, err)

		assert.Empty(t, result.Removed)
		assert.Zero(t, result.Count)
		assert.Equal(t, []string{"Dog"}, result.Protected)

		_, ok := store.Concept("Dog")
		assert.True(t, ok)
		assert.Len(t, store.FactsBySubject("Dog"), 2)
	})

	t.Run("glob pattern", func(t *testing.T) {
		store := seed(t)
		_, err := store.EnsureConcept("Dogma")
		require.NoError(t, err)

		result, err := store.Forget(ForgetSpec{Pattern: "Dog*"})
		require.NoError(t, err)

		assert.Equal(t, []string{"Dog", "Dogma"}, result.Removed)
		assert.Equal(t, 2, result.Count)
	})

	t.Run("malformed pattern fails before selecting", func(t *testing.T) {
		store := seed(t)

		_, err := store.Forget(ForgetSpec{Pattern: "[unclosed"})
		assert.Error(t, err)
		assert.Equal(t, 3, store.NumFacts())
	})

	t.Run("usage threshold", func(t *testing.T) {
		store := seed(t)

		// Dog participates in two facts plus one explicit ensure.
		_, err := store.EnsureConcept("Dog")
		require.NoError(t, err)

		result, err := store.Forget(ForgetSpec{Threshold: 2})
		require.NoError(t, err)

		assert.Contains(t, result.Removed, "Cat")
		assert.Contains(t, result.Removed, "mammal")
		assert.NotContains(t, result.Removed, "Dog")
	})

	t.Run("dry run mutates nothing", func(t *testing.T) {
		store := seed(t)
		store.Protect("mammal")

		result, err := store.Forget(ForgetSpec{Pattern: "*", DryRun: true})
		require.NoError(t, err)

		assert.Empty(t, result.Removed)
		assert.Equal(t, []string{"Dog", "Cat"}, result.WouldRemove)
		assert.Equal(t, 2, result.Count)
		assert.Equal(t, []string{"mammal"}, result.Protected)

		assert.Equal(t, 3, store.NumFacts())
		assert.Equal(t, 3, store.NumConcepts())
	})

	t.Run("empty spec selects nothing", func(t *testing.T) {
		store := seed(t)

		result, err := store.Forget(ForgetSpec{})
		require.NoError(t, err)
		assert.Zero(t, result.Count)
		assert.Equal(t, 3, store.NumFacts())
	})
}
