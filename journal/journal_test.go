package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/symgo/hdc"
	"github.com/hupe1980/symgo/kb"
)

func newTestJournal(t *testing.T, optFns ...func(o *Options)) *Journal {
	t.Helper()

	dir := t.TempDir()
	fns := append([]func(o *Options){func(o *Options) {
		o.Path = dir
		o.DurabilityMode = DurabilityAsync
	}}, optFns...)

	j, err := New(fns...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	return j
}

func TestJournalAppend(t *testing.T) {
	j := newTestJournal(t)

	require.NoError(t, j.Assert("Dog", "IS_A", "Animal", kb.Certain))
	require.NoError(t, j.Upgrade("Dog", "IS_A", "Animal", kb.Certain))
	require.NoError(t, j.Remove("Dog", "IS_A", "Animal", kb.Certain))
	require.NoError(t, j.Protect("Dog"))
	require.NoError(t, j.Unprotect("Dog"))

	count, err := j.Len()
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestJournalReplayAfterReopen(t *testing.T) {
	dir := t.TempDir()

	j, err := New(func(o *Options) {
		o.Path = dir
		o.DurabilityMode = DurabilityAsync
	})
	require.NoError(t, err)

	require.NoError(t, j.Assert("Dog", "IS_A", "Animal", kb.Certain))
	require.NoError(t, j.Assert("Rex", "IS_A", "Dog", kb.Demonstrated))
	require.NoError(t, j.Protect("Rex"))
	require.NoError(t, j.Close())

	// Reopen and replay
	j, err = New(func(o *Options) {
		o.Path = dir
		o.DurabilityMode = DurabilityAsync
	})
	require.NoError(t, err)
	defer j.Close()

	var replayed []Entry
	require.NoError(t, j.Replay(func(entry Entry) error {
		replayed = append(replayed, entry)
		return nil
	}))

	require.Len(t, replayed, 3)
	assert.Equal(t, OpAssert, replayed[0].Type)
	assert.Equal(t, "Dog", replayed[0].Subject)
	assert.Equal(t, "IS_A", replayed[0].Relation)
	assert.Equal(t, "Animal", replayed[0].Object)
	assert.Equal(t, kb.Certain, replayed[0].Existence)
	assert.Equal(t, kb.Demonstrated, replayed[1].Existence)
	assert.Equal(t, OpProtect, replayed[2].Type)
	assert.Equal(t, "Rex", replayed[2].Subject)

	// Sequence numbering continues past the replayed entries.
	require.NoError(t, j.Assert("Rex", "HAS", "Collar", kb.Possible))
	count, err := j.Len()
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestJournalReplayInto(t *testing.T) {
	j := newTestJournal(t)

	require.NoError(t, j.Assert("Dog", "IS_A", "Animal", kb.Possible))
	require.NoError(t, j.Upgrade("Dog", "IS_A", "Animal", kb.Certain))
	require.NoError(t, j.Assert("Rex", "IS_A", "Dog", kb.Certain))
	require.NoError(t, j.Assert("Rex", "HAS", "Collar", kb.Certain))
	require.NoError(t, j.Remove("Rex", "HAS", "Collar", kb.Certain))
	require.NoError(t, j.Protect("Dog"))

	space, err := hdc.New(256)
	require.NoError(t, err)
	store := kb.NewStore(space)

	applied, err := j.ReplayInto(store)
	require.NoError(t, err)
	assert.Equal(t, 6, applied)

	f, ok := store.BestFact("Dog", "IS_A", "Animal")
	require.True(t, ok)
	assert.Equal(t, kb.Certain, f.Existence)

	_, ok = store.BestFact("Rex", "IS_A", "Dog")
	assert.True(t, ok)

	_, ok = store.BestFact("Rex", "HAS", "Collar")
	assert.False(t, ok, "removed fact must not survive replay")

	assert.True(t, store.IsProtected("Dog"))
}

func TestJournalReplayIntoSkipsUnresolvable(t *testing.T) {
	j := newTestJournal(t)

	// Upgrade and remove entries whose triples were never asserted.
	require.NoError(t, j.Upgrade("Ghost", "IS_A", "Spirit", kb.Certain))
	require.NoError(t, j.Remove("Ghost", "IS_A", "Spirit", kb.Certain))

	space, err := hdc.New(256)
	require.NoError(t, err)
	store := kb.NewStore(space)

	applied, err := j.ReplayInto(store)
	require.NoError(t, err)
	assert.Equal(t, 0, applied)
	assert.Equal(t, 0, store.NumFacts())
}

func TestJournalCheckpointTruncates(t *testing.T) {
	j := newTestJournal(t)

	require.NoError(t, j.Assert("Dog", "IS_A", "Animal", kb.Certain))
	require.NoError(t, j.Assert("Cat", "IS_A", "Animal", kb.Certain))

	require.NoError(t, j.Checkpoint())

	count, err := j.Len()
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	replayed := 0
	require.NoError(t, j.Replay(func(Entry) error {
		replayed++
		return nil
	}))
	assert.Equal(t, 0, replayed)

	// The truncated file carries a fresh header and accepts new entries.
	require.NoError(t, j.Assert("Fox", "IS_A", "Animal", kb.Certain))
	count, err = j.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestJournalCompressed(t *testing.T) {
	dir := t.TempDir()

	j, err := New(func(o *Options) {
		o.Path = dir
		o.DurabilityMode = DurabilityAsync
		o.Compress = true
	})
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		require.NoError(t, j.Assert("Dog", "IS_A", "Animal", kb.Certain))
	}
	require.NoError(t, j.Close())

	// Compression flag is read back from the header, not the options.
	j, err = New(func(o *Options) {
		o.Path = dir
		o.DurabilityMode = DurabilityAsync
	})
	require.NoError(t, err)
	defer j.Close()

	count, err := j.Len()
	require.NoError(t, err)
	assert.Equal(t, 10, count)
}

func TestJournalDurabilityModes(t *testing.T) {
	modes := map[string]DurabilityMode{
		"async":        DurabilityAsync,
		"group_commit": DurabilityGroupCommit,
		"sync":         DurabilitySync,
	}

	for name, mode := range modes {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()

			j, err := New(func(o *Options) {
				o.Path = dir
				o.DurabilityMode = mode
			})
			require.NoError(t, err)

			require.NoError(t, j.Assert("Dog", "IS_A", "Animal", kb.Certain))
			require.NoError(t, j.Assert("Cat", "IS_A", "Animal", kb.Certain))
			require.NoError(t, j.Close())

			j, err = New(func(o *Options) {
				o.Path = dir
				o.DurabilityMode = mode
			})
			require.NoError(t, err)
			defer j.Close()

			count, err := j.Len()
			require.NoError(t, err)
			assert.Equal(t, 2, count)
		})
	}
}

func TestJournalAutoCheckpoint(t *testing.T) {
	dir := t.TempDir()

	var j *Journal
	j, err := New(func(o *Options) {
		o.Path = dir
		o.DurabilityMode = DurabilityAsync
		o.AutoCheckpointOps = 3
	})
	require.NoError(t, err)
	defer j.Close()

	checkpoints := 0
	j.SetCheckpointCallback(func() error {
		checkpoints++
		return j.Checkpoint()
	})

	require.NoError(t, j.Assert("A", "IS_A", "B", kb.Certain))
	require.NoError(t, j.Assert("B", "IS_A", "C", kb.Certain))
	assert.Equal(t, 0, checkpoints)

	require.NoError(t, j.Assert("C", "IS_A", "D", kb.Certain))
	assert.Equal(t, 1, checkpoints)

	count, err := j.Len()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestJournalEntryRoundTripEmptyFields(t *testing.T) {
	j := newTestJournal(t)

	require.NoError(t, j.Assert("", "", "", kb.Impossible))

	var replayed []Entry
	require.NoError(t, j.Replay(func(entry Entry) error {
		replayed = append(replayed, entry)
		return nil
	}))

	require.Len(t, replayed, 1)
	assert.Empty(t, replayed[0].Subject)
	assert.Equal(t, kb.Impossible, replayed[0].Existence)
}
