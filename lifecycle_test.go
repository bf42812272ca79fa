package symgo_test

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/hupe1980/symgo"
	"github.com/hupe1980/symgo/journal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNoGoroutineLeaks verifies that background workers (journal group
// commit) are properly stopped when Close() is called.
func TestNoGoroutineLeaks(t *testing.T) {
	tests := []struct {
		name        string
		setupEngine func(t *testing.T) *symgo.Symgo
		maxLeaks    int // Allow small variance (runtime background goroutines)
	}{
		{
			name: "journal with group commit",
			setupEngine: func(t *testing.T) *symgo.Symgo {
				tmpDir := t.TempDir()
				eng, err := symgo.Dense(256).
					Journal(tmpDir, func(o *journal.Options) {
						o.DurabilityMode = journal.DurabilityGroupCommit
						o.GroupCommitInterval = 10 * time.Millisecond
						o.GroupCommitMaxOps = 100
					}).
					Build()
				require.NoError(t, err)
				return eng
			},
			maxLeaks: 2,
		},
		{
			name: "journal with sync durability",
			setupEngine: func(t *testing.T) *symgo.Symgo {
				tmpDir := t.TempDir()
				eng, err := symgo.Dense(256).
					Journal(tmpDir, func(o *journal.Options) {
						o.DurabilityMode = journal.DurabilitySync
					}).
					Build()
				require.NoError(t, err)
				return eng
			},
			maxLeaks: 2,
		},
		{
			name: "journal with auto-checkpoint",
			setupEngine: func(t *testing.T) *symgo.Symgo {
				tmpDir := t.TempDir()
				eng, err := symgo.Dense(256).
					Journal(tmpDir, func(o *journal.Options) {
						o.DurabilityMode = journal.DurabilityGroupCommit
						o.GroupCommitInterval = 10 * time.Millisecond
						o.AutoCheckpointOps = 20
					}).
					SnapshotPath(filepath.Join(tmpDir, "state.snap")).
					Build()
				require.NoError(t, err)
				return eng
			},
			maxLeaks: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Force GC to clean up any lingering goroutines from previous tests
			runtime.GC()
			time.Sleep(50 * time.Millisecond)

			initial := runtime.NumGoroutine()
			t.Logf("Initial goroutines: %d", initial)

			eng := tt.setupEngine(t)

			// Mutate to ensure workers are active
			ctx := context.Background()
			for i := 0; i < 50; i++ {
				_, err := eng.AddFact(ctx, fmt.Sprintf("doc-%d", i), "IS_A", "document")
				require.NoError(t, err)
			}

			res, err := eng.Query(ctx, "doc-1", "IS_A", "document")
			require.NoError(t, err)
			require.True(t, res.Known())

			afterInsert := runtime.NumGoroutine()
			t.Logf("After inserts: %d goroutines (+%d)", afterInsert, afterInsert-initial)

			// Wait for background workers to start (group commit ticker)
			time.Sleep(150 * time.Millisecond)

			beforeClose := runtime.NumGoroutine()
			t.Logf("Before close: %d goroutines", beforeClose)

			err = eng.Close()
			require.NoError(t, err)

			// Wait for background workers to fully shut down.
			// This reduces flakiness from asynchronous shutdown timing without weakening
			// leak detection semantics: we still fail if the goroutines don't go away.
			deadline := time.Now().Add(2 * time.Second)
			var final int
			var leaked int
			for {
				runtime.GC()
				time.Sleep(50 * time.Millisecond)

				final = runtime.NumGoroutine()
				leaked = final - initial
				if leaked <= tt.maxLeaks || time.Now().After(deadline) {
					break
				}
			}

			t.Logf("Final goroutines: %d (leaked: %d)", final, leaked)

			if leaked > tt.maxLeaks {
				t.Errorf("Goroutine leak detected: started with %d, ended with %d (leaked: %d, max allowed: %d)",
					initial, final, leaked, tt.maxLeaks)

				// Print goroutine stack traces for debugging
				buf := make([]byte, 1<<20)
				stackSize := runtime.Stack(buf, true)
				t.Logf("Goroutine stacks:\n%s", buf[:stackSize])
			}
		})
	}
}

// TestCloseIdempotent verifies that calling Close() multiple times is safe.
func TestCloseIdempotent(t *testing.T) {
	tmpDir := t.TempDir()
	eng, err := symgo.Dense(256).
		Journal(tmpDir, func(o *journal.Options) {
			o.DurabilityMode = journal.DurabilityGroupCommit
			o.GroupCommitInterval = 10 * time.Millisecond
		}).
		Build()
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		_, err := eng.AddFact(ctx, fmt.Sprintf("doc-%d", i), "IS_A", "document")
		require.NoError(t, err)
	}

	// Close multiple times should not panic or error
	err1 := eng.Close()
	err2 := eng.Close()
	err3 := eng.Close()

	assert.NoError(t, err1, "First close should succeed")
	assert.NoError(t, err2, "Second close should be idempotent")
	assert.NoError(t, err3, "Third close should be idempotent")
}

// TestCloseWithActiveOperations verifies graceful shutdown during active
// operations.
func TestCloseWithActiveOperations(t *testing.T) {
	tmpDir := t.TempDir()
	eng, err := symgo.Dense(256).
		Journal(tmpDir, func(o *journal.Options) {
			o.DurabilityMode = journal.DurabilityGroupCommit
			o.GroupCommitInterval = 5 * time.Millisecond
		}).
		Build()
	require.NoError(t, err)

	ctx := context.Background()

	// Start concurrent asserts
	done := make(chan bool)
	go func() {
		for i := 0; i < 100; i++ {
			eng.AddFact(ctx, fmt.Sprintf("doc-%d", i), "IS_A", "document")
			time.Sleep(1 * time.Millisecond)
		}
		done <- true
	}()

	// Let some asserts happen
	time.Sleep(50 * time.Millisecond)

	// Close while operations are active
	err = eng.Close()
	assert.NoError(t, err, "Close should succeed even with active operations")

	// Wait for goroutine to finish
	<-done

	// The in-memory store keeps serving reads after Close.
	res, err := eng.Query(ctx, "doc-1", "IS_A", "document")
	require.NoError(t, err)
	assert.True(t, res.Known())
}
