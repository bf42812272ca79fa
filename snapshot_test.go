package symgo

import (
	"bytes"
	"context"
	"testing"

	"github.com/hupe1980/symgo/archive"
	"github.com/hupe1980/symgo/codec"
	"github.com/hupe1980/symgo/hdc"
	"github.com/hupe1980/symgo/kb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot() Snapshot {
	level := kb.Certain
	return Snapshot{
		Geometry: 256,
		Strategy: "dense",
		Seed:     42,
		Theory:   "zoo",
		Facts: []kb.FactRecord{
			{Subject: "Dog", Relation: "IS_A", Object: "mammal", Existence: &level},
		},
		Protected: []string{"Dog"},
	}
}

func TestSnapshotEncodeDecode(t *testing.T) {
	for _, comp := range []archive.Compression{
		archive.CompressionNone,
		archive.CompressionLZ4,
		archive.CompressionZstd,
	} {
		t.Run(comp.String(), func(t *testing.T) {
			data, err := encodeSnapshot(testSnapshot(), codec.Default, comp)
			require.NoError(t, err)

			snap, err := decodeSnapshot(data)
			require.NoError(t, err)

			assert.Equal(t, 256, snap.Geometry)
			assert.Equal(t, "dense", snap.Strategy)
			assert.Equal(t, int64(42), snap.Seed)
			assert.Equal(t, "zoo", snap.Theory)
			assert.Equal(t, []string{"Dog"}, snap.Protected)
			require.Len(t, snap.Facts, 1)
			assert.Equal(t, "Dog", snap.Facts[0].Subject)
			require.NotNil(t, snap.Facts[0].Existence)
			assert.Equal(t, kb.Certain, *snap.Facts[0].Existence)
		})
	}
}

func TestSnapshotDecodeRejectsCorruption(t *testing.T) {
	valid, err := encodeSnapshot(testSnapshot(), codec.Default, archive.CompressionZstd)
	require.NoError(t, err)
	nameLen := int(valid[6])

	corrupt := func(fn func(b []byte)) []byte {
		b := append([]byte(nil), valid...)
		fn(b)
		return b
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"truncated header", valid[:10]},
		{"bad magic", corrupt(func(b []byte) { b[0] = 'X' })},
		{"unsupported version", corrupt(func(b []byte) { b[4] = 0xFF })},
		{"codec name overruns", corrupt(func(b []byte) { b[6] = 0xFF })},
		{"unknown codec", corrupt(func(b []byte) { b[7] ^= 0xFF })},
		{"unknown compression", corrupt(func(b []byte) { b[7+nameLen] = 99 })},
		{"length mismatch", append(append([]byte(nil), valid...), 0)},
		{"payload bit flip", corrupt(func(b []byte) { b[7+nameLen+1+8] ^= 0xFF })},
		{"trailer bit flip", corrupt(func(b []byte) { b[len(b)-1] ^= 0xFF })},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeSnapshot(tt.data)
			assert.ErrorIs(t, err, ErrSnapshotInvalid)
		})
	}
}

func TestSnapshotCodecHeader(t *testing.T) {
	// The header names the codec, so readers decode files written under
	// a different default.
	jsonCodec, ok := codec.ByName("json")
	require.True(t, ok)

	data, err := encodeSnapshot(testSnapshot(), jsonCodec, archive.CompressionNone)
	require.NoError(t, err)

	snap, err := decodeSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, "zoo", snap.Theory)
}

func TestLoadSnapshotReplacesState(t *testing.T) {
	ctx := context.Background()

	source := newTestEngine(t)
	_, err := source.AddFact(ctx, "Dog", "IS_A", "mammal")
	require.NoError(t, err)
	_, err = source.AddFact(ctx, "cat", "IS_A", "mammal")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, source.SaveSnapshot(ctx, &buf))

	target := newTestEngine(t)
	_, err = target.AddFact(ctx, "stale", "IS_A", "junk")
	require.NoError(t, err)

	require.NoError(t, target.LoadSnapshot(ctx, &buf))
	assert.Equal(t, 2, target.NumFacts())
	_, ok := target.Concept("stale")
	assert.False(t, ok)
}

func TestLoadSnapshotGeometryMismatch(t *testing.T) {
	ctx := context.Background()

	source := newTestEngine(t)
	_, err := source.AddFact(ctx, "Dog", "IS_A", "mammal")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, source.SaveSnapshot(ctx, &buf))

	space, err := hdc.New(128)
	require.NoError(t, err)
	target, err := New(space)
	require.NoError(t, err)
	defer target.Close()

	err = target.LoadSnapshot(ctx, &buf)
	var gm *ErrGeometryMismatch
	require.ErrorAs(t, err, &gm)
	assert.Equal(t, 128, gm.Expected)
	assert.Equal(t, 256, gm.Actual)

	// The engine keeps serving its old state after a rejected load.
	assert.Zero(t, target.NumFacts())
}

func TestLoadSnapshotStrategyMismatch(t *testing.T) {
	ctx := context.Background()

	source := newTestEngine(t)
	var buf bytes.Buffer
	require.NoError(t, source.SaveSnapshot(ctx, &buf))

	space, err := hdc.New(256, func(o *hdc.Options) {
		o.Strategy = hdc.StrategySparse
	})
	require.NoError(t, err)
	target, err := New(space)
	require.NoError(t, err)
	defer target.Close()

	err = target.LoadSnapshot(ctx, &buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strategy")
}

func TestSnapshotCompressionShrinks(t *testing.T) {
	ctx := context.Background()

	sg := newTestEngine(t)
	for _, s := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		_, err := sg.AddFact(ctx, "animal_"+s, "IS_A", "animal")
		require.NoError(t, err)
	}

	sg.mu.Lock()
	snap := sg.snapshotLocked()
	sg.mu.Unlock()

	raw, err := encodeSnapshot(snap, codec.Default, archive.CompressionNone)
	require.NoError(t, err)
	packed, err := encodeSnapshot(snap, codec.Default, archive.CompressionZstd)
	require.NoError(t, err)

	assert.Less(t, len(packed), len(raw))
}
