package symgo

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/hupe1980/symgo/archive"
	"github.com/hupe1980/symgo/codec"
	"github.com/hupe1980/symgo/hdc"
	"github.com/hupe1980/symgo/infer"
	"github.com/hupe1980/symgo/internal/hash"
	"github.com/hupe1980/symgo/kb"
	"github.com/hupe1980/symgo/logic"
	"github.com/hupe1980/symgo/reason"
)

// Snapshot layout:
//
//	[Magic "SYG1":4][Version:2][CodecNameLen:1][CodecName][Compression:1]
//	[PayloadLen:8][Payload][CRC32C:4]
//
// Integers are little-endian. The CRC covers everything before it. The
// payload is the codec-marshaled Snapshot, framed by the compression
// algorithm named in the header, so any engine can decode a snapshot
// regardless of its own codec configuration.
const (
	snapshotMagic   = "SYG1"
	snapshotVersion = 1
)

// Snapshot is the serializable state of an engine: the space shape, the
// fact and concept records, the protected set, rule and statement
// definitions, the relation table, and the relations with registered
// abduction permutations.
//
// Concept prototypes and abduction permutations are not serialized.
// Both are derived deterministically from names, so labels and relation
// names are all a restore needs to rebuild identical vectors.
type Snapshot struct {
	Geometry   int                         `json:"geometry"`
	Strategy   string                      `json:"strategy"`
	Seed       int64                       `json:"seed"`
	Epsilon    float64                     `json:"epsilon,omitempty"`
	Density    float64                     `json:"density,omitempty"`
	Theory     string                      `json:"theory,omitempty"`
	Facts      []kb.FactRecord             `json:"facts,omitempty"`
	Concepts   []kb.ConceptRecord          `json:"concepts,omitempty"`
	Protected  []string                    `json:"protected,omitempty"`
	Rules      []RuleRecord                `json:"rules,omitempty"`
	Statements map[string]logic.NodeRecord `json:"statements,omitempty"`
	Relations  infer.RelationsRecord       `json:"relations"`
	Permuted   []string                    `json:"permuted,omitempty"`
}

// RuleRecord is the serializable form of one registered rule. Condition
// and conclusion are stored unresolved; references re-resolve against
// the restored statement table.
type RuleRecord struct {
	Name       string           `json:"name"`
	Condition  logic.NodeRecord `json:"condition"`
	Conclusion logic.NodeRecord `json:"conclusion"`
}

func encodeSnapshot(snap Snapshot, c codec.Codec, comp archive.Compression) ([]byte, error) {
	payload, err := c.Marshal(snap)
	if err != nil {
		return nil, err
	}
	framed, err := comp.Compress(payload)
	if err != nil {
		return nil, err
	}

	name := c.Name()
	buf := make([]byte, 0, 4+2+1+len(name)+1+8+len(framed)+4)
	buf = append(buf, snapshotMagic...)
	buf = binary.LittleEndian.AppendUint16(buf, snapshotVersion)
	buf = append(buf, byte(len(name)))
	buf = append(buf, name...)
	buf = append(buf, byte(comp))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(framed)))
	buf = append(buf, framed...)
	buf = binary.LittleEndian.AppendUint32(buf, hash.CRC32C(buf))
	return buf, nil
}

func decodeSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot

	const fixed = 4 + 2 + 1 + 1 + 8 + 4
	if len(data) < fixed {
		return snap, fmt.Errorf("%w: truncated header", ErrSnapshotInvalid)
	}
	if string(data[:4]) != snapshotMagic {
		return snap, fmt.Errorf("%w: bad magic", ErrSnapshotInvalid)
	}
	if v := binary.LittleEndian.Uint16(data[4:6]); v != snapshotVersion {
		return snap, fmt.Errorf("%w: unsupported version %d", ErrSnapshotInvalid, v)
	}

	nameLen := int(data[6])
	if len(data) < fixed+nameLen {
		return snap, fmt.Errorf("%w: truncated header", ErrSnapshotInvalid)
	}
	name := string(data[7 : 7+nameLen])
	c, ok := codec.ByName(name)
	if !ok {
		return snap, fmt.Errorf("%w: unknown codec %q", ErrSnapshotInvalid, name)
	}

	off := 7 + nameLen
	comp := archive.Compression(data[off])
	switch comp {
	case archive.CompressionNone, archive.CompressionLZ4, archive.CompressionZstd:
	default:
		return snap, fmt.Errorf("%w: unknown compression %d", ErrSnapshotInvalid, comp)
	}
	off++

	payloadLen := binary.LittleEndian.Uint64(data[off : off+8])
	off += 8

	if uint64(len(data)) != uint64(off)+payloadLen+4 {
		return snap, fmt.Errorf("%w: length mismatch", ErrSnapshotInvalid)
	}

	body := data[: len(data)-4 : len(data)-4]
	want := binary.LittleEndian.Uint32(data[len(data)-4:])
	if got := hash.CRC32C(body); got != want {
		return snap, fmt.Errorf("%w: checksum mismatch", ErrSnapshotInvalid)
	}

	payload, err := comp.Decompress(data[off : len(data)-4])
	if err != nil {
		return snap, fmt.Errorf("%w: %w", ErrSnapshotInvalid, err)
	}
	if err := c.Unmarshal(payload, &snap); err != nil {
		return snap, fmt.Errorf("%w: %w", ErrSnapshotInvalid, err)
	}
	return snap, nil
}

// snapshotLocked captures the engine state. Callers hold sg.mu.
func (sg *Symgo) snapshotLocked() Snapshot {
	snap := Snapshot{
		Geometry:  sg.space.Geometry(),
		Strategy:  sg.space.Strategy().String(),
		Seed:      sg.space.Seed(),
		Epsilon:   sg.space.Epsilon(),
		Theory:    sg.store.Theory(),
		Facts:     sg.store.SnapshotFacts(),
		Concepts:  sg.store.SnapshotConcepts(),
		Protected: sg.store.ListProtected(),
		Relations: sg.relations.Snapshot(),
		Permuted:  sg.reasoner.RegisteredRelations(),
	}
	if sg.space.Strategy() == hdc.StrategySparse {
		snap.Density = sg.space.SparseDensity()
	}

	for _, def := range sg.ruleDefs {
		snap.Rules = append(snap.Rules, RuleRecord{
			Name:       def.name,
			Condition:  logic.NewNodeRecord(def.condition),
			Conclusion: logic.NewNodeRecord(def.conclusion),
		})
	}
	if len(sg.refs) > 0 {
		snap.Statements = make(map[string]logic.NodeRecord, len(sg.refs))
		for name, n := range sg.refs {
			snap.Statements[name] = logic.NewNodeRecord(n)
		}
	}
	return snap
}

// applySnapshotLocked replaces the engine state with the snapshot.
// Every piece is rebuilt into temporaries first; on any error the
// engine keeps its prior state. Callers hold sg.mu.
func (sg *Symgo) applySnapshotLocked(snap Snapshot) error {
	if snap.Geometry != sg.space.Geometry() {
		return &ErrGeometryMismatch{Expected: sg.space.Geometry(), Actual: snap.Geometry}
	}
	strategy, err := hdc.StrategyFromString(snap.Strategy)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSnapshotInvalid, err)
	}
	if strategy != sg.space.Strategy() {
		return fmt.Errorf("symgo: snapshot strategy %q does not match space strategy %q", strategy, sg.space.Strategy())
	}
	if strategy == hdc.StrategySparse && snap.Density > 0 && snap.Density != sg.space.SparseDensity() {
		return fmt.Errorf("symgo: snapshot density %v does not match space density %v", snap.Density, sg.space.SparseDensity())
	}

	store := kb.NewStore(sg.space, func(o *kb.Options) {
		if snap.Theory != "" {
			o.Theory = snap.Theory
		}
	})
	if err := store.RestoreConcepts(snap.Concepts); err != nil {
		return fmt.Errorf("%w: %w", ErrSnapshotInvalid, err)
	}
	if err := store.RestoreFacts(snap.Facts); err != nil {
		return fmt.Errorf("%w: %w", ErrSnapshotInvalid, err)
	}
	// Fact restoration counts concept uses; overwrite last so the
	// counters match the snapshot.
	for _, rec := range snap.Concepts {
		if c, ok := store.Concept(rec.Label); ok && rec.Uses > 0 {
			c.Uses = rec.Uses
		}
	}
	for _, label := range snap.Protected {
		store.Protect(label)
	}

	refs := make(map[string]logic.Node, len(snap.Statements))
	for name, rec := range snap.Statements {
		n, err := rec.Node()
		if err != nil {
			return fmt.Errorf("%w: statement %q: %w", ErrSnapshotInvalid, name, err)
		}
		refs[name] = n
	}

	defs := make([]ruleDef, 0, len(snap.Rules))
	for _, rec := range snap.Rules {
		condition, err := rec.Condition.Node()
		if err != nil {
			return fmt.Errorf("%w: rule %q: %w", ErrSnapshotInvalid, rec.Name, err)
		}
		conclusion, err := rec.Conclusion.Node()
		if err != nil {
			return fmt.Errorf("%w: rule %q: %w", ErrSnapshotInvalid, rec.Name, err)
		}
		defs = append(defs, ruleDef{name: rec.Name, condition: condition, conclusion: conclusion})
		if _, ok := refs[rec.Name]; !ok {
			refs[rec.Name] = conclusion
		}
	}

	relations := infer.RestoreRelations(snap.Relations)
	reasoner := reason.New(sg.space, store, sg.reasonOptions...)
	for _, relation := range snap.Permuted {
		reasoner.RegisterRelation(relation)
	}

	sg.store = store
	sg.relations = relations
	sg.engine = infer.New(relations, sg.inferOptions...)
	sg.reasoner = reasoner
	sg.refs = refs
	sg.ruleDefs = defs
	sg.rules = nil
	sg.dirty = len(defs) > 0

	return nil
}

// persistRebuildLocked makes the durability layer reproduce the current
// store after a wholesale rebuild (snapshot load, fact restore, forget).
// With a snapshot path the state is checkpointed and the journal
// truncated; otherwise the journal is rewritten from the store so replay
// alone reproduces it. Callers hold sg.mu.
func (sg *Symgo) persistRebuildLocked() error {
	if sg.journal == nil {
		return nil
	}

	if sg.snapshotPath != "" {
		if err := sg.saveToFileLocked(sg.snapshotPath); err != nil {
			return err
		}
		return sg.journal.Checkpoint()
	}

	if err := sg.journal.Checkpoint(); err != nil {
		return err
	}
	for _, f := range sg.store.All() {
		if err := sg.journal.Assert(f.Subject, f.Relation, f.Object, f.Existence); err != nil {
			return err
		}
	}
	for _, label := range sg.store.ListProtected() {
		if err := sg.journal.Protect(label); err != nil {
			return err
		}
	}
	return nil
}

// saveToFileLocked writes the snapshot to path via a temp file and
// rename, so a crash mid-save never leaves a torn snapshot behind.
// Callers hold sg.mu.
func (sg *Symgo) saveToFileLocked(path string) error {
	data, err := encodeSnapshot(sg.snapshotLocked(), sg.codec, sg.compression)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// SaveSnapshot writes a point-in-time snapshot to w.
func (sg *Symgo) SaveSnapshot(ctx context.Context, w io.Writer) error {
	if sg == nil || sg.store == nil {
		return fmt.Errorf("symgo: engine not initialized")
	}

	sg.mu.Lock()
	data, err := encodeSnapshot(sg.snapshotLocked(), sg.codec, sg.compression)
	sg.mu.Unlock()
	if err != nil {
		return translateError(err)
	}

	_, err = w.Write(data)
	return translateError(err)
}

// LoadSnapshot replaces the engine state with a snapshot read from r.
// The snapshot must match the engine's geometry and strategy. Malformed
// snapshots are rejected before any mutation. When a journal is active
// it is checkpointed afterwards so recovery reproduces the loaded state.
func (sg *Symgo) LoadSnapshot(ctx context.Context, r io.Reader) error {
	if sg == nil || sg.store == nil {
		return fmt.Errorf("symgo: engine not initialized")
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return translateError(err)
	}
	snap, err := decodeSnapshot(data)
	if err != nil {
		return translateError(err)
	}

	sg.mu.Lock()
	defer sg.mu.Unlock()

	if err := sg.applySnapshotLocked(snap); err != nil {
		return translateError(err)
	}
	return translateError(sg.persistRebuildLocked())
}

// SaveToFile writes a snapshot to the given file path.
func (sg *Symgo) SaveToFile(ctx context.Context, path string) error {
	if sg == nil || sg.store == nil {
		return fmt.Errorf("symgo: engine not initialized")
	}
	start := time.Now()

	sg.mu.Lock()
	err := sg.saveToFileLocked(path)
	sg.mu.Unlock()

	duration := time.Since(start)
	err = translateError(err)
	sg.metrics.RecordSnapshot(duration, err)
	sg.logger.LogSnapshot(ctx, path, err)
	return err
}

// SaveToArchive writes a snapshot blob to the archive under name and
// then points the CURRENT marker at it, so LoadLatest finds it.
func (sg *Symgo) SaveToArchive(ctx context.Context, arc archive.Archive, name string) error {
	if sg == nil || sg.store == nil {
		return fmt.Errorf("symgo: engine not initialized")
	}
	start := time.Now()

	sg.mu.Lock()
	data, err := encodeSnapshot(sg.snapshotLocked(), sg.codec, sg.compression)
	sg.mu.Unlock()

	if err == nil {
		err = archive.WriteAll(ctx, arc, name, data)
	}
	if err == nil {
		err = archive.WriteAll(ctx, arc, archive.CurrentPointer, []byte(name))
	}

	duration := time.Since(start)
	err = translateError(err)
	sg.metrics.RecordSnapshot(duration, err)
	sg.logger.LogSnapshot(ctx, name, err)
	return err
}

// LoadFromArchive replaces the engine state with the named archive
// snapshot.
func (sg *Symgo) LoadFromArchive(ctx context.Context, arc archive.Archive, name string) error {
	if sg == nil || sg.store == nil {
		return fmt.Errorf("symgo: engine not initialized")
	}
	start := time.Now()

	err := sg.loadArchiveBlob(ctx, arc, name)

	duration := time.Since(start)
	err = translateError(err)
	sg.metrics.RecordSnapshot(duration, err)
	sg.logger.LogSnapshot(ctx, name, err)
	return err
}

func (sg *Symgo) loadArchiveBlob(ctx context.Context, arc archive.Archive, name string) error {
	data, err := archive.ReadAll(ctx, arc, name)
	if err != nil {
		return err
	}
	snap, err := decodeSnapshot(data)
	if err != nil {
		return err
	}

	sg.mu.Lock()
	defer sg.mu.Unlock()

	if err := sg.applySnapshotLocked(snap); err != nil {
		return err
	}
	return sg.persistRebuildLocked()
}

// currentArchiveName resolves the CURRENT pointer to a snapshot name.
func currentArchiveName(ctx context.Context, arc archive.Archive) (string, error) {
	current, err := archive.ReadAll(ctx, arc, archive.CurrentPointer)
	if err != nil {
		return "", err
	}
	name := strings.TrimSpace(string(current))
	if name == "" {
		return "", fmt.Errorf("%w: empty CURRENT pointer", ErrNotFound)
	}
	return name, nil
}
