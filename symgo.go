package symgo

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/hupe1980/symgo/archive"
	"github.com/hupe1980/symgo/codec"
	"github.com/hupe1980/symgo/hdc"
	"github.com/hupe1980/symgo/infer"
	"github.com/hupe1980/symgo/journal"
	"github.com/hupe1980/symgo/kb"
	"github.com/hupe1980/symgo/logic"
	"github.com/hupe1980/symgo/reason"
	"github.com/hupe1980/symgo/unify"
)

// Symgo is an embedded knowledge engine combining a symbolic fact store
// with hyperdimensional concept vectors. All operations are safe for
// concurrent use; the facade serializes them on a single mutex.
type Symgo struct {
	mu sync.Mutex

	space     *hdc.Space
	store     *kb.Store
	relations *infer.Relations
	engine    *infer.Engine
	unifier   *unify.Unifier
	reasoner  *reason.Reasoner

	// Rules are kept unresolved so statements registered later still
	// participate in reference resolution. The resolved set is memoized
	// and rebuilt lazily after every registration.
	refs     map[string]logic.Node
	ruleDefs []ruleDef
	rules    []*logic.Rule
	dirty    bool

	journal      *journal.Journal
	snapshotPath string // Path for auto-checkpoint snapshots

	codec       codec.Codec
	compression archive.Compression

	// Retained for rebuilding engine and reasoner on snapshot loads.
	inferOptions  []func(*infer.Options)
	reasonOptions []func(*reason.Options)

	metrics MetricsCollector
	logger  *Logger
}

// ruleDef is one registered rule before reference resolution.
type ruleDef struct {
	name       string
	condition  logic.Node
	conclusion logic.Node
}

// ProofResult is the outcome of a Prove call. Confidence carries the
// existence-based confidence of the supporting facts decayed per
// derivation hop; Steps is the human-readable derivation trace.
type ProofResult struct {
	Proven     bool
	Confidence float64
	Steps      []string
}

// New creates a knowledge engine on the given vector space.
//
// Options configure the theory namespace, the relation table, the
// unifier, inference and reasoner knobs, journaling, snapshots, metrics
// and logging. Most callers should prefer the fluent builders
// Dense(geometry) and Sparse(geometry).
func New(space *hdc.Space, optFns ...Option) (*Symgo, error) {
	if space == nil {
		return nil, fmt.Errorf("symgo: space must not be nil")
	}

	opts := applyOptions(optFns)

	c := opts.codec
	if c == nil {
		c = codec.Default
	}

	store := kb.NewStore(space, func(o *kb.Options) {
		if opts.theory != "" {
			o.Theory = opts.theory
		}
	})

	relations := opts.relations
	if relations == nil {
		relations = infer.NewRelations()
	}

	sg := &Symgo{
		space:         space,
		store:         store,
		relations:     relations,
		engine:        infer.New(relations, opts.inferOptions...),
		unifier:       unify.New(opts.unifyOptions...),
		reasoner:      reason.New(space, store, opts.reasonOptions...),
		refs:          make(map[string]logic.Node),
		snapshotPath:  opts.snapshotPath,
		codec:         c,
		compression:   opts.compression,
		inferOptions:  opts.inferOptions,
		reasonOptions: opts.reasonOptions,
		metrics:       opts.metricsCollector,
		logger:        opts.logger,
	}

	if opts.journalPath != "" {
		journalOptFns := append([]func(*journal.Options){
			func(o *journal.Options) {
				o.Path = opts.journalPath
			},
		}, opts.journalOptions...)

		j, err := journal.New(journalOptFns...)
		if err != nil {
			return nil, fmt.Errorf("symgo: failed to create journal: %w", err)
		}
		sg.journal = j

		// Set auto-checkpoint callback last so it never fires against a
		// half-built engine.
		j.SetCheckpointCallback(sg.autoCheckpoint)
	}

	return sg, nil
}

// NewFromSnapshot builds an engine from a snapshot stream. The vector
// space is reconstructed from the snapshot header, so the result is
// bit-identical to the engine that saved it. A journal configured via
// options is left untouched; call RecoverFromJournal to replay deltas
// on top of the restored state.
func NewFromSnapshot(r io.Reader, optFns ...Option) (*Symgo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, translateError(err)
	}
	return newFromSnapshotBytes(data, optFns)
}

// NewFromFile builds an engine from a snapshot file. Unless overridden
// with WithSnapshotPath, the loaded file becomes the auto-checkpoint
// target, so a journaled engine keeps refreshing the snapshot it was
// started from.
func NewFromFile(path string, optFns ...Option) (*Symgo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, translateError(err)
	}
	return newFromSnapshotBytes(data, append([]Option{WithSnapshotPath(path)}, optFns...))
}

// LoadLatest resolves the archive's CURRENT pointer and builds an
// engine from the snapshot it names.
func LoadLatest(ctx context.Context, arc archive.Archive, optFns ...Option) (*Symgo, error) {
	name, err := currentArchiveName(ctx, arc)
	if err != nil {
		return nil, translateError(err)
	}
	data, err := archive.ReadAll(ctx, arc, name)
	if err != nil {
		return nil, translateError(err)
	}
	return newFromSnapshotBytes(data, optFns)
}

func newFromSnapshotBytes(data []byte, optFns []Option) (*Symgo, error) {
	snap, err := decodeSnapshot(data)
	if err != nil {
		return nil, err
	}

	strategy, err := hdc.StrategyFromString(snap.Strategy)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotInvalid, err)
	}
	space, err := hdc.New(snap.Geometry, func(o *hdc.Options) {
		o.Strategy = strategy
		o.Seed = snap.Seed
		if snap.Epsilon > 0 {
			o.OrthogonalityEpsilon = snap.Epsilon
		}
		if snap.Density > 0 {
			o.SparseDensity = snap.Density
		}
	})
	if err != nil {
		return nil, translateError(err)
	}

	sg, err := New(space, optFns...)
	if err != nil {
		return nil, err
	}

	sg.mu.Lock()
	err = sg.applySnapshotLocked(snap)
	sg.mu.Unlock()
	if err != nil {
		_ = sg.Close()
		return nil, translateError(err)
	}

	return sg, nil
}

// autoCheckpoint is called by the journal when auto-checkpoint
// thresholds are exceeded. It runs on the mutation path, with the
// facade mutex already held by the operation that appended the
// triggering entry, so it must not lock sg.mu. Without a snapshot path
// there is nothing to anchor recovery and the journal is left intact.
func (sg *Symgo) autoCheckpoint() error {
	if sg.snapshotPath == "" {
		return nil
	}

	if err := sg.saveToFileLocked(sg.snapshotPath); err != nil {
		return fmt.Errorf("auto-checkpoint: failed to save snapshot: %w", err)
	}
	if err := sg.journal.Checkpoint(); err != nil {
		return fmt.Errorf("auto-checkpoint: failed to truncate journal: %w", err)
	}
	return nil
}

// Checkpoint writes the configured snapshot file and truncates the
// journal, bounding replay time for the next recovery.
func (sg *Symgo) Checkpoint(ctx context.Context) error {
	if sg == nil || sg.store == nil {
		return fmt.Errorf("symgo: engine not initialized")
	}
	start := time.Now()

	sg.mu.Lock()
	var err error
	switch {
	case sg.snapshotPath == "" && sg.journal == nil:
		err = fmt.Errorf("symgo: checkpoint requires a snapshot path or a journal")
	case sg.snapshotPath == "":
		// Truncating without a snapshot would drop state the journal
		// still carries.
		err = fmt.Errorf("symgo: checkpoint without a snapshot path would lose journaled state")
	default:
		err = sg.saveToFileLocked(sg.snapshotPath)
		if err == nil && sg.journal != nil {
			err = sg.journal.Checkpoint()
		}
	}
	sg.mu.Unlock()

	duration := time.Since(start)
	err = translateError(err)
	sg.metrics.RecordSnapshot(duration, err)
	sg.logger.LogSnapshot(ctx, sg.snapshotPath, err)
	return err
}

// RecoverFromJournal replays the journal's committed entries into the
// store. Call it after New (journal-only durability) or after
// NewFromFile (snapshot plus delta journal) and before serving
// operations. Replay is additive: entries already covered by the
// snapshot re-unify onto their existing fact versions.
func (sg *Symgo) RecoverFromJournal(ctx context.Context) error {
	if sg == nil || sg.store == nil {
		return fmt.Errorf("symgo: engine not initialized")
	}

	sg.mu.Lock()
	var replayed int
	var err error
	if sg.journal == nil {
		err = fmt.Errorf("symgo: no journal configured")
	} else {
		replayed, err = sg.journal.ReplayInto(sg.store)
	}
	sg.mu.Unlock()

	err = translateError(err)
	sg.logger.LogRecovery(ctx, replayed, err)
	return err
}

// EnsureConcept creates the concept if it is unknown, stamping its
// prototype vector from the label, and bumps its use counter.
func (sg *Symgo) EnsureConcept(label string) (*kb.Concept, error) {
	if sg == nil || sg.store == nil {
		return nil, fmt.Errorf("symgo: engine not initialized")
	}

	sg.mu.Lock()
	c, err := sg.store.EnsureConcept(label)
	sg.mu.Unlock()

	return c, translateError(err)
}

// Concept retrieves a concept by label.
func (sg *Symgo) Concept(label string) (*kb.Concept, bool) {
	if sg == nil || sg.store == nil {
		return nil, false
	}

	sg.mu.Lock()
	defer sg.mu.Unlock()
	return sg.store.Concept(label)
}

// Observe records a sensed point for the concept, widening its nearest
// region or opening the first one.
func (sg *Symgo) Observe(ctx context.Context, label string, point []int8) error {
	if sg == nil || sg.store == nil {
		return fmt.Errorf("symgo: engine not initialized")
	}
	start := time.Now()

	sg.mu.Lock()
	err := sg.store.ObservePoint(label, point)
	sg.mu.Unlock()

	duration := time.Since(start)
	err = translateError(err)
	sg.metrics.RecordObserve(duration, err)
	sg.logger.LogObserve(ctx, label, err)
	return err
}

// ObserveSense records a point as a new sense of the concept, always
// opening a fresh region. Use it when the concept is polysemous and the
// point must not widen an existing sense.
func (sg *Symgo) ObserveSense(ctx context.Context, label string, point []int8) error {
	if sg == nil || sg.store == nil {
		return fmt.Errorf("symgo: engine not initialized")
	}
	start := time.Now()

	sg.mu.Lock()
	err := sg.store.ObserveSense(label, point)
	sg.mu.Unlock()

	duration := time.Since(start)
	err = translateError(err)
	sg.metrics.RecordObserve(duration, err)
	sg.logger.LogObserve(ctx, label, err)
	return err
}

// ObserveVector is Observe for a bit vector from the engine's space.
func (sg *Symgo) ObserveVector(ctx context.Context, label string, v hdc.Vector) error {
	if sg == nil || sg.store == nil {
		return fmt.Errorf("symgo: engine not initialized")
	}
	start := time.Now()

	sg.mu.Lock()
	err := sg.store.ObserveVector(label, v)
	sg.mu.Unlock()

	duration := time.Since(start)
	err = translateError(err)
	sg.metrics.RecordObserve(duration, err)
	sg.logger.LogObserve(ctx, label, err)
	return err
}

// AddFact asserts a (subject, relation, object) triple, creating the
// concepts as needed. Asserting at or below an existing version's level
// returns the existing fact's ID; a strictly higher level creates a new
// version.
func (sg *Symgo) AddFact(ctx context.Context, subject, relation, object string, optFns ...func(o *kb.FactOptions)) (kb.FactID, error) {
	if sg == nil || sg.store == nil {
		return 0, fmt.Errorf("symgo: engine not initialized")
	}
	start := time.Now()

	sg.mu.Lock()
	id, err := sg.addFactLocked(subject, relation, object, optFns)
	sg.mu.Unlock()

	duration := time.Since(start)
	err = translateError(err)
	sg.metrics.RecordAssert(duration, err)
	sg.logger.LogAssert(ctx, subject+" "+relation+" "+object, id, err)
	return id, err
}

func (sg *Symgo) addFactLocked(subject, relation, object string, optFns []func(o *kb.FactOptions)) (kb.FactID, error) {
	id, err := sg.store.AddFact(subject, relation, object, optFns...)
	if err != nil {
		return 0, err
	}

	if sg.journal != nil {
		// The store may have unified onto an existing version; journal
		// the level actually recorded so replay converges on it.
		if f, ok := sg.store.Fact(id); ok {
			if err := sg.journal.Assert(f.Subject, f.Relation, f.Object, f.Existence); err != nil {
				return id, err
			}
		}
	}

	return id, nil
}

// UpgradeExistence raises the fact's existence level in place. It
// reports false when the fact is unknown or the level is not strictly
// higher.
func (sg *Symgo) UpgradeExistence(ctx context.Context, id kb.FactID, level kb.Existence) (bool, error) {
	if sg == nil || sg.store == nil {
		return false, fmt.Errorf("symgo: engine not initialized")
	}

	sg.mu.Lock()
	upgraded, err := sg.upgradeExistenceLocked(id, level)
	sg.mu.Unlock()

	return upgraded, translateError(err)
}

func (sg *Symgo) upgradeExistenceLocked(id kb.FactID, level kb.Existence) (bool, error) {
	f, ok := sg.store.Fact(id)
	if !ok {
		return false, nil
	}
	subject, relation, object := f.Subject, f.Relation, f.Object

	if !sg.store.UpgradeExistence(id, level) {
		return false, nil
	}

	if sg.journal != nil {
		if err := sg.journal.Upgrade(subject, relation, object, level); err != nil {
			return true, err
		}
	}
	return true, nil
}

// RemoveFact deletes the fact version by ID. It reports false when the
// fact is unknown.
func (sg *Symgo) RemoveFact(ctx context.Context, id kb.FactID) (bool, error) {
	if sg == nil || sg.store == nil {
		return false, fmt.Errorf("symgo: engine not initialized")
	}

	sg.mu.Lock()
	removed, err := sg.removeFactLocked(id)
	sg.mu.Unlock()

	return removed, translateError(err)
}

func (sg *Symgo) removeFactLocked(id kb.FactID) (bool, error) {
	f, ok := sg.store.Fact(id)
	if !ok {
		return false, nil
	}
	subject, relation, object, level := f.Subject, f.Relation, f.Object, f.Existence

	if !sg.store.RemoveFact(id) {
		return false, nil
	}

	if sg.journal != nil {
		if err := sg.journal.Remove(subject, relation, object, level); err != nil {
			return true, err
		}
	}
	return true, nil
}

// Protect shields the concept from Forget. Protecting an unknown label
// is a no-op.
func (sg *Symgo) Protect(ctx context.Context, label string) error {
	if sg == nil || sg.store == nil {
		return fmt.Errorf("symgo: engine not initialized")
	}

	sg.mu.Lock()
	sg.store.Protect(label)
	var err error
	if sg.journal != nil && sg.store.IsProtected(label) {
		err = sg.journal.Protect(label)
	}
	sg.mu.Unlock()

	return translateError(err)
}

// Unprotect removes forget protection from the concept.
func (sg *Symgo) Unprotect(ctx context.Context, label string) error {
	if sg == nil || sg.store == nil {
		return fmt.Errorf("symgo: engine not initialized")
	}

	sg.mu.Lock()
	sg.store.Unprotect(label)
	var err error
	if sg.journal != nil {
		err = sg.journal.Unprotect(label)
	}
	sg.mu.Unlock()

	return translateError(err)
}

// Protected lists the protected concept labels in sorted order.
func (sg *Symgo) Protected() []string {
	if sg == nil || sg.store == nil {
		return nil
	}

	sg.mu.Lock()
	defer sg.mu.Unlock()
	return sg.store.ListProtected()
}

// Forget removes the concepts selected by the spec and cascades to
// every fact that references them. Protected concepts are reported, not
// removed. With DryRun the selection is returned without mutating
// anything.
func (sg *Symgo) Forget(ctx context.Context, spec kb.ForgetSpec) (kb.ForgetResult, error) {
	if sg == nil || sg.store == nil {
		return kb.ForgetResult{}, fmt.Errorf("symgo: engine not initialized")
	}
	start := time.Now()

	sg.mu.Lock()
	res, err := sg.store.Forget(spec)
	if err == nil && !spec.DryRun && len(res.Removed) > 0 {
		err = sg.persistRebuildLocked()
	}
	sg.mu.Unlock()

	duration := time.Since(start)
	err = translateError(err)
	sg.metrics.RecordForget(res.Count, duration, err)
	sg.logger.LogForget(ctx, res.Count, err)
	return res, err
}

// RegisterStatement names a reusable condition fragment. Rules refer to
// it with logic.NewRef(name); references resolve when the rule set is
// next used.
func (sg *Symgo) RegisterStatement(name string, node logic.Node) error {
	if sg == nil || sg.store == nil {
		return fmt.Errorf("symgo: engine not initialized")
	}
	if name == "" {
		return fmt.Errorf("symgo: statement name must not be empty")
	}
	if node == nil {
		return fmt.Errorf("symgo: statement %q: node must not be nil", name)
	}

	sg.mu.Lock()
	sg.refs[name] = node
	sg.dirty = true
	sg.mu.Unlock()

	return nil
}

// RegisterRule adds an inference rule. Condition and conclusion may
// contain references to registered statements or to other rules'
// names; resolution is deferred until the rule set is next used, so
// registration order does not matter. A named rule's conclusion also
// becomes referable under the rule's name unless a statement already
// claims it.
func (sg *Symgo) RegisterRule(name string, condition, conclusion logic.Node) error {
	if sg == nil || sg.store == nil {
		return fmt.Errorf("symgo: engine not initialized")
	}
	if condition == nil || conclusion == nil {
		return fmt.Errorf("symgo: rule %q: condition and conclusion must not be nil", name)
	}

	sg.mu.Lock()
	sg.ruleDefs = append(sg.ruleDefs, ruleDef{name: name, condition: condition, conclusion: conclusion})
	if name != "" {
		if _, ok := sg.refs[name]; !ok {
			sg.refs[name] = conclusion
		}
	}
	sg.dirty = true
	sg.mu.Unlock()

	return nil
}

// Rules returns the resolved rule set, rebuilding it if registrations
// happened since the last use.
func (sg *Symgo) Rules() ([]*logic.Rule, error) {
	if sg == nil || sg.store == nil {
		return nil, fmt.Errorf("symgo: engine not initialized")
	}

	sg.mu.Lock()
	rules, err := sg.resolvedRulesLocked()
	sg.mu.Unlock()

	return rules, translateError(err)
}

func (sg *Symgo) resolvedRulesLocked() ([]*logic.Rule, error) {
	if !sg.dirty && sg.rules != nil {
		return sg.rules, nil
	}

	rules := make([]*logic.Rule, 0, len(sg.ruleDefs))
	for _, def := range sg.ruleDefs {
		condition, err := logic.ResolveRefs(def.condition, sg.refs)
		if err != nil {
			return nil, fmt.Errorf("symgo: rule %q: %w", def.name, err)
		}
		conclusion, err := logic.ResolveRefs(def.conclusion, sg.refs)
		if err != nil {
			return nil, fmt.Errorf("symgo: rule %q: %w", def.name, err)
		}
		rule, err := logic.NewRule(sg.space, def.name, condition, conclusion)
		if err != nil {
			return nil, fmt.Errorf("symgo: rule %q: %w", def.name, err)
		}
		rules = append(rules, rule)
	}

	sg.rules = rules
	sg.dirty = false
	return rules, nil
}

// Prove attempts to derive the ground goal by backward chaining: a
// direct fact at usable existence proves immediately; otherwise rules
// whose conclusions unify with the goal are tried in registration
// order. An unprovable goal is a falsy result, not an error.
func (sg *Symgo) Prove(ctx context.Context, goal *logic.Statement) (ProofResult, error) {
	if sg == nil || sg.store == nil {
		return ProofResult{}, fmt.Errorf("symgo: engine not initialized")
	}
	if goal == nil {
		return ProofResult{}, fmt.Errorf("symgo: goal must not be nil")
	}
	start := time.Now()

	sg.mu.Lock()
	res, err := sg.proveLocked(goal)
	sg.mu.Unlock()

	duration := time.Since(start)
	err = translateError(err)
	sg.metrics.RecordProve(duration, err)
	sg.logger.LogProve(ctx, goal.String(), res.Proven, err)
	return res, err
}

// ProveString parses a fact string such as "IS_A(Tweety, bird)" and
// proves it.
func (sg *Symgo) ProveString(ctx context.Context, fact string) (ProofResult, error) {
	if sg == nil || sg.store == nil {
		return ProofResult{}, fmt.Errorf("symgo: engine not initialized")
	}

	goal, err := logic.ParseStatement(fact)
	if err != nil {
		return ProofResult{}, translateError(err)
	}
	return sg.Prove(ctx, goal)
}

func (sg *Symgo) proveLocked(goal *logic.Statement) (ProofResult, error) {
	rules, err := sg.resolvedRulesLocked()
	if err != nil {
		return ProofResult{}, err
	}

	p := &prover{sg: sg, rules: rules}
	proof, proven := p.Prove(goal, 0)
	if !proven {
		return ProofResult{}, nil
	}
	return ProofResult{Proven: true, Confidence: proof.Confidence, Steps: proof.Steps}, nil
}

// prover implements unify.ConditionProver over the fact store and the
// resolved rule set. Compounds prove structurally: AND requires every
// part and multiplies confidences, OR takes the first proven part, NOT
// is negation as failure.
type prover struct {
	sg    *Symgo
	rules []*logic.Rule
}

func (p *prover) Prove(condition logic.Node, depth int) (unify.Proof, bool) {
	switch n := condition.(type) {
	case *logic.Statement:
		return p.proveStatement(n, depth)
	case *logic.Compound:
		return p.proveCompound(n, depth)
	}
	return unify.Proof{}, false
}

func (p *prover) proveStatement(stmt *logic.Statement, depth int) (unify.Proof, bool) {
	if proof, ok := p.factProof(stmt); ok {
		return proof, true
	}

	for _, rule := range p.rules {
		res := p.sg.unifier.Unify(stmt, rule, depth, p)
		if res.Valid {
			return unify.Proof{Confidence: res.Confidence, Steps: res.Steps}, true
		}
	}
	return unify.Proof{}, false
}

// factProof resolves a ground binary statement directly against the
// store. Premises need at least Possible existence.
func (p *prover) factProof(stmt *logic.Statement) (unify.Proof, bool) {
	if len(stmt.Args) != 2 {
		return unify.Proof{}, false
	}
	subject, ok := stmt.Args[0].(logic.Literal)
	if !ok {
		return unify.Proof{}, false
	}
	object, ok := stmt.Args[1].(logic.Literal)
	if !ok {
		return unify.Proof{}, false
	}

	f, ok := p.sg.store.BestFact(subject.Value, stmt.Operator, object.Value)
	if !ok || f.Existence < kb.Possible {
		return unify.Proof{}, false
	}
	return unify.Proof{
		Confidence: f.Existence.Confidence(),
		Steps:      []string{"fact " + f.Triple()},
	}, true
}

func (p *prover) proveCompound(c *logic.Compound, depth int) (unify.Proof, bool) {
	switch c.Kind {
	case logic.And:
		confidence := 1.0
		var steps []string
		for _, part := range c.Parts {
			proof, ok := p.Prove(part, depth)
			if !ok {
				return unify.Proof{}, false
			}
			confidence *= proof.Confidence
			steps = append(steps, proof.Steps...)
		}
		return unify.Proof{Confidence: confidence, Steps: steps}, true

	case logic.Or:
		for _, part := range c.Parts {
			if proof, ok := p.Prove(part, depth); ok {
				return proof, true
			}
		}
		return unify.Proof{}, false

	case logic.Not:
		if len(c.Parts) != 1 {
			return unify.Proof{}, false
		}
		if _, ok := p.Prove(c.Parts[0], depth); ok {
			return unify.Proof{}, false
		}
		return unify.Proof{
			Confidence: 1.0,
			Steps:      []string{"not " + unify.Instantiate(c.Parts[0], nil)},
		}, true
	}

	return unify.Proof{}, false
}

// Query asks the inference engine for the truth of a triple. The result
// carries the method that decided it and the supporting derivation
// steps; an undecidable triple comes back Unknown, never an error.
func (sg *Symgo) Query(ctx context.Context, subject, relation, object string) (infer.Result, error) {
	if sg == nil || sg.store == nil {
		return infer.Result{}, fmt.Errorf("symgo: engine not initialized")
	}
	start := time.Now()

	sg.mu.Lock()
	res := sg.engine.Infer(sg.store, subject, relation, object)
	sg.mu.Unlock()

	duration := time.Since(start)
	sg.metrics.RecordQuery(duration, nil)
	sg.logger.LogQuery(ctx, subject+" "+relation+" "+object, res.Truth.String(), nil)
	return res, nil
}

// ForwardChain saturates the store: derivable facts are asserted until
// a pass adds nothing or the iteration cap is hit. maxIterations <= 0
// uses the engine's configured default.
func (sg *Symgo) ForwardChain(ctx context.Context, maxIterations int) (infer.ChainResult, error) {
	if sg == nil || sg.store == nil {
		return infer.ChainResult{}, fmt.Errorf("symgo: engine not initialized")
	}
	start := time.Now()

	sg.mu.Lock()
	before := sg.store.NumFacts()
	res, err := sg.engine.ForwardChain(sg.store, maxIterations)
	if err == nil && sg.journal != nil {
		// Chain derivations only ever append, so the tail of the scan
		// order is exactly the delta to journal.
		for _, f := range sg.store.All()[before:] {
			if jerr := sg.journal.Assert(f.Subject, f.Relation, f.Object, f.Existence); jerr != nil {
				err = jerr
				break
			}
		}
	}
	sg.mu.Unlock()

	duration := time.Since(start)
	err = translateError(err)
	sg.metrics.RecordChain(res.Derived, duration, err)
	sg.logger.LogChain(ctx, res.Derived, res.Iterations, err)
	return res, err
}

// RegisterRelation makes the relation abducible by deriving its
// role-permutation from the relation name. Registration is idempotent.
func (sg *Symgo) RegisterRelation(relation string) {
	if sg == nil || sg.reasoner == nil {
		return
	}

	sg.mu.Lock()
	sg.reasoner.RegisterRelation(relation)
	sg.mu.Unlock()
}

// Abduce proposes the concept that best explains the observation under
// the registered relation. A nil hypothesis with a nil error means no
// concept cleared the plausibility threshold.
func (sg *Symgo) Abduce(ctx context.Context, observation hdc.Vector, relation string) (*reason.Hypothesis, error) {
	if sg == nil || sg.reasoner == nil {
		return nil, fmt.Errorf("symgo: engine not initialized")
	}

	sg.mu.Lock()
	h, err := sg.reasoner.Abduce(observation, relation)
	sg.mu.Unlock()

	return h, translateError(err)
}

// Analogize completes "a is to b as c is to ?" over concept regions.
func (sg *Symgo) Analogize(ctx context.Context, a, b, c string) (*reason.Analogy, error) {
	if sg == nil || sg.reasoner == nil {
		return nil, fmt.Errorf("symgo: engine not initialized")
	}

	sg.mu.Lock()
	an, err := sg.reasoner.Analogize(a, b, c)
	sg.mu.Unlock()

	return an, translateError(err)
}

// SnapshotFacts exports every fact as a portable record, best existence
// first per triple.
func (sg *Symgo) SnapshotFacts() []kb.FactRecord {
	if sg == nil || sg.store == nil {
		return nil
	}

	sg.mu.Lock()
	defer sg.mu.Unlock()
	return sg.store.SnapshotFacts()
}

// RestoreFacts replaces the fact population with the records. Records
// are validated before anything is mutated; concepts and their regions
// survive the swap. When a journal is active it is rebuilt so recovery
// reproduces the restored state.
func (sg *Symgo) RestoreFacts(ctx context.Context, records []kb.FactRecord) error {
	if sg == nil || sg.store == nil {
		return fmt.Errorf("symgo: engine not initialized")
	}

	sg.mu.Lock()
	err := sg.store.RestoreFacts(records)
	if err == nil {
		err = sg.persistRebuildLocked()
	}
	sg.mu.Unlock()

	return translateError(err)
}

// Space returns the engine's vector space.
func (sg *Symgo) Space() *hdc.Space {
	if sg == nil {
		return nil
	}
	return sg.space
}

// Relations returns the relation table for configuration. Declare
// symmetry, transitivity, inverses, defaults and compositions before
// serving queries.
func (sg *Symgo) Relations() *infer.Relations {
	if sg == nil {
		return nil
	}
	return sg.relations
}

// NumFacts returns the number of stored fact versions.
func (sg *Symgo) NumFacts() int {
	if sg == nil || sg.store == nil {
		return 0
	}

	sg.mu.Lock()
	defer sg.mu.Unlock()
	return sg.store.NumFacts()
}

// NumConcepts returns the number of known concepts.
func (sg *Symgo) NumConcepts() int {
	if sg == nil || sg.store == nil {
		return 0
	}

	sg.mu.Lock()
	defer sg.mu.Unlock()
	return sg.store.NumConcepts()
}
