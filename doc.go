// Package symgo provides an embedded symbolic/vector knowledge engine for Go.
//
// Symgo keeps knowledge in two projections at once: facts are symbolic
// (subject, relation, object) triples with graded existence levels, and
// every concept named by a fact is simultaneously stamped into a
// high-dimensional binary vector space. The symbolic side supports exact
// rule-based reasoning; the vector side supports fuzzy recall, abduction
// and analogy. Features include:
//
//   - Hyperdimensional core: dense (XOR bind, majority bundle) and
//     sparse (thinned bind, Jaccard similarity) binary vector algebra
//     with seeded determinism
//   - Concept store with name-derived prototype stamps and diamond
//     regions widened by observation
//   - Versioned facts with existence levels (IMPOSSIBLE through
//     CERTAIN), monotone upgrades and per-triple version unification
//   - Backward chaining over registered rules: conclusion unification
//     with repeated-variable consistency, constructivist level pruning,
//     per-hop confidence decay
//   - Relation-aware queries: transitivity, symmetry, inverses,
//     inheritance over IS_A, defaults with exceptions, compositions,
//     and forward-chain saturation
//   - Vector-side reasoning: abduction over role-permuted bindings and
//     analogy over region geometry
//   - Controlled forgetting with glob selection, usage thresholds,
//     protection and dry runs
//   - Durability: binary journal with group commit, CRC-framed
//     snapshots, archive backends (memory, local, caching, S3 with a
//     DynamoDB commit store, MinIO)
//
// # Quick Start
//
// Build an engine with the fluent API, assert facts, and query:
//
//	ctx := context.Background()
//	sg, err := symgo.Dense(8192).
//	    Theory("zoo").
//	    Journal("./data").
//	    SnapshotPath("./data/zoo.snap").
//	    Build()
//	if err != nil {
//	    panic(err)
//	}
//	defer sg.Close()
//
//	sg.Relations().SetTransitive("IS_A")
//	sg.AddFact(ctx, "Dog", "IS_A", "mammal")
//	sg.AddFact(ctx, "mammal", "IS_A", "animal")
//
//	res, _ := sg.Query(ctx, "Dog", "IS_A", "animal")
//	fmt.Println(res.Truth) // TRUE_CERTAIN
//
// Register rules and prove goals by backward chaining:
//
//	sg.RegisterRule("flies",
//	    logic.NewCompound(logic.And,
//	        logic.NewStatement("IS_A", logic.Var("x"), logic.Lit("bird")),
//	        logic.NewCompound(logic.Not,
//	            logic.NewStatement("IS_A", logic.Var("x"), logic.Lit("penguin")))),
//	    logic.NewStatement("CAN", logic.Var("x"), logic.Lit("fly")))
//
//	proof, _ := sg.ProveString(ctx, "CAN(Tweety, fly)")
//	fmt.Println(proof.Proven, proof.Confidence, proof.Steps)
//
// # Durability Model
//
// Mutations apply to the in-memory store first and are then appended to
// the journal when one is configured. Recovery is explicit: construct
// the engine (New for journal-only setups, NewFromFile when a snapshot
// anchors the state) and call RecoverFromJournal before serving
// operations. With a snapshot path configured the journal
// auto-checkpoints, rewriting the snapshot file and truncating itself
// once its operation or size thresholds trip; Checkpoint does the same
// on demand.
//
// Region observations (Observe, ObserveSense) are not journaled. The
// learned regions persist through snapshots only, so configure a
// snapshot path or save explicitly when observations must survive a
// restart.
//
// # Snapshots and Archives
//
// SaveToFile and NewFromFile move complete engine states through
// CRC-checked snapshot files; SaveSnapshot and NewFromSnapshot do the
// same over io interfaces. SaveToArchive publishes a named snapshot to
// any archive backend and repoints the CURRENT marker; LoadLatest
// follows that marker:
//
//	arc, _ := s3.New(ctx, "knowledge-snapshots")
//	_ = sg.SaveToArchive(ctx, arc, "zoo-2026-08-25")
//	restored, _ := symgo.LoadLatest(ctx, arc)
//
// Snapshots carry the space configuration, so a restored engine
// reproduces the original's vectors bit for bit; prototypes and
// relation permutations are regenerated from names rather than stored.
package symgo
