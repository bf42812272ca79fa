package symgo

import (
	"github.com/hupe1980/symgo/archive"
	"github.com/hupe1980/symgo/codec"
	"github.com/hupe1980/symgo/hdc"
	"github.com/hupe1980/symgo/infer"
	"github.com/hupe1980/symgo/journal"
	"github.com/hupe1980/symgo/reason"
	"github.com/hupe1980/symgo/unify"
)

// engineConfig holds the space-independent builder knobs shared by the
// dense and sparse builders. Builders copy by value, so fluent setters
// never alias.
type engineConfig struct {
	seed           *int64
	epsilon        float64
	theory         string
	relations      *infer.Relations
	decay          float64
	maxDepth       int
	certain        float64
	plausible      float64
	slack          int
	codec          codec.Codec
	logger         *Logger
	metrics        MetricsCollector
	journalEnabled bool
	journalPath    string
	journalOptions []func(*journal.Options)
	snapshotPath   string
	compression    *archive.Compression
}

func defaultEngineConfig() engineConfig {
	unifyDefaults := unify.DefaultOptions()
	reasonDefaults := reason.DefaultOptions()
	return engineConfig{
		epsilon:   hdc.DefaultOptions().OrthogonalityEpsilon,
		decay:     unifyDefaults.Decay,
		maxDepth:  unifyDefaults.MaxDepth,
		certain:   reasonDefaults.CertainThreshold,
		plausible: reasonDefaults.PlausibleThreshold,
	}
}

func (c engineConfig) assemble() []Option {
	opts := []Option{
		WithUnifier(func(o *unify.Options) {
			o.Decay = c.decay
			o.MaxDepth = c.maxDepth
		}),
		WithReasoner(func(o *reason.Options) {
			o.CertainThreshold = c.certain
			o.PlausibleThreshold = c.plausible
			o.Slack = c.slack
		}),
	}

	if c.theory != "" {
		opts = append(opts, WithTheory(c.theory))
	}
	if c.relations != nil {
		opts = append(opts, WithRelations(c.relations))
	}
	if c.codec != nil {
		opts = append(opts, WithCodec(c.codec))
	}
	if c.logger != nil {
		opts = append(opts, WithLogger(c.logger))
	}
	if c.metrics != nil {
		opts = append(opts, WithMetricsCollector(c.metrics))
	}
	if c.journalEnabled {
		opts = append(opts, WithJournal(c.journalPath, c.journalOptions...))
	}
	if c.snapshotPath != "" {
		opts = append(opts, WithSnapshotPath(c.snapshotPath))
	}
	if c.compression != nil {
		opts = append(opts, WithSnapshotCompression(*c.compression))
	}
	return opts
}

// =============================================================================
// Dense Builder (Immutable)
// =============================================================================

// Dense creates a builder for an engine over a dense bit space with the
// given geometry. Dense spaces use XOR binding and majority bundling.
//
// The builder is immutable - each method returns a new builder with the
// updated configuration. This ensures thread-safety and prevents
// accidental state sharing.
//
// Example:
//
//	eng, err := symgo.Dense(8192).
//	    Seed(42).
//	    Thresholds(0.9, 0.7).
//	    Journal("./data").
//	    Build()
func Dense(geometry int) DenseBuilder {
	return DenseBuilder{
		geometry:     geometry,
		engineConfig: defaultEngineConfig(),
	}
}

// DenseBuilder is an immutable fluent builder for creating dense-space
// engines. Each method returns a new builder with the updated
// configuration.
type DenseBuilder struct {
	geometry int
	engineConfig
}

// Seed sets the seed for the space's random generator, used by Random
// and sparse thinning. Stamps and permutations are derived from names,
// not from this seed. Default: 1.
func (b DenseBuilder) Seed(seed int64) DenseBuilder {
	b.seed = &seed
	return b
}

// Epsilon sets the orthogonality tolerance: how far from the chance
// similarity two vectors may sit and still count as unrelated.
// Default: 0.05.
func (b DenseBuilder) Epsilon(eps float64) DenseBuilder {
	b.epsilon = eps
	return b
}

// Theory labels the stamp theory concept prototypes are drawn in.
// Engines with different theories stamp disjoint prototypes for the
// same labels.
func (b DenseBuilder) Theory(theory string) DenseBuilder {
	b.theory = theory
	return b
}

// Relations supplies a pre-built relation table (symmetry, transitivity,
// inverses, defaults, compositions).
func (b DenseBuilder) Relations(rel *infer.Relations) DenseBuilder {
	b.relations = rel
	return b
}

// Decay sets the confidence decay applied per backward-chaining step.
// Default: 0.9. Recommended range: 0.8-1.0.
func (b DenseBuilder) Decay(decay float64) DenseBuilder {
	b.decay = decay
	return b
}

// MaxDepth sets the backward-chaining recursion limit.
// Default: 16.
func (b DenseBuilder) MaxDepth(depth int) DenseBuilder {
	b.maxDepth = depth
	return b
}

// Thresholds sets the abduction confidence bands: similarity at or above
// certain reports TRUE_CERTAIN, at or above plausible reports PLAUSIBLE,
// below plausible reports nothing.
// Default: 0.85, 0.65.
func (b DenseBuilder) Thresholds(certain, plausible float64) DenseBuilder {
	b.certain = certain
	b.plausible = plausible
	return b
}

// Slack widens the diamond containment gate during abduction.
// Default: geometry/8.
func (b DenseBuilder) Slack(slack int) DenseBuilder {
	b.slack = slack
	return b
}

// Logger sets the structured logger for operation tracing.
func (b DenseBuilder) Logger(l *Logger) DenseBuilder {
	b.logger = l
	return b
}

// Metrics sets the metrics collector for monitoring.
func (b DenseBuilder) Metrics(mc MetricsCollector) DenseBuilder {
	b.metrics = mc
	return b
}

// Codec sets the codec for snapshot payloads.
func (b DenseBuilder) Codec(c codec.Codec) DenseBuilder {
	b.codec = c
	return b
}

// Journal enables mutation journaling for durability.
func (b DenseBuilder) Journal(path string, optFns ...func(*journal.Options)) DenseBuilder {
	b.journalEnabled = true
	b.journalPath = path
	b.journalOptions = optFns
	return b
}

// SnapshotPath sets the path for automatic snapshots during journal
// auto-checkpoint. When set, the engine saves a snapshot and truncates
// the journal whenever journal thresholds are exceeded.
func (b DenseBuilder) SnapshotPath(path string) DenseBuilder {
	b.snapshotPath = path
	return b
}

// Compression sets the compression applied to snapshot payloads.
// Default: archive.CompressionZstd.
func (b DenseBuilder) Compression(c archive.Compression) DenseBuilder {
	b.compression = &c
	return b
}

// Build creates the dense-space engine.
func (b DenseBuilder) Build() (*Symgo, error) {
	space, err := hdc.New(b.geometry, func(o *hdc.Options) {
		o.Strategy = hdc.StrategyDense
		o.OrthogonalityEpsilon = b.epsilon
		if b.seed != nil {
			o.Seed = *b.seed
		}
	})
	if err != nil {
		return nil, err
	}

	return New(space, b.assemble()...)
}

// MustBuild creates the engine, panicking on error.
func (b DenseBuilder) MustBuild() *Symgo {
	sg, err := b.Build()
	if err != nil {
		panic(err)
	}
	return sg
}

// =============================================================================
// Sparse Builder (Immutable)
// =============================================================================

// Sparse creates a builder for an engine over a sparse bit space with
// the given geometry. Sparse spaces keep a small fraction of bits
// active and bind by thinned OR, trading capacity for cheaper vectors.
//
// The builder is immutable - each method returns a new builder with the
// updated configuration.
//
// Example:
//
//	eng, err := symgo.Sparse(16384).
//	    Density(1.0 / 32).
//	    Build()
func Sparse(geometry int) SparseBuilder {
	return SparseBuilder{
		geometry:     geometry,
		density:      hdc.DefaultOptions().SparseDensity,
		engineConfig: defaultEngineConfig(),
	}
}

// SparseBuilder is an immutable fluent builder for creating sparse-space
// engines. Each method returns a new builder with the updated
// configuration.
type SparseBuilder struct {
	geometry int
	density  float64
	engineConfig
}

// Seed sets the seed for the space's random generator, used by Random
// and sparse thinning. Stamps and permutations are derived from names,
// not from this seed. Default: 1.
func (b SparseBuilder) Seed(seed int64) SparseBuilder {
	b.seed = &seed
	return b
}

// Epsilon sets the orthogonality tolerance.
// Default: 0.05.
func (b SparseBuilder) Epsilon(eps float64) SparseBuilder {
	b.epsilon = eps
	return b
}

// Density sets the fraction of active bits per stamp.
// Default: 1/16. Recommended range: 1/64 to 1/8.
func (b SparseBuilder) Density(density float64) SparseBuilder {
	b.density = density
	return b
}

// Theory labels the stamp theory concept prototypes are drawn in.
func (b SparseBuilder) Theory(theory string) SparseBuilder {
	b.theory = theory
	return b
}

// Relations supplies a pre-built relation table (symmetry, transitivity,
// inverses, defaults, compositions).
func (b SparseBuilder) Relations(rel *infer.Relations) SparseBuilder {
	b.relations = rel
	return b
}

// Decay sets the confidence decay applied per backward-chaining step.
// Default: 0.9.
func (b SparseBuilder) Decay(decay float64) SparseBuilder {
	b.decay = decay
	return b
}

// MaxDepth sets the backward-chaining recursion limit.
// Default: 16.
func (b SparseBuilder) MaxDepth(depth int) SparseBuilder {
	b.maxDepth = depth
	return b
}

// Thresholds sets the abduction confidence bands.
// Default: 0.85, 0.65.
func (b SparseBuilder) Thresholds(certain, plausible float64) SparseBuilder {
	b.certain = certain
	b.plausible = plausible
	return b
}

// Slack widens the diamond containment gate during abduction.
// Default: geometry/8.
func (b SparseBuilder) Slack(slack int) SparseBuilder {
	b.slack = slack
	return b
}

// Logger sets the structured logger for operation tracing.
func (b SparseBuilder) Logger(l *Logger) SparseBuilder {
	b.logger = l
	return b
}

// Metrics sets the metrics collector for monitoring.
func (b SparseBuilder) Metrics(mc MetricsCollector) SparseBuilder {
	b.metrics = mc
	return b
}

// Codec sets the codec for snapshot payloads.
func (b SparseBuilder) Codec(c codec.Codec) SparseBuilder {
	b.codec = c
	return b
}

// Journal enables mutation journaling for durability.
func (b SparseBuilder) Journal(path string, optFns ...func(*journal.Options)) SparseBuilder {
	b.journalEnabled = true
	b.journalPath = path
	b.journalOptions = optFns
	return b
}

// SnapshotPath sets the path for automatic snapshots during journal
// auto-checkpoint.
func (b SparseBuilder) SnapshotPath(path string) SparseBuilder {
	b.snapshotPath = path
	return b
}

// Compression sets the compression applied to snapshot payloads.
// Default: archive.CompressionZstd.
func (b SparseBuilder) Compression(c archive.Compression) SparseBuilder {
	b.compression = &c
	return b
}

// Build creates the sparse-space engine.
func (b SparseBuilder) Build() (*Symgo, error) {
	space, err := hdc.New(b.geometry, func(o *hdc.Options) {
		o.Strategy = hdc.StrategySparse
		o.OrthogonalityEpsilon = b.epsilon
		o.SparseDensity = b.density
		if b.seed != nil {
			o.Seed = *b.seed
		}
	})
	if err != nil {
		return nil, err
	}

	return New(space, b.assemble()...)
}

// MustBuild creates the engine, panicking on error.
func (b SparseBuilder) MustBuild() *Symgo {
	sg, err := b.Build()
	if err != nil {
		panic(err)
	}
	return sg
}
