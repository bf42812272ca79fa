package symgo

import (
	"log/slog"

	"github.com/hupe1980/symgo/archive"
	"github.com/hupe1980/symgo/codec"
	"github.com/hupe1980/symgo/infer"
	"github.com/hupe1980/symgo/journal"
	"github.com/hupe1980/symgo/reason"
	"github.com/hupe1980/symgo/unify"
)

type options struct {
	codec            codec.Codec
	theory           string
	relations        *infer.Relations
	unifyOptions     []func(*unify.Options)
	inferOptions     []func(*infer.Options)
	reasonOptions    []func(*reason.Options)
	metricsCollector MetricsCollector
	logger           *Logger
	journalPath      string
	journalOptions   []func(*journal.Options)
	snapshotPath     string // Path for auto-checkpoint snapshots
	compression      archive.Compression
}

// Option configures Symgo constructor/load behavior.
//
// Today options primarily exist to avoid exploding the API surface
// (e.g. codec-specific constructor variants).
//
// Breaking changes are expected while Symgo is pre-release.
type Option func(*options)

// WithCodec configures the codec used for snapshot payloads.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithTheory labels the stamp theory concept prototypes are drawn in.
// Engines with different theories stamp disjoint prototypes for the
// same labels; the default is hdc.DefaultTheory.
func WithTheory(theory string) Option {
	return func(o *options) {
		o.theory = theory
	}
}

// WithRelations supplies a pre-built relation table (symmetry,
// transitivity, inverses, defaults, compositions). Without it the
// engine starts from an empty table with the IS_A hierarchy.
func WithRelations(rel *infer.Relations) Option {
	return func(o *options) {
		o.relations = rel
	}
}

// WithUnifier tunes backward-chaining unification, e.g. the per-step
// confidence decay or the recursion depth limit.
func WithUnifier(optFns ...func(*unify.Options)) Option {
	return func(o *options) {
		o.unifyOptions = append(o.unifyOptions, optFns...)
	}
}

// WithInference tunes the inference engine, e.g. hierarchy walk depth
// or forward-chaining iteration limits.
func WithInference(optFns ...func(*infer.Options)) Option {
	return func(o *options) {
		o.inferOptions = append(o.inferOptions, optFns...)
	}
}

// WithReasoner tunes abduction and analogy, e.g. the confidence band
// thresholds or the diamond containment slack.
func WithReasoner(optFns ...func(*reason.Options)) Option {
	return func(o *options) {
		o.reasonOptions = append(o.reasonOptions, optFns...)
	}
}

// WithJournal configures mutation journaling for durability.
// The journal is immutable after engine creation - it cannot be
// enabled or disabled at runtime.
//
// Example:
//
//	symgo.Dense(8192).
//	    Journal("./data", func(o *journal.Options) {
//	        o.DurabilityMode = journal.DurabilityGroupCommit
//	        o.GroupCommitInterval = 10 * time.Millisecond
//	    }).
//	    Build()
func WithJournal(path string, optFns ...func(*journal.Options)) Option {
	return func(o *options) {
		o.journalPath = path
		o.journalOptions = optFns
	}
}

// WithSnapshotPath configures the path for automatic snapshots.
// When set along with journal auto-checkpoint thresholds
// (AutoCheckpointOps, AutoCheckpointMB), the engine saves a snapshot
// and truncates the journal whenever a threshold is exceeded, keeping
// recovery time bounded.
//
// Example:
//
//	eng, _ := symgo.Dense(8192).
//	    Journal("./data", func(o *journal.Options) {
//	        o.AutoCheckpointOps = 10000 // Auto-save every 10k ops
//	        o.AutoCheckpointMB = 100    // Or at 100MB journal size
//	    }).
//	    SnapshotPath("./data/snapshot.bin").
//	    Build()
func WithSnapshotPath(path string) Option {
	return func(o *options) {
		o.snapshotPath = path
	}
}

// WithSnapshotCompression configures the compression applied to
// snapshot payloads. The default is archive.CompressionZstd.
func WithSnapshotCompression(c archive.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &symgo.BasicMetricsCollector{}
//	eng, _ := symgo.New(space, symgo.WithMetricsCollector(metrics))
//	// ... use eng ...
//	stats := metrics.GetStats()
//	fmt.Printf("Asserts: %d, Avg latency: %dns\n", stats.AssertCount, stats.AssertAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := symgo.NewJSONLogger(slog.LevelInfo)
//	eng, _ := symgo.New(space, symgo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:            nil,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		compression:      archive.CompressionZstd,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
