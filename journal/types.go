package journal

import (
	"time"

	"github.com/hupe1980/symgo/kb"
)

// DurabilityMode defines the fsync behavior for journal writes.
type DurabilityMode int

const (
	// DurabilityAsync represents asynchronous durability.
	// No fsync, fastest writes but risk of data loss on crash.
	// Use for non-critical knowledge bases or when snapshots provide durability.
	DurabilityAsync DurabilityMode = iota

	// DurabilityGroupCommit represents group commit durability.
	// Batched fsync at regular intervals.
	// Balances throughput and durability by amortizing fsync cost across multiple operations.
	// Recommended for most production workloads.
	DurabilityGroupCommit

	// DurabilitySync represents synchronous durability.
	// fsync after every operation.
	// Slowest but strongest durability guarantee. Use for critical data.
	DurabilitySync
)

// OperationType represents the type of operation in the journal.
type OperationType uint8

const (
	// OpAssert records a fact insertion with its existence level.
	OpAssert OperationType = iota
	// OpUpgrade records an existence upgrade of a fact version.
	OpUpgrade
	// OpRemove records a fact removal.
	OpRemove
	// OpProtect records a concept being shielded from forgetting.
	OpProtect
	// OpUnprotect records removal of forget protection.
	OpUnprotect
	// OpCheckpoint represents a checkpoint marker.
	OpCheckpoint
)

// Entry represents a single entry in the journal.
//
// Entries are keyed by triple rather than fact ID because IDs are not
// stable across a restore. Protect and Unprotect carry the concept label
// in Subject.
type Entry struct {
	Type      OperationType
	SeqNum    uint64 // Sequence number for ordering
	Subject   string
	Relation  string
	Object    string
	Existence kb.Existence
}

// Options contains configuration for the journal.
type Options struct {
	// Path is the directory where journal files are stored.
	Path string

	// Compress enables zstd compression (2-3x smaller, slightly slower writes).
	// Recommended for production use to reduce disk I/O and storage costs.
	Compress bool

	// CompressionLevel sets the zstd compression level (1-22).
	// Default (3) provides good balance. Higher = better compression but slower.
	CompressionLevel int

	// AutoCheckpointOps triggers automatic checkpoint after N operations.
	// Set to 0 to disable operation-based checkpoints.
	AutoCheckpointOps int

	// AutoCheckpointMB triggers automatic checkpoint when the journal exceeds N megabytes.
	// Set to 0 to disable size-based checkpoints.
	AutoCheckpointMB int

	// DurabilityMode controls fsync behavior (Async, GroupCommit, Sync).
	// Default is DurabilityGroupCommit for balanced performance/durability.
	DurabilityMode DurabilityMode

	// GroupCommitInterval is the maximum time to wait before fsync in GroupCommit mode.
	// Shorter intervals provide better durability but lower throughput.
	// Default: 10ms (100 fsync/sec max)
	GroupCommitInterval time.Duration

	// GroupCommitMaxOps is the maximum operations to batch before fsync in GroupCommit mode.
	// Higher values increase throughput but increase potential data loss on crash.
	// Default: 100 ops
	GroupCommitMaxOps int
}

// DefaultOptions returns default journal options.
var DefaultOptions = Options{
	Path:                ".",
	Compress:            false,
	CompressionLevel:    3,
	AutoCheckpointOps:   10000,
	AutoCheckpointMB:    100,
	DurabilityMode:      DurabilityGroupCommit,
	GroupCommitInterval: 10 * time.Millisecond,
	GroupCommitMaxOps:   100,
}
