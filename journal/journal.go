// Package journal provides a write-ahead mutation journal for durability and
// crash recovery of the fact store.
//
// Every assert, upgrade, remove, protect, and unprotect is persisted to disk
// before being acknowledged, keyed by triple so entries replay cleanly into a
// freshly built store. Fact operations are atomic in a single-owner store, so
// each operation is one journal entry.
//
// Features:
//   - Individual operation logging (Assert, Upgrade, Remove, Protect, Unprotect)
//   - Configurable fsync behavior for performance vs durability tradeoff
//   - Checkpoint support for log truncation after snapshots
//   - Sequential ordering via sequence numbers
package journal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/hupe1980/symgo/kb"
)

// Journal provides write-ahead logging of fact store mutations.
type Journal struct {
	mu               sync.Mutex
	file             *os.File
	writer           io.Writer     // May be compressed or direct
	bufWriter        *bufio.Writer // Buffered writer for performance
	compressor       *zstd.Encoder
	decompressor     *zstd.Decoder
	seqNum           uint64
	filePath         string
	compressed       bool
	compressionLevel int
	dataOffset       int64 // start of entry stream (after header)

	// Auto-checkpoint tracking
	autoCheckpointOps int          // Threshold for operations
	autoCheckpointMB  int          // Threshold for size in MB
	loggedOps         int          // Counter for logged operations
	checkpointFunc    func() error // Callback to trigger checkpoint

	// Group commit support (background goroutine lifecycle)
	durabilityMode      DurabilityMode
	groupCommitInterval time.Duration
	groupCommitMaxOps   int
	groupCommitTicker   *time.Ticker
	groupCommitStopCh   chan struct{}  // Shutdown signal for worker goroutine
	groupCommitPending  int            // Operations since last fsync
	groupCommitWg       sync.WaitGroup // Tracks worker goroutine lifecycle

	// Blocking group commit
	syncCond        *sync.Cond // Condition variable for blocking group commit
	persistedSeqNum uint64     // Highest sequence number persisted to disk
}

// FilePath returns the path to the journal file.
func (j *Journal) FilePath() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.filePath
}

// New creates a new Journal instance.
func New(optFns ...func(o *Options)) (*Journal, error) {
	opts := DefaultOptions

	for _, fn := range optFns {
		fn(&opts)
	}

	// Ensure directory exists
	if err := os.MkdirAll(opts.Path, 0750); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	filePath := filepath.Join(opts.Path, "symgo.journal")

	// Open or create journal file (we manage seek explicitly)
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_RDWR, 0600) //nolint:gosec // G304: Path is configurable
	if err != nil {
		return nil, fmt.Errorf("failed to open journal file: %w", err)
	}
	st, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat journal file: %w", err)
	}

	j := &Journal{
		file:                file,
		filePath:            filePath,
		compressionLevel:    opts.CompressionLevel,
		autoCheckpointOps:   opts.AutoCheckpointOps,
		autoCheckpointMB:    opts.AutoCheckpointMB,
		loggedOps:           0,
		durabilityMode:      opts.DurabilityMode,
		groupCommitInterval: opts.GroupCommitInterval,
		groupCommitMaxOps:   opts.GroupCommitMaxOps,
		groupCommitPending:  0,
	}
	j.syncCond = sync.NewCond(&j.mu)

	if err := j.initializeFile(st, opts); err != nil {
		_ = file.Close()
		return nil, err
	}

	// Position at the start of the entry stream before initializing codecs.
	if _, err := j.file.Seek(j.dataOffset, 0); err != nil {
		_ = j.file.Close()
		return nil, fmt.Errorf("failed to seek journal data offset: %w", err)
	}

	// Set up compression if enabled
	if j.compressed {
		level := zstd.EncoderLevelFromZstd(j.compressionLevel)
		compressor, err := zstd.NewWriter(j.file, zstd.WithEncoderLevel(level))
		if err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("failed to create compressor: %w", err)
		}
		j.compressor = compressor
		j.bufWriter = bufio.NewWriter(compressor)
		j.writer = j.bufWriter

		// Create decompressor for replay
		decompressor, err := zstd.NewReader(nil)
		if err != nil {
			_ = compressor.Close()
			_ = file.Close()
			return nil, fmt.Errorf("failed to create decompressor: %w", err)
		}
		j.decompressor = decompressor
	} else {
		// No compression - use buffered writer directly
		j.bufWriter = bufio.NewWriter(j.file)
		j.writer = j.bufWriter
	}

	// Read existing entries to determine next sequence number
	if err := j.scanForSeqNum(); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to scan journal: %w", err)
	}

	// Start group commit goroutine if in GroupCommit mode
	if j.durabilityMode == DurabilityGroupCommit && j.groupCommitInterval > 0 {
		j.groupCommitStopCh = make(chan struct{})
		j.groupCommitTicker = time.NewTicker(j.groupCommitInterval)
		j.groupCommitWg.Add(1)
		go j.groupCommitWorker()
	}

	return j, nil
}

// initializeFile handles the file opening and initialization logic for the journal.
func (j *Journal) initializeFile(info os.FileInfo, opts Options) error {
	if info.Size() == 0 {
		return j.writeNewHeader(opts)
	}
	return j.readExistingHeader()
}

func (j *Journal) writeNewHeader(opts Options) error {
	hdrLen, err := writeJournalHeader(j.file, journalHeaderInfo{
		Compressed:       opts.Compress,
		CompressionLevel: opts.CompressionLevel,
	})
	if err != nil {
		return fmt.Errorf("failed to write journal header: %w", err)
	}
	j.dataOffset = hdrLen
	j.compressed = opts.Compress
	return nil
}

func (j *Journal) readExistingHeader() error {
	hdrInfo, valid, err := readJournalHeader(j.file)
	if err != nil {
		return fmt.Errorf("failed to read journal header: %w", err)
	}
	if !valid {
		return fmt.Errorf("invalid journal header")
	}
	j.dataOffset = hdrInfo.HeaderLen
	j.compressed = hdrInfo.Compressed
	j.compressionLevel = hdrInfo.CompressionLevel
	return nil
}

// syncIfNeeded performs fsync based on the configured durability mode.
// Caller must hold j.mu.
func (j *Journal) syncIfNeeded() error {
	switch j.durabilityMode {
	case DurabilityAsync:
		// No fsync - fastest but least durable
		return nil

	case DurabilitySync:
		// Immediate fsync - slowest but most durable
		return j.file.Sync()

	case DurabilityGroupCommit:
		j.groupCommitPending++
		targetSeq := j.seqNum

		// Trigger immediate fsync if batch size threshold reached
		if j.groupCommitPending >= j.groupCommitMaxOps {
			if err := j.doGroupCommit(); err != nil {
				return err
			}
		} else {
			// Wait for background sync.
			// syncCond.Wait() releases j.mu, allowing the background worker
			// (or other writers) to acquire it and perform the sync.
			for j.persistedSeqNum < targetSeq {
				j.syncCond.Wait()
			}
		}
		return nil

	default:
		return nil
	}
}

// doGroupCommit performs the actual fsync and resets the pending counter.
// Caller must hold j.mu.
func (j *Journal) doGroupCommit() error {
	if j.groupCommitPending == 0 {
		return nil
	}

	if err := j.file.Sync(); err != nil {
		return err
	}

	j.groupCommitPending = 0
	j.persistedSeqNum = j.seqNum
	j.syncCond.Broadcast()
	return nil
}

// groupCommitWorker runs in a background goroutine and performs periodic fsync.
func (j *Journal) groupCommitWorker() {
	defer j.groupCommitWg.Done()

	if j.groupCommitTicker == nil {
		return
	}

	for {
		select {
		case <-j.groupCommitStopCh:
			// Final fsync before shutdown
			j.mu.Lock()
			_ = j.doGroupCommit()
			j.mu.Unlock()
			return

		case <-j.groupCommitTicker.C:
			j.mu.Lock()
			_ = j.doGroupCommit()
			j.mu.Unlock()
		}
	}
}

// scanForSeqNum scans the journal to find the highest sequence number.
func (j *Journal) scanForSeqNum() error {
	// Seek to the start of the entry stream for reading
	if _, err := j.file.Seek(j.dataOffset, 0); err != nil {
		return err
	}

	var reader io.Reader
	if j.compressed {
		if err := j.decompressor.Reset(j.file); err != nil {
			return fmt.Errorf("failed to reset decompressor: %w", err)
		}
		reader = j.decompressor
	} else {
		reader = j.file
	}

	var maxSeqNum uint64

	for {
		var entry Entry
		if err := j.decodeEntry(reader, &entry); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			// Corrupted entry - stop here
			break
		}
		if entry.SeqNum > maxSeqNum {
			maxSeqNum = entry.SeqNum
		}
	}

	j.seqNum = maxSeqNum

	// Seek back to end for appending
	if _, err := j.file.Seek(0, 2); err != nil {
		return err
	}

	return nil
}

// Assert logs a fact insertion.
func (j *Journal) Assert(subject, relation, object string, level kb.Existence) error {
	return j.logFact(OpAssert, subject, relation, object, level)
}

// Upgrade logs an existence upgrade for the best version of a triple.
func (j *Journal) Upgrade(subject, relation, object string, level kb.Existence) error {
	return j.logFact(OpUpgrade, subject, relation, object, level)
}

// Remove logs removal of the fact version identified by triple and level.
func (j *Journal) Remove(subject, relation, object string, level kb.Existence) error {
	return j.logFact(OpRemove, subject, relation, object, level)
}

// Protect logs a concept being shielded from forgetting.
func (j *Journal) Protect(label string) error {
	return j.logLabel(OpProtect, label)
}

// Unprotect logs removal of forget protection.
func (j *Journal) Unprotect(label string) error {
	return j.logLabel(OpUnprotect, label)
}

func (j *Journal) logFact(op OperationType, subject, relation, object string, level kb.Existence) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.seqNum++
	entry := Entry{Type: op, SeqNum: j.seqNum, Subject: subject, Relation: relation, Object: object, Existence: level}
	if err := j.encodeEntry(&entry); err != nil {
		return fmt.Errorf("failed to encode journal entry: %w", err)
	}
	return j.finishLocked()
}

func (j *Journal) logLabel(op OperationType, label string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.seqNum++
	entry := Entry{Type: op, SeqNum: j.seqNum, Subject: label}
	if err := j.encodeEntry(&entry); err != nil {
		return fmt.Errorf("failed to encode journal entry: %w", err)
	}
	return j.finishLocked()
}

// finishLocked flushes the entry, enforces the durability mode, and checks
// auto-checkpoint thresholds. Caller must hold j.mu.
func (j *Journal) finishLocked() error {
	if err := j.flushLocked(); err != nil {
		return err
	}
	j.loggedOps++
	if err := j.syncIfNeeded(); err != nil {
		return err
	}
	return j.maybeCheckpointLocked()
}

// Checkpoint writes a checkpoint marker and truncates the journal.
// This should be called after a successful snapshot/save.
func (j *Journal) Checkpoint() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.seqNum++
	entry := Entry{
		Type:   OpCheckpoint,
		SeqNum: j.seqNum,
	}

	if err := j.encodeEntry(&entry); err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}

	if err := j.flushLocked(); err != nil {
		return err
	}

	// Checkpoint is an explicit durability boundary.
	if err := j.file.Sync(); err != nil {
		return err
	}

	// Truncate the file after checkpoint
	return j.truncate()
}

// truncate truncates the journal file (called after checkpoint).
func (j *Journal) truncate() error {
	// Flush bufWriter before closing
	if j.bufWriter != nil {
		if err := j.bufWriter.Flush(); err != nil {
			return fmt.Errorf("failed to flush buffer: %w", err)
		}
	}

	// Close compressor if using compression
	if j.compressed && j.compressor != nil {
		if err := j.compressor.Close(); err != nil {
			return fmt.Errorf("failed to close compressor: %w", err)
		}
	}

	// Close current file
	if err := j.file.Close(); err != nil {
		return err
	}

	// Create new empty file
	file, err := os.OpenFile(j.filePath, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to truncate journal file: %w", err)
	}

	j.file = file

	// Always write a self-describing header after truncation.
	hdrLen, err := writeJournalHeader(j.file, journalHeaderInfo{
		Compressed:       j.compressed,
		CompressionLevel: j.compressionLevel,
	})
	if err != nil {
		_ = j.file.Close()
		return err
	}
	j.dataOffset = hdrLen
	if _, err := j.file.Seek(j.dataOffset, 0); err != nil {
		_ = j.file.Close()
		return fmt.Errorf("failed to seek journal data offset: %w", err)
	}

	// Recreate compressor and bufWriter if using compression
	if j.compressed {
		level := zstd.EncoderLevelFromZstd(j.compressionLevel)
		compressor, err := zstd.NewWriter(file, zstd.WithEncoderLevel(level))
		if err != nil {
			_ = file.Close()
			return fmt.Errorf("failed to recreate compressor: %w", err)
		}
		j.compressor = compressor
		j.bufWriter = bufio.NewWriter(compressor)
		j.writer = j.bufWriter
	} else {
		j.bufWriter = bufio.NewWriter(file)
		j.writer = j.bufWriter
	}

	j.seqNum = 0

	return nil
}

// Close closes the journal file gracefully.
//
// This method:
//  1. Signals the group commit worker to stop (if running)
//  2. Waits for the worker to finish (ensuring clean shutdown)
//  3. Flushes and closes the file
//
// After Close() returns, the journal is no longer usable.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	// Check if already closed (idempotency)
	if j.file == nil {
		return nil
	}

	// Stop group commit worker if running (only once)
	if j.groupCommitTicker != nil {
		// Signal worker to stop first
		close(j.groupCommitStopCh)
		j.mu.Unlock()
		j.groupCommitWg.Wait() // Wait for worker to finish (ensures no goroutine leak)
		j.mu.Lock()
		// Now safe to stop and nil the ticker
		j.groupCommitTicker.Stop()
		j.groupCommitTicker = nil
	}

	// Flush bufWriter before closing
	if j.bufWriter != nil {
		if err := j.bufWriter.Flush(); err != nil {
			return fmt.Errorf("failed to flush buffer: %w", err)
		}
	}

	// Close compressor if using compression
	if j.compressed && j.compressor != nil {
		if err := j.compressor.Close(); err != nil {
			return fmt.Errorf("failed to close compressor: %w", err)
		}
	}

	// Close decompressor if it exists
	if j.decompressor != nil {
		j.decompressor.Close()
	}

	err := j.file.Close()
	j.file = nil // Mark as closed
	return err
}

// Len returns the number of entries in the journal (approximate, for testing).
func (j *Journal) Len() (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	// Save current position
	currentPos, err := j.file.Seek(0, 1)
	if err != nil {
		return 0, err
	}

	// Seek to the start of the entry stream
	if _, err := j.file.Seek(j.dataOffset, 0); err != nil {
		return 0, err
	}

	var reader io.Reader
	if j.compressed {
		if err := j.decompressor.Reset(j.file); err != nil {
			return 0, fmt.Errorf("failed to reset decompressor: %w", err)
		}
		reader = j.decompressor
	} else {
		reader = bufio.NewReader(j.file)
	}

	count := 0

	for {
		var entry Entry
		if err := j.decodeEntry(reader, &entry); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			break
		}
		count++
	}

	// Restore position
	if _, err := j.file.Seek(currentPos, 0); err != nil {
		return count, err
	}

	return count, nil
}

// SetCheckpointCallback sets the function to call when auto-checkpoint is triggered.
// The callback is typically the facade's snapshot save.
func (j *Journal) SetCheckpointCallback(fn func() error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.checkpointFunc = fn
}

// maybeCheckpointLocked checks if auto-checkpoint thresholds are exceeded and triggers checkpoint.
// Must be called with j.mu held.
func (j *Journal) maybeCheckpointLocked() error {
	// Check operation count threshold
	if j.autoCheckpointOps > 0 && j.loggedOps >= j.autoCheckpointOps {
		return j.triggerAutoCheckpointLocked()
	}

	// Check file size threshold
	if j.autoCheckpointMB > 0 {
		stat, err := j.file.Stat()
		if err == nil {
			sizeMB := stat.Size() / (1024 * 1024)
			if sizeMB >= int64(j.autoCheckpointMB) {
				return j.triggerAutoCheckpointLocked()
			}
		}
	}

	return nil
}

// triggerAutoCheckpointLocked executes the checkpoint callback.
// Must be called with j.mu held.
func (j *Journal) triggerAutoCheckpointLocked() error {
	if j.checkpointFunc == nil {
		// No checkpoint callback set; skip auto-checkpoint
		return nil
	}

	// Reset operation counter
	j.loggedOps = 0

	// Release lock before calling checkpoint (callback may acquire locks)
	j.mu.Unlock()
	err := j.checkpointFunc()
	j.mu.Lock()

	return err
}
