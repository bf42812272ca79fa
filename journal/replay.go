package journal

import (
	"bufio"
	"fmt"
	"io"

	"github.com/hupe1980/symgo/kb"
)

// Replay replays all operations in the journal by calling the provided callback.
//
// Replay stops at a checkpoint marker; entries before it are covered by the
// snapshot the checkpoint followed.
func (j *Journal) Replay(callback func(entry Entry) error) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	// Seek to the start of the entry stream
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
		reader = bufio.NewReader(j.file)
	}

	for {
		var entry Entry
		if err := j.decodeEntry(reader, &entry); err != nil {
			if err == io.EOF {
				break
			}
			// Corrupted entry - stop replay
			return fmt.Errorf("journal corrupted at entry: %w", err)
		}

		// Stop at checkpoint
		if entry.Type == OpCheckpoint {
			break
		}

		// Apply operation
		if err := callback(entry); err != nil {
			return fmt.Errorf("failed to replay entry %d: %w", entry.SeqNum, err)
		}
	}

	// Seek back to end for appending
	if _, err := j.file.Seek(0, 2); err != nil {
		return err
	}

	return nil
}

// ReplayInto replays the journal into a fact store and returns the number of
// applied entries.
//
// Entries are triple-keyed, so upgrades resolve against the best version of
// the triple and removes against the version with the recorded level. Entries
// whose target no longer resolves are skipped; replay is idempotent because
// version unification absorbs repeated asserts.
func (j *Journal) ReplayInto(store *kb.Store) (int, error) {
	applied := 0

	err := j.Replay(func(entry Entry) error {
		switch entry.Type {
		case OpAssert:
			if _, err := store.AddFact(entry.Subject, entry.Relation, entry.Object, kb.WithExistence(entry.Existence)); err != nil {
				return err
			}
			applied++

		case OpUpgrade:
			if f, ok := store.BestFact(entry.Subject, entry.Relation, entry.Object); ok {
				store.UpgradeExistence(f.ID, entry.Existence)
				applied++
			}

		case OpRemove:
			if f, ok := factAtLevel(store, entry); ok {
				store.RemoveFact(f.ID)
				applied++
			}

		case OpProtect:
			store.Protect(entry.Subject)
			applied++

		case OpUnprotect:
			store.Unprotect(entry.Subject)
			applied++
		}
		return nil
	})
	if err != nil {
		return applied, err
	}

	return applied, nil
}

// factAtLevel resolves the fact version a remove entry targets.
func factAtLevel(store *kb.Store, entry Entry) (*kb.Fact, bool) {
	for _, f := range store.FactsBySubjectRelation(entry.Subject, entry.Relation, kb.Impossible) {
		if f.Object == entry.Object && f.Existence == entry.Existence {
			return f, true
		}
	}
	return nil, false
}
