package journal

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hupe1980/symgo/kb"
)

// encodeEntry writes an entry in binary format.
// Format: [Type:1][SeqNum:8] then, for fact operations,
// [SubjectLen:4][Subject:N][RelationLen:4][Relation:N][ObjectLen:4][Object:N][Existence:1].
// Protect and Unprotect carry only the label field; Checkpoint carries no payload.
func (j *Journal) encodeEntry(entry *Entry) error {
	// Write operation type (1 byte)
	if err := binary.Write(j.writer, binary.LittleEndian, entry.Type); err != nil {
		return err
	}

	// Write sequence number (8 bytes)
	if err := binary.Write(j.writer, binary.LittleEndian, entry.SeqNum); err != nil {
		return err
	}

	switch entry.Type {
	case OpAssert, OpUpgrade, OpRemove:
		if err := writeField(j.writer, entry.Subject); err != nil {
			return err
		}
		if err := writeField(j.writer, entry.Relation); err != nil {
			return err
		}
		if err := writeField(j.writer, entry.Object); err != nil {
			return err
		}
		if err := binary.Write(j.writer, binary.LittleEndian, int8(entry.Existence)); err != nil {
			return err
		}
	case OpProtect, OpUnprotect:
		if err := writeField(j.writer, entry.Subject); err != nil {
			return err
		}
	case OpCheckpoint:
		// No payload.
	default:
		return fmt.Errorf("unsupported journal entry type: %v", entry.Type)
	}

	return nil
}

// decodeEntry reads an entry in binary format.
func (j *Journal) decodeEntry(reader io.Reader, entry *Entry) error {
	// Read operation type (1 byte)
	if err := binary.Read(reader, binary.LittleEndian, &entry.Type); err != nil {
		return err
	}

	// Read sequence number (8 bytes)
	if err := binary.Read(reader, binary.LittleEndian, &entry.SeqNum); err != nil {
		return err
	}

	switch entry.Type {
	case OpAssert, OpUpgrade, OpRemove:
		subject, err := readField(reader)
		if err != nil {
			return err
		}
		relation, err := readField(reader)
		if err != nil {
			return err
		}
		object, err := readField(reader)
		if err != nil {
			return err
		}
		var level int8
		if err := binary.Read(reader, binary.LittleEndian, &level); err != nil {
			return err
		}
		entry.Subject = subject
		entry.Relation = relation
		entry.Object = object
		entry.Existence = kb.Existence(level)
	case OpProtect, OpUnprotect:
		subject, err := readField(reader)
		if err != nil {
			return err
		}
		entry.Subject = subject
	case OpCheckpoint:
		// No payload.
	default:
		return fmt.Errorf("unsupported journal entry type: %v", entry.Type)
	}

	return nil
}

// writeField writes a length-prefixed string field.
func writeField(w io.Writer, s string) error {
	fieldLen := uint32(len(s)) //nolint:gosec
	if err := binary.Write(w, binary.LittleEndian, fieldLen); err != nil {
		return err
	}
	if fieldLen > 0 {
		if _, err := io.WriteString(w, s); err != nil {
			return err
		}
	}
	return nil
}

// readField reads a length-prefixed string field.
func readField(r io.Reader) (string, error) {
	var fieldLen uint32
	if err := binary.Read(r, binary.LittleEndian, &fieldLen); err != nil {
		return "", err
	}
	if fieldLen == 0 {
		return "", nil
	}
	buf := make([]byte, fieldLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func (j *Journal) flushLocked() error {
	if err := j.bufWriter.Flush(); err != nil {
		return fmt.Errorf("failed to flush buffer: %w", err)
	}
	if j.compressed {
		if err := j.compressor.Flush(); err != nil {
			return fmt.Errorf("failed to flush compressor: %w", err)
		}
	}
	return nil
}
