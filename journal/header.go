package journal

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

var (
	journalMagic          = [4]byte{'S', 'G', 'J', '0'}
	journalHeaderVersion  = uint16(1)
	journalHeaderFixedLen = 16 // excludes variable bytes, reserved for future use
)

type journalHeaderInfo struct {
	Compressed       bool
	CompressionLevel int
	HeaderLen        int64
}

func writeJournalHeader(w io.Writer, info journalHeaderInfo) (int64, error) {
	var flags uint16
	if info.Compressed {
		flags |= 1
	}
	level := uint8(0)
	if info.Compressed {
		level = uint8(info.CompressionLevel)
	}

	buf := make([]byte, 0, journalHeaderFixedLen)
	buf = append(buf, journalMagic[:]...)
	var fixed [12]byte
	binary.LittleEndian.PutUint16(fixed[0:2], journalHeaderVersion)
	binary.LittleEndian.PutUint16(fixed[2:4], flags)
	fixed[4] = level
	// fixed[5:12] reserved
	buf = append(buf, fixed[:]...)

	if _, err := w.Write(buf); err != nil {
		return 0, fmt.Errorf("failed to write journal header: %w", err)
	}
	return int64(len(buf)), nil
}

func readJournalHeader(f *os.File) (journalHeaderInfo, bool, error) {
	if _, err := f.Seek(0, 0); err != nil {
		return journalHeaderInfo{}, false, fmt.Errorf("failed to seek journal: %w", err)
	}

	var magic [4]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		if err == io.EOF {
			return journalHeaderInfo{}, false, nil
		}
		return journalHeaderInfo{}, false, fmt.Errorf("failed to read journal header magic: %w", err)
	}
	if magic != journalMagic {
		return journalHeaderInfo{}, false, fmt.Errorf("unsupported journal format: invalid header magic")
	}

	fixed := make([]byte, journalHeaderFixedLen-4)
	if _, err := io.ReadFull(f, fixed); err != nil {
		return journalHeaderInfo{}, true, fmt.Errorf("failed to read journal header: %w", err)
	}

	version := binary.LittleEndian.Uint16(fixed[0:2])
	if version != journalHeaderVersion {
		return journalHeaderInfo{}, true, fmt.Errorf("unsupported journal header version: %d", version)
	}
	flags := binary.LittleEndian.Uint16(fixed[2:4])
	compressed := (flags & 1) != 0
	level := int(fixed[4])
	// fixed[5:12] reserved

	headerLen := int64(journalHeaderFixedLen)
	return journalHeaderInfo{
		Compressed:       compressed,
		CompressionLevel: level,
		HeaderLen:        headerLen,
	}, true, nil
}
