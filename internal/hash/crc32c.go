package hash

import (
	"encoding/hex"
	"hash"
	"hash/crc32"
	"hash/fnv"
)

// crc32cTable is pre-computed for CRC32-Castagnoli polynomial.
// Computing this once avoids repeated MakeTable calls.
var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// CRC32C computes the CRC32-Castagnoli checksum of data.
// Uses hardware acceleration when available (SSE4.2, ARM CRC).
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, crc32cTable)
}

// NewCRC32C returns a new CRC32-Castagnoli hash.Hash32.
// Uses hardware acceleration when available.
func NewCRC32C() hash.Hash32 {
	return crc32.New(crc32cTable)
}

// CRC32CHex returns the CRC32C checksum of data as an 8-character
// lowercase hex string. Rule identifiers are derived this way so that the
// same normalized signature yields the same id across process restarts and
// snapshot reloads.
func CRC32CHex(data []byte) string {
	var buf [4]byte
	sum := CRC32C(data)
	buf[0] = byte(sum >> 24)
	buf[1] = byte(sum >> 16)
	buf[2] = byte(sum >> 8)
	buf[3] = byte(sum)
	return hex.EncodeToString(buf[:])
}

// Seed derives a deterministic 64-bit seed from the given parts using
// FNV-64a with a 0x1f separator between parts. Name/theory stamping and
// per-relation permutations are seeded this way.
func Seed(parts ...string) uint64 {
	h := fnv.New64a()
	for i, p := range parts {
		if i > 0 {
			_, _ = h.Write([]byte{0x1f})
		}
		_, _ = h.Write([]byte(p))
	}
	return h.Sum64()
}
