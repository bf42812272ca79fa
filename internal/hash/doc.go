// Package hash provides hashing utilities for data integrity and
// deterministic naming.
//
// # CRC32-Castagnoli (CRC32C)
//
// All checksums in Symgo use CRC32-Castagnoli (CRC32C) which provides:
//
//   - Hardware acceleration on x86 (SSE4.2) and ARM (CRC extension)
//   - Superior error detection compared to CRC32-IEEE
//   - Industry standard (iSCSI, Btrfs, RocksDB, LevelDB)
//
// Checksums guard the journal header, the snapshot trailer, and rule
// identifiers (CRC32CHex of a normalized rule signature).
//
// # Usage
//
// For one-shot checksums:
//
//	checksum := hash.CRC32C(data)
//
// For streaming checksums:
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	checksum := h.Sum32()
//
// # Deterministic seeds
//
// Seed folds its string parts through FNV-64a. Equal inputs always produce
// equal seeds, which is what makes FromName stamping and per-relation
// permutations reproducible across processes.
package hash
