package archive

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression defines the algorithm applied to snapshot payload sections.
type Compression uint8

const (
	// CompressionNone stores payloads uncompressed.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast, moderate ratio).
	CompressionLZ4 Compression = 1
	// CompressionZstd uses zstd block compression (better ratio).
	CompressionZstd Compression = 2
)

// String returns the canonical name of the compression algorithm.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ParseCompression parses a canonical compression name.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "none", "":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", name)
	}
}

// Section framing: [UncompressedSize:4][CompressedSize:4][Data...] in
// little-endian. CompressedSize == 0 marks a section stored raw, which
// also covers incompressible payloads.
const sectionHeaderSize = 8

var (
	errSectionTooSmall = errors.New("compressed section too small")
	errSectionSize     = errors.New("decompressed size mismatch")
)

// zstd encoder/decoder pools; encoders are expensive to construct.
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// Compress frames and compresses data as one section.
// Incompressible data (ratio > 0.9) is stored raw.
func (c Compression) Compress(data []byte) ([]byte, error) {
	var compressed []byte
	var err error

	switch c {
	case CompressionNone:
		// Framed but raw, so Decompress handles every algorithm uniformly.
	case CompressionLZ4:
		compressed, err = compressLZ4(data)
	case CompressionZstd:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, fmt.Errorf("unknown compression %q", c)
	}
	if err != nil {
		return nil, err
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		result := make([]byte, sectionHeaderSize+len(data))
		binary.LittleEndian.PutUint32(result[0:], uint32(len(data))) //nolint:gosec
		binary.LittleEndian.PutUint32(result[4:], 0)
		copy(result[sectionHeaderSize:], data)
		return result, nil
	}

	result := make([]byte, sectionHeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(result[0:], uint32(len(data)))       //nolint:gosec
	binary.LittleEndian.PutUint32(result[4:], uint32(len(compressed))) //nolint:gosec
	copy(result[sectionHeaderSize:], compressed)
	return result, nil
}

func compressLZ4(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil // Incompressible
	}
	return compressed[:n], nil
}

// Decompress reverses Compress.
func (c Compression) Decompress(data []byte) ([]byte, error) {
	if len(data) < sectionHeaderSize {
		return nil, errSectionTooSmall
	}

	uncompressedSize := binary.LittleEndian.Uint32(data[0:])
	compressedSize := binary.LittleEndian.Uint32(data[4:])

	if compressedSize == 0 {
		if uint32(len(data)) < sectionHeaderSize+uncompressedSize {
			return nil, errSectionTooSmall
		}
		return data[sectionHeaderSize : sectionHeaderSize+uncompressedSize], nil
	}

	if uint32(len(data)) < sectionHeaderSize+compressedSize {
		return nil, errSectionTooSmall
	}
	compressedData := data[sectionHeaderSize : sectionHeaderSize+compressedSize]
	result := make([]byte, uncompressedSize)

	switch c {
	case CompressionLZ4:
		n, err := lz4.UncompressBlock(compressedData, result)
		if err != nil {
			return nil, err
		}
		if uint32(n) != uncompressedSize { //nolint:gosec
			return nil, errSectionSize
		}
		return result, nil

	case CompressionZstd:
		dec := getZstdDecoder()
		decoded, err := dec.DecodeAll(compressedData, result[:0])
		zstdDecoderPool.Put(dec)
		if err != nil {
			return nil, err
		}
		if uint32(len(decoded)) != uncompressedSize { //nolint:gosec
			return nil, errSectionSize
		}
		return decoded, nil

	default:
		return nil, fmt.Errorf("section compressed with unknown algorithm %q", c)
	}
}
