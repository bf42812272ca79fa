package hdc

import (
	"encoding/base64"
	"encoding/json"

	"github.com/bits-and-blooms/bitset"
)

// Vector is a fixed-geometry bit vector. Vectors are created through a
// Space and treated as immutable: every algebra operation returns a fresh
// vector. The zero Vector is invalid and is rejected by all Space
// operations with a geometry mismatch.
type Vector struct {
	geometry int
	bits     *bitset.BitSet
}

func newVector(geometry int) Vector {
	return Vector{geometry: geometry, bits: bitset.New(uint(geometry))}
}

// Geometry returns the vector's bit width, or 0 for the zero Vector.
func (v Vector) Geometry() int { return v.geometry }

// Bit reports whether bit i is set. Out-of-range indices report false.
func (v Vector) Bit(i int) bool {
	if v.bits == nil || i < 0 || i >= v.geometry {
		return false
	}
	return v.bits.Test(uint(i))
}

// Count returns the number of set bits.
func (v Vector) Count() int {
	if v.bits == nil {
		return 0
	}
	return int(v.bits.Count())
}

// Equal reports bit-exact equality. Vectors of different geometry are
// never equal.
func (v Vector) Equal(o Vector) bool {
	if v.geometry != o.geometry {
		return false
	}
	if v.bits == nil || o.bits == nil {
		return v.bits == o.bits
	}
	return v.bits.Equal(o.bits)
}

// Clone returns an independent copy that does not alias v's storage.
func (v Vector) Clone() Vector {
	if v.bits == nil {
		return Vector{}
	}
	return Vector{geometry: v.geometry, bits: v.bits.Clone()}
}

// Components returns the vector as 0/1 components, one int8 per axis.
// Diamond construction consumes this form.
func (v Vector) Components() []int8 {
	out := make([]int8, v.geometry)
	if v.bits == nil {
		return out
	}
	for i, ok := v.bits.NextSet(0); ok; i, ok = v.bits.NextSet(i + 1) {
		out[i] = 1
	}
	return out
}

// MarshalBinary encodes the vector for storage. The geometry travels
// inside the bitset encoding, so UnmarshalBinary recovers it without
// extra framing. The zero Vector encodes to an empty payload.
func (v Vector) MarshalBinary() ([]byte, error) {
	if v.bits == nil {
		return nil, nil
	}
	return v.bits.MarshalBinary()
}

// UnmarshalBinary decodes a vector produced by MarshalBinary. An empty
// payload yields the zero Vector.
func (v *Vector) UnmarshalBinary(data []byte) error {
	if len(data) == 0 {
		*v = Vector{}
		return nil
	}
	bits := new(bitset.BitSet)
	if err := bits.UnmarshalBinary(data); err != nil {
		return err
	}
	*v = Vector{geometry: int(bits.Len()), bits: bits}
	return nil
}

// MarshalJSON encodes the vector as a base64 string so vectors can ride
// inside codec-serialized snapshot records.
func (v Vector) MarshalJSON() ([]byte, error) {
	data, err := v.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return json.Marshal(base64.StdEncoding.EncodeToString(data))
}

// UnmarshalJSON decodes the base64 form produced by MarshalJSON.
func (v *Vector) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return err
	}
	return v.UnmarshalBinary(raw)
}
