package codec

import (
	"fmt"
	"testing"

	"github.com/hupe1980/symgo/kb"
)

func benchFacts(n int) []kb.FactRecord {
	level := kb.Demonstrated
	out := make([]kb.FactRecord, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, kb.FactRecord{
			Subject:   fmt.Sprintf("concept-%d", i),
			Relation:  "IS_A",
			Object:    fmt.Sprintf("class-%d", i%7),
			Existence: &level,
			Metadata: map[string]string{
				"source": "bench",
				"batch":  "2024-07",
			},
		})
	}
	return out
}

func benchConcepts(n, geometry int) []kb.ConceptRecord {
	out := make([]kb.ConceptRecord, 0, n)
	for i := 0; i < n; i++ {
		lo := make([]int8, geometry)
		hi := make([]int8, geometry)
		for j := range lo {
			lo[j] = int8(-((i + j) % 8))
			hi[j] = int8((i + j) % 8)
		}
		out = append(out, kb.ConceptRecord{
			Label:    fmt.Sprintf("concept-%d", i),
			Uses:     uint64(i),
			Diamonds: []kb.DiamondRecord{{Min: lo, Max: hi}},
		})
	}
	return out
}

func benchmarkCodecMarshal(b *testing.B, c Codec, v any) {
	b.Helper()
	b.ReportAllocs()

	warm, err := c.Marshal(v)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(warm)))

	var sink []byte
	b.ResetTimer()
	for b.Loop() {
		out, err := c.Marshal(v)
		if err != nil {
			b.Fatal(err)
		}
		sink = out
	}
	_ = sink
}

func benchmarkCodecUnmarshal[T any](b *testing.B, c Codec, data []byte, dst *T) {
	b.Helper()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))

	var v T
	b.ResetTimer()
	for b.Loop() {
		if err := c.Unmarshal(data, &v); err != nil {
			b.Fatal(err)
		}
	}
	if dst != nil {
		*dst = v
	}
}

func BenchmarkCodec_Marshal_Facts(b *testing.B) {
	facts := benchFacts(200)

	b.Run("stdlib", func(b *testing.B) { benchmarkCodecMarshal(b, JSON{}, facts) })
	b.Run("go-json", func(b *testing.B) { benchmarkCodecMarshal(b, GoJSON{}, facts) })
}

func BenchmarkCodec_Unmarshal_Facts(b *testing.B) {
	data := MustMarshal(JSON{}, benchFacts(200))

	b.Run("stdlib", func(b *testing.B) {
		var sink []kb.FactRecord
		benchmarkCodecUnmarshal(b, JSON{}, data, &sink)
		_ = sink
	})
	b.Run("go-json", func(b *testing.B) {
		var sink []kb.FactRecord
		benchmarkCodecUnmarshal(b, GoJSON{}, data, &sink)
		_ = sink
	})
}

func BenchmarkCodec_Marshal_Concepts(b *testing.B) {
	concepts := benchConcepts(50, 256)

	b.Run("stdlib", func(b *testing.B) { benchmarkCodecMarshal(b, JSON{}, concepts) })
	b.Run("go-json", func(b *testing.B) { benchmarkCodecMarshal(b, GoJSON{}, concepts) })
}

func BenchmarkCodec_Unmarshal_Concepts(b *testing.B) {
	data := MustMarshal(JSON{}, benchConcepts(50, 256))

	b.Run("stdlib", func(b *testing.B) {
		var sink []kb.ConceptRecord
		benchmarkCodecUnmarshal(b, JSON{}, data, &sink)
		_ = sink
	})
	b.Run("go-json", func(b *testing.B) {
		var sink []kb.ConceptRecord
		benchmarkCodecUnmarshal(b, GoJSON{}, data, &sink)
		_ = sink
	})
}
