package serializer

import (
	"reflect"
	"strings"
	"testing"
)

// newTargetFor returns a pointer to a fresh zero value of v's type.
func newTargetFor(v any) any {
	return reflect.New(reflect.TypeOf(v)).Interface()
}

// benchmarkValues returns representative workloads for targeted benchmarking
func benchmarkValues() map[string]any {
	return map[string]any{
		"Bool":        true,
		"Int":         123456,
		"Float":       3.14159265,
		"SmallString": "k",
		"LargeString": strings.Repeat("benchmark-payload-", 64),
		"Bytes1K":     make([]byte, 1024),
		"Bytes16K":    make([]byte, 1024*16),
		"IntSlice": []int{
			1, 2, 3, 4, 5, 6, 7, 8, 9, 10,
		},
		"StringMap": map[string]string{
			"alpha": "one", "beta": "two", "gamma": "three",
		},
		"FlatStruct": point{X: 42, Y: -42},
		"NestedStruct": profile{
			Name:    "benchmark",
			Age:     99,
			Tags:    []string{"a", "b", "c"},
			Ratings: map[string]float64{"x": 1.5, "y": 2.5},
			Home:    &point{X: 1, Y: 2},
			Active:  true,
		},
	}
}

// newBenchmarkLoader registers the struct workloads and warms the caches
func newBenchmarkLoader(b *testing.B) *Loader {
	b.Helper()

	ld := NewLoader(nil)
	for _, sample := range []any{point{}, profile{}} {
		if _, err := ld.Schemas().Register(sample); err != nil {
			b.Fatalf("Failed to register %T: %v", sample, err)
		}
	}
	return ld
}

// BenchmarkSerialize benchmarks encoding for various value shapes
func BenchmarkSerialize(b *testing.B) {
	values := benchmarkValues()
	ld := newBenchmarkLoader(b)

	for name, v := range values {
		b.Run(name, func(b *testing.B) {
			// Warm up tags and the resolution cache
			if _, err := ld.Serialize(v); err != nil {
				b.Fatalf("Failed to serialize: %v", err)
			}
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if _, err := ld.Serialize(v); err != nil {
					b.Fatalf("Failed to serialize: %v", err)
				}
			}
		})
	}
}

// BenchmarkDeserialize benchmarks decoding for various value shapes
func BenchmarkDeserialize(b *testing.B) {
	values := benchmarkValues()
	ld := newBenchmarkLoader(b)

	// Pre-serialize all workloads
	serialized := make(map[string][]byte, len(values))
	for name, v := range values {
		data, err := ld.Serialize(v)
		if err != nil {
			b.Fatalf("Failed to serialize %s: %v", name, err)
		}
		serialized[name] = data
	}

	for name, v := range values {
		b.Run(name, func(b *testing.B) {
			data := serialized[name]
			target := newTargetFor(v)
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if err := ld.Deserialize(data, target); err != nil {
					b.Fatalf("Failed to deserialize: %v", err)
				}
			}
		})
	}
}

// BenchmarkTaggedRoundTrip benchmarks the self-describing mode end to end
func BenchmarkTaggedRoundTrip(b *testing.B) {
	ld := newBenchmarkLoader(b)
	v := profile{
		Name: "tagged",
		Age:  1,
		Tags: []string{"x"},
		Ratings: map[string]float64{
			"r": 0.5,
		},
		Home: &point{X: 1, Y: 2},
	}

	if _, err := ld.SerializeTagged(v); err != nil {
		b.Fatalf("Failed to serialize: %v", err)
	}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		data, err := ld.SerializeTagged(v)
		if err != nil {
			b.Fatalf("Failed to serialize: %v", err)
		}
		if _, err := ld.DeserializeTagged(data); err != nil {
			b.Fatalf("Failed to deserialize: %v", err)
		}
	}
}

// BenchmarkSize reports the encoded size for each value shape
func BenchmarkSize(b *testing.B) {
	values := benchmarkValues()
	ld := newBenchmarkLoader(b)

	for name, v := range values {
		b.Run(name, func(b *testing.B) {
			data, err := ld.Serialize(v)
			if err != nil {
				b.Fatalf("Failed to serialize: %v", err)
			}

			// Report the size as a custom metric
			b.ReportMetric(float64(len(data)), "bytes")

			for i := 0; i < b.N; i++ {
				_ = data
			}
		})
	}
}
