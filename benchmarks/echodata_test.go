package benchmarks

import (
	"encoding/json"
	"testing"

	"sounder-spec/specs"
)

// Benchmark EchodataSpec with minimal data (no groups)
func BenchmarkEchodata_Minimal_Memory(b *testing.B) {
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = specs.EchodataSpec{
			SonarModel:       "",
			SourceFile:       "",
			ConvertedRawPath: "",
			Groups:           nil,
		}
	}
}

// Benchmark EchodataSpec with realistic data
func BenchmarkEchodata_Realistic_Memory(b *testing.B) {
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = specs.EchodataSpec{
			SonarModel: "EK60",
			SourceFile: "OOI-D20170821-T163049.raw",
			Groups: map[string]*specs.DatasetSpec{
				specs.GroupEnvironment: {
					Dimensions: []specs.DimensionSpec{{Name: "ping_time", Size: 3}},
					Variables: []specs.VariableSpec{
						{Name: "ping_time", Dimensions: []string{"ping_time"}, Values: []int64{1000, 2000, 3000}},
						{Name: "temperature", Dimensions: []string{"ping_time"}, Values: []float64{8.1, 8.2, 8.2}},
					},
					Attrs: map[string]any{"sonar_model": "EK60"},
				},
			},
		}
	}
}

// Benchmark JSON serialization of a realistic EchodataSpec
func BenchmarkEchodata_JSONMarshal(b *testing.B) {
	ed := specs.EchodataSpec{
		SonarModel: "EK60",
		SourceFile: "OOI-D20170821-T163049.raw",
		Groups: map[string]*specs.DatasetSpec{
			specs.GroupEnvironment: {
				Dimensions: []specs.DimensionSpec{{Name: "ping_time", Size: 3}},
				Variables: []specs.VariableSpec{
					{Name: "ping_time", Dimensions: []string{"ping_time"}, Values: []int64{1000, 2000, 3000}},
					{Name: "temperature", Dimensions: []string{"ping_time"}, Values: []float64{8.1, 8.2, 8.2}},
				},
			},
		},
	}
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, err := json.Marshal(ed)
		if err != nil {
			b.Fatal(err)
		}
	}
}
