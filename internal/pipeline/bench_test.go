package pipeline

import (
	"testing"

	"github.com/loanlens/loanlens/internal/model"
	"github.com/loanlens/loanlens/internal/source"
)

func BenchmarkLoad(b *testing.B) {
	dir := b.TempDir()
	for i := 0; i < 8; i++ {
		writePartition(b, dir, string(rune('a'+i))+".csv", i*10000, 5000)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		result, err := Load(dir, nil)
		if err != nil {
			b.Fatal(err)
		}
		_ = result
	}
}

func BenchmarkParseFile(b *testing.B) {
	path := writePartition(b, b.TempDir(), "big.csv", 0, 50000)
	df := source.DiscoveredFile{Path: path}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		result := source.ParseFile(df)
		if result.Err != nil {
			b.Fatal(result.Err)
		}
	}
}

func BenchmarkCountBy(b *testing.B) {
	res, err := Load(writePartition(b, b.TempDir(), "big.csv", 0, 50000), nil)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := CountBy(res.Dataset, model.ColGrade, ByKey); err != nil {
			b.Fatal(err)
		}
	}
}
