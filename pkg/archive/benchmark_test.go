package archive

import (
	"bytes"
	"testing"

	"github.com/DataDog/zstd"
)

func BenchmarkUnwrap(b *testing.B) {
	data := make([]byte, 1024*1024)
	for i := range data {
		data[i] = byte(i % 251)
	}
	wrapped, err := Wrap(data, DefaultCompressionLevel)
	if err != nil {
		b.Fatal(err)
	}

	b.Run("NewCtx", func(b *testing.B) {
		b.SetBytes(int64(len(data)))
		for i := 0; i < b.N; i++ {
			if _, err := Unwrap(nil, wrapped); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("ReusedCtx", func(b *testing.B) {
		ctx := zstd.NewCtx()
		b.SetBytes(int64(len(data)))
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := Unwrap(ctx, wrapped); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("Stream", func(b *testing.B) {
		b.SetBytes(int64(len(data)))
		for i := 0; i < b.N; i++ {
			if _, err := ReadAll(bytes.NewReader(wrapped)); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func BenchmarkEncode(b *testing.B) {
	data := make([]byte, 1024*1024)
	for i := range data {
		data[i] = byte(i % 251)
	}

	for _, level := range []int{zstd.BestSpeed, zstd.DefaultCompression} {
		b.Run(zstdLevelName(level), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			for i := 0; i < b.N; i++ {
				ws := &seekableBuffer{Buffer: &bytes.Buffer{}}
				if err := Encode(ws, data, WithCompressionLevel(level)); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func zstdLevelName(level int) string {
	if level == zstd.BestSpeed {
		return "BestSpeed"
	}
	return "Default"
}
