package parser

import (
	"fmt"
	"testing"
)

// BenchmarkIsCandidate measures the cost of rejecting or accepting a line.
func BenchmarkIsCandidate(b *testing.B) {
	lines := []string{
		wsLine,
		"plain output from a build tool",
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		IsCandidate(lines[i%2])
	}
}

// BenchmarkExtractLastJSON measures tail extraction on a typical line.
func BenchmarkExtractLastJSON(b *testing.B) {
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		ExtractLastJSON(wsLine)
	}
}

// BenchmarkParseThroughput measures sustained lines/sec over a large batch.
func BenchmarkParseThroughput(b *testing.B) {
	p := New()

	lines := make([]string, 1000)
	for i := range lines {
		lines[i] = fmt.Sprintf(`2024-05-01 10:00:00 INFO [Tag%d] request %d done {"n":%d} `+
			`{"buildNumber":"%d","deviceName":"pixel","level":{"name":"INFO","value":3},"name":"Tag%d"}`,
			i%7, i, i, i, i%7)
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = p.Parse(lines[i%1000])
	}
}
