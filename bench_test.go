package tmod

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	tmodhttp "github.com/campbellcole/tmod-unpacker/http"
	"github.com/campbellcole/tmod-unpacker/internal/testutil"
)

var benchSinkStats ExtractStats

type benchPattern string

const (
	benchPatternCompressible benchPattern = "compressible"
	benchPatternRandom       benchPattern = "random"

	benchDirCount = 16
)

// makeBenchContainer builds a container of fileCount entries of fileSize bytes.
// Compressible files are deflated; random files are stored.
func makeBenchContainer(b *testing.B, fileCount, fileSize int, pattern benchPattern) []byte {
	b.Helper()

	builder := testutil.NewBuilder()
	rng := rand.New(rand.NewPCG(1, 2)) //nolint:gosec // reproducible benchmark data
	for i := range fileCount {
		name := fmt.Sprintf("Content/dir%02d/file%05d.dat", i%benchDirCount, i)
		content := make([]byte, fileSize)
		switch pattern {
		case benchPatternRandom:
			for j := range content {
				content[j] = byte(rng.Uint32())
			}
			builder.AddStored(name, content)
		default:
			fillByte := byte('a' + (i % 26))
			for j := range content {
				content[j] = fillByte
			}
			if len(content) > 0 {
				content[0] = byte(i)
			}
			builder.AddCompressed(b, name, content)
		}
	}
	return builder.Bytes()
}

func BenchmarkExtract(b *testing.B) {
	cases := []struct {
		name      string
		fileCount int
		fileSize  int
		pattern   benchPattern
	}{
		{name: "files=128/size=16k/compressible", fileCount: 128, fileSize: 16 << 10, pattern: benchPatternCompressible},
		{name: "files=128/size=16k/random", fileCount: 128, fileSize: 16 << 10, pattern: benchPatternRandom},
		{name: "files=16/size=1m/compressible", fileCount: 16, fileSize: 1 << 20, pattern: benchPatternCompressible},
	}

	for _, bc := range cases {
		data := makeBenchContainer(b, bc.fileCount, bc.fileSize, bc.pattern)
		total := int64(bc.fileCount * bc.fileSize)

		b.Run(bc.name+"/stream", func(b *testing.B) {
			b.SetBytes(total)
			b.ReportAllocs()
			for b.Loop() {
				a, err := NewReader(bytes.NewReader(data))
				if err != nil {
					b.Fatal(err)
				}
				benchSinkStats, err = a.Extract(b.TempDir())
				if err != nil {
					b.Fatal(err)
				}
			}
		})

		for _, workers := range []int{1, 4, 0} {
			b.Run(fmt.Sprintf("%s/source/workers=%d", bc.name, workers), func(b *testing.B) {
				a, err := OpenSource(testutil.NewMockByteSource(data))
				if err != nil {
					b.Fatal(err)
				}
				b.SetBytes(total)
				b.ReportAllocs()
				for b.Loop() {
					benchSinkStats, err = a.Extract(b.TempDir(), ExtractWithWorkers(workers))
					if err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkExtractDirectWrites(b *testing.B) {
	data := makeBenchContainer(b, 256, 4<<10, benchPatternCompressible)
	a, err := OpenSource(testutil.NewMockByteSource(data))
	if err != nil {
		b.Fatal(err)
	}

	for _, direct := range []bool{false, true} {
		b.Run(fmt.Sprintf("direct=%t", direct), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				benchSinkStats, err = a.Extract(b.TempDir(), ExtractWithDirectWrites(direct))
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkExtractHTTPMatrix(b *testing.B) {
	if os.Getenv("TMOD_BENCH_HTTP") == "" {
		b.Skip("TMOD_BENCH_HTTP not set")
	}

	cases := []struct {
		name    string
		latency time.Duration
	}{
		{name: "latency=0"},
		{name: "latency=5ms", latency: 5 * time.Millisecond},
		{name: "latency=20ms", latency: 20 * time.Millisecond},
	}

	const fileCount = 64
	const fileSize = 64 << 10
	data := makeBenchContainer(b, fileCount, fileSize, benchPatternCompressible)

	for _, bc := range cases {
		b.Run(bc.name, func(b *testing.B) {
			server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
				if bc.latency > 0 {
					time.Sleep(bc.latency)
				}
				nethttp.ServeContent(w, r, "bench.tmod", time.Time{}, bytes.NewReader(data))
			}))
			defer server.Close()

			src, err := tmodhttp.NewSource(server.URL)
			if err != nil {
				b.Fatal(err)
			}
			a, err := OpenSource(src)
			if err != nil {
				b.Fatal(err)
			}

			b.SetBytes(fileCount * fileSize)
			b.ResetTimer()
			for b.Loop() {
				benchSinkStats, err = a.Extract(b.TempDir(), ExtractWithWorkers(8))
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
