package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync/atomic"

	digest "github.com/opencontainers/go-digest"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/campbellcole/tmod-unpacker/internal/file"
	"github.com/campbellcole/tmod-unpacker/internal/sizing"
	"github.com/campbellcole/tmod-unpacker/internal/tmodtype"
	"github.com/campbellcole/tmod-unpacker/internal/wire"
)

// Processor extracts entries from a container into a Sink.
//
// ProcessStream consumes payloads from a forward-only cursor, one entry at a
// time in table order. ProcessAt reads payloads at their computed offsets
// and may process unrelated entries concurrently.
type Processor struct {
	pool           *file.DecompressPool
	workers        int // 0 = auto, <0 = serial, >0 = fixed count
	readAheadBytes int64
	logger         *slog.Logger
	progress       tmodtype.ProgressFunc
}

// log returns the logger, falling back to a discard logger if nil.
func (p *Processor) log() *slog.Logger {
	return tmodtype.DiscardLogger(p.logger)
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithWorkers sets the number of workers for ProcessAt.
// Values < 0 force serial processing. Zero uses GOMAXPROCS.
// Values > 0 force a specific worker count.
func WithWorkers(n int) ProcessorOption {
	return func(p *Processor) {
		p.workers = n
	}
}

// WithReadAheadBytes caps the total payload bytes held in memory by
// concurrent workers. A value of 0 disables the byte budget.
func WithReadAheadBytes(limit int64) ProcessorOption {
	return func(p *Processor) {
		if limit < 0 {
			limit = 0
		}
		p.readAheadBytes = limit
	}
}

// WithProcessorLogger sets the logger for extraction.
// If not set, logging is disabled.
func WithProcessorLogger(logger *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		p.logger = logger
	}
}

// WithProcessorProgress sets a callback invoked after each entry is extracted.
func WithProcessorProgress(fn tmodtype.ProgressFunc) ProcessorOption {
	return func(p *Processor) {
		p.progress = fn
	}
}

// NewProcessor creates a new Processor.
// The pool provides reusable deflate readers; nil allocates one per entry.
func NewProcessor(pool *file.DecompressPool, opts ...ProcessorOption) *Processor {
	p := &Processor{pool: pool}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessStream extracts entries whose payloads follow each other on c.
//
// c must be positioned at the first payload. Entries are processed strictly
// in table order and each payload is fully consumed before the next is read.
// Processing stops on the first error; files committed before it remain.
func (p *Processor) ProcessStream(c *wire.Cursor, entries []Entry, sink Sink) (ProcessStats, error) {
	var stats ProcessStats
	log := p.log()
	log.Info("extracting files", "count", len(entries))

	var bytesDone uint64
	for i := range entries {
		entry := &entries[i]
		if c.Offset() != entry.Offset {
			return stats, fmt.Errorf("extract %s: payload expected at offset %d, cursor at %d", entry.Name, entry.Offset, c.Offset())
		}

		if !sink.ShouldProcess(entry) {
			tmodtype.Trace(log, "skipping file", "name", entry.Name)
			if err := c.Discard(int64(entry.CompressedSize)); err != nil {
				return stats, fmt.Errorf("extract %s: %w", entry.Name, err)
			}
			stats.Skipped++
			continue
		}

		tmodtype.Trace(log, "extracting file", "name", entry.Name)
		payload, err := c.ReadBytes(int64(entry.CompressedSize))
		if err != nil {
			return stats, fmt.Errorf("extract %s: %w", entry.Name, err)
		}
		extracted, err := p.processEntry(entry, payload, sink)
		if err != nil {
			return stats, err
		}
		stats.add(extracted)
		bytesDone += uint64(extracted.Size) //nolint:gosec // sizes are non-negative
		p.report(entry, stats.Extracted+stats.Skipped, len(entries), bytesDone)
	}
	return stats, nil
}

// ProcessAt extracts entries by reading each payload at its Offset in src.
//
// Entries whose names resolve to the same destination (per Sink.Key) are
// handled by one task in table order, so the last of them wins just as it
// does in ProcessStream.
// Processing stops on the first error.
func (p *Processor) ProcessAt(src io.ReaderAt, entries []Entry, sink Sink) (ProcessStats, error) {
	tasks := groupByKey(entries, sink.Key)
	workers := p.workerCount(len(tasks))
	p.log().Info("extracting files", "count", len(entries), "workers", workers)

	var budget *semaphore.Weighted
	if p.readAheadBytes > 0 {
		budget = semaphore.NewWeighted(p.readAheadBytes)
	}

	results := make([]*ExtractedFile, len(entries))
	var done, bytesDone atomic.Uint64

	eg, ctx := errgroup.WithContext(context.Background())
	eg.SetLimit(workers)
	for _, task := range tasks {
		if ctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			for _, idx := range task {
				if err := ctx.Err(); err != nil {
					return err
				}
				entry := &entries[idx]
				if !sink.ShouldProcess(entry) {
					tmodtype.Trace(p.log(), "skipping file", "name", entry.Name)
					done.Add(1)
					continue
				}
				extracted, err := p.processAt(ctx, src, entry, sink, budget)
				if err != nil {
					return err
				}
				results[idx] = &extracted
				n := bytesDone.Add(uint64(extracted.Size)) //nolint:gosec // sizes are non-negative
				p.report(entry, int(done.Add(1)), len(entries), n) //nolint:gosec // bounded by len(entries)
			}
			return nil
		})
	}
	err := eg.Wait()

	var stats ProcessStats
	for _, res := range results {
		if res != nil {
			stats.add(*res)
		}
	}
	if err == nil {
		stats.Skipped = len(entries) - stats.Extracted
	}
	return stats, err
}

// processAt reads one payload from src under the byte budget and extracts it.
func (p *Processor) processAt(ctx context.Context, src io.ReaderAt, entry *Entry, sink Sink, budget *semaphore.Weighted) (ExtractedFile, error) {
	if budget != nil {
		weight := min(int64(entry.CompressedSize), p.readAheadBytes)
		if err := budget.Acquire(ctx, weight); err != nil {
			return ExtractedFile{}, err
		}
		defer budget.Release(weight)
	}

	tmodtype.Trace(p.log(), "extracting file", "name", entry.Name, "offset", entry.Offset)
	payload, err := readPayload(src, entry)
	if err != nil {
		return ExtractedFile{}, fmt.Errorf("extract %s: %w", entry.Name, err)
	}
	return p.processEntry(entry, payload, sink)
}

// processEntry decodes a payload and writes it to the sink.
func (p *Processor) processEntry(entry *Entry, payload []byte, sink Sink) (ExtractedFile, error) {
	log := p.log()
	if entry.IsCompressed() {
		tmodtype.Trace(log, "decompressing file", "name", entry.Name)
	} else {
		tmodtype.Trace(log, "file is not compressed", "name", entry.Name)
	}
	content, err := file.Decode(entry, payload, p.pool)
	if err != nil {
		return ExtractedFile{}, fmt.Errorf("extract %s: %w", entry.Name, err)
	}

	w, err := sink.Writer(entry)
	if err != nil {
		return ExtractedFile{}, fmt.Errorf("extract %s: %w", entry.Name, err)
	}
	if err := writeAll(w, content); err != nil {
		_ = w.Discard() //nolint:errcheck // best-effort cleanup
		return ExtractedFile{}, fmt.Errorf("extract %s: %w", entry.Name, err)
	}
	if err := w.Commit(); err != nil {
		return ExtractedFile{}, fmt.Errorf("extract %s: commit: %w", entry.Name, err)
	}
	tmodtype.Trace(log, "wrote file", "name", entry.Name, "bytes", len(content))

	return ExtractedFile{
		Name:   entry.Name,
		Size:   int64(len(content)),
		Digest: digest.FromBytes(content),
	}, nil
}

// report sends an extraction progress event if a callback is set.
func (p *Processor) report(entry *Entry, done, total int, bytesDone uint64) {
	if p.progress == nil {
		return
	}
	p.progress(tmodtype.ProgressEvent{
		Stage:      tmodtype.StageExtracting,
		Path:       entry.Name,
		BytesDone:  bytesDone,
		FilesDone:  done,
		FilesTotal: total,
	})
}

// workerCount determines the number of workers to use for n tasks.
func (p *Processor) workerCount(n int) int {
	if n < 2 || p.workers < 0 {
		return 1
	}
	workers := p.workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return max(1, min(workers, n))
}

// groupByKey returns entry indexes grouped by destination key, in order of
// first appearance. Indexes within a group keep table order.
func groupByKey(entries []Entry, key func(*Entry) string) [][]int {
	tasks := make([][]int, 0, len(entries))
	byKey := make(map[string]int, len(entries))
	for i := range entries {
		k := key(&entries[i])
		if t, ok := byKey[k]; ok {
			tasks[t] = append(tasks[t], i)
			continue
		}
		byKey[k] = len(tasks)
		tasks = append(tasks, []int{i})
	}
	return tasks
}

// sizedReaderAt is implemented by sources that know their length.
type sizedReaderAt interface {
	io.ReaderAt
	Size() int64
}

// readPayload reads an entry's payload from src.
func readPayload(src io.ReaderAt, entry *Entry) ([]byte, error) {
	size := int64(entry.CompressedSize)
	if s, ok := src.(sizedReaderAt); ok {
		end, ok := sizing.AddInt64(entry.Offset, size)
		if !ok {
			return nil, tmodtype.ErrSizeOverflow
		}
		if end > s.Size() {
			return nil, fmt.Errorf("%w: payload ends at %d, source is %d bytes", tmodtype.ErrTruncated, end, s.Size())
		}
	}
	n, err := sizing.ToInt(size, tmodtype.ErrSizeOverflow)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	read, err := src.ReadAt(buf, entry.Offset)
	if read == n {
		return buf, nil
	}
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("%w: short read (%d of %d bytes): %w", tmodtype.ErrTruncated, read, n, err)
	}
	return nil, err
}

// writeAll writes all data to w, handling partial writes.
func writeAll(w io.Writer, data []byte) error {
	for len(data) > 0 {
		n, err := w.Write(data)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		data = data[n:]
	}
	return nil
}
