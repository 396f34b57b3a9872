package eea

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/absfs/absfs"
	"github.com/google/uuid"
)

// Range is a half-open interval [Start, End) of file indices
type Range struct {
	Start int
	End   int
}

// Len returns the number of indices in the range
func (r Range) Len() int {
	return r.End - r.Start
}

// Partition splits n items into threads contiguous ranges. Every range
// holds n/threads items and the first n%threads ranges hold one more.
func Partition(n, threads int) []Range {
	if n <= 0 {
		return nil
	}
	if threads < 1 {
		threads = 1
	}
	if threads > n {
		threads = n
	}

	size, extra := n/threads, n%threads
	ranges := make([]Range, threads)
	start := 0
	for i := range ranges {
		end := start + size
		if i < extra {
			end++
		}
		ranges[i] = Range{Start: start, End: end}
		start = end
	}
	return ranges
}

// FileResult is the outcome of processing one file
type FileResult struct {
	// BatchID identifies the Process call that produced the result
	BatchID uuid.UUID

	// Path is the input file
	Path string

	// Output is the file written, empty on failure or skip
	Output string

	// Skipped is set for decrypt inputs without the .eea extension
	Skipped bool

	// Err is the failure, nil on success or skip
	Err error
}

// OK reports whether the file was processed successfully
func (r FileResult) OK() bool {
	return r.Err == nil && !r.Skipped
}

// BatchReport summarizes a batch
type BatchReport struct {
	ID        uuid.UUID
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
}

// Summarize counts the outcomes in results
func Summarize(results []FileResult) BatchReport {
	var report BatchReport
	report.Total = len(results)
	for _, r := range results {
		if report.ID == uuid.Nil {
			report.ID = r.BatchID
		}
		switch {
		case r.Err != nil:
			report.Failed++
		case r.Skipped:
			report.Skipped++
		default:
			report.Succeeded++
		}
	}
	return report
}

// Option configures a Processor
type Option func(*Processor)

// WithLogger sets the logger used for batch and per-file records
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Processor encrypts or decrypts lists of files on a filesystem
type Processor struct {
	fs     absfs.FileSystem
	logger *slog.Logger
}

// NewProcessor creates a processor working on fsys
func NewProcessor(fsys absfs.FileSystem, opts ...Option) (*Processor, error) {
	if fsys == nil {
		return nil, ErrNilFileSystem
	}
	p := &Processor{
		fs:     fsys,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Process applies mode to every file with keys. The files are split
// into at most threads contiguous ranges and each range is handled by
// its own goroutine in order. With overwrite set, the source of every
// successful file is removed.
//
// A failing file never stops the others: its error is recorded in the
// matching FileResult. Results are returned in input order. The context
// is checked between files; once it is done the remaining files of every
// range fail with the context error, which is also returned.
func (p *Processor) Process(ctx context.Context, files []string, keys KeySet, overwrite bool, threads int, mode Mode) ([]FileResult, error) {
	engine, err := NewChainEngine(keys)
	if err != nil {
		return nil, err
	}
	if mode != ModeEncrypt && mode != ModeDecrypt {
		return nil, NewValidationError("mode", mode, "unsupported mode")
	}

	id := uuid.New()
	results := make([]FileResult, len(files))
	if len(files) == 0 {
		return results, nil
	}

	ranges := Partition(len(files), threads)
	logger := p.logger.With(slog.String("batch_id", id.String()))
	logger.Info("batch started",
		slog.String("mode", mode.String()),
		slog.Int("files", len(files)),
		slog.Int("threads", len(ranges)),
		slog.Bool("overwrite", overwrite),
	)

	w := worker{
		fs:        p.fs,
		logger:    logger,
		id:        id,
		engine:    engine,
		overwrite: overwrite,
		mode:      mode,
	}

	if len(ranges) == 1 {
		w.run(ctx, files, results, ranges[0])
	} else {
		var wg sync.WaitGroup
		for _, r := range ranges {
			wg.Add(1)
			go func(r Range) {
				defer wg.Done()
				w.run(ctx, files, results, r)
			}(r)
		}
		wg.Wait()
	}

	report := Summarize(results)
	logger.Info("batch finished",
		slog.Int("succeeded", report.Succeeded),
		slog.Int("failed", report.Failed),
		slog.Int("skipped", report.Skipped),
	)
	return results, ctx.Err()
}

// worker holds the state shared read-only by every range of a batch
type worker struct {
	fs        absfs.FileSystem
	logger    *slog.Logger
	id        uuid.UUID
	engine    CipherEngine
	overwrite bool
	mode      Mode
}

// run processes one range. It only writes results inside that range.
func (w *worker) run(ctx context.Context, files []string, results []FileResult, r Range) {
	for i := r.Start; i < r.End; i++ {
		if err := ctx.Err(); err != nil {
			results[i] = FileResult{BatchID: w.id, Path: files[i], Err: err}
			continue
		}
		results[i] = w.process(files[i])
	}
}

// process handles a single file, turning a panic into the file's error
func (w *worker) process(name string) (res FileResult) {
	res = FileResult{BatchID: w.id, Path: name}
	defer func() {
		if r := recover(); r != nil {
			res.Output = ""
			res.Err = fmt.Errorf("panic while processing %s: %v", name, r)
			w.logger.Error("file failed", slog.String("path", name), slog.Any("error", res.Err))
		}
	}()

	if w.mode == ModeDecrypt && !IsCiphertextName(name) {
		res.Skipped = true
		w.logger.Debug("file skipped", slog.String("path", name))
		return res
	}

	output, err := ProcessFile(w.fs, name, w.engine, w.mode)
	if err != nil {
		res.Err = err
		w.logger.Error("file failed", slog.String("path", name), slog.Any("error", err))
		return res
	}
	res.Output = output

	if w.overwrite {
		if err := w.fs.Remove(name); err != nil {
			res.Err = NewIOError("remove", name, err)
			w.logger.Error("failed to remove source", slog.String("path", name), slog.Any("error", err))
			return res
		}
	}
	w.logger.Debug("file processed", slog.String("path", name), slog.String("output", output))
	return res
}
