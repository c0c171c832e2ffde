// Package pipeline trims a stream of reads on a pool of workers.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/aria-lang/polyatrim-go/internal/fastx"
	"github.com/aria-lang/polyatrim-go/internal/hmm"
	"github.com/aria-lang/polyatrim-go/internal/logging"
	"github.com/aria-lang/polyatrim-go/internal/metrics"
	"github.com/aria-lang/polyatrim-go/internal/stats"
	"github.com/aria-lang/polyatrim-go/internal/trim"
)

// DefaultBatchSize is the number of reads handed to a worker at once.
const DefaultBatchSize = 100

// Source yields records until io.EOF. *fastx.Reader satisfies it.
type Source interface {
	Next() (fastx.Record, error)
}

// Sink receives results in input order. Emit is never called concurrently.
type Sink interface {
	Emit(trim.Result) error
}

// Options control Run.
type Options struct {
	Workers   int // <= 0 means runtime.NumCPU()
	BatchSize int // <= 0 means DefaultBatchSize
	Trim      trim.Options
	Metrics   *metrics.Metrics // optional
	Logger    *slog.Logger     // optional
}

type batch struct {
	seq     int
	records []fastx.Record
	results []trim.Result
}

// Run decodes every record from src against m and hands the results to sink
// in the order they were read. It stops at the first read, write or context
// error and returns the statistics gathered so far.
func Run(ctx context.Context, m *hmm.Model, opts Options, src Source, sink Sink) (stats.Summary, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	size := opts.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	logger = logger.With("run_id", uuid.NewString())
	logger.Debug("pipeline starting", "workers", workers, "batch_size", size)

	g, ctx := errgroup.WithContext(ctx)
	jobs := make(chan *batch, workers)
	done := make(chan *batch, workers)

	// Reader.
	g.Go(func() error {
		defer close(jobs)
		for seq := 0; ; seq++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			b := &batch{seq: seq, records: make([]fastx.Record, 0, size)}
			var readErr error
			for len(b.records) < size {
				rec, err := src.Next()
				if err != nil {
					readErr = err
					break
				}
				b.records = append(b.records, rec)
			}
			if len(b.records) > 0 {
				select {
				case jobs <- b:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			if readErr != nil {
				return fmt.Errorf("read batch %d: %w", seq, readErr)
			}
		}
	})

	// Workers. Each owns a Trimmer, and so a Workspace.
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		t := trim.New(m, opts.Trim)
		g.Go(func() error {
			defer wg.Done()
			for b := range jobs {
				b.results = make([]trim.Result, len(b.records))
				for i, rec := range b.records {
					b.results[i] = t.Trim(rec)
				}
				select {
				case done <- b:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})
	}
	go func() {
		wg.Wait()
		close(done)
	}()

	// Writer. Batches finish out of order; hold them until their turn.
	var (
		mu         sync.Mutex
		acc        stats.Accumulator
		headerErrs int
	)
	g.Go(func() error {
		pending := make(map[int]*batch)
		next := 0
		for b := range done {
			pending[b.seq] = b
			for {
				ready, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				next++
				if err := emit(&mu, &acc, &headerErrs, sink, opts.Metrics, logger, ready); err != nil {
					return err
				}
				logger.Debug("batch written", "batch", ready.seq, "reads", len(ready.results))
			}
		}
		return nil
	})

	err := g.Wait()
	mu.Lock()
	summary := acc.Summary()
	mu.Unlock()
	if err != nil {
		return summary, err
	}
	logger.Info("pipeline finished",
		"reads", summary.Reads,
		"trimmed", summary.TrimmedReads,
		"bases_trimmed", summary.BasesTrimmed(),
		"mean_tail", summary.MeanTail,
		"headers_unchanged", headerErrs)
	return summary, nil
}

// emit hands a batch to sink. Header rewrite failures are expected for
// generic FASTA and are logged at debug only, since the length report often
// shares stderr with the logger.
func emit(mu *sync.Mutex, acc *stats.Accumulator, headerErrs *int, sink Sink, m *metrics.Metrics, logger *slog.Logger, b *batch) error {
	mu.Lock()
	defer mu.Unlock()
	for _, res := range b.results {
		if res.HeaderErr != nil {
			*headerErrs++
			logger.Debug("header left unchanged", "read", res.Record.ID(), "err", res.HeaderErr)
		}
		if err := sink.Emit(res); err != nil {
			return fmt.Errorf("write %s: %w", res.Record.ID(), err)
		}
		acc.Add(res.Record.Len(), res.PolyALength)
		m.ObserveRead(res.PolyALength)
	}
	return nil
}

// StreamSink writes trimmed reads and the per-read length report.
type StreamSink struct {
	Out    *fastx.Writer
	Report *fastx.ReportWriter
}

// Emit writes res to both streams.
func (s StreamSink) Emit(res trim.Result) error {
	if s.Report != nil {
		if err := s.Report.Write(res.Header, res.PolyALength); err != nil {
			return err
		}
	}
	if s.Out != nil {
		return s.Out.Write(res.Header, res.Record, res.Keep())
	}
	return nil
}

// Flush flushes both streams.
func (s StreamSink) Flush() error {
	var errs []error
	if s.Out != nil {
		errs = append(errs, s.Out.Flush())
	}
	if s.Report != nil {
		errs = append(errs, s.Report.Flush())
	}
	return errors.Join(errs...)
}

// Collect gathers results in memory.
type Collect struct {
	Results []trim.Result
}

// Emit appends res.
func (c *Collect) Emit(res trim.Result) error {
	c.Results = append(c.Results, res)
	return nil
}

type recordSource struct {
	recs []fastx.Record
	pos  int
}

// Records returns a Source over recs.
func Records(recs []fastx.Record) Source {
	return &recordSource{recs: recs}
}

func (s *recordSource) Next() (fastx.Record, error) {
	if s.pos >= len(s.recs) {
		return fastx.Record{}, io.EOF
	}
	s.pos++
	return s.recs[s.pos-1], nil
}
