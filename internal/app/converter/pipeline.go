// Package converter turns a concatenated-pinyin source dictionary into a
// Rime dictionary, optionally mirroring every converted record to sinks.
package converter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/pinyin-dict/internal/dictfile"
	"github.com/heartmarshall/pinyin-dict/internal/domain"
	"github.com/heartmarshall/pinyin-dict/internal/pinyin"
	"github.com/heartmarshall/pinyin-dict/pkg/ctxutil"
)

// Result holds the outcome of a conversion run.
type Result struct {
	RunID      uuid.UUID
	Lines      int
	Entries    int
	Segmented  int
	Failed     int
	Fallbacks  int
	// Rows is the number of records written to the output dictionary.
	Rows       int
	SinkWrites map[string]int
	Input      dictfile.Stats
	Duration   time.Duration
}

// Pipeline reads, segments and writes a dictionary in chunks.
type Pipeline struct {
	log     *slog.Logger
	opts    Options
	seg     *pinyin.Segmenter
	sinks   []Sink
	metrics *Metrics
	now     func() time.Time
}

// NewPipeline creates a new Pipeline.
func NewPipeline(log *slog.Logger, opts Options, sinks ...Sink) *Pipeline {
	if opts.Header.Name == "" {
		opts.Header = dictfile.DefaultHeader
	}
	return &Pipeline{
		log:     log,
		opts:    opts,
		seg:     pinyin.NewSegmenter(opts.MaxInputLen),
		sinks:   sinks,
		metrics: NewMetrics(),
		now:     time.Now,
	}
}

// Metrics returns the metrics collected by this pipeline.
func (p *Pipeline) Metrics() *Metrics {
	return p.metrics
}

// Run converts the whole input. Segmentation failures are counted and
// written as empty syllable fields; read, write and sink errors abort the run.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	result := Result{
		RunID:      uuid.New(),
		SinkWrites: make(map[string]int, len(p.sinks)),
	}
	ctx = ctxutil.WithRunID(ctx, result.RunID)
	ctx = ctxutil.WithSource(ctx, filepath.Base(p.opts.InputPath))

	p.log.Info("conversion started",
		slog.String("run_id", result.RunID.String()),
		slog.String("input", p.opts.InputPath),
		slog.String("mode", p.opts.mode().String()),
		slog.Int("workers", p.opts.workers()),
		slog.Bool("dry_run", p.opts.DryRun),
	)

	reader, err := dictfile.Open(p.opts.InputPath)
	if err != nil {
		return result, err
	}
	defer reader.Close()

	var writer *dictfile.Writer
	if !p.opts.DryRun {
		writer, err = dictfile.Create(p.opts.OutputPath, p.opts.Header)
		if err != nil {
			return result, err
		}
		defer writer.Close()

		if err := writer.WriteHeader(); err != nil {
			return result, err
		}
	}

	chunk := make([]domain.Line, 0, p.opts.batchSize())
	for {
		line, err := reader.Next()
		if err != nil && !errors.Is(err, io.EOF) {
			return p.finish(result, reader, start), err
		}
		if err == nil {
			chunk = append(chunk, line)
		}

		if len(chunk) == p.opts.batchSize() || (errors.Is(err, io.EOF) && len(chunk) > 0) {
			if perr := p.processChunk(ctx, chunk, writer, &result); perr != nil {
				return p.finish(result, reader, start), perr
			}
			chunk = chunk[:0]
		}

		if errors.Is(err, io.EOF) {
			break
		}
	}

	if writer != nil {
		if err := writer.Flush(); err != nil {
			return p.finish(result, reader, start), err
		}
		result.Rows = writer.Rows()
	}

	result = p.finish(result, reader, start)

	p.log.Info("conversion completed",
		slog.String("run_id", result.RunID.String()),
		slog.Int("lines", result.Lines),
		slog.Int("entries", result.Entries),
		slog.Int("segmented", result.Segmented),
		slog.Int("failed", result.Failed),
		slog.Int("fallbacks", result.Fallbacks),
		slog.Int("rows_written", result.Rows),
		slog.Int("skipped_lines", result.Input.SkippedLines),
		slog.Duration("duration", result.Duration),
	)

	if p.opts.MetricsPath != "" {
		if err := p.metrics.WriteTextfile(p.opts.MetricsPath); err != nil {
			return result, err
		}
	}

	return result, nil
}

func (p *Pipeline) finish(result Result, reader *dictfile.Reader, start time.Time) Result {
	result.Input = reader.Stats()
	result.Duration = time.Since(start)
	p.metrics.RunDurationSeconds.Set(result.Duration.Seconds())
	return result
}

// processChunk segments one chunk concurrently, then writes it in order.
func (p *Pipeline) processChunk(ctx context.Context, chunk []domain.Line, writer *dictfile.Writer, result *Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	runID, _ := ctxutil.RunIDFromCtx(ctx)
	converted := make([][]domain.Record, len(chunk))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.workers())
	for i, line := range chunk {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			converted[i] = p.convertLine(runID, line)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var records []domain.Record
	for _, recs := range converted {
		records = append(records, recs...)
	}

	result.Lines += len(chunk)
	p.metrics.LinesTotal.Add(float64(len(chunk)))
	for _, rec := range records {
		result.Entries++
		switch {
		case !rec.Segmented:
			result.Failed++
			p.metrics.FailuresTotal.WithLabelValues(rec.Mode.String()).Inc()
		default:
			result.Segmented++
			p.metrics.SyllablesPerEntry.Observe(float64(len(rec.Syllables)))
		}
		if rec.Fallback {
			result.Fallbacks++
			p.metrics.FallbacksTotal.Inc()
		}
	}
	p.metrics.EntriesTotal.Add(float64(len(records)))

	if p.opts.DryRun {
		return nil
	}

	if err := writer.WriteRecords(records); err != nil {
		return err
	}

	for _, sink := range p.sinks {
		n, err := sink.Write(ctx, records)
		if err != nil {
			return fmt.Errorf("sink %s: %w", sink.Name(), err)
		}
		result.SinkWrites[sink.Name()] += n
		p.metrics.SinkWritesTotal.WithLabelValues(sink.Name()).Add(float64(n))
	}

	return nil
}

// convertLine produces one record per entry, weighted by reverse position.
func (p *Pipeline) convertLine(runID uuid.UUID, line domain.Line) []domain.Record {
	key := domain.NormalizeKey(line.Key)
	mode := p.opts.mode()
	now := p.now()

	records := make([]domain.Record, 0, len(line.Entries))
	for idx, entry := range line.Entries {
		rec := domain.Record{
			ID:        uuid.New(),
			RunID:     runID,
			Line:      line.Number,
			Key:       key,
			Entry:     entry,
			Weight:    dictfile.Weight(idx, len(line.Entries)),
			Mode:      mode,
			CreatedAt: now,
		}
		rec.Syllables, rec.Segmented, rec.Fallback = p.segment(key, dictfile.EntryLen(entry), mode)

		if p.opts.TraceMappings {
			p.log.Debug("mapping",
				slog.Int("line", line.Number),
				slog.String("key", key),
				slog.String("entry", entry),
				slog.String("pinyin", rec.Pinyin()),
			)
		}
		records = append(records, rec)
	}
	return records
}

func (p *Pipeline) segment(key string, count int, mode domain.Mode) (syllables []string, ok, fallback bool) {
	out, err := p.seg.Segment(key, count, mode)
	if err == nil {
		return out, true, false
	}

	if mode == domain.ModeExact && p.opts.FallbackGreedy && errors.Is(err, domain.ErrNoSegmentation) {
		if out, gerr := p.seg.SegmentGreedy(key); gerr == nil {
			return out, true, true
		}
	}
	return nil, false, false
}
