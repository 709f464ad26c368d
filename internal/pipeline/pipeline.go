package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mgpai22/subko/internal/batch"
	"github.com/mgpai22/subko/internal/logging"
	"github.com/mgpai22/subko/internal/subtitle"
	"github.com/mgpai22/subko/internal/translate"
)

// Result of one translation run. On failure it holds whatever was
// translated before the failing batch.
type Result struct {
	Output     string
	Track      subtitle.Track
	Batches    int
	Completed  int
	Requests   int
	Mismatches []Mismatch
	// positions that kept their source text
	Untranslated []int
	// positions that were answered but still read as Latin script
	Unchanged []int
}

// Orchestrator drives the batch loop over a track.
type Orchestrator struct {
	completer translate.Completer
	logger    *logging.Logger
}

func New(completer translate.Completer, logger *logging.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		completer: completer,
		logger:    logger,
	}
}

type run struct {
	o      *Orchestrator
	opts   Options
	source subtitle.Track
	track  subtitle.Track
	total  int

	mu     sync.Mutex
	result *Result
}

// Translate translates every batch of track and returns the serialized
// output. The input track is not modified. Completer errors stop the run
// and are returned as they are.
func (o *Orchestrator) Translate(
	ctx context.Context,
	track subtitle.Track,
	opts Options,
) (*Result, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	ranges, err := batch.Make(len(track), opts.BatchSize)
	if err != nil {
		return nil, err
	}

	r := &run{
		o:      o,
		opts:   opts,
		source: track,
		track:  track.Clone(),
		total:  len(ranges),
		result: &Result{Batches: len(ranges)},
	}

	if len(ranges) == 0 {
		r.result.Track = r.track
		return r.result, nil
	}

	if opts.Validate {
		if err := o.completer.Validate(ctx); err != nil {
			o.logger.Warnw("Credential check failed", "error", err)
			return nil, err
		}
	}

	o.logger.Debugw("Starting batch loop",
		"blocks", len(track),
		"batches", len(ranges),
		"batch_size", opts.BatchSize,
		"concurrency", opts.Concurrency,
		"align", opts.Align,
	)

	if opts.Concurrency > 1 && len(ranges) > 1 {
		err = r.concurrent(ctx, ranges)
	} else {
		err = r.sequential(ctx, ranges)
	}

	r.finish()
	return r.result, err
}

func (r *run) sequential(ctx context.Context, ranges []batch.Range) error {
	for i, rng := range ranges {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.batch(ctx, i, rng); err != nil {
			return err
		}
	}
	return nil
}

// batches write disjoint ranges of the track, so only the result needs
// the mutex
func (r *run) concurrent(ctx context.Context, ranges []batch.Range) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)

	for i, rng := range ranges {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return r.batch(ctx, i, rng)
		})
	}
	return g.Wait()
}

func (r *run) batch(ctx context.Context, num int, rng batch.Range) error {
	logger := r.o.logger.With("batch", num, "range", rng.String())
	payload := batch.Serialize(r.source, rng)

	var (
		best     subtitle.Track
		bestMism Mismatch
		attempts = r.opts.MismatchRetries + 1
	)

	for attempt := 1; attempt <= attempts; attempt++ {
		logger.Debugw("Translating batch",
			"blocks", rng.Len(),
			"attempt", attempt,
		)

		req := translate.Request{
			Model:        r.opts.Model,
			SystemPrompt: r.opts.SystemPrompt,
			UserPrompt:   r.opts.UserPrompt,
			Payload:      payload,
		}
		text, err := r.o.completer.Complete(ctx, req)
		r.countRequest()
		if err != nil {
			logger.Warnw("Batch request failed", "error", err)
			return err
		}

		parsed := subtitle.ParseModelOutput(text)
		segment := subtitle.Track(r.source[rng.Start:rng.End]).Clone()
		indexMismatches, missing := merge(segment, parsed, r.opts.Align)

		m := Mismatch{
			Batch:           num,
			Range:           rng,
			Expected:        rng.Len(),
			Got:             len(parsed),
			IndexMismatches: offset(indexMismatches, rng.Start),
			Missing:         offset(missing, rng.Start),
		}

		if best == nil || len(m.Missing) < len(bestMism.Missing) {
			best, bestMism = segment, m
		}
		if m.empty() {
			break
		}
		if inv, ok := r.o.completer.(translate.Invalidator); ok {
			if err := inv.Invalidate(ctx, req); err != nil {
				logger.Warnw("Failed to drop mismatched answer", "error", err)
			}
		}

		logger.Warnw("Batch response does not line up",
			"expected", m.Expected,
			"got", m.Got,
			"missing", len(m.Missing),
			"index_mismatches", len(m.IndexMismatches),
			"attempt", attempt,
		)
	}

	copy(r.track[rng.Start:rng.End], best)
	r.complete(rng, bestMism)
	return nil
}

func (r *run) countRequest() {
	r.mu.Lock()
	r.result.Requests++
	r.mu.Unlock()
}

func (r *run) complete(rng batch.Range, m Mismatch) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !m.empty() {
		r.result.Mismatches = append(r.result.Mismatches, m)
		r.result.Untranslated = append(r.result.Untranslated, m.Missing...)
	}
	r.result.Unchanged = append(
		r.result.Unchanged,
		unchanged(r.source, r.track, rng, m.Missing)...,
	)
	r.result.Completed++

	if r.opts.Progress != nil {
		r.opts.Progress(r.result.Completed, r.total)
	}
}

func (r *run) finish() {
	res := r.result
	sort.Slice(res.Mismatches, func(i, j int) bool {
		return res.Mismatches[i].Batch < res.Mismatches[j].Batch
	})
	sort.Ints(res.Untranslated)
	sort.Ints(res.Unchanged)

	res.Track = r.track
	res.Output = subtitle.Serialize(r.track)

	if len(res.Untranslated) > 0 {
		r.o.logger.Warnw("Some cues kept their source text",
			"count", len(res.Untranslated),
			"batches", len(res.Mismatches),
		)
	}
}

// String summarises the mismatches of a result.
func (res *Result) String() string {
	return fmt.Sprintf(
		"%d/%d batches, %d requests, %d mismatched batches, %d untranslated cues",
		res.Completed,
		res.Batches,
		res.Requests,
		len(res.Mismatches),
		len(res.Untranslated),
	)
}
