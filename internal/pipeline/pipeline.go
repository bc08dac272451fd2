// Package pipeline sequences extraction, deduplication, scoring and
// persistence into one run. The orchestrator owns the browsing session for
// the run's duration and is the only component aware of all four stages.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/svensoldin/job-searcher/internal/dedupe"
	"github.com/svensoldin/job-searcher/internal/extract"
	"github.com/svensoldin/job-searcher/internal/model"
	"github.com/svensoldin/job-searcher/internal/ratelimit"
	"github.com/svensoldin/job-searcher/internal/score"
	"github.com/svensoldin/job-searcher/internal/store"
)

// Mode selects which entry point a run takes through the same component set.
type Mode string

const (
	// ModeFullRefresh scrapes all sources and applies the weekly
	// refresh/retention policy to the persisted set.
	ModeFullRefresh Mode = "full-refresh"
	// ModePendingOnly scores previously-unscored stored records without
	// re-scraping.
	ModePendingOnly Mode = "pending-only"
)

// pendingBatchLimit bounds how many unscored records one pending-only run
// picks up.
const pendingBatchLimit = 200

// Summary is the single per-run report surfaced to the caller. Per-item
// faults are absorbed into the Failed count; they never appear as errors.
type Summary struct {
	Analyzed int `json:"analyzed"`
	Saved    int `json:"saved"`
	Failed   int `json:"failed"`
}

// Extractor is the slice of the extract package the orchestrator needs.
type Extractor interface {
	ListPostings(ctx context.Context, src extract.Source, params model.SearchParams) ([]model.Posting, error)
	FetchDescription(ctx context.Context, src extract.Source, url string) (string, error)
}

// ScoreFunc maps (posting, criteria) to a score in [0,100].
type ScoreFunc func(model.Posting, model.Criteria) int

// Options holds the orchestrator's dependencies.
type Options struct {
	Extractor Extractor
	Store     store.Store
	Sources   []extract.Source
	Limiter   *ratelimit.Limiter
	Criteria  model.Criteria
	Params    model.SearchParams
	Scorer    ScoreFunc // defaults to score.Score
	Logger    *slog.Logger
}

// Orchestrator runs the ingestion-and-scoring pipeline.
type Orchestrator struct {
	extractor Extractor
	store     store.Store
	sources   []extract.Source
	limiter   *ratelimit.Limiter
	criteria  model.Criteria
	params    model.SearchParams
	scorer    ScoreFunc
	logger    *slog.Logger
}

// New wires an Orchestrator from Options, applying defaults.
func New(opts Options) (*Orchestrator, error) {
	if opts.Extractor == nil {
		return nil, errors.New("pipeline: extractor is required")
	}
	if opts.Store == nil {
		return nil, errors.New("pipeline: store is required")
	}
	if len(opts.Sources) == 0 {
		return nil, errors.New("pipeline: at least one source is required")
	}
	if opts.Scorer == nil {
		opts.Scorer = score.Score
	}
	if opts.Limiter == nil {
		opts.Limiter = ratelimit.NewFixedDelay(0)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Orchestrator{
		extractor: opts.Extractor,
		store:     opts.Store,
		sources:   opts.Sources,
		limiter:   opts.Limiter,
		criteria:  opts.Criteria,
		params:    opts.Params,
		scorer:    opts.Scorer,
		logger:    opts.Logger,
	}, nil
}

// Run executes one pipeline run in the given mode and reports a summary.
// Item-level faults are converted into data; only a total failure to reach
// any source or a storage failure aborts the run.
func (o *Orchestrator) Run(ctx context.Context, mode Mode) (Summary, error) {
	runID := uuid.NewString()
	logger := o.logger.With("run", runID, "mode", string(mode))

	switch mode {
	case ModeFullRefresh:
		return o.runFullRefresh(ctx, logger)
	case ModePendingOnly:
		return o.runPendingOnly(ctx, logger)
	default:
		return Summary{}, fmt.Errorf("unknown run mode %q", mode)
	}
}

func (o *Orchestrator) runFullRefresh(ctx context.Context, logger *slog.Logger) (Summary, error) {
	postings, err := o.collect(ctx, logger)
	if err != nil {
		return Summary{}, err
	}

	postings = dedupe.DedupeBatch(postings)
	logger.Info("batch deduplicated", "count", len(postings))

	batch, failed := o.enrichAndScore(ctx, logger, postings)

	saved, err := o.store.WeeklyRefresh(ctx, batch)
	if err != nil {
		return Summary{}, fmt.Errorf("weekly refresh: %w", err)
	}

	summary := Summary{Analyzed: len(batch), Saved: saved, Failed: failed}
	logger.Info("run complete", "analyzed", summary.Analyzed, "saved", summary.Saved, "failed", summary.Failed)
	return summary, nil
}

// collect fans ListPostings out across all sources concurrently and merges
// the results in source-declaration order. An unavailable source degrades to
// an empty contribution; only all sources failing aborts the run.
func (o *Orchestrator) collect(ctx context.Context, logger *slog.Logger) ([]model.Posting, error) {
	results := make([][]model.Posting, len(o.sources))
	failures := make([]error, len(o.sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range o.sources {
		i, src := i, src
		g.Go(func() error {
			postings, err := o.extractor.ListPostings(gctx, src, o.params)
			if err != nil {
				logger.Warn("source unavailable", "source", src.Name(), "err", err)
				failures[i] = err
				return nil
			}
			results[i] = postings
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	unavailable := 0
	for _, err := range failures {
		if err != nil {
			unavailable++
		}
	}
	if unavailable == len(o.sources) {
		return nil, fmt.Errorf("%w: all %d sources failed", extract.ErrSourceUnavailable, len(o.sources))
	}

	var merged []model.Posting
	for _, batch := range results {
		merged = append(merged, batch...)
	}
	return merged, nil
}

// enrichAndScore fetches descriptions strictly sequentially behind the rate
// limiter, scores each posting, and stamps status and fingerprint. A failed
// detail fetch degrades that item's description to empty; a scoring failure
// marks the item failed. Neither aborts the batch.
func (o *Orchestrator) enrichAndScore(ctx context.Context, logger *slog.Logger, postings []model.Posting) (batch []model.Posting, failed int) {
	bySource := make(map[string]extract.Source, len(o.sources))
	for _, src := range o.sources {
		bySource[src.Name()] = src
	}

	batch = make([]model.Posting, 0, len(postings))
	for _, p := range postings {
		if err := o.limiter.Wait(ctx); err != nil {
			logger.Warn("run cancelled during enrichment", "err", err)
			break
		}

		if src, ok := bySource[p.Source]; ok {
			desc, err := o.extractor.FetchDescription(ctx, src, p.URL)
			if err != nil {
				logger.Warn("description fetch failed", "url", p.URL, "err", err)
			}
			p.Description = desc
		}

		p.Fingerprint = dedupe.Fingerprint(p)

		if sc, err := o.scoreItem(p); err != nil {
			logger.Warn("scoring failed", "url", p.URL, "err", err)
			p.Score = nil
			p.Status = model.StatusFailed
			failed++
		} else {
			p.Score = &sc
			p.Status = model.StatusScored
		}
		batch = append(batch, p)
	}
	return batch, failed
}

// scoreItem runs the scorer, converting a panic on malformed input into an
// error so one bad posting never aborts the batch.
func (o *Orchestrator) scoreItem(p model.Posting) (sc int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scorer panic: %v", r)
		}
	}()
	sc = o.scorer(p, o.criteria)
	if sc < 0 || sc > 100 {
		return 0, fmt.Errorf("score %d out of range", sc)
	}
	return sc, nil
}

// runPendingOnly scores previously-unscored stored records without
// re-scraping.
func (o *Orchestrator) runPendingOnly(ctx context.Context, logger *slog.Logger) (Summary, error) {
	pending, err := o.store.GetPending(ctx, pendingBatchLimit)
	if err != nil {
		return Summary{}, fmt.Errorf("load pending postings: %w", err)
	}

	var summary Summary
	for _, p := range pending {
		summary.Analyzed++
		sc, err := o.scoreItem(p)
		if err != nil {
			logger.Warn("scoring failed", "fingerprint", p.Fingerprint, "err", err)
			if err := o.store.MarkFailed(ctx, p.Fingerprint); err != nil {
				return summary, fmt.Errorf("mark failed: %w", err)
			}
			summary.Failed++
			continue
		}
		if err := o.store.MarkScored(ctx, p.Fingerprint, sc); err != nil {
			return summary, fmt.Errorf("mark scored: %w", err)
		}
		summary.Saved++
	}

	logger.Info("pending analysis complete", "analyzed", summary.Analyzed, "scored", summary.Saved, "failed", summary.Failed)
	return summary, nil
}
