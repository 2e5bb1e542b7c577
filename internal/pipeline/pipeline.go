package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/sentra-ops/incident-triage/internal/domain"
	"github.com/sentra-ops/incident-triage/internal/observability"
)

// BatchExtractor reads up to batchSize raw events from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer converts a raw report message into a normalized incident.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) (domain.Incident, error)
}

// BatchLoader writes triaged incidents to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, incidents []domain.TriagedIncident) error
}

// Pipeline orchestrates the extract-transform-triage-load loop.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	triager     *Triager
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	batchSize   int
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, tr *Triager, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		triager:     tr,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
	}
}

// CheckReadiness returns nil if the pipeline has processed at least one message,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not processed any messages yet")
	}
	return nil
}

// Feed returns a prioritized snapshot of the incidents currently retained
// by the triager, assembled with the given options.
func (p *Pipeline) Feed(opts domain.FeedOptions) []domain.TriagedIncident {
	return p.triager.Feed(opts)
}

// Run executes the batch triage loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !p.processBatch(ctx, &backoff, maxBackoff) {
			return nil
		}
	}
}

// processBatch runs one extract-transform-triage-load cycle. Returns false
// if the pipeline should stop.
func (p *Pipeline) processBatch(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	start := time.Now()

	rawBatch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	if len(rawBatch) == 0 {
		return ctx.Err() == nil
	}

	p.metrics.ReportsConsumed.Add(float64(len(rawBatch)))
	p.metrics.BatchSize.Observe(float64(len(rawBatch)))
	*backoff = 200 * time.Millisecond

	loaded, ok := p.triageAndLoad(ctx, rawBatch, backoff, maxBackoff)
	if !ok {
		return false
	}

	if loaded > 0 {
		p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
		p.ready.Store(true)
	}
	return true
}

// triageAndLoad transforms each message in the batch, triages the successes
// as a group so duplicate detection sees the whole batch, loads the result,
// and commits offsets. Returns the number of successfully loaded messages
// and false if the pipeline should stop.
func (p *Pipeline) triageAndLoad(ctx context.Context, rawBatch []domain.RawEvent, backoff *time.Duration, maxBackoff time.Duration) (int, bool) {
	incidents := make([]domain.Incident, 0, len(rawBatch))
	successfulRaws := make([]domain.RawEvent, 0, len(rawBatch))

	for _, raw := range rawBatch {
		inc, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			p.logger.Warn("transform failed, skipping message",
				"error", err,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.ParseErrors.Inc()
			p.commitOffset(ctx, raw)
			continue
		}
		incidents = append(incidents, inc)
		successfulRaws = append(successfulRaws, raw)
	}

	if len(incidents) == 0 {
		return 0, true
	}

	triaged := p.triager.TriageBatch(ctx, incidents)
	for i := range triaged {
		p.metrics.PriorityScore.Observe(float64(triaged[i].PriorityScore))
		if triaged[i].IsDuplicate {
			p.metrics.DuplicatesFlagged.Inc()
		}
	}

	if err := p.loader.LoadBatch(ctx, triaged); err != nil {
		p.logger.Error("load batch failed", "error", err, "batch_size", len(triaged))
		return 0, p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	p.metrics.IncidentsTriaged.Add(float64(len(triaged)))

	for _, raw := range successfulRaws {
		p.commitOffset(ctx, raw)
	}

	return len(triaged), true
}

// backoffOrStop checks for context cancellation, sleeps with the current backoff,
// and advances the backoff. Returns false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

// commitOffset commits the message offset if a commit function is available.
func (p *Pipeline) commitOffset(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
