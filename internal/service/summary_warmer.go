package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/class-record-api/pkg/jobs"
)

// JobTypeSummaryWarmup rebuilds the cached summaries of a batch after a write.
const JobTypeSummaryWarmup = "summary_warmup"

type jobEnqueuer interface {
	TryEnqueue(job jobs.Job) error
}

// WarmupTarget names the summaries to rebuild. Generation is the batch's write
// generation when the job was queued.
type WarmupTarget struct {
	BatchID    string
	Quarter    int
	Generation uint64
}

// SummaryWarmer repopulates summary cache entries in the background so the first
// read after a score change does not pay for the rebuild.
//
// Every write bumps the batch generation before invalidating. A rebuild that sees
// the generation move while it ran drops what it stored, so a summary computed
// before a write never outlives that write's invalidation.
type SummaryWarmer struct {
	summaries *SummaryService
	queue     jobEnqueuer
	logger    *zap.Logger

	mu          sync.Mutex
	generations map[string]uint64
}

// NewSummaryWarmer constructs a warmer. Call Attach once the queue exists.
func NewSummaryWarmer(summaries *SummaryService, logger *zap.Logger) *SummaryWarmer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SummaryWarmer{summaries: summaries, logger: logger, generations: make(map[string]uint64)}
}

// Attach sets the queue jobs are pushed to.
func (w *SummaryWarmer) Attach(queue jobEnqueuer) {
	w.queue = queue
}

// Touch records a write to the batch. Call it before invalidating the batch.
func (w *SummaryWarmer) Touch(batchID string) {
	if w == nil {
		return
	}
	w.mu.Lock()
	w.generations[batchID]++
	w.mu.Unlock()
}

func (w *SummaryWarmer) generation(batchID string) uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.generations[batchID]
}

// Schedule queues a rebuild of the quarter's summary and the final summary. It never
// blocks; a full queue only costs a cold read later.
func (w *SummaryWarmer) Schedule(batchID string, quarter int) {
	if w == nil || w.queue == nil {
		return
	}
	gen := w.generation(batchID)
	job := jobs.Job{
		ID:      fmt.Sprintf("%s:%d:%d", batchID, quarter, gen),
		Type:    JobTypeSummaryWarmup,
		Payload: WarmupTarget{BatchID: batchID, Quarter: quarter, Generation: gen},
	}
	if err := w.queue.TryEnqueue(job); err != nil {
		w.logger.Debug("summary warmup skipped", zap.String("batch_id", batchID), zap.Error(err))
	}
}

// Handle is the queue handler.
func (w *SummaryWarmer) Handle(ctx context.Context, job jobs.Job) error {
	target, ok := job.Payload.(WarmupTarget)
	if !ok {
		w.logger.Warn("unexpected warmup payload", zap.String("job_id", job.ID))
		return nil
	}
	if w.generation(target.BatchID) != target.Generation {
		// a later write queued its own rebuild
		return nil
	}

	cache := w.summaries.cache
	if target.Quarter >= 1 && target.Quarter <= quarters {
		summary, err := w.summaries.buildQuarterly(ctx, target.BatchID, target.Quarter)
		if err != nil {
			return err
		}
		cache.Set(ctx, quarterlySummaryCacheKey(target.BatchID, target.Quarter), summary, 0)
	}
	final, err := w.summaries.buildFinal(ctx, target.BatchID)
	if err != nil {
		return err
	}
	cache.Set(ctx, finalSummaryCacheKey(target.BatchID), final, 0)

	if w.generation(target.BatchID) != target.Generation {
		cache.Invalidate(ctx, summaryCachePattern(target.BatchID))
		w.logger.Debug("summary warmup superseded", zap.String("batch_id", target.BatchID))
	}
	return nil
}
