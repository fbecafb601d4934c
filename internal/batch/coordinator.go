// Package batch fans candidate blocks out across a fixed pool of workers and
// merges their records into one unordered collection.
package batch

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/appscout/internal/extract"
	"github.com/sells-group/appscout/internal/model"
)

// DefaultWorkers is the worker count used when none is configured.
const DefaultWorkers = 8

// Extractor turns one block into a record or a skip.
type Extractor interface {
	Extract(ctx context.Context, block extract.Block, keyword string) extract.Result
}

// Coordinator runs one worker per contiguous chunk of blocks.
type Coordinator struct {
	extractor Extractor
	workers   int
}

// NewCoordinator creates a Coordinator. The worker count is validated on Run.
func NewCoordinator(extractor Extractor, workers int) *Coordinator {
	return &Coordinator{extractor: extractor, workers: workers}
}

// Run extracts every block and returns the merged records and outcome
// stats. Record order across workers is unspecified; each worker's records
// keep their chunk order. Only an invalid worker count is an error, and it is
// reported before any worker starts.
func (c *Coordinator) Run(ctx context.Context, blocks []extract.Block, keyword string) ([]model.Item, model.Stats, error) {
	chunks, err := Partition(blocks, c.workers)
	if err != nil {
		return nil, model.Stats{}, err
	}

	log := zap.L().With(
		zap.String("keyword", keyword),
		zap.Int("blocks", len(blocks)),
		zap.Int("workers", c.workers),
	)
	log.Debug("batch: starting workers")

	var (
		results Collection
		g       errgroup.Group
	)
	for id, chunk := range chunks {
		if len(chunk) == 0 {
			continue
		}
		id, chunk := id, chunk
		g.Go(func() error {
			items, stats := c.work(ctx, chunk, keyword)
			results.Merge(items, stats)
			log.Debug("batch: worker done",
				zap.Int("worker", id),
				zap.Int("chunk", len(chunk)),
				zap.Int("kept", len(items)),
			)
			return nil
		})
	}
	// Workers always return nil: per-block failures, cancellation included,
	// are outcomes, so the group only waits.
	_ = g.Wait()

	items, stats := results.Snapshot()
	log.Debug("batch: complete", zap.Int("records", stats.Records))
	return items, stats, nil
}

// work extracts one chunk into a local buffer without touching shared state.
func (c *Coordinator) work(ctx context.Context, chunk []extract.Block, keyword string) ([]model.Item, model.Stats) {
	var (
		items []model.Item
		stats model.Stats
	)
	for _, block := range chunk {
		res := c.extractor.Extract(ctx, block, keyword)
		stats.Record(res.Outcome)
		stats.FieldGroupMiss += res.FieldGroupMisses
		if res.Outcome == model.OutcomeRecord && res.Item != nil {
			items = append(items, *res.Item)
		}
	}
	return items, stats
}
