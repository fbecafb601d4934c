// Package search runs one keyword search end to end: acquire the listing,
// fan the blocks out to extraction workers, and report what came back.
package search

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/appscout/internal/batch"
	"github.com/sells-group/appscout/internal/extract"
	"github.com/sells-group/appscout/internal/model"
)

// BlockSource supplies the candidate blocks for a keyword.
type BlockSource interface {
	Acquire(ctx context.Context, keyword string) ([]extract.Block, error)
}

// Request describes one search. Workers falls back to the service default
// when zero.
type Request struct {
	Keyword string
	Workers int
}

// Report is the outcome of one search run.
type Report struct {
	RunID   string        `json:"run_id" yaml:"run_id"`
	Keyword string        `json:"keyword" yaml:"keyword"`
	Workers int           `json:"workers" yaml:"workers"`
	Stats   model.Stats   `json:"stats" yaml:"stats"`
	Timings model.Timings `json:"timings" yaml:"timings"`
	Items   []model.Item  `json:"items" yaml:"items"`
}

// Service wires a block source to an extraction coordinator.
type Service struct {
	source    BlockSource
	extractor batch.Extractor
	workers   int
}

// NewService creates a Service using workers as the default worker count,
// or batch.DefaultWorkers when workers is zero.
func NewService(source BlockSource, extractor batch.Extractor, workers int) *Service {
	if workers == 0 {
		workers = batch.DefaultWorkers
	}
	return &Service{source: source, extractor: extractor, workers: workers}
}

// Search acquires the listing for req.Keyword and extracts every matching
// item. Per-item failures are counted in the report, never returned.
func (s *Service) Search(ctx context.Context, req Request) (*Report, error) {
	workers := req.Workers
	if workers == 0 {
		workers = s.workers
	}
	if workers <= 0 {
		return nil, eris.Wrapf(batch.ErrInvalidWorkerCount, "search: got %d", workers)
	}

	report := &Report{
		RunID:   uuid.NewString(),
		Keyword: req.Keyword,
		Workers: workers,
	}
	log := zap.L().With(zap.String("run_id", report.RunID), zap.String("keyword", req.Keyword))

	start := time.Now()
	blocks, err := s.source.Acquire(ctx, req.Keyword)
	if err != nil {
		return nil, eris.Wrap(err, "search: acquire listing")
	}
	report.Timings.Listing = time.Since(start)

	start = time.Now()
	items, stats, err := batch.NewCoordinator(s.extractor, workers).Run(ctx, blocks, req.Keyword)
	if err != nil {
		return nil, eris.Wrap(err, "search: extract")
	}
	report.Timings.Extraction = time.Since(start)

	if items == nil {
		items = []model.Item{}
	}
	report.Items = items
	report.Stats = stats

	log.Info("search complete",
		zap.Int("workers", workers),
		zap.Int("total_found", stats.Blocks),
		zap.Int("relevant", stats.Records),
		zap.Int("filtered", stats.FilterSkips),
		zap.Int("unreachable", stats.FetchSkips),
		zap.Int("malformed", stats.StructuralSkips),
		zap.Int("field_group_misses", stats.FieldGroupMiss),
		zap.Duration("listing_time", report.Timings.Listing),
		zap.Duration("extraction_time", report.Timings.Extraction),
	)

	return report, nil
}
