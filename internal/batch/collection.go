package batch

import (
	"sync"

	"github.com/sells-group/appscout/internal/model"
)

// Collection is the shared, append-only result set of one batch run.
// Workers merge whole buffers so the lock is held only for the append.
type Collection struct {
	mu    sync.Mutex
	items []model.Item
	stats model.Stats
}

// Merge appends a worker's buffer and folds in its stats.
func (c *Collection) Merge(items []model.Item, stats model.Stats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, items...)
	c.stats.Add(stats)
}

// Snapshot returns a copy of the merged items and stats.
func (c *Collection) Snapshot() ([]model.Item, model.Stats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]model.Item, len(c.items))
	copy(items, c.items)
	return items, c.stats
}
