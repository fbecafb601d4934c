package batch

import "github.com/rotisserie/eris"

// ErrInvalidWorkerCount is returned for a non-positive worker count.
var ErrInvalidWorkerCount = eris.New("batch: worker count must be positive")

// Partition splits items into exactly k contiguous chunks of ceil(len/k)
// elements. Trailing chunks may be shorter or empty. Chunks share the
// backing array of items; concatenated in order they reproduce items.
func Partition[T any](items []T, k int) ([][]T, error) {
	if k <= 0 {
		return nil, eris.Wrapf(ErrInvalidWorkerCount, "got %d", k)
	}

	size := (len(items) + k - 1) / k
	chunks := make([][]T, k)
	for i := 0; i < k; i++ {
		start := min(i*size, len(items))
		end := min(start+size, len(items))
		chunks[i] = items[start:end:end]
	}
	return chunks, nil
}
