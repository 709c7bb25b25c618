package util

import (
	"context"
	"sync"
)

// ParallelMap applies fn to every element of items using a fixed-size worker
// pool and returns the results in input order. Workers consume indices from a
// bounded queue, so no two goroutines ever write the same slot. Per-item
// errors are returned positionally and do not stop the remaining work; the
// only global failure is context cancellation.
func ParallelMap[T, R any](ctx context.Context, workers int, items []T, fn func(ctx context.Context, item T) (R, error)) ([]R, []error) {
	results := make([]R, len(items))
	errs := make([]error, len(items))

	if len(items) == 0 {
		return results, errs
	}
	if workers > len(items) {
		workers = len(items)
	}
	if workers < 1 {
		workers = 1
	}

	idxCh := make(chan int, len(items))
	for i := range items {
		idxCh <- i
	}
	close(idxCh)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idxCh {
				if ctx.Err() != nil {
					errs[i] = ctx.Err()
					continue
				}
				results[i], errs[i] = fn(ctx, items[i])
			}
		}()
	}
	wg.Wait()

	return results, errs
}
