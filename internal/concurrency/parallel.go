package concurrency

import (
	"context"
	"sync"
)

// ParallelOptions configures parallel processing behavior.
type ParallelOptions struct {
	// MaxWorkers is the upper bound on concurrent workers.
	MaxWorkers int
}

// DefaultOptions returns sane defaults for provider fan-out: a handful of
// upstreams, one worker each.
func DefaultOptions() ParallelOptions {
	return ParallelOptions{
		MaxWorkers: 8,
	}
}

// ProcessParallel runs itemFunc over items with bounded parallelism and
// returns results positionally aligned with the input, plus the per-item
// errors (aligned the same way; nil where the item succeeded). The facade
// relies on that alignment to tell which provider failed.
func ProcessParallel[T any, R any](
	ctx context.Context,
	items []T,
	opts ParallelOptions,
	itemFunc func(ctx context.Context, index int, item T) (R, error),
) ([]R, []error) {
	if len(items) == 0 {
		return []R{}, nil
	}

	maxWorkers := opts.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = DefaultOptions().MaxWorkers
	}
	if maxWorkers > len(items) {
		maxWorkers = len(items)
	}

	jobs := make(chan int, len(items))
	type outcome struct {
		index  int
		result R
		err    error
	}
	results := make(chan outcome, len(items))

	var wg sync.WaitGroup
	for w := 0; w < maxWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for jobIndex := range jobs {
				select {
				case <-ctx.Done():
					results <- outcome{index: jobIndex, err: ctx.Err()}
				default:
					result, err := itemFunc(ctx, jobIndex, items[jobIndex])
					results <- outcome{index: jobIndex, result: result, err: err}
				}
			}
		}()
	}

	for i := range items {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	resultList := make([]R, len(items))
	errList := make([]error, len(items))
	for i := 0; i < len(items); i++ {
		res := <-results
		resultList[res.index] = res.result
		errList[res.index] = res.err
	}

	return resultList, errList
}
