// Package batch runs an operation over a slice of items with a bounded
// number of concurrent workers.
package batch

import (
	"context"
	"sync"
)

// Result pairs an input item with the outcome of its operation.
type Result[T, R any] struct {
	Item  T
	Value R
	Err   error
}

// Map applies op to every item using at most limit concurrent calls and
// returns exactly one Result per item. Results arrive in completion order,
// not input order; callers that need ordering should carry an index in T.
// A limit below one degrades to serial execution.
func Map[T, R any](ctx context.Context, limit int, items []T, op func(context.Context, T) (R, error)) []Result[T, R] {
	if len(items) == 0 {
		return nil
	}
	if limit < 1 {
		limit = 1
	}
	if limit > len(items) {
		limit = len(items)
	}

	work := make(chan T)
	out := make(chan Result[T, R], len(items))

	var wg sync.WaitGroup
	for i := 0; i < limit; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range work {
				value, err := op(ctx, item)
				out <- Result[T, R]{Item: item, Value: value, Err: err}
			}
		}()
	}

	for _, item := range items {
		select {
		case work <- item:
		case <-ctx.Done():
			// Unfed items still get a result so counts stay honest.
			out <- Result[T, R]{Item: item, Err: ctx.Err()}
		}
	}
	close(work)
	wg.Wait()
	close(out)

	results := make([]Result[T, R], 0, len(items))
	for r := range out {
		results = append(results, r)
	}
	return results
}
