// Package worker fans out per-run work (compose-all) across a bounded number
// of goroutines and collects results in input order.
package worker

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Result pairs a processed value with its original index to preserve ordering.
type Result[T any] struct {
	Index int
	Item  string
	Value T
	Err   error
}

// Pool bounds how many items are processed at once.
type Pool[T any] struct {
	concurrency int
}

// NewPool creates a worker pool with the given concurrency.
// If concurrency <= 0, defaults to runtime.NumCPU().
func NewPool[T any](concurrency int) *Pool[T] {
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	return &Pool[T]{concurrency: concurrency}
}

// Concurrency reports the effective limit.
func (p *Pool[T]) Concurrency() int { return p.concurrency }

// Process applies fn to every item and returns results in the same order as
// items. A failing item records its error in its Result and does not stop
// the others. Items not yet started when ctx is done get ctx.Err().
func (p *Pool[T]) Process(ctx context.Context, items []string, fn func(context.Context, string) (T, error)) []Result[T] {
	if len(items) == 0 {
		return nil
	}

	results := make([]Result[T], len(items))
	var g errgroup.Group
	g.SetLimit(p.concurrency)

	for i, item := range items {
		g.Go(func() error {
			results[i] = Result[T]{Index: i, Item: item}
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Value, results[i].Err = fn(ctx, item)
			return nil
		})
	}
	_ = g.Wait() // per-item errors live in results

	return results
}

// Errors returns the non-nil errors in results, in order.
func Errors[T any](results []Result[T]) []error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errs
}
