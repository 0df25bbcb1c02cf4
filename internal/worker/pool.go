package worker

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Task represents a unit of work processed by the pool.
type Task[T any, R any] struct {
	Input  T
	Result R
	Err    error
}

// ProcessFunc is the function signature for processing a single task.
type ProcessFunc[T any, R any] func(ctx context.Context, input T) (R, error)

// Pool is a generic worker pool with configurable concurrency.
type Pool[T any, R any] struct {
	workers int
	process ProcessFunc[T, R]
}

// NewPool creates a new worker pool.
func NewPool[T any, R any](workers int, fn ProcessFunc[T, R]) *Pool[T, R] {
	if workers < 1 {
		workers = 1
	}
	return &Pool[T, R]{
		workers: workers,
		process: fn,
	}
}

// Execute runs all inputs through the pool and returns one task per input
// in input order. A failing task does not stop the others; inputs not
// started before ctx is cancelled carry the context error.
func (p *Pool[T, R]) Execute(ctx context.Context, inputs []T) []Task[T, R] {
	results := make([]Task[T, R], len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, in := range inputs {
		results[i].Input = in
		if err := gctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			result, err := p.process(gctx, in)
			results[i].Result, results[i].Err = result, err
			if err != nil {
				log.Error().Err(err).Int("index", i).Msg("Task failed")
			}
			return nil
		})
	}

	g.Wait()
	return results
}

// Failed returns the tasks that ended with an error.
func Failed[T any, R any](tasks []Task[T, R]) []Task[T, R] {
	var out []Task[T, R]
	for _, t := range tasks {
		if t.Err != nil {
			out = append(out, t)
		}
	}
	return out
}
