package concurrent

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Workers normalizes a worker count: values below 1 mean one worker per CPU.
func Workers(n int) int {
	if n < 1 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

// ForEach calls fn for every index in [0, n) using at most workers goroutines.
// It waits for all calls and returns the first error encountered. Indices not
// yet started when an error occurs are skipped.
func ForEach(ctx context.Context, n, workers int, fn func(ctx context.Context, i int) error) error {
	if n <= 0 {
		return nil
	}
	if Workers(workers) == 1 || n == 1 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(ctx, i); err != nil {
				return err
			}
		}
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(Workers(workers))
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(ctx, i)
		})
	}
	return g.Wait()
}

// Map applies mapFn to each element in parallel, preserving order.
// The workers parameter bounds the number of goroutines.
func Map[T any, R any](in []T, workers int, mapFn func(T) R) []R {
	out := make([]R, len(in))
	_ = ForEach(context.Background(), len(in), workers, func(_ context.Context, i int) error {
		out[i] = mapFn(in[i])
		return nil
	})
	return out
}
