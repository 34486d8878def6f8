// Package fileproc provides the concurrent fan-out used by extraction and
// call resolution. Results merge under a single mutex and arrive in
// arbitrary order; callers sort before exposing anything.
package fileproc

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/auspexlab/auspex/pkg/parser"
)

// FileError records one file that failed processing.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e FileError) Unwrap() error { return e.Err }

// DefaultWorkerMultiplier scales NumCPU for the worker count. Parsing mixes
// I/O with CGO calls, so 2x keeps the cores busy.
const DefaultWorkerMultiplier = 2

// Workers resolves a configured worker count, 0 meaning automatic.
func Workers(n int) int {
	if n <= 0 {
		return runtime.NumCPU() * DefaultWorkerMultiplier
	}
	return n
}

// ProgressFunc is called once per processed item, success or failure.
type ProgressFunc func()

// MapFiles runs fn over files in parallel, each call receiving a dedicated
// parser. Failed files are collected as FileErrors rather than aborting;
// the context cancels remaining work.
func MapFiles[T any](ctx context.Context, files []string, workers int, fn func(context.Context, *parser.Parser, string) (T, error), onProgress ProgressFunc) ([]T, []FileError) {
	if len(files) == 0 {
		return nil, nil
	}

	results := make([]T, 0, len(files))
	var failed []FileError
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(Workers(workers))
	for _, path := range files {
		p.Go(func() {
			if onProgress != nil {
				defer onProgress()
			}
			if ctx.Err() != nil {
				mu.Lock()
				failed = append(failed, FileError{Path: path, Err: ctx.Err()})
				mu.Unlock()
				return
			}

			psr := parser.New()
			defer psr.Close()

			result, err := fn(ctx, psr, path)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, FileError{Path: path, Err: err})
				return
			}
			results = append(results, result)
		})
	}
	p.Wait()

	return results, failed
}

// Map runs fn over items in parallel without a parser, merging results under
// one mutex. Items that return an error are dropped.
func Map[S, T any](items []S, workers int, fn func(S) (T, error)) []T {
	if len(items) == 0 {
		return nil
	}

	results := make([]T, 0, len(items))
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(Workers(workers))
	for _, item := range items {
		p.Go(func() {
			result, err := fn(item)
			if err != nil {
				return
			}
			mu.Lock()
			results = append(results, result)
			mu.Unlock()
		})
	}
	p.Wait()

	return results
}
