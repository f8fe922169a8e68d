// Package batch runs several saved queries in parallel.
package batch

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/takeshy/davquery/internal/engine"
	"github.com/takeshy/davquery/internal/store"
)

const defaultParallelism = 4

// Executor runs one query block
type Executor interface {
	Execute(ctx context.Context, text string) (*engine.Result, error)
}

// Source looks up saved queries by name
type Source interface {
	GetQuery(name string) (*store.SavedQuery, error)
}

// Result represents the outcome of one saved query
type Result struct {
	Name   string
	Result *engine.Result
	Err    error
}

// Runner executes saved queries with bounded parallelism
type Runner struct {
	exec        Executor
	source      Source
	parallelism int
}

// NewRunner creates a new runner
func NewRunner(exec Executor, source Source, parallelism int) *Runner {
	if parallelism < 1 {
		parallelism = defaultParallelism
	}
	return &Runner{
		exec:        exec,
		source:      source,
		parallelism: parallelism,
	}
}

// RunAll runs every named query. Results are in the order of names and a
// failing query does not stop the others. progress, if set, is called as each
// query finishes and may be called concurrently.
func (r *Runner) RunAll(ctx context.Context, names []string, progress func(Result)) []Result {
	results := make([]Result, len(names))

	var g errgroup.Group
	g.SetLimit(r.parallelism)

	for i, name := range names {
		g.Go(func() error {
			res := r.runOne(ctx, name)
			results[i] = res
			if progress != nil {
				progress(res)
			}
			return nil
		})
	}

	_ = g.Wait()
	return results
}

func (r *Runner) runOne(ctx context.Context, name string) Result {
	result := Result{Name: name}

	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	saved, err := r.source.GetQuery(name)
	if err != nil {
		result.Err = err
		return result
	}

	result.Result, result.Err = r.exec.Execute(ctx, saved.Text)
	return result
}
