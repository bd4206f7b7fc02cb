package fetch

import (
	"context"

	"github.com/fetchplan/fetchplan/env"
	"github.com/fetchplan/fetchplan/runner"
)

// Option configures a Run/RunEnv invocation — cache backend, logger, and
// debug checks. Re-exported from runner so callers never need to import
// that package directly.
type Option = runner.Option

var (
	// WithCache selects the cache backend for this run (default: a
	// fresh in-memory cache, i.e. spec §6's "cache=empty").
	WithCache = runner.WithCache
	// WithLogger overrides the logger used for round diagnostics.
	WithLogger = runner.WithLogger
	// WithTypeChecking enables the debug cache-value type assertion
	// described in spec §9.
	WithTypeChecking = runner.WithTypeChecking
)

// Run drives f to completion, returning its value and discarding the
// environment (spec §6: run(ast, cache=empty) -> effect<A>).
func Run[A any](ctx context.Context, f Fetch[A], opts ...Option) (A, error) {
	v, err := runner.Run(ctx, f.node, opts...)
	if err != nil {
		var zero A
		return zero, err
	}
	return v.(A), nil
}

// RunEnv drives f to completion like Run, but also returns the full
// bookkeeping environment (spec §6: run_env(ast, cache=empty) ->
// effect<(Environment, A)>).
func RunEnv[A any](ctx context.Context, f Fetch[A], opts ...Option) (*env.Environment, A, error) {
	e, v, err := runner.RunEnv(ctx, f.node, opts...)
	if err != nil {
		var zero A
		return e, zero, err
	}
	return e, v.(A), nil
}
