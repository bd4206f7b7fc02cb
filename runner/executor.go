// Package runner implements the executor (spec §4.6, C7): the iterative
// round loop that drives an AST against user data sources, maintaining a
// per-run cache and environment. It is grounded on the round-trip shape
// of go-ethereum's trie prefetcher (core/state/trie_prefetcher.go) — plan
// the frontier, dispatch it in parallel, merge results, advance — and on
// miner/worker.go's habit of driving a loop to a fixed point rather than
// a single pass.
package runner

import (
	"context"

	"github.com/fetchplan/fetchplan/env"
	"github.com/fetchplan/fetchplan/fetcherrors"
	"github.com/fetchplan/fetchplan/internal/ast"
	"github.com/fetchplan/fetchplan/internal/batch"
	"github.com/fetchplan/fetchplan/internal/cache"
	"github.com/fetchplan/fetchplan/internal/frontier"
)

// Run drives root to its final value, discarding the environment.
func Run(ctx context.Context, root ast.Node, opts ...Option) (any, error) {
	_, v, err := RunEnv(ctx, root, opts...)
	return v, err
}

// RunEnv drives root to its final value and returns the full bookkeeping
// environment (cache state is reachable through the recorded rounds;
// the cache instance itself is whatever WithCache supplied, so the
// caller already has a handle on it for reuse across runs).
func RunEnv(ctx context.Context, root ast.Node, opts ...Option) (*env.Environment, any, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	e := env.New()
	node := root

	for {
		node = rewrite(node, o.cache, o.typeCheck)

		entries := frontier.Of(node)
		if len(entries) == 0 {
			switch v := node.(type) {
			case ast.Pure:
				return e, v.Value, nil
			case ast.Err:
				return e, nil, &fetcherrors.UnhandledException{Env: e, Payload: v.Payload}
			default:
				// rewrite collapses every node whose frontier is empty
				// down to Pure or Err; reaching here would mean that
				// invariant broke. Loop once more defensively instead
				// of trusting it blindly.
				continue
			}
		}

		queries := batch.Compile(entries, o.cache)
		if len(queries) == 0 {
			// Every frontier entry was already satisfied by the cache
			// (spec §4.4's empty-compiled-round edge case) — nothing to
			// dispatch, let the next rewrite pass collapse it.
			continue
		}

		results, fetchedBySource, notFound, missingBySource, dispatchErr := dispatchRound(ctx, queries)
		for k, v := range results {
			o.cache.Put(k, v)
		}

		roundQueries := make([]env.Query, 0, len(queries))
		for _, q := range queries {
			roundQueries = append(roundQueries, env.Query{
				Source:    q.SourceName,
				Requested: q.Identities,
				Fetched:   fetchedBySource[q.SourceName],
			})
		}
		e.RecordRound(roundQueries)
		o.logger.Debug("fetchplan round complete", "round", e.RoundCount(), "sources", len(queries))

		if dispatchErr != nil {
			return e, nil, dispatchErr
		}
		if notFound != nil {
			notFound.Env = e
			return e, nil, notFound
		}
		if len(missingBySource) > 0 {
			return e, nil, &fetcherrors.MissingIdentitiesError{Env: e, Missing: missingBySource}
		}

		// Apply this round's results to the node directly, so the run
		// still advances when the cache does not keep them
		// (cache.Forgetful).
		node = rewrite(node, cache.NewInMemorySeeded(results), o.typeCheck)
	}
}
