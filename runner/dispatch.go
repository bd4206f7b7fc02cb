package runner

import (
	"context"

	pkgerrors "github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/fetchplan/fetchplan/fetcherrors"
	"github.com/fetchplan/fetchplan/internal/ast"
	"github.com/fetchplan/fetchplan/internal/batch"
)

// queryOutcome is the per-source result of running one compiled query.
type queryOutcome struct {
	source   string
	fetched  map[ast.CacheKey]any
	idents   []any
	notFound *fetcherrors.NotFoundError
	missing  []any
}

// dispatchRound runs every query in a round concurrently — one goroutine
// per source — via errgroup, the concrete stand-in for spec §5's opaque
// "parallel composition of effects" capability. It gathers results from
// all goroutines before merging into the cache (the gather-then-merge
// step §5 requires), so no source needs to be thread-safe beyond
// tolerating one call per round.
func dispatchRound(ctx context.Context, queries []batch.Query) (
	results map[ast.CacheKey]any,
	fetchedBySource map[string][]any,
	notFound *fetcherrors.NotFoundError,
	missingBySource map[string][]any,
	err error,
) {
	outcomes := make([]queryOutcome, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			oc, ocErr := runQuery(gctx, q)
			outcomes[i] = oc
			return ocErr
		})
	}
	waitErr := g.Wait()

	results = make(map[ast.CacheKey]any)
	fetchedBySource = make(map[string][]any)
	missingBySource = make(map[string][]any)

	for _, oc := range outcomes {
		if oc.source == "" {
			continue
		}
		for k, v := range oc.fetched {
			results[k] = v
		}
		if len(oc.idents) > 0 {
			fetchedBySource[oc.source] = oc.idents
		}
		if oc.notFound != nil && notFound == nil {
			notFound = oc.notFound
		}
		if len(oc.missing) > 0 {
			missingBySource[oc.source] = oc.missing
		}
	}
	err = waitErr
	return
}

// runQuery dispatches a single compiled query against its source,
// choosing FetchOne for a singleton batch and FetchMany otherwise (spec
// §4.4: batching subsumes singletons, but the wire call still prefers
// the cheaper single-item path when only one identity survived
// deduplication).
func runQuery(ctx context.Context, q batch.Query) (queryOutcome, error) {
	oc := queryOutcome{source: q.SourceName}

	if len(q.Identities) == 1 {
		id := q.Identities[0]
		v, ok, err := q.Src.FetchOne(ctx, id)
		if err != nil {
			return oc, pkgerrors.Wrapf(err, "fetchplan: source %q fetch_one failed", q.SourceName)
		}
		if !ok {
			oc.notFound = &fetcherrors.NotFoundError{Source: q.SourceName, Identity: id}
			return oc, nil
		}
		oc.fetched = map[ast.CacheKey]any{{Source: q.SourceName, Identity: id}: v}
		oc.idents = []any{id}
		return oc, nil
	}

	m, err := q.Src.FetchMany(ctx, q.Identities)
	if err != nil {
		return oc, pkgerrors.Wrapf(err, "fetchplan: source %q fetch_many failed", q.SourceName)
	}
	oc.fetched = make(map[ast.CacheKey]any, len(q.Identities))
	for _, id := range q.Identities {
		if v, ok := m[id]; ok {
			oc.fetched[ast.CacheKey{Source: q.SourceName, Identity: id}] = v
			oc.idents = append(oc.idents, id)
		} else {
			oc.missing = append(oc.missing, id)
		}
	}
	return oc, nil
}
