// Package source defines the contract every data source implements (spec
// §4.1, C1): identity, a single-item fetch, and a batched fetch. The
// planner and executor never see this interface directly — fetch.Request
// erases it into the internal ast.Source before building a Req node.
package source

import "context"

// DataSource is the adapter surface a user-provided source implements.
// Both methods must be referentially transparent with respect to
// identity equality: calling either twice for the same identity within
// one run must yield the same value.
type DataSource[I comparable, V any] interface {
	// Name is a constant used as the cache/batch discriminator. Two
	// sources sharing a Name are treated as the same source for caching
	// and batching purposes (spec §3).
	Name() string

	// FetchOne resolves a single identity, reporting false if it is
	// unknown to this source.
	FetchOne(ctx context.Context, id I) (V, bool, error)

	// FetchMany resolves a batch of identities in one round-trip. The
	// returned map may be partial; identities absent from it are
	// treated as not found.
	FetchMany(ctx context.Context, ids []I) (map[I]V, error)
}

// FetchManyByLooping adapts a source that can only fetch one identity at
// a time into the DataSource contract's required FetchMany, by looping
// over FetchOne. Spec §4.1 explicitly sanctions this as an acceptable
// (if unbatched) implementation.
func FetchManyByLooping[I comparable, V any](ctx context.Context, ids []I, one func(context.Context, I) (V, bool, error)) (map[I]V, error) {
	out := make(map[I]V, len(ids))
	for _, id := range ids {
		v, ok, err := one(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			out[id] = v
		}
	}
	return out, nil
}
