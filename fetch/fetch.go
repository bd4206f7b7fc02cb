// Package fetch is the public surface of the scheduler (spec §6): the
// algebraic description type for deferred fetches (C2/C3) plus the
// combinators used to build one up. Nothing in this package performs I/O
// — construction is total and side-effect-free; runner.Run/RunEnv (via
// Run/RunEnv here) is what actually drives a description to a value.
package fetch

import (
	"context"
	"reflect"

	"github.com/fetchplan/fetchplan/fetch/source"
	"github.com/fetchplan/fetchplan/internal/ast"
)

// Fetch is a typed description of a deferred computation. It wraps an
// untyped ast.Node; the type parameter exists only at this layer so
// callers get compile-time safety, while the planner and executor work
// on the erased node beneath it.
type Fetch[A any] struct {
	node ast.Node
}

// Pure lifts an already-known value. It contributes nothing to any
// frontier and costs zero rounds to resolve (spec §3, §8 property S1).
func Pure[A any](v A) Fetch[A] {
	return Fetch[A]{node: ast.Pure{Value: v}}
}

// Error lifts a user payload as a terminal failure. If this node is ever
// reduced during execution, the run fails with a
// fetcherrors.UnhandledException wrapping payload (spec §7).
func Error[A any](payload error) Fetch[A] {
	return Fetch[A]{node: ast.Err{Payload: payload}}
}

// sourceAdapter erases a generic DataSource into the untyped ast.Source
// the planner and executor operate on (spec §9's existential wrapper,
// applied to the source handle rather than the continuation).
type sourceAdapter[I comparable, V any] struct {
	src source.DataSource[I, V]
}

func (a sourceAdapter[I, V]) Name() string { return a.src.Name() }

func (a sourceAdapter[I, V]) FetchOne(ctx context.Context, id any) (any, bool, error) {
	v, ok, err := a.src.FetchOne(ctx, id.(I))
	return v, ok, err
}

func (a sourceAdapter[I, V]) FetchMany(ctx context.Context, ids []any) (map[any]any, error) {
	typed := make([]I, len(ids))
	for i, id := range ids {
		typed[i] = id.(I)
	}
	m, err := a.src.FetchMany(ctx, typed)
	if err != nil {
		return nil, err
	}
	out := make(map[any]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out, nil
}

// Request describes a single deferred fetch of identity id from src.
// Two Request calls with the same source name and equal identity share
// one cache slot and, when reachable in the same round, one batched
// dispatch (spec §4.4).
func Request[I comparable, V any](src source.DataSource[I, V], id I) Fetch[V] {
	var zero V
	return Fetch[V]{node: ast.Req{
		Src:       sourceAdapter[I, V]{src: src},
		Identity:  id,
		ValueType: reflect.TypeOf(zero),
	}}
}
