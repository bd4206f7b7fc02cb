// Package ast holds the type-erased representation of a fetch description.
//
// The public combinator API in package fetch is generic; this package is
// not. A Fetch[A] is a thin typed wrapper around a Node, and Bind's
// continuation is stored here as a plain func(any) Node — the existential
// wrapper the design notes call for. The planner and executor only ever
// operate on Node, never on the generic wrapper, which is what lets the
// round planner "see through" Join without needing to know the static type
// of anything it crosses.
package ast

import (
	"context"
	"reflect"
)

// Source is the type-erased dispatch surface a Req node holds a handle to.
// The generic fetch.Request constructor adapts a typed DataSource into one
// of these; batch dispatch and caching never see the original type
// parameters again.
type Source interface {
	Name() string
	FetchOne(ctx context.Context, id any) (any, bool, error)
	FetchMany(ctx context.Context, ids []any) (map[any]any, error)
}

// CacheKey names one fetched value: a source name paired with the identity
// requested from it. Two sources sharing a name collide by design (spec
// §3: "names must be disjoint").
type CacheKey struct {
	Source   string
	Identity any
}

// Node is one node of the fetch AST. The concrete variants below are the
// only implementations: the unexported node method means no type outside
// this package can satisfy Node, while sibling packages such as the
// planner can still type-switch on the exported variants.
type Node interface {
	node()
}

// Pure is an already-known value; it contributes nothing to any frontier.
type Pure struct {
	Value any
}

func (Pure) node() {}

// Req is a single deferred fetch against one source. ValueType records
// the static value type the generic fetch.Request call was built with.
// It is only consulted when a run opts into debug type checking (spec
// §9: "assert at lookup that the stored value matches the expected
// source's value type") — rewrite ignores it otherwise.
type Req struct {
	Src       Source
	Identity  any
	ValueType reflect.Type
}

func (Req) node() {}

// Key returns the cache key this request resolves against.
func (r Req) Key() CacheKey {
	return CacheKey{Source: r.Src.Name(), Identity: r.Identity}
}

// Join is the only parallel constructor: Left and Right have no data
// dependency on each other, so the planner may batch requests from both
// into the same round. Combine merges their resolved values once both
// sides are Pure.
type Join struct {
	Left, Right Node
	Combine     func(left, right any) any
}

func (Join) node() {}

// Bind is sequential composition: K is opaque until Left resolves to a
// Pure value, so the planner cannot see past it. This is the entire basis
// for round separation (spec §4.2's "key design decision").
type Bind struct {
	Left Node
	K    func(any) Node
}

func (Bind) node() {}

// Err is a user-lifted failure, terminal like Pure.
type Err struct {
	Payload error
}

func (Err) node() {}
