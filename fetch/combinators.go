package fetch

import "github.com/fetchplan/fetchplan/internal/ast"

// Map transforms a Fetch's eventual result with a pure function. Defined
// in terms of FlatMap, as spec §4.2 specifies: map(ast, f) ≡
// Bind(ast, x -> Pure(f(x))).
func Map[A, B any](f Fetch[A], fn func(A) B) Fetch[B] {
	return FlatMap(f, func(a A) Fetch[B] { return Pure(fn(a)) })
}

// FlatMap sequences f with a continuation that may depend on f's result.
// The continuation is opaque to the planner until f resolves — this is
// the Bind constructor (spec §4.2's "key design decision"), and the
// reason Bind-separated requests never share a round.
func FlatMap[A, B any](f Fetch[A], k func(A) Fetch[B]) Fetch[B] {
	return Fetch[B]{node: ast.Bind{
		Left: f.node,
		K: func(v any) ast.Node {
			return k(v.(A)).node
		},
	}}
}

// Pair is the result of Product: the two independently-resolved values.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Product runs l and r with no data dependency between them (spec
// §4.2's Join — the only parallel constructor). If both sides reach a
// source of the same name in the same round, the batch compiler merges
// their identities into one dispatched query (spec invariant 4).
func Product[A, B any](l Fetch[A], r Fetch[B]) Fetch[Pair[A, B]] {
	return Fetch[Pair[A, B]]{node: ast.Join{
		Left:  l.node,
		Right: r.node,
		Combine: func(lv, rv any) any {
			return Pair[A, B]{First: lv.(A), Second: rv.(B)}
		},
	}}
}

// Traverse maps f over items and joins every result in parallel (spec
// §4.2: "right-leaning Join fold over f(item_i)"), producing one Fetch
// of the ordered results. Because Traverse uses Join rather than a chain
// of FlatMaps, the planner can batch all of f(items[i]) into a single
// round whenever they target the same source (spec §8 property/scenario
// S5).
func Traverse[T, A any](items []T, f func(T) Fetch[A]) Fetch[[]A] {
	if len(items) == 0 {
		return Pure([]A{})
	}

	acc := Map(f(items[len(items)-1]), func(a A) []A { return []A{a} })
	for i := len(items) - 2; i >= 0; i-- {
		cur := f(items[i])
		acc = Map(Product(cur, acc), func(p Pair[A, []A]) []A {
			return append([]A{p.First}, p.Second...)
		})
	}
	return acc
}

// Sequence flattens a slice of Fetches into one Fetch of their ordered
// results: sequence(fs) ≡ traverse(fs, id) (spec §4.2).
func Sequence[A any](fs []Fetch[A]) Fetch[[]A] {
	return Traverse(fs, func(f Fetch[A]) Fetch[A] { return f })
}
