// Package frontier implements the round planner (spec §4.3): computing,
// for a given AST, the maximal set of requests reachable without crossing
// a data dependency.
package frontier

import "github.com/fetchplan/fetchplan/internal/ast"

// Entry is one reachable request, carrying both its cache key and the
// source handle needed to actually dispatch it.
type Entry struct {
	Key ast.CacheKey
	Src ast.Source
}

// Of walks n and returns the frontier: every Req reachable through
// Pure/Join/Bind-left without descending into a Bind's continuation.
// Order is first-encounter, left-to-right, depth-first — not meaningful
// for correctness, but kept stable so round logs are deterministic
// (spec §4.3 tie-break note). Duplicate cache keys collapse to one entry.
func Of(n ast.Node) []Entry {
	var out []Entry
	seen := make(map[ast.CacheKey]bool)
	walk(n, &out, seen)
	return out
}

func walk(n ast.Node, out *[]Entry, seen map[ast.CacheKey]bool) {
	switch v := n.(type) {
	case ast.Pure, ast.Err:
		return
	case ast.Req:
		key := v.Key()
		if seen[key] {
			return
		}
		seen[key] = true
		*out = append(*out, Entry{Key: key, Src: v.Src})
	case ast.Join:
		walk(v.Left, out, seen)
		walk(v.Right, out, seen)
	case ast.Bind:
		// The continuation is opaque until Left resolves, so it never
		// contributes requests to this round.
		walk(v.Left, out, seen)
	default:
		panic("frontier: unknown ast.Node variant")
	}
}
