// Package batch implements the batch compiler (spec §4.4): grouping a
// planned frontier by source, deduplicating identities, and producing one
// query per source.
package batch

import (
	"github.com/fetchplan/fetchplan/internal/ast"
	"github.com/fetchplan/fetchplan/internal/cache"
	"github.com/fetchplan/fetchplan/internal/frontier"
)

// Query is one compiled, dispatchable request against a single source.
// Identities is deduplicated and non-empty.
type Query struct {
	Src        ast.Source
	SourceName string
	Identities []any
}

// Compile drops entries already satisfied by c, groups the remainder by
// source name (first-encounter order, for deterministic round logs), and
// dedupes identities within each group. A source present in the frontier
// with only a single surviving identity still yields a Query — it is the
// dispatch path (One vs Many) that decides how to call the source, not
// the compiler (spec §4.4 edge case: singleton batching subsumes One).
func Compile(entries []frontier.Entry, c cache.Cache) []Query {
	order := make([]string, 0, len(entries))
	bySource := make(map[string]*Query)

	for _, e := range entries {
		if _, cached := c.Get(e.Key); cached {
			continue
		}
		q, ok := bySource[e.Key.Source]
		if !ok {
			q = &Query{Src: e.Src, SourceName: e.Key.Source}
			bySource[e.Key.Source] = q
			order = append(order, e.Key.Source)
		}
		if !containsIdentity(q.Identities, e.Key.Identity) {
			q.Identities = append(q.Identities, e.Key.Identity)
		}
	}

	out := make([]Query, 0, len(order))
	for _, name := range order {
		out = append(out, *bySource[name])
	}
	return out
}

func containsIdentity(ids []any, id any) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}
