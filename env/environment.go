// Package env implements the bookkeeping environment (spec §4.7): the
// observable artifact of one run, recording each dispatched round for
// diagnostics and tests.
package env

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Query is one dispatched query within a round: the source it targeted,
// the identities requested, and the subset actually fetched.
type Query struct {
	Source    string
	Requested []any
	Fetched   []any
}

// Round is one parallel dispatch: a nonempty list of queries run
// concurrently before the AST was advanced.
type Round struct {
	Number  int
	Queries []Query
}

// Environment accumulates the rounds of one run. It holds no reference to
// the run's cache; the cache is whatever the caller passed to the run. It
// is private to a single run invocation (spec §3 lifecycle).
type Environment struct {
	mu     sync.Mutex
	rounds []Round
}

// New returns an empty environment.
func New() *Environment {
	return &Environment{}
}

// RecordRound appends a completed round to the log. Rounds are numbered
// in execution order starting at 1.
func (e *Environment) RecordRound(queries []Query) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rounds = append(e.rounds, Round{Number: len(e.rounds) + 1, Queries: queries})
}

// Rounds returns a snapshot of the rounds recorded so far.
func (e *Environment) Rounds() []Round {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Round, len(e.rounds))
	copy(out, e.rounds)
	return out
}

// RoundCount reports how many rounds have been recorded.
func (e *Environment) RoundCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.rounds)
}

// TotalItemsFetched sums the fetched identities across every round,
// useful for asserting dedup/batching behavior in tests (spec §8).
func (e *Environment) TotalItemsFetched() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	total := 0
	for _, r := range e.rounds {
		for _, q := range r.Queries {
			total += len(q.Fetched)
		}
	}
	return total
}

// report is the JSON-friendly shape Describe renders, in the spirit of
// go-ethereum's CacheReport (eth/feemarket/cache_logger.go).
type report struct {
	RoundCount int           `json:"roundCount"`
	Rounds     []roundReport `json:"rounds"`
}

type roundReport struct {
	Number  int           `json:"number"`
	Queries []queryReport `json:"queries"`
}

type queryReport struct {
	Source    string `json:"source"`
	Requested []any  `json:"requested"`
	Fetched   []any  `json:"fetched"`
}

// Describe renders the round log as indented JSON for logging or test
// failure messages. It never errors in practice (the underlying values
// are always JSON-marshalable identities/values supplied by the caller);
// a marshal failure is reported inline rather than panicking.
func (e *Environment) Describe() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	rep := report{RoundCount: len(e.rounds)}
	for _, r := range e.rounds {
		rr := roundReport{Number: r.Number}
		for _, q := range r.Queries {
			rr.Queries = append(rr.Queries, queryReport{
				Source:    q.Source,
				Requested: q.Requested,
				Fetched:   q.Fetched,
			})
		}
		rep.Rounds = append(rep.Rounds, rr)
	}

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Sprintf("<environment: %d rounds, describe failed: %v>", len(e.rounds), err)
	}
	return string(data)
}
