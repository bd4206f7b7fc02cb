// Package fetcherrors holds the three failure kinds a run can surface
// (spec §7). Each carries the final Environment for diagnostics, matching
// go-ethereum's preference for small concrete error structs over sentinel
// values whenever the caller needs more than a string (eth/feemarket's
// Provider interface follows the same "return a typed thing, not just an
// error string" instinct).
package fetcherrors

import (
	"fmt"

	"github.com/fetchplan/fetchplan/env"
)

// NotFoundError is raised when a single-identity request resolves but the
// source reports the identity unknown.
type NotFoundError struct {
	Env      *env.Environment
	Source   string
	Identity any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("fetchplan: identity %v not found in source %q", e.Identity, e.Source)
}

// MissingIdentitiesError is raised when a batched request resolves with
// some identities absent from the source's response.
type MissingIdentitiesError struct {
	Env     *env.Environment
	Missing map[string][]any
}

func (e *MissingIdentitiesError) Error() string {
	total := 0
	for _, ids := range e.Missing {
		total += len(ids)
	}
	return fmt.Sprintf("fetchplan: %d identities missing across %d source(s)", total, len(e.Missing))
}

// UnhandledException is raised when an Err node is reduced during
// execution — a user-lifted failure rather than anything the planner or
// a source produced.
type UnhandledException struct {
	Env     *env.Environment
	Payload error
}

func (e *UnhandledException) Error() string {
	return fmt.Sprintf("fetchplan: unhandled exception: %v", e.Payload)
}

// Unwrap exposes the lifted payload to errors.Is/errors.As.
func (e *UnhandledException) Unwrap() error {
	return e.Payload
}
