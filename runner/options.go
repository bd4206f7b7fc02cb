package runner

import (
	"github.com/fetchplan/fetchplan/flog"
	"github.com/fetchplan/fetchplan/internal/cache"
)

type options struct {
	cache     cache.Cache
	logger    flog.Logger
	typeCheck bool
}

// Option configures a Run/RunEnv invocation.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		cache:  cache.NewInMemory(),
		logger: flog.NewTerminal(flog.LevelInfo),
	}
}

// WithCache selects the cache backend for this run. Defaults to a fresh
// cache.InMemory; pass cache.Forgetful{} to disable caching, or a shared
// cache.LRU to bound memory across many runs.
func WithCache(c cache.Cache) Option {
	return func(o *options) { o.cache = c }
}

// WithLogger overrides the logger used for round diagnostics. Defaults to
// a terminal logger at info level.
func WithLogger(l flog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTypeChecking enables the debug-mode assertion (spec §9) that a
// value retrieved from the cache for a Req node matches the static value
// type the request was originally built with. Off by default: it costs a
// reflect.TypeOf comparison per cache hit and only catches programmer
// error (two sources sharing a name but disagreeing on value type).
func WithTypeChecking() Option {
	return func(o *options) { o.typeCheck = true }
}
