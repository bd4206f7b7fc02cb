// Package flog is a small leveled logger in the style of go-ethereum's
// log package: free functions over a root logger, key-value context
// pairs, and colorized terminal output. The spec carries no observability
// requirements of its own, but every ambient concern the teacher has for
// its own operational code (cache state changes, round dispatch, source
// errors) is expected to go through something like this rather than raw
// fmt.Println (SPEC_FULL.md's AMBIENT STACK).
package flog

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Level is a logger's verbosity threshold.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelCrit
)

func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelCrit:
		return "CRIT"
	default:
		return "????"
	}
}

var levelColor = map[Level]string{
	LevelTrace: "\x1b[90m",
	LevelDebug: "\x1b[36m",
	LevelInfo:  "\x1b[32m",
	LevelWarn:  "\x1b[33m",
	LevelError: "\x1b[31m",
	LevelCrit:  "\x1b[35m",
}

const colorReset = "\x1b[0m"

// Logger is the leveled, key-value logging surface used across the
// module. The signature mirrors go-ethereum's log.Logger: a message
// followed by an even number of key/value context arguments.
type Logger interface {
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any)
}

type logger struct {
	mu      sync.Mutex
	w       io.Writer
	minimum Level
	color   bool
}

// New returns a Logger writing to w at or above minimum. Output is never
// colorized regardless of the writer.
func New(w io.Writer, minimum Level) Logger {
	return &logger{w: w, minimum: minimum}
}

// NewTerminal returns a Logger writing to stderr, colorized when stderr
// is attached to a terminal (checked via mattn/go-isatty, the same check
// go-ethereum's own log package performs).
func NewTerminal(minimum Level) Logger {
	isTerm := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	var w io.Writer = os.Stderr
	if isTerm {
		w = colorable.NewColorableStderr()
	}
	return &logger{w: w, minimum: minimum, color: isTerm}
}

// root is the package-level default logger, mirroring go-ethereum's
// global log.Root(). Replace it with SetRoot to redirect all package-
// level Trace/Debug/Info/Warn/Error/Crit calls.
var root Logger = NewTerminal(LevelInfo)
var rootMu sync.RWMutex

// SetRoot replaces the package-level default logger.
func SetRoot(l Logger) {
	rootMu.Lock()
	defer rootMu.Unlock()
	root = l
}

func getRoot() Logger {
	rootMu.RLock()
	defer rootMu.RUnlock()
	return root
}

func Trace(msg string, ctx ...any) { getRoot().Trace(msg, ctx...) }
func Debug(msg string, ctx ...any) { getRoot().Debug(msg, ctx...) }
func Info(msg string, ctx ...any)  { getRoot().Info(msg, ctx...) }
func Warn(msg string, ctx ...any)  { getRoot().Warn(msg, ctx...) }
func Error(msg string, ctx ...any) { getRoot().Error(msg, ctx...) }
func Crit(msg string, ctx ...any)  { getRoot().Crit(msg, ctx...) }

func (l *logger) Trace(msg string, ctx ...any) { l.log(LevelTrace, msg, ctx) }
func (l *logger) Debug(msg string, ctx ...any) { l.log(LevelDebug, msg, ctx) }
func (l *logger) Info(msg string, ctx ...any)  { l.log(LevelInfo, msg, ctx) }
func (l *logger) Warn(msg string, ctx ...any)  { l.log(LevelWarn, msg, ctx) }
func (l *logger) Error(msg string, ctx ...any) { l.log(LevelError, msg, ctx) }
func (l *logger) Crit(msg string, ctx ...any)  { l.log(LevelCrit, msg, ctx) }

func (l *logger) log(level Level, msg string, ctx []any) {
	if level < l.minimum {
		return
	}

	var b strings.Builder
	if l.color {
		b.WriteString(levelColor[level])
	}
	b.WriteString(time.Now().Format("2006-01-02T15:04:05.000"))
	b.WriteByte(' ')
	b.WriteString(level.String())
	if l.color {
		b.WriteString(colorReset)
	}
	b.WriteByte(' ')
	b.WriteString(msg)

	for i := 0; i+1 < len(ctx); i += 2 {
		fmt.Fprintf(&b, " %v=%v", ctx[i], ctx[i+1])
	}
	if len(ctx)%2 == 1 {
		fmt.Fprintf(&b, " %v=MISSING", ctx[len(ctx)-1])
	}
	b.WriteByte('\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	io.WriteString(l.w, b.String())
}
