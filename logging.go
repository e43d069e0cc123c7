package coroexec

import (
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Level is a logging severity, ordered from least to most severe, matching
// the subset of syslog levels this module actually emits.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Entry is one structured log record. Category names the emitting
// subsystem ("context", "service"); Err is optional.
type Entry struct {
	Level    Level
	Category string
	Message  string
	Err      error
}

// Logger is the package-wide logging seam. The core components (Context,
// Service, Sync) never format or write directly; they call Logger.Log so a
// host process can redirect, filter, or silence logging entirely.
type Logger interface {
	Log(Entry)
	Enabled(Level) bool
}

type noopLogger struct{}

func (noopLogger) Log(Entry)            {}
func (noopLogger) Enabled(Level) bool   { return false }

// NoopLogger returns a Logger that discards everything.
func NoopLogger() Logger { return noopLogger{} }

var globalLogger struct {
	sync.RWMutex
	logger Logger
}

// SetLogger installs the process-wide default logger used by components
// constructed without an explicit WithContextLogger or WithServiceLogger
// option.
func SetLogger(l Logger) {
	globalLogger.Lock()
	defer globalLogger.Unlock()
	globalLogger.logger = l
}

func currentLogger() Logger {
	globalLogger.RLock()
	defer globalLogger.RUnlock()
	if globalLogger.logger != nil {
		return globalLogger.logger
	}
	return defaultLogger()
}

var (
	defaultLoggerOnce sync.Once
	defaultLoggerInst Logger
)

// defaultLogger lazily constructs the built-in stumpy-backed logger. It is a
// process-wide once-initialized resource, the same pattern the original
// uses for its Winsock initializer and logging mutex.
func defaultLogger() Logger {
	defaultLoggerOnce.Do(func() {
		defaultLoggerInst = NewEventLogger(LevelInfo, os.Stdout, os.Stderr)
	})
	return defaultLoggerInst
}

// EventLogger implements Logger atop logiface+stumpy: events are encoded as
// single-line JSON, informational severities to stdout, LevelError to
// stderr, each line carrying a "ts" field formatted as
// YYYY-MM-DD HH:MM:SS.mmm, per the timestamped-logging contract.
type EventLogger struct {
	level  atomic.Int32
	mu     sync.Mutex
	stdout *logiface.Logger[*stumpy.Event]
	stderr *logiface.Logger[*stumpy.Event]
}

// NewEventLogger constructs an EventLogger writing informational levels to
// out and LevelError to errOut.
func NewEventLogger(level Level, out, errOut io.Writer) *EventLogger {
	l := &EventLogger{}
	l.level.Store(int32(level))
	// WithTimeField("") disables stumpy's own RFC3339-ish time field; the
	// module's timestamp is formatted explicitly per entry, below, so the
	// on-wire format matches the spec's YYYY-MM-DD HH:MM:SS.mmm exactly.
	l.stdout = stumpy.L.New(stumpy.L.WithStumpy(stumpy.L.WithWriter(out), stumpy.L.WithTimeField("")))
	l.stderr = stumpy.L.New(stumpy.L.WithStumpy(stumpy.L.WithWriter(errOut), stumpy.L.WithTimeField("")))
	return l
}

func (l *EventLogger) Enabled(level Level) bool {
	return int32(level) >= l.level.Load()
}

func (l *EventLogger) Log(e Entry) {
	if !l.Enabled(e.Level) {
		return
	}
	logger := l.stdout
	if e.Level == LevelError {
		logger = l.stderr
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var b *logiface.Builder[*stumpy.Event]
	switch e.Level {
	case LevelDebug:
		b = logger.Debug()
	case LevelWarn:
		b = logger.Warning()
	case LevelError:
		b = logger.Err()
	default:
		b = logger.Info()
	}

	b = b.Str("ts", formatTimestamp(time.Now())).Str("category", e.Category)
	if e.Err != nil {
		b = b.Err(e.Err)
	}
	b.Log(e.Message)
}

// formatTimestamp renders t as YYYY-MM-DD HH:MM:SS.mmm.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05.000")
}
