package sparsela

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"
)

// LevelLowPriority sits between debug and info. Per-iteration solver
// diagnostics are emitted at this level.
const LevelLowPriority = slog.Level(-2)

// DefaultVerbosity shows errors, warnings and info messages.
const DefaultVerbosity = 3

// VerbosityLevel maps a verbosity (1 to 5) onto the lowest enabled level:
// 1 errors, 2 warnings, 3 info, 4 low-priority, 5 debug. Values outside the
// range enable everything.
func VerbosityLevel(verbosity int) slog.Level {
	switch verbosity {
	case 1:
		return slog.LevelError
	case 2:
		return slog.LevelWarn
	case 3:
		return slog.LevelInfo
	case 4:
		return LevelLowPriority
	default:
		return slog.LevelDebug
	}
}

// Logger wraps slog.Logger with the five severities used by the solvers and
// a verbosity that can be fixed once after construction.
type Logger struct {
	*slog.Logger

	level  *slog.LevelVar
	fixed  *atomic.Bool
	closer io.Closer
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses a text handler to stdout at DefaultVerbosity.
// The handler's own level applies; SetVerbosity has no effect.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		return NewTextLogger(os.Stdout, DefaultVerbosity)
	}
	return &Logger{
		Logger: slog.New(handler),
		fixed:  new(atomic.Bool),
	}
}

// NewTextLogger creates a Logger that writes human-readable text to w.
func NewTextLogger(w io.Writer, verbosity int) *Logger {
	level := new(slog.LevelVar)
	level.Set(VerbosityLevel(verbosity))
	handler := slog.NewTextHandler(w, handlerOptions(level))
	return &Logger{
		Logger: slog.New(handler),
		level:  level,
		fixed:  new(atomic.Bool),
	}
}

// NewJSONLogger creates a Logger that writes JSON records to w.
func NewJSONLogger(w io.Writer, verbosity int) *Logger {
	level := new(slog.LevelVar)
	level.Set(VerbosityLevel(verbosity))
	handler := slog.NewJSONHandler(w, handlerOptions(level))
	return &Logger{
		Logger: slog.New(handler),
		level:  level,
		fixed:  new(atomic.Bool),
	}
}

// NewFileLogger creates a text Logger that appends to the file at path.
// Call Close to release the file.
func NewFileLogger(path string, verbosity int) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	l := NewTextLogger(f, verbosity)
	l.closer = f
	return l, nil
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
		fixed:  new(atomic.Bool),
	}
}

func handlerOptions(level *slog.LevelVar) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelLowPriority {
					a.Value = slog.StringValue("LOWPRIORITY")
				}
			}
			return a
		},
	}
}

// SetVerbosity sets the verbosity (see VerbosityLevel). Only the first call
// on a logger and the loggers derived from it takes effect; it reports
// whether this call was applied.
func (l *Logger) SetVerbosity(verbosity int) bool {
	if l.level == nil || !l.fixed.CompareAndSwap(false, true) {
		return false
	}
	l.level.Set(VerbosityLevel(verbosity))
	return true
}

// Close releases the log file of a logger created by NewFileLogger.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func (l *Logger) derive(sl *slog.Logger) *Logger {
	return &Logger{Logger: sl, level: l.level, fixed: l.fixed, closer: l.closer}
}

// With returns a Logger that includes the given attributes in each record.
func (l *Logger) With(args ...any) *Logger {
	return l.derive(l.Logger.With(args...))
}

// WithMethod adds a method field to the logger.
func (l *Logger) WithMethod(method Method) *Logger {
	return l.derive(l.Logger.With("method", method.String()))
}

// WithShape adds rows and cols fields to the logger.
func (l *Logger) WithShape(rows, cols int) *Logger {
	return l.derive(l.Logger.With("rows", rows, "cols", cols))
}

// LowPriority logs at LevelLowPriority.
func (l *Logger) LowPriority(msg string, args ...any) {
	l.Log(context.Background(), LevelLowPriority, msg, args...)
}

// LowPriorityEnabled reports whether low-priority records are emitted.
func (l *Logger) LowPriorityEnabled() bool {
	return l.Enabled(context.Background(), LevelLowPriority)
}

// LogIteration logs one solver iteration.
func (l *Logger) LogIteration(iteration int, residual, norm float64) {
	l.LowPriority("iteration",
		"iteration", iteration,
		"residual", residual,
		"norm", norm,
	)
}

// LogSolve logs the outcome of a solve.
func (l *Logger) LogSolve(ctx context.Context, method Method, iterations int, residual float64, elapsed time.Duration, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "solve failed",
			"method", method.String(),
			"error", err,
		)
	default:
		l.InfoContext(ctx, "solve completed",
			"method", method.String(),
			"iterations", iterations,
			"residual", residual,
			"elapsed", elapsed,
		)
	}
}

// LogNotConverged warns that an iteration cap was reached.
func (l *Logger) LogNotConverged(method Method, maxIter int, residual float64) {
	l.Warn("solver did not converge",
		"method", method.String(),
		"max_iterations", maxIter,
		"residual", residual,
	)
}
