package observe

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/npillmayer/schuko/tracing"
)

// TraceSelector hands out schuko traces that write through a slog logger.
// Every trace carries its selection key as the "trace" attribute.
type TraceSelector struct {
	logger *slog.Logger
	level  tracing.TraceLevel
}

// NewTraceSelector returns a selector whose traces start at level.
func NewTraceSelector(logger *slog.Logger, level tracing.TraceLevel) *TraceSelector {
	if logger == nil {
		logger = slog.Default()
	}
	return &TraceSelector{logger: logger, level: level}
}

func (s *TraceSelector) Select(key string) tracing.Trace {
	return &slogTrace{logger: s.logger.With("trace", key), level: s.level}
}

// TraceLevelFor maps a log level name onto the schuko levels. Warnings have
// no schuko level of their own and only let errors through.
func TraceLevelFor(level string) tracing.TraceLevel {
	if strings.EqualFold(level, "warn") {
		return tracing.LevelError
	}
	return tracing.TraceLevelFromString(level)
}

// InstallTracing routes every package tracer through logger at the named
// level.
func InstallTracing(logger *slog.Logger, level string) {
	tracing.SetTraceSelector(NewTraceSelector(logger, TraceLevelFor(level)))
}

type slogTrace struct {
	logger *slog.Logger
	level  tracing.TraceLevel
}

func (t *slogTrace) Errorf(format string, args ...interface{}) {
	t.logger.Error(fmt.Sprintf(format, args...))
}

func (t *slogTrace) Infof(format string, args ...interface{}) {
	if t.level >= tracing.LevelInfo {
		t.logger.Info(fmt.Sprintf(format, args...))
	}
}

func (t *slogTrace) Debugf(format string, args ...interface{}) {
	if t.level >= tracing.LevelDebug {
		t.logger.Debug(fmt.Sprintf(format, args...))
	}
}

func (t *slogTrace) P(key string, value interface{}) tracing.Trace {
	return &slogTrace{logger: t.logger.With(key, value), level: t.level}
}

func (t *slogTrace) SetTraceLevel(level tracing.TraceLevel) { t.level = level }

func (t *slogTrace) GetTraceLevel() tracing.TraceLevel { return t.level }

// SetOutput replaces the handler with a text handler on w. Attributes added
// before the switch are not carried over.
func (t *slogTrace) SetOutput(w io.Writer) {
	t.logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
