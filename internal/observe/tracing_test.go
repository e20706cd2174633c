package observe

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing"
)

func bufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestTraceSelectorWritesThroughLogger(t *testing.T) {
	var buf bytes.Buffer
	sel := NewTraceSelector(bufferLogger(&buf), tracing.LevelInfo)

	trace := sel.Select("stenokey.engine")
	trace.P("stroke", "KAT").Infof("translated %d strokes", 1)
	trace.Debugf("hidden at info level")

	got := buf.String()
	for _, want := range []string{"trace=stenokey.engine", "stroke=KAT", `msg="translated 1 strokes"`} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in %q", want, got)
		}
	}
	if strings.Contains(got, "hidden") {
		t.Fatalf("debug message leaked at info level: %q", got)
	}

	trace.SetTraceLevel(tracing.LevelDebug)
	trace.Debugf("visible")
	if !strings.Contains(buf.String(), "msg=visible") {
		t.Fatalf("expected debug message after raising the level, got %q", buf.String())
	}
}

func TestTraceLevelFor(t *testing.T) {
	cases := map[string]tracing.TraceLevel{
		"debug": tracing.LevelDebug,
		"info":  tracing.LevelInfo,
		"warn":  tracing.LevelError,
		"error": tracing.LevelError,
		"":      tracing.LevelInfo,
	}
	for name, want := range cases {
		if got := TraceLevelFor(name); got != want {
			t.Errorf("TraceLevelFor(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestInstallTracingReplacesGlobalSelector(t *testing.T) {
	t.Cleanup(func() { tracing.SetTraceSelector(nil) })

	var buf bytes.Buffer
	InstallTracing(bufferLogger(&buf), "warn")

	tracing.Select("stenokey.dictionary").Infof("suppressed")
	tracing.Select("stenokey.dictionary").Errorf("bad outline %q", "TEFT//")
	got := buf.String()
	if strings.Contains(got, "suppressed") {
		t.Fatalf("info message leaked at warn level: %q", got)
	}
	if !strings.Contains(got, "trace=stenokey.dictionary") || !strings.Contains(got, "bad outline") {
		t.Fatalf("expected error through the installed selector, got %q", got)
	}
}
