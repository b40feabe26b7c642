package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoggerWritesLogfmt(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, Debug, func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) })

	logger.With(F("component", "store")).Warn("persist failed", F("kind", "save briefcases"), Err(errors.New("boom")))

	got := strings.TrimSpace(buf.String())
	want := `ts=2026-01-02T03:04:05Z level=warn msg="persist failed" component=store kind="save briefcases" error=boom`
	if got != want {
		t.Fatalf("unexpected line:\n got: %s\nwant: %s", got, want)
	}
}

func TestLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Warn)
	logger.Info("hidden")
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
	if logger.Enabled(Info) {
		t.Fatalf("expected info disabled")
	}
	if !logger.Enabled(Error) {
		t.Fatalf("expected error enabled")
	}
}

func TestNopLoggerDropsEverything(t *testing.T) {
	logger := Nop()
	if logger.Enabled(Error) {
		t.Fatalf("expected nop logger to be disabled")
	}
	logger.Error("ignored")
}

func TestParseLevel(t *testing.T) {
	for raw, want := range map[string]Level{
		"debug":   Debug,
		"WARNING": Warn,
		"error":   Error,
		"":        Info,
		"verbose": Info,
	} {
		if got := ParseLevel(raw); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestLoggerFormatsValues(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, Info, func() time.Time { return time.Unix(0, 0) })

	logger.Info("tick", F("polls", 3), F("ok", true), F("delay", 1500*time.Millisecond), F("note", ""), F("raw", nil), F("eq", "a=b"))

	got := strings.TrimSpace(buf.String())
	want := `ts=1970-01-01T00:00:00Z level=info msg=tick polls=3 ok=true delay=1.5s note="" raw=null eq="a=b"`
	if got != want {
		t.Fatalf("unexpected line:\n got: %s\nwant: %s", got, want)
	}
}

func TestWithDoesNotLeakIntoParent(t *testing.T) {
	var buf bytes.Buffer
	parent := newLogger(&buf, Info, func() time.Time { return time.Unix(0, 0) })
	_ = parent.With(F("component", "panel"))
	parent.Info("plain")
	if strings.Contains(buf.String(), "component") {
		t.Fatalf("bound field leaked into parent: %q", buf.String())
	}
}
