package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestInitialize(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelInfo, &buf)

	if Verbosity() != LevelInfo {
		t.Errorf("expected verbosity %d, got %d", LevelInfo, Verbosity())
	}
}

func TestLogLevels(t *testing.T) {
	var buf bytes.Buffer

	// Test at trace level so all messages are captured
	Initialize(LevelTrace, &buf)

	Info("test info", "key", "value")
	Debug("test debug", "key", "value")
	Trace("test trace", "key", "value")
	Warn("test warn", "key", "value")
	Error("test error", "key", "value")

	out := buf.String()
	for _, want := range []string{"test info", "test debug", "test trace", "test warn", "test error"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestQuietSuppressesInfo(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelQuiet, &buf)

	Info("hidden info")
	Debug("hidden debug")
	Warn("visible warn")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("expected info/debug to be suppressed, got:\n%s", out)
	}
	if !strings.Contains(out, "visible warn") {
		t.Errorf("expected warning in output, got:\n%s", out)
	}
}

func TestLogLevelChecks(t *testing.T) {
	var buf bytes.Buffer

	Initialize(LevelDebug, &buf)

	if !IsInfo() {
		t.Error("expected IsInfo() to be true at debug level")
	}
	if !IsDebug() {
		t.Error("expected IsDebug() to be true at debug level")
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelInfo, &buf)

	Progress("Fetching page %d", 2)
	ProgressDone()

	if !strings.Contains(buf.String(), "Fetching page 2 done") {
		t.Errorf("unexpected progress output: %q", buf.String())
	}
}

func TestActionsHandler(t *testing.T) {
	var buf bytes.Buffer
	InitializeActions(LevelDebug, &buf)

	Info("Issue #3 locked")
	Debug("Issue #1 has 1 days of inactivity")
	Warn("rate limit low", "remaining", 50)
	Error("Failed to lock issue/PR #1: 403 Forbidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := []string{
		"Issue #3 locked",
		"::debug::Issue #1 has 1 days of inactivity",
		"::warning::rate limit low remaining=50",
		"::error::Failed to lock issue/PR #1: 403 Forbidden",
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d:\n%s", len(want), len(lines), buf.String())
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestActionsHandlerEscapesNewlines(t *testing.T) {
	var buf bytes.Buffer
	InitializeActions(LevelQuiet, &buf)

	Error("line one\nline two 100%")

	got := strings.TrimSpace(buf.String())
	if got != "::error::line one%0Aline two 100%25" {
		t.Errorf("unexpected escaped output: %q", got)
	}
}

func TestActionsHandlerGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewActionsHandler(&buf, slog.LevelInfo)).
		With("repository", "octo/hello").
		WithGroup("lock").
		With("reason", "resolved")

	logger.Info("Issue #3 locked", "number", 3, slog.Group("quota", "remaining", 10))

	want := "Issue #3 locked repository=octo/hello lock.reason=resolved lock.number=3 lock.quota.remaining=10"
	if got := strings.TrimSpace(buf.String()); got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
}
