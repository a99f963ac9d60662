package telemetry

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"DEBUG": slog.LevelDebug,
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"ERROR": slog.LevelError,
		"INFO":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"bogus": slog.LevelInfo,
	}

	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSetupLogger_Formats(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	logger := setupLogger(&buf, "INFO", "json")
	logger.Info("hello", "key", "value")

	if !strings.Contains(buf.String(), `"msg":"hello"`) {
		t.Errorf("expected JSON output, got %s", buf.String())
	}

	buf.Reset()
	logger = setupLogger(&buf, "INFO", "text")
	logger.Info("hello", "key", "value")

	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("expected text output, got %s", buf.String())
	}

	buf.Reset()
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug should be filtered at INFO, got %s", buf.String())
	}
}

func TestLoggerContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := WithLogger(context.Background(), WithExecutionID(WithItem(logger, "report"), "abc"))
	FromContext(ctx).Info("run")

	out := buf.String()
	if !strings.Contains(out, "item=report") || !strings.Contains(out, "execution_id=abc") {
		t.Errorf("expected item and execution_id attributes, got %s", out)
	}

	if FromContext(context.Background()) != slog.Default() {
		t.Error("expected default logger for empty context")
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.SeedEntry(SeedResultCopied)
	m.SeedEntry(SeedResultSkipped)
	m.SeedEntry(SeedResultSkipped)
	m.SeedFiles(3)
	m.ExecutionFinished("report", "once", "SUCCEEDED", 10*time.Millisecond)
	m.SetScheduledItems(2)

	if got := testutil.ToFloat64(m.seedEntries.WithLabelValues(SeedResultSkipped)); got != 2 {
		t.Errorf("expected 2 skipped, got %v", got)
	}
	if got := testutil.ToFloat64(m.seedFiles); got != 3 {
		t.Errorf("expected 3 files, got %v", got)
	}
	if got := testutil.ToFloat64(m.executions.WithLabelValues("report", "once", "SUCCEEDED")); got != 1 {
		t.Errorf("expected 1 execution, got %v", got)
	}
	if got := testutil.ToFloat64(m.scheduledItems); got != 2 {
		t.Errorf("expected 2 scheduled items, got %v", got)
	}
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics

	// Не должно паниковать
	m.SeedEntry(SeedResultCopied)
	m.SeedFiles(1)
	m.ExecutionFinished("x", "once", "FAILED", time.Second)
	m.SetScheduledItems(1)
}
