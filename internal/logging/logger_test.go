package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"minuteminds/internal/services"
)

func TestConsoleHandlerFormatsHeaderAndFields(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl, false))

	logger = NewComponentLogger(logger, "pipeline")
	logger.Info("stage started", String(FieldStage, "summarize"), String(FieldDocumentID, "doc1"))

	out := buf.String()
	if !strings.Contains(out, "INFO") {
		t.Fatalf("missing level in output: %q", out)
	}
	if !strings.Contains(out, "[pipeline]") {
		t.Fatalf("missing component in output: %q", out)
	}
	if !strings.Contains(out, "summarize") {
		t.Fatalf("missing stage in output: %q", out)
	}
	if !strings.Contains(out, "document_id: doc1") {
		t.Fatalf("missing document field in output: %q", out)
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(&buf, lvl, false))

	logger.Info("suppressed")
	if buf.Len() != 0 {
		t.Fatalf("expected info record below warn to be dropped, got %q", buf.String())
	}
	logger.Warn("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Fatalf("expected warn record, got %q", buf.String())
	}
}

func TestWithContextAddsStandardFields(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	base := slog.New(newConsoleHandler(&buf, lvl, false))

	ctx := services.WithDocumentID(context.Background(), "doc42")
	ctx = services.WithStage(ctx, "translate")

	WithContext(ctx, base).Info("resolved")

	out := buf.String()
	if !strings.Contains(out, "doc42") || !strings.Contains(out, "translate") {
		t.Fatalf("context fields missing from output: %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
