package telemetry

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInfoWritesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := L()
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(prev) })

	Info("pdf.uploaded", map[string]any{"pdf_id": "file-1.pdf", "pages": 3})
	Error("pdf.extract_failed", map[string]any{"err": errors.New("boom")})

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["pdf_id"] != "file-1.pdf" {
		t.Fatalf("unexpected pdf_id: %v", ctx["pdf_id"])
	}
	if entries[1].Level != zapcore.ErrorLevel {
		t.Fatalf("expected error level, got %s", entries[1].Level)
	}
	if got := entries[1].ContextMap()["err"]; got != "boom" {
		t.Fatalf("unexpected err field: %v", got)
	}
}

func TestNamedAddsComponent(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	prev := L()
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(prev) })

	Named("pdfs").Info("hello")

	if got := logs.All()[0].ContextMap()["component"]; got != "pdfs" {
		t.Fatalf("expected component pdfs, got %v", got)
	}
}
