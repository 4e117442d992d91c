package local

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"docchat-backend/internal/shared/storage/object"
)

func TestPutOpenDelete(t *testing.T) {
	ctx := context.Background()
	store := New(t.TempDir())

	n, err := store.Put(ctx, "file-1-2.pdf", "application/pdf", strings.NewReader("%PDF-1.4 hello"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if n != int64(len("%PDF-1.4 hello")) {
		t.Fatalf("unexpected size %d", n)
	}

	rc, err := store.Open(ctx, "file-1-2.pdf")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "%PDF-1.4 hello" {
		t.Fatalf("unexpected content %q", data)
	}

	if err := store.Delete(ctx, "file-1-2.pdf"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Open(ctx, "file-1-2.pdf"); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, "file-1-2.pdf"); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestRejectsTraversalKeys(t *testing.T) {
	ctx := context.Background()
	store := New(t.TempDir())

	for _, key := range []string{"../secret.pdf", "/etc/passwd", "", "a/../../b"} {
		if _, err := store.Open(ctx, key); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
}

func TestOpenHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := New(t.TempDir())
	if _, err := store.Put(ctx, "x.pdf", "application/pdf", strings.NewReader("x")); err == nil {
		t.Fatalf("expected context error")
	}
}
