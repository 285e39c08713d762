package local

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"skillgap-backend/internal/shared/storage/object"
)

func TestSaveOpenRoundTrip(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()

	obj, err := s.Save(ctx, "guest:abc", "my resume.txt", strings.NewReader("Go and Docker"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if obj.Size != int64(len("Go and Docker")) {
		t.Fatalf("size = %d", obj.Size)
	}
	if !strings.HasPrefix(obj.ContentType, "text/plain") {
		t.Fatalf("content type = %q", obj.ContentType)
	}
	if !strings.HasSuffix(obj.Key, "_my resume.txt") {
		t.Fatalf("key = %q", obj.Key)
	}

	rc, err := s.Open(ctx, obj.Key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if string(got) != "Go and Docker" {
		t.Fatalf("body = %q", got)
	}
}

func TestPutOverwrites(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()
	for _, body := range []string{"first version", "second"} {
		if _, err := s.Put(ctx, "a/b.extracted.txt", "text/plain", strings.NewReader(body)); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	rc, err := s.Open(ctx, "a/b.extracted.txt")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if string(got) != "second" {
		t.Fatalf("body = %q", got)
	}
}

func TestRejectsEscapingKeys(t *testing.T) {
	s := New(t.TempDir())
	for _, key := range []string{"../etc/passwd", "/abs/path", ""} {
		if _, err := s.Open(context.Background(), key); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
}

func TestSaveRejectsTraversalName(t *testing.T) {
	s := New(t.TempDir())
	if _, err := s.Save(context.Background(), "u", "../x.pdf", strings.NewReader("x")); err == nil {
		t.Fatal("expected error")
	}
}

func TestOpenMissingKeyIsNotFound(t *testing.T) {
	s := New(t.TempDir())
	if _, err := s.Open(context.Background(), "owner/missing.pdf"); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
