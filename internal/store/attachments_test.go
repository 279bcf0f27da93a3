package store

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCaptureFile_DataURIRoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	src := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(src, []byte("hello planify"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	a, err := CaptureFile(src)
	if err != nil {
		t.Fatalf("CaptureFile: %v", err)
	}
	if a.Name != "notes.txt" || a.Size != int64(len("hello planify")) {
		t.Fatalf("unexpected attachment: %#v", a)
	}
	if !strings.HasPrefix(a.Type, "text/plain") {
		t.Fatalf("expected text/plain, got %q", a.Type)
	}
	if a.ID != "" {
		t.Fatalf("expected id to be left for the caller")
	}

	dest := filepath.Join(dir, "out", "notes.txt")
	if err := SaveAttachment(a, dest); err != nil {
		t.Fatalf("SaveAttachment: %v", err)
	}
	b, _ := os.ReadFile(dest)
	if !bytes.Equal(b, []byte("hello planify")) {
		t.Fatalf("payload mismatch: %q", b)
	}
}

func TestCaptureFile_RejectsOversizedFiles(t *testing.T) {
	t.Parallel()
	src := filepath.Join(t.TempDir(), "big.bin")
	f, err := os.Create(src)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := f.Truncate(MaxAttachmentBytes + 1); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	_ = f.Close()

	_, err = CaptureFile(src)
	if err == nil || !strings.Contains(err.Error(), "limit") {
		t.Fatalf("expected size limit error, got %v", err)
	}
}

func TestDecodeDataURI(t *testing.T) {
	t.Parallel()
	b, typ, err := DecodeDataURI(EncodeDataURI("", []byte{1, 2, 3}))
	if err != nil {
		t.Fatalf("DecodeDataURI: %v", err)
	}
	if typ != "application/octet-stream" || !bytes.Equal(b, []byte{1, 2, 3}) {
		t.Fatalf("unexpected decode: %q %v", typ, b)
	}
	if _, _, err := DecodeDataURI("https://example.com/x"); err == nil {
		t.Fatalf("expected non-data URI to be rejected")
	}
}

func TestHumanSize(t *testing.T) {
	t.Parallel()
	if got := HumanSize(MaxAttachmentBytes); got != "5.2 MB" {
		t.Fatalf("HumanSize(5MiB)=%q", got)
	}
	if got := HumanSize(-1); got != "0 B" {
		t.Fatalf("HumanSize(-1)=%q", got)
	}
}
