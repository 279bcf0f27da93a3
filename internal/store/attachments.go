package store

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"planify/internal/model"
)

// MaxAttachmentBytes is the per-file ceiling for captured attachments and recordings.
const MaxAttachmentBytes int64 = 5 * 1024 * 1024 // 5MB

func guessMimeType(filename string, head []byte) string {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	if ext != "" {
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
	}
	return http.DetectContentType(head)
}

// CaptureFile reads srcPath into an Attachment whose URL is a base64 data URI.
// The id is left empty for the caller to assign. Files over MaxAttachmentBytes are rejected.
func CaptureFile(srcPath string) (model.Attachment, error) {
	srcPath = filepath.Clean(strings.TrimSpace(srcPath))
	if srcPath == "" || srcPath == "." {
		return model.Attachment{}, errors.New("attachments: missing source path")
	}
	st, err := os.Stat(srcPath)
	if err != nil {
		return model.Attachment{}, err
	}
	if st.IsDir() {
		return model.Attachment{}, errors.New("attachments: source path is a directory")
	}
	if st.Size() > MaxAttachmentBytes {
		return model.Attachment{}, tooLarge(filepath.Base(srcPath), st.Size())
	}

	in, err := os.Open(srcPath)
	if err != nil {
		return model.Attachment{}, err
	}
	defer in.Close()

	b, err := io.ReadAll(io.LimitReader(in, MaxAttachmentBytes+1))
	if err != nil {
		return model.Attachment{}, err
	}
	if int64(len(b)) > MaxAttachmentBytes {
		return model.Attachment{}, tooLarge(filepath.Base(srcPath), int64(len(b)))
	}

	name := filepath.Base(srcPath)
	typ := guessMimeType(name, b)
	return model.Attachment{
		Name: name,
		Size: int64(len(b)),
		Type: typ,
		URL:  EncodeDataURI(typ, b),
	}, nil
}

func tooLarge(name string, n int64) error {
	return fmt.Errorf("attachments: %s is %s, over the %s limit", name, HumanSize(n), HumanSize(MaxAttachmentBytes))
}

func EncodeDataURI(mimeType string, b []byte) string {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(b)
}

// DecodeDataURI returns the payload and media type of a base64 data URI.
func DecodeDataURI(uri string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, "", errors.New("not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", errors.New("malformed data URI")
	}
	typ, isB64 := strings.CutSuffix(meta, ";base64")
	if !isB64 {
		return []byte(payload), typ, nil
	}
	b, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("data URI: %w", err)
	}
	return b, typ, nil
}

// SaveAttachment writes the attachment's payload to destPath.
func SaveAttachment(a model.Attachment, destPath string) error {
	b, _, err := DecodeDataURI(a.URL)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(destPath, b, 0o644)
}

// HumanSize formats a byte count for display (e.g. "1.2 MB").
func HumanSize(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}
