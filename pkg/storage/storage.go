// Package storage persists product images on local disk or S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrUnsupportedImage = errors.New("file type not supported")
	ErrImageTooLarge    = errors.New("image exceeds size limit")
)

// ImageStore saves an image and returns the reference stored on the product.
type ImageStore interface {
	Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, ref string) error
}

var allowedExt = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
}

var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// sniffLen matches the mimetype default read limit.
const sniffLen = 3072

// Sniff checks that both the extension and the content are jpeg, png or gif.
// The returned reader starts at the first byte again: seekable inputs (which
// must start at offset 0) are rewound, others replay the consumed header.
func Sniff(filename string, r io.Reader) (string, io.Reader, error) {
	if !allowedExt[strings.ToLower(filepath.Ext(filename))] {
		return "", nil, ErrUnsupportedImage
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", nil, fmt.Errorf("read image header: %w", err)
	}
	head = head[:n]

	mt := mimetype.Detect(head)
	if !allowedMIME[mt.String()] {
		return "", nil, ErrUnsupportedImage
	}

	if rs, ok := r.(io.ReadSeeker); ok {
		if _, err := rs.Seek(0, io.SeekStart); err == nil {
			return mt.String(), rs, nil
		}
	}
	return mt.String(), io.MultiReader(bytes.NewReader(head), r), nil
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// objectName builds a unique, path-safe name: <unixnano>-<sanitized original>.
func objectName(original string, now time.Time) string {
	base := filepath.Base(strings.ReplaceAll(original, `\`, "/"))
	base = unsafeChars.ReplaceAllString(base, "_")
	base = strings.TrimLeft(base, ".")
	if base == "" {
		base = "image"
	}
	return fmt.Sprintf("%d-%s", now.UnixNano(), base)
}
