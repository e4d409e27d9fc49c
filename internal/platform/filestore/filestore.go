// Package filestore stores uploaded files on local disk.
package filestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Disk writes uploads under a base directory, one subdirectory per
// category and year-month. Stored names are generated, never taken from
// the upload, so a crafted filename cannot escape the base directory.
type Disk struct {
	base    string
	maxSize int64
}

// NewDisk creates a Disk store rooted at base.
func NewDisk(base string, maxSize int64) (*Disk, error) {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Disk{base: base, maxSize: maxSize}, nil
}

// Save writes the stream and returns the path relative to the base
// directory.
func (d *Disk) Save(ctx context.Context, category, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 10 {
		ext = ""
	}
	rel := filepath.Join(category, time.Now().Format("2006-01"), uuid.NewString()+ext)
	abs := filepath.Join(d.base, rel)

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("create category dir: %w", err)
	}

	f, err := os.OpenFile(abs, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	src := r
	if d.maxSize > 0 {
		src = io.LimitReader(r, d.maxSize+1)
	}
	n, err := io.Copy(f, src)
	if err != nil {
		os.Remove(abs)
		return "", fmt.Errorf("write file: %w", err)
	}
	if d.maxSize > 0 && n > d.maxSize {
		os.Remove(abs)
		return "", fmt.Errorf("file exceeds %d bytes", d.maxSize)
	}
	return filepath.ToSlash(rel), nil
}
