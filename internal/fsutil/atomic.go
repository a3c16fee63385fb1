// Package fsutil holds the file helpers shared by the filesystem storage and the image store.
package fsutil

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// TempFilePrefix is the prefix used for temporary atomic write files.
// Watchers and garbage collectors skip files carrying it.
const TempFilePrefix = "snapnote-tmp-"

// IsTemp reports whether name is an in-flight atomic write.
func IsTemp(name string) bool {
	return strings.HasPrefix(filepath.Base(name), TempFilePrefix)
}

// WriteFileAtomic writes data to filename through a temp file and a rename,
// so readers see either the old content or the new one.
func WriteFileAtomic(filename string, data []byte, perm os.FileMode) error {
	_, err := WriteAtomic(filename, bytes.NewReader(data), perm)
	return err
}

// WriteAtomic streams r into filename atomically and returns the bytes written.
// The parent directory must exist.
func WriteAtomic(filename string, r io.Reader, perm os.FileMode) (int64, error) {
	tmpFile, err := os.CreateTemp(filepath.Dir(filename), TempFilePrefix+"*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name()) // no-op once renamed

	n, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return n, fmt.Errorf("failed to write to temp file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return n, fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return n, fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tmpFile.Name(), perm); err != nil {
		return n, fmt.Errorf("failed to chmod temp file: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), filename); err != nil {
		return n, fmt.Errorf("failed to rename temp file to %s: %w", filename, err)
	}

	return n, nil
}
