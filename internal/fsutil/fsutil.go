// Package fsutil provides the small filesystem primitives the pipeline
// is built from: copy, move-with-resume, directory creation.
package fsutil

import (
	"fmt"
	"io"
	"os"
)

// CopyFile copies a single file, leaving the source in place.
func CopyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer dstFile.Close()

	_, err = io.Copy(dstFile, srcFile)
	return err
}

// MoveFile relocates a file, falling back to copy-and-remove when a
// plain rename fails (e.g. across filesystems).
//
// A missing source with the destination already present is treated as
// already moved, so a partially completed run can be resumed. A missing
// source with no destination is an error: the file vanished.
func MoveFile(src, dst string) error {
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			if _, derr := os.Stat(dst); derr == nil {
				return nil
			}
			return fmt.Errorf("source file vanished: %s", src)
		}
		return err
	}

	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	if err := CopyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

// EnsureDir creates a directory and any missing parents. Idempotent.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

// Exists reports whether a path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
