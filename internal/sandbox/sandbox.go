// Package sandbox confines writes to a build target directory. Every write
// goes through a temp file in the destination directory and a rename.
package sandbox

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const tempPattern = ".mcstarter-*.tmp"

// ErrEscape is returned when a relative path resolves outside the root.
var ErrEscape = errors.New("path escapes the target directory")

// ValidatePath checks that relPath stays within root once symlinks are
// resolved. root must exist. Returns the resolved absolute path.
func ValidatePath(root, relPath string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving target root: %w", err)
	}
	realRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return "", fmt.Errorf("resolving target root symlinks: %w", err)
	}

	candidate := filepath.Clean(filepath.Join(realRoot, relPath))

	// The path may not exist yet, so resolve the longest existing prefix.
	resolved, err := resolveExisting(candidate)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", relPath, err)
	}

	if resolved != realRoot && !strings.HasPrefix(resolved, realRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("'%s' resolves to '%s' outside '%s': %w", relPath, resolved, realRoot, ErrEscape)
	}
	return resolved, nil
}

func resolveExisting(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}
	dir := filepath.Dir(path)
	if dir == path {
		return path, nil
	}
	parent, err := resolveExisting(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(parent, filepath.Base(path)), nil
}

// SafeWrite atomically writes content to relPath under root, creating parent
// directories on demand.
func SafeWrite(root, relPath string, content []byte, perm os.FileMode) error {
	return writeAtomic(root, relPath, perm, func(w io.Writer) error {
		_, err := w.Write(content)
		return err
	})
}

// WriteIfChanged is SafeWrite that leaves the destination alone when it
// already holds identical bytes with permissions perm. It reports whether a
// write happened.
func WriteIfChanged(root, relPath string, content []byte, perm os.FileMode) (bool, error) {
	resolved, err := ValidatePath(root, relPath)
	if err != nil {
		return false, err
	}
	if unchanged(resolved, content, perm) {
		return false, nil
	}
	if err := SafeWrite(root, relPath, content, perm); err != nil {
		return false, err
	}
	return true, nil
}

func unchanged(path string, content []byte, perm os.FileMode) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() || info.Mode().Perm() != perm.Perm() {
		return false
	}
	if info.Size() != int64(len(content)) {
		return false
	}
	existing, err := os.ReadFile(path)
	return err == nil && bytes.Equal(existing, content)
}

// SafeCopy streams the file at src to relPath under root.
func SafeCopy(root, relPath, src string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	return writeAtomic(root, relPath, perm, func(w io.Writer) error {
		_, err := io.Copy(w, in)
		return err
	})
}

func writeAtomic(root, relPath string, perm os.FileMode, fill func(io.Writer) error) error {
	resolved, err := ValidatePath(root, relPath)
	if err != nil {
		return err
	}
	if _, err := ValidatePath(root, filepath.Dir(relPath)); err != nil {
		return fmt.Errorf("parent directory: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	// Same directory as the destination so the rename stays on one filesystem.
	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if err := fill(tmp); err != nil {
		return fmt.Errorf("writing %s: %w", relPath, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, resolved); err != nil {
		return fmt.Errorf("renaming temp file to %s: %w", resolved, err)
	}

	success = true
	return nil
}

// SafeRemove removes a file within root.
func SafeRemove(root, relPath string) error {
	resolved, err := ValidatePath(root, relPath)
	if err != nil {
		return err
	}
	return os.Remove(resolved)
}

// SafeMkdirAll creates directories within root.
func SafeMkdirAll(root, relPath string, perm os.FileMode) error {
	resolved, err := ValidatePath(root, relPath)
	if err != nil {
		return err
	}
	return os.MkdirAll(resolved, perm)
}
