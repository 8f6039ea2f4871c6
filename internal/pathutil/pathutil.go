// Package pathutil confines user-supplied output paths to the project tree.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// RedactPath shortens path to .../<parent>/<base> for error messages.
func RedactPath(path string) string {
	if path == "" {
		return ""
	}
	cleaned := filepath.Clean(path)
	parent := filepath.Base(filepath.Dir(cleaned))
	if parent == "." || parent == string(filepath.Separator) {
		return filepath.Base(cleaned)
	}
	return ".../" + parent + "/" + filepath.Base(cleaned)
}

// ValidateOutputPath checks that path, which need not exist yet, resolves
// to a location inside root. Symlinks in existing ancestors are followed.
func ValidateOutputPath(path, root string) error {
	if path == "" {
		return fmt.Errorf("output path is empty")
	}
	if strings.ContainsRune(path, '\x00') {
		return fmt.Errorf("output path contains null byte")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving output path: %w", err)
	}
	dir, err := resolve(filepath.Dir(abs))
	if err != nil {
		return err
	}
	target := filepath.Join(dir, filepath.Base(abs))

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving project root: %w", err)
	}
	base, err := resolve(rootAbs)
	if err != nil {
		return err
	}

	if target != base && !strings.HasPrefix(target, base+string(os.PathSeparator)) {
		return fmt.Errorf("output path %q is outside the project root", RedactPath(abs))
	}
	return nil
}

// resolve evaluates symlinks in the deepest existing ancestor of dir and
// re-appends the missing tail.
func resolve(dir string) (string, error) {
	if r, err := filepath.EvalSymlinks(dir); err == nil {
		return r, nil
	}
	parent := filepath.Dir(dir)
	if parent == dir {
		return "", fmt.Errorf("cannot resolve %s", RedactPath(dir))
	}
	r, err := resolve(parent)
	if err != nil {
		return "", err
	}
	return filepath.Join(r, filepath.Base(dir)), nil
}
