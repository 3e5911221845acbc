// Package security validates filesystem paths supplied on the command
// line before tools write recordings, plots or exports there.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureWithin reports an error when path, after resolving relative
// components and symlinks, falls outside dir.
func EnsureWithin(path, dir string) error {
	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("resolve path %s: %w", path, err)
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve directory %s: %w", dir, err)
	}
	canonDir, err := filepath.EvalSymlinks(absDir)
	if err != nil {
		return fmt.Errorf("resolve directory symlinks for %s: %w", dir, err)
	}

	rel, err := filepath.Rel(canonDir, canonicalize(absPath))
	if err != nil {
		return fmt.Errorf("path %s is not inside %s: %w", path, dir, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return fmt.Errorf("path %s escapes %s", path, dir)
	}
	return nil
}

// canonicalize resolves symlinks in path. A path that does not exist
// yet is anchored at its nearest existing ancestor so that a symlinked
// parent directory cannot smuggle the target elsewhere.
func canonicalize(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	dir := path
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			return path
		}
		if resolved, err := filepath.EvalSymlinks(parent); err == nil {
			rel, relErr := filepath.Rel(parent, path)
			if relErr != nil {
				return path
			}
			return filepath.Join(resolved, rel)
		}
		dir = parent
	}
}

// ValidateOutputPath accepts output paths under the current working
// directory or the system temp directory. Tools call it before creating
// recording or plot files from user-supplied flags.
func ValidateOutputPath(path string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determine working directory: %w", err)
	}
	for _, dir := range []string{cwd, os.TempDir()} {
		if EnsureWithin(path, dir) == nil {
			return nil
		}
	}
	return fmt.Errorf("output path %s must be under the working directory or %s", path, os.TempDir())
}

// SanitizeFilename reduces an arbitrary string, typically a recording
// name, to a safe filename component. Runs outside ASCII letters,
// digits, dot, underscore and dash collapse to a single underscore, and
// the result is trimmed and capped at 128 characters.
func SanitizeFilename(name string) string {
	const maxLen = 128
	out := make([]rune, 0, len(name))
	prevUnderscore := false
	for _, r := range name {
		if len(out) >= maxLen {
			break
		}
		safe := r == '.' || r == '_' || r == '-' ||
			(r >= '0' && r <= '9') || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
		if safe {
			out = append(out, r)
			prevUnderscore = false
		} else if !prevUnderscore {
			out = append(out, '_')
			prevUnderscore = true
		}
	}
	s := strings.Trim(string(out), "._")
	if s == "" {
		return "unknown"
	}
	return s
}
