// Package boundary confines every filesystem-affecting tool argument to a
// single configured root directory. Containment is checked lexically before
// any syscall touches the resolved path, so a violating call never partially
// executes.
package boundary

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/codeuhq/codeu/internal/toolkit"
)

// Boundary wraps the absolute, cleaned root directory. The zero value is
// unusable; construct with New.
type Boundary struct {
	root string
}

// New validates root: it must name an existing directory. The returned
// Boundary is immutable for the process lifetime.
func New(root string) (Boundary, error) {
	if strings.TrimSpace(root) == "" {
		return Boundary{}, fmt.Errorf("boundary root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return Boundary{}, fmt.Errorf("resolve root: %w", err)
	}
	abs = filepath.Clean(abs)
	st, err := os.Stat(abs)
	if err != nil {
		return Boundary{}, fmt.Errorf("stat root: %w", err)
	}
	if !st.IsDir() {
		return Boundary{}, fmt.Errorf("boundary root %s is not a directory", abs)
	}
	return Boundary{root: abs}, nil
}

// Root returns the absolute boundary root.
func (b Boundary) Root() string { return b.root }

// Resolve maps a request-relative path to an absolute path inside the root.
// Absolute inputs and lexical escapes (..) fail with PATH_OUTSIDE_ROOT.
func (b Boundary) Resolve(rel string) (string, error) {
	if strings.TrimSpace(rel) == "" {
		return "", toolkit.Errorf(toolkit.KindInvalidArgs, "path is required")
	}
	if filepath.IsAbs(rel) {
		return "", toolkit.Errorf(toolkit.KindPathOutsideRoot, "absolute paths are not allowed: %s", rel)
	}
	clean := filepath.Clean(filepath.FromSlash(rel))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", toolkit.Errorf(toolkit.KindPathOutsideRoot, "path escapes the workspace root: %s", rel)
	}
	abs := filepath.Join(b.root, clean)
	// Join cleans again; verify containment on the final form.
	if abs != b.root && !strings.HasPrefix(abs, b.root+string(filepath.Separator)) {
		return "", toolkit.Errorf(toolkit.KindPathOutsideRoot, "path escapes the workspace root: %s", rel)
	}
	return abs, nil
}

// Rel converts an absolute path under the root back to the slash-separated
// relative form used in payloads. Paths outside the root are returned as-is.
func (b Boundary) Rel(abs string) string {
	rel, err := filepath.Rel(b.root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(rel)
}
