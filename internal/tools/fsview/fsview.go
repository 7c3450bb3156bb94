// Package fsview implements the read-only filesystem inspection tools:
// fs_ls (direct children), fs_tree (bounded recursive listing), fs_grep
// (literal or regex line search) and fs_view (ranged file viewing). All
// paths are resolved through the workspace boundary and nothing here ever
// mutates the filesystem.
package fsview

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/codeuhq/codeu/internal/boundary"
	"github.com/codeuhq/codeu/internal/config"
	"github.com/codeuhq/codeu/internal/toolkit"
)

// Tools bundles the inspection handlers over one boundary.
type Tools struct {
	bnd            boundary.Boundary
	treeMaxDepth   int
	grepMaxMatches int
}

// New builds the inspection tools for the configured boundary.
func New(bnd boundary.Boundary, cfg config.Config) *Tools {
	treeMax := cfg.TreeMaxDepth
	if treeMax < 1 {
		treeMax = 3
	}
	grepMax := cfg.GrepMaxMatches
	if grepMax < 1 {
		grepMax = 500
	}
	return &Tools{bnd: bnd, treeMaxDepth: treeMax, grepMaxMatches: grepMax}
}

// Tools returns the registry entries for all four inspection operations.
func (t *Tools) Tools() []toolkit.Tool {
	return []toolkit.Tool{t.lsTool(), t.treeTool(), t.grepTool(), t.viewTool()}
}

// resolveDir resolves rel inside the boundary and requires an existing
// directory.
func (t *Tools) resolveDir(rel string) (string, error) {
	abs, err := t.bnd.Resolve(rel)
	if err != nil {
		return "", err
	}
	st, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", toolkit.Errorf(toolkit.KindPathNotFound, "directory not found: %s", rel)
		}
		return "", toolkit.Errorf(toolkit.KindInternal, "stat %s: %v", rel, err)
	}
	if !st.IsDir() {
		return "", toolkit.Errorf(toolkit.KindNotADirectory, "not a directory: %s", rel)
	}
	return abs, nil
}

// matchesAnyGlob reports whether the slash-relative path matches at least
// one pattern. "**/" patterns match the basename, mirroring the executor
// side of common agent globs like "**/*.go".
func matchesAnyGlob(rel string, patterns []string) bool {
	s := strings.TrimPrefix(filepath.ToSlash(rel), "./")
	for _, pat := range patterns {
		if pat == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(pat, "**/"); ok {
			if matched, _ := path.Match(rest, path.Base(s)); matched {
				return true
			}
			continue
		}
		if matched, _ := path.Match(pat, s); matched {
			return true
		}
	}
	return false
}

// isProbablyBinary sniffs the first 8 KiB for a NUL byte. Unreadable files
// are treated as text; the caller's open will surface the real error.
func isProbablyBinary(abs string) bool {
	f, err := os.Open(abs)
	if err != nil {
		return false
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			_ = cerr
		}
	}()
	chunk := make([]byte, 8192)
	n, err := f.Read(chunk)
	if n <= 0 && err != nil {
		return false
	}
	for _, b := range chunk[:n] {
		if b == 0 {
			return true
		}
	}
	return false
}

func entryType(fi os.FileInfo) string {
	m := fi.Mode()
	switch {
	case m&os.ModeSymlink != 0:
		return "symlink"
	case m.IsDir():
		return "dir"
	case m.IsRegular():
		return "file"
	default:
		return "other"
	}
}
