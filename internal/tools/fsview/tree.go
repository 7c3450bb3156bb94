package fsview

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/codeuhq/codeu/internal/toolkit"
)

const treeSchema = `{
  "type": "object",
  "properties": {
    "path": {"type": "string"},
    "maxDepth": {"type": "integer", "minimum": 1, "maximum": 8},
    "globs": {"type": "array", "items": {"type": "string"}},
    "includeFiles": {"type": "boolean"},
    "includeDirs": {"type": "boolean"},
    "includeHidden": {"type": "boolean"},
    "maxResults": {"type": "integer", "minimum": 1}
  },
  "required": ["path"]
}`

type treeInput struct {
	Path          string   `json:"path"`
	MaxDepth      int      `json:"maxDepth"`
	Globs         []string `json:"globs"`
	IncludeFiles  *bool    `json:"includeFiles"`
	IncludeDirs   *bool    `json:"includeDirs"`
	IncludeHidden bool     `json:"includeHidden"`
	MaxResults    int      `json:"maxResults"`
}

var errTruncated = errors.New("truncated")

func (t *Tools) treeTool() toolkit.Tool {
	return toolkit.Tool{
		Name:        "fs_tree",
		Description: "Recursively list files and directories inside the workspace up to a bounded depth, depth-first with deterministic ordering.",
		Schema:      json.RawMessage(treeSchema),
		Handler:     t.handleTree,
	}
}

func (t *Tools) handleTree(ctx context.Context, args json.RawMessage) (any, error) {
	in := treeInput{}
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, toolkit.Errorf(toolkit.KindInvalidArgs, "decode arguments: %v", err)
	}
	includeFiles := in.IncludeFiles == nil || *in.IncludeFiles
	includeDirs := in.IncludeDirs == nil || *in.IncludeDirs
	if !includeFiles && !includeDirs {
		return nil, toolkit.Errorf(toolkit.KindInvalidArgs, "at least one of includeFiles or includeDirs must be true")
	}
	maxDepth := in.MaxDepth
	if maxDepth <= 0 {
		maxDepth = t.treeMaxDepth
	}

	absRoot, err := t.resolveDir(in.Path)
	if err != nil {
		return nil, err
	}
	max := in.MaxResults
	if max <= 0 {
		max = int(^uint(0) >> 1)
	}

	out := listOutput{Entries: []Entry{}}
	walkErr := filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped, not fatal.
			return nil
		}
		if p == absRoot {
			return nil
		}
		rel, rerr := filepath.Rel(absRoot, p)
		if rerr != nil {
			return nil
		}
		depth := len(strings.Split(filepath.ToSlash(rel), "/"))
		name := d.Name()
		isDir := d.IsDir()
		if !in.IncludeHidden && strings.HasPrefix(name, ".") {
			if isDir {
				return filepath.SkipDir
			}
			return nil
		}
		if depth > maxDepth {
			if isDir {
				return filepath.SkipDir
			}
			return nil
		}
		include := (isDir && includeDirs) || (!isDir && includeFiles)
		if include && len(in.Globs) > 0 {
			include = matchesAnyGlob(rel, in.Globs)
		}
		if include {
			fi, ierr := d.Info()
			if ierr == nil {
				size := fi.Size()
				if isDir {
					size = 0
				}
				out.Entries = append(out.Entries, Entry{
					Path:      t.bnd.Rel(p),
					Name:      name,
					Type:      entryType(fi),
					SizeBytes: size,
					Depth:     depth,
				})
				if len(out.Entries) >= max {
					out.Truncated = true
					return errTruncated
				}
			}
		}
		// Stop descending once children would exceed the depth budget.
		if isDir && depth >= maxDepth {
			return filepath.SkipDir
		}
		return nil
	})
	if walkErr != nil && !errors.Is(walkErr, errTruncated) {
		return nil, toolkit.Errorf(toolkit.KindInternal, "walk %s: %v", in.Path, walkErr)
	}
	return out, nil
}
