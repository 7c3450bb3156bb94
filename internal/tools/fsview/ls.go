package fsview

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/codeuhq/codeu/internal/toolkit"
)

const lsSchema = `{
  "type": "object",
  "properties": {
    "path": {"type": "string"},
    "globs": {"type": "array", "items": {"type": "string"}},
    "includeFiles": {"type": "boolean"},
    "includeDirs": {"type": "boolean"},
    "includeHidden": {"type": "boolean"},
    "maxResults": {"type": "integer", "minimum": 1}
  },
  "required": ["path"]
}`

type lsInput struct {
	Path          string   `json:"path"`
	Globs         []string `json:"globs"`
	IncludeFiles  *bool    `json:"includeFiles"`
	IncludeDirs   *bool    `json:"includeDirs"`
	IncludeHidden bool     `json:"includeHidden"`
	MaxResults    int      `json:"maxResults"`
}

// Entry is one listed file or directory. Depth is zero for fs_ls results
// and the distance from the requested root for fs_tree results.
type Entry struct {
	Path      string `json:"path"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	SizeBytes int64  `json:"sizeBytes"`
	Depth     int    `json:"depth,omitempty"`
}

type listOutput struct {
	Entries   []Entry `json:"entries"`
	Truncated bool    `json:"truncated"`
}

func (t *Tools) lsTool() toolkit.Tool {
	return toolkit.Tool{
		Name:        "fs_ls",
		Description: "List the direct children of a directory inside the workspace, with optional glob filtering. Not recursive; use fs_tree for nested listings.",
		Schema:      json.RawMessage(lsSchema),
		Handler:     t.handleLs,
	}
}

func (t *Tools) handleLs(ctx context.Context, args json.RawMessage) (any, error) {
	in := lsInput{}
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, toolkit.Errorf(toolkit.KindInvalidArgs, "decode arguments: %v", err)
	}
	includeFiles := in.IncludeFiles == nil || *in.IncludeFiles
	includeDirs := in.IncludeDirs == nil || *in.IncludeDirs
	if !includeFiles && !includeDirs {
		return nil, toolkit.Errorf(toolkit.KindInvalidArgs, "at least one of includeFiles or includeDirs must be true")
	}

	abs, err := t.resolveDir(in.Path)
	if err != nil {
		return nil, err
	}
	children, err := readDirSorted(abs)
	if err != nil {
		return nil, err
	}

	max := in.MaxResults
	if max <= 0 {
		max = int(^uint(0) >> 1)
	}
	out := listOutput{Entries: []Entry{}}
	for _, d := range children {
		name := d.Name()
		if !in.IncludeHidden && strings.HasPrefix(name, ".") {
			continue
		}
		isDir := d.IsDir()
		if (isDir && !includeDirs) || (!isDir && !includeFiles) {
			continue
		}
		rel := t.bnd.Rel(filepath.Join(abs, name))
		if len(in.Globs) > 0 && !matchesAnyGlob(relToRequest(in.Path, name), in.Globs) {
			continue
		}
		fi, err := d.Info()
		if err != nil {
			continue
		}
		size := fi.Size()
		if isDir {
			size = 0
		}
		out.Entries = append(out.Entries, Entry{Path: rel, Name: name, Type: entryType(fi), SizeBytes: size})
		if len(out.Entries) >= max {
			out.Truncated = true
			break
		}
	}
	return out, nil
}

// readDirSorted lists direct children with the deterministic ordering used
// across the inspection tools: directories first, then case-insensitive
// lexicographic by name.
func readDirSorted(abs string) ([]os.DirEntry, error) {
	raw, err := os.ReadDir(abs)
	if err != nil {
		return nil, toolkit.Errorf(toolkit.KindInternal, "read dir: %v", err)
	}
	sort.SliceStable(raw, func(i, j int) bool {
		iDir, jDir := raw[i].IsDir(), raw[j].IsDir()
		if iDir != jDir {
			return iDir
		}
		return strings.ToLower(raw[i].Name()) < strings.ToLower(raw[j].Name())
	})
	return raw, nil
}

// relToRequest joins the request path with a child name in slash form so
// glob patterns are evaluated relative to the listed directory's parent,
// matching how callers write them.
func relToRequest(reqPath, name string) string {
	req := strings.TrimPrefix(filepath.ToSlash(filepath.Clean(reqPath)), "./")
	if req == "." || req == "" {
		return name
	}
	return req + "/" + name
}
