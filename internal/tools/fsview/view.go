package fsview

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/codeuhq/codeu/internal/toolkit"
)

const viewSchema = `{
  "type": "object",
  "properties": {
    "path": {"type": "string"},
    "startLine": {"type": "integer", "minimum": 1},
    "endLine": {"type": "integer", "minimum": 1},
    "maxChars": {"type": "integer", "minimum": 0}
  },
  "required": ["path"]
}`

type viewInput struct {
	Path      string `json:"path"`
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine"`
	MaxChars  *int   `json:"maxChars"`
}

type viewOutput struct {
	Path       string `json:"path"`
	StartLine  int    `json:"startLine"`
	EndLine    int    `json:"endLine"`
	TotalLines int    `json:"totalLines"`
	Content    string `json:"content"`
	Truncated  bool   `json:"truncated"`
}

func (t *Tools) viewTool() toolkit.Tool {
	return toolkit.Tool{
		Name:        "fs_view",
		Description: "View the text content of a file inside the workspace, optionally limited to a 1-based inclusive line range and a character cap.",
		Schema:      json.RawMessage(viewSchema),
		Handler:     t.handleView,
	}
}

func (t *Tools) handleView(ctx context.Context, args json.RawMessage) (any, error) {
	in := viewInput{}
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, toolkit.Errorf(toolkit.KindInvalidArgs, "decode arguments: %v", err)
	}
	if in.StartLine > 0 && in.EndLine > 0 && in.EndLine < in.StartLine {
		return nil, toolkit.Errorf(toolkit.KindInvalidArgs, "endLine must be >= startLine")
	}

	abs, err := t.bnd.Resolve(in.Path)
	if err != nil {
		return nil, err
	}
	st, err := os.Lstat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, toolkit.Errorf(toolkit.KindFileNotFound, "file not found: %s", in.Path)
		}
		return nil, toolkit.Errorf(toolkit.KindInternal, "stat %s: %v", in.Path, err)
	}
	if !st.Mode().IsRegular() {
		return nil, toolkit.Errorf(toolkit.KindNotAFile, "not a regular file: %s", in.Path)
	}
	if isProbablyBinary(abs) {
		return nil, toolkit.Errorf(toolkit.KindBinaryFile, "file appears to be binary: %s", in.Path)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, toolkit.Errorf(toolkit.KindInternal, "read %s: %v", in.Path, err)
	}
	lines := strings.Split(string(data), "\n")
	// A trailing newline yields one empty trailing element; drop it so line
	// counts match what an editor shows.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	total := len(lines)

	start := in.StartLine
	if start < 1 {
		start = 1
	}
	end := in.EndLine
	if end < 1 || end > total {
		end = total
	}
	if start > total {
		start = total
	}

	content := ""
	if total > 0 && start >= 1 {
		content = strings.Join(lines[start-1:end], "\n")
	}
	truncated := false
	if in.MaxChars != nil && len(content) > *in.MaxChars {
		content = content[:*in.MaxChars]
		truncated = true
	}
	return viewOutput{
		Path:       t.bnd.Rel(abs),
		StartLine:  start,
		EndLine:    end,
		TotalLines: total,
		Content:    content,
		Truncated:  truncated,
	}, nil
}
