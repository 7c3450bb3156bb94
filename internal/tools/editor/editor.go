// Package editor implements text_replace: exact-substring replacement in a
// single workspace file, guarded against ambiguous matches and written
// atomically so a crash mid-write never leaves a truncated file.
package editor

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/codeuhq/codeu/internal/boundary"
	"github.com/codeuhq/codeu/internal/config"
	"github.com/codeuhq/codeu/internal/toolkit"
)

const replaceSchema = `{
  "type": "object",
  "properties": {
    "path": {"type": "string"},
    "oldText": {"type": "string"},
    "newText": {"type": "string"}
  },
  "required": ["path", "oldText", "newText"]
}`

type replaceInput struct {
	Path    string `json:"path"`
	OldText string `json:"oldText"`
	NewText string `json:"newText"`
}

type replaceOutput struct {
	Path         string `json:"path"`
	Replacements int    `json:"replacements"`
	SizeBytes    int    `json:"sizeBytes"`
}

// Editor performs bounded text substitution inside one boundary.
type Editor struct {
	bnd  boundary.Boundary
	mode config.ReplaceMode
}

// New builds the editor for the configured boundary and replace mode.
func New(bnd boundary.Boundary, cfg config.Config) *Editor {
	mode := cfg.ReplaceMode
	if mode == "" {
		mode = config.ReplaceUnique
	}
	return &Editor{bnd: bnd, mode: mode}
}

// Tool returns the registry entry for text_replace.
func (e *Editor) Tool() toolkit.Tool {
	return toolkit.Tool{
		Name:        "text_replace",
		Description: "Replace an exact text span in a workspace file. Fails when the span is missing or, in unique mode, occurs more than once; the file is never modified on failure.",
		Schema:      json.RawMessage(replaceSchema),
		Handler:     e.handleReplace,
	}
}

func (e *Editor) handleReplace(ctx context.Context, args json.RawMessage) (any, error) {
	in := replaceInput{}
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, toolkit.Errorf(toolkit.KindInvalidArgs, "decode arguments: %v", err)
	}
	if in.OldText == "" {
		return nil, toolkit.Errorf(toolkit.KindInvalidArgs, "oldText must be non-empty")
	}

	abs, err := e.bnd.Resolve(in.Path)
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

	original, err := os.ReadFile(abs)
	if err != nil {
		if os.IsPermission(err) {
			return nil, toolkit.Errorf(toolkit.KindWriteDenied, "permission denied: %s", in.Path)
		}
		return nil, toolkit.Errorf(toolkit.KindInternal, "read %s: %v", in.Path, err)
	}
	if looksBinary(original) {
		return nil, toolkit.Errorf(toolkit.KindBinaryFile, "file appears to be binary and cannot be edited as text: %s", in.Path)
	}

	text := string(original)
	count := strings.Count(text, in.OldText)
	if count == 0 {
		return nil, toolkit.Errorf(toolkit.KindNoMatch, "oldText not found in %s; no changes applied", in.Path)
	}
	replacements := 0
	var edited string
	switch e.mode {
	case config.ReplaceUnique:
		if count > 1 {
			return nil, toolkit.Errorf(toolkit.KindAmbiguousMatch,
				"oldText occurs %d times in %s (first at byte %d); provide a longer unique span",
				count, in.Path, strings.Index(text, in.OldText))
		}
		edited = strings.Replace(text, in.OldText, in.NewText, 1)
		replacements = 1
	case config.ReplaceFirst:
		edited = strings.Replace(text, in.OldText, in.NewText, 1)
		replacements = 1
	case config.ReplaceAll:
		edited = strings.ReplaceAll(text, in.OldText, in.NewText)
		replacements = count
	default:
		return nil, toolkit.Errorf(toolkit.KindInternal, "unknown replace mode %q", e.mode)
	}

	if err := atomicWriteFile(abs, []byte(edited), st.Mode()); err != nil {
		if os.IsPermission(err) {
			return nil, toolkit.Errorf(toolkit.KindWriteDenied, "permission denied writing %s", in.Path)
		}
		return nil, toolkit.Errorf(toolkit.KindInternal, "write %s: %v", in.Path, err)
	}
	return replaceOutput{Path: e.bnd.Rel(abs), Replacements: replacements, SizeBytes: len(edited)}, nil
}

// looksBinary applies the NUL-in-first-8KiB heuristic on already-read bytes.
func looksBinary(data []byte) bool {
	probe := data
	if len(probe) > 8192 {
		probe = probe[:8192]
	}
	for _, b := range probe {
		if b == 0 {
			return true
		}
	}
	return false
}
