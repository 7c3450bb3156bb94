package editor

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/codeuhq/codeu/internal/boundary"
	"github.com/codeuhq/codeu/internal/config"
	"github.com/codeuhq/codeu/internal/toolkit"
)

func newEditor(t *testing.T, mode config.ReplaceMode) (*Editor, string) {
	t.Helper()
	root := t.TempDir()
	bnd, err := boundary.New(root)
	if err != nil {
		t.Fatalf("boundary.New: %v", err)
	}
	cfg := config.Default(root)
	cfg.ReplaceMode = mode
	return New(bnd, cfg), root
}

func seed(t *testing.T, root, rel, body string) string {
	t.Helper()
	abs := filepath.Join(root, rel)
	if err := os.WriteFile(abs, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
	return abs
}

func replace(t *testing.T, e *Editor, path, oldText, newText string) (any, error) {
	t.Helper()
	raw, err := json.Marshal(map[string]string{"path": path, "oldText": oldText, "newText": newText})
	if err != nil {
		t.Fatalf("marshal args: %v", err)
	}
	return e.handleReplace(context.Background(), raw)
}

func mustRead(t *testing.T, abs string) string {
	t.Helper()
	b, err := os.ReadFile(abs)
	if err != nil {
		t.Fatalf("read %s: %v", abs, err)
	}
	return string(b)
}

func TestReplace_UniqueSpan(t *testing.T) {
	e, root := newEditor(t, config.ReplaceUnique)
	abs := seed(t, root, "main.go", "package main\n\nfunc oldName() {}\n")

	res, err := replace(t, e, "main.go", "oldName", "newName")
	if err != nil {
		t.Fatalf("handleReplace: %v", err)
	}
	out := res.(replaceOutput)
	if out.Replacements != 1 {
		t.Fatalf("replacements = %d, want 1", out.Replacements)
	}
	got := mustRead(t, abs)
	want := "package main\n\nfunc newName() {}\n"
	if got != want {
		t.Fatalf("file = %q, want %q", got, want)
	}
	if out.SizeBytes != len(want) {
		t.Fatalf("sizeBytes = %d, want %d", out.SizeBytes, len(want))
	}
}

// Replacing a span and then reverting it restores the original bytes exactly.
func TestReplace_RoundTripRestoresBytes(t *testing.T) {
	e, root := newEditor(t, config.ReplaceUnique)
	original := "alpha\nbeta\ngamma\n"
	abs := seed(t, root, "doc.txt", original)

	if _, err := replace(t, e, "doc.txt", "beta", "delta"); err != nil {
		t.Fatalf("forward replace: %v", err)
	}
	if _, err := replace(t, e, "doc.txt", "delta", "beta"); err != nil {
		t.Fatalf("reverse replace: %v", err)
	}
	if got := mustRead(t, abs); got != original {
		t.Fatalf("round trip = %q, want %q", got, original)
	}
}

func TestReplace_AmbiguousLeavesFileUntouched(t *testing.T) {
	e, root := newEditor(t, config.ReplaceUnique)
	body := "x = 1\nx = 1\n"
	abs := seed(t, root, "dup.txt", body)

	_, err := replace(t, e, "dup.txt", "x = 1", "y = 2")
	if err == nil {
		t.Fatal("ambiguous replace succeeded")
	}
	if toolkit.KindOf(err) != toolkit.KindAmbiguousMatch {
		t.Fatalf("kind = %s, want AMBIGUOUS_MATCH", toolkit.KindOf(err))
	}
	if !strings.Contains(err.Error(), "2 times") {
		t.Fatalf("error %q does not report the occurrence count", err)
	}
	if got := mustRead(t, abs); got != body {
		t.Fatalf("file modified on failure: %q", got)
	}
}

func TestReplace_FirstAndAllModes(t *testing.T) {
	e, root := newEditor(t, config.ReplaceFirst)
	abs := seed(t, root, "multi.txt", "a b a b a\n")
	res, err := replace(t, e, "multi.txt", "a", "Z")
	if err != nil {
		t.Fatalf("first mode: %v", err)
	}
	if res.(replaceOutput).Replacements != 1 {
		t.Fatalf("first mode replacements = %d", res.(replaceOutput).Replacements)
	}
	if got := mustRead(t, abs); got != "Z b a b a\n" {
		t.Fatalf("first mode file = %q", got)
	}

	e2, root2 := newEditor(t, config.ReplaceAll)
	abs2 := seed(t, root2, "multi.txt", "a b a b a\n")
	res, err = replace(t, e2, "multi.txt", "a", "Z")
	if err != nil {
		t.Fatalf("all mode: %v", err)
	}
	if res.(replaceOutput).Replacements != 3 {
		t.Fatalf("all mode replacements = %d, want 3", res.(replaceOutput).Replacements)
	}
	if got := mustRead(t, abs2); got != "Z b Z b Z\n" {
		t.Fatalf("all mode file = %q", got)
	}
}

func TestReplace_Failures(t *testing.T) {
	e, root := newEditor(t, config.ReplaceUnique)
	seed(t, root, "doc.txt", "hello world\n")
	seed(t, root, "bin.dat", "head\x00tail")
	if err := os.Mkdir(filepath.Join(root, "dir"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	cases := []struct {
		name             string
		path, oldT, newT string
		kind             toolkit.Kind
	}{
		{"no match", "doc.txt", "absent", "x", toolkit.KindNoMatch},
		{"empty oldText", "doc.txt", "", "x", toolkit.KindInvalidArgs},
		{"missing file", "nope.txt", "a", "b", toolkit.KindFileNotFound},
		{"directory", "dir", "a", "b", toolkit.KindNotAFile},
		{"binary", "bin.dat", "head", "x", toolkit.KindBinaryFile},
		{"outside root", "../escape.txt", "a", "b", toolkit.KindPathOutsideRoot},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := replace(t, e, tc.path, tc.oldT, tc.newT)
			if err == nil {
				t.Fatal("replace succeeded")
			}
			if got := toolkit.KindOf(err); got != tc.kind {
				t.Fatalf("kind = %s, want %s", got, tc.kind)
			}
		})
	}

	// No-match failures must not touch the file.
	if got := mustRead(t, filepath.Join(root, "doc.txt")); got != "hello world\n" {
		t.Fatalf("doc.txt modified: %q", got)
	}
}

func TestReplace_PreservesFileMode(t *testing.T) {
	e, root := newEditor(t, config.ReplaceUnique)
	abs := filepath.Join(root, "script.sh")
	if err := os.WriteFile(abs, []byte("echo old\n"), 0o755); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := replace(t, e, "script.sh", "old", "new"); err != nil {
		t.Fatalf("handleReplace: %v", err)
	}
	st, err := os.Stat(abs)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if st.Mode().Perm() != 0o755 {
		t.Fatalf("mode = %v, want 0755", st.Mode().Perm())
	}
}

func TestAtomicWriteFile_NoTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	if err := atomicWriteFile(path, []byte("content"), 0o644); err != nil {
		t.Fatalf("atomicWriteFile: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "out.txt" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("directory contents = %v, want [out.txt]", names)
	}
}
