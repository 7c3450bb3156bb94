package pdfview

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"

	"github.com/codeuhq/codeu/internal/boundary"
	"github.com/codeuhq/codeu/internal/toolkit"
)

func newViewer(t *testing.T) (*Viewer, string) {
	t.Helper()
	root := t.TempDir()
	bnd, err := boundary.New(root)
	if err != nil {
		t.Fatalf("boundary.New: %v", err)
	}
	return New(bnd), root
}

func writePDF(t *testing.T, root, name string, pages ...string) {
	t.Helper()
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	for _, text := range pages {
		doc.AddPage()
		doc.Cell(40, 10, text)
	}
	if err := doc.OutputFileAndClose(filepath.Join(root, name)); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
}

func view(t *testing.T, v *Viewer, in map[string]any) (viewOutput, error) {
	t.Helper()
	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal args: %v", err)
	}
	res, err := v.handleView(context.Background(), raw)
	if err != nil {
		return viewOutput{}, err
	}
	return res.(viewOutput), nil
}

func TestView_ExtractsText(t *testing.T) {
	v, root := newViewer(t)
	writePDF(t, root, "doc.pdf", "Hello from page one", "Second page content")

	out, err := view(t, v, map[string]any{"path": "doc.pdf"})
	if err != nil {
		t.Fatalf("handleView: %v", err)
	}
	if out.PageCount != 2 || len(out.Pages) != 2 {
		t.Fatalf("pageCount = %d, pages = %d", out.PageCount, len(out.Pages))
	}
	if !strings.Contains(out.Pages[0].Text, "Hello") {
		t.Fatalf("page 1 text = %q", out.Pages[0].Text)
	}
	if !strings.Contains(out.Pages[1].Text, "Second") {
		t.Fatalf("page 2 text = %q", out.Pages[1].Text)
	}
}

func TestView_PageSelection(t *testing.T) {
	v, root := newViewer(t)
	writePDF(t, root, "doc.pdf", "alpha page", "beta page", "gamma page")

	out, err := view(t, v, map[string]any{"path": "doc.pdf", "pages": []int{2}})
	if err != nil {
		t.Fatalf("handleView: %v", err)
	}
	if out.PageCount != 3 || len(out.Pages) != 1 || out.Pages[0].Index != 2 {
		t.Fatalf("selection = %+v", out)
	}

	_, err = view(t, v, map[string]any{"path": "doc.pdf", "pages": []int{7}})
	if err == nil || toolkit.KindOf(err) != toolkit.KindInvalidArgs {
		t.Fatalf("out-of-range page: err = %v, want INVALID_ARGS", err)
	}
}

func TestView_Failures(t *testing.T) {
	v, root := newViewer(t)
	if err := os.WriteFile(filepath.Join(root, "fake.pdf"), []byte("not a pdf at all"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := view(t, v, map[string]any{"path": "missing.pdf"})
	if err == nil || toolkit.KindOf(err) != toolkit.KindFileNotFound {
		t.Fatalf("missing file: err = %v, want FILE_NOT_FOUND", err)
	}

	_, err = view(t, v, map[string]any{"path": "fake.pdf"})
	if err == nil || toolkit.KindOf(err) != toolkit.KindParseError {
		t.Fatalf("malformed pdf: err = %v, want PARSE_ERROR", err)
	}

	_, err = view(t, v, map[string]any{"path": "../doc.pdf"})
	if err == nil || toolkit.KindOf(err) != toolkit.KindPathOutsideRoot {
		t.Fatalf("escape: err = %v, want PATH_OUTSIDE_ROOT", err)
	}
}
