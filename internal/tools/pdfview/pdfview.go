// Package pdfview implements pdf_view: plain-text extraction from a PDF
// file inside the workspace boundary, optionally limited to selected pages.
package pdfview

import (
	"context"
	"encoding/json"
	"os"

	"github.com/ledongthuc/pdf"

	"github.com/codeuhq/codeu/internal/boundary"
	"github.com/codeuhq/codeu/internal/toolkit"
)

const viewSchema = `{
  "type": "object",
  "properties": {
    "path": {"type": "string"},
    "pages": {"type": "array", "items": {"type": "integer", "minimum": 1}}
  },
  "required": ["path"]
}`

type viewInput struct {
	Path  string `json:"path"`
	Pages []int  `json:"pages"`
}

type pageOut struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

type viewOutput struct {
	PageCount int       `json:"pageCount"`
	Pages     []pageOut `json:"pages"`
}

const maxPDFSizeBytes = 20 * 1024 * 1024 // 20 MiB

// Viewer extracts text from boundary-confined PDF files.
type Viewer struct {
	bnd boundary.Boundary
}

// New builds the viewer for the configured boundary.
func New(bnd boundary.Boundary) *Viewer {
	return &Viewer{bnd: bnd}
}

// Tool returns the registry entry for pdf_view.
func (v *Viewer) Tool() toolkit.Tool {
	return toolkit.Tool{
		Name:        "pdf_view",
		Description: "Extract plain text from a PDF file inside the workspace, optionally limited to a list of 1-based page numbers.",
		Schema:      json.RawMessage(viewSchema),
		Handler:     v.handleView,
	}
}

func (v *Viewer) handleView(ctx context.Context, args json.RawMessage) (out any, err error) {
	in := viewInput{}
	if jerr := json.Unmarshal(args, &in); jerr != nil {
		return nil, toolkit.Errorf(toolkit.KindInvalidArgs, "decode arguments: %v", jerr)
	}

	abs, err := v.bnd.Resolve(in.Path)
	if err != nil {
		return nil, err
	}
	st, serr := os.Stat(abs)
	if serr != nil {
		if os.IsNotExist(serr) {
			return nil, toolkit.Errorf(toolkit.KindFileNotFound, "file not found: %s", in.Path)
		}
		return nil, toolkit.Errorf(toolkit.KindInternal, "stat %s: %v", in.Path, serr)
	}
	if st.IsDir() {
		return nil, toolkit.Errorf(toolkit.KindNotAFile, "not a file: %s", in.Path)
	}
	if st.Size() > maxPDFSizeBytes {
		return nil, toolkit.Errorf(toolkit.KindInvalidArgs,
			"pdf too large: %d bytes (limit %d)", st.Size(), maxPDFSizeBytes)
	}

	// The pdf library panics on some malformed inputs; surface those as
	// PARSE_ERROR results instead of crashing the host.
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = toolkit.Errorf(toolkit.KindParseError, "malformed pdf %s: %v", in.Path, r)
		}
	}()

	f, reader, perr := pdf.Open(abs)
	if perr != nil {
		return nil, toolkit.Errorf(toolkit.KindParseError, "open pdf %s: %v", in.Path, perr)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			_ = cerr
		}
	}()

	total := reader.NumPage()
	selected := in.Pages
	if len(selected) == 0 {
		selected = make([]int, 0, total)
		for i := 1; i <= total; i++ {
			selected = append(selected, i)
		}
	}

	result := viewOutput{PageCount: total, Pages: []pageOut{}}
	for _, idx := range selected {
		if idx < 1 || idx > total {
			return nil, toolkit.Errorf(toolkit.KindInvalidArgs,
				"page %d out of range (document has %d page(s))", idx, total)
		}
		page := reader.Page(idx)
		if page.V.IsNull() {
			continue
		}
		text, terr := page.GetPlainText(nil)
		if terr != nil {
			return nil, toolkit.Errorf(toolkit.KindParseError,
				"extract page %d of %s: %v", idx, in.Path, terr)
		}
		result.Pages = append(result.Pages, pageOut{Index: idx, Text: text})
	}
	return result, nil
}
