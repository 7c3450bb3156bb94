// Package htmlview implements html_view: readability-style article
// extraction from an HTML file inside the workspace boundary. Unlike the
// usual web-clipper use of the library, no network access is involved; the
// input is always a local file.
package htmlview

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"os"

	readability "github.com/go-shiori/go-readability"

	"github.com/codeuhq/codeu/internal/boundary"
	"github.com/codeuhq/codeu/internal/toolkit"
)

const viewSchema = `{
  "type": "object",
  "properties": {
    "path": {"type": "string"},
    "baseUrl": {"type": "string"}
  },
  "required": ["path"]
}`

type viewInput struct {
	Path    string `json:"path"`
	BaseURL string `json:"baseUrl"`
}

type viewOutput struct {
	Title       string `json:"title"`
	Byline      string `json:"byline,omitempty"`
	Text        string `json:"text"`
	ContentHTML string `json:"contentHtml"`
	Length      int    `json:"length"`
}

const maxHTMLBytes = 5 << 20 // 5 MiB

// Viewer extracts readable article content from boundary-confined HTML.
type Viewer struct {
	bnd boundary.Boundary
}

// New builds the viewer for the configured boundary.
func New(bnd boundary.Boundary) *Viewer {
	return &Viewer{bnd: bnd}
}

// Tool returns the registry entry for html_view.
func (v *Viewer) Tool() toolkit.Tool {
	return toolkit.Tool{
		Name:        "html_view",
		Description: "Extract the readable article content (title, byline, text) from an HTML file inside the workspace.",
		Schema:      json.RawMessage(viewSchema),
		Handler:     v.handleView,
	}
}

func (v *Viewer) handleView(ctx context.Context, args json.RawMessage) (any, error) {
	in := viewInput{}
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, toolkit.Errorf(toolkit.KindInvalidArgs, "decode arguments: %v", err)
	}

	abs, err := v.bnd.Resolve(in.Path)
	if err != nil {
		return nil, err
	}
	st, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, toolkit.Errorf(toolkit.KindFileNotFound, "file not found: %s", in.Path)
		}
		return nil, toolkit.Errorf(toolkit.KindInternal, "stat %s: %v", in.Path, err)
	}
	if st.IsDir() {
		return nil, toolkit.Errorf(toolkit.KindNotAFile, "not a file: %s", in.Path)
	}
	if st.Size() > maxHTMLBytes {
		return nil, toolkit.Errorf(toolkit.KindInvalidArgs,
			"html too large: %d bytes (limit %d)", st.Size(), maxHTMLBytes)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, toolkit.Errorf(toolkit.KindInternal, "read %s: %v", in.Path, err)
	}

	// The library resolves relative links against a base URL; for local
	// files a synthetic one is sufficient.
	base := in.BaseURL
	if base == "" {
		base = "http://localhost/" + v.bnd.Rel(abs)
	}
	parsedBase, perr := url.Parse(base)
	if perr != nil || parsedBase.Scheme == "" || parsedBase.Host == "" {
		return nil, toolkit.Errorf(toolkit.KindInvalidArgs, "baseUrl must be an absolute URL")
	}

	art, err := readability.FromReader(bytes.NewReader(data), parsedBase)
	if err != nil {
		return nil, toolkit.Errorf(toolkit.KindParseError, "readability extract %s: %v", in.Path, err)
	}
	return viewOutput{
		Title:       art.Title,
		Byline:      art.Byline,
		Text:        art.TextContent,
		ContentHTML: art.Content,
		Length:      art.Length,
	}, nil
}
