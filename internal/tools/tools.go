// Package tools assembles the full, closed tool set over one configuration.
package tools

import (
	"fmt"

	"github.com/codeuhq/codeu/internal/boundary"
	"github.com/codeuhq/codeu/internal/config"
	"github.com/codeuhq/codeu/internal/toolkit"
	"github.com/codeuhq/codeu/internal/tools/editor"
	"github.com/codeuhq/codeu/internal/tools/execrun"
	"github.com/codeuhq/codeu/internal/tools/fsview"
	"github.com/codeuhq/codeu/internal/tools/htmlview"
	"github.com/codeuhq/codeu/internal/tools/jsrun"
	"github.com/codeuhq/codeu/internal/tools/pdfview"
)

// NewRegistry builds the complete registry for cfg: filesystem inspection,
// the text editor, the command executor, and the script/document viewers.
// The set is fixed at construction; there is no way to add tools later.
func NewRegistry(cfg config.Config) (*toolkit.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	bnd, err := boundary.New(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("boundary: %w", err)
	}

	specs := fsview.New(bnd, cfg).Tools()
	specs = append(specs,
		editor.New(bnd, cfg).Tool(),
		execrun.New(bnd, cfg).Tool(),
		jsrun.Tool(),
		pdfview.New(bnd).Tool(),
		htmlview.New(bnd).Tool(),
	)

	var opts []toolkit.Option
	if cfg.AuditEnabled {
		opts = append(opts, toolkit.WithAuditDir(cfg.AuditDir()))
	}
	return toolkit.NewRegistry(specs, opts...)
}
