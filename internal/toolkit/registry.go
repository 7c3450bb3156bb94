package toolkit

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Handler executes one validated tool call and returns a JSON-encodable
// payload. Errors should be toolkit Errors; anything else is reported as
// KindInternal.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Tool couples a name, its argument schema, and the handler. The schema is
// both the local validation contract and what gets exported to the model
// side as a function definition.
type Tool struct {
	Name        string
	Description string
	Schema      json.RawMessage
	Handler     Handler
}

// Registry is the static, closed set of tools. It is built once at startup
// and offers no runtime registration: the tool set is a security property,
// not a plugin surface.
type Registry struct {
	tools   map[string]Tool
	schemas map[string]*schemaDoc
	order   []string
	audit   *auditLog
}

// Option configures a Registry at construction time.
type Option func(*Registry)

// WithAuditDir enables NDJSON audit logging under dir (one file per UTC day).
func WithAuditDir(dir string) Option {
	return func(r *Registry) { r.audit = newAuditLog(dir) }
}

// NewRegistry validates every tool spec up front: unique non-empty names,
// parseable schema, non-nil handler. A bad spec is a programming error and
// fails construction rather than surfacing per-call.
func NewRegistry(tools []Tool, opts ...Option) (*Registry, error) {
	r := &Registry{
		tools:   make(map[string]Tool, len(tools)),
		schemas: make(map[string]*schemaDoc, len(tools)),
	}
	for i, t := range tools {
		if t.Name == "" {
			return nil, fmt.Errorf("tool[%d]: name is required", i)
		}
		if _, dup := r.tools[t.Name]; dup {
			return nil, fmt.Errorf("tool[%d] %q: duplicate name", i, t.Name)
		}
		if t.Handler == nil {
			return nil, fmt.Errorf("tool[%d] %q: handler is required", i, t.Name)
		}
		doc, err := parseSchema(t.Schema)
		if err != nil {
			return nil, fmt.Errorf("tool[%d] %q: %w", i, t.Name, err)
		}
		r.tools[t.Name] = t
		r.schemas[t.Name] = doc
		r.order = append(r.order, t.Name)
	}
	sort.Strings(r.order)
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Tools returns the registered tools in stable name order, for callers that
// export the schemas to a model API.
func (r *Registry) Tools() []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Dispatch validates the request and runs the handler. Every outcome,
// including a handler panic, becomes a structured Result.
func (r *Registry) Dispatch(ctx context.Context, req Request) Result {
	start := time.Now()
	callID := uuid.NewString()
	res := r.dispatch(ctx, req)
	r.writeAudit(req.Tool, callID, start, res)
	return res
}

func (r *Registry) dispatch(ctx context.Context, req Request) (res Result) {
	tool, ok := r.tools[req.Tool]
	if !ok {
		return Failure(Errorf(KindInvalidArgs, "unknown tool %q", req.Tool))
	}
	if err := r.schemas[req.Tool].validateArgs(req.Args); err != nil {
		return Failure(err)
	}
	defer func() {
		if rec := recover(); rec != nil {
			res = Failure(Errorf(KindInternal, "tool %q panicked: %v", req.Tool, rec))
		}
	}()
	payload, err := tool.Handler(ctx, req.Args)
	if err != nil {
		return Failure(err)
	}
	return Success(payload)
}

func (r *Registry) writeAudit(tool, callID string, start time.Time, res Result) {
	if r.audit == nil {
		return
	}
	// Best-effort: audit failures never affect the tool result.
	_ = r.audit.append(auditEntry{
		TS:           time.Now().UTC().Format(time.RFC3339Nano),
		ID:           callID,
		Tool:         tool,
		OK:           res.OK,
		Kind:         res.Kind,
		MS:           time.Since(start).Milliseconds(),
		PayloadBytes: len(res.Payload),
		Message:      redactSensitiveString(res.Message),
	})
}
