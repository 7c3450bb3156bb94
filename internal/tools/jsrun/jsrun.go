// Package jsrun implements js_eval: bounded JavaScript evaluation with a
// wall-clock interrupt and a byte-capped output channel. The VM exposes only
// read_input() and emit(); it has no filesystem, network, or process access,
// so the tool needs no boundary.
package jsrun

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dop251/goja"

	"github.com/codeuhq/codeu/internal/sandbox"
	"github.com/codeuhq/codeu/internal/toolkit"
)

const evalSchema = `{
  "type": "object",
  "properties": {
    "source": {"type": "string"},
    "input": {"type": "string"},
    "wallMs": {"type": "integer", "minimum": 1, "maximum": 60000},
    "outputKB": {"type": "integer", "minimum": 1, "maximum": 1024}
  },
  "required": ["source"]
}`

type evalInput struct {
	Source   string `json:"source"`
	Input    string `json:"input"`
	WallMS   int    `json:"wallMs"`
	OutputKB int    `json:"outputKB"`
}

type evalOutput struct {
	Output    string `json:"output"`
	Truncated bool   `json:"truncated"`
}

// Tool returns the registry entry for js_eval.
func Tool() toolkit.Tool {
	return toolkit.Tool{
		Name:        "js_eval",
		Description: "Evaluate a JavaScript snippet in an isolated VM. The script reads its input with read_input() and writes results with emit(); execution time and output size are hard-capped.",
		Schema:      json.RawMessage(evalSchema),
		Handler:     handleEval,
	}
}

func handleEval(ctx context.Context, args json.RawMessage) (any, error) {
	in := evalInput{}
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, toolkit.Errorf(toolkit.KindInvalidArgs, "decode arguments: %v", err)
	}
	if in.Source == "" {
		return nil, toolkit.Errorf(toolkit.KindInvalidArgs, "source must be non-empty")
	}

	out := sandbox.NewBoundedBuffer(in.OutputKB)
	vm := goja.New()
	if err := vm.Set("read_input", func() string { return in.Input }); err != nil {
		return nil, toolkit.Errorf(toolkit.KindInternal, "bind read_input: %v", err)
	}
	if err := vm.Set("emit", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) > 0 {
			_, _ = out.Write([]byte(call.Arguments[0].String()))
		}
		return goja.Undefined()
	}); err != nil {
		return nil, toolkit.Errorf(toolkit.KindInternal, "bind emit: %v", err)
	}

	wallCtx, cancel := sandbox.WithWallTimeout(ctx, in.WallMS)
	defer cancel()

	done := make(chan struct{})
	var runErr error
	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				runErr = fmt.Errorf("panic: %v", r)
			}
		}()
		_, runErr = vm.RunString(in.Source)
	}()

	timedOut := false
	select {
	case <-done:
	case <-wallCtx.Done():
		vm.Interrupt("timeout")
		<-done
		timedOut = true
	}

	if timedOut {
		return nil, toolkit.Errorf(toolkit.KindTimeout, "script exceeded its wall-clock budget")
	}
	if runErr != nil {
		return nil, toolkit.Errorf(toolkit.KindEvalError, "script error: %v", runErr)
	}
	return evalOutput{Output: out.String(), Truncated: out.Truncated()}, nil
}
