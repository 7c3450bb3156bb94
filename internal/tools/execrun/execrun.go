// Package execrun implements run_command: execution of one allow-listed
// command with a validated argument vector, bounded output, and a clamped
// timeout. The child is always spawned directly (never through a shell), so
// metacharacter injection cannot chain commands, and it is always reaped on
// both normal exit and timeout.
package execrun

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/codeuhq/codeu/internal/boundary"
	"github.com/codeuhq/codeu/internal/config"
	"github.com/codeuhq/codeu/internal/sandbox"
	"github.com/codeuhq/codeu/internal/toolkit"
)

const runSchema = `{
  "type": "object",
  "properties": {
    "cmd": {"type": "string"},
    "args": {"type": "array", "items": {"type": "string"}},
    "stdin": {"type": "string"},
    "timeoutSec": {"type": "integer", "minimum": 1}
  },
  "required": ["cmd"]
}`

type runInput struct {
	Cmd        string   `json:"cmd"`
	Args       []string `json:"args"`
	Stdin      string   `json:"stdin"`
	TimeoutSec int      `json:"timeoutSec"`
}

type runOutput struct {
	ExitCode        int    `json:"exitCode"`
	Stdout          string `json:"stdout"`
	Stderr          string `json:"stderr"`
	StdoutTruncated bool   `json:"stdoutTruncated"`
	StderrTruncated bool   `json:"stderrTruncated"`
	DurationMs      int64  `json:"durationMs"`
}

// Executor runs allow-listed commands with the workspace root as working
// directory.
type Executor struct {
	bnd            boundary.Boundary
	commands       map[string]config.CommandRule
	envPassthrough []string
	maxOutputKB    int
	defaultSec     int
	ceilingSec     int
}

// New builds the executor from the configured allow-list and caps.
func New(bnd boundary.Boundary, cfg config.Config) *Executor {
	return &Executor{
		bnd:            bnd,
		commands:       cfg.Commands,
		envPassthrough: cfg.EnvPassthrough,
		maxOutputKB:    cfg.MaxOutputKB,
		defaultSec:     cfg.DefaultTimeoutSec,
		ceilingSec:     cfg.TimeoutCeilingSec,
	}
}

// Tool returns the registry entry for run_command.
func (e *Executor) Tool() toolkit.Tool {
	return toolkit.Tool{
		Name:        "run_command",
		Description: "Run one allow-listed command inside the workspace with bounded output and a hard timeout. No shell features: arguments are passed as a plain vector. " + e.allowedSummary(),
		Schema:      json.RawMessage(runSchema),
		Handler:     e.handleRun,
	}
}

func (e *Executor) allowedSummary() string {
	names := make([]string, 0, len(e.commands))
	for name := range e.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return "Allowed commands: " + strings.Join(names, ", ") + "."
}

func (e *Executor) handleRun(ctx context.Context, args json.RawMessage) (any, error) {
	in := runInput{}
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, toolkit.Errorf(toolkit.KindInvalidArgs, "decode arguments: %v", err)
	}
	name := strings.TrimSpace(in.Cmd)
	if name == "" {
		return nil, toolkit.Errorf(toolkit.KindInvalidArgs, "cmd must be non-empty")
	}

	rule, ok := e.commands[name]
	if !ok {
		return nil, toolkit.Errorf(toolkit.KindCmdNotAllowed, "command %q is not on the allow-list", name)
	}
	if err := validateArgs(name, in.Args, rule); err != nil {
		return nil, err
	}

	// LookPath happens before spawn so a missing binary is a LAUNCH_FAILED,
	// not an ambiguous exec error.
	bin, err := exec.LookPath(name)
	if err != nil {
		return nil, toolkit.Errorf(toolkit.KindLaunchFailed, "command not found in PATH: %s", name)
	}

	timeout := sandbox.ClampTimeout(in.TimeoutSec, e.defaultSec, e.ceilingSec)
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, bin, in.Args...)
	cmd.Dir = e.bnd.Root()
	cmd.Env = e.buildEnv()
	if in.Stdin != "" {
		cmd.Stdin = strings.NewReader(in.Stdin)
	}
	stdout := sandbox.NewBoundedBuffer(e.maxOutputKB)
	stderr := sandbox.NewBoundedBuffer(e.maxOutputKB)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	if runCtx.Err() == context.DeadlineExceeded {
		// CommandContext killed the child and Run reaped it.
		return nil, toolkit.Errorf(toolkit.KindTimeout,
			"command %s exceeded the %s timeout and was terminated", name, timeout)
	}
	exitCode := 0
	if runErr != nil {
		var ee *exec.ExitError
		if errors.As(runErr, &ee) {
			exitCode = ee.ExitCode()
		} else {
			return nil, toolkit.Errorf(toolkit.KindLaunchFailed, "start %s: %v", name, runErr)
		}
	}
	return runOutput{
		ExitCode:        exitCode,
		Stdout:          stdout.String(),
		Stderr:          stderr.String(),
		StdoutTruncated: stdout.Truncated(),
		StderrTruncated: stderr.Truncated(),
		DurationMs:      elapsed.Milliseconds(),
	}, nil
}

// buildEnv constructs the minimal child environment: PATH and HOME plus the
// configured passthrough keys.
func (e *Executor) buildEnv() []string {
	env := make([]string, 0, 2+len(e.envPassthrough))
	if v := os.Getenv("PATH"); v != "" {
		env = append(env, "PATH="+v)
	}
	if v := os.Getenv("HOME"); v != "" {
		env = append(env, "HOME="+v)
	}
	for _, key := range e.envPassthrough {
		if v, ok := os.LookupEnv(key); ok {
			env = append(env, key+"="+v)
		}
	}
	return env
}
