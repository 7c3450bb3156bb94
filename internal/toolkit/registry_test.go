package toolkit

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const echoSchema = `{
  "type": "object",
  "properties": {"text": {"type": "string"}},
  "required": ["text"]
}`

func echoTool(name string) Tool {
	return Tool{
		Name:        name,
		Description: "echo text back",
		Schema:      json.RawMessage(echoSchema),
		Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
			var in struct {
				Text string `json:"text"`
			}
			if err := json.Unmarshal(args, &in); err != nil {
				return nil, err
			}
			return map[string]string{"text": in.Text}, nil
		},
	}
}

func TestNewRegistry_RejectsBadSpecs(t *testing.T) {
	ok := echoTool("echo")
	cases := []struct {
		name  string
		tools []Tool
	}{
		{"empty name", []Tool{{Schema: ok.Schema, Handler: ok.Handler}}},
		{"duplicate name", []Tool{ok, echoTool("echo")}},
		{"nil handler", []Tool{{Name: "x", Schema: ok.Schema}}},
		{"bad schema", []Tool{{Name: "x", Schema: json.RawMessage(`{"type": "array"}`), Handler: ok.Handler}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewRegistry(tc.tools); err == nil {
				t.Fatal("NewRegistry accepted invalid spec")
			}
		})
	}
}

func TestDispatch_RoundTrip(t *testing.T) {
	reg, err := NewRegistry([]Tool{echoTool("echo")})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	res := reg.Dispatch(context.Background(), Request{Tool: "echo", Args: json.RawMessage(`{"text": "hi"}`)})
	if !res.OK {
		t.Fatalf("Dispatch failed: %s %s", res.Kind, res.Message)
	}
	var out struct {
		Text string `json:"text"`
	}
	if err := DecodePayload(res, &out); err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if out.Text != "hi" {
		t.Fatalf("payload text = %q, want %q", out.Text, "hi")
	}
}

func TestDispatch_UnknownTool(t *testing.T) {
	reg, err := NewRegistry([]Tool{echoTool("echo")})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	res := reg.Dispatch(context.Background(), Request{Tool: "nope"})
	if res.OK || res.Kind != string(KindInvalidArgs) {
		t.Fatalf("got %+v, want INVALID_ARGS failure", res)
	}
	if !strings.Contains(res.Message, "unknown tool") {
		t.Fatalf("message = %q", res.Message)
	}
}

func TestDispatch_InvalidArgsNeverReachHandler(t *testing.T) {
	called := false
	tool := Tool{
		Name:   "strict",
		Schema: json.RawMessage(echoSchema),
		Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
			called = true
			return nil, nil
		},
	}
	reg, err := NewRegistry([]Tool{tool})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	res := reg.Dispatch(context.Background(), Request{Tool: "strict", Args: json.RawMessage(`{"text": 42}`)})
	if res.OK || res.Kind != string(KindInvalidArgs) {
		t.Fatalf("got %+v, want INVALID_ARGS failure", res)
	}
	if called {
		t.Fatal("handler ran despite invalid arguments")
	}
}

func TestDispatch_PanicBecomesInternalResult(t *testing.T) {
	tool := Tool{
		Name:   "boom",
		Schema: json.RawMessage(`{"type": "object", "properties": {}}`),
		Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
			panic("kaboom")
		},
	}
	reg, err := NewRegistry([]Tool{tool})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	res := reg.Dispatch(context.Background(), Request{Tool: "boom"})
	if res.OK || res.Kind != string(KindInternal) {
		t.Fatalf("got %+v, want INTERNAL failure", res)
	}
	if !strings.Contains(res.Message, "kaboom") {
		t.Fatalf("message = %q", res.Message)
	}
}

func TestDispatch_FailureKindSurvivesWrapping(t *testing.T) {
	tool := Tool{
		Name:   "missing",
		Schema: json.RawMessage(`{"type": "object", "properties": {}}`),
		Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
			return nil, Errorf(KindFileNotFound, "file not found: x.txt")
		},
	}
	reg, err := NewRegistry([]Tool{tool})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	res := reg.Dispatch(context.Background(), Request{Tool: "missing"})
	if res.OK || res.Kind != string(KindFileNotFound) {
		t.Fatalf("got %+v, want FILE_NOT_FOUND failure", res)
	}
	if res.Message != "file not found: x.txt" {
		t.Fatalf("message = %q, kind prefix not stripped", res.Message)
	}
}

func TestDispatch_WritesAuditLine(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "audit")
	reg, err := NewRegistry([]Tool{echoTool("echo")}, WithAuditDir(dir))
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	reg.Dispatch(context.Background(), Request{Tool: "echo", Args: json.RawMessage(`{"text": "audited"}`)})

	name := filepath.Join(dir, time.Now().UTC().Format("20060102")+".log")
	f, err := os.Open(name)
	if err != nil {
		t.Fatalf("open audit log: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		t.Fatal("audit log is empty")
	}
	var entry struct {
		ID   string `json:"id"`
		Tool string `json:"tool"`
		OK   bool   `json:"ok"`
	}
	if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
		t.Fatalf("audit line is not JSON: %v", err)
	}
	if entry.Tool != "echo" || !entry.OK || entry.ID == "" {
		t.Fatalf("audit entry = %+v", entry)
	}
}

func TestTools_SortedByName(t *testing.T) {
	reg, err := NewRegistry([]Tool{echoTool("zeta"), echoTool("alpha"), echoTool("mid")})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	got := make([]string, 0, 3)
	for _, tool := range reg.Tools() {
		got = append(got, tool.Name)
	}
	want := []string{"alpha", "mid", "zeta"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Tools order = %v, want %v", got, want)
		}
	}
}
