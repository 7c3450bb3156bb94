package toolkit

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Request is one tool invocation from the external caller. Args is the raw
// named-argument object; it is validated against the tool schema before the
// handler ever sees it.
type Request struct {
	Tool string          `json:"tool"`
	Args json.RawMessage `json:"args,omitempty"`
}

// Result is the uniform outcome shape for every invocation. Failures carry a
// Kind and message; they are ordinary values, never raised faults, so the
// agent loop can always continue the conversation.
type Result struct {
	OK      bool            `json:"ok"`
	Kind    string          `json:"kind,omitempty"`
	Message string          `json:"message,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Success marshals payload into a successful Result. A marshal failure is an
// internal fault and is reported as one.
func Success(payload any) Result {
	b, err := json.Marshal(payload)
	if err != nil {
		return Failure(Errorf(KindInternal, "encode payload: %v", err))
	}
	return Result{OK: true, Payload: b}
}

// Failure converts any error into a failed Result, preserving the Kind when
// err is a toolkit Error.
func Failure(err error) Result {
	if err == nil {
		return Result{OK: false, Kind: string(KindInternal), Message: "unknown failure"}
	}
	kind := KindOf(err)
	msg := err.Error()
	// Strip the leading "KIND: " the Error type prepends; Kind is already a field.
	if cut, ok := strings.CutPrefix(msg, string(kind)+": "); ok {
		msg = cut
	}
	return Result{OK: false, Kind: string(kind), Message: msg}
}

// DecodePayload unmarshals a Result payload into out. Intended for tests and
// in-process callers that know the concrete payload shape.
func DecodePayload(res Result, out any) error {
	if !res.OK {
		return fmt.Errorf("result is a failure (%s): %s", res.Kind, res.Message)
	}
	if err := json.Unmarshal(res.Payload, out); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}
