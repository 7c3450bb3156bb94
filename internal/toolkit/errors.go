package toolkit

import (
	"errors"
	"fmt"
)

// Kind is a stable, machine-readable failure code. The set is closed: the
// calling agent loop matches on these strings to decide how to self-correct,
// so new kinds must never change the meaning of existing ones.
type Kind string

const (
	KindPathOutsideRoot Kind = "PATH_OUTSIDE_ROOT"
	KindPathNotFound    Kind = "PATH_NOT_FOUND"
	KindNotADirectory   Kind = "NOT_A_DIRECTORY"
	KindFileNotFound    Kind = "FILE_NOT_FOUND"
	KindNotAFile        Kind = "NOT_A_FILE"
	KindNoMatch         Kind = "NO_MATCH"
	KindAmbiguousMatch  Kind = "AMBIGUOUS_MATCH"
	KindWriteDenied     Kind = "WRITE_DENIED"
	KindBinaryFile      Kind = "BINARY_FILE"
	KindCmdNotAllowed   Kind = "CMD_NOT_ALLOWED"
	KindArgRejected     Kind = "ARG_REJECTED"
	KindTimeout         Kind = "TIMEOUT"
	KindLaunchFailed    Kind = "LAUNCH_FAILED"
	KindInvalidArgs     Kind = "INVALID_ARGS"
	KindEvalError       Kind = "EVAL_ERROR"
	KindParseError      Kind = "PARSE_ERROR"
	KindInternal        Kind = "INTERNAL"
)

// Error carries a Kind plus a message specific enough for an automated
// planner to adjust its next call (which path, why ambiguous, which flag).
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// Errorf builds an *Error with a formatted message.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the Kind from err, defaulting to KindInternal for any
// error that did not originate as a toolkit Error.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindInternal
}
