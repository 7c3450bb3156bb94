// Package sandbox provides the bounded-resource primitives shared by the
// command executor and the script tool: byte-capped output capture and
// wall-clock timeout derivation.
package sandbox

import (
	"bytes"
	"context"
	"time"
)

// BoundedBuffer is an io.Writer that keeps at most the configured number of
// bytes and silently discards the rest. Writes never fail, so it can sit
// behind os/exec output plumbing without aborting the child: the executor
// reports truncation via Truncated() instead.
//
// A zero or negative maxKB defaults to 64 KiB.
type BoundedBuffer struct {
	buf       bytes.Buffer
	capBytes  int
	truncated bool
}

// NewBoundedBuffer creates a BoundedBuffer holding at most maxKB kibibytes.
func NewBoundedBuffer(maxKB int) *BoundedBuffer {
	if maxKB <= 0 {
		maxKB = 64
	}
	return &BoundedBuffer{capBytes: maxKB * 1024}
}

// Write appends p up to the remaining capacity and reports the full length
// as written. Overflow sets the truncated flag.
func (b *BoundedBuffer) Write(p []byte) (int, error) {
	remaining := b.capBytes - b.buf.Len()
	if remaining <= 0 {
		if len(p) > 0 {
			b.truncated = true
		}
		return len(p), nil
	}
	if len(p) > remaining {
		b.buf.Write(p[:remaining])
		b.truncated = true
		return len(p), nil
	}
	return b.buf.Write(p)
}

// Bytes returns the captured contents (truncated at the cap).
func (b *BoundedBuffer) Bytes() []byte { return b.buf.Bytes() }

// String returns the captured contents as a string.
func (b *BoundedBuffer) String() string { return b.buf.String() }

// Truncated reports whether any write exceeded the cap.
func (b *BoundedBuffer) Truncated() bool { return b.truncated }

// ClampTimeout converts a requested per-call timeout in seconds to a
// concrete duration, applying the default when unset and the hard ceiling
// always. ceilingSec <= 0 falls back to 60 seconds.
func ClampTimeout(requestedSec, defaultSec, ceilingSec int) time.Duration {
	if ceilingSec <= 0 {
		ceilingSec = 60
	}
	sec := requestedSec
	if sec <= 0 {
		sec = defaultSec
	}
	if sec <= 0 || sec > ceilingSec {
		sec = ceilingSec
	}
	return time.Duration(sec) * time.Second
}

// WithWallTimeout returns a context canceled after wallMS milliseconds,
// defaulting to one second for non-positive values.
func WithWallTimeout(parent context.Context, wallMS int) (context.Context, context.CancelFunc) {
	if wallMS <= 0 {
		wallMS = 1000
	}
	return context.WithTimeout(parent, time.Duration(wallMS)*time.Millisecond)
}
