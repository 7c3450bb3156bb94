package sandbox

import (
	"strings"
	"testing"
	"time"
)

func TestBoundedBuffer_UnderCap(t *testing.T) {
	b := NewBoundedBuffer(1)
	n, err := b.Write([]byte("hello"))
	if err != nil || n != 5 {
		t.Fatalf("write: n=%d err=%v", n, err)
	}
	if b.Truncated() {
		t.Fatalf("unexpected truncation")
	}
	if b.String() != "hello" {
		t.Fatalf("contents: %q", b.String())
	}
}

func TestBoundedBuffer_TruncatesAtCap(t *testing.T) {
	b := NewBoundedBuffer(1) // 1 KiB cap
	big := strings.Repeat("x", 2048)
	n, err := b.Write([]byte(big))
	if err != nil {
		t.Fatalf("write must not fail: %v", err)
	}
	if n != len(big) {
		t.Fatalf("write must report full length, got %d", n)
	}
	if !b.Truncated() {
		t.Fatalf("expected truncation")
	}
	if len(b.Bytes()) != 1024 {
		t.Fatalf("expected exactly 1024 bytes kept, got %d", len(b.Bytes()))
	}
	// Subsequent writes are discarded entirely.
	if _, err := b.Write([]byte("more")); err != nil {
		t.Fatalf("overflow write: %v", err)
	}
	if len(b.Bytes()) != 1024 {
		t.Fatalf("cap not held after overflow: %d", len(b.Bytes()))
	}
}

func TestClampTimeout(t *testing.T) {
	cases := []struct {
		name                           string
		requested, defaultSec, ceiling int
		want                           time.Duration
	}{
		{"requested within ceiling", 5, 10, 60, 5 * time.Second},
		{"unset uses default", 0, 10, 60, 10 * time.Second},
		{"requested above ceiling clamps", 120, 10, 60, 60 * time.Second},
		{"no default falls to ceiling", 0, 0, 30, 30 * time.Second},
		{"no ceiling defaults to 60s", 0, 0, 0, 60 * time.Second},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ClampTimeout(tc.requested, tc.defaultSec, tc.ceiling)
			if got != tc.want {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}
