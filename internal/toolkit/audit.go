package toolkit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// auditEntry is one NDJSON line describing a completed invocation.
type auditEntry struct {
	TS           string `json:"ts"`
	ID           string `json:"id"`
	Tool         string `json:"tool"`
	OK           bool   `json:"ok"`
	Kind         string `json:"kind,omitempty"`
	MS           int64  `json:"ms"`
	PayloadBytes int    `json:"payloadBytes"`
	Message      string `json:"message,omitempty"`
}

type auditLog struct {
	dir string
}

func newAuditLog(dir string) *auditLog {
	return &auditLog{dir: dir}
}

// append writes one NDJSON line to <dir>/YYYYMMDD.log, creating the
// directory on first use.
func (a *auditLog) append(entry auditEntry) error {
	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return err
	}
	fname := time.Now().UTC().Format("20060102") + ".log"
	path := filepath.Join(a.dir, fname)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			_ = cerr
		}
	}()
	if _, err := f.Write(append(b, '\n')); err != nil {
		return err
	}
	return nil
}
