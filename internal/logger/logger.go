// Package logger provides JSON-lines audit logging for engine runs: a
// size-rotated append-only file, mutex-guarded writes, secrets redacted
// before serialization.
package logger

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/polyglotscan/engine/internal/redact"
)

// defaultMaxLogBytes is the file size at which the log is rotated (10 MB).
const defaultMaxLogBytes = 10 * 1024 * 1024

// RunEvent is one record of an analyze() invocation.
type RunEvent struct {
	Timestamp    string   `json:"timestamp"`
	FilesScanned int      `json:"files_scanned"`
	RulesLoaded  int      `json:"rules_loaded"`
	Findings     int      `json:"findings"`
	ElapsedMS    int64    `json:"elapsed_ms"`
	Error        string   `json:"error,omitempty"`
	SampleExcerpts []string `json:"sample_excerpts,omitempty"`
}

// AuditLogger appends RunEvents to a JSON-lines file.
type AuditLogger struct {
	path string
	file *os.File
	mu   sync.Mutex
}

// New opens (or creates) the audit log at path.
func New(path string) (*AuditLogger, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}
	return &AuditLogger{path: path, file: file}, nil
}

// rotateIfNeeded rotates the log file if it has reached defaultMaxLogBytes.
// Must be called with l.mu held.
func (l *AuditLogger) rotateIfNeeded() error {
	info, err := l.file.Stat()
	if err != nil {
		return fmt.Errorf("stat log file: %w", err)
	}
	if info.Size() < defaultMaxLogBytes {
		return nil
	}

	if err := l.file.Close(); err != nil {
		return fmt.Errorf("close log before rotation: %w", err)
	}

	rotated := l.path + ".1"
	_ = os.Remove(rotated)
	if err := os.Rename(l.path, rotated); err != nil {
		return fmt.Errorf("rotate log: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open fresh log after rotation: %w", err)
	}
	l.file = f
	return nil
}

// Log writes event as one redacted JSON line.
func (l *AuditLogger) Log(event RunEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.rotateIfNeeded(); err != nil {
		fmt.Fprintf(os.Stderr, "[engine] warning: log rotation failed: %v\n", err)
	}

	if event.Error != "" {
		event.Error = redact.Redact(event.Error)
	}
	event.SampleExcerpts = redact.RedactArgs(event.SampleExcerpts)

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	data = append(data, '\n')
	_, err = l.file.Write(data)
	return err
}

// Close releases the underlying file handle.
func (l *AuditLogger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
