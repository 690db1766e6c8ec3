// Package txlog writes the append-only transaction log that is the audit
// artifact of an import run: one JSON record per created destination entity.
package txlog

import (
	"encoding/json"
	"fmt"
	"os"
)

// Record types.
const (
	TypeAttachment = "attachment"
	TypeNote       = "note"
	TypeComment    = "comment"
)

// Record maps one source entity to the destination entity created for it.
type Record struct {
	Type        string `json:"type"`
	File        string `json:"file"`
	SourceID    string `json:"sourceId"`
	DestPath    string `json:"destPath"`
	DestRelayID string `json:"destRelayId"`
	Content     string `json:"content,omitempty"`
}

// Log is an append-only newline-delimited JSON file. Access is strictly
// sequential; the pipeline never writes from more than one goroutine.
type Log struct {
	f       *os.File
	path    string
	records int
}

// Open creates the log file for a run. The name is derived from the run
// identifier and must not already exist: a collision means the identifier
// is not unique and the run must not start.
func Open(runID string) (*Log, error) {
	path := fmt.Sprintf("transaction-%s.log", runID)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("txlog: create %s: %w", path, err)
	}
	return &Log{f: f, path: path}, nil
}

// Path returns the log file's path.
func (l *Log) Path() string {
	return l.path
}

// Records returns how many records have been appended.
func (l *Log) Records() int {
	return l.records
}

// Append serializes one record and writes it followed by a newline, synced
// to disk before returning. This is the durability boundary: once Append
// returns, the created entity is on record even if the process dies.
func (l *Log) Append(r Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("txlog: encode record: %w", err)
	}
	if _, err := l.f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("txlog: append: %w", err)
	}
	if err := l.f.Sync(); err != nil {
		return fmt.Errorf("txlog: sync: %w", err)
	}
	l.records++
	return nil
}

// Close closes the file. The file is removed unless keep is true and at
// least one record was appended: dry runs and empty logs leave no artifact.
func (l *Log) Close(keep bool) error {
	if err := l.f.Close(); err != nil {
		return fmt.Errorf("txlog: close: %w", err)
	}
	if !keep || l.records == 0 {
		if err := os.Remove(l.path); err != nil {
			return fmt.Errorf("txlog: remove %s: %w", l.path, err)
		}
	}
	return nil
}
