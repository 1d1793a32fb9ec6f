// Package store persists whole documents (JSON arrays of records) under
// fixed artifact names, either as one file per artifact or as rows in a
// SQLite database.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lazypower/kaizen/internal/logger"
)

// ErrNotFound is returned by Backend.Read for an artifact never written.
var ErrNotFound = errors.New("store: artifact not found")

// Mode controls how a write replaces the previous document.
type Mode int

const (
	// Overwrite truncates and rewrites in place.
	Overwrite Mode = iota
	// Atomic writes a temporary copy and renames it over the target, so a
	// crash leaves either the old or the new document.
	Atomic
)

// Artifact names a stored document and how it must be written.
type Artifact struct {
	Name string
	Mode Mode
}

var (
	Abilities     = Artifact{Name: "abilities", Mode: Atomic}
	Projects      = Artifact{Name: "projects", Mode: Atomic}
	Tasks         = Artifact{Name: "tasks", Mode: Overwrite}
	DailyProgress = Artifact{Name: "daily_progress", Mode: Overwrite}
	Goals         = Artifact{Name: "goals", Mode: Overwrite}
	Diary         = Artifact{Name: "diary", Mode: Overwrite}
	Summaries     = Artifact{Name: "summaries", Mode: Overwrite}
)

// Backend reads and writes raw documents.
type Backend interface {
	Read(name string) ([]byte, error)
	Write(name string, data []byte, mode Mode) error
}

// Load decodes an artifact as a list of records. A missing, empty, or
// unreadable document yields an empty list; failures are logged, never
// returned.
func Load[T any](b Backend, a Artifact) []T {
	data, err := b.Read(a.Name)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		logger.Warn("store: read failed, using empty collection", "artifact", a.Name, "error", err)
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	var recs []T
	if err := json.Unmarshal(data, &recs); err != nil {
		logger.Warn("store: decode failed, using empty collection", "artifact", a.Name, "error", err)
		return nil
	}
	return recs
}

// Save encodes records as an indented UTF-8 JSON array and writes the
// whole artifact. Errors are returned to the caller and not retried.
func Save[T any](b Backend, a Artifact, recs []T) error {
	if recs == nil {
		recs = []T{}
	}
	data, err := encode(recs)
	if err != nil {
		return fmt.Errorf("encode %s: %w", a.Name, err)
	}
	if err := b.Write(a.Name, data, a.Mode); err != nil {
		return fmt.Errorf("write %s: %w", a.Name, err)
	}
	logger.Debug("store: saved", "artifact", a.Name, "records", len(recs), "bytes", len(data))
	return nil
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
