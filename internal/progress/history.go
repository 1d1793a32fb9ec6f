// Package progress derives the daily progress ledger from task progress
// histories.
package progress

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lazypower/kaizen/internal/civil"
)

// TimestampLayout is the layout of HistoryEntry.Timestamp.
const TimestampLayout = "2006-01-02 15:04:05"

// Complete is the progress value that counts as a completion.
const Complete = 100

// HistoryEntry is one progress update on a task or project. It is stored
// as a three-element array: [timestamp, description, progress].
type HistoryEntry struct {
	Timestamp   string
	Description string
	Progress    int
}

// Date returns the calendar day of the entry's timestamp.
func (e HistoryEntry) Date() (civil.Date, error) {
	day, _, _ := strings.Cut(strings.TrimSpace(e.Timestamp), " ")
	return civil.Parse(day)
}

func (e HistoryEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.Timestamp, e.Description, e.Progress})
}

func (e *HistoryEntry) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("history entry: %w", err)
	}
	if len(raw) != 3 {
		return fmt.Errorf("history entry: want 3 elements, got %d", len(raw))
	}
	var progress float64
	if err := json.Unmarshal(raw[0], &e.Timestamp); err != nil {
		return fmt.Errorf("history entry timestamp: %w", err)
	}
	if err := json.Unmarshal(raw[1], &e.Description); err != nil {
		return fmt.Errorf("history entry description: %w", err)
	}
	if err := json.Unmarshal(raw[2], &progress); err != nil {
		return fmt.Errorf("history entry progress: %w", err)
	}
	e.Progress = int(progress)
	return nil
}

// Source is anything that carries a progress history.
type Source interface {
	ProgressHistory() []HistoryEntry
}
