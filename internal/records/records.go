// Package records defines the task, project, goal, diary and summary
// documents the core reads: tasks and projects feed the daily progress
// ledger, and tasks, projects and diary entries reference ability tags by
// name.
package records

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lazypower/kaizen/internal/civil"
	"github.com/lazypower/kaizen/internal/progress"
	"github.com/lazypower/kaizen/internal/taxonomy"
)

var (
	ErrUnknownTask   = errors.New("records: unknown task")
	ErrDuplicateTask = errors.New("records: task already exists")
	ErrProgress      = errors.New("records: progress must be between 0 and 100")
	ErrGoalIndex     = errors.New("records: goal index out of range")
	ErrEmptyText     = errors.New("records: text is empty")
	ErrDuplicateDay  = errors.New("records: diary entry already exists for date")
	ErrUnknownDay    = errors.New("records: no diary entry for date")
	ErrSummaryIndex  = errors.New("records: summary index out of range")
)

// Task is a dated to-do with a progress history.
type Task struct {
	Name        string                  `json:"name"`
	DueDate     string                  `json:"due_date"`
	Interest    *int                    `json:"interest"`
	Description string                  `json:"description"`
	Abilities   taxonomy.TagRefs        `json:"abilities"`
	Progress    int                     `json:"progress"`
	History     []progress.HistoryEntry `json:"progress_history"`
}

// ProgressHistory implements progress.Source.
func (t Task) ProgressHistory() []progress.HistoryEntry { return t.History }

// UnmarshalJSON also accepts the older single "ability" object.
func (t *Task) UnmarshalJSON(data []byte) error {
	type plain Task
	aux := struct {
		*plain
		Ability *taxonomy.TagRef `json:"ability"`
	}{plain: (*plain)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if t.Abilities == nil && aux.Ability != nil {
		t.Abilities = taxonomy.TagRefs{*aux.Ability}
	}
	if t.History == nil {
		t.History = []progress.HistoryEntry{}
	}
	return nil
}

// Project is a long-running task with the same history shape.
type Project struct {
	Name        string                  `json:"name"`
	DueDate     string                  `json:"due_date"`
	Abilities   taxonomy.TagRefs        `json:"abilities"`
	Description string                  `json:"description"`
	Progress    int                     `json:"progress"`
	Interest    *int                    `json:"interest,omitempty"`
	History     []progress.HistoryEntry `json:"progress_history"`
}

// ProgressHistory implements progress.Source.
func (p Project) ProgressHistory() []progress.HistoryEntry { return p.History }

// Goal is a dated objective.
type Goal struct {
	Text      string `json:"text"`
	DueDate   string `json:"due_date"`
	Completed bool   `json:"completed"`
}

// DiaryEntry is the single journal entry for a calendar day.
type DiaryEntry struct {
	EntryDate string           `json:"entry_date"`
	Summary   string           `json:"summary"`
	Category  string           `json:"category"`
	Tags      taxonomy.TagRefs `json:"tags"`
	Links     []string         `json:"links"`
}

// UnmarshalJSON fills absent lists so they re-encode as [].
func (d *DiaryEntry) UnmarshalJSON(data []byte) error {
	type plain DiaryEntry
	if err := json.Unmarshal(data, (*plain)(d)); err != nil {
		return err
	}
	if d.Tags == nil {
		d.Tags = taxonomy.TagRefs{}
	}
	if d.Links == nil {
		d.Links = []string{}
	}
	return nil
}

// FindDiary returns the index of the entry dated day, or -1.
func FindDiary(entries []DiaryEntry, day civil.Date) int {
	key := day.String()
	for i := range entries {
		if entries[i].EntryDate == key {
			return i
		}
	}
	return -1
}

// NewDiaryEntry validates an entry against existing ones; there is at most
// one entry per day.
func NewDiaryEntry(entries []DiaryEntry, day civil.Date, summary, category string, links []string) (DiaryEntry, error) {
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return DiaryEntry{}, ErrEmptyText
	}
	if FindDiary(entries, day) >= 0 {
		return DiaryEntry{}, fmt.Errorf("%w: %s", ErrDuplicateDay, day)
	}
	kept := []string{}
	for _, l := range links {
		if l = strings.TrimSpace(l); l != "" {
			kept = append(kept, l)
		}
	}
	return DiaryEntry{
		EntryDate: day.String(),
		Summary:   summary,
		Category:  strings.TrimSpace(category),
		Tags:      taxonomy.TagRefs{},
		Links:     kept,
	}, nil
}

// RenameDiaryAbility is RenameTaskAbility for diary entries.
func RenameDiaryAbility(entries []DiaryEntry, oldName, newName string) bool {
	changed := false
	for i := range entries {
		if entries[i].Tags.Rename(oldName, newName) {
			changed = true
		}
	}
	return changed
}

// Summary is a titled review of a period, dated by its end.
type Summary struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	SummaryDate string `json:"summary_date"`
}

// NewSummary requires both a title and content.
func NewSummary(title, content string, day civil.Date) (Summary, error) {
	title, content = strings.TrimSpace(title), strings.TrimSpace(content)
	if title == "" || content == "" {
		return Summary{}, ErrEmptyText
	}
	return Summary{Title: title, Content: content, SummaryDate: day.String()}, nil
}

// Sources adapts tasks and projects for progress.Synchronize.
func Sources(tasks []Task, projects []Project) []progress.Source {
	sources := make([]progress.Source, 0, len(tasks)+len(projects))
	for _, t := range tasks {
		sources = append(sources, t)
	}
	for _, p := range projects {
		sources = append(sources, p)
	}
	return sources
}

// FindTask returns the index of the named task, or -1.
func FindTask(tasks []Task, name string) int {
	for i := range tasks {
		if tasks[i].Name == name {
			return i
		}
	}
	return -1
}

// NewTask validates and builds a task with an empty history.
func NewTask(tasks []Task, name string, due civil.Date) (Task, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Task{}, ErrEmptyText
	}
	if FindTask(tasks, name) >= 0 {
		return Task{}, fmt.Errorf("%w: %q", ErrDuplicateTask, name)
	}
	return Task{
		Name:      name,
		DueDate:   due.String(),
		Abilities: taxonomy.TagRefs{},
		History:   []progress.HistoryEntry{},
	}, nil
}

// Record appends a history entry and sets the task's current progress.
func (t *Task) Record(timestamp, description string, value int) error {
	if value < 0 || value > 100 {
		return fmt.Errorf("%w: %d", ErrProgress, value)
	}
	t.History = append(t.History, progress.HistoryEntry{
		Timestamp:   timestamp,
		Description: description,
		Progress:    value,
	})
	t.Progress = value
	return nil
}

// ResolveAbilities refreshes project tag references from the taxonomy.
func ResolveAbilities(projects []Project, tax *taxonomy.Taxonomy) {
	for i := range projects {
		projects[i].Abilities.Resolve(tax)
	}
}

// RenameTaskAbility rewrites tag references in tasks and reports whether
// any changed.
func RenameTaskAbility(tasks []Task, oldName, newName string) bool {
	changed := false
	for i := range tasks {
		if tasks[i].Abilities.Rename(oldName, newName) {
			changed = true
		}
	}
	return changed
}

// RenameProjectAbility is RenameTaskAbility for projects.
func RenameProjectAbility(projects []Project, oldName, newName string) bool {
	changed := false
	for i := range projects {
		if projects[i].Abilities.Rename(oldName, newName) {
			changed = true
		}
	}
	return changed
}
