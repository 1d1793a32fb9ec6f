package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lazypower/kaizen/internal/civil"
	"github.com/lazypower/kaizen/internal/logger"
	"github.com/lazypower/kaizen/internal/progress"
	"github.com/lazypower/kaizen/internal/records"
	"github.com/lazypower/kaizen/internal/store"
)

// SyncDailyProgress re-reads tasks and projects, which other tools edit,
// and folds their completions into the ledger. The ledger is saved only
// when something changed.
func (e *Engine) SyncDailyProgress() (progress.Report, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tasks = store.Load[records.Task](e.backend, store.Tasks)
	e.projects = store.Load[records.Project](e.backend, store.Projects)
	records.ResolveAbilities(e.projects, e.tax)

	var report progress.Report
	err := e.mutateLedger(func(l *progress.Ledger) error {
		report = progress.Synchronize(records.Sources(e.tasks, e.projects), l, e.mode)
		if !report.Changed() {
			return errNoChange
		}
		return nil
	})
	if errors.Is(err, errNoChange) {
		err = nil
	}
	if err != nil {
		return progress.Report{}, err
	}
	logger.Info("engine: daily progress synced",
		"mode", e.mode,
		"created", len(report.Created),
		"updated", len(report.Updated),
		"reset", len(report.Reset))
	return report, nil
}

// DailyProgress returns the ledger, newest first.
func (e *Engine) DailyProgress() []progress.DailyProgress {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Sorted()
}

// SetDailyNotes replaces the notes and tags for day. Tags must name
// existing abilities.
func (e *Engine) SetDailyNotes(day civil.Date, notes string, tags []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if day.IsZero() {
		day = e.Today()
	}
	refs, err := e.tax.RefsTo(tags...)
	if err != nil {
		return err
	}
	return e.mutateLedger(func(l *progress.Ledger) error {
		l.SetNotes(day, notes, refs)
		return nil
	})
}

// Goals returns all goals in stored order.
func (e *Engine) Goals() []records.Goal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]records.Goal{}, e.goals...)
}

// AddGoal appends a goal.
func (e *Engine) AddGoal(text string, due civil.Date) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	text = strings.TrimSpace(text)
	if text == "" {
		return records.ErrEmptyText
	}
	return e.mutateGoals(func(goals []records.Goal) ([]records.Goal, error) {
		return append(goals, records.Goal{Text: text, DueDate: due.String()}), nil
	})
}

// CompleteGoal marks the goal at index completed.
func (e *Engine) CompleteGoal(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mutateGoals(func(goals []records.Goal) ([]records.Goal, error) {
		if index < 0 || index >= len(goals) {
			return nil, fmt.Errorf("%w: %d", records.ErrGoalIndex, index)
		}
		goals[index].Completed = true
		return goals, nil
	})
}

// RemoveGoal deletes the goal at index.
func (e *Engine) RemoveGoal(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mutateGoals(func(goals []records.Goal) ([]records.Goal, error) {
		if index < 0 || index >= len(goals) {
			return nil, fmt.Errorf("%w: %d", records.ErrGoalIndex, index)
		}
		return append(goals[:index], goals[index+1:]...), nil
	})
}

// Tasks returns all tasks in stored order.
func (e *Engine) Tasks() []records.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneTasks(e.tasks)
}

// AddTask creates a task referencing the named abilities.
func (e *Engine) AddTask(name string, due civil.Date, abilities []string) (records.Task, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	refs, err := e.tax.RefsTo(abilities...)
	if err != nil {
		return records.Task{}, err
	}
	var task records.Task
	err = e.mutateTasks(func(tasks []records.Task) ([]records.Task, error) {
		t, err := records.NewTask(tasks, name, due)
		if err != nil {
			return nil, err
		}
		t.Abilities = refs
		task = t
		return append(tasks, t), nil
	})
	return task, err
}

// RecordProgress appends a timestamped history entry to a task. Reaching
// 100 counts as a completion on today's date at the next sync.
func (e *Engine) RecordProgress(name, description string, value int) (records.Task, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ts := timeNow().In(e.loc).Format(progress.TimestampLayout)
	var task records.Task
	err := e.mutateTasks(func(tasks []records.Task) ([]records.Task, error) {
		i := records.FindTask(tasks, name)
		if i < 0 {
			return nil, fmt.Errorf("%w: %q", records.ErrUnknownTask, name)
		}
		if err := tasks[i].Record(ts, description, value); err != nil {
			return nil, err
		}
		task = tasks[i]
		return tasks, nil
	})
	return task, err
}
