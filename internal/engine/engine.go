// Package engine owns one loaded workspace: the ability taxonomy, the daily
// progress ledger and the task, project, goal, diary and summary records. Every mutation
// works on a copy, saves it, and replaces the in-memory state only when
// the save succeeded.
package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/lazypower/kaizen/internal/civil"
	"github.com/lazypower/kaizen/internal/logger"
	"github.com/lazypower/kaizen/internal/progress"
	"github.com/lazypower/kaizen/internal/recall"
	"github.com/lazypower/kaizen/internal/records"
	"github.com/lazypower/kaizen/internal/store"
	"github.com/lazypower/kaizen/internal/taxonomy"
)

// errNoChange aborts a mutation without saving.
var errNoChange = errors.New("no change")

// Options tune an Engine. Zero values pick defaults.
type Options struct {
	Scheduler *recall.Scheduler
	SyncMode  progress.Mode
	Location  *time.Location
	Rand      *rand.Rand
}

// Engine serializes access to a workspace.
type Engine struct {
	mu      sync.Mutex
	backend store.Backend
	sched   *recall.Scheduler
	mode    progress.Mode
	loc     *time.Location
	rng     *rand.Rand

	tax      *taxonomy.Taxonomy
	ledger   *progress.Ledger
	tasks    []records.Task
	projects []records.Project
	goals    []records.Goal
	diary    []records.DiaryEntry
	sums     []records.Summary

	cron *cron.Cron
}

// New loads every artifact from backend.
func New(backend store.Backend, opts Options) *Engine {
	e := &Engine{
		backend: backend,
		sched:   opts.Scheduler,
		mode:    opts.SyncMode,
		loc:     opts.Location,
		rng:     opts.Rand,
	}
	if e.sched == nil {
		e.sched = recall.Default()
	}
	if e.loc == nil {
		e.loc = time.Local
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	e.load()
	return e
}

// Reload discards in-memory state and reads every artifact again.
func (e *Engine) Reload() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.load()
}

func (e *Engine) load() {
	e.tax = taxonomy.FromRecords(store.Load[taxonomy.Record](e.backend, store.Abilities))
	e.ledger = progress.NewLedger(store.Load[progress.DailyProgress](e.backend, store.DailyProgress))
	e.tasks = store.Load[records.Task](e.backend, store.Tasks)
	e.projects = store.Load[records.Project](e.backend, store.Projects)
	// Project refs follow the live taxonomy in memory only.
	records.ResolveAbilities(e.projects, e.tax)
	e.goals = store.Load[records.Goal](e.backend, store.Goals)
	e.diary = store.Load[records.DiaryEntry](e.backend, store.Diary)
	e.sums = store.Load[records.Summary](e.backend, store.Summaries)
	logger.Debug("engine: loaded",
		"abilities", e.tax.Len(),
		"ledger", e.ledger.Len(),
		"tasks", len(e.tasks),
		"projects", len(e.projects),
		"goals", len(e.goals),
		"diary", len(e.diary),
		"summaries", len(e.sums))
}

// Today returns the current calendar date in the engine's location.
func (e *Engine) Today() civil.Date {
	return civil.Of(timeNow().In(e.loc))
}

// Scheduler returns the recall scheduler in use.
func (e *Engine) Scheduler() *recall.Scheduler { return e.sched }

// SyncMode returns the progress sync mode in use.
func (e *Engine) SyncMode() progress.Mode { return e.mode }

// mutateTaxonomy runs fn on a clone and commits it if saving succeeds.
func (e *Engine) mutateTaxonomy(fn func(tax *taxonomy.Taxonomy) error) error {
	next := e.tax.Clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := store.Save(e.backend, store.Abilities, next.Records()); err != nil {
		return fmt.Errorf("save abilities: %w", err)
	}
	e.tax = next
	return nil
}

func (e *Engine) mutateLedger(fn func(l *progress.Ledger) error) error {
	next := e.ledger.Clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := store.Save(e.backend, store.DailyProgress, next.Records()); err != nil {
		return fmt.Errorf("save daily progress: %w", err)
	}
	e.ledger = next
	return nil
}

func (e *Engine) mutateGoals(fn func(goals []records.Goal) ([]records.Goal, error)) error {
	return mutateList(e.backend, store.Goals, &e.goals, fn)
}

// mutateList is the clone, save, swap cycle for flat record lists whose
// elements hold no shared slices worth protecting.
func mutateList[T any](b store.Backend, a store.Artifact, cur *[]T, fn func([]T) ([]T, error)) error {
	next, err := fn(slices.Clone(*cur))
	if err != nil {
		return err
	}
	if err := store.Save(b, a, next); err != nil {
		return fmt.Errorf("save %s: %w", a.Name, err)
	}
	*cur = next
	return nil
}

func (e *Engine) mutateTasks(fn func(tasks []records.Task) ([]records.Task, error)) error {
	next, err := fn(cloneTasks(e.tasks))
	if err != nil {
		return err
	}
	if err := store.Save(e.backend, store.Tasks, next); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	e.tasks = next
	return nil
}

func cloneTasks(tasks []records.Task) []records.Task {
	out := make([]records.Task, len(tasks))
	for i, t := range tasks {
		t.Abilities = slices.Clone(t.Abilities)
		t.History = slices.Clone(t.History)
		out[i] = t
	}
	return out
}

func cloneProjects(projects []records.Project) []records.Project {
	out := make([]records.Project, len(projects))
	for i, p := range projects {
		p.Abilities = slices.Clone(p.Abilities)
		out[i] = p
	}
	return out
}

// Backend returns the storage backend the engine writes to.
func (e *Engine) Backend() store.Backend { return e.backend }
