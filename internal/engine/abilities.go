package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lazypower/kaizen/internal/logger"
	"github.com/lazypower/kaizen/internal/progress"
	"github.com/lazypower/kaizen/internal/records"
	"github.com/lazypower/kaizen/internal/store"
	"github.com/lazypower/kaizen/internal/taxonomy"
)

// TagDetail is a snapshot of one tag.
type TagDetail struct {
	Name     string                    `json:"name"`
	Parent   string                    `json:"parent,omitempty"`
	Chain    []string                  `json:"chain"`
	Children []string                  `json:"children"`
	Points   []taxonomy.KnowledgePoint `json:"knowledge_points"`
}

// AddAbility creates a tag, as a root when parent is empty.
func (e *Engine) AddAbility(name, parent string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mutateTaxonomy(func(tax *taxonomy.Taxonomy) error {
		_, err := tax.Add(strings.TrimSpace(name), parent)
		return err
	})
}

// RenameAbility renames a tag and rewrites references to it in tasks,
// projects and the ledger. The taxonomy save decides success; reference
// rewrites that fail to save are logged.
func (e *Engine) RenameAbility(oldName, newName string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	newName = strings.TrimSpace(newName)
	if err := e.mutateTaxonomy(func(tax *taxonomy.Taxonomy) error {
		return tax.Rename(oldName, newName)
	}); err != nil {
		return err
	}
	logger.Info("engine: ability renamed", "from", oldName, "to", newName)
	e.propagateRename(oldName, newName)
	return nil
}

func (e *Engine) propagateRename(oldName, newName string) {
	if err := e.mutateTasks(func(tasks []records.Task) ([]records.Task, error) {
		if !records.RenameTaskAbility(tasks, oldName, newName) {
			return nil, errNoChange
		}
		return tasks, nil
	}); err != nil && !errors.Is(err, errNoChange) {
		logger.Warn("engine: task references not renamed", "error", err)
	}

	projects := cloneProjects(e.projects)
	if records.RenameProjectAbility(projects, oldName, newName) {
		if err := store.Save(e.backend, store.Projects, projects); err != nil {
			logger.Warn("engine: project references not renamed", "error", err)
		} else {
			e.projects = projects
		}
	}

	if err := e.mutateDiary(func(entries []records.DiaryEntry) ([]records.DiaryEntry, error) {
		if !records.RenameDiaryAbility(entries, oldName, newName) {
			return nil, errNoChange
		}
		return entries, nil
	}); err != nil && !errors.Is(err, errNoChange) {
		logger.Warn("engine: diary references not renamed", "error", err)
	}

	if err := e.mutateLedger(func(l *progress.Ledger) error {
		if !l.RenameTag(oldName, newName) {
			return errNoChange
		}
		return nil
	}); err != nil && !errors.Is(err, errNoChange) {
		logger.Warn("engine: ledger references not renamed", "error", err)
	}
}

// MoveAbility reparents a tag; an empty parent makes it a root. Project
// references are refreshed so their recorded parents stay current.
func (e *Engine) MoveAbility(name, newParent string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.mutateTaxonomy(func(tax *taxonomy.Taxonomy) error {
		return tax.Reparent(name, newParent)
	}); err != nil {
		return err
	}

	if len(e.projects) == 0 {
		return nil
	}
	projects := cloneProjects(e.projects)
	records.ResolveAbilities(projects, e.tax)
	if err := store.Save(e.backend, store.Projects, projects); err != nil {
		logger.Warn("engine: project references not refreshed", "error", err)
	} else {
		e.projects = projects
	}
	return nil
}

// RemoveAbility deletes a tag that has no children.
func (e *Engine) RemoveAbility(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mutateTaxonomy(func(tax *taxonomy.Taxonomy) error {
		return tax.Remove(name)
	})
}

// AddPoint appends a knowledge point and returns its index.
func (e *Engine) AddPoint(tag, content string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx := -1
	err := e.mutateTaxonomy(func(tax *taxonomy.Taxonomy) error {
		if _, err := tax.AddPoint(tag, content); err != nil {
			return err
		}
		t, _ := tax.Get(tag)
		idx = len(t.KnowledgePoints) - 1
		return nil
	})
	return idx, err
}

// RemovePoint deletes the knowledge point at index.
func (e *Engine) RemovePoint(tag string, index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mutateTaxonomy(func(tax *taxonomy.Taxonomy) error {
		return tax.RemovePoint(tag, index)
	})
}

// Tree renders the forest, filtered to subtrees containing a tag whose
// name contains search. An empty search shows everything.
func (e *Engine) Tree(search string) []taxonomy.Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	var pred taxonomy.Predicate
	if search = strings.TrimSpace(search); search != "" {
		pred = taxonomy.NameContains(search)
	}
	return e.tax.Tree(pred)
}

// Chain returns the root-to-tag path of names.
func (e *Engine) Chain(name string) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tax.AncestorChain(name)
}

// Tag returns a detail snapshot of one tag.
func (e *Engine) Tag(name string) (TagDetail, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	tag, ok := e.tax.Get(name)
	if !ok {
		return TagDetail{}, fmt.Errorf("%w: %q", taxonomy.ErrUnknownTag, name)
	}
	chain, _ := e.tax.AncestorChain(name)
	d := TagDetail{
		Name:     name,
		Parent:   e.tax.ParentOf(name),
		Chain:    chain,
		Children: []string{},
		Points:   make([]taxonomy.KnowledgePoint, 0, len(tag.KnowledgePoints)),
	}
	for _, c := range e.tax.ChildrenOf(name) {
		d.Children = append(d.Children, c.Name())
	}
	for _, p := range tag.KnowledgePoints {
		d.Points = append(d.Points, *p)
	}
	return d, nil
}

// Abilities returns every tag name in insertion order.
func (e *Engine) Abilities() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tax.Names()
}
