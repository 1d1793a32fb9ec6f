package engine

import (
	"fmt"
	"slices"

	"github.com/lazypower/kaizen/internal/civil"
	"github.com/lazypower/kaizen/internal/records"
	"github.com/lazypower/kaizen/internal/store"
)

func cloneDiary(entries []records.DiaryEntry) []records.DiaryEntry {
	out := make([]records.DiaryEntry, len(entries))
	for i, d := range entries {
		d.Tags = slices.Clone(d.Tags)
		d.Links = slices.Clone(d.Links)
		out[i] = d
	}
	return out
}

func (e *Engine) mutateDiary(fn func(entries []records.DiaryEntry) ([]records.DiaryEntry, error)) error {
	next, err := fn(cloneDiary(e.diary))
	if err != nil {
		return err
	}
	if err := store.Save(e.backend, store.Diary, next); err != nil {
		return fmt.Errorf("save diary: %w", err)
	}
	e.diary = next
	return nil
}

// Diary returns all diary entries, newest day first.
func (e *Engine) Diary() []records.DiaryEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := cloneDiary(e.diary)
	slices.SortStableFunc(out, func(a, b records.DiaryEntry) int {
		// ISO dates sort lexically.
		switch {
		case a.EntryDate > b.EntryDate:
			return -1
		case a.EntryDate < b.EntryDate:
			return 1
		}
		return 0
	})
	return out
}

// DiaryEntry returns the entry for day.
func (e *Engine) DiaryEntry(day civil.Date) (records.DiaryEntry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := records.FindDiary(e.diary, day)
	if i < 0 {
		return records.DiaryEntry{}, fmt.Errorf("%w: %s", records.ErrUnknownDay, day)
	}
	return cloneDiary(e.diary[i : i+1])[0], nil
}

// AddDiaryEntry writes the entry for day (zero means today). Tags must name
// existing abilities.
func (e *Engine) AddDiaryEntry(day civil.Date, summary, category string, tags, links []string) (records.DiaryEntry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if day.IsZero() {
		day = e.Today()
	}
	refs, err := e.tax.RefsTo(tags...)
	if err != nil {
		return records.DiaryEntry{}, err
	}
	var entry records.DiaryEntry
	err = e.mutateDiary(func(entries []records.DiaryEntry) ([]records.DiaryEntry, error) {
		d, err := records.NewDiaryEntry(entries, day, summary, category, links)
		if err != nil {
			return nil, err
		}
		d.Tags = refs
		entry = d
		return append(entries, d), nil
	})
	return entry, err
}

// RemoveDiaryEntry deletes the entry for day.
func (e *Engine) RemoveDiaryEntry(day civil.Date) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mutateDiary(func(entries []records.DiaryEntry) ([]records.DiaryEntry, error) {
		i := records.FindDiary(entries, day)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", records.ErrUnknownDay, day)
		}
		return slices.Delete(entries, i, i+1), nil
	})
}

// Summaries returns periodic summaries in stored order.
func (e *Engine) Summaries() []records.Summary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.sums)
}

// AddSummary appends a summary dated day (zero means today).
func (e *Engine) AddSummary(title, content string, day civil.Date) (records.Summary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if day.IsZero() {
		day = e.Today()
	}
	sum, err := records.NewSummary(title, content, day)
	if err != nil {
		return records.Summary{}, err
	}
	err = mutateList(e.backend, store.Summaries, &e.sums, func(sums []records.Summary) ([]records.Summary, error) {
		return append(sums, sum), nil
	})
	return sum, err
}

// RemoveSummary deletes the summary at index.
func (e *Engine) RemoveSummary(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return mutateList(e.backend, store.Summaries, &e.sums, func(sums []records.Summary) ([]records.Summary, error) {
		if index < 0 || index >= len(sums) {
			return nil, fmt.Errorf("%w: %d", records.ErrSummaryIndex, index)
		}
		return slices.Delete(sums, index, index+1), nil
	})
}
