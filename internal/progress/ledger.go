package progress

import (
	"slices"

	"github.com/lazypower/kaizen/internal/civil"
	"github.com/lazypower/kaizen/internal/logger"
	"github.com/lazypower/kaizen/internal/taxonomy"
)

// DailyProgress is the ledger record for one calendar day.
type DailyProgress struct {
	ProgressDate   civil.Date       `json:"progress_date"`
	TasksCompleted int              `json:"tasks_completed"`
	Notes          string           `json:"notes"`
	Tags           taxonomy.TagRefs `json:"tags"`
}

// Ledger holds at most one record per date, in insertion order.
type Ledger struct {
	records []*DailyProgress
	index   map[civil.Date]*DailyProgress
}

// NewLedger builds a ledger from stored records. Records without a date
// are dropped, and a repeated date keeps its first record. Both are logged.
func NewLedger(recs []DailyProgress) *Ledger {
	l := &Ledger{index: make(map[civil.Date]*DailyProgress)}
	for i := range recs {
		rec := recs[i]
		if rec.ProgressDate.IsZero() {
			logger.Warn("progress: dropping ledger record without a date")
			continue
		}
		if _, dup := l.index[rec.ProgressDate]; dup {
			logger.Warn("progress: dropping duplicate ledger record", "date", rec.ProgressDate)
			continue
		}
		rec.Tags = slices.Clone(rec.Tags)
		l.add(&rec)
	}
	return l
}

func (l *Ledger) add(rec *DailyProgress) {
	l.records = append(l.records, rec)
	l.index[rec.ProgressDate] = rec
}

// Len returns the number of records.
func (l *Ledger) Len() int { return len(l.records) }

// Get returns a copy of the record for day.
func (l *Ledger) Get(day civil.Date) (DailyProgress, bool) {
	rec, ok := l.index[day]
	if !ok {
		return DailyProgress{}, false
	}
	cp := *rec
	cp.Tags = slices.Clone(rec.Tags)
	return cp, true
}

// ensure returns the record for day, creating an empty one if needed.
func (l *Ledger) ensure(day civil.Date) (*DailyProgress, bool) {
	if rec, ok := l.index[day]; ok {
		return rec, false
	}
	rec := &DailyProgress{ProgressDate: day}
	l.add(rec)
	return rec, true
}

// SetNotes replaces the notes and tags for day, creating the record if the
// day has none yet.
func (l *Ledger) SetNotes(day civil.Date, notes string, tags taxonomy.TagRefs) {
	rec, _ := l.ensure(day)
	rec.Notes = notes
	rec.Tags = slices.Clone(tags)
}

// RenameTag rewrites tag references across all records.
func (l *Ledger) RenameTag(oldName, newName string) bool {
	changed := false
	for _, rec := range l.records {
		if rec.Tags.Rename(oldName, newName) {
			changed = true
		}
	}
	return changed
}

// Records returns copies of all records in insertion order.
func (l *Ledger) Records() []DailyProgress {
	out := make([]DailyProgress, 0, len(l.records))
	for _, rec := range l.records {
		cp := *rec
		cp.Tags = slices.Clone(rec.Tags)
		out = append(out, cp)
	}
	return out
}

// Sorted returns copies of all records ordered by date, newest first.
func (l *Ledger) Sorted() []DailyProgress {
	out := l.Records()
	slices.SortFunc(out, func(a, b DailyProgress) int {
		return b.ProgressDate.Compare(a.ProgressDate)
	})
	return out
}

// Clone returns a deep copy.
func (l *Ledger) Clone() *Ledger {
	return NewLedger(l.Records())
}
