package progress

import (
	"slices"

	"github.com/lazypower/kaizen/internal/civil"
	"github.com/lazypower/kaizen/internal/logger"
)

// Mode selects how Synchronize merges counts into existing records.
type Mode int

const (
	// Recompute overwrites each date's counter with a fresh count of
	// completed sources. Running it twice gives the same ledger.
	Recompute Mode = iota
	// Additive adds the raw per-entry count onto existing counters. It is
	// kept only to reproduce ledgers written by older versions and drifts
	// on every repeated run.
	Additive
)

// ParseMode maps a config string to a Mode. Unknown strings are Recompute.
func ParseMode(s string) Mode {
	if s == "additive" {
		return Additive
	}
	return Recompute
}

func (m Mode) String() string {
	if m == Additive {
		return "additive"
	}
	return "recompute"
}

// Count returns, per date, the number of sources with at least one
// completed entry on that date.
func Count(sources []Source) map[civil.Date]int {
	counts := make(map[civil.Date]int)
	for _, src := range sources {
		days := make(map[civil.Date]bool)
		for _, e := range src.ProgressHistory() {
			if e.Progress != Complete {
				continue
			}
			day, err := e.Date()
			if err != nil {
				logger.Warn("progress: skipping entry with bad timestamp", "timestamp", e.Timestamp, "error", err)
				continue
			}
			days[day] = true
		}
		for day := range days {
			counts[day]++
		}
	}
	return counts
}

// CountRaw counts every completed entry, so a source completed twice on
// the same date counts twice.
func CountRaw(sources []Source) map[civil.Date]int {
	counts := make(map[civil.Date]int)
	for _, src := range sources {
		for _, e := range src.ProgressHistory() {
			if e.Progress != Complete {
				continue
			}
			day, err := e.Date()
			if err != nil {
				logger.Warn("progress: skipping entry with bad timestamp", "timestamp", e.Timestamp, "error", err)
				continue
			}
			counts[day]++
		}
	}
	return counts
}

// Report summarizes a synchronization run.
type Report struct {
	Mode    Mode         `json:"-"`
	Created []civil.Date `json:"created"`
	Updated []civil.Date `json:"updated"`
	Reset   []civil.Date `json:"reset"`
}

// Changed reports whether the run modified the ledger.
func (r Report) Changed() bool {
	return len(r.Created)+len(r.Updated)+len(r.Reset) > 0
}

// Synchronize merges completion counts from sources into the ledger.
// Notes and tags are never touched. New dates get a fresh record with
// empty notes and no tags. In Recompute mode a date whose completions
// have disappeared is reset to zero but kept, since it may carry notes.
func Synchronize(sources []Source, l *Ledger, mode Mode) Report {
	report := Report{Mode: mode}

	var counts map[civil.Date]int
	if mode == Additive {
		counts = CountRaw(sources)
	} else {
		counts = Count(sources)
	}

	days := make([]civil.Date, 0, len(counts))
	for day := range counts {
		days = append(days, day)
	}
	slices.SortFunc(days, civil.Date.Compare)

	for _, day := range days {
		n := counts[day]
		rec, created := l.ensure(day)
		switch {
		case created:
			rec.TasksCompleted = n
			report.Created = append(report.Created, day)
		case mode == Additive:
			rec.TasksCompleted += n
			report.Updated = append(report.Updated, day)
		case rec.TasksCompleted != n:
			rec.TasksCompleted = n
			report.Updated = append(report.Updated, day)
		}
	}

	if mode == Recompute {
		for _, rec := range l.records {
			if _, ok := counts[rec.ProgressDate]; !ok && rec.TasksCompleted != 0 {
				rec.TasksCompleted = 0
				report.Reset = append(report.Reset, rec.ProgressDate)
			}
		}
	}
	return report
}
