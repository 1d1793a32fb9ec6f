// Package recall schedules reviews of learned knowledge points on a fixed
// ladder of day intervals and picks unlearned points for daily study.
package recall

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/lazypower/kaizen/internal/civil"
	"github.com/lazypower/kaizen/internal/taxonomy"
)

// Sentinel errors for the recall package.
var (
	ErrAlreadyLearned = errors.New("recall: knowledge point is already learned")
	ErrNotLearned     = errors.New("recall: knowledge point has not been learned")
	ErrInvalidLadder  = errors.New("recall: ladder must be ascending positive day counts")
)

// DefaultLadder is the review spacing in days.
var DefaultLadder = []int{1, 2, 4, 7, 15, 30, 60, 90}

// DefaultDailySample is how many unlearned points are offered per day.
const DefaultDailySample = 6

// Config configures a Scheduler. Zero values produce the defaults.
type Config struct {
	Ladder      []int `yaml:"ladder"`       // nil → DefaultLadder
	DailySample int   `yaml:"daily_sample"` // zero → DefaultDailySample
}

// Scheduler decides which points are due and advances their schedule.
type Scheduler struct {
	ladder []int
	sample int
}

// New builds a Scheduler from cfg.
func New(cfg Config) (*Scheduler, error) {
	ladder := cfg.Ladder
	if ladder == nil {
		ladder = DefaultLadder
	}
	if len(ladder) == 0 {
		return nil, ErrInvalidLadder
	}
	for i, days := range ladder {
		if days <= 0 || (i > 0 && days <= ladder[i-1]) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidLadder, ladder)
		}
	}
	sample := cfg.DailySample
	if sample == 0 {
		sample = DefaultDailySample
	}
	if sample < 0 {
		return nil, fmt.Errorf("recall: daily sample %d must be positive", sample)
	}
	return &Scheduler{ladder: append([]int(nil), ladder...), sample: sample}, nil
}

// Default returns a Scheduler with the default ladder and sample size.
func Default() *Scheduler {
	s, _ := New(Config{})
	return s
}

// Ladder returns a copy of the interval ladder.
func (s *Scheduler) Ladder() []int { return append([]int(nil), s.ladder...) }

// DailySample returns the default study sample size.
func (s *Scheduler) DailySample() int { return s.sample }

// Item pairs a knowledge point with its owning tag and position.
type Item struct {
	Tag   string
	Index int
	Point *taxonomy.KnowledgePoint
}

// DueToday returns every learned point whose next recall is on or before
// today, in the order the taxonomy walk discovers them.
func (s *Scheduler) DueToday(tax *taxonomy.Taxonomy, today civil.Date) []Item {
	var due []Item
	tax.Walk(func(tag *taxonomy.AbilityTag, i int, p *taxonomy.KnowledgePoint) bool {
		if p.IsDue(today) {
			due = append(due, Item{Tag: tag.Name(), Index: i, Point: p})
		}
		return true
	})
	return due
}

// SampleUnlearned shuffles all unlearned points with rng and returns the
// first count of them, or all of them when fewer exist. count <= 0 yields
// nothing; callers wanting the daily default pass DailySample(). A nil rng
// is seeded from the clock.
func (s *Scheduler) SampleUnlearned(tax *taxonomy.Taxonomy, count int, rng *rand.Rand) []Item {
	if count <= 0 {
		return nil
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	var pool []Item
	tax.Walk(func(tag *taxonomy.AbilityTag, i int, p *taxonomy.KnowledgePoint) bool {
		if !p.Learned {
			pool = append(pool, Item{Tag: tag.Name(), Index: i, Point: p})
		}
		return true
	})
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if len(pool) > count {
		pool = pool[:count]
	}
	return pool
}

// StartLearning marks an unlearned point as learned today with its first
// review tomorrow. Already learned points are rejected rather than
// rescheduled.
func (s *Scheduler) StartLearning(p *taxonomy.KnowledgePoint, today civil.Date) error {
	if p.Learned {
		return fmt.Errorf("%w: %q", ErrAlreadyLearned, p.Content)
	}
	p.Learned = true
	p.LastRecall = civil.Ptr(today)
	p.NextRecall = civil.Ptr(today.AddDays(s.ladder[0]))
	return nil
}

// MarkRecalled records a successful review today and schedules the next
// one from the number of ladder steps covered since the last recall.
func (s *Scheduler) MarkRecalled(p *taxonomy.KnowledgePoint, today civil.Date) error {
	if !p.Learned {
		return fmt.Errorf("%w: %q", ErrNotLearned, p.Content)
	}
	days := 0
	if p.LastRecall != nil {
		days = today.DaysSince(*p.LastRecall)
	}
	p.NextRecall = civil.Ptr(today.AddDays(s.Interval(days)))
	p.LastRecall = civil.Ptr(today)
	p.RecallCount++
	return nil
}

// Interval returns the next spacing in days after a gap of daysSince days:
// the ladder entry at the count of entries <= daysSince, held at the last
// entry once the ladder is exhausted.
func (s *Scheduler) Interval(daysSince int) int {
	idx := 0
	for _, step := range s.ladder {
		if step > daysSince {
			break
		}
		idx++
	}
	if idx >= len(s.ladder) {
		idx = len(s.ladder) - 1
	}
	return s.ladder[idx]
}
