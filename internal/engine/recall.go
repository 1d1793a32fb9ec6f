package engine

import (
	"github.com/lazypower/kaizen/internal/civil"
	"github.com/lazypower/kaizen/internal/recall"
	"github.com/lazypower/kaizen/internal/taxonomy"
)

// Review is a knowledge point offered for study or recall, with the path
// of tag names leading to it.
type Review struct {
	Tag   string                  `json:"tag"`
	Index int                     `json:"index"`
	Chain []string                `json:"chain"`
	Point taxonomy.KnowledgePoint `json:"point"`
}

func (e *Engine) reviews(items []recall.Item) []Review {
	out := make([]Review, 0, len(items))
	for _, it := range items {
		chain, _ := e.tax.AncestorChain(it.Tag)
		out = append(out, Review{Tag: it.Tag, Index: it.Index, Chain: chain, Point: *it.Point})
	}
	return out
}

// DueToday lists learned points whose next recall is today or earlier.
func (e *Engine) DueToday() []Review {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reviews(e.sched.DueToday(e.tax, e.Today()))
}

// DailyStudy samples up to count unlearned points; count <= 0 uses the
// configured daily sample.
func (e *Engine) DailyStudy(count int) []Review {
	e.mu.Lock()
	defer e.mu.Unlock()
	if count <= 0 {
		count = e.sched.DailySample()
	}
	return e.reviews(e.sched.SampleUnlearned(e.tax, count, e.rng))
}

// StartLearning marks a point learned today and returns its new state.
func (e *Engine) StartLearning(tag string, index int) (taxonomy.KnowledgePoint, error) {
	return e.updatePoint(tag, index, e.sched.StartLearning)
}

// MarkRecalled records a review today and returns the point's new state.
func (e *Engine) MarkRecalled(tag string, index int) (taxonomy.KnowledgePoint, error) {
	return e.updatePoint(tag, index, e.sched.MarkRecalled)
}

func (e *Engine) updatePoint(tag string, index int, fn func(*taxonomy.KnowledgePoint, civil.Date) error) (taxonomy.KnowledgePoint, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	today := e.Today()
	var out taxonomy.KnowledgePoint
	err := e.mutateTaxonomy(func(tax *taxonomy.Taxonomy) error {
		p, err := tax.Point(tag, index)
		if err != nil {
			return err
		}
		if err := fn(p, today); err != nil {
			return err
		}
		out = *p
		return nil
	})
	return out, err
}
