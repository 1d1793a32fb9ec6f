package recall

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/lazypower/kaizen/internal/civil"
	"github.com/lazypower/kaizen/internal/taxonomy"
)

func date(s string) civil.Date { return civil.MustParse(s) }

func learnedPoint(last, next string) *taxonomy.KnowledgePoint {
	return &taxonomy.KnowledgePoint{
		Content:    "p",
		Learned:    true,
		LastRecall: civil.Ptr(date(last)),
		NextRecall: civil.Ptr(date(next)),
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"defaults", Config{}, true},
		{"custom", Config{Ladder: []int{1, 3, 9}, DailySample: 3}, true},
		{"empty ladder", Config{Ladder: []int{}}, false},
		{"not ascending", Config{Ladder: []int{1, 4, 2}}, false},
		{"zero step", Config{Ladder: []int{0, 1}}, false},
		{"negative sample", Config{DailySample: -1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			if (err == nil) != tt.ok {
				t.Errorf("New(%+v) err = %v, want ok=%v", tt.cfg, err, tt.ok)
			}
		})
	}
}

func TestInterval(t *testing.T) {
	s := Default()
	tests := []struct {
		days, want int
	}{
		{-3, 1},
		{0, 1},
		{1, 2},
		{3, 4},
		{7, 15},
		{10, 15},
		{15, 30},
		{89, 90},
		{90, 90},
		{1000, 90},
	}
	for _, tt := range tests {
		if got := s.Interval(tt.days); got != tt.want {
			t.Errorf("Interval(%d) = %d, want %d", tt.days, got, tt.want)
		}
	}
}

func TestMarkRecalledSameDay(t *testing.T) {
	s := Default()
	p := learnedPoint("2024-01-01", "2024-01-01")
	if err := s.MarkRecalled(p, date("2024-01-01")); err != nil {
		t.Fatal(err)
	}
	if p.NextRecall.String() != "2024-01-02" {
		t.Errorf("next = %s, want 2024-01-02", p.NextRecall)
	}
	if p.LastRecall.String() != "2024-01-01" {
		t.Errorf("last = %s", p.LastRecall)
	}
	if p.RecallCount != 1 {
		t.Errorf("RecallCount = %d", p.RecallCount)
	}
}

func TestMarkRecalledTenDays(t *testing.T) {
	s := Default()
	p := learnedPoint("2024-01-01", "2024-01-08")
	if err := s.MarkRecalled(p, date("2024-01-11")); err != nil {
		t.Fatal(err)
	}
	if want := "2024-01-26"; p.NextRecall.String() != want {
		t.Errorf("next = %s, want %s (15 days)", p.NextRecall, want)
	}
	if p.LastRecall.String() != "2024-01-11" {
		t.Errorf("last = %s", p.LastRecall)
	}
}

func TestMarkRecalledClampsAtPlateau(t *testing.T) {
	s := Default()
	p := learnedPoint("2020-01-01", "2020-04-01")
	today := date("2020-01-01").AddDays(1000)
	if err := s.MarkRecalled(p, today); err != nil {
		t.Fatal(err)
	}
	if got := p.NextRecall.DaysSince(today); got != 90 {
		t.Errorf("interval = %d, want 90", got)
	}
}

func TestMarkRecalledWithoutLastRecall(t *testing.T) {
	s := Default()
	p := &taxonomy.KnowledgePoint{Content: "p", Learned: true}
	if err := s.MarkRecalled(p, date("2024-06-01")); err != nil {
		t.Fatal(err)
	}
	if p.NextRecall.String() != "2024-06-02" {
		t.Errorf("next = %s", p.NextRecall)
	}
}

func TestMarkRecalledRequiresLearned(t *testing.T) {
	s := Default()
	p := &taxonomy.KnowledgePoint{Content: "p"}
	if err := s.MarkRecalled(p, date("2024-06-01")); !errors.Is(err, ErrNotLearned) {
		t.Errorf("err = %v, want ErrNotLearned", err)
	}
	if p.LastRecall != nil || p.NextRecall != nil {
		t.Error("failed call mutated the point")
	}
}

func TestStartLearning(t *testing.T) {
	s := Default()
	p := &taxonomy.KnowledgePoint{Content: "X"}
	if err := s.StartLearning(p, date("2024-02-28")); err != nil {
		t.Fatal(err)
	}
	if !p.Learned {
		t.Error("Learned = false")
	}
	if p.LastRecall.String() != "2024-02-28" || p.NextRecall.String() != "2024-02-29" {
		t.Errorf("last %s next %s", p.LastRecall, p.NextRecall)
	}

	err := s.StartLearning(p, date("2024-03-05"))
	if !errors.Is(err, ErrAlreadyLearned) {
		t.Errorf("second StartLearning = %v, want ErrAlreadyLearned", err)
	}
	if p.NextRecall.String() != "2024-02-29" {
		t.Error("rejected StartLearning rescheduled the point")
	}
}

func sampleTaxonomy(t *testing.T) *taxonomy.Taxonomy {
	t.Helper()
	tax := taxonomy.New()
	tax.Add("A", "")
	tax.Add("B", "A")
	for _, c := range []string{"a1", "a2", "a3"} {
		tax.AddPoint("A", c)
	}
	for _, c := range []string{"b1", "b2"} {
		tax.AddPoint("B", c)
	}
	return tax
}

func TestDueToday(t *testing.T) {
	s := Default()
	tax := sampleTaxonomy(t)
	today := date("2024-05-10")

	set := func(tag string, i int, learned bool, next string) {
		p, err := tax.Point(tag, i)
		if err != nil {
			t.Fatal(err)
		}
		p.Learned = learned
		if next != "" {
			p.NextRecall = civil.Ptr(date(next))
		}
	}
	set("A", 0, true, "2024-05-10") // due today
	set("A", 1, true, "2024-05-11") // tomorrow
	set("A", 2, false, "2024-01-01") // unlearned
	set("B", 0, true, "2023-12-31") // overdue
	set("B", 1, true, "")           // no schedule

	due := s.DueToday(tax, today)
	if len(due) != 2 {
		t.Fatalf("len(due) = %d, want 2: %+v", len(due), due)
	}
	if due[0].Tag != "A" || due[0].Point.Content != "a1" || due[0].Index != 0 {
		t.Errorf("due[0] = %+v", due[0])
	}
	if due[1].Tag != "B" || due[1].Point.Content != "b1" {
		t.Errorf("due[1] = %+v", due[1])
	}
}

func TestSampleUnlearned(t *testing.T) {
	s := Default()
	tax := sampleTaxonomy(t)
	p, _ := tax.Point("A", 1)
	p.Learned = true

	all := s.SampleUnlearned(tax, 100, rand.New(rand.NewSource(1)))
	if len(all) != 4 {
		t.Fatalf("len = %d, want 4", len(all))
	}
	seen := map[string]bool{}
	for _, it := range all {
		if it.Point.Learned {
			t.Errorf("learned point sampled: %+v", it)
		}
		if seen[it.Point.Content] {
			t.Errorf("duplicate %s", it.Point.Content)
		}
		seen[it.Point.Content] = true
	}

	two := s.SampleUnlearned(tax, 2, rand.New(rand.NewSource(1)))
	if len(two) != 2 {
		t.Errorf("len = %d, want 2", len(two))
	}
}

func TestSampleUnlearnedSeeded(t *testing.T) {
	s := Default()
	tax := sampleTaxonomy(t)

	a := s.SampleUnlearned(tax, 3, rand.New(rand.NewSource(42)))
	b := s.SampleUnlearned(tax, 3, rand.New(rand.NewSource(42)))
	for i := range a {
		if a[i].Point != b[i].Point {
			t.Fatalf("same seed gave different samples at %d", i)
		}
	}
}

func TestSampleUnlearnedCountIsLiteral(t *testing.T) {
	s, err := New(Config{DailySample: 3})
	if err != nil {
		t.Fatal(err)
	}
	tax := sampleTaxonomy(t)
	for _, count := range []int{0, -1} {
		if got := s.SampleUnlearned(tax, count, rand.New(rand.NewSource(1))); len(got) != 0 {
			t.Errorf("SampleUnlearned(%d) = %d items, want none", count, len(got))
		}
	}
	if got := len(s.SampleUnlearned(tax, s.DailySample(), nil)); got != 3 {
		t.Errorf("len = %d, want 3", got)
	}
}
