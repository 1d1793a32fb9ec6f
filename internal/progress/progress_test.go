package progress

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/lazypower/kaizen/internal/civil"
	"github.com/lazypower/kaizen/internal/taxonomy"
)

type fakeSource []HistoryEntry

func (f fakeSource) ProgressHistory() []HistoryEntry { return f }

func entry(ts string, p int) HistoryEntry {
	return HistoryEntry{Timestamp: ts, Description: "update", Progress: p}
}

func day(s string) civil.Date { return civil.MustParse(s) }

func TestHistoryEntryJSON(t *testing.T) {
	in := HistoryEntry{Timestamp: "2024-03-01 10:00:00", Description: "done", Progress: 100}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `["2024-03-01 10:00:00","done",100]` {
		t.Errorf("json = %s", data)
	}

	var out HistoryEntry
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Errorf("got %+v", out)
	}

	if err := json.Unmarshal([]byte(`["2024-03-01", 5]`), &out); err == nil {
		t.Error("two-element entry should fail")
	}
}

func TestHistoryEntryDate(t *testing.T) {
	d, err := entry("2024-03-01 23:59:59", 0).Date()
	if err != nil || d != day("2024-03-01") {
		t.Errorf("Date = %v, %v", d, err)
	}
	if _, err := entry("yesterday", 0).Date(); err == nil {
		t.Error("expected error for bad timestamp")
	}
}

func TestCountDeduplicatesPerSource(t *testing.T) {
	task := fakeSource{
		entry("2024-03-01 09:00:00", 100),
		entry("2024-03-01 18:00:00", 100),
		entry("2024-03-01 12:00:00", 50),
	}
	counts := Count([]Source{task})
	if counts[day("2024-03-01")] != 1 {
		t.Errorf("Count = %v, want exactly one completion", counts)
	}
	raw := CountRaw([]Source{task})
	if raw[day("2024-03-01")] != 2 {
		t.Errorf("CountRaw = %v, want 2", raw)
	}
}

func TestCountSkipsBadTimestamps(t *testing.T) {
	task := fakeSource{entry("", 100), entry("garbage", 100), entry("2024-03-02 00:00:00", 100)}
	counts := Count([]Source{task})
	if len(counts) != 1 || counts[day("2024-03-02")] != 1 {
		t.Errorf("Count = %v", counts)
	}
}

func TestSynchronizeRecomputeIsIdempotent(t *testing.T) {
	sources := []Source{
		fakeSource{entry("2024-03-01 09:00:00", 100), entry("2024-03-01 10:00:00", 100)},
		fakeSource{entry("2024-03-01 11:00:00", 100), entry("2024-03-02 08:00:00", 100)},
		fakeSource{entry("2024-03-03 08:00:00", 40)},
	}
	l := NewLedger(nil)

	first := Synchronize(sources, l, Recompute)
	if len(first.Created) != 2 {
		t.Errorf("created = %v", first.Created)
	}
	want := map[civil.Date]int{day("2024-03-01"): 2, day("2024-03-02"): 1}
	assertCounts(t, l, want)

	second := Synchronize(sources, l, Recompute)
	if second.Changed() {
		t.Errorf("second run changed the ledger: %+v", second)
	}
	assertCounts(t, l, want)
}

func TestSynchronizePreservesNotes(t *testing.T) {
	l := NewLedger([]DailyProgress{{
		ProgressDate:   day("2024-03-01"),
		TasksCompleted: 7,
		Notes:          "good day",
		Tags:           taxonomy.TagRefs{{Name: "Go"}},
	}, {
		ProgressDate:   day("2024-02-01"),
		TasksCompleted: 3,
		Notes:          "stale",
	}})
	sources := []Source{fakeSource{entry("2024-03-01 09:00:00", 100)}}

	report := Synchronize(sources, l, Recompute)

	rec, _ := l.Get(day("2024-03-01"))
	if rec.TasksCompleted != 1 || rec.Notes != "good day" || len(rec.Tags) != 1 {
		t.Errorf("2024-03-01 = %+v", rec)
	}
	old, ok := l.Get(day("2024-02-01"))
	if !ok || old.TasksCompleted != 0 || old.Notes != "stale" {
		t.Errorf("2024-02-01 = %+v, %v", old, ok)
	}
	if !reflect.DeepEqual(report.Reset, []civil.Date{day("2024-02-01")}) {
		t.Errorf("Reset = %v", report.Reset)
	}
}

func TestSynchronizeAdditiveDrifts(t *testing.T) {
	sources := []Source{fakeSource{entry("2024-03-01 09:00:00", 100), entry("2024-03-01 10:00:00", 100)}}
	l := NewLedger(nil)

	Synchronize(sources, l, Additive)
	Synchronize(sources, l, Additive)

	rec, _ := l.Get(day("2024-03-01"))
	if rec.TasksCompleted != 4 {
		t.Errorf("TasksCompleted = %d, want 4 after two additive runs", rec.TasksCompleted)
	}
}

func TestLedgerDropsDuplicatesAndUndated(t *testing.T) {
	l := NewLedger([]DailyProgress{
		{ProgressDate: day("2024-01-01"), Notes: "first"},
		{ProgressDate: day("2024-01-01"), Notes: "second"},
		{Notes: "no date"},
	})
	if l.Len() != 1 {
		t.Fatalf("Len = %d, want 1", l.Len())
	}
	rec, _ := l.Get(day("2024-01-01"))
	if rec.Notes != "first" {
		t.Errorf("Notes = %q", rec.Notes)
	}
}

func TestLedgerSetNotesAndSorted(t *testing.T) {
	l := NewLedger(nil)
	l.SetNotes(day("2024-01-02"), "b", nil)
	l.SetNotes(day("2024-01-03"), "c", taxonomy.TagRefs{{Name: "Go"}})
	l.SetNotes(day("2024-01-01"), "a", nil)
	l.SetNotes(day("2024-01-02"), "b2", nil)

	sorted := l.Sorted()
	var got []string
	for _, r := range sorted {
		got = append(got, r.Notes)
	}
	if !reflect.DeepEqual(got, []string{"c", "b2", "a"}) {
		t.Errorf("Sorted notes = %v", got)
	}
}

func TestLedgerRenameTag(t *testing.T) {
	parent := "Go"
	l := NewLedger([]DailyProgress{{
		ProgressDate: day("2024-01-01"),
		Tags:         taxonomy.TagRefs{{Name: "Chan", Parent: &parent}},
	}})
	if !l.RenameTag("Go", "Golang") {
		t.Fatal("RenameTag reported no change")
	}
	rec, _ := l.Get(day("2024-01-01"))
	if *rec.Tags[0].Parent != "Golang" {
		t.Errorf("parent = %q", *rec.Tags[0].Parent)
	}
}

func TestDailyProgressJSON(t *testing.T) {
	raw := `{"progress_date":"2024-01-01","tasks_completed":2,"notes":"n","tags":{"name":"Go","parent":null}}`
	var dp DailyProgress
	if err := json.Unmarshal([]byte(raw), &dp); err != nil {
		t.Fatal(err)
	}
	if len(dp.Tags) != 1 || dp.Tags[0].Name != "Go" {
		t.Errorf("Tags = %+v", dp.Tags)
	}
	data, _ := json.Marshal(dp)
	want := `{"progress_date":"2024-01-01","tasks_completed":2,"notes":"n","tags":[{"name":"Go","parent":null}]}`
	if string(data) != want {
		t.Errorf("json = %s", data)
	}
}

func assertCounts(t *testing.T, l *Ledger, want map[civil.Date]int) {
	t.Helper()
	for d, n := range want {
		rec, ok := l.Get(d)
		if !ok {
			t.Errorf("missing record for %s", d)
			continue
		}
		if rec.TasksCompleted != n {
			t.Errorf("%s TasksCompleted = %d, want %d", d, rec.TasksCompleted, n)
		}
		if rec.Notes != "" || rec.Tags != nil {
			t.Errorf("%s new record should have empty notes/tags: %+v", d, rec)
		}
	}
	if l.Len() != len(want) {
		t.Errorf("Len = %d, want %d", l.Len(), len(want))
	}
}
