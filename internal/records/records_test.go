package records

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/lazypower/kaizen/internal/civil"
	"github.com/lazypower/kaizen/internal/progress"
	"github.com/lazypower/kaizen/internal/taxonomy"
)

func TestTaskLegacyAbility(t *testing.T) {
	raw := `{"name":"write parser","due_date":"2024-04-01","ability":{"name":"Go","parent":null},
		"progress":100,"progress_history":[["2024-03-30 10:00:00","done",100]]}`
	var task Task
	if err := json.Unmarshal([]byte(raw), &task); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(task.Abilities) != 1 || task.Abilities[0].Name != "Go" {
		t.Errorf("Abilities = %+v", task.Abilities)
	}
	if len(task.History) != 1 || task.History[0].Progress != 100 {
		t.Errorf("History = %+v", task.History)
	}

	data, _ := json.Marshal(task)
	var generic map[string]any
	json.Unmarshal(data, &generic)
	if _, ok := generic["ability"]; ok {
		t.Error("legacy ability field should not be written back")
	}
	if _, ok := generic["abilities"]; !ok {
		t.Error("abilities field missing")
	}
}

func TestTaskAbilitiesObjectForm(t *testing.T) {
	raw := `{"name":"t","due_date":"2024-04-01","abilities":{"name":"Go"}}`
	var task Task
	if err := json.Unmarshal([]byte(raw), &task); err != nil {
		t.Fatal(err)
	}
	if len(task.Abilities) != 1 {
		t.Errorf("Abilities = %+v", task.Abilities)
	}
	if task.History == nil {
		t.Error("History should default to empty, not nil")
	}
}

func TestProjectInterestOmitted(t *testing.T) {
	data, _ := json.Marshal(Project{Name: "p"})
	var generic map[string]any
	json.Unmarshal(data, &generic)
	if _, ok := generic["interest"]; ok {
		t.Error("nil interest should be omitted")
	}
}

func TestSourcesFeedSynchronize(t *testing.T) {
	tasks := []Task{{Name: "a", History: []progress.HistoryEntry{{Timestamp: "2024-03-01 09:00:00", Progress: 100}}}}
	projects := []Project{{Name: "b", History: []progress.HistoryEntry{{Timestamp: "2024-03-01 19:00:00", Progress: 100}}}}

	l := progress.NewLedger(nil)
	progress.Synchronize(Sources(tasks, projects), l, progress.Recompute)
	rec, ok := l.Get(civil.MustParse("2024-03-01"))
	if !ok || rec.TasksCompleted != 2 {
		t.Errorf("record = %+v, %v", rec, ok)
	}
}

func TestNewTaskAndRecord(t *testing.T) {
	task, err := NewTask(nil, "  read book ", civil.MustParse("2024-05-01"))
	if err != nil {
		t.Fatal(err)
	}
	if task.Name != "read book" || task.DueDate != "2024-05-01" {
		t.Errorf("task = %+v", task)
	}
	if _, err := NewTask([]Task{task}, "read book", civil.Date{}); !errors.Is(err, ErrDuplicateTask) {
		t.Errorf("duplicate = %v", err)
	}
	if _, err := NewTask(nil, "", civil.Date{}); !errors.Is(err, ErrEmptyText) {
		t.Errorf("empty = %v", err)
	}

	if err := task.Record("2024-04-01 08:00:00", "half", 50); err != nil {
		t.Fatal(err)
	}
	if err := task.Record("2024-04-01 08:00:00", "bad", 101); !errors.Is(err, ErrProgress) {
		t.Errorf("Record(101) = %v", err)
	}
	if task.Progress != 50 || len(task.History) != 1 {
		t.Errorf("task = %+v", task)
	}
}

func TestRenameAndResolve(t *testing.T) {
	tax := taxonomy.New()
	tax.Add("Go", "")
	tax.Add("Chan", "Go")
	refs, _ := tax.RefsTo("Chan")

	tasks := []Task{{Name: "t", Abilities: refs}}
	if !RenameTaskAbility(tasks, "Go", "Golang") {
		t.Error("RenameTaskAbility reported no change")
	}
	if *tasks[0].Abilities[0].Parent != "Golang" {
		t.Errorf("parent = %q", *tasks[0].Abilities[0].Parent)
	}

	projects := []Project{{Name: "p", Abilities: taxonomy.TagRefs{{Name: "Chan"}}}}
	ResolveAbilities(projects, tax)
	if projects[0].Abilities[0].Parent == nil || *projects[0].Abilities[0].Parent != "Go" {
		t.Errorf("resolved = %+v", projects[0].Abilities[0])
	}
	if RenameProjectAbility(projects, "nothing", "x") {
		t.Error("unrelated rename reported change")
	}
}

func TestDiaryEntryDecodeFillsLists(t *testing.T) {
	var d DiaryEntry
	if err := json.Unmarshal([]byte(`{"entry_date":"2024-03-05","summary":"s","tags":{"name":"Go"}}`), &d); err != nil {
		t.Fatal(err)
	}
	if len(d.Tags) != 1 || d.Tags[0].Name != "Go" {
		t.Errorf("Tags = %+v", d.Tags)
	}
	if d.Links == nil {
		t.Error("Links should decode as empty, not nil")
	}
	data, _ := json.Marshal(d)
	var generic map[string]any
	json.Unmarshal(data, &generic)
	if links, ok := generic["links"].([]any); !ok || len(links) != 0 {
		t.Errorf("links encoded as %v", generic["links"])
	}
}

func TestNewDiaryEntry(t *testing.T) {
	day := civil.MustParse("2024-03-05")
	d, err := NewDiaryEntry(nil, day, "  notes  ", " work ", []string{"", " a ", "b"})
	if err != nil {
		t.Fatal(err)
	}
	if d.Summary != "notes" || d.Category != "work" || len(d.Links) != 2 || d.Links[0] != "a" {
		t.Errorf("entry = %+v", d)
	}
	if _, err := NewDiaryEntry([]DiaryEntry{d}, day, "x", "", nil); !errors.Is(err, ErrDuplicateDay) {
		t.Errorf("duplicate = %v", err)
	}
	if _, err := NewDiaryEntry(nil, day, " ", "", nil); !errors.Is(err, ErrEmptyText) {
		t.Errorf("empty = %v", err)
	}
	if FindDiary([]DiaryEntry{d}, civil.MustParse("2024-03-06")) != -1 {
		t.Error("FindDiary matched the wrong day")
	}
}

func TestNewSummary(t *testing.T) {
	s, err := NewSummary(" Q1 ", "done", civil.MustParse("2024-03-31"))
	if err != nil || s.Title != "Q1" || s.SummaryDate != "2024-03-31" {
		t.Errorf("summary = %+v, %v", s, err)
	}
	for _, c := range [][2]string{{"", "x"}, {"x", " "}} {
		if _, err := NewSummary(c[0], c[1], civil.Date{}); !errors.Is(err, ErrEmptyText) {
			t.Errorf("NewSummary(%q, %q) = %v", c[0], c[1], err)
		}
	}
}
