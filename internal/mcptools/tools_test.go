package mcptools

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lazypower/kaizen/internal/engine"
	"github.com/lazypower/kaizen/internal/store"
)

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	eng := engine.New(db, engine.Options{})
	if err := eng.AddAbility("Go", ""); err != nil {
		t.Fatal(err)
	}
	if err := eng.AddAbility("Generics", "Go"); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.AddPoint("Generics", "type sets"); err != nil {
		t.Fatal(err)
	}
	return eng
}

// makeReq builds a mcp.CallToolRequest with the given arguments.
func makeReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// resultText extracts the text content from a tool result.
func resultText(r *mcp.CallToolResult) string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestTreeTool(t *testing.T) {
	tool := NewTreeTool(newTestEngine(t))
	if tool.Definition().Name != "ability_tree" {
		t.Errorf("name = %q", tool.Definition().Name)
	}

	r, err := tool.Handle(context.Background(), makeReq(nil))
	if err != nil {
		t.Fatal(err)
	}
	want := "- Go (0/0 learned)\n  - Generics (0/1 learned)\n"
	if got := resultText(r); got != want {
		t.Errorf("tree = %q, want %q", got, want)
	}

	r, _ = tool.Handle(context.Background(), makeReq(map[string]interface{}{"search": "rust"}))
	if !strings.Contains(resultText(r), "No abilities") {
		t.Errorf("filtered tree = %q", resultText(r))
	}

	r, _ = tool.Handle(context.Background(), makeReq(map[string]interface{}{"tag": "Generics"}))
	if got := resultText(r); !strings.HasPrefix(got, "Go > Generics\n0. type sets [new]") {
		t.Errorf("tag detail = %q", got)
	}

	r, _ = tool.Handle(context.Background(), makeReq(map[string]interface{}{"tag": "Nope"}))
	if !r.IsError {
		t.Error("unknown tag should be a tool error")
	}
}

func TestMarkToolRequiresArgs(t *testing.T) {
	tool := NewMarkTool(newTestEngine(t))
	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing tag", map[string]interface{}{"index": float64(0), "action": "learn"}},
		{"missing index", map[string]interface{}{"tag": "Generics", "action": "learn"}},
		{"bad action", map[string]interface{}{"tag": "Generics", "index": float64(0), "action": "forget"}},
		{"not learned", map[string]interface{}{"tag": "Generics", "index": float64(0), "action": "recalled"}},
		{"bad index", map[string]interface{}{"tag": "Generics", "index": float64(7), "action": "learn"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := tool.Handle(context.Background(), makeReq(tt.args))
			if err != nil {
				t.Fatal(err)
			}
			if !r.IsError {
				t.Errorf("expected tool error, got %q", resultText(r))
			}
		})
	}
}

func TestLearnThenStudyAndDue(t *testing.T) {
	eng := newTestEngine(t)
	study := NewStudyTool(eng)
	mark := NewMarkTool(eng)
	due := NewDueTool(eng)

	r, _ := study.Handle(context.Background(), makeReq(map[string]interface{}{"count": float64(3)}))
	if !strings.Contains(resultText(r), "[Go > Generics #0] type sets") {
		t.Errorf("study = %q", resultText(r))
	}

	r, _ = mark.Handle(context.Background(), makeReq(map[string]interface{}{"tag": "Generics", "index": float64(0), "action": "learn"}))
	if r.IsError || !strings.Contains(resultText(r), "next recall") {
		t.Fatalf("learn = %q", resultText(r))
	}

	r, _ = study.Handle(context.Background(), makeReq(nil))
	if !strings.Contains(resultText(r), "Every knowledge point") {
		t.Errorf("study after learning = %q", resultText(r))
	}
	r, _ = due.Handle(context.Background(), makeReq(nil))
	if !strings.HasPrefix(resultText(r), "Nothing due") {
		t.Errorf("due = %q", resultText(r))
	}

	r, _ = study.Handle(context.Background(), makeReq(map[string]interface{}{"count": float64(-2)}))
	if !r.IsError {
		t.Error("negative count should be a tool error")
	}
}

func TestSyncTool(t *testing.T) {
	eng := newTestEngine(t)
	tool := NewSyncTool(eng)

	r, _ := tool.Handle(context.Background(), makeReq(nil))
	if !strings.Contains(resultText(r), "up to date") {
		t.Errorf("empty sync = %q", resultText(r))
	}

	eng.AddTask("t", eng.Today(), nil)
	eng.RecordProgress("t", "done", 100)
	r, _ = tool.Handle(context.Background(), makeReq(nil))
	if got := resultText(r); got != "Synced (recompute): 1 created, 0 updated, 0 reset." {
		t.Errorf("sync = %q", got)
	}
	if recs := eng.DailyProgress(); len(recs) != 1 || recs[0].TasksCompleted != 1 {
		t.Errorf("ledger = %+v", recs)
	}
}

func TestNewServerRegistersTools(t *testing.T) {
	s := NewServer(newTestEngine(t), "test")
	if s == nil {
		t.Fatal("NewServer returned nil")
	}
}
