// Package mcptools exposes the engine's tree, recall and progress
// operations as MCP tools.
package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lazypower/kaizen/internal/engine"
)

// TreeTool handles the ability_tree MCP tool.
type TreeTool struct {
	eng *engine.Engine
}

func NewTreeTool(eng *engine.Engine) *TreeTool { return &TreeTool{eng: eng} }

// Definition returns the MCP tool definition for ability_tree.
func (t *TreeTool) Definition() mcp.Tool {
	return mcp.NewTool("ability_tree",
		mcp.WithDescription(
			"Show the ability taxonomy as an indented tree with learned/total knowledge point counts. "+
				"With a search term, only branches containing a matching tag name are shown.",
		),
		mcp.WithString("search",
			mcp.Description("Case-insensitive substring to filter tag names by"),
		),
		mcp.WithString("tag",
			mcp.Description("Show the root-to-tag chain and knowledge points of this tag instead of the tree"),
		),
	)
}

// Handle processes the ability_tree tool call.
func (t *TreeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if name := req.GetString("tag", ""); name != "" {
		d, err := t.eng.Tag(name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%s\n", strings.Join(d.Chain, " > "))
		for i, p := range d.Points {
			state := "new"
			if p.Learned {
				state = fmt.Sprintf("next %v", p.NextRecall)
			}
			fmt.Fprintf(&b, "%d. %s [%s]\n", i, p.Content, state)
		}
		return mcp.NewToolResultText(b.String()), nil
	}

	nodes := t.eng.Tree(req.GetString("search", ""))
	if len(nodes) == 0 {
		return mcp.NewToolResultText("No abilities found."), nil
	}
	var b strings.Builder
	writeTree(&b, nodes, 0)
	return mcp.NewToolResultText(b.String()), nil
}

// DueTool handles the recall_due MCP tool.
type DueTool struct {
	eng *engine.Engine
}

func NewDueTool(eng *engine.Engine) *DueTool { return &DueTool{eng: eng} }

// Definition returns the MCP tool definition for recall_due.
func (t *DueTool) Definition() mcp.Tool {
	return mcp.NewTool("recall_due",
		mcp.WithDescription("List learned knowledge points whose next recall date is today or earlier."),
	)
}

// Handle processes the recall_due tool call.
func (t *DueTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	due := t.eng.DueToday()
	if len(due) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("Nothing due on %s.", t.eng.Today())), nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d due on %s:\n", len(due), t.eng.Today())
	writeReviews(&b, due)
	return mcp.NewToolResultText(b.String()), nil
}

// StudyTool handles the study_sample MCP tool.
type StudyTool struct {
	eng *engine.Engine
}

func NewStudyTool(eng *engine.Engine) *StudyTool { return &StudyTool{eng: eng} }

// Definition returns the MCP tool definition for study_sample.
func (t *StudyTool) Definition() mcp.Tool {
	return mcp.NewTool("study_sample",
		mcp.WithDescription("Pick a random sample of knowledge points that have not been learned yet."),
		mcp.WithNumber("count",
			mcp.Description("How many points to pick (default: the configured daily sample)"),
		),
	)
}

// Handle processes the study_sample tool call.
func (t *StudyTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	count, _ := intArg(req, "count", 0)
	if count < 0 {
		return mcp.NewToolResultError("'count' must not be negative"), nil
	}
	items := t.eng.DailyStudy(count)
	if len(items) == 0 {
		return mcp.NewToolResultText("Every knowledge point has been learned."), nil
	}
	var b strings.Builder
	writeReviews(&b, items)
	return mcp.NewToolResultText(b.String()), nil
}

// MarkTool handles the recall_mark MCP tool.
type MarkTool struct {
	eng *engine.Engine
}

func NewMarkTool(eng *engine.Engine) *MarkTool { return &MarkTool{eng: eng} }

// Definition returns the MCP tool definition for recall_mark.
func (t *MarkTool) Definition() mcp.Tool {
	return mcp.NewTool("recall_mark",
		mcp.WithDescription(
			"Advance a knowledge point's schedule. 'learn' starts learning an unlearned point; "+
				"'recalled' records a successful review of a learned one.",
		),
		mcp.WithString("tag",
			mcp.Required(),
			mcp.Description("Exact name of the tag owning the point"),
		),
		mcp.WithNumber("index",
			mcp.Required(),
			mcp.Description("Zero-based position of the point within the tag"),
		),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Enum("learn", "recalled"),
			mcp.Description("learn or recalled"),
		),
	)
}

// Handle processes the recall_mark tool call.
func (t *MarkTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tag := req.GetString("tag", "")
	if tag == "" {
		return mcp.NewToolResultError("'tag' is required"), nil
	}
	index, ok := intArg(req, "index", 0)
	if !ok {
		return mcp.NewToolResultError("'index' is required"), nil
	}

	mark := t.eng.MarkRecalled
	switch action := req.GetString("action", ""); action {
	case "learn":
		mark = t.eng.StartLearning
	case "recalled":
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown action %q: want learn or recalled", action)), nil
	}

	p, err := mark(tag, index)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%q: next recall %s (recalled %d times)", p.Content, p.NextRecall, p.RecallCount)), nil
}

// SyncTool handles the progress_sync MCP tool.
type SyncTool struct {
	eng *engine.Engine
}

func NewSyncTool(eng *engine.Engine) *SyncTool { return &SyncTool{eng: eng} }

// Definition returns the MCP tool definition for progress_sync.
func (t *SyncTool) Definition() mcp.Tool {
	return mcp.NewTool("progress_sync",
		mcp.WithDescription("Recount completed tasks and projects per day into the daily progress ledger."),
	)
}

// Handle processes the progress_sync tool call.
func (t *SyncTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := t.eng.SyncDailyProgress()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("sync failed: %v", err)), nil
	}
	if !report.Changed() {
		return mcp.NewToolResultText("Daily progress already up to date."), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Synced (%s): %d created, %d updated, %d reset.",
		t.eng.SyncMode(), len(report.Created), len(report.Updated), len(report.Reset))), nil
}
