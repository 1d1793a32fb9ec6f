package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lazypower/kaizen/internal/civil"
	"github.com/lazypower/kaizen/internal/engine"
)

var (
	progressLimit int
	noteDate      string
	noteTags      []string
	dueDate       string
	taskAbilities []string
	taskMessage   string
)

func parseOptionalDate(s string) (civil.Date, error) {
	if s == "" {
		return civil.Date{}, nil
	}
	return civil.Parse(s)
}

// --- progress ---

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Daily progress ledger",
}

var progressSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Recount task and project completions into the ledger",
	Args:  cobra.NoArgs,
	RunE: withEngine(func(cmd *cobra.Command, eng *engine.Engine, args []string) error {
		report, err := eng.SyncDailyProgress()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d created, %d updated, %d reset\n",
			eng.SyncMode(), len(report.Created), len(report.Updated), len(report.Reset))
		return nil
	}),
}

var progressListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the ledger, newest first",
	Args:  cobra.NoArgs,
	RunE: withEngine(func(cmd *cobra.Command, eng *engine.Engine, args []string) error {
		recs := eng.DailyProgress()
		if progressLimit > 0 && len(recs) > progressLimit {
			recs = recs[:progressLimit]
		}
		out := cmd.OutOrStdout()
		for _, r := range recs {
			fmt.Fprintf(out, "%s  %3d", r.ProgressDate, r.TasksCompleted)
			if len(r.Tags) > 0 {
				fmt.Fprintf(out, "  [%s]", strings.Join(r.Tags.Names(), ", "))
			}
			if r.Notes != "" {
				fmt.Fprintf(out, "  %s", r.Notes)
			}
			fmt.Fprintln(out)
		}
		return nil
	}),
}

var progressNoteCmd = &cobra.Command{
	Use:   "note <text...>",
	Short: "Set the notes for a day (default today)",
	Args:  cobra.MinimumNArgs(1),
	RunE: withEngine(func(cmd *cobra.Command, eng *engine.Engine, args []string) error {
		day, err := parseOptionalDate(noteDate)
		if err != nil {
			return err
		}
		return eng.SetDailyNotes(day, strings.Join(args, " "), noteTags)
	}),
}

// --- goals ---

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Manage goals",
}

var goalAddCmd = &cobra.Command{
	Use:   "add <text...>",
	Short: "Add a goal",
	Args:  cobra.MinimumNArgs(1),
	RunE: withEngine(func(cmd *cobra.Command, eng *engine.Engine, args []string) error {
		due, err := parseOptionalDate(dueDate)
		if err != nil {
			return err
		}
		return eng.AddGoal(strings.Join(args, " "), due)
	}),
}

var goalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List goals",
	Args:  cobra.NoArgs,
	RunE: withEngine(func(cmd *cobra.Command, eng *engine.Engine, args []string) error {
		for i, g := range eng.Goals() {
			mark := " "
			if g.Completed {
				mark = "x"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d. [%s] %s", i, mark, g.Text)
			if g.DueDate != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " (due %s)", g.DueDate)
			}
			fmt.Fprintln(cmd.OutOrStdout())
		}
		return nil
	}),
}

var goalDoneCmd = &cobra.Command{
	Use:   "done <index>",
	Short: "Mark a goal completed",
	Args:  cobra.ExactArgs(1),
	RunE: withEngine(func(cmd *cobra.Command, eng *engine.Engine, args []string) error {
		idx, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		return eng.CompleteGoal(idx)
	}),
}

var goalRemoveCmd = &cobra.Command{
	Use:     "rm <index>",
	Aliases: []string{"remove"},
	Short:   "Remove a goal",
	Args:    cobra.ExactArgs(1),
	RunE: withEngine(func(cmd *cobra.Command, eng *engine.Engine, args []string) error {
		idx, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		return eng.RemoveGoal(idx)
	}),
}

// --- tasks ---

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Add tasks and log their progress",
}

var taskAddCmd = &cobra.Command{
	Use:   "add <name...>",
	Short: "Add a task",
	Args:  cobra.MinimumNArgs(1),
	RunE: withEngine(func(cmd *cobra.Command, eng *engine.Engine, args []string) error {
		due, err := parseOptionalDate(dueDate)
		if err != nil {
			return err
		}
		task, err := eng.AddTask(strings.Join(args, " "), due, taskAbilities)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added task %s\n", task.Name)
		return nil
	}),
}

var taskLogCmd = &cobra.Command{
	Use:   "log <name> <progress>",
	Short: "Record task progress (0-100); 100 counts as a completion",
	Args:  cobra.ExactArgs(2),
	RunE: withEngine(func(cmd *cobra.Command, eng *engine.Engine, args []string) error {
		value, err := parseIndex(args[1])
		if err != nil {
			return err
		}
		task, err := eng.RecordProgress(args[0], taskMessage, value)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d%%\n", task.Name, task.Progress)
		return nil
	}),
}

func init() {
	progressListCmd.Flags().IntVarP(&progressLimit, "limit", "n", 0, "Show at most n days")
	progressNoteCmd.Flags().StringVar(&noteDate, "date", "", "Day as YYYY-MM-DD (default today)")
	progressNoteCmd.Flags().StringSliceVarP(&noteTags, "tag", "t", nil, "Ability tag to attach (repeatable)")
	goalAddCmd.Flags().StringVar(&dueDate, "due", "", "Due date as YYYY-MM-DD")
	taskAddCmd.Flags().StringVar(&dueDate, "due", "", "Due date as YYYY-MM-DD")
	taskAddCmd.Flags().StringSliceVarP(&taskAbilities, "ability", "a", nil, "Ability tag exercised by the task (repeatable)")
	taskLogCmd.Flags().StringVarP(&taskMessage, "message", "m", "", "Progress description")

	progressCmd.AddCommand(progressSyncCmd)
	progressCmd.AddCommand(progressListCmd)
	progressCmd.AddCommand(progressNoteCmd)

	goalCmd.AddCommand(goalAddCmd)
	goalCmd.AddCommand(goalListCmd)
	goalCmd.AddCommand(goalDoneCmd)
	goalCmd.AddCommand(goalRemoveCmd)

	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskLogCmd)
}
