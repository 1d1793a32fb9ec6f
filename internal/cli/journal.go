package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lazypower/kaizen/internal/civil"
	"github.com/lazypower/kaizen/internal/engine"
)

var (
	diaryDate     string
	diaryCategory string
	diaryTags     []string
	diaryLinks    []string
	summaryDate   string
)

// --- diary ---

var diaryCmd = &cobra.Command{
	Use:   "diary",
	Short: "One journal entry per day",
}

var diaryAddCmd = &cobra.Command{
	Use:   "add <text...>",
	Short: "Write the entry for a day (default today)",
	Args:  cobra.MinimumNArgs(1),
	RunE: withEngine(func(cmd *cobra.Command, eng *engine.Engine, args []string) error {
		day, err := parseOptionalDate(diaryDate)
		if err != nil {
			return err
		}
		entry, err := eng.AddDiaryEntry(day, strings.Join(args, " "), diaryCategory, diaryTags, diaryLinks)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "diary %s saved\n", entry.EntryDate)
		return nil
	}),
}

var diaryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List entries, newest first",
	Args:  cobra.NoArgs,
	RunE: withEngine(func(cmd *cobra.Command, eng *engine.Engine, args []string) error {
		out := cmd.OutOrStdout()
		for _, d := range eng.Diary() {
			line := d.Summary
			if i := strings.IndexByte(line, '\n'); i >= 0 {
				line = line[:i]
			}
			if d.Category != "" {
				fmt.Fprintf(out, "%s  (%s) %s\n", d.EntryDate, d.Category, line)
				continue
			}
			fmt.Fprintf(out, "%s  %s\n", d.EntryDate, line)
		}
		return nil
	}),
}

var diaryShowCmd = &cobra.Command{
	Use:   "show <date>",
	Short: "Print one entry",
	Args:  cobra.ExactArgs(1),
	RunE: withEngine(func(cmd *cobra.Command, eng *engine.Engine, args []string) error {
		day, err := civil.Parse(args[0])
		if err != nil {
			return err
		}
		d, err := eng.DiaryEntry(day)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, d.EntryDate)
		if d.Category != "" {
			fmt.Fprintf(out, "category: %s\n", d.Category)
		}
		if len(d.Tags) > 0 {
			fmt.Fprintf(out, "tags: %s\n", strings.Join(d.Tags.Names(), ", "))
		}
		for _, l := range d.Links {
			fmt.Fprintf(out, "link: %s\n", l)
		}
		fmt.Fprintf(out, "\n%s\n", d.Summary)
		return nil
	}),
}

var diaryRemoveCmd = &cobra.Command{
	Use:     "rm <date>",
	Aliases: []string{"remove"},
	Short:   "Delete the entry for a day",
	Args:    cobra.ExactArgs(1),
	RunE: withEngine(func(cmd *cobra.Command, eng *engine.Engine, args []string) error {
		day, err := civil.Parse(args[0])
		if err != nil {
			return err
		}
		return eng.RemoveDiaryEntry(day)
	}),
}

// --- summaries ---

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Periodic summaries",
}

var summaryAddCmd = &cobra.Command{
	Use:   "add <title> <content...>",
	Short: "Add a summary dated --date (default today)",
	Args:  cobra.MinimumNArgs(2),
	RunE: withEngine(func(cmd *cobra.Command, eng *engine.Engine, args []string) error {
		day, err := parseOptionalDate(summaryDate)
		if err != nil {
			return err
		}
		s, err := eng.AddSummary(args[0], strings.Join(args[1:], " "), day)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "summary %q dated %s\n", s.Title, s.SummaryDate)
		return nil
	}),
}

var summaryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List summaries",
	Args:  cobra.NoArgs,
	RunE: withEngine(func(cmd *cobra.Command, eng *engine.Engine, args []string) error {
		for i, s := range eng.Summaries() {
			fmt.Fprintf(cmd.OutOrStdout(), "%d. %s  %s\n", i, s.SummaryDate, s.Title)
		}
		return nil
	}),
}

var summaryRemoveCmd = &cobra.Command{
	Use:     "rm <index>",
	Aliases: []string{"remove"},
	Short:   "Delete a summary",
	Args:    cobra.ExactArgs(1),
	RunE: withEngine(func(cmd *cobra.Command, eng *engine.Engine, args []string) error {
		idx, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		return eng.RemoveSummary(idx)
	}),
}

func init() {
	diaryAddCmd.Flags().StringVar(&diaryDate, "date", "", "Day as YYYY-MM-DD (default today)")
	diaryAddCmd.Flags().StringVarP(&diaryCategory, "category", "c", "", "Free-form category")
	diaryAddCmd.Flags().StringSliceVarP(&diaryTags, "tag", "t", nil, "Ability tag (repeatable)")
	diaryAddCmd.Flags().StringSliceVarP(&diaryLinks, "link", "l", nil, "Related URL (repeatable)")
	summaryAddCmd.Flags().StringVar(&summaryDate, "date", "", "Day as YYYY-MM-DD (default today)")

	diaryCmd.AddCommand(diaryAddCmd)
	diaryCmd.AddCommand(diaryListCmd)
	diaryCmd.AddCommand(diaryShowCmd)
	diaryCmd.AddCommand(diaryRemoveCmd)

	summaryCmd.AddCommand(summaryAddCmd)
	summaryCmd.AddCommand(summaryListCmd)
	summaryCmd.AddCommand(summaryRemoveCmd)
}
