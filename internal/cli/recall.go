package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lazypower/kaizen/internal/engine"
)

var studyCount int

var recallCmd = &cobra.Command{
	Use:   "recall",
	Short: "Review due knowledge points and pick new ones to study",
}

func printReviews(w io.Writer, items []engine.Review) {
	for _, it := range items {
		fmt.Fprintf(w, "%s #%d  %s\n", strings.Join(it.Chain, " > "), it.Index, it.Point.Content)
	}
}

var recallDueCmd = &cobra.Command{
	Use:   "due",
	Short: "List points due for recall today",
	Args:  cobra.NoArgs,
	RunE: withEngine(func(cmd *cobra.Command, eng *engine.Engine, args []string) error {
		due := eng.DueToday()
		if len(due) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Nothing due on %s.\n", eng.Today())
			return nil
		}
		printReviews(cmd.OutOrStdout(), due)
		return nil
	}),
}

var recallStudyCmd = &cobra.Command{
	Use:   "study",
	Short: "Pick a random sample of unlearned points",
	Args:  cobra.NoArgs,
	RunE: withEngine(func(cmd *cobra.Command, eng *engine.Engine, args []string) error {
		if studyCount < 0 {
			return fmt.Errorf("--count must not be negative")
		}
		items := eng.DailyStudy(studyCount)
		if len(items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Every knowledge point has been learned.")
			return nil
		}
		printReviews(cmd.OutOrStdout(), items)
		return nil
	}),
}

var recallLearnCmd = &cobra.Command{
	Use:   "learn <tag> <index>",
	Short: "Start learning a point; its first review is tomorrow",
	Args:  cobra.ExactArgs(2),
	RunE: withEngine(func(cmd *cobra.Command, eng *engine.Engine, args []string) error {
		idx, err := parseIndex(args[1])
		if err != nil {
			return err
		}
		p, err := eng.StartLearning(args[0], idx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "learning %q, next recall %v\n", p.Content, p.NextRecall)
		return nil
	}),
}

var recallDoneCmd = &cobra.Command{
	Use:   "done <tag> <index>",
	Short: "Record a successful recall",
	Args:  cobra.ExactArgs(2),
	RunE: withEngine(func(cmd *cobra.Command, eng *engine.Engine, args []string) error {
		idx, err := parseIndex(args[1])
		if err != nil {
			return err
		}
		p, err := eng.MarkRecalled(args[0], idx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "recalled %q, next recall %v\n", p.Content, p.NextRecall)
		return nil
	}),
}

func init() {
	recallStudyCmd.Flags().IntVarP(&studyCount, "count", "n", 0, "Number of points (default: configured daily sample)")

	recallCmd.AddCommand(recallDueCmd)
	recallCmd.AddCommand(recallStudyCmd)
	recallCmd.AddCommand(recallLearnCmd)
	recallCmd.AddCommand(recallDoneCmd)
}
