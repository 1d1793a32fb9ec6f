package cli

import (
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "kaizen",
	Short: "Ability taxonomy, spaced recall and daily progress tracking",
	Long: "Kaizen keeps a tree of ability tags with knowledge points, schedules their review on a " +
		"fixed interval ladder, and rolls completed tasks into a daily progress ledger.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.kaizen/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(abilityCmd)
	rootCmd.AddCommand(kpCmd)
	rootCmd.AddCommand(recallCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(goalCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(diaryCmd)
	rootCmd.AddCommand(summaryCmd)
}
