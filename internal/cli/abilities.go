package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lazypower/kaizen/internal/engine"
	"github.com/lazypower/kaizen/internal/taxonomy"
)

// withEngine opens the engine for the duration of one command.
func withEngine(fn func(cmd *cobra.Command, eng *engine.Engine, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		eng, _, cleanup, err := openEngine()
		if err != nil {
			return err
		}
		defer cleanup()
		return fn(cmd, eng, args)
	}
}

func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("index %q is not a number", s)
	}
	return i, nil
}

// --- ability ---

var abilityParent string

var abilityCmd = &cobra.Command{
	Use:     "ability",
	Aliases: []string{"ab"},
	Short:   "Manage ability tags",
}

var abilityAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add an ability tag",
	Args:  cobra.ExactArgs(1),
	RunE: withEngine(func(cmd *cobra.Command, eng *engine.Engine, args []string) error {
		if err := eng.AddAbility(args[0], abilityParent); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", strings.TrimSpace(args[0]))
		return nil
	}),
}

var abilityRenameCmd = &cobra.Command{
	Use:   "rename <old> <new>",
	Short: "Rename an ability tag; children and references follow",
	Args:  cobra.ExactArgs(2),
	RunE: withEngine(func(cmd *cobra.Command, eng *engine.Engine, args []string) error {
		if err := eng.RenameAbility(args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "renamed %s to %s\n", args[0], strings.TrimSpace(args[1]))
		return nil
	}),
}

var abilityMoveCmd = &cobra.Command{
	Use:   "move <name> [parent]",
	Short: "Move an ability tag under parent, or to the root level",
	Args:  cobra.RangeArgs(1, 2),
	RunE: withEngine(func(cmd *cobra.Command, eng *engine.Engine, args []string) error {
		parent := ""
		if len(args) == 2 {
			parent = args[1]
		}
		if err := eng.MoveAbility(args[0], parent); err != nil {
			return err
		}
		chain, _ := eng.Chain(args[0])
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(chain, " > "))
		return nil
	}),
}

var abilityRemoveCmd = &cobra.Command{
	Use:     "rm <name>",
	Aliases: []string{"remove"},
	Short:   "Remove an ability tag without children",
	Args:    cobra.ExactArgs(1),
	RunE: withEngine(func(cmd *cobra.Command, eng *engine.Engine, args []string) error {
		if err := eng.RemoveAbility(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
		return nil
	}),
}

var abilityTreeCmd = &cobra.Command{
	Use:   "tree [search]",
	Short: "Show the ability tree, optionally filtered by a name substring",
	Args:  cobra.MaximumNArgs(1),
	RunE: withEngine(func(cmd *cobra.Command, eng *engine.Engine, args []string) error {
		search := ""
		if len(args) == 1 {
			search = args[0]
		}
		nodes := eng.Tree(search)
		if len(nodes) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No abilities found.")
			return nil
		}
		printTree(cmd.OutOrStdout(), nodes, 0)
		return nil
	}),
}

func printTree(w io.Writer, nodes []taxonomy.Node, depth int) {
	for _, n := range nodes {
		fmt.Fprintf(w, "%s%s (%d/%d)\n", strings.Repeat("  ", depth), n.Name, n.Learned, n.Points)
		printTree(w, n.Children, depth+1)
	}
}

var abilityChainCmd = &cobra.Command{
	Use:   "chain <name>",
	Short: "Show a tag's ancestors and knowledge points",
	Args:  cobra.ExactArgs(1),
	RunE: withEngine(func(cmd *cobra.Command, eng *engine.Engine, args []string) error {
		d, err := eng.Tag(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, strings.Join(d.Chain, " > "))
		for i, p := range d.Points {
			if !p.Learned {
				fmt.Fprintf(out, "  %d. %s\n", i, p.Content)
				continue
			}
			fmt.Fprintf(out, "  %d. %s (next %v, recalled %d)\n", i, p.Content, p.NextRecall, p.RecallCount)
		}
		return nil
	}),
}

// --- knowledge points ---

var kpCmd = &cobra.Command{
	Use:   "kp",
	Short: "Manage knowledge points",
}

var kpAddCmd = &cobra.Command{
	Use:   "add <tag> <content...>",
	Short: "Add a knowledge point to a tag",
	Args:  cobra.MinimumNArgs(2),
	RunE: withEngine(func(cmd *cobra.Command, eng *engine.Engine, args []string) error {
		idx, err := eng.AddPoint(args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s #%d\n", args[0], idx)
		return nil
	}),
}

var kpRemoveCmd = &cobra.Command{
	Use:     "rm <tag> <index>",
	Aliases: []string{"remove"},
	Short:   "Remove a knowledge point",
	Args:    cobra.ExactArgs(2),
	RunE: withEngine(func(cmd *cobra.Command, eng *engine.Engine, args []string) error {
		idx, err := parseIndex(args[1])
		if err != nil {
			return err
		}
		if err := eng.RemovePoint(args[0], idx); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s #%d\n", args[0], idx)
		return nil
	}),
}

func init() {
	abilityAddCmd.Flags().StringVarP(&abilityParent, "parent", "p", "", "Parent tag (default: root)")

	abilityCmd.AddCommand(abilityAddCmd)
	abilityCmd.AddCommand(abilityRenameCmd)
	abilityCmd.AddCommand(abilityMoveCmd)
	abilityCmd.AddCommand(abilityRemoveCmd)
	abilityCmd.AddCommand(abilityTreeCmd)
	abilityCmd.AddCommand(abilityChainCmd)

	kpCmd.AddCommand(kpAddCmd)
	kpCmd.AddCommand(kpRemoveCmd)
}
