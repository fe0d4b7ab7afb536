package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"repomind/internal/analyze"
)

var (
	criticFormat string
)

var criticCmd = &cobra.Command{
	Use:   "critic <root>",
	Short: "Flag functions that are called but never defined",
	Long: `Re-walk and re-extract the root, then list every function name that is
called somewhere in the tree but defined in none of the retained files.
Calls from pruned files count too; pruning never hides a missing
definition.

Findings are advisory: a flagged name may live in an excluded file (tests,
__init__, setup, example) or be a language builtin. Nothing is written;
the report goes to stdout.

Examples:
  repomind critic ./myrepo
  repomind critic ./myrepo --format json`,
	Args: cobra.ExactArgs(1),
	Run:  runCritic,
}

func init() {
	criticCmd.Flags().StringVar(&criticFormat, "format", "human", "Output format (human, json)")
	rootCmd.AddCommand(criticCmd)
}

func runCritic(cmd *cobra.Command, args []string) {
	root := args[0]
	cfg, logger := setupRun(root)

	runner := analyze.NewRunner(analyze.Options{
		Root:   root,
		Config: cfg,
		Logger: logger,
	})

	result, err := runner.Collect(newContext())
	if err != nil {
		fatal(err)
	}

	if criticFormat == "json" {
		data, err := json.MarshalIndent(result.Critic, "", "  ")
		if err != nil {
			fatal(err)
		}
		fmt.Println(string(data))
		return
	}

	fmt.Print(result.Critic.Human())
}
