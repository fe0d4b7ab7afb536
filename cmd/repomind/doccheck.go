package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"repomind/internal/doccheck"
)

var (
	doccheckOut    string
	doccheckFormat string
)

var doccheckCmd = &cobra.Command{
	Use:   "doccheck <root>",
	Short: "Report functions and classes missing documentation",
	Long: `Walk the root with the usual discovery filters and list every function,
method, or class that carries no documentation. Python definitions are
checked for a docstring; every other language for a comment directly
above the definition.

Findings are advisory and never change the exit code. Nothing is
rewritten.

Examples:
  repomind doccheck ./myrepo
  repomind doccheck ./myrepo --out repomind_doccheck.json`,
	Args: cobra.ExactArgs(1),
	Run:  runDoccheck,
}

func init() {
	doccheckCmd.Flags().StringVar(&doccheckOut, "out", "", "Also write the report as JSON to this path")
	doccheckCmd.Flags().StringVar(&doccheckFormat, "format", "human", "Output format (human, json)")
	rootCmd.AddCommand(doccheckCmd)
}

func runDoccheck(cmd *cobra.Command, args []string) {
	root := args[0]
	cfg, logger := setupRun(root)

	report, warnings, err := doccheck.Run(newContext(), root, cfg, logger)
	if err != nil {
		fatal(err)
	}

	if doccheckFormat == "json" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			fatal(err)
		}
		fmt.Println(string(data))
	} else {
		fmt.Print(report.Human())
	}

	if doccheckOut != "" {
		if err := report.WriteFile(doccheckOut); err != nil {
			fatal(err)
		}
		fmt.Printf("Report saved to %s\n", doccheckOut)
	}

	if len(warnings) > 0 {
		fmt.Fprintf(os.Stderr, "\n%d file(s) skipped:\n", len(warnings))
		for _, w := range warnings {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", w.Path, w.Message)
		}
	}
}
