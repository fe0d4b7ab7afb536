package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"repomind/internal/analyze"
	"repomind/internal/critic"
	"repomind/internal/digest"
)

var (
	analyzeOut       string
	analyzeCriticOut string
	analyzeFormat    string
	analyzeWorkers   int
	analyzeCache     bool
	analyzeNoCache   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <root>",
	Short: "Produce a structural digest of a source tree",
	Long: `Walk a repository, extract the defined and called function names from
every surviving source file, and write the digest plus a critic report of
names that are called somewhere but defined nowhere in the retained set.

Files whose base name contains test, __init__, setup, or example are
excluded. Caller-only files are kept or pruned by a depth-penalized score;
files that define anything are always kept. The memory store beside the
digest keeps the most recent runs in full and folds older ones into a
single compressed entry.

Examples:
  repomind analyze ./myrepo
  repomind analyze ./myrepo --out digest.yaml --format yaml
  repomind analyze ./myrepo --workers 1 --no-cache`,
	Args: cobra.ExactArgs(1),
	Run:  runAnalyze,
}

func init() {
	addAnalyzeFlags(analyzeCmd)
	rootCmd.AddCommand(analyzeCmd)
}

// addAnalyzeFlags registers the analysis flag set. The root command calls
// this too, so 'repomind <root>' accepts the same flags.
func addAnalyzeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&analyzeOut, "out", digest.DefaultOutputFile, "Digest output path")
	cmd.Flags().StringVar(&analyzeCriticOut, "critic-out", critic.DefaultOutputFile, "Critic report output path")
	cmd.Flags().StringVar(&analyzeFormat, "format", "json", "Digest format (json, yaml)")
	cmd.Flags().IntVar(&analyzeWorkers, "workers", 0, "Extraction workers (0 = one per CPU, 1 = serial)")
	cmd.Flags().BoolVar(&analyzeCache, "cache", false, "Enable the extraction cache for this run")
	cmd.Flags().BoolVar(&analyzeNoCache, "no-cache", false, "Disable the extraction cache even if enabled in config")
}

func runAnalyze(cmd *cobra.Command, args []string) {
	root := args[0]
	cfg, logger := setupRun(root)

	if cmd.Flags().Changed("workers") {
		cfg.Workers = analyzeWorkers
	}
	if analyzeCache {
		cfg.Cache.Enabled = true
	}
	if analyzeNoCache {
		cfg.Cache.Enabled = false
	}

	format, err := digest.ParseFormat(analyzeFormat)
	if err != nil {
		fatal(err)
	}

	outPath, err := filepath.Abs(analyzeOut)
	if err != nil {
		fatal(err)
	}
	cfg.Memory.File = resolveMemoryFile(cfg.Memory.File, outPath)

	runner := analyze.NewRunner(analyze.Options{
		Root:       root,
		OutputPath: outPath,
		CriticPath: analyzeCriticOut,
		Format:     format,
		Config:     cfg,
		Logger:     logger,
	})

	result, err := runner.Run(newContext())
	if err != nil {
		fatal(err)
	}

	fmt.Printf("Analysis complete. Saved to %s\n", analyzeOut)
	fmt.Printf("  Files: %d retained, %d pruned\n", result.Stats.Retained, result.Stats.Dropped)
	fmt.Printf("  Definitions: %d | Calls: %d\n", result.Digest.TotalDefs, result.Digest.TotalCalls)
	fmt.Printf("  Critic: %d possibly missing definition(s) -> %s\n",
		result.Critic.TotalFindings, analyzeCriticOut)

	if len(result.Warnings) > 0 {
		fmt.Fprintf(os.Stderr, "\n%d file(s) skipped:\n", len(result.Warnings))
		for _, w := range result.Warnings {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", w.Path, w.Message)
		}
	}
}
