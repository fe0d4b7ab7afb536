package main

import (
	"github.com/spf13/cobra"

	"repomind/internal/version"
)

var (
	// logLevelFlag is the CLI --log-level flag value
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "repomind [root]",
	Short: "Repomind - structural repository digests",
	Long: `Repomind produces a structural digest of a source tree: for each retained
source file, the functions it defines and the functions it calls, plus
aggregate counts. The digest feeds editors and review tooling that need a
cheap "what calls what" view without running a compiler.

Calling repomind with a bare root path is shorthand for 'repomind analyze':

  repomind ./myrepo
  repomind ./myrepo --out digest.json`,
	Version: version.Version,
	Args:    cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			_ = cmd.Help()
			return
		}
		runAnalyze(cmd, args)
	},
}

func init() {
	rootCmd.SetVersionTemplate("repomind version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log verbosity: debug, info, warn, or error (default: from config)")

	// The bare-root shorthand takes the same flags as the analyze command.
	addAnalyzeFlags(rootCmd)
}
