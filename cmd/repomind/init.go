package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"repomind/internal/config"
	"repomind/internal/errors"
	"repomind/internal/manifest"
)

var (
	initForce    bool
	initManifest bool
)

var initCmd = &cobra.Command{
	Use:   "init [root]",
	Short: "Initialize repomind configuration",
	Long: `Creates a .repomind/ directory with default configuration under the given
root (default: current directory). With --manifest, also writes an example
repomind.toml that project owners can edit to extend the exclusion
vocabulary and pin files against pruning.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite existing configuration")
	initCmd.Flags().BoolVar(&initManifest, "manifest", false, "Also write an example repomind.toml manifest")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	configPath := filepath.Join(root, ".repomind", "config.json")
	if _, err := os.Stat(configPath); err == nil && !initForce {
		// Idempotent behavior: already initialized is success (CI-friendly)
		fmt.Println("Repomind already initialized.")
		fmt.Printf("Configuration at: %s\n", configPath)
		fmt.Println("\nRun 'repomind init --force' to overwrite.")
		return nil
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(root); err != nil {
		return errors.New(errors.InternalError, "failed to write config", err)
	}
	fmt.Printf("Configuration written to %s\n", configPath)

	if initManifest {
		manifestPath := filepath.Join(root, manifest.ManifestFile)
		if _, err := os.Stat(manifestPath); err == nil && !initForce {
			fmt.Printf("Manifest already exists at %s, leaving it alone.\n", manifestPath)
		} else if err := manifest.CreateExample(manifestPath); err != nil {
			return errors.New(errors.InternalError, "failed to write manifest", err)
		} else {
			fmt.Printf("Example manifest written to %s\n", manifestPath)
		}
	}

	fmt.Println("\nNext steps:")
	fmt.Println("  1. Run 'repomind analyze <root>' to produce a digest")
	fmt.Println("  2. Run 'repomind critic <root>' to check for missing definitions")

	return nil
}
