package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"repomind/internal/config"
	"repomind/internal/critic"
	"repomind/internal/digest"
	"repomind/internal/export"
	"repomind/internal/memory"
)

var (
	exportDigestPath string
	exportCriticPath string
	exportMemoryPath string
	exportOut        string
	exportCompress   bool
	exportNoCritic   bool
	exportNoMemory   bool
	exportFormat     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Bundle the run artifacts for LLM consumption",
	Long: `Pack the latest digest, critic report, and memory history into one
self-contained document for downstream tooling.

Reads the artifacts written by 'repomind analyze' from the working
directory unless told otherwise. A missing critic report or memory store
is simply left out of the bundle; a missing digest is an error.

Examples:
  repomind export
  repomind export --compress --out bundle.json.gz
  repomind export --format text`,
	Run: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportDigestPath, "digest", digest.DefaultOutputFile, "Digest artifact to bundle")
	exportCmd.Flags().StringVar(&exportCriticPath, "critic", critic.DefaultOutputFile, "Critic report to bundle")
	exportCmd.Flags().StringVar(&exportMemoryPath, "memory", memory.DefaultFile, "Memory store to bundle")
	exportCmd.Flags().StringVar(&exportOut, "out", export.DefaultOutputFile, "Bundle output path")
	exportCmd.Flags().BoolVar(&exportCompress, "compress", false, "Gzip the written bundle")
	exportCmd.Flags().BoolVar(&exportNoCritic, "no-critic", false, "Leave the critic report out of the bundle")
	exportCmd.Flags().BoolVar(&exportNoMemory, "no-memory", false, "Leave the memory history out of the bundle")
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Output format (json, text); text prints to stdout")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) {
	logger := newLogger(config.DefaultConfig())

	d, err := digest.Load(exportDigestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'repomind analyze <root>' first.")
		os.Exit(1)
	}

	var report *critic.Report
	if !exportNoCritic {
		if r, loadErr := critic.Load(exportCriticPath); loadErr == nil {
			report = r
		}
	}

	var store *memory.Store
	if !exportNoMemory {
		if s, openErr := memory.Open(exportMemoryPath); openErr == nil {
			store = s
		}
	}

	exporter := export.NewExporter(d.Root, logger)
	bundle := exporter.Build(d, report, store, export.Options{
		IncludeCritic: !exportNoCritic,
		IncludeMemory: !exportNoMemory,
		Compress:      exportCompress,
	})

	if exportFormat == "text" {
		fmt.Print(exporter.FormatText(bundle))
		return
	}

	if err := exporter.Write(bundle, exportOut, exportCompress); err != nil {
		fatal(err)
	}
	fmt.Printf("Bundle saved to %s\n", exportOut)
}
