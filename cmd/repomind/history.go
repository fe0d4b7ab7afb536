package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"repomind/internal/errors"
	"repomind/internal/memory"
)

var (
	historyFile   string
	historyFormat string
	historyRepair bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the persisted digest history",
	Long: `Print the memory store, newest first: the most recent runs in full,
followed by the compressed tail that aggregates everything older.

Examples:
  repomind history
  repomind history --file ./out/repomind_memory.json --format json
  repomind history --repair`,
	Run: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyFile, "file", memory.DefaultFile, "Memory store path")
	historyCmd.Flags().StringVar(&historyFormat, "format", "human", "Output format (human, json)")
	historyCmd.Flags().BoolVar(&historyRepair, "repair", false,
		"Archive a corrupt memory store so the next run starts fresh")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) {
	store, err := memory.Open(historyFile)
	if err != nil {
		if historyRepair && errors.CodeOf(err) == errors.MemoryCorrupt {
			archived := historyFile + ".corrupt"
			if renameErr := os.Rename(historyFile, archived); renameErr != nil {
				fatal(renameErr)
			}
			fmt.Printf("Corrupt memory store archived to %s\n", archived)
			fmt.Println("The next run starts with an empty history.")
			return
		}
		fatal(err)
	}

	if historyRepair {
		fmt.Printf("Memory store at %s is healthy, nothing to repair.\n", historyFile)
		return
	}

	if historyFormat == "json" {
		data, err := json.MarshalIndent(store.Entries, "", "  ")
		if err != nil {
			fatal(err)
		}
		fmt.Println(string(data))
		return
	}

	if len(store.Entries) == 0 {
		fmt.Println("No history yet. Run 'repomind analyze <root>' first.")
		return
	}

	compressed := 0
	if store.Compressed() != nil {
		compressed = 1
	}
	fmt.Printf("History (%d raw, %d compressed):\n", store.RawCount(), compressed)
	for _, e := range store.Entries {
		fmt.Println("  " + formatEntry(e))
	}
}

// formatEntry renders one memory entry as a single line.
func formatEntry(e memory.Entry) string {
	if e.Type == memory.EntryCompressed {
		return fmt.Sprintf("compressed            files=%d defs=%d calls=%d  span %s .. %s",
			e.FileCount, e.TotalDefCount, e.TotalCallCount,
			e.Earliest.Format(time.RFC3339), e.Latest.Format(time.RFC3339))
	}
	if e.Digest == nil {
		return "raw (empty)"
	}
	return fmt.Sprintf("%s  files=%d defs=%d calls=%d  run %s",
		e.Timestamp.Format(time.RFC3339),
		e.Digest.TotalFiles, e.Digest.TotalDefs, e.Digest.TotalCalls, e.Digest.RunID)
}
