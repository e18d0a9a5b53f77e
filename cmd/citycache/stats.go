package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/citylookup/citycache/internal/ingest"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show statistics about the dataset",
	Long: `Load the dataset and display:
- Records loaded and skipped
- Distinct city names and prefix tree size
- Bytes read and load time`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	idx, sum, err := loadIndex(cmd.Context(), logger)
	if err != nil {
		return err
	}

	st := idx.Stats()
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Dataset:    %s\n", dataURI)
	fmt.Fprintf(w, "Records:    %d\n", st.Records)
	fmt.Fprintf(w, "Cities:     %d\n", st.Cities)
	fmt.Fprintf(w, "Tree nodes: %d\n", st.Nodes)
	fmt.Fprintf(w, "Skipped:    %d\n", sum.Skipped)
	fmt.Fprintf(w, "Read:       %s\n", ingest.FormatBytes(sum.Bytes))
	fmt.Fprintf(w, "Load time:  %s\n", ingest.FormatDuration(sum.Duration))
	return nil
}
