package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/citylookup/citycache/internal/dataset"
	"github.com/citylookup/citycache/internal/index"
	"github.com/citylookup/citycache/internal/ingest"
)

var packCmd = &cobra.Command{
	Use:   "pack",
	Short: "Write a cleaned, sorted copy of the dataset",
	Long: `Load the dataset, drop malformed records, and write the remaining
records sorted by city name and country code. The output is compressed
according to its extension: .zst for zstd, .gz for gzip, none otherwise.
It may be a local path or an s3:// or gs:// URI.

Examples:
  citycache pack --data ./raw.csv --output ./data/cities.csv.zst
  citycache pack --data https://example.com/cities.csv --output gs://bucket/v1/cities.csv.zst`,
	Args: cobra.NoArgs,
	RunE: runPack,
}

var packOutput string

func init() {
	packCmd.Flags().StringVarP(&packOutput, "output", "o", "", "output path or URI")
	packCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(packCmd)
}

func runPack(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	idx, sum, err := loadIndex(cmd.Context(), logger)
	if err != nil {
		return err
	}

	n, err := writePacked(cmd.Context(), packOutput, idx)
	if err != nil {
		return err
	}

	logger.Info("dataset packed", zap.String("output", packOutput), zap.Int64("records", n))
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d records to %s (%d skipped)\n", n, packOutput, sum.Skipped)
	return nil
}

// writePacked writes every record in idx to the dataset at uri.
func writePacked(ctx context.Context, uri string, idx *index.Index) (n int64, err error) {
	dst, err := dataset.Create(ctx, uri, datasetOptions()...)
	if err != nil {
		return 0, fmt.Errorf("creating output: %w", err)
	}
	defer func() {
		if cerr := dst.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing output: %w", cerr)
		}
	}()

	w := ingest.NewWriter(dst)
	var werr error
	idx.Walk(func(city, code string, pop int64) bool {
		werr = w.Write(ingest.Record{CountryCode: code, City: city, Population: pop})
		return werr == nil
	})
	if werr != nil {
		return 0, fmt.Errorf("writing record: %w", werr)
	}
	if err := w.Flush(); err != nil {
		return 0, fmt.Errorf("flushing records: %w", err)
	}
	return w.Count(), nil
}
