package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/citylookup/citycache"
	"github.com/citylookup/citycache/internal/cache"
	"github.com/citylookup/citycache/internal/dataset"
	"github.com/citylookup/citycache/internal/index"
	"github.com/citylookup/citycache/internal/ingest"
	"github.com/citylookup/citycache/internal/source/gcssource"
	"github.com/citylookup/citycache/internal/source/httpsource"
	"github.com/citylookup/citycache/internal/source/s3source"
	"github.com/citylookup/citycache/internal/stats"
)

var (
	// Global flags.
	dataURI    string
	capacity   int
	policyName string
	verbose    bool

	// Dataset backend flags.
	s3Endpoint  string
	s3Region    string
	gcsEndpoint string
	httpTimeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "citycache",
	Short: "City population lookups through a bounded cache",
	Long: `citycache answers "what is the population of this city" from a CSV
dataset of country code, city name and population, fronted by a
fixed-capacity cache with a choice of eviction policy.

The dataset can be a local path or a file://, s3://, gs://, http:// or
https:// URI, optionally compressed (.zst, .gz).

Examples:
  # Look up one city
  citycache lookup jp Tokyo

  # Interactive session with an LFU cache of 10 entries
  citycache repl --policy lfu --capacity 10

  # Compare all policies on a skewed workload
  citycache bench --distribution zipf --queries 10000 --output results.csv`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dataURI, "data", "d", "./data/cities.csv", "dataset path or URI")
	rootCmd.PersistentFlags().IntVar(&capacity, "capacity", citycache.DefaultCapacity, "cache capacity in entries")
	rootCmd.PersistentFlags().StringVar(&policyName, "policy", "lru", fmt.Sprintf("eviction policy: %v", cache.PolicyNames()))
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&s3Endpoint, "s3-endpoint", "", "custom endpoint for s3:// datasets (e.g. MinIO)")
	rootCmd.PersistentFlags().StringVar(&s3Region, "s3-region", "", "AWS region for s3:// datasets")
	rootCmd.PersistentFlags().StringVar(&gcsEndpoint, "gcs-endpoint", "", "custom endpoint for gs:// datasets (e.g. an emulator)")
	rootCmd.PersistentFlags().DurationVar(&httpTimeout, "http-timeout", 0, "overall timeout for http(s):// datasets (0 = none)")
}

// datasetOptions returns the backend settings given on the command line.
func datasetOptions() []dataset.Option {
	var opts []dataset.Option
	if s3Endpoint != "" {
		opts = append(opts, dataset.WithS3Options(s3source.WithEndpoint(s3Endpoint)))
	}
	if s3Region != "" {
		opts = append(opts, dataset.WithS3Options(s3source.WithRegion(s3Region)))
	}
	if gcsEndpoint != "" {
		opts = append(opts, dataset.WithGCSOptions(gcssource.WithEndpoint(gcsEndpoint)))
	}
	if httpTimeout > 0 {
		opts = append(opts, dataset.WithHTTPOptions(httpsource.WithTimeout(httpTimeout)))
	}
	return opts
}

// newLogger returns a development logger at debug level when verbose is
// set, warn level otherwise.
func newLogger() (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

// loadIndex reads the dataset named by --data.
func loadIndex(ctx context.Context, logger *zap.Logger) (*index.Index, ingest.Summary, error) {
	opts := []ingest.Option{ingest.WithLogger(logger)}
	if verbose {
		opts = append(opts, ingest.WithProgress(ingest.DefaultProgressFunc))
	}

	idx, sum, err := citycache.LoadIndexWith(ctx, dataURI, datasetOptions(), opts...)
	if err != nil {
		return nil, sum, err
	}
	logger.Debug("dataset loaded",
		zap.String("uri", dataURI),
		zap.Int64("loaded", sum.Loaded),
		zap.Int64("skipped", sum.Skipped),
		zap.Duration("elapsed", sum.Duration),
	)
	return idx, sum, nil
}

// openClient loads the dataset and builds a client from the global flags.
func openClient(ctx context.Context, logger *zap.Logger, collector stats.Collector) (*citycache.Client, error) {
	idx, _, err := loadIndex(ctx, logger)
	if err != nil {
		return nil, err
	}
	client, err := citycache.New(
		citycache.WithIndex(idx),
		citycache.WithCapacity(capacity),
		citycache.WithPolicy(policyName),
		citycache.WithStats(collector),
		citycache.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}
	return client, nil
}
