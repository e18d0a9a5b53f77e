// Package citycachefx provides an fx module for a dataset-backed citycache
// client.
package citycachefx

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/citylookup/citycache"
	"github.com/citylookup/citycache/internal/dataset"
	"github.com/citylookup/citycache/internal/ingest"
	"github.com/citylookup/citycache/internal/source/gcssource"
	"github.com/citylookup/citycache/internal/source/httpsource"
	"github.com/citylookup/citycache/internal/source/s3source"
	"github.com/citylookup/citycache/internal/stats"
	"github.com/citylookup/citycache/internal/stats/logger"
)

// Config holds configuration for the citycache client.
type Config struct {
	// Dataset is the dataset path or URI (file, s3://, gs://, http(s)://).
	Dataset string

	// Capacity is the number of cache entries.
	// Default is citycache.DefaultCapacity.
	Capacity int

	// Policy names the eviction policy. Default is lru.
	Policy string

	// Seed, if non-zero, makes the random policy evict reproducibly.
	Seed uint64

	// S3Endpoint, S3Region and the static key pair configure s3:// datasets.
	// Empty values fall back to the AWS default chain.
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string

	// GCSEndpoint points gs:// datasets at an emulator.
	GCSEndpoint string

	// HTTPTimeout bounds the download of http(s):// datasets.
	HTTPTimeout time.Duration
}

// datasetOptions translates the backend settings for dataset.Open.
func (c Config) datasetOptions() []dataset.Option {
	var s3opts []s3source.Option
	if c.S3Endpoint != "" {
		s3opts = append(s3opts, s3source.WithEndpoint(c.S3Endpoint))
	}
	if c.S3Region != "" {
		s3opts = append(s3opts, s3source.WithRegion(c.S3Region))
	}
	if c.S3AccessKey != "" {
		s3opts = append(s3opts, s3source.WithStaticCredentials(c.S3AccessKey, c.S3SecretKey))
	}

	opts := []dataset.Option{dataset.WithS3Options(s3opts...)}
	if c.GCSEndpoint != "" {
		opts = append(opts, dataset.WithGCSOptions(gcssource.WithEndpoint(c.GCSEndpoint)))
	}
	if c.HTTPTimeout > 0 {
		opts = append(opts, dataset.WithHTTPOptions(httpsource.WithTimeout(c.HTTPTimeout)))
	}
	return opts
}

// Module provides a dataset-backed citycache client.
// Requires a Config and a *zap.Logger to be provided.
var Module = fx.Module("citycache",
	fx.Provide(
		newStatsCollector,
		newClient,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("citycache.stats"))
}

// Params holds dependencies for creating the client.
type Params struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
	Lifecycle fx.Lifecycle
}

// Result holds the provided client.
type Result struct {
	fx.Out

	Client *citycache.Client
}

func newClient(p Params) (Result, error) {
	capacity := p.Config.Capacity
	if capacity <= 0 {
		capacity = citycache.DefaultCapacity
	}

	idx, _, err := citycache.LoadIndexWith(context.Background(), p.Config.Dataset,
		p.Config.datasetOptions(),
		ingest.WithLogger(p.Logger),
		ingest.WithCollector(p.Collector),
	)
	if err != nil {
		return Result{}, err
	}

	opts := []citycache.Option{
		citycache.WithIndex(idx),
		citycache.WithCapacity(capacity),
		citycache.WithStats(p.Collector),
		citycache.WithLogger(p.Logger),
	}
	if p.Config.Policy != "" {
		opts = append(opts, citycache.WithPolicy(p.Config.Policy))
	}
	if p.Config.Seed != 0 {
		opts = append(opts, citycache.WithSeed(p.Config.Seed))
	}

	client, err := citycache.New(opts...)
	if err != nil {
		return Result{}, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return Result{Client: client}, nil
}
