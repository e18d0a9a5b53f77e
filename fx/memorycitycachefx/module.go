// Package memorycitycachefx provides an fx module for a citycache client
// over an empty in-memory index. Useful for testing.
package memorycitycachefx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/citylookup/citycache"
	"github.com/citylookup/citycache/internal/index"
	"github.com/citylookup/citycache/internal/stats"
	"github.com/citylookup/citycache/internal/stats/logger"
)

// Module provides an in-memory citycache client for testing.
// Requires a *zap.Logger to be provided.
var Module = fx.Module("memorycitycache",
	fx.Provide(
		newStatsCollector,
		index.New,
		newClient,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("citycache.stats"))
}

// Params holds dependencies for creating the client.
type Params struct {
	fx.In

	Logger    *zap.Logger
	Collector stats.Collector
	Index     *index.Index
	Lifecycle fx.Lifecycle
}

// Result holds the provided client.
type Result struct {
	fx.Out

	Client *citycache.Client
}

func newClient(p Params) (Result, error) {
	client, err := citycache.New(
		citycache.WithIndex(p.Index),
		citycache.WithStats(p.Collector),
		citycache.WithLogger(p.Logger),
	)
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
