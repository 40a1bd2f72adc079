// Package bytepressfx provides an fx module wiring a plugin manager and its
// shared algorithm registry into an application container.
// Requires a *zap.Logger to be provided.
package bytepressfx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/bytepress/bytepress"
	"github.com/bytepress/bytepress/internal/stats"
	"github.com/bytepress/bytepress/internal/stats/logger"
	"github.com/bytepress/bytepress/registry"
)

// Module provides a plugin manager backed by a fresh registry. Plugins are
// deactivated and cleaned up when the application stops.
var Module = fx.Module("bytepress",
	fx.Provide(
		newStatsCollector,
		newSystem,
		newManager,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("bytepress.stats"))
}

func newSystem() *bytepress.System {
	return bytepress.NewSystem()
}

// Params holds dependencies for creating the manager.
type Params struct {
	fx.In

	Logger    *zap.Logger
	Collector stats.Collector
	Lifecycle fx.Lifecycle
}

// Result holds the provided manager and its registry.
type Result struct {
	fx.Out

	Manager  *bytepress.Manager
	Registry *registry.Registry
}

func newManager(p Params) Result {
	mgr := bytepress.New(
		bytepress.WithLogger(p.Logger.Named("bytepress")),
		bytepress.WithStats(p.Collector),
	)

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return mgr.Shutdown()
		},
	})

	return Result{
		Manager:  mgr,
		Registry: mgr.Registry(),
	}
}
