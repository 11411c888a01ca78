package delegate

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// PoolParams are the optional dependencies of the Pool provided by Module.
type PoolParams struct {
	fx.In

	Logger  *zap.Logger `optional:"true"`
	Metrics *Metrics    `optional:"true"`
}

// PoolResult is what Module provides.
type PoolResult struct {
	fx.Out

	Pool *Pool
}

// Module returns an fx module providing a *Pool that is disposed when the app stops.
func Module() fx.Option {
	return fx.Module("delegate",
		fx.Provide(ProvidePool),
		fx.Invoke(registerLifecycle),
	)
}

// ProvidePool builds a Pool from the optional dependencies in the graph.
func ProvidePool(params PoolParams) PoolResult {
	return PoolResult{
		Pool: NewPool(
			WithLogger(params.Logger),
			WithMetrics(params.Metrics),
		),
	}
}

func registerLifecycle(lc fx.Lifecycle, pool *Pool) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return pool.Dispose()
		},
	})
}
