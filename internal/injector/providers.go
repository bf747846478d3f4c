package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/worldcore/internal/config"
	"github.com/zeusync/worldcore/internal/core/events/bus"
	"github.com/zeusync/worldcore/internal/core/observability/log"
	"github.com/zeusync/worldcore/internal/core/world"
	"github.com/zeusync/worldcore/internal/server"
)

// App is the fully wired world server.
type App struct {
	Logger  *log.Logger
	World   *world.World
	Gateway *server.Gateway
}

func ProvideLogger(cfg config.Config) *log.Logger {
	return log.New(cfg.LogLevel())
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	bus.New,
	world.New,
	server.NewGateway,
	wire.Struct(new(App), "*"),
)
