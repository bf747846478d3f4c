//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/worldcore/internal/config"
)

func InitializeApp(cfg config.Config) *App {
	wire.Build(ProviderSet)
	return nil
}
