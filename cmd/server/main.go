package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zeusync/worldcore/internal/config"
	"github.com/zeusync/worldcore/internal/core/observability/log"
	"github.com/zeusync/worldcore/internal/core/world"
	"github.com/zeusync/worldcore/internal/injector"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadFile(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, "Error loading config:", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app := injector.InitializeApp(cfg)
	logger := app.Logger
	defer func() { _ = logger.Sync() }()

	if err := seed(ctx, app.World, cfg); err != nil {
		logger.Fatal("Error building world", log.Error(err))
	}

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM)

	if err := app.Gateway.Start(ctx); err != nil {
		logger.Fatal("Error starting gateway", log.Error(err))
	}

	<-stopCh
	cancel()

	if err := app.Gateway.Stop(context.Background()); err != nil {
		logger.Error("Error stopping gateway", log.Error(err))
	}
	if err := app.World.Stop(context.Background()); err != nil {
		logger.Error("Error stopping world", log.Error(err))
	}
}

// seed applies the configured blueprint, or creates the default room alone.
func seed(ctx context.Context, w *world.World, cfg config.Config) error {
	if cfg.World.Blueprint != "" {
		b, err := world.LoadBlueprintFile(cfg.World.Blueprint)
		if err != nil {
			return err
		}
		return w.Apply(ctx, b)
	}
	return w.Apply(ctx, &world.Blueprint{Rooms: []world.RoomSpec{{Name: cfg.Server.DefaultRoom}}})
}
