package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/openclaw/dramawatch/internal/app"
	"github.com/openclaw/dramawatch/pkg/logger"
	"go.uber.org/fx"
)

func main() {
	log := logger.New(logger.Opts{})

	daemon := fx.New(
		fx.Logger(log),
		app.Module,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := daemon.Start(ctx); err != nil {
		log.Error("Failed to start application", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	stop()
	log.Info("Shutdown signal received")

	// Stop gets a fresh context: the signal context is already cancelled.
	if err := daemon.Stop(context.Background()); err != nil {
		log.Error("Shutdown did not complete cleanly", "error", err)
		os.Exit(1)
	}
}
