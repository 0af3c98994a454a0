package app

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/openclaw/dramawatch/internal/alerter"
	"github.com/openclaw/dramawatch/internal/alerter/sinkimpl"
	"github.com/openclaw/dramawatch/internal/collector"
	"github.com/openclaw/dramawatch/internal/migrations"
	"github.com/openclaw/dramawatch/internal/queue"
	"github.com/openclaw/dramawatch/internal/queue/queueimpl"
	"github.com/openclaw/dramawatch/internal/recorder"
	repositories "github.com/openclaw/dramawatch/internal/repositories/fx"
	"github.com/openclaw/dramawatch/internal/server"
	"github.com/openclaw/dramawatch/internal/twitter"
	"github.com/openclaw/dramawatch/internal/twitter/birdimpl"
	"github.com/openclaw/dramawatch/internal/viral"
	"github.com/openclaw/dramawatch/pkg/config"
	"github.com/openclaw/dramawatch/pkg/logger"
	"github.com/openclaw/dramawatch/pkg/pgx"
	"github.com/pressly/goose/v3"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
		pgx.New,
		viral.NewConfig,
	),
	fx.Provide(
		fx.Annotate(
			birdimpl.New,
			fx.As(new(twitter.Client)),
		),
		fx.Annotate(
			sinkimpl.New,
			fx.As(new(alerter.Client)),
		),
		fx.Annotate(
			queueimpl.New,
			fx.As(new(queue.Client)),
		),
		collector.New,
		recorder.New,
		server.New,
	),
	repositories.Module,
	fx.Invoke(runMigrations),
	fx.Invoke(run),
)

func runMigrations(cfg *config.Config, log logger.Logger) error {
	if cfg.Storage.Driver == "memory" {
		log.Info("Memory storage selected, skipping migrations")
		return nil
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	goose.SetBaseFS(migrations.FS)

	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	return goose.Up(db, ".")
}

func run(lc fx.Lifecycle, log logger.Logger, col *collector.Collector, rec *recorder.Recorder, _ *server.Server) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if err := col.Schedule(ctx); err != nil {
				log.Error("Failed to start timeline collector", "error", err)
				return err
			}

			if err := rec.Schedule(ctx); err != nil {
				log.Error("Failed to start metrics recorder", "error", err)
				return err
			}

			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
