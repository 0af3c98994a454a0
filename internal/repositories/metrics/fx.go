package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openclaw/dramawatch/pkg/config"
	"github.com/openclaw/dramawatch/pkg/logger"
	"go.uber.org/fx"
)

var Module = fx.Module("metrics_repository",
	fx.Provide(
		func(cfg *config.Config, pool *pgxpool.Pool, log logger.Logger) Repository {
			if cfg.Storage.Driver == "memory" {
				return NewMemory()
			}
			return NewPgx(pool, log)
		},
	),
)
