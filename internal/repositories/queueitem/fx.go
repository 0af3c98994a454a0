package queueitem

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openclaw/dramawatch/internal/repositories/post"
	"github.com/openclaw/dramawatch/pkg/config"
	"github.com/openclaw/dramawatch/pkg/logger"
	"go.uber.org/fx"
)

var Module = fx.Module("queueitem_repository",
	fx.Provide(
		func(cfg *config.Config, pool *pgxpool.Pool, posts post.Repository, log logger.Logger) Repository {
			if cfg.Storage.Driver == "memory" {
				return NewMemory(posts)
			}
			return NewPgx(pool, log)
		},
	),
)
