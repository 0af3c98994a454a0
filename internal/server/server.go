package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openclaw/dramawatch/internal/queue"
	"github.com/openclaw/dramawatch/pkg/config"
	"github.com/openclaw/dramawatch/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	LC     fx.Lifecycle
	Queue  queue.Client
	Logger logger.Logger
	Config *config.Config
}

type Server struct {
	engine *gin.Engine
	queue  queue.Client
	logger logger.Logger
}

func New(opts Opts) *Server {
	if opts.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		engine: gin.New(),
		queue:  opts.Queue,
		logger: opts.Logger.WithComponent("Server"),
	}
	s.engine.Use(gin.Recovery())
	s.registerRoutes()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Config.App.Port),
		Handler: s.engine,
	}

	opts.LC.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				s.logger.Info("Starting server", "addr", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					s.logger.Error("Server failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})

	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.handleHealthz)
	s.engine.GET("/queue", s.handleListQueue)
	s.engine.POST("/queue", s.handleQueueAction)
	s.engine.GET("/alerts", s.handleListAlerts)
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
