// Package birdimpl talks to a bird-compatible sidecar API that proxies list
// timelines and single-post lookups.
package birdimpl

import (
	"net/http"

	"github.com/openclaw/dramawatch/internal/twitter"
	"github.com/openclaw/dramawatch/pkg/config"
	"github.com/openclaw/dramawatch/pkg/logger"
	"go.uber.org/fx"
	"golang.org/x/time/rate"
)

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

type BirdImpl struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  logger.Logger
	config  *config.Config
}

func New(opts Opts) *BirdImpl {
	return &BirdImpl{
		baseURL: opts.Config.Twitter.BaseURL,
		http: &http.Client{
			Timeout: opts.Config.Twitter.RequestTimeout,
		},
		limiter: rate.NewLimiter(
			rate.Limit(opts.Config.Twitter.RatePerSecond),
			opts.Config.Twitter.RateBurst,
		),
		logger: opts.Logger.WithComponent("BirdClient"),
		config: opts.Config,
	}
}

var _ twitter.Client = (*BirdImpl)(nil)
