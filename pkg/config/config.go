package config

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App struct {
		Env       string `env:"APP_ENV" env-default:"development"`
		Port      int    `env:"APP_PORT" env-default:"8080"`
		SentryDSN string `env:"SENTRY_DSN"`
	}
	Storage struct {
		// Driver selects the backing store: "postgres" or "memory".
		Driver string `env:"STORAGE_DRIVER" env-default:"postgres"`
	}
	Postgres struct {
		Port    int    `env:"POSTGRES_PORT" env-default:"5432"`
		Host    string `env:"POSTGRES_HOST" env-default:"localhost"`
		User    string `env:"POSTGRES_USER"`
		Pass    string `env:"POSTGRES_PASS"`
		Name    string `env:"POSTGRES_NAME"`
		SslMode string `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	}
	Twitter struct {
		BaseURL        string        `env:"TWITTER_API_URL" env-default:"http://localhost:3130"`
		ListID         string        `env:"TWITTER_LIST_ID"`
		BatchSize      int           `env:"TWITTER_BATCH_SIZE" env-default:"50"`
		RequestTimeout time.Duration `env:"TWITTER_REQUEST_TIMEOUT" env-default:"30s"`
		RatePerSecond  float64       `env:"TWITTER_RATE_PER_SECOND" env-default:"2"`
		RateBurst      int           `env:"TWITTER_RATE_BURST" env-default:"5"`
	}
	Monitor struct {
		PollInterval    time.Duration `env:"MONITOR_POLL_INTERVAL" env-default:"2m"`
		MetricsInterval time.Duration `env:"MONITOR_METRICS_INTERVAL" env-default:"10m"`
		MaxTrackingAge  time.Duration `env:"MONITOR_MAX_TRACKING_AGE" env-default:"12h"`
		Workers         int           `env:"MONITOR_WORKERS" env-default:"5"`
	}
	Viral struct {
		// ReachThreshold is the absolute estimated-reach value above which a
		// post is classified viral regardless of growth rate.
		ReachThreshold int `env:"VIRAL_REACH_THRESHOLD" env-default:"70000"`
		// SpikeRatio triggers the velocity rule when reach-per-minute exceeds
		// previous reach multiplied by this ratio.
		SpikeRatio float64 `env:"VIRAL_SPIKE_RATIO" env-default:"0.5"`
		// Reach estimation heuristic: (likes + retweets) * PerEngagement + Base.
		// A rough proxy for impressions, not a measured figure.
		ReachPerEngagement int `env:"VIRAL_REACH_PER_ENGAGEMENT" env-default:"30"`
		ReachBase          int `env:"VIRAL_REACH_BASE" env-default:"1000"`
	}
	Alert struct {
		SinkURL string        `env:"ALERT_SINK_URL"`
		Timeout time.Duration `env:"ALERT_SINK_TIMEOUT" env-default:"15s"`
	}
}

var (
	once sync.Once
	cfg  *Config
)

func New() (*Config, error) {
	once.Do(func() {
		cfg = &Config{}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			help, _ := cleanenv.GetDescription(cfg, nil)
			log.Fatalf("Failed to read configuration: %v\n%v", err, help)
		}
	})
	return cfg, nil
}

func (c *Config) GetDSN() string {
	return fmt.Sprintf("dbname=%s user=%s password=%s host=%s port=%d sslmode=%s",
		c.Postgres.Name, c.Postgres.User, c.Postgres.Pass, c.Postgres.Host, c.Postgres.Port, c.Postgres.SslMode,
	)
}
