package sinkimpl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/openclaw/dramawatch/internal/alerter"
	"github.com/openclaw/dramawatch/pkg/config"
	"github.com/openclaw/dramawatch/pkg/formatter"
	"github.com/openclaw/dramawatch/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

type SinkImpl struct {
	sinkURL string
	timeout time.Duration
	http    *http.Client
	logger  logger.Logger
}

func New(opts Opts) *SinkImpl {
	return &SinkImpl{
		sinkURL: opts.Config.Alert.SinkURL,
		timeout: opts.Config.Alert.Timeout,
		http:    &http.Client{Timeout: opts.Config.Alert.Timeout},
		logger:  opts.Logger.WithComponent("AlertSink"),
	}
}

var _ alerter.Client = (*SinkImpl)(nil)

type sinkPayload struct {
	Action    string      `json:"action"`
	TweetID   string      `json:"tweet_id"`
	Author    string      `json:"author"`
	Text      string      `json:"text"`
	URL       string      `json:"url"`
	Timestamp time.Time   `json:"timestamp"`
	Metrics   sinkMetrics `json:"metrics"`
	Velocity  float64     `json:"velocity"`
}

type sinkMetrics struct {
	Likes       int `json:"likes"`
	Retweets    int `json:"retweets"`
	Replies     int `json:"replies"`
	Impressions int `json:"impressions"`
}

func (s *SinkImpl) PushDetection(ctx context.Context, d alerter.Detection) error {
	if s.sinkURL == "" {
		s.logger.Debug("No alert sink configured, skipping push", "post_id", d.PostID)
		return nil
	}

	body, err := json.Marshal(sinkPayload{
		Action:    "push",
		TweetID:   d.PostID,
		Author:    d.Author,
		Text:      d.Text,
		URL:       d.URL,
		Timestamp: d.Timestamp,
		Metrics: sinkMetrics{
			Likes:       d.Likes,
			Retweets:    d.Retweets,
			Replies:     d.Replies,
			Impressions: d.EstimatedReach,
		},
		Velocity: d.Velocity,
	})
	if err != nil {
		return fmt.Errorf("failed to encode sink payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.sinkURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("sink push failed: %w", err)
	}
	defer resp.Body.Close()

	s.logger.Info("Pushed detection to sink",
		"post_id", d.PostID,
		"author", d.Author,
		"reach", formatter.FormatNumber(d.EstimatedReach),
		"status", resp.StatusCode,
	)
	return nil
}
