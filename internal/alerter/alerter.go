package alerter

import (
	"context"
	"time"
)

// Detection is the payload handed to the downstream alert sink when a post
// enters the viral queue.
type Detection struct {
	PostID         string
	Author         string
	Text           string
	URL            string
	Timestamp      time.Time
	Likes          int
	Retweets       int
	Replies        int
	EstimatedReach int
	Velocity       float64
}

// Client delivers detections to the downstream sink. Delivery is best-effort:
// implementations log failures and never retry past the single attempt; the
// queue item remains the durable record either way.
type Client interface {
	PushDetection(ctx context.Context, detection Detection) error
}
