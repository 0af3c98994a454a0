package domain

import "time"

// EngagementCounts are the raw counters a single-post lookup returns.
type EngagementCounts struct {
	Likes    int
	Retweets int
	Replies  int
}

// MetricsSample is one timestamped engagement snapshot for a post.
// Samples are append-only and ordered by CapturedAt per post.
type MetricsSample struct {
	ID             int64
	PostID         string
	CapturedAt     time.Time
	Likes          int
	Retweets       int
	Replies        int
	EstimatedReach int
}
