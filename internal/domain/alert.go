package domain

import "time"

const (
	AlertTypeViralTweet = "viral_tweet"
	AlertTypeViralBatch = "viral_batch"

	AlertPriorityHigh   = "high"
	AlertPriorityMedium = "medium"
)

// AlertEvent is the record handed to the dashboard alerts feed.
type AlertEvent struct {
	ID          string
	Type        string
	Title       string
	Description string
	Priority    string
	CreatedAt   time.Time
}
