package domain

import "time"

type QueueStatus string

const (
	QueueStatusPending   QueueStatus = "pending"
	QueueStatusPushed    QueueStatus = "pushed"
	QueueStatusDismissed QueueStatus = "dismissed"
)

// ValidQueueStatus reports whether s is one of the known queue statuses.
func ValidQueueStatus(s QueueStatus) bool {
	switch s {
	case QueueStatusPending, QueueStatusPushed, QueueStatusDismissed:
		return true
	}
	return false
}

// QueueItem is one reviewable viral detection. At most one item with status
// pending or pushed may exist per PostID.
type QueueItem struct {
	ID               string
	PostID           string
	Velocity         float64
	ReachAtDetection int
	Status           QueueStatus
	CreatedAt        time.Time
	PushedAt         *time.Time
	DismissedAt      *time.Time
}

// QueueEntry is a queue item joined with its post summary for listing.
type QueueEntry struct {
	Item QueueItem
	Post Post
}
