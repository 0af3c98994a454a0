package domain

import "time"

// TimelinePost is one post as returned by the timeline source, before it is
// normalized into a Post plus a seed MetricsSample.
type TimelinePost struct {
	ID        string
	Author    string
	Text      string
	URL       string
	CreatedAt time.Time
	Likes     int
	Retweets  int
	Replies   int
}
