package domain

import "time"

// Post is a tracked tweet from the monitored list. Active flips to false once
// the post outlives the maximum tracking age and is never set back.
type Post struct {
	ID          string
	Author      string
	Text        string
	URL         string
	FirstSeenAt time.Time
	Active      bool
}
