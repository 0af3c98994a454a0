package birdimpl

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openclaw/dramawatch/internal/domain"
	"github.com/openclaw/dramawatch/internal/twitter"
	"github.com/openclaw/dramawatch/pkg/retry"
)

// birdPost is the wire shape the sidecar returns for a single post.
type birdPost struct {
	ID     string `json:"id"`
	Author struct {
		Username string `json:"username"`
	} `json:"author"`
	Text         string    `json:"text"`
	CreatedAt    time.Time `json:"createdAt"`
	LikeCount    int       `json:"likeCount"`
	RetweetCount int       `json:"retweetCount"`
	ReplyCount   int       `json:"replyCount"`
}

func (b birdPost) toDomain() domain.TimelinePost {
	author := b.Author.Username
	if author == "" {
		author = "unknown"
	}
	return domain.TimelinePost{
		ID:        b.ID,
		Author:    author,
		Text:      b.Text,
		URL:       fmt.Sprintf("https://twitter.com/%s/status/%s", author, b.ID),
		CreatedAt: b.CreatedAt,
		Likes:     b.LikeCount,
		Retweets:  b.RetweetCount,
		Replies:   b.ReplyCount,
	}
}

func (c *BirdImpl) FetchListTimeline(ctx context.Context, listID string, count int) ([]domain.TimelinePost, error) {
	endpoint := fmt.Sprintf("%s/lists/%s/timeline?count=%s",
		c.baseURL, url.PathEscape(listID), strconv.Itoa(count))

	var raw []birdPost
	if err := c.getJSON(ctx, "fetch list timeline", endpoint, &raw); err != nil {
		return nil, err
	}

	posts := make([]domain.TimelinePost, 0, len(raw))
	for _, b := range raw {
		posts = append(posts, b.toDomain())
	}
	return posts, nil
}

func (c *BirdImpl) FetchPostMetrics(ctx context.Context, postID string) (domain.EngagementCounts, error) {
	endpoint := fmt.Sprintf("%s/posts/%s", c.baseURL, url.PathEscape(postID))

	var raw birdPost
	if err := c.getJSON(ctx, "fetch post metrics", endpoint, &raw); err != nil {
		return domain.EngagementCounts{}, err
	}

	return domain.EngagementCounts{
		Likes:    raw.LikeCount,
		Retweets: raw.RetweetCount,
		Replies:  raw.ReplyCount,
	}, nil
}

func (c *BirdImpl) getJSON(ctx context.Context, operation, endpoint string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	return retry.Do(ctx, c.logger, operation, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
			return backoff.Permanent(twitter.ErrPostUnavailable)
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, endpoint)
		}

		return json.NewDecoder(resp.Body).Decode(out)
	}, retry.DefaultConfig())
}
