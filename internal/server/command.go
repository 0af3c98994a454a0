package server

import (
	"fmt"
	"time"

	"github.com/openclaw/dramawatch/internal/domain"
	"github.com/openclaw/dramawatch/internal/queue"
	apperrors "github.com/openclaw/dramawatch/pkg/errors"
)

// queueRequest is the raw POST /queue body. The free-form action string is
// resolved into exactly one of the command variants below before anything is
// dispatched; an action outside the closed set is rejected up front.
type queueRequest struct {
	Action    string         `json:"action" binding:"required"`
	ID        string         `json:"id"`
	TweetID   string         `json:"tweet_id"`
	Author    string         `json:"author"`
	Text      string         `json:"text"`
	URL       string         `json:"url"`
	Timestamp time.Time      `json:"timestamp"`
	Metrics   *queueMetrics  `json:"metrics"`
	Velocity  float64        `json:"velocity"`
	Status    string         `json:"status"`
}

type queueMetrics struct {
	Likes       int `json:"likes"`
	Retweets    int `json:"retweets"`
	Replies     int `json:"replies"`
	Impressions int `json:"impressions"`
}

type command interface {
	isCommand()
}

type pushCommand struct{ req queue.PushRequest }
type updateStatusCommand struct {
	id     string
	status domain.QueueStatus
}
type dismissCommand struct{ id string }
type deleteCommand struct{ id string }
type pushToLiveCommand struct{}
type clearQueueCommand struct{}

func (pushCommand) isCommand()         {}
func (updateStatusCommand) isCommand() {}
func (dismissCommand) isCommand()      {}
func (deleteCommand) isCommand()       {}
func (pushToLiveCommand) isCommand()   {}
func (clearQueueCommand) isCommand()   {}

func parseCommand(req queueRequest) (command, error) {
	switch req.Action {
	case "push":
		if req.TweetID == "" {
			return nil, apperrors.Wrap(apperrors.ErrBadRequest, "push requires tweet_id")
		}
		pr := queue.PushRequest{
			PostID:    req.TweetID,
			Author:    req.Author,
			Text:      req.Text,
			URL:       req.URL,
			Timestamp: req.Timestamp,
			Velocity:  req.Velocity,
		}
		if req.Metrics != nil {
			pr.Likes = req.Metrics.Likes
			pr.Retweets = req.Metrics.Retweets
			pr.Replies = req.Metrics.Replies
			pr.EstimatedReach = req.Metrics.Impressions
		}
		return pushCommand{req: pr}, nil

	case "update_status":
		if req.ID == "" {
			return nil, apperrors.Wrap(apperrors.ErrBadRequest, "update_status requires id")
		}
		status := domain.QueueStatus(req.Status)
		if !domain.ValidQueueStatus(status) {
			return nil, apperrors.Wrap(apperrors.ErrBadRequest, fmt.Sprintf("unknown status %q", req.Status))
		}
		return updateStatusCommand{id: req.ID, status: status}, nil

	case "dismiss":
		if req.ID == "" {
			return nil, apperrors.Wrap(apperrors.ErrBadRequest, "dismiss requires id")
		}
		return dismissCommand{id: req.ID}, nil

	case "delete":
		if req.ID == "" {
			return nil, apperrors.Wrap(apperrors.ErrBadRequest, "delete requires id")
		}
		return deleteCommand{id: req.ID}, nil

	case "push_to_live":
		return pushToLiveCommand{}, nil

	case "clear_queue":
		return clearQueueCommand{}, nil

	default:
		return nil, apperrors.Wrap(apperrors.ErrBadRequest, fmt.Sprintf("unknown action %q", req.Action))
	}
}
