package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openclaw/dramawatch/internal/domain"
	"github.com/openclaw/dramawatch/internal/repositories/queueitem"
	apperrors "github.com/openclaw/dramawatch/pkg/errors"
)

type queueItemResponse struct {
	ID               string     `json:"id"`
	TweetID          string     `json:"tweet_id"`
	Velocity         float64    `json:"velocity"`
	ReachAtDetection int        `json:"reach_at_detection"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	PushedAt         *time.Time `json:"pushed_at,omitempty"`
	DismissedAt      *time.Time `json:"dismissed_at,omitempty"`
	Tweet            tweetBrief `json:"tweet"`
}

type tweetBrief struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	URL       string    `json:"url"`
	Timestamp time.Time `json:"timestamp"`
}

type alertResponse struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (s *Server) handleListQueue(c *gin.Context) {
	status := domain.QueueStatus(c.DefaultQuery("status", string(domain.QueueStatusPending)))
	if !domain.ValidQueueStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}

	entries, err := s.queue.List(c.Request.Context(), status)
	if err != nil {
		s.logger.Error("Failed to list queue", "status", status, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	items := make([]queueItemResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, queueItemResponse{
			ID:               e.Item.ID,
			TweetID:          e.Item.PostID,
			Velocity:         e.Item.Velocity,
			ReachAtDetection: e.Item.ReachAtDetection,
			Status:           string(e.Item.Status),
			CreatedAt:        e.Item.CreatedAt,
			PushedAt:         e.Item.PushedAt,
			DismissedAt:      e.Item.DismissedAt,
			Tweet: tweetBrief{
				ID:        e.Post.ID,
				Author:    e.Post.Author,
				Text:      e.Post.Text,
				URL:       e.Post.URL,
				Timestamp: e.Post.FirstSeenAt,
			},
		})
	}

	c.JSON(http.StatusOK, gin.H{"queue": items})
}

func (s *Server) handleQueueAction(c *gin.Context) {
	var req queueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	cmd, err := parseCommand(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": apperrors.GetMessage(err)})
		return
	}

	ctx := c.Request.Context()

	switch cmd := cmd.(type) {
	case pushCommand:
		id, created, err := s.queue.Push(ctx, cmd.req)
		if err != nil {
			s.respondError(c, err)
			return
		}
		if !created {
			c.JSON(http.StatusOK, gin.H{"message": "Tweet already in queue", "queue_id": id})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Tweet added to viral queue", "queue_id": id})

	case updateStatusCommand:
		if err := s.queue.UpdateStatus(ctx, cmd.id, cmd.status); err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Status updated"})

	case dismissCommand:
		if err := s.queue.Dismiss(ctx, cmd.id); err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Tweet dismissed"})

	case deleteCommand:
		if err := s.queue.Delete(ctx, cmd.id); err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Queue item deleted"})

	case pushToLiveCommand:
		n, err := s.queue.PushToLive(ctx)
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Queue pushed to live", "count": n})

	case clearQueueCommand:
		n, err := s.queue.ClearQueue(ctx)
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Queue cleared", "count": n})
	}
}

func (s *Server) handleListAlerts(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	alerts, err := s.queue.ListAlerts(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to list alerts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	out := make([]alertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, alertResponse{
			ID:          a.ID,
			Type:        a.Type,
			Title:       a.Title,
			Description: a.Description,
			Priority:    a.Priority,
			CreatedAt:   a.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"alerts": out})
}

func (s *Server) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, queueitem.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "queue item not found"})
	case errors.Is(err, queueitem.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status transition"})
	default:
		s.logger.Error("Queue operation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
