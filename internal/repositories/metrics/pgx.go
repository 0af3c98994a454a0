package metrics

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openclaw/dramawatch/internal/domain"
	"github.com/openclaw/dramawatch/internal/repositories"
	"github.com/openclaw/dramawatch/pkg/logger"

	sq "github.com/Masterminds/squirrel"
)

type Pgx struct {
	pg     *pgxpool.Pool
	logger logger.Logger
}

func NewPgx(pg *pgxpool.Pool, logger logger.Logger) *Pgx {
	return &Pgx{
		pg:     pg,
		logger: logger.WithComponent("MetricsRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

func (p *Pgx) Append(ctx context.Context, sample domain.MetricsSample) error {
	query, args, err := repositories.SqBuilder.
		Insert("tweet_metrics").
		Columns("tweet_id", "captured_at", "likes", "retweets", "replies", "estimated_reach").
		Values(sample.PostID, sample.CapturedAt, sample.Likes, sample.Retweets, sample.Replies, sample.EstimatedReach).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	_, err = p.pg.Exec(ctx, query, args...)
	return err
}

func (p *Pgx) GetLatest(ctx context.Context, postID string, limit int) ([]*domain.MetricsSample, error) {
	query, args, err := repositories.SqBuilder.
		Select("id", "tweet_id", "captured_at", "likes", "retweets", "replies", "estimated_reach").
		From("tweet_metrics").
		Where(sq.Eq{"tweet_id": postID}).
		OrderBy("captured_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []*domain.MetricsSample
	for rows.Next() {
		var s domain.MetricsSample
		if err := rows.Scan(&s.ID, &s.PostID, &s.CapturedAt, &s.Likes, &s.Retweets, &s.Replies, &s.EstimatedReach); err != nil {
			return nil, err
		}
		samples = append(samples, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return samples, nil
}
