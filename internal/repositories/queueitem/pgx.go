package queueitem

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
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
		logger: logger.WithComponent("QueueItemRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

var itemColumns = []string{"id", "tweet_id", "velocity", "reach_at_detection", "status", "created_at", "pushed_at", "dismissed_at"}

func (p *Pgx) Insert(ctx context.Context, item domain.QueueItem) error {
	query, args, err := repositories.SqBuilder.
		Insert("viral_queue").
		Columns("id", "tweet_id", "velocity", "reach_at_detection", "status", "created_at").
		Values(item.ID, item.PostID, item.Velocity, item.ReachAtDetection, item.Status, item.CreatedAt).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	_, err = p.pg.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrActiveExists
		}
		return err
	}
	return nil
}

func (p *Pgx) GetByID(ctx context.Context, id string) (*domain.QueueItem, error) {
	query, args, err := repositories.SqBuilder.
		Select(itemColumns...).
		From("viral_queue").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	return p.scanItem(p.pg.QueryRow(ctx, query, args...))
}

func (p *Pgx) FindActiveByPostID(ctx context.Context, postID string) (*domain.QueueItem, error) {
	query, args, err := repositories.SqBuilder.
		Select(itemColumns...).
		From("viral_queue").
		Where(sq.Eq{"tweet_id": postID}).
		Where(sq.Eq{"status": []domain.QueueStatus{domain.QueueStatusPending, domain.QueueStatusPushed}}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	return p.scanItem(p.pg.QueryRow(ctx, query, args...))
}

func (p *Pgx) scanItem(row pgx.Row) (*domain.QueueItem, error) {
	var item domain.QueueItem
	err := row.Scan(&item.ID, &item.PostID, &item.Velocity, &item.ReachAtDetection,
		&item.Status, &item.CreatedAt, &item.PushedAt, &item.DismissedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (p *Pgx) ListByStatus(ctx context.Context, status domain.QueueStatus) ([]*domain.QueueEntry, error) {
	query, args, err := repositories.SqBuilder.
		Select(
			"q.id", "q.tweet_id", "q.velocity", "q.reach_at_detection", "q.status",
			"q.created_at", "q.pushed_at", "q.dismissed_at",
			"t.author", "t.text", "t.url", "t.first_seen_at", "t.is_active",
		).
		From("viral_queue q").
		Join("tweets t ON t.id = q.tweet_id").
		Where(sq.Eq{"q.status": status}).
		OrderBy("q.created_at DESC").
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.QueueEntry
	for rows.Next() {
		var e domain.QueueEntry
		err := rows.Scan(
			&e.Item.ID, &e.Item.PostID, &e.Item.Velocity, &e.Item.ReachAtDetection, &e.Item.Status,
			&e.Item.CreatedAt, &e.Item.PushedAt, &e.Item.DismissedAt,
			&e.Post.Author, &e.Post.Text, &e.Post.URL, &e.Post.FirstSeenAt, &e.Post.Active,
		)
		if err != nil {
			return nil, err
		}
		e.Post.ID = e.Item.PostID
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func (p *Pgx) Transition(ctx context.Context, id string, to domain.QueueStatus, at time.Time, from ...domain.QueueStatus) error {
	builder := repositories.SqBuilder.
		Update("viral_queue").
		Set("status", to).
		Where(sq.Eq{"id": id}).
		Where(sq.Eq{"status": from})

	switch to {
	case domain.QueueStatusPushed:
		builder = builder.Set("pushed_at", at)
	case domain.QueueStatusDismissed:
		builder = builder.Set("dismissed_at", at)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	result, err := p.pg.Exec(ctx, query, args...)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		if _, err := p.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrInvalidTransition
	}

	return nil
}

func (p *Pgx) PushAllPending(ctx context.Context, at time.Time) (int64, error) {
	query, args, err := repositories.SqBuilder.
		Update("viral_queue").
		Set("status", domain.QueueStatusPushed).
		Set("pushed_at", at).
		Where(sq.Eq{"status": domain.QueueStatusPending}).
		ToSql()
	if err != nil {
		return 0, repositories.ErrBadQuery
	}

	tx, err := p.pg.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	return result.RowsAffected(), nil
}

func (p *Pgx) DeleteAllPending(ctx context.Context) (int64, error) {
	query, args, err := repositories.SqBuilder.
		Delete("viral_queue").
		Where(sq.Eq{"status": domain.QueueStatusPending}).
		ToSql()
	if err != nil {
		return 0, repositories.ErrBadQuery
	}

	result, err := p.pg.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected(), nil
}

func (p *Pgx) Delete(ctx context.Context, id string) error {
	query, args, err := repositories.SqBuilder.
		Delete("viral_queue").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	result, err := p.pg.Exec(ctx, query, args...)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
