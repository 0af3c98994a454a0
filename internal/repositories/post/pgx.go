package post

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
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
		logger: logger.WithComponent("PostRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

func (p *Pgx) Upsert(ctx context.Context, post domain.Post) error {
	query, args, err := repositories.SqBuilder.
		Insert("tweets").
		Columns("id", "author", "text", "url", "first_seen_at", "is_active").
		Values(post.ID, post.Author, post.Text, post.URL, post.FirstSeenAt, true).
		Suffix("ON CONFLICT (id) DO UPDATE SET author = EXCLUDED.author, text = EXCLUDED.text, url = EXCLUDED.url").
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	_, err = p.pg.Exec(ctx, query, args...)
	return err
}

func (p *Pgx) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	query, args, err := repositories.SqBuilder.
		Select("id", "author", "text", "url", "first_seen_at", "is_active").
		From("tweets").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	var post domain.Post
	err = p.pg.QueryRow(ctx, query, args...).
		Scan(&post.ID, &post.Author, &post.Text, &post.URL, &post.FirstSeenAt, &post.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &post, nil
}

func (p *Pgx) ListActiveSince(ctx context.Context, cutoff time.Time) ([]*domain.Post, error) {
	query, args, err := repositories.SqBuilder.
		Select("id", "author", "text", "url", "first_seen_at", "is_active").
		From("tweets").
		Where(sq.Eq{"is_active": true}).
		Where(sq.GtOrEq{"first_seen_at": cutoff}).
		OrderBy("first_seen_at DESC").
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []*domain.Post
	for rows.Next() {
		var post domain.Post
		if err := rows.Scan(&post.ID, &post.Author, &post.Text, &post.URL, &post.FirstSeenAt, &post.Active); err != nil {
			return nil, err
		}
		posts = append(posts, &post)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}

func (p *Pgx) Deactivate(ctx context.Context, id string) error {
	query, args, err := repositories.SqBuilder.
		Update("tweets").
		Set("is_active", false).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	_, err = p.pg.Exec(ctx, query, args...)
	return err
}

func (p *Pgx) DeactivateOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query, args, err := repositories.SqBuilder.
		Update("tweets").
		Set("is_active", false).
		Where(sq.Eq{"is_active": true}).
		Where(sq.Lt{"first_seen_at": cutoff}).
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
