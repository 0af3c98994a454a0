package alert

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openclaw/dramawatch/internal/domain"
	"github.com/openclaw/dramawatch/internal/repositories"
	"github.com/openclaw/dramawatch/pkg/logger"
)

type Pgx struct {
	pg     *pgxpool.Pool
	logger logger.Logger
}

func NewPgx(pg *pgxpool.Pool, logger logger.Logger) *Pgx {
	return &Pgx{
		pg:     pg,
		logger: logger.WithComponent("AlertRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

func (p *Pgx) Create(ctx context.Context, event domain.AlertEvent) error {
	query, args, err := repositories.SqBuilder.
		Insert("alerts").
		Columns("id", "type", "title", "description", "priority", "created_at").
		Values(event.ID, event.Type, event.Title, event.Description, event.Priority, event.CreatedAt).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	_, err = p.pg.Exec(ctx, query, args...)
	return err
}

func (p *Pgx) ListRecent(ctx context.Context, limit int) ([]*domain.AlertEvent, error) {
	query, args, err := repositories.SqBuilder.
		Select("id", "type", "title", "description", "priority", "created_at").
		From("alerts").
		OrderBy("created_at DESC").
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

	var events []*domain.AlertEvent
	for rows.Next() {
		var e domain.AlertEvent
		if err := rows.Scan(&e.ID, &e.Type, &e.Title, &e.Description, &e.Priority, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}
