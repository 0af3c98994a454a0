package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upInit, downInit)
}

func upInit(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE tweets (
		id TEXT PRIMARY KEY,
		author TEXT NOT NULL,
		text TEXT NOT NULL,
		url TEXT NOT NULL,
		first_seen_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	);

	CREATE TABLE tweet_metrics (
		id BIGSERIAL PRIMARY KEY,
		tweet_id TEXT NOT NULL REFERENCES tweets (id) ON DELETE CASCADE,
		captured_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
		likes INTEGER NOT NULL DEFAULT 0,
		retweets INTEGER NOT NULL DEFAULT 0,
		replies INTEGER NOT NULL DEFAULT 0,
		estimated_reach INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE viral_queue (
		id UUID PRIMARY KEY,
		tweet_id TEXT NOT NULL REFERENCES tweets (id) ON DELETE CASCADE,
		velocity DOUBLE PRECISION NOT NULL DEFAULT 0,
		reach_at_detection INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
		pushed_at TIMESTAMP WITH TIME ZONE,
		dismissed_at TIMESTAMP WITH TIME ZONE
	);

	CREATE TABLE alerts (
		id UUID PRIMARY KEY,
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		priority TEXT NOT NULL DEFAULT 'medium',
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
	);
	`)
	if err != nil {
		return err
	}
	return nil
}

func downInit(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.Exec(`
	DROP TABLE alerts;
	DROP TABLE viral_queue;
	DROP TABLE tweet_metrics;
	DROP TABLE tweets;
	`)
	if err != nil {
		return err
	}
	return nil
}
