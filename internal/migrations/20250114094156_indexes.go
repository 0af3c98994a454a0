package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upIndexes, downIndexes)
}

func upIndexes(ctx context.Context, tx *sql.Tx) error {
	// The partial unique index is what enforces "at most one active detection
	// per tweet" under concurrent pushes; inserts racing past the
	// application-level check collapse into a 23505.
	_, err := tx.Exec(`
	CREATE UNIQUE INDEX viral_queue_active_tweet_idx
		ON viral_queue (tweet_id)
		WHERE status IN ('pending', 'pushed');

	CREATE INDEX tweet_metrics_tweet_captured_idx
		ON tweet_metrics (tweet_id, captured_at DESC);

	CREATE INDEX tweets_active_seen_idx
		ON tweets (is_active, first_seen_at);

	CREATE INDEX viral_queue_status_idx
		ON viral_queue (status, created_at DESC);
	`)
	if err != nil {
		return err
	}
	return nil
}

func downIndexes(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.Exec(`
	DROP INDEX viral_queue_status_idx;
	DROP INDEX tweets_active_seen_idx;
	DROP INDEX tweet_metrics_tweet_captured_idx;
	DROP INDEX viral_queue_active_tweet_idx;
	`)
	if err != nil {
		return err
	}
	return nil
}
