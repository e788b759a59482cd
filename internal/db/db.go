package db

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect initializes the database connection and runs migrations.
func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

// Shards are modelled as a shard_uid column: every row in channel_keys and
// sessions belongs to exactly one participant's logical namespace. Messages
// live in a shared collection keyed by (namespace, channel_id).
func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS channel_keys (
            shard_uid TEXT NOT NULL,
            channel_id TEXT NOT NULL,
            is_group BOOLEAN NOT NULL DEFAULT FALSE,
            members TEXT NOT NULL DEFAULT '',
            open BOOLEAN NOT NULL DEFAULT FALSE,
            unread BOOLEAN NOT NULL DEFAULT FALSE,
            PRIMARY KEY(shard_uid, channel_id)
        );`,
		`CREATE TABLE IF NOT EXISTS messages (
            namespace TEXT NOT NULL,
            channel_id TEXT NOT NULL,
            id TEXT NOT NULL,
            author_uid TEXT NOT NULL DEFAULT '',
            author_name TEXT NOT NULL DEFAULT '',
            ts TEXT NOT NULL DEFAULT '',
            content JSONB,
            deleted BOOLEAN NOT NULL DEFAULT FALSE,
            PRIMARY KEY(namespace, channel_id, id)
        );`,
		`CREATE TABLE IF NOT EXISTS sessions (
            sid TEXT PRIMARY KEY,
            shard_uid TEXT NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS sessions_shard_uid_idx ON sessions (shard_uid);`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	log.Println("database migrations applied")
	return nil
}
