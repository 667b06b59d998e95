package db

import "database/sql"

// MigrateUp creates the service's tables if they do not exist yet. The
// schema is small enough that idempotent DDL beats a migration framework.
func MigrateUp(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS tokens (
    uid        TEXT PRIMARY KEY,
    access     TEXT NOT NULL,
    refresh    TEXT NOT NULL,
    exp        TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ DEFAULT now()
)`,
		`CREATE TABLE IF NOT EXISTS identity_snapshots (
    resource_key TEXT NOT NULL,
    uid          TEXT NOT NULL,
    ids          JSONB NOT NULL,
    updated_at   TIMESTAMPTZ DEFAULT now(),
    PRIMARY KEY (resource_key, uid)
)`,
		`CREATE TABLE IF NOT EXISTS push_subscriptions (
    id         SERIAL PRIMARY KEY,
    uid        TEXT NOT NULL,
    endpoint   TEXT NOT NULL UNIQUE,
    auth       TEXT NOT NULL,
    p256dh     TEXT NOT NULL,
    created_at TIMESTAMPTZ DEFAULT now()
)`,
		// The refresh cron scans for soon-to-expire tokens every cycle.
		`CREATE INDEX IF NOT EXISTS idx_tokens_exp ON tokens(exp)`,
		`CREATE INDEX IF NOT EXISTS idx_push_subscriptions_uid ON push_subscriptions(uid)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
