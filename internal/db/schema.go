package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the tables and uniqueness indexes on boot when they
// are missing. The partial index on stores.owner_id is what makes the
// one-store-per-owner rule hold on every creation path; the composite index
// on ratings is what makes rating submission an atomic upsert.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            UUID PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			address       TEXT NOT NULL DEFAULT '',
			role          TEXT NOT NULL DEFAULT 'User',
			created_at    TIMESTAMPTZ NOT NULL,
			updated_at    TIMESTAMPTZ NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_email_uniq ON users (email)`,

		`CREATE TABLE IF NOT EXISTS stores (
			id         UUID PRIMARY KEY,
			name       TEXT NOT NULL,
			email      TEXT NOT NULL,
			address    TEXT NOT NULL DEFAULT '',
			owner_id   UUID NULL REFERENCES users (id),
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS stores_email_uniq ON stores (email)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS stores_owner_uniq ON stores (owner_id) WHERE owner_id IS NOT NULL`,

		`CREATE TABLE IF NOT EXISTS ratings (
			id         UUID PRIMARY KEY,
			user_id    UUID NOT NULL REFERENCES users (id),
			store_id   UUID NOT NULL REFERENCES stores (id),
			rating     INT NOT NULL CHECK (rating BETWEEN 1 AND 5),
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ratings_user_store_uniq ON ratings (user_id, store_id)`,
	}

	for _, stmt := range stmts {
		_, err := pool.Exec(ctx, stmt)

		if err != nil {
			return err
		}
	}

	return nil
}
