package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		username TEXT,
		role_id INT,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_unique ON users (LOWER(email))`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_username_unique ON users (username) WHERE username IS NOT NULL`,
	`CREATE TABLE IF NOT EXISTS employees (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		position TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS employees_user_unique ON employees (user_id)`,
	`CREATE TABLE IF NOT EXISTS tokens (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		expires_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS tokens_user_idx ON tokens (user_id)`,
}

// EnsureSchema creates the tables the server needs if they do not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration) error {
	for _, stmt := range schemaStatements {
		ctxExec, cancel := context.WithTimeout(ctx, timeout)
		_, err := pool.Exec(ctxExec, stmt)
		cancel()
		if err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
