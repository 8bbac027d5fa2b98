package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clopst/laravel-api-starter/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TokenRepo struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewTokenRepo(pool *pgxpool.Pool, timeout time.Duration) *TokenRepo {
	return &TokenRepo{pool: pool, timeout: timeout}
}

func (r *TokenRepo) Create(ctx context.Context, token *models.Token) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO tokens (id, user_id, expires_at)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, token.ID, token.UserID, token.ExpiresAt)

	if err := row.Scan(&token.CreatedAt); err != nil {
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

func (r *TokenRepo) Get(ctx context.Context, id string) (*models.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, expires_at, created_at
		FROM tokens
		WHERE id::text = $1
	`, id)

	var token models.Token
	if err := row.Scan(&token.ID, &token.UserID, &token.ExpiresAt, &token.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get token: %w", err)
	}
	return &token, nil
}

// Delete revokes a token. Deleting a missing token is not an error, so logout
// stays idempotent.
func (r *TokenRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.pool.Exec(ctx, `DELETE FROM tokens WHERE id::text = $1`, id); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}
