package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type SeedUser struct {
	Name     string
	Email    string
	Password string
	RoleID   int
}

// EnsureSeedUsers inserts the bootstrap accounts if they are missing. There
// is no registration endpoint, so this is how the first admin gets created.
func EnsureSeedUsers(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration) error {
	seeds := []SeedUser{
		{Name: "Superadmin", Email: "admin@laravel.com", Password: "12345678", RoleID: 1},
		{Name: "John Doe", Email: "john.doe@laravel.com", Password: "12345678", RoleID: 2},
	}

	for _, seed := range seeds {
		exists, err := userExists(ctx, pool, timeout, seed.Email)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash seed password: %w", err)
		}

		ctxInsert, cancel := context.WithTimeout(ctx, timeout)
		_, err = pool.Exec(ctxInsert, `
			INSERT INTO users (id, name, email, role_id, password_hash)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.NewString(), seed.Name, seed.Email, seed.RoleID, string(hash))
		cancel()
		if err != nil {
			return fmt.Errorf("insert seed user %s: %w", seed.Email, err)
		}
	}

	return nil
}

func userExists(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration, email string) (bool, error) {
	ctxCheck, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	row := pool.QueryRow(ctxCheck, "SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))", email)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}
