package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/clopst/laravel-api-starter/internal/listquery"
	"github.com/clopst/laravel-api-starter/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type UserRepo struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewUserRepo(pool *pgxpool.Pool, timeout time.Duration) *UserRepo {
	return &UserRepo{pool: pool, timeout: timeout}
}

func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, name, email, username, role_id, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, user.ID, user.Name, user.Email, user.Username, user.RoleID, user.PasswordHash)

	if err := row.Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, username, role_id, password_hash, created_at, updated_at
		FROM users
		WHERE id::text = $1
	`, id)
	return scanUser(row)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, username, role_id, password_hash, created_at, updated_at
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`, email)
	return scanUser(row)
}

func (r *UserRepo) Update(ctx context.Context, id string, patch UserPatch) (*models.User, error) {
	if patch.Empty() {
		return r.GetByID(ctx, id)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	sets := []string{}
	args := []any{}
	index := 1

	if patch.Name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", index))
		args = append(args, *patch.Name)
		index++
	}
	if patch.Email != nil {
		sets = append(sets, fmt.Sprintf("email = $%d", index))
		args = append(args, *patch.Email)
		index++
	}
	if patch.Username != nil {
		sets = append(sets, fmt.Sprintf("username = $%d", index))
		args = append(args, *patch.Username)
		index++
	}
	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf(`
		UPDATE users
		SET %s
		WHERE id::text = $%d
		RETURNING id, name, email, username, role_id, password_hash, created_at, updated_at
	`, strings.Join(sets, ", "), index)
	args = append(args, id)

	user, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return user, nil
}

func (r *UserRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id::text = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepo) SetPassword(ctx context.Context, id, passwordHash string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd, err := r.pool.Exec(ctx, `
		UPDATE users
		SET password_hash = $1, updated_at = NOW()
		WHERE id::text = $2
	`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepo) EmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM users
			WHERE LOWER(email) = LOWER($1) AND id::text <> $2
		)
	`, email, excludeID)

	var taken bool
	if err := row.Scan(&taken); err != nil {
		return false, fmt.Errorf("check email taken: %w", err)
	}
	return taken, nil
}

// List applies the search filter, counts the filtered set, then fetches the
// sorted (and, when asked to paginate, sliced) page. The employee projection
// is a LEFT JOIN and never affects filtering or the count.
func (r *UserRepo) List(ctx context.Context, params listquery.Params) ([]models.User, int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	whereSQL := ""
	args := []any{}
	if params.Search != "" {
		whereSQL = `WHERE (u.name ILIKE $1 OR u.email ILIKE $1 OR u.username ILIKE $1)`
		args = append(args, "%"+params.Search+"%")
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM users u %s`, whereSQL)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	columns := `u.id, u.name, u.email, u.username, u.role_id, u.created_at, u.updated_at`
	join := ""
	if params.WithEmployee {
		columns += `, e.id, e.user_id, e.first_name, e.last_name, e.position, e.created_at, e.updated_at`
		join = `LEFT JOIN employees e ON e.user_id = u.id`
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM users u
		%s
		%s
		ORDER BY %s
	`, columns, join, whereSQL, params.OrderBy("u."))
	if params.Paginate {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", params.PerPage, params.Offset())
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	results := []models.User{}
	for rows.Next() {
		var user models.User
		dest := []any{
			&user.ID,
			&user.Name,
			&user.Email,
			&user.Username,
			&user.RoleID,
			&user.CreatedAt,
			&user.UpdatedAt,
		}

		var employeeID, employeeUserID, firstName, lastName, position *string
		var employeeCreated, employeeUpdated *time.Time
		if params.WithEmployee {
			dest = append(dest, &employeeID, &employeeUserID, &firstName, &lastName, &position, &employeeCreated, &employeeUpdated)
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}

		if employeeID != nil {
			user.Employee = &models.Employee{
				ID:        *employeeID,
				UserID:    *employeeUserID,
				FirstName: *firstName,
				LastName:  *lastName,
				Position:  position,
				CreatedAt: *employeeCreated,
				UpdatedAt: *employeeUpdated,
			}
		}
		results = append(results, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate users: %w", err)
	}

	return results, total, nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Username,
		&user.RoleID,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
