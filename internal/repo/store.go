package repo

import (
	"context"
	"errors"

	"github.com/clopst/laravel-api-starter/internal/listquery"
	"github.com/clopst/laravel-api-starter/internal/models"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already taken")
)

// UserPatch is an explicit partial update: only non-nil fields are written.
type UserPatch struct {
	Name     *string
	Email    *string
	Username *string
}

func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Username == nil
}

// UserStore persists user records. Create and Update surface uniqueness
// violations as ErrDuplicateEmail, including the races the check-then-write
// validation cannot catch.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id string, patch UserPatch) (*models.User, error)
	Delete(ctx context.Context, id string) error
	SetPassword(ctx context.Context, id, passwordHash string) error
	EmailTaken(ctx context.Context, email, excludeID string) (bool, error)
	List(ctx context.Context, params listquery.Params) ([]models.User, int, error)
}

// TokenStore persists access token rows. Delete is idempotent.
type TokenStore interface {
	Create(ctx context.Context, token *models.Token) error
	Get(ctx context.Context, id string) (*models.Token, error)
	Delete(ctx context.Context, id string) error
}
