package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/clopst/laravel-api-starter/internal/listquery"
	"github.com/clopst/laravel-api-starter/internal/models"
	"github.com/clopst/laravel-api-starter/internal/repo"
	"github.com/clopst/laravel-api-starter/internal/utils"
)

// UserService covers the admin-style user CRUD and the listing.
type UserService struct {
	users repo.UserStore
}

func NewUserService(users repo.UserStore) *UserService {
	return &UserService{users: users}
}

func (s *UserService) Create(ctx context.Context, name, email, password string) (*models.User, error) {
	taken, err := s.users.EmailTaken(ctx, email, "")
	if err != nil {
		return nil, utils.NewAppError(http.StatusInternalServerError, "Could not create user")
	}
	if taken {
		return nil, emailTakenError()
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, utils.NewAppError(http.StatusInternalServerError, "Could not create user")
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// The unique index catches the create that slipped past the
		// check under a concurrent identical submission.
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, emailTakenError()
		}
		return nil, utils.NewAppError(http.StatusInternalServerError, "Could not create user")
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, notFoundError()
		}
		return nil, utils.NewAppError(http.StatusInternalServerError, "Could not get user")
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id string, patch repo.UserPatch) (*models.User, error) {
	if patch.Email != nil {
		taken, err := s.users.EmailTaken(ctx, *patch.Email, id)
		if err != nil {
			return nil, utils.NewAppError(http.StatusInternalServerError, "Could not update user")
		}
		if taken {
			return nil, emailTakenError()
		}
	}

	user, err := s.users.Update(ctx, id, patch)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return nil, notFoundError()
		case errors.Is(err, repo.ErrDuplicateEmail):
			return nil, emailTakenError()
		default:
			return nil, utils.NewAppError(http.StatusInternalServerError, "Could not update user")
		}
	}
	return user, nil
}

// ChangePassword is the admin variant: no current-password check.
func (s *UserService) ChangePassword(ctx context.Context, id, password string) (*models.User, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return nil, utils.NewAppError(http.StatusInternalServerError, "Could not change password")
	}

	if err := s.users.SetPassword(ctx, id, hash); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, notFoundError()
		}
		return nil, utils.NewAppError(http.StatusInternalServerError, "Could not change password")
	}
	return s.Get(ctx, id)
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundError()
		}
		return utils.NewAppError(http.StatusInternalServerError, "Could not delete user")
	}
	return nil
}

// List runs the listing through the store and computes the pagination
// metadata from the filtered total and the returned slice.
func (s *UserService) List(ctx context.Context, params listquery.Params) ([]models.User, listquery.Pagination, error) {
	users, total, err := s.users.List(ctx, params)
	if err != nil {
		return nil, listquery.Pagination{}, utils.NewAppError(http.StatusInternalServerError, "Could not list users")
	}

	var pagination listquery.Pagination
	if params.Paginate {
		pagination = listquery.NewPagination(params, total, len(users))
	}
	return users, pagination, nil
}

func notFoundError() *utils.AppError {
	return utils.NewAppError(http.StatusNotFound, "User not found")
}
