package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/clopst/laravel-api-starter/internal/config"
	"github.com/clopst/laravel-api-starter/internal/models"
	"github.com/clopst/laravel-api-starter/internal/repo"
	"github.com/clopst/laravel-api-starter/internal/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthService issues, validates and revokes bearer tokens. The bearer string
// is a signed JWT whose ID (jti) points at a persisted token row; the row's
// expiry is authoritative and deleting it revokes the token immediately.
type AuthService struct {
	users       repo.UserStore
	tokens      repo.TokenStore
	secret      []byte
	tokenTTL    time.Duration
	rememberTTL time.Duration
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

func NewAuthService(users repo.UserStore, tokens repo.TokenStore, cfg *config.Config) *AuthService {
	return &AuthService{
		users:       users,
		tokens:      tokens,
		secret:      []byte(cfg.TokenSecret),
		tokenTTL:    cfg.TokenTTL,
		rememberTTL: cfg.RememberTTL,
	}
}

func (s *AuthService) Login(ctx context.Context, email, password string, remember bool) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, utils.NewAppError(http.StatusUnauthorized, "Email or password invalid.")
	}

	if err := comparePassword(user.PasswordHash, password); err != nil {
		return nil, utils.NewAppError(http.StatusUnauthorized, "Email or password invalid.")
	}

	ttl := s.tokenTTL
	if remember {
		ttl = s.rememberTTL
	}

	token := &models.Token{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return nil, utils.NewAppError(http.StatusInternalServerError, "Could not issue token")
	}

	signed, err := s.sign(token)
	if err != nil {
		return nil, utils.NewAppError(http.StatusInternalServerError, "Could not issue token")
	}

	return &LoginResult{Token: signed, ExpiresAt: token.ExpiresAt, User: user}, nil
}

// Authenticate resolves a bearer string to its user. It fails unless the
// signature checks out, the token row still exists and the row is unexpired.
func (s *AuthService) Authenticate(ctx context.Context, bearer string) (*models.User, *models.Token, error) {
	unauthorized := utils.NewAppError(http.StatusUnauthorized, "Unauthenticated.")

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(bearer, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid || claims.ID == "" {
		return nil, nil, unauthorized
	}

	token, err := s.tokens.Get(ctx, claims.ID)
	if err != nil {
		return nil, nil, unauthorized
	}
	if token.Expired(time.Now()) {
		return nil, nil, unauthorized
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		return nil, nil, unauthorized
	}
	return user, token, nil
}

// Logout revokes the token. Revoking an already-revoked token succeeds, so
// the logout flow always reports success.
func (s *AuthService) Logout(ctx context.Context, tokenID string) error {
	if err := s.tokens.Delete(ctx, tokenID); err != nil {
		return utils.NewAppError(http.StatusInternalServerError, "Could not revoke token")
	}
	return nil
}

// UpdateProfile applies the supplied fields to the token's own user. Email
// uniqueness excludes the user being updated.
func (s *AuthService) UpdateProfile(ctx context.Context, user *models.User, patch repo.UserPatch) (*models.User, error) {
	if patch.Email != nil {
		taken, err := s.users.EmailTaken(ctx, *patch.Email, user.ID)
		if err != nil {
			return nil, utils.NewAppError(http.StatusInternalServerError, "Could not update profile")
		}
		if taken {
			return nil, emailTakenError()
		}
	}

	updated, err := s.users.Update(ctx, user.ID, patch)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, emailTakenError()
		}
		return nil, utils.NewAppError(http.StatusInternalServerError, "Could not update profile")
	}
	return updated, nil
}

// ChangePassword verifies the current password before rehashing. A wrong
// current password is a 403 and leaves the stored hash untouched.
func (s *AuthService) ChangePassword(ctx context.Context, user *models.User, currentPassword, newPassword string) error {
	if err := comparePassword(user.PasswordHash, currentPassword); err != nil {
		return utils.NewAppError(http.StatusForbidden, "Invalid password")
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return utils.NewAppError(http.StatusInternalServerError, "Could not change password")
	}
	if err := s.users.SetPassword(ctx, user.ID, hash); err != nil {
		return utils.NewAppError(http.StatusInternalServerError, "Could not change password")
	}
	return nil
}

func (s *AuthService) sign(token *models.Token) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        token.ID,
		Subject:   token.UserID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(token.ExpiresAt),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func emailTakenError() *utils.AppError {
	return utils.NewValidationError(map[string][]string{
		"email": {"The email has already been taken."},
	})
}
