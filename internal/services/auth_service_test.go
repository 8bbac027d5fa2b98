package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/clopst/laravel-api-starter/internal/config"
	"github.com/clopst/laravel-api-starter/internal/models"
	"github.com/clopst/laravel-api-starter/internal/repo"
	"github.com/clopst/laravel-api-starter/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testEmail    = "admin@example.com"
	testPassword = "12345678"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:         "test",
		TokenSecret: "test-secret",
		TokenTTL:    15 * time.Minute,
		RememberTTL: 4 * 7 * 24 * time.Hour,
	}
}

func newTestAuthService(t *testing.T) (*AuthService, *repo.MemoryUserStore, *repo.MemoryTokenStore, *models.User) {
	t.Helper()

	users := repo.NewMemoryUserStore()
	tokens := repo.NewMemoryTokenStore()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{Name: "Superadmin", Email: testEmail, PasswordHash: string(hash)}
	require.NoError(t, users.Create(context.Background(), user))

	return NewAuthService(users, tokens, testConfig()), users, tokens, user
}

func requireAppError(t *testing.T, err error, status int) *utils.AppError {
	t.Helper()
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, status, appErr.Status)
	return appErr
}

func TestLoginSuccess(t *testing.T) {
	auth, _, _, user := newTestAuthService(t)

	result, err := auth.Login(context.Background(), testEmail, testPassword, false)
	require.NoError(t, err)

	assert.NotEmpty(t, result.Token)
	assert.Equal(t, user.ID, result.User.ID)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), result.ExpiresAt, 5*time.Second)
}

func TestLoginRememberMeExtendsExpiry(t *testing.T) {
	auth, _, _, _ := newTestAuthService(t)

	result, err := auth.Login(context.Background(), testEmail, testPassword, true)
	require.NoError(t, err)

	assert.WithinDuration(t, time.Now().Add(28*24*time.Hour), result.ExpiresAt, 5*time.Second)
}

func TestLoginWrongPassword(t *testing.T) {
	auth, _, _, _ := newTestAuthService(t)

	_, err := auth.Login(context.Background(), testEmail, "wrong-password", false)
	appErr := requireAppError(t, err, http.StatusUnauthorized)
	assert.Equal(t, "Email or password invalid.", appErr.Message)
}

func TestLoginUnknownEmail(t *testing.T) {
	auth, _, _, _ := newTestAuthService(t)

	_, err := auth.Login(context.Background(), "nobody@example.com", testPassword, false)
	requireAppError(t, err, http.StatusUnauthorized)
}

func TestAuthenticateResolvesUser(t *testing.T) {
	auth, _, _, user := newTestAuthService(t)

	result, err := auth.Login(context.Background(), testEmail, testPassword, false)
	require.NoError(t, err)

	resolved, token, err := auth.Authenticate(context.Background(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
	assert.Equal(t, user.ID, token.UserID)
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	auth, _, _, _ := newTestAuthService(t)

	_, _, err := auth.Authenticate(context.Background(), "not-a-token")
	requireAppError(t, err, http.StatusUnauthorized)
}

func TestAuthenticateRejectsRevokedToken(t *testing.T) {
	auth, _, _, _ := newTestAuthService(t)

	result, err := auth.Login(context.Background(), testEmail, testPassword, false)
	require.NoError(t, err)

	_, token, err := auth.Authenticate(context.Background(), result.Token)
	require.NoError(t, err)

	require.NoError(t, auth.Logout(context.Background(), token.ID))

	_, _, err = auth.Authenticate(context.Background(), result.Token)
	requireAppError(t, err, http.StatusUnauthorized)
}

func TestLogoutIsIdempotent(t *testing.T) {
	auth, _, _, _ := newTestAuthService(t)

	result, err := auth.Login(context.Background(), testEmail, testPassword, false)
	require.NoError(t, err)

	_, token, err := auth.Authenticate(context.Background(), result.Token)
	require.NoError(t, err)

	require.NoError(t, auth.Logout(context.Background(), token.ID))
	require.NoError(t, auth.Logout(context.Background(), token.ID))
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	users := repo.NewMemoryUserStore()
	tokens := repo.NewMemoryTokenStore()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), &models.User{
		Name: "Expired", Email: testEmail, PasswordHash: string(hash),
	}))

	cfg := testConfig()
	cfg.TokenTTL = -time.Minute
	auth := NewAuthService(users, tokens, cfg)

	result, err := auth.Login(context.Background(), testEmail, testPassword, false)
	require.NoError(t, err)

	_, _, err = auth.Authenticate(context.Background(), result.Token)
	requireAppError(t, err, http.StatusUnauthorized)
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	auth, users, _, user := newTestAuthService(t)

	err := auth.ChangePassword(context.Background(), user, "wrong-password", "newsecret")
	appErr := requireAppError(t, err, http.StatusForbidden)
	assert.Equal(t, "Invalid password", appErr.Message)

	// The stored hash must be untouched.
	stored, err := users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.PasswordHash, stored.PasswordHash)
}

func TestChangePasswordSuccess(t *testing.T) {
	auth, _, _, user := newTestAuthService(t)

	require.NoError(t, auth.ChangePassword(context.Background(), user, testPassword, "newsecret"))

	_, err := auth.Login(context.Background(), testEmail, "newsecret", false)
	require.NoError(t, err)

	_, err = auth.Login(context.Background(), testEmail, testPassword, false)
	requireAppError(t, err, http.StatusUnauthorized)
}

func TestUpdateProfilePartial(t *testing.T) {
	auth, _, _, user := newTestAuthService(t)

	name := "New Name"
	updated, err := auth.UpdateProfile(context.Background(), user, repo.UserPatch{Name: &name})
	require.NoError(t, err)

	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, testEmail, updated.Email, "email must be untouched")
}

func TestUpdateProfileDuplicateEmail(t *testing.T) {
	auth, users, _, user := newTestAuthService(t)

	require.NoError(t, users.Create(context.Background(), &models.User{
		Name: "Other", Email: "other@example.com", PasswordHash: "x",
	}))

	email := "OTHER@example.com"
	_, err := auth.UpdateProfile(context.Background(), user, repo.UserPatch{Email: &email})
	appErr := requireAppError(t, err, http.StatusUnprocessableEntity)
	assert.Contains(t, appErr.Errors, "email")
}

func TestUpdateProfileOwnEmailNotDuplicate(t *testing.T) {
	auth, _, _, user := newTestAuthService(t)

	email := testEmail
	updated, err := auth.UpdateProfile(context.Background(), user, repo.UserPatch{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, testEmail, updated.Email)
}
