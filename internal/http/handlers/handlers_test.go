package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/clopst/laravel-api-starter/internal/config"
	transport "github.com/clopst/laravel-api-starter/internal/http"
	"github.com/clopst/laravel-api-starter/internal/models"
	"github.com/clopst/laravel-api-starter/internal/repo"
	"github.com/clopst/laravel-api-starter/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "12345678"
)

type testEnv struct {
	router *gin.Engine
	users  *repo.MemoryUserStore
	tokens *repo.MemoryTokenStore
	admin  *models.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Env:         "test",
		TokenSecret: "test-secret",
		TokenTTL:    15 * time.Minute,
		RememberTTL: 4 * 7 * 24 * time.Hour,
	}

	users := repo.NewMemoryUserStore()
	tokens := repo.NewMemoryTokenStore()

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	require.NoError(t, err)
	admin := &models.User{Name: "Superadmin", Email: adminEmail, PasswordHash: string(hash)}
	require.NoError(t, users.Create(context.Background(), admin))

	router := transport.NewRouter(transport.Dependencies{
		Config:      cfg,
		AuthService: services.NewAuthService(users, tokens, cfg),
		UserService: services.NewUserService(users),
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	return &testEnv{router: router, users: users, tokens: tokens, admin: admin}
}

func (env *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()

	w := env.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	token, ok := body["token"].(string)
	require.True(t, ok, "login response must contain a token")
	return token
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	body := map[string]any{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
