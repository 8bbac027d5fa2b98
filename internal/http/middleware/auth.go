package middleware

import (
	"net/http"
	"strings"

	"github.com/clopst/laravel-api-starter/internal/services"
	"github.com/clopst/laravel-api-starter/internal/utils"
	"github.com/gin-gonic/gin"
)

// Context keys for the identity resolved by TokenAuth. Handlers receive the
// resolved user explicitly through these instead of re-reading the header.
const (
	ContextUserKey  = "auth_user"
	ContextTokenKey = "auth_token"
)

// TokenAuth authenticates the bearer token against the token store and puts
// the resolved user and token row on the request context.
func TokenAuth(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			utils.RespondError(c, utils.NewAppError(http.StatusUnauthorized, "Unauthenticated."))
			c.Abort()
			return
		}

		bearer := strings.TrimPrefix(header, "Bearer ")
		user, token, err := auth.Authenticate(c.Request.Context(), bearer)
		if err != nil {
			utils.RespondError(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextTokenKey, token)
		c.Next()
	}
}
