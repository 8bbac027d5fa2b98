package handlers

import (
	"github.com/clopst/laravel-api-starter/internal/http/middleware"
	"github.com/clopst/laravel-api-starter/internal/models"
	"github.com/gin-gonic/gin"
)

// CurrentUser returns the identity resolved by the auth middleware.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

// CurrentToken returns the token row backing the current request.
func CurrentToken(c *gin.Context) (*models.Token, bool) {
	value, ok := c.Get(middleware.ContextTokenKey)
	if !ok {
		return nil, false
	}
	token, ok := value.(*models.Token)
	return token, ok
}
