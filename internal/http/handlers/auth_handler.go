package handlers

import (
	"net/http"

	"github.com/clopst/laravel-api-starter/internal/repo"
	"github.com/clopst/laravel-api-starter/internal/services"
	"github.com/clopst/laravel-api-starter/internal/utils"
	"github.com/gin-gonic/gin"
)

const expiresAtLayout = "2006-01-02 15:04:05"

type AuthHandler struct {
	auth *services.AuthService
}

type LoginRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=6"`
	RememberMe bool   `json:"rememberMe"`
}

type UpdateProfileRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email" binding:"omitempty,email"`
}

type ChangeOwnPasswordRequest struct {
	CurrentPassword         string `json:"current_password" binding:"required"`
	NewPassword             string `json:"new_password" binding:"required,min=6"`
	NewPasswordConfirmation string `json:"new_password_confirmation" binding:"required,eqfield=NewPassword"`
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindingError(c, err)
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, req.RememberMe)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Successfully logged in", gin.H{
		"token":     result.Token,
		"type":      "Bearer",
		"expiresAt": result.ExpiresAt.Format(expiresAtLayout),
		"user":      result.User,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	token, ok := CurrentToken(c)
	if !ok {
		utils.RespondError(c, utils.NewAppError(http.StatusUnauthorized, "Unauthenticated."))
		return
	}

	if err := h.auth.Logout(c.Request.Context(), token.ID); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Successfully logged out", nil)
}

func (h *AuthHandler) Info(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		utils.RespondError(c, utils.NewAppError(http.StatusUnauthorized, "Unauthenticated."))
		return
	}

	utils.Success(c, "", gin.H{"user": user})
}

// UpdateProfile always targets the token's own user; there is no way to
// supply a different id here.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		utils.RespondError(c, utils.NewAppError(http.StatusUnauthorized, "Unauthenticated."))
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindingError(c, err)
		return
	}

	updated, err := h.auth.UpdateProfile(c.Request.Context(), user, repo.UserPatch{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Profile successfully updated", gin.H{"user": updated})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		utils.RespondError(c, utils.NewAppError(http.StatusUnauthorized, "Unauthenticated."))
		return
	}

	var req ChangeOwnPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindingError(c, err)
		return
	}

	if err := h.auth.ChangePassword(c.Request.Context(), user, req.CurrentPassword, req.NewPassword); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Password has been changed", gin.H{"user": user})
}
