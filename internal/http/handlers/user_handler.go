package handlers

import (
	"net/http"

	"github.com/clopst/laravel-api-starter/internal/listquery"
	"github.com/clopst/laravel-api-starter/internal/models"
	"github.com/clopst/laravel-api-starter/internal/repo"
	"github.com/clopst/laravel-api-starter/internal/services"
	"github.com/clopst/laravel-api-starter/internal/utils"
	"github.com/gin-gonic/gin"
)

// Authorizer decides whether the actor may mutate the target user. The
// default allows any authenticated caller, matching the source behavior;
// this is the single place a role or ownership check would plug in.
type Authorizer func(actor *models.User, targetID string) error

func AllowAll(*models.User, string) error { return nil }

type UserHandler struct {
	users     *services.UserService
	authorize Authorizer
}

type CreateUserRequest struct {
	Name                 string `json:"name" binding:"required"`
	Email                string `json:"email" binding:"required,email"`
	Password             string `json:"password" binding:"required,min=6"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
}

type UpdateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email" binding:"omitempty,email"`
}

type ChangeUserPasswordRequest struct {
	Password             string `json:"password" binding:"required,min=6"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
}

func NewUserHandler(users *services.UserService, authorize Authorizer) *UserHandler {
	if authorize == nil {
		authorize = AllowAll
	}
	return &UserHandler{users: users, authorize: authorize}
}

func (h *UserHandler) Index(c *gin.Context) {
	params, err := listquery.Parse(c.Request.URL.Query())
	if err != nil {
		fieldErr := err.(*listquery.FieldError)
		utils.RespondError(c, utils.NewValidationError(map[string][]string{
			fieldErr.Field: {fieldErr.Message},
		}))
		return
	}

	users, pagination, err := h.users.List(c.Request.Context(), params)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	// Pagination metadata is an empty object when paginate is off.
	var meta any = gin.H{}
	if params.Paginate {
		meta = pagination
	}

	utils.Success(c, "Successfully get all users", gin.H{
		"results":    users,
		"pagination": meta,
	})
}

func (h *UserHandler) Store(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindingError(c, err)
		return
	}

	user, err := h.users.Create(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Successfully created user", gin.H{"result": user})
}

func (h *UserHandler) Show(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Successfully get user", gin.H{"result": user})
}

func (h *UserHandler) Update(c *gin.Context) {
	actor, _ := CurrentUser(c)
	targetID := c.Param("id")
	if err := h.authorize(actor, targetID); err != nil {
		utils.RespondError(c, utils.NewAppError(http.StatusForbidden, "Forbidden"))
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindingError(c, err)
		return
	}

	user, err := h.users.Update(c.Request.Context(), targetID, repo.UserPatch{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Successfully updated user", gin.H{"result": user})
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	actor, _ := CurrentUser(c)
	targetID := c.Param("id")
	if err := h.authorize(actor, targetID); err != nil {
		utils.RespondError(c, utils.NewAppError(http.StatusForbidden, "Forbidden"))
		return
	}

	var req ChangeUserPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindingError(c, err)
		return
	}

	user, err := h.users.ChangePassword(c.Request.Context(), targetID, req.Password)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Password has been changed", gin.H{"user": user})
}

func (h *UserHandler) Destroy(c *gin.Context) {
	actor, _ := CurrentUser(c)
	targetID := c.Param("id")
	if err := h.authorize(actor, targetID); err != nil {
		utils.RespondError(c, utils.NewAppError(http.StatusForbidden, "Forbidden"))
		return
	}

	if err := h.users.Delete(c.Request.Context(), targetID); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Successfully deleted user", nil)
}
