package http

import (
	"log/slog"
	"reflect"
	"strings"

	"github.com/clopst/laravel-api-starter/internal/config"
	"github.com/clopst/laravel-api-starter/internal/http/handlers"
	"github.com/clopst/laravel-api-starter/internal/http/middleware"
	"github.com/clopst/laravel-api-starter/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type Dependencies struct {
	Config      *config.Config
	AuthService *services.AuthService
	UserService *services.UserService
	Logger      *slog.Logger

	// Authorize guards the admin-style user mutations. Nil means the
	// default allow-any-valid-token behavior.
	Authorize handlers.Authorizer
}

func NewRouter(deps Dependencies) *gin.Engine {
	useJSONFieldNames()

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(deps.Logger))
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(deps.Config.AllowedOrigins))

	authHandler := handlers.NewAuthHandler(deps.AuthService)
	userHandler := handlers.NewUserHandler(deps.UserService, deps.Authorize)

	router.GET("/healthz", handlers.Health)

	api := router.Group("/api")
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.TokenAuth(deps.AuthService))
	{
		protected.GET("/auth/logout", authHandler.Logout)
		protected.GET("/auth/info", authHandler.Info)
		protected.POST("/auth/update-profile", authHandler.UpdateProfile)
		protected.POST("/auth/change-password", authHandler.ChangePassword)

		protected.GET("/users", userHandler.Index)
		protected.POST("/users", userHandler.Store)
		protected.GET("/users/:id", userHandler.Show)
		protected.PUT("/users/:id", userHandler.Update)
		protected.POST("/users/:id/change-password", userHandler.ChangePassword)
		protected.DELETE("/users/:id", userHandler.Destroy)
	}

	return router
}

// useJSONFieldNames makes binding errors report json tag names, so the
// per-field validation details match the request body.
func useJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}
