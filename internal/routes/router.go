package routes

import (
	"github.com/gin-gonic/gin"

	"todo-api/internal/auth"
	"todo-api/internal/controller"
	"todo-api/internal/middleware"
)

func Router(h *controller.Handler, a *auth.Authenticator) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())

	// Health for load balancers and K8s probes
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)

	// Public: no auth
	authGroup := router.Group("/auth")
	authGroup.POST("/register", h.Register)
	authGroup.POST("/login", h.Login)

	// Protected: bearer token required
	api := router.Group("")
	api.Use(middleware.Auth(a))
	{
		api.GET("/me", h.Me)
		api.GET("/todos", h.ListTodos)
		api.POST("/todos", h.CreateTodo)
		api.GET("/todos/:id", h.GetTodo)
		api.PATCH("/todos/:id", h.UpdateTodo)
		api.DELETE("/todos/:id", h.DeleteTodo)
	}

	return router
}
