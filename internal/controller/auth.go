package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"todo-api/internal/auth"
	"todo-api/internal/middleware"
	"todo-api/internal/store"
	"todo-api/pkg/logger"
)

type credentialsRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// Register creates a new user. 201 on success, 409 when the username is
// taken, 422 when the username is out of bounds.
func (h *Handler) Register(c *gin.Context) {
	ctx := c.Request.Context()
	var req credentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.Error(ctx, "Password hashing failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	user, err := h.users.Create(ctx, req.Username, hash)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateUsername):
			c.JSON(http.StatusConflict, gin.H{"error": "Username already taken"})
		case errors.Is(err, store.ErrInvalidUsername):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "field": "username"})
		default:
			logger.Error(ctx, "User create failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "username": user.Username})
}

// Login exchanges credentials for a bearer token. Accepts form or JSON
// bodies. Unknown username and wrong password get the identical 401.
func (h *Handler) Login(c *gin.Context) {
	ctx := c.Request.Context()
	var req credentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	token, err := h.auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrAuthenticationFailed) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect username or password"})
			return
		}
		logger.Error(ctx, "Login failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

// Me returns the authenticated caller's identity.
func (h *Handler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": user.ID, "username": user.Username})
}
