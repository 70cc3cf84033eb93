package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"todo-api/internal/middleware"
	"todo-api/internal/models"
	"todo-api/internal/store"
	"todo-api/pkg/logger"
)

// ListTodos returns the caller's todos newest-first. Cache-first as raw
// bytes; concurrent misses for the same owner collapse into one DB query.
func (h *Handler) ListTodos(c *gin.Context) {
	ctx := c.Request.Context()
	owner := middleware.CurrentUser(c)

	if b, ok := h.cache.GetList(ctx, owner.ID); ok {
		c.Data(http.StatusOK, "application/json", b)
		return
	}
	key := "todos:user:" + strconv.FormatInt(owner.ID, 10)
	v, err, _ := h.listGroup.Do(key, func() (interface{}, error) {
		todos, err := h.todos.List(ctx, owner.ID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(todos)
	})
	if err != nil {
		logger.Error(ctx, "Todo list failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	b := v.([]byte)
	c.Data(http.StatusOK, "application/json", b)
	h.cache.SetListAsync(owner.ID, b)
}

// CreateTodo inserts a todo owned by the caller. 422 on an invalid title.
func (h *Handler) CreateTodo(c *gin.Context) {
	ctx := c.Request.Context()
	owner := middleware.CurrentUser(c)
	var body struct {
		Title string `json:"title"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	todo, err := h.todos.Create(ctx, owner.ID, body.Title)
	if err != nil {
		if errors.Is(err, store.ErrInvalidTitle) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "field": "title"})
			return
		}
		logger.Error(ctx, "Todo create failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	h.notifyChange(c, "create", todo.ID, owner.ID)
	c.JSON(http.StatusCreated, todo)
}

// GetTodo returns one todo. A todo owned by someone else 404s exactly like
// a missing one.
func (h *Handler) GetTodo(c *gin.Context) {
	ctx := c.Request.Context()
	owner := middleware.CurrentUser(c)
	id, ok := parseID(c)
	if !ok {
		return
	}
	todo, err := h.todos.Get(ctx, owner.ID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		logger.Error(ctx, "Todo get failed", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, todo)
}

// UpdateTodo applies a partial update. Fields come from the JSON body
// {title?, done?}; ?title= and ?done= query parameters are also honored
// for clients of the original surface.
func (h *Handler) UpdateTodo(c *gin.Context) {
	ctx := c.Request.Context()
	owner := middleware.CurrentUser(c)
	id, ok := parseID(c)
	if !ok {
		return
	}
	var body struct {
		Title *string `json:"title"`
		Done  *bool   `json:"done"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
			return
		}
	}
	if v, present := c.GetQuery("title"); present {
		body.Title = &v
	}
	if v, present := c.GetQuery("done"); present {
		done, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "done must be a boolean", "field": "done"})
			return
		}
		body.Done = &done
	}
	todo, err := h.todos.Update(ctx, owner.ID, id, body.Title, body.Done)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		case errors.Is(err, store.ErrInvalidTitle):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "field": "title"})
		default:
			logger.Error(ctx, "Todo update failed", "error", err, "id", id)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}
	h.notifyChange(c, "update", todo.ID, owner.ID)
	c.JSON(http.StatusOK, todo)
}

// DeleteTodo removes one todo. Deleting an already-deleted id 404s again.
func (h *Handler) DeleteTodo(c *gin.Context) {
	ctx := c.Request.Context()
	owner := middleware.CurrentUser(c)
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.todos.Delete(ctx, owner.ID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		logger.Error(ctx, "Todo delete failed", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	h.notifyChange(c, "delete", id, owner.ID)
	c.Status(http.StatusNoContent)
}

// parseID reads the :id path parameter. Non-numeric ids are reported as
// 404, indistinguishable from ids that never existed.
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return 0, false
	}
	return id, true
}

// notifyChange drops the owner's cached list and emits a best-effort change
// event for the other replicas. Runs after the row is committed; a publish
// failure never fails the request.
func (h *Handler) notifyChange(c *gin.Context, action string, todoID, ownerID int64) {
	ctx := c.Request.Context()
	h.cache.Invalidate(ctx, ownerID)
	ev := &models.TodoEvent{Action: action, TodoID: todoID, OwnerID: ownerID, At: time.Now()}
	if err := h.events.PublishTodoEvent(ctx, ev); err != nil {
		logger.Warn(ctx, "Todo event publish failed", "error", err, "action", action)
	}
}
