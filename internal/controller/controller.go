// Package controller holds the HTTP handlers. Errors from the lower layers
// are mapped to statuses here and nowhere else; nothing internal crosses
// the boundary.
package controller

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/singleflight"

	"todo-api/internal/auth"
	"todo-api/internal/cache"
	"todo-api/internal/queue"
	"todo-api/internal/store"
)

type Handler struct {
	users     store.UserStore
	todos     store.TodoStore
	auth      *auth.Authenticator
	cache     *cache.Cache
	events    *queue.Publisher
	db        *sql.DB
	listGroup singleflight.Group
}

// New wires the handler. cache, events and db may be nil (disabled cache,
// no broker, store without a SQL backend).
func New(users store.UserStore, todos store.TodoStore, a *auth.Authenticator, c *cache.Cache, events *queue.Publisher, db *sql.DB) *Handler {
	return &Handler{
		users:  users,
		todos:  todos,
		auth:   a,
		cache:  c,
		events: events,
		db:     db,
	}
}

// Health returns 200 if the process is alive. Used by load balancers.
func (h *Handler) Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// Ready returns 200 if the persistence backend is reachable. Used by K8s
// readiness probes. A disabled cache does not fail readiness.
func (h *Handler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database ping failed"})
			return
		}
	}
	if err := h.cache.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "redis ping failed"})
		return
	}
	c.String(http.StatusOK, "OK")
}
