// Package store defines the persistence contracts for users and todos and
// provides the Postgres-backed implementations. Every todo operation is
// scoped by the owner's identity; a todo belonging to another user is
// reported exactly like a missing one.
package store

import (
	"context"
	"errors"

	"todo-api/internal/models"
)

var (
	// ErrNotFound covers both "no such row" and "row belongs to someone
	// else"; callers must not be able to tell the two apart.
	ErrNotFound          = errors.New("store: not found")
	ErrDuplicateUsername = errors.New("store: username already taken")
	ErrInvalidUsername   = errors.New("store: username must be 1-64 characters")
	ErrInvalidTitle      = errors.New("store: title must be 1-200 characters")
)

const (
	MaxUsernameLen = 64
	MaxTitleLen    = 200
)

type UserStore interface {
	// Create registers a new user. The password arrives already hashed.
	Create(ctx context.Context, username, hashedPassword string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	// Delete removes the user and, by cascade, all owned todos.
	Delete(ctx context.Context, id int64) error
}

type TodoStore interface {
	// List returns the owner's todos newest-first (id descending).
	// An owner with no todos gets an empty slice, not an error.
	List(ctx context.Context, ownerID int64) ([]models.Todo, error)
	Create(ctx context.Context, ownerID int64, title string) (*models.Todo, error)
	Get(ctx context.Context, ownerID, todoID int64) (*models.Todo, error)
	// Update applies the non-nil fields and leaves the rest untouched.
	Update(ctx context.Context, ownerID, todoID int64, title *string, done *bool) (*models.Todo, error)
	Delete(ctx context.Context, ownerID, todoID int64) error
}

var (
	_ UserStore = (*PostgresUserStore)(nil)
	_ UserStore = (*MemUserStore)(nil)
	_ TodoStore = (*PostgresTodoStore)(nil)
	_ TodoStore = (*MemTodoStore)(nil)
)

func validUsername(username string) bool {
	return len(username) >= 1 && len(username) <= MaxUsernameLen
}

func validTitle(title string) bool {
	return len(title) >= 1 && len(title) <= MaxTitleLen
}
