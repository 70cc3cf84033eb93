package store

import (
	"context"
	"database/sql"
	"errors"

	"todo-api/internal/models"
	"todo-api/pkg/logger"
)

type PostgresTodoStore struct {
	db *sql.DB
}

func NewPostgresTodoStore(db *sql.DB) *PostgresTodoStore {
	return &PostgresTodoStore{db: db}
}

func (s *PostgresTodoStore) List(ctx context.Context, ownerID int64) ([]models.Todo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, done, owner_id FROM todos WHERE owner_id = $1 ORDER BY id DESC`,
		ownerID)
	if err != nil {
		logger.Error(ctx, "Todo list failed", "error", err)
		return nil, err
	}
	defer rows.Close()
	todos := []models.Todo{}
	for rows.Next() {
		var t models.Todo
		if err := rows.Scan(&t.ID, &t.Title, &t.Done, &t.OwnerID); err != nil {
			logger.Error(ctx, "Todo scan failed", "error", err)
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

func (s *PostgresTodoStore) Create(ctx context.Context, ownerID int64, title string) (*models.Todo, error) {
	if !validTitle(title) {
		return nil, ErrInvalidTitle
	}
	todo := &models.Todo{Title: title, OwnerID: ownerID}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO todos (title, done, owner_id) VALUES ($1, FALSE, $2) RETURNING id`,
		title, ownerID).Scan(&todo.ID)
	if err != nil {
		logger.Error(ctx, "Todo insert failed", "error", err)
		return nil, err
	}
	return todo, nil
}

func (s *PostgresTodoStore) Get(ctx context.Context, ownerID, todoID int64) (*models.Todo, error) {
	var t models.Todo
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, done, owner_id FROM todos WHERE id = $1 AND owner_id = $2`,
		todoID, ownerID).Scan(&t.ID, &t.Title, &t.Done, &t.OwnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.Error(ctx, "Todo lookup failed", "error", err, "id", todoID)
		return nil, err
	}
	return &t, nil
}

func (s *PostgresTodoStore) Update(ctx context.Context, ownerID, todoID int64, title *string, done *bool) (*models.Todo, error) {
	if title != nil && !validTitle(*title) {
		return nil, ErrInvalidTitle
	}
	var t models.Todo
	err := s.db.QueryRowContext(ctx,
		`UPDATE todos SET title = COALESCE($1, title), done = COALESCE($2, done)
		 WHERE id = $3 AND owner_id = $4 RETURNING id, title, done, owner_id`,
		title, done, todoID, ownerID).Scan(&t.ID, &t.Title, &t.Done, &t.OwnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.Error(ctx, "Todo update failed", "error", err, "id", todoID)
		return nil, err
	}
	return &t, nil
}

func (s *PostgresTodoStore) Delete(ctx context.Context, ownerID, todoID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM todos WHERE id = $1 AND owner_id = $2`, todoID, ownerID)
	if err != nil {
		logger.Error(ctx, "Todo delete failed", "error", err, "id", todoID)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
