package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"todo-api/internal/models"
	"todo-api/pkg/logger"
)

// uniqueViolation is the Postgres error code for a unique constraint hit.
const uniqueViolation = "23505"

type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) Create(ctx context.Context, username, hashedPassword string) (*models.User, error) {
	if !validUsername(username) {
		return nil, ErrInvalidUsername
	}
	user := &models.User{Username: username, HashedPassword: hashedPassword}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users (username, hashed_password) VALUES ($1, $2) RETURNING id`,
		username, hashedPassword).Scan(&user.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, ErrDuplicateUsername
		}
		logger.Error(ctx, "User insert failed", "error", err)
		return nil, err
	}
	return user, nil
}

func (s *PostgresUserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, hashed_password FROM users WHERE username = $1`,
		username).Scan(&user.ID, &user.Username, &user.HashedPassword)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.Error(ctx, "User lookup failed", "error", err)
		return nil, err
	}
	return &user, nil
}

func (s *PostgresUserStore) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, hashed_password FROM users WHERE id = $1`,
		id).Scan(&user.ID, &user.Username, &user.HashedPassword)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.Error(ctx, "User lookup failed", "error", err)
		return nil, err
	}
	return &user, nil
}

func (s *PostgresUserStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		logger.Error(ctx, "User delete failed", "error", err, "id", id)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
