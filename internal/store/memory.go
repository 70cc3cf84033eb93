package store

import (
	"context"
	"sort"
	"sync"

	"todo-api/internal/models"
)

// MemTodoStore is an in-memory TodoStore with the same contract as the
// Postgres implementation. Used by tests and local development.
type MemTodoStore struct {
	mu     sync.Mutex
	todos  map[int64]models.Todo
	nextID int64
}

func NewMemTodoStore() *MemTodoStore {
	return &MemTodoStore{todos: make(map[int64]models.Todo)}
}

func (s *MemTodoStore) List(ctx context.Context, ownerID int64) ([]models.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	todos := []models.Todo{}
	for _, t := range s.todos {
		if t.OwnerID == ownerID {
			todos = append(todos, t)
		}
	}
	sort.Slice(todos, func(i, j int) bool { return todos[i].ID > todos[j].ID })
	return todos, nil
}

func (s *MemTodoStore) Create(ctx context.Context, ownerID int64, title string) (*models.Todo, error) {
	if !validTitle(title) {
		return nil, ErrInvalidTitle
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	todo := models.Todo{ID: s.nextID, Title: title, OwnerID: ownerID}
	s.todos[todo.ID] = todo
	return &todo, nil
}

func (s *MemTodoStore) Get(ctx context.Context, ownerID, todoID int64) (*models.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.todos[todoID]
	if !ok || t.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (s *MemTodoStore) Update(ctx context.Context, ownerID, todoID int64, title *string, done *bool) (*models.Todo, error) {
	if title != nil && !validTitle(*title) {
		return nil, ErrInvalidTitle
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.todos[todoID]
	if !ok || t.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	if title != nil {
		t.Title = *title
	}
	if done != nil {
		t.Done = *done
	}
	s.todos[todoID] = t
	return &t, nil
}

func (s *MemTodoStore) Delete(ctx context.Context, ownerID, todoID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.todos[todoID]
	if !ok || t.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(s.todos, todoID)
	return nil
}

func (s *MemTodoStore) deleteByOwner(ownerID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.todos {
		if t.OwnerID == ownerID {
			delete(s.todos, id)
		}
	}
}

// MemUserStore is an in-memory UserStore. It holds a reference to the todo
// store so user deletion cascades the way the Postgres schema does.
type MemUserStore struct {
	mu     sync.Mutex
	users  map[int64]models.User
	nextID int64
	todos  *MemTodoStore
}

func NewMemUserStore(todos *MemTodoStore) *MemUserStore {
	return &MemUserStore{users: make(map[int64]models.User), todos: todos}
}

func (s *MemUserStore) Create(ctx context.Context, username, hashedPassword string) (*models.User, error) {
	if !validUsername(username) {
		return nil, ErrInvalidUsername
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return nil, ErrDuplicateUsername
		}
	}
	s.nextID++
	user := models.User{ID: s.nextID, Username: username, HashedPassword: hashedPassword}
	s.users[user.ID] = user
	return &user, nil
}

func (s *MemUserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemUserStore) FindByID(ctx context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemUserStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	if _, ok := s.users[id]; !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	delete(s.users, id)
	s.mu.Unlock()
	if s.todos != nil {
		s.todos.deleteByOwner(id)
	}
	return nil
}
