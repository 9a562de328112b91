package service

import (
	"context"
	"time"
	"todoTracker/internal/models/todo"

	"github.com/google/uuid"
)

// TodoRepository - хранилище задач. Все операции, кроме Create, ограничены владельцем.
type TodoRepository interface {
	HealthCheck(ctx context.Context) error
	Create(ctx context.Context, t *todo.Todo) error
	GetByID(ctx context.Context, id uuid.UUID, owner string) (*todo.Todo, error)
	GetByIDs(ctx context.Context, owner string, ids []uuid.UUID) ([]*todo.Todo, error)
	// Mutate атомарно применяет fn к задаче; при ошибке fn ничего не сохраняется
	Mutate(ctx context.Context, id uuid.UUID, owner string, fn func(*todo.Todo) error) (*todo.Todo, error)
	Delete(ctx context.Context, id uuid.UUID, owner string) error
	List(ctx context.Context, owner string, filter todo.Filter) ([]*todo.Todo, error)
	Stats(ctx context.Context, owner string, now time.Time) (*todo.Stats, error)
}
