package inmemory

import (
	"context"
	"sync"
	"time"
	"todoTracker/internal/logger"
	"todoTracker/internal/models/todo"
	repo "todoTracker/internal/repository"

	"github.com/google/uuid"
)

// TodoStorage хранит задачи в памяти.
// Все изменения идут под одной блокировкой записи, поэтому Mutate атомарен для записи.
type TodoStorage struct {
	storage map[uuid.UUID]*todo.Todo
	mtx     *sync.RWMutex
	ids     []uuid.UUID
	seq     int64
	now     func() time.Time
}

func NewTodoStorage() *TodoStorage {
	return &TodoStorage{
		storage: make(map[uuid.UUID]*todo.Todo),
		mtx:     &sync.RWMutex{},
		ids:     []uuid.UUID{},
		now:     time.Now,
	}
}

func (s *TodoStorage) HealthCheck(ctx context.Context) error {
	logger.Info("Repository: Хранилище в памяти доступно")
	return nil
}

func (s *TodoStorage) Create(ctx context.Context, todoToCreate *todo.Todo) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	now := s.now()
	s.seq++
	todoToCreate.CreatedAt = now
	todoToCreate.UpdatedAt = now
	todoToCreate.Version = 1
	todoToCreate.Seq = s.seq

	s.storage[todoToCreate.UUID] = todoToCreate.Clone()
	s.ids = append(s.ids, todoToCreate.UUID)
	return nil
}

// getOwned возвращает задачу только своему владельцу, чужая выглядит как отсутствующая
func (s *TodoStorage) getOwned(id uuid.UUID, owner string) (*todo.Todo, bool) {
	stored, ok := s.storage[id]
	if !ok || stored.Owner != owner {
		return nil, false
	}
	return stored, true
}

func (s *TodoStorage) GetByID(ctx context.Context, id uuid.UUID, owner string) (*todo.Todo, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	stored, ok := s.getOwned(id, owner)
	if !ok {
		return nil, repo.ErrNotFound
	}
	return stored.Clone(), nil
}

// GetByIDs молча пропускает отсутствующие и чужие id
func (s *TodoStorage) GetByIDs(ctx context.Context, owner string, ids []uuid.UUID) ([]*todo.Todo, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]*todo.Todo, 0, len(ids))
	for _, id := range ids {
		if stored, ok := s.getOwned(id, owner); ok {
			res = append(res, stored.Clone())
		}
	}
	return res, nil
}

// Mutate применяет fn к копии задачи и сохраняет её только при успехе fn
func (s *TodoStorage) Mutate(ctx context.Context, id uuid.UUID, owner string, fn func(*todo.Todo) error) (*todo.Todo, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	stored, ok := s.getOwned(id, owner)
	if !ok {
		return nil, repo.ErrNotFound
	}

	working := stored.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}

	working.UUID = stored.UUID
	working.Owner = stored.Owner
	working.CreatedAt = stored.CreatedAt
	working.Seq = stored.Seq
	working.UpdatedAt = s.now()
	working.Version = stored.Version + 1

	s.storage[id] = working
	return working.Clone(), nil
}

// Delete удаляет только саму запись, ссылки из других задач остаются
func (s *TodoStorage) Delete(ctx context.Context, id uuid.UUID, owner string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.getOwned(id, owner); !ok {
		return repo.ErrNotFound
	}

	delete(s.storage, id)
	for ind, val := range s.ids {
		if val == id {
			s.ids = append(s.ids[:ind], s.ids[ind+1:]...)
			break
		}
	}
	return nil
}

// owned собирает задачи владельца в порядке вставки
func (s *TodoStorage) owned(owner string) []*todo.Todo {
	res := []*todo.Todo{}
	for _, id := range s.ids {
		stored := s.storage[id]
		if stored.Owner == owner {
			res = append(res, stored)
		}
	}
	return res
}

func (s *TodoStorage) List(ctx context.Context, owner string, filter todo.Filter) ([]*todo.Todo, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	matched := []*todo.Todo{}
	for _, stored := range s.owned(owner) {
		if filter.Match(stored) {
			matched = append(matched, stored)
		}
	}

	filter.Sort(matched)
	page := filter.Paginate(matched)

	res := make([]*todo.Todo, 0, len(page))
	for _, stored := range page {
		res = append(res, stored.Clone())
	}
	return res, nil
}

func (s *TodoStorage) Stats(ctx context.Context, owner string, now time.Time) (*todo.Stats, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return todo.Aggregate(s.owned(owner), now), nil
}
