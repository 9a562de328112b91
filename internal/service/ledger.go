package service

import (
	"context"
	"todoTracker/internal/models/todo"
	"todoTracker/internal/validation"

	"github.com/google/uuid"
)

// заметки, подзадачи и учёт времени: каждое изменение - одна атомарная операция над задачей

func (s *TodoService) AddNote(ctx context.Context, id uuid.UUID, owner string, in todo.NoteInput) (*View, error) {
	in.Normalize()
	if err := s.validate(validation.KindNote, in); err != nil {
		return nil, err
	}
	return s.mutate(ctx, "add_note", id, owner, func(t *todo.Todo) error {
		t.AddNote(in.Content, s.now())
		return nil
	})
}

// UpdateNote с неизвестным noteID ничего не меняет и возвращает задачу как есть
func (s *TodoService) UpdateNote(ctx context.Context, id uuid.UUID, owner string, noteID uuid.UUID, in todo.NoteInput) (*View, error) {
	in.Normalize()
	if err := s.validate(validation.KindNote, in); err != nil {
		return nil, err
	}
	return s.mutate(ctx, "update_note", id, owner, func(t *todo.Todo) error {
		t.UpdateNote(noteID, in.Content, s.now())
		return nil
	})
}

func (s *TodoService) DeleteNote(ctx context.Context, id uuid.UUID, owner string, noteID uuid.UUID) (*View, error) {
	return s.mutate(ctx, "delete_note", id, owner, func(t *todo.Todo) error {
		t.DeleteNote(noteID)
		return nil
	})
}

func (s *TodoService) AddTimeSpent(ctx context.Context, id uuid.UUID, owner string, in todo.TimeInput) (*View, error) {
	if err := s.validate(validation.KindTime, in); err != nil {
		return nil, err
	}
	return s.mutate(ctx, "add_time", id, owner, func(t *todo.Todo) error {
		t.AddTimeSpent(in.Hours, in.Minutes)
		return nil
	})
}

// AddChild добавляет подзадачу того же владельца. Родитель не может стать потомком своей подзадачи.
func (s *TodoService) AddChild(ctx context.Context, id uuid.UUID, owner string, in todo.SubtodoInput) (*View, error) {
	in.Normalize()
	if err := s.validate(validation.KindSubtodo, in); err != nil {
		return nil, err
	}
	childID, err := uuid.Parse(in.SubtodoID)
	if err != nil {
		return nil, NewFieldError("subtodoId", "Некорректный идентификатор подзадачи")
	}
	if childID == id {
		return nil, NewFieldError("subtodoId", "Задача не может быть подзадачей самой себя")
	}

	s.graphMtx.Lock()
	defer s.graphMtx.Unlock()

	if _, err := s.repo.GetByID(ctx, id, owner); err != nil {
		return nil, mapRepoError("add_child", id, err)
	}
	if _, err := s.repo.GetByID(ctx, childID, owner); err != nil {
		return nil, mapRepoError("add_child", childID, err)
	}

	reachable, err := s.reaches(ctx, owner, childID, id)
	if err != nil {
		return nil, err
	}
	if reachable {
		return nil, NewFieldError("subtodoId", "Подзадача уже содержит эту задачу, получится цикл")
	}

	return s.mutate(ctx, "add_child", id, owner, func(t *todo.Todo) error {
		t.AddSubtodo(childID)
		return nil
	})
}

// reaches обходит подзадачи от from в ширину и проверяет, встречается ли target
func (s *TodoService) reaches(ctx context.Context, owner string, from, target uuid.UUID) (bool, error) {
	visited := map[uuid.UUID]bool{from: true}
	frontier := []uuid.UUID{from}

	for len(frontier) > 0 {
		nodes, err := s.repo.GetByIDs(ctx, owner, frontier)
		if err != nil {
			return false, mapRepoError("check_cycle", from, err)
		}

		var next []uuid.UUID
		for _, node := range nodes {
			for _, childID := range node.Subtodos {
				if childID == target {
					return true, nil
				}
				if !visited[childID] {
					visited[childID] = true
					next = append(next, childID)
				}
			}
		}
		frontier = next
	}
	return false, nil
}

func (s *TodoService) RemoveChild(ctx context.Context, id uuid.UUID, owner string, childID uuid.UUID) (*View, error) {
	return s.mutate(ctx, "remove_child", id, owner, func(t *todo.Todo) error {
		t.RemoveSubtodo(childID)
		return nil
	})
}
