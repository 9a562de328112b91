package handlers

import (
	"context"
	"todoTracker/internal/models/todo"
	"todoTracker/internal/service"

	"github.com/google/uuid"
)

type Service interface {
	HealthCheck(ctx context.Context) error

	Create(ctx context.Context, owner string, in todo.CreateInput) (*service.View, error)
	Get(ctx context.Context, id uuid.UUID, owner string) (*service.View, error)
	Update(ctx context.Context, id uuid.UUID, owner string, in todo.UpdateInput) (*service.View, error)
	Delete(ctx context.Context, id uuid.UUID, owner string) error
	Toggle(ctx context.Context, id uuid.UUID, owner string) (*service.View, error)
	Archive(ctx context.Context, id uuid.UUID, owner string) (*service.View, error)
	Unarchive(ctx context.Context, id uuid.UUID, owner string) (*service.View, error)

	AddNote(ctx context.Context, id uuid.UUID, owner string, in todo.NoteInput) (*service.View, error)
	UpdateNote(ctx context.Context, id uuid.UUID, owner string, noteID uuid.UUID, in todo.NoteInput) (*service.View, error)
	DeleteNote(ctx context.Context, id uuid.UUID, owner string, noteID uuid.UUID) (*service.View, error)
	AddChild(ctx context.Context, id uuid.UUID, owner string, in todo.SubtodoInput) (*service.View, error)
	RemoveChild(ctx context.Context, id uuid.UUID, owner string, childID uuid.UUID) (*service.View, error)
	AddTimeSpent(ctx context.Context, id uuid.UUID, owner string, in todo.TimeInput) (*service.View, error)

	List(ctx context.Context, owner string, filter todo.Filter) ([]*service.View, bool, error)
	ListArchived(ctx context.Context, owner string, page, limit int) ([]*service.View, bool, error)
	Overview(ctx context.Context, owner string) (*todo.Stats, error)
}

var _ Service = (*service.TodoService)(nil)
