package service

import (
	"context"
	"errors"
	"sync"
	"time"
	"todoTracker/internal/logger"
	"todoTracker/internal/models/todo"
	repo "todoTracker/internal/repository"
	"todoTracker/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// здесь происходит проверка ошибок бизнес-логики

const maxMutateAttempts = 3

const resourceTodo = "Задача"

// View - задача вместе с вычисляемыми полями на момент чтения
type View struct {
	Todo                 *todo.Todo
	IsOverdue            bool
	CompletionPercentage int
}

type TodoService struct {
	repo      TodoRepository
	validator *validation.Validator
	now       func() time.Time
	// graphMtx делает проверку цикла и добавление подзадачи одним шагом в пределах процесса
	graphMtx sync.Mutex
}

func NewTodoService(repo TodoRepository, validator *validation.Validator) *TodoService {
	return &TodoService{
		repo:      repo,
		validator: validator,
		now:       time.Now,
	}
}

// WithClock подменяет источник времени для сервиса и валидатора
func (s *TodoService) WithClock(now func() time.Time) *TodoService {
	s.now = now
	s.validator.WithClock(now)
	return s
}

func (s *TodoService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		logger.Error("Service: Хранилище недоступно", err)
		return NewStoreError(err)
	}
	return nil
}

// mapRepoError переводит ошибки хранилища в бизнес-ошибки
func mapRepoError(operation string, id uuid.UUID, err error) error {
	var busErr *BusinessError
	switch {
	case errors.As(err, &busErr):
		return busErr
	case errors.Is(err, repo.ErrNotFound):
		logger.Info("Service: Задача не найдена", zap.String("target_id", id.String()))
		return NewNotFound(resourceTodo, id.String())
	default:
		logger.Error("Service: Ошибка хранилища", err,
			zap.String("operation", operation),
			zap.String("target_id", id.String()))
		return NewStoreError(err)
	}
}

func (s *TodoService) validate(kind validation.Kind, payload any) error {
	if result := s.validator.Validate(kind, payload); !result.Valid() {
		logger.Info("Service: Ошибка валидации",
			zap.String("kind", string(kind)),
			zap.Strings("fields", result.Fields()))
		return NewValidationError(result)
	}
	return nil
}

// mutate повторяет атомарное изменение при конфликте версий
func (s *TodoService) mutate(ctx context.Context, operation string, id uuid.UUID, owner string, fn func(*todo.Todo) error) (*View, error) {
	var lastErr error
	for attempt := 1; attempt <= maxMutateAttempts; attempt++ {
		updated, err := s.repo.Mutate(ctx, id, owner, fn)
		if err == nil {
			return s.view(ctx, owner, updated)
		}
		if !errors.Is(err, repo.ErrVersionConflict) {
			return nil, mapRepoError(operation, id, err)
		}

		lastErr = err
		logger.Warn("Service: Конфликт версий, повтор",
			zap.String("operation", operation),
			zap.String("target_id", id.String()),
			zap.Int("attempt", attempt))
	}
	return nil, mapRepoError(operation, id, lastErr)
}

func (s *TodoService) view(ctx context.Context, owner string, t *todo.Todo) (*View, error) {
	views, err := s.views(ctx, owner, []*todo.Todo{t})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// views вычисляет производные поля; подзадачи всех задач читаются одним запросом
func (s *TodoService) views(ctx context.Context, owner string, todos []*todo.Todo) ([]*View, error) {
	childIDs := []uuid.UUID{}
	seen := map[uuid.UUID]bool{}
	for _, t := range todos {
		for _, id := range t.Subtodos {
			if !seen[id] {
				seen[id] = true
				childIDs = append(childIDs, id)
			}
		}
	}

	completed := map[uuid.UUID]bool{}
	if len(childIDs) > 0 {
		children, err := s.repo.GetByIDs(ctx, owner, childIDs)
		if err != nil {
			logger.Error("Service: Ошибка чтения подзадач", err)
			return nil, NewStoreError(err)
		}
		for _, child := range children {
			completed[child.UUID] = child.Completed
		}
	}

	now := s.now()
	views := make([]*View, 0, len(todos))
	for _, t := range todos {
		views = append(views, &View{
			Todo:                 t,
			IsOverdue:            t.IsOverdue(now),
			CompletionPercentage: t.CompletionPercentage(completed),
		})
	}
	return views, nil
}

// checkParent: родитель должен существовать у того же владельца
func (s *TodoService) checkParent(ctx context.Context, owner string, raw *string, self uuid.UUID) (*uuid.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	parentID, err := uuid.Parse(*raw)
	if err != nil {
		return nil, NewFieldError("parentTodo", "Некорректный идентификатор родительской задачи")
	}
	if parentID == self {
		return nil, NewFieldError("parentTodo", "Задача не может быть родителем самой себя")
	}

	if _, err := s.repo.GetByID(ctx, parentID, owner); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewFieldError("parentTodo", "Родительская задача не найдена")
		}
		return nil, mapRepoError("check_parent", parentID, err)
	}
	return &parentID, nil
}

func parsePriority(raw *string) *todo.Priority {
	if raw == nil {
		return nil
	}
	p := todo.Priority(*raw)
	return &p
}

// parseDueDate: пустая строка превращается в нулевое время, что сбрасывает срок
func parseDueDate(raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	if *raw == "" {
		return &time.Time{}
	}
	due, err := validation.ParseDate(*raw)
	if err != nil {
		return nil
	}
	return &due
}

func (s *TodoService) Create(ctx context.Context, owner string, in todo.CreateInput) (*View, error) {
	in.Normalize()
	if err := s.validate(validation.KindCreate, in); err != nil {
		return nil, err
	}

	id := uuid.New()
	parent, err := s.checkParent(ctx, owner, in.ParentTodo, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var attachments []todo.Attachment
	if in.Attachments != nil {
		attachments = append([]todo.Attachment{}, in.Attachments...)
	}
	for i := range attachments {
		if attachments[i].UploadedAt.IsZero() {
			attachments[i].UploadedAt = now
		}
	}

	newTodo := todo.New(owner, in.Title)
	newTodo.UUID = id
	todo.Apply(newTodo,
		todo.WithDescription(in.Description),
		todo.WithCategory(in.Category),
		todo.WithTags(in.Tags),
		todo.WithPriority(parsePriority(in.Priority)),
		todo.WithDueDate(parseDueDate(in.DueDate)),
		todo.WithParent(parent),
		todo.WithTimeEstimate(in.TimeEstimate),
		todo.WithAttachments(attachments),
	)

	if err := s.repo.Create(ctx, newTodo); err != nil {
		logger.Error("Service: Не удалось создать задачу", err, zap.String("owner", owner))
		return nil, NewStoreError(err)
	}

	logger.Info("Service: Задача создана",
		zap.String("todo_id", newTodo.UUID.String()),
		zap.String("owner", owner))
	return s.view(ctx, owner, newTodo)
}

func (s *TodoService) Get(ctx context.Context, id uuid.UUID, owner string) (*View, error) {
	found, err := s.repo.GetByID(ctx, id, owner)
	if err != nil {
		return nil, mapRepoError("get", id, err)
	}
	return s.view(ctx, owner, found)
}

func (s *TodoService) Update(ctx context.Context, id uuid.UUID, owner string, in todo.UpdateInput) (*View, error) {
	in.Normalize()
	if err := s.validate(validation.KindUpdate, in); err != nil {
		return nil, err
	}

	parent, err := s.checkParent(ctx, owner, in.ParentTodo, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	options := []todo.TodoOption{
		todo.WithTitle(in.Title),
		todo.WithDescription(in.Description),
		todo.WithCategory(in.Category),
		todo.WithTags(in.Tags),
		todo.WithPriority(parsePriority(in.Priority)),
		todo.WithDueDate(parseDueDate(in.DueDate)),
		todo.WithCompleted(in.Completed, now),
		todo.WithArchived(in.IsArchived),
		todo.WithParent(parent),
		todo.WithTimeEstimate(in.TimeEstimate),
	}

	return s.mutate(ctx, "update", id, owner, func(t *todo.Todo) error {
		todo.Apply(t, options...)
		return nil
	})
}

// Delete не трогает подзадачи и ссылки на удаляемую задачу
func (s *TodoService) Delete(ctx context.Context, id uuid.UUID, owner string) error {
	if err := s.repo.Delete(ctx, id, owner); err != nil {
		return mapRepoError("delete", id, err)
	}
	logger.Info("Service: Задача удалена", zap.String("todo_id", id.String()))
	return nil
}

func (s *TodoService) Toggle(ctx context.Context, id uuid.UUID, owner string) (*View, error) {
	return s.mutate(ctx, "toggle", id, owner, func(t *todo.Todo) error {
		t.Toggle(s.now())
		return nil
	})
}

func (s *TodoService) setArchived(ctx context.Context, id uuid.UUID, owner string, archived bool) (*View, error) {
	return s.mutate(ctx, "archive", id, owner, func(t *todo.Todo) error {
		t.IsArchived = archived
		return nil
	})
}

func (s *TodoService) Archive(ctx context.Context, id uuid.UUID, owner string) (*View, error) {
	return s.setArchived(ctx, id, owner, true)
}

func (s *TodoService) Unarchive(ctx context.Context, id uuid.UUID, owner string) (*View, error) {
	return s.setArchived(ctx, id, owner, false)
}

// List возвращает только неархивные задачи. hasMore - страница заполнена целиком.
func (s *TodoService) List(ctx context.Context, owner string, filter todo.Filter) ([]*View, bool, error) {
	filter.Archived = false
	return s.list(ctx, owner, filter)
}

func (s *TodoService) ListArchived(ctx context.Context, owner string, page, limit int) ([]*View, bool, error) {
	filter := todo.DefaultFilter()
	filter.Archived = true
	filter.Page = page
	filter.Limit = limit
	return s.list(ctx, owner, filter)
}

func (s *TodoService) list(ctx context.Context, owner string, filter todo.Filter) ([]*View, bool, error) {
	todos, err := s.repo.List(ctx, owner, filter)
	if err != nil {
		logger.Error("Service: Не удалось получить задачи", err, zap.String("owner", owner))
		return nil, false, NewStoreError(err)
	}

	views, err := s.views(ctx, owner, todos)
	if err != nil {
		return nil, false, err
	}
	return views, len(todos) == filter.Limit, nil
}

func (s *TodoService) Overview(ctx context.Context, owner string) (*todo.Stats, error) {
	stats, err := s.repo.Stats(ctx, owner, s.now())
	if err != nil {
		logger.Error("Service: Не удалось посчитать статистику", err, zap.String("owner", owner))
		return nil, NewStoreError(err)
	}
	return stats, nil
}
