package handlers

import (
	"context"
	"net/http"
	"net/url"
	"time"
	"todoTracker/internal/handlers/dto"
	"todoTracker/internal/logger"
	"todoTracker/internal/middleware"
	"todoTracker/internal/models/todo"
	"todoTracker/internal/service"
	"todoTracker/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const serviceName = "todo-tracker"

type TodoHandler struct {
	TodoService Service
	validator   *validation.Validator
}

func NewTodoHandler(todoService Service, validator *validation.Validator) *TodoHandler {
	return &TodoHandler{
		TodoService: todoService,
		validator:   validator,
	}
}

func (h *TodoHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.TodoService.HealthCheck(r.Context()); err != nil {
		logger.Warn("HTTP: Health check не пройден", zap.Error(err))
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("status", "unavailable"),
			toPayload("service", serviceName),
		)
		return
	}
	responseWithJSON(w, http.StatusOK,
		toPayload("status", "ok"),
		toPayload("service", serviceName),
		toPayload("time", time.Now().UTC()),
	)
}

func respondTodo(w http.ResponseWriter, r *http.Request, code int, operation string, view *service.View) {
	logger.Info("HTTP_OUT: "+operation,
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("todo_id", view.Todo.UUID.String()),
		zap.Int("http_status", code))
	writeJSON(w, code, dto.FromView(view))
}

func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	filter, result := h.validator.ParseQuery(r.URL.Query())
	if !result.Valid() {
		respondError(w, r, service.NewValidationError(result))
		return
	}

	views, hasMore, err := h.TodoService.List(r.Context(), middleware.GetOwner(r.Context()), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewListResponse(views, filter.Page, filter.Limit, hasMore))
}

func (h *TodoHandler) ListArchived(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	paging := url.Values{"page": query["page"], "limit": query["limit"]}
	filter, result := h.validator.ParseQuery(paging)
	if !result.Valid() {
		respondError(w, r, service.NewValidationError(result))
		return
	}

	views, hasMore, err := h.TodoService.ListArchived(r.Context(), middleware.GetOwner(r.Context()), filter.Page, filter.Limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewListResponse(views, filter.Page, filter.Limit, hasMore))
}

func (h *TodoHandler) Overview(w http.ResponseWriter, r *http.Request) {
	stats, err := h.TodoService.Overview(r.Context(), middleware.GetOwner(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *TodoHandler) PostTodo(w http.ResponseWriter, r *http.Request) {
	var request todo.CreateInput
	if !decodeBody(w, r, &request) {
		return
	}

	view, err := h.TodoService.Create(r.Context(), middleware.GetOwner(r.Context()), request)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondTodo(w, r, http.StatusCreated, "Задача создана", view)
}

// withTodo разбирает id задачи и передаёт его операции
func (h *TodoHandler) withTodo(operation string, call func(ctx context.Context, id uuid.UUID, owner string) (*service.View, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		view, err := call(r.Context(), id, middleware.GetOwner(r.Context()))
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondTodo(w, r, http.StatusOK, operation, view)
	}
}

func (h *TodoHandler) GetTodo(w http.ResponseWriter, r *http.Request) {
	h.withTodo("Задача получена", h.TodoService.Get)(w, r)
}

func (h *TodoHandler) ToggleTodo(w http.ResponseWriter, r *http.Request) {
	h.withTodo("Статус задачи изменён", h.TodoService.Toggle)(w, r)
}

func (h *TodoHandler) ArchiveTodo(w http.ResponseWriter, r *http.Request) {
	h.withTodo("Задача архивирована", h.TodoService.Archive)(w, r)
}

func (h *TodoHandler) UnarchiveTodo(w http.ResponseWriter, r *http.Request) {
	h.withTodo("Задача возвращена из архива", h.TodoService.Unarchive)(w, r)
}

func (h *TodoHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var request todo.UpdateInput
	if !decodeBody(w, r, &request) {
		return
	}

	view, err := h.TodoService.Update(r.Context(), id, middleware.GetOwner(r.Context()), request)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondTodo(w, r, http.StatusOK, "Задача обновлена", view)
}

func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.TodoService.Delete(r.Context(), id, middleware.GetOwner(r.Context())); err != nil {
		respondError(w, r, err)
		return
	}
	logger.Info("HTTP_OUT: Задача удалена",
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("todo_id", id.String()))
	responseWithJSON(w, http.StatusOK, toPayload("message", "Задача удалена"))
}

func (h *TodoHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var request todo.NoteInput
	if !decodeBody(w, r, &request) {
		return
	}

	view, err := h.TodoService.AddNote(r.Context(), id, middleware.GetOwner(r.Context()), request)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondTodo(w, r, http.StatusOK, "Заметка добавлена", view)
}

func (h *TodoHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	noteID, ok := pathID(w, r, "noteId")
	if !ok {
		return
	}
	var request todo.NoteInput
	if !decodeBody(w, r, &request) {
		return
	}

	view, err := h.TodoService.UpdateNote(r.Context(), id, middleware.GetOwner(r.Context()), noteID, request)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondTodo(w, r, http.StatusOK, "Заметка обновлена", view)
}

func (h *TodoHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	noteID, ok := pathID(w, r, "noteId")
	if !ok {
		return
	}

	view, err := h.TodoService.DeleteNote(r.Context(), id, middleware.GetOwner(r.Context()), noteID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondTodo(w, r, http.StatusOK, "Заметка удалена", view)
}

func (h *TodoHandler) AddSubtodo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var request todo.SubtodoInput
	if !decodeBody(w, r, &request) {
		return
	}

	view, err := h.TodoService.AddChild(r.Context(), id, middleware.GetOwner(r.Context()), request)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondTodo(w, r, http.StatusOK, "Подзадача добавлена", view)
}

func (h *TodoHandler) RemoveSubtodo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	childID, ok := pathID(w, r, "childId")
	if !ok {
		return
	}

	view, err := h.TodoService.RemoveChild(r.Context(), id, middleware.GetOwner(r.Context()), childID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondTodo(w, r, http.StatusOK, "Подзадача удалена", view)
}

func (h *TodoHandler) AddTimeSpent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var request todo.TimeInput
	if !decodeBody(w, r, &request) {
		return
	}

	view, err := h.TodoService.AddTimeSpent(r.Context(), id, middleware.GetOwner(r.Context()), request)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondTodo(w, r, http.StatusOK, "Время добавлено", view)
}
