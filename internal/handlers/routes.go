package handlers

import (
	"todoTracker/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes вешает обработчики; всё кроме /health требует владельца
func RegisterRoutes(r chi.Router, h *TodoHandler) {
	r.Get("/health", h.HealthCheck)

	r.Route("/todos", func(r chi.Router) {
		r.Use(middleware.Owner)

		r.Get("/", h.ListTodos) // GET /todos
		r.Post("/", h.PostTodo) // POST /todos

		r.Get("/stats/overview", h.Overview) // GET /todos/stats/overview
		r.Get("/archived", h.ListArchived)   // GET /todos/archived

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetTodo)       // GET /todos/{id}
			r.Put("/", h.UpdateTodo)    // PUT /todos/{id}
			r.Delete("/", h.DeleteTodo) // DELETE /todos/{id}

			r.Patch("/toggle", h.ToggleTodo)
			r.Post("/archive", h.ArchiveTodo)
			r.Post("/unarchive", h.UnarchiveTodo)

			r.Post("/notes", h.AddNote)
			r.Put("/notes/{noteId}", h.UpdateNote)
			r.Delete("/notes/{noteId}", h.DeleteNote)

			r.Post("/subtodos", h.AddSubtodo)
			r.Delete("/subtodos/{childId}", h.RemoveSubtodo)

			r.Post("/time", h.AddTimeSpent)
		})
	})
}
