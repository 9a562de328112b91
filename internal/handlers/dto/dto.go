package dto

import (
	"time"
	"todoTracker/internal/models/todo"
	"todoTracker/internal/service"

	"github.com/google/uuid"
)

type NoteResponse struct {
	UUID      uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type AttachmentResponse struct {
	Filename   string    `json:"filename"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

type TodoResponse struct {
	UUID                 uuid.UUID            `json:"id"`
	Owner                string               `json:"user"`
	Title                string               `json:"title"`
	Description          string               `json:"description"`
	Category             string               `json:"category"`
	Tags                 []string             `json:"tags"`
	Completed            bool                 `json:"completed"`
	IsArchived           bool                 `json:"isArchived"`
	Priority             string               `json:"priority"`
	DueDate              *time.Time           `json:"dueDate"`
	CompletedAt          *time.Time           `json:"completedAt"`
	ParentTodo           *uuid.UUID           `json:"parentTodo"`
	Subtodos             []uuid.UUID          `json:"subtodos"`
	Notes                []NoteResponse       `json:"notes"`
	Attachments          []AttachmentResponse `json:"attachments"`
	TimeEstimate         todo.Duration        `json:"timeEstimate"`
	TimeSpent            todo.Duration        `json:"timeSpent"`
	TotalTimeEstimate    int                  `json:"totalTimeEstimate"`
	TotalTimeSpent       int                  `json:"totalTimeSpent"`
	IsOverdue            bool                 `json:"isOverdue"`
	CompletionPercentage int                  `json:"completionPercentage"`
	CreatedAt            time.Time            `json:"createdAt"`
	UpdatedAt            time.Time            `json:"updatedAt"`
}

type Pagination struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	HasMore bool `json:"hasMore"`
}

type ListResponse struct {
	Todos      []TodoResponse `json:"todos"`
	Pagination Pagination     `json:"pagination"`
}

func FromView(v *service.View) TodoResponse {
	t := v.Todo

	notes := make([]NoteResponse, 0, len(t.Notes))
	for _, n := range t.Notes {
		notes = append(notes, NoteResponse(n))
	}
	attachments := make([]AttachmentResponse, 0, len(t.Attachments))
	for _, a := range t.Attachments {
		attachments = append(attachments, AttachmentResponse(a))
	}

	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	subtodos := t.Subtodos
	if subtodos == nil {
		subtodos = []uuid.UUID{}
	}

	return TodoResponse{
		UUID:                 t.UUID,
		Owner:                t.Owner,
		Title:                t.Title,
		Description:          t.Description,
		Category:             t.Category,
		Tags:                 tags,
		Completed:            t.Completed,
		IsArchived:           t.IsArchived,
		Priority:             string(t.Priority),
		DueDate:              t.DueDate,
		CompletedAt:          t.CompletedAt,
		ParentTodo:           t.ParentTodo,
		Subtodos:             subtodos,
		Notes:                notes,
		Attachments:          attachments,
		TimeEstimate:         t.TimeEstimate,
		TimeSpent:            t.TimeSpent,
		TotalTimeEstimate:    t.TimeEstimate.TotalMinutes(),
		TotalTimeSpent:       t.TimeSpent.TotalMinutes(),
		IsOverdue:            v.IsOverdue,
		CompletionPercentage: v.CompletionPercentage,
		CreatedAt:            t.CreatedAt,
		UpdatedAt:            t.UpdatedAt,
	}
}

func FromViewList(views []*service.View) []TodoResponse {
	result := make([]TodoResponse, len(views))
	for i, v := range views {
		result[i] = FromView(v)
	}
	return result
}

func NewListResponse(views []*service.View, page, limit int, hasMore bool) ListResponse {
	return ListResponse{
		Todos: FromViewList(views),
		Pagination: Pagination{
			Page:    page,
			Limit:   limit,
			HasMore: hasMore,
		},
	}
}
