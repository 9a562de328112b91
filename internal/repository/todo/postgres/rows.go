package postgres

import (
	"encoding/json"
	"fmt"
	"time"
	"todoTracker/internal/models/todo"

	"github.com/google/uuid"
)

var todoColumns = []string{
	"id",
	"seq",
	"owner_id",
	"title",
	"description",
	"category",
	"tags",
	"completed",
	"is_archived",
	"priority",
	"due_date",
	"completed_at",
	"parent_todo",
	"subtodos",
	"notes",
	"attachments",
	"estimate_hours",
	"estimate_minutes",
	"spent_hours",
	"spent_minutes",
	"version",
	"created_at",
	"updated_at",
}

// jsonColumn читает jsonb в виде []byte или string, в зависимости от драйвера
type jsonColumn []byte

func (j *jsonColumn) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = append((*j)[:0], v...)
	case string:
		*j = jsonColumn(v)
	default:
		return fmt.Errorf("не могу прочитать %T как jsonb", value)
	}
	return nil
}

func (j jsonColumn) decode(dst any) error {
	if len(j) == 0 {
		return nil
	}
	return json.Unmarshal(j, dst)
}

type todoRow struct {
	ID              uuid.UUID     `db:"id"`
	Seq             int64         `db:"seq"`
	Owner           string        `db:"owner_id"`
	Title           string        `db:"title"`
	Description     string        `db:"description"`
	Category        string        `db:"category"`
	Tags            jsonColumn    `db:"tags"`
	Completed       bool          `db:"completed"`
	IsArchived      bool          `db:"is_archived"`
	Priority        string        `db:"priority"`
	DueDate         *time.Time    `db:"due_date"`
	CompletedAt     *time.Time    `db:"completed_at"`
	ParentTodo      uuid.NullUUID `db:"parent_todo"`
	Subtodos        jsonColumn    `db:"subtodos"`
	Notes           jsonColumn    `db:"notes"`
	Attachments     jsonColumn    `db:"attachments"`
	EstimateHours   int           `db:"estimate_hours"`
	EstimateMinutes int           `db:"estimate_minutes"`
	SpentHours      int           `db:"spent_hours"`
	SpentMinutes    int           `db:"spent_minutes"`
	Version         int           `db:"version"`
	CreatedAt       time.Time     `db:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at"`
}

func (r *todoRow) toTodo() (*todo.Todo, error) {
	t := todo.New(r.Owner, r.Title)
	t.UUID = r.ID
	t.Seq = r.Seq
	t.Description = r.Description
	t.Category = r.Category
	t.Completed = r.Completed
	t.IsArchived = r.IsArchived
	t.Priority = todo.Priority(r.Priority)
	t.DueDate = r.DueDate
	t.CompletedAt = r.CompletedAt
	if r.ParentTodo.Valid {
		parent := r.ParentTodo.UUID
		t.ParentTodo = &parent
	}
	t.TimeEstimate = todo.Duration{Hours: r.EstimateHours, Minutes: r.EstimateMinutes}
	t.TimeSpent = todo.Duration{Hours: r.SpentHours, Minutes: r.SpentMinutes}
	t.Version = r.Version
	t.CreatedAt = r.CreatedAt
	t.UpdatedAt = r.UpdatedAt

	if err := r.Tags.decode(&t.Tags); err != nil {
		return nil, fmt.Errorf("разбор tags: %w", err)
	}
	if err := r.Subtodos.decode(&t.Subtodos); err != nil {
		return nil, fmt.Errorf("разбор subtodos: %w", err)
	}
	if err := r.Notes.decode(&t.Notes); err != nil {
		return nil, fmt.Errorf("разбор notes: %w", err)
	}
	if err := r.Attachments.decode(&t.Attachments); err != nil {
		return nil, fmt.Errorf("разбор attachments: %w", err)
	}
	return t, nil
}

// todoValues - изменяемые колонки задачи в виде, готовом для запроса
func todoValues(t *todo.Todo) (map[string]any, error) {
	values := map[string]any{
		"title":            t.Title,
		"description":      t.Description,
		"category":         t.Category,
		"completed":        t.Completed,
		"is_archived":      t.IsArchived,
		"priority":         string(t.Priority),
		"due_date":         t.DueDate,
		"completed_at":     t.CompletedAt,
		"parent_todo":      nil,
		"estimate_hours":   t.TimeEstimate.Hours,
		"estimate_minutes": t.TimeEstimate.Minutes,
		"spent_hours":      t.TimeSpent.Hours,
		"spent_minutes":    t.TimeSpent.Minutes,
	}
	if t.ParentTodo != nil {
		values["parent_todo"] = t.ParentTodo.String()
	}

	embedded := map[string]any{
		"tags":        nonNil(t.Tags),
		"subtodos":    nonNil(t.Subtodos),
		"notes":       nonNil(t.Notes),
		"attachments": nonNil(t.Attachments),
	}
	for column, v := range embedded {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("сериализация %s: %w", column, err)
		}
		values[column] = string(data)
	}
	return values, nil
}

// nonNil пишет пустой массив вместо null
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
