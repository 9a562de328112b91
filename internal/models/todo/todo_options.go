package todo

import (
	"time"

	"github.com/google/uuid"
)

// TodoOption - точечное изменение одного поля задачи.
// Конструкторы возвращают nil, если поле не передано, такие опции пропускаются в Apply.
type TodoOption func(*Todo)

func Apply(t *Todo, options ...TodoOption) {
	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}
}

func WithTitle(title *string) TodoOption {
	if title == nil {
		return nil
	}
	return func(t *Todo) {
		t.Title = *title
	}
}

func WithDescription(description *string) TodoOption {
	if description == nil {
		return nil
	}
	return func(t *Todo) {
		t.Description = *description
	}
}

func WithCategory(category *string) TodoOption {
	if category == nil {
		return nil
	}
	return func(t *Todo) {
		t.Category = *category
	}
}

func WithTags(tags []string) TodoOption {
	if tags == nil {
		return nil
	}
	return func(t *Todo) {
		t.Tags = append([]string{}, tags...)
	}
}

func WithPriority(priority *Priority) TodoOption {
	if priority == nil {
		return nil
	}
	return func(t *Todo) {
		t.Priority = *priority
	}
}

// WithDueDate: нулевое время сбрасывает срок
func WithDueDate(dueDate *time.Time) TodoOption {
	if dueDate == nil {
		return nil
	}
	return func(t *Todo) {
		if dueDate.IsZero() {
			t.DueDate = nil
			return
		}
		d := *dueDate
		t.DueDate = &d
	}
}

func WithCompleted(completed *bool, now time.Time) TodoOption {
	if completed == nil {
		return nil
	}
	return func(t *Todo) {
		t.SetCompleted(*completed, now)
	}
}

func WithArchived(archived *bool) TodoOption {
	if archived == nil {
		return nil
	}
	return func(t *Todo) {
		t.IsArchived = *archived
	}
}

func WithParent(parent *uuid.UUID) TodoOption {
	if parent == nil {
		return nil
	}
	return func(t *Todo) {
		p := *parent
		t.ParentTodo = &p
	}
}

func WithTimeEstimate(estimate *Duration) TodoOption {
	if estimate == nil {
		return nil
	}
	return func(t *Todo) {
		t.TimeEstimate = *estimate
	}
}

func WithAttachments(attachments []Attachment) TodoOption {
	if attachments == nil {
		return nil
	}
	return func(t *Todo) {
		t.Attachments = append([]Attachment{}, attachments...)
	}
}
