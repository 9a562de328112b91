package todo

import "strings"

// CreateInput - тело запроса на создание задачи
type CreateInput struct {
	Title        string       `json:"title"`
	Description  *string      `json:"description,omitempty"`
	Category     *string      `json:"category,omitempty"`
	Tags         []string     `json:"tags,omitempty"`
	Priority     *string      `json:"priority,omitempty"`
	DueDate      *string      `json:"dueDate,omitempty"`
	ParentTodo   *string      `json:"parentTodo,omitempty"`
	TimeEstimate *Duration    `json:"timeEstimate,omitempty"`
	Attachments  []Attachment `json:"attachments,omitempty"`
}

// UpdateInput - частичное обновление, nil означает "не менять".
// Пустая строка в DueDate сбрасывает срок.
type UpdateInput struct {
	Title        *string   `json:"title,omitempty"`
	Description  *string   `json:"description,omitempty"`
	Category     *string   `json:"category,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	Priority     *string   `json:"priority,omitempty"`
	DueDate      *string   `json:"dueDate,omitempty"`
	Completed    *bool     `json:"completed,omitempty"`
	IsArchived   *bool     `json:"isArchived,omitempty"`
	ParentTodo   *string   `json:"parentTodo,omitempty"`
	TimeEstimate *Duration `json:"timeEstimate,omitempty"`
}

type NoteInput struct {
	Content string `json:"content"`
}

type SubtodoInput struct {
	SubtodoID string `json:"subtodoId"`
}

type TimeInput struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

func trim(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

func trimAll(values []string) {
	for i := range values {
		values[i] = strings.TrimSpace(values[i])
	}
}

// Normalize обрезает пробелы по краям строковых полей
func (in *CreateInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	trim(in.Description)
	trim(in.Category)
	trim(in.Priority)
	trim(in.DueDate)
	trim(in.ParentTodo)
	trimAll(in.Tags)
}

func (in *UpdateInput) Normalize() {
	trim(in.Title)
	trim(in.Description)
	trim(in.Category)
	trim(in.Priority)
	trim(in.DueDate)
	trim(in.ParentTodo)
	trimAll(in.Tags)
}

func (in *NoteInput) Normalize() {
	in.Content = strings.TrimSpace(in.Content)
}

func (in *SubtodoInput) Normalize() {
	in.SubtodoID = strings.TrimSpace(in.SubtodoID)
}
