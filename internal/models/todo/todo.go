package todo

import (
	"time"

	"github.com/google/uuid"
)

type Todo struct {
	UUID         uuid.UUID    `json:"id"`
	Owner        string       `json:"owner"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Category     string       `json:"category"`
	Tags         []string     `json:"tags"`
	Completed    bool         `json:"completed"`
	IsArchived   bool         `json:"is_archived"`
	Priority     Priority     `json:"priority"`
	DueDate      *time.Time   `json:"due_date,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty"`
	ParentTodo   *uuid.UUID   `json:"parent_todo,omitempty"`
	Subtodos     []uuid.UUID  `json:"subtodos"`
	Notes        []Note       `json:"notes"`
	Attachments  []Attachment `json:"attachments"`
	TimeEstimate Duration     `json:"time_estimate"`
	TimeSpent    Duration     `json:"time_spent"`
	Version      int          `json:"version"`
	Seq          int64        `json:"-"`
}

type Priority string

const PriorityLow Priority = "low"
const PriorityMedium Priority = "medium"
const PriorityHigh Priority = "high"
const PriorityUrgent Priority = "urgent"

// Priorities в порядке возрастания важности
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

func (p Priority) Valid() bool {
	return p.Rank() >= 0
}

// Rank задаёт порядок сортировки по приоритету, -1 для неизвестного значения
func (p Priority) Rank() int {
	for i, v := range Priorities {
		if v == p {
			return i
		}
	}
	return -1
}

type Note struct {
	UUID      uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Attachment хранится как есть, содержимое файла здесь не проверяется
type Attachment struct {
	Filename   string    `json:"filename"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Duration - часы и минуты (0-59), эквивалент количества минут
type Duration struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

func (d Duration) TotalMinutes() int {
	return d.Hours*60 + d.Minutes
}

func FromMinutes(total int) Duration {
	return Duration{Hours: total / 60, Minutes: total % 60}
}

func New(owner, title string) *Todo {
	return &Todo{
		UUID:        uuid.New(),
		Owner:       owner,
		Title:       title,
		Priority:    PriorityMedium,
		Tags:        []string{},
		Subtodos:    []uuid.UUID{},
		Notes:       []Note{},
		Attachments: []Attachment{},
	}
}

// Clone возвращает глубокую копию, чтобы хранилище не делило срезы с вызывающим
func (t *Todo) Clone() *Todo {
	c := *t
	c.Tags = append([]string{}, t.Tags...)
	c.Subtodos = append([]uuid.UUID{}, t.Subtodos...)
	c.Notes = append([]Note{}, t.Notes...)
	c.Attachments = append([]Attachment{}, t.Attachments...)
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.CompletedAt != nil {
		d := *t.CompletedAt
		c.CompletedAt = &d
	}
	if t.ParentTodo != nil {
		p := *t.ParentTodo
		c.ParentTodo = &p
	}
	return &c
}

// SetCompleted меняет флаг и поддерживает completedAt только при смене состояния
func (t *Todo) SetCompleted(completed bool, now time.Time) {
	if completed && !t.Completed {
		t.CompletedAt = &now
	}
	if !completed && t.Completed {
		t.CompletedAt = nil
	}
	t.Completed = completed
}

func (t *Todo) Toggle(now time.Time) {
	t.SetCompleted(!t.Completed, now)
}

func (t *Todo) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && !t.Completed && t.DueDate.Before(now)
}

func (t *Todo) HasSubtodo(id uuid.UUID) bool {
	for _, s := range t.Subtodos {
		if s == id {
			return true
		}
	}
	return false
}

// AddSubtodo идемпотентен, возвращает false если id уже есть
func (t *Todo) AddSubtodo(id uuid.UUID) bool {
	if t.HasSubtodo(id) {
		return false
	}
	t.Subtodos = append(t.Subtodos, id)
	return true
}

func (t *Todo) RemoveSubtodo(id uuid.UUID) bool {
	kept := t.Subtodos[:0:0]
	for _, s := range t.Subtodos {
		if s != id {
			kept = append(kept, s)
		}
	}
	removed := len(kept) != len(t.Subtodos)
	t.Subtodos = kept
	return removed
}

// CompletionPercentage считает процент по флагам дочерних задач.
// completed содержит состояние найденных детей; отсутствующий ребёнок считается невыполненным.
func (t *Todo) CompletionPercentage(completed map[uuid.UUID]bool) int {
	if len(t.Subtodos) == 0 {
		if t.Completed {
			return 100
		}
		return 0
	}

	done := 0
	for _, id := range t.Subtodos {
		if completed[id] {
			done++
		}
	}
	// round half up, как Math.round
	return (200*done + len(t.Subtodos)) / (2 * len(t.Subtodos))
}

func (t *Todo) AddNote(content string, now time.Time) Note {
	note := Note{
		UUID:      uuid.New(),
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	t.Notes = append(t.Notes, note)
	return note
}

// UpdateNote ничего не делает для неизвестной заметки
func (t *Todo) UpdateNote(noteID uuid.UUID, content string, now time.Time) bool {
	for i := range t.Notes {
		if t.Notes[i].UUID == noteID {
			t.Notes[i].Content = content
			t.Notes[i].UpdatedAt = now
			return true
		}
	}
	return false
}

func (t *Todo) DeleteNote(noteID uuid.UUID) bool {
	kept := t.Notes[:0:0]
	for _, n := range t.Notes {
		if n.UUID != noteID {
			kept = append(kept, n)
		}
	}
	removed := len(kept) != len(t.Notes)
	t.Notes = kept
	return removed
}

func (t *Todo) AddTimeSpent(hours, minutes int) {
	t.TimeSpent = FromMinutes(t.TimeSpent.TotalMinutes() + hours*60 + minutes)
}
