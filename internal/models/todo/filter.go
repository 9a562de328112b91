package todo

import (
	"sort"
	"strings"
	"time"
)

type SortField string

const SortCreatedAt SortField = "createdAt"
const SortUpdatedAt SortField = "updatedAt"
const SortDueDate SortField = "dueDate"
const SortPriority SortField = "priority"
const SortTitle SortField = "title"

var SortFields = []SortField{SortCreatedAt, SortUpdatedAt, SortDueDate, SortPriority, SortTitle}

type SortOrder string

const SortAsc SortOrder = "asc"
const SortDesc SortOrder = "desc"

const DefaultPage = 1
const DefaultLimit = 10
const MaxLimit = 100

// MaxPage держит (page-1)*limit далеко от переполнения int
const MaxPage = 1000000

// Filter - параметры выборки списка задач одного владельца
type Filter struct {
	Completed *bool
	Priority  *Priority
	Category  *string
	Search    string
	Archived  bool
	Page      int
	Limit     int
	SortBy    SortField
	SortOrder SortOrder
}

func DefaultFilter() Filter {
	return Filter{
		Page:      DefaultPage,
		Limit:     DefaultLimit,
		SortBy:    SortCreatedAt,
		SortOrder: SortDesc,
	}
}

func (f Filter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// Match проверяет все условия фильтра кроме владельца
func (f Filter) Match(t *Todo) bool {
	if t.IsArchived != f.Archived {
		return false
	}
	if f.Completed != nil && t.Completed != *f.Completed {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.Category != nil && t.Category != *f.Category {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) {
			return false
		}
	}
	return true
}

// Sort упорядочивает по ключу, при равенстве - по порядку вставки
func (f Filter) Sort(todos []*Todo) {
	desc := f.SortOrder == SortDesc
	sort.SliceStable(todos, func(i, j int) bool {
		c := compare(todos[i], todos[j], f.SortBy)
		if c == 0 {
			return todos[i].Seq < todos[j].Seq
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}

// Paginate вырезает страницу из уже отсортированного списка
func (f Filter) Paginate(todos []*Todo) []*Todo {
	offset := f.Offset()
	if offset < 0 || offset >= len(todos) {
		return []*Todo{}
	}
	end := offset + f.Limit
	if end > len(todos) {
		end = len(todos)
	}
	return todos[offset:end]
}

func compare(a, b *Todo, field SortField) int {
	switch field {
	case SortUpdatedAt:
		return compareTime(a.UpdatedAt, b.UpdatedAt)
	case SortDueDate:
		// задачи без срока идут раньше любых дат
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return 0
		case a.DueDate == nil:
			return -1
		case b.DueDate == nil:
			return 1
		}
		return compareTime(*a.DueDate, *b.DueDate)
	case SortPriority:
		return a.Priority.Rank() - b.Priority.Rank()
	case SortTitle:
		return strings.Compare(a.Title, b.Title)
	default:
		return compareTime(a.CreatedAt, b.CreatedAt)
	}
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}
