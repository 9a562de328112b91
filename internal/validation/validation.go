// Package validation проверяет тела запросов и параметры списка до любых изменений в хранилище.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
	"todoTracker/internal/models/todo"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

type Kind string

const (
	KindCreate  Kind = "create"
	KindUpdate  Kind = "update"
	KindNote    Kind = "note"
	KindSubtodo Kind = "subtodo"
	KindTime    Kind = "time"
	KindQuery   Kind = "query"
)

const schemaBase = "https://todo-tracker.local/schemas/"

var ErrUnknownKind = errors.New("неизвестный тип проверки")

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result - упорядоченный список ошибок, пустой для корректных данных
type Result []FieldError

func (r Result) Valid() bool {
	return len(r) == 0
}

func (r Result) Fields() []string {
	fields := make([]string, 0, len(r))
	for _, e := range r {
		fields = append(fields, e.Field)
	}
	return fields
}

type Validator struct {
	schemas map[Kind]*jsonschema.Schema
	now     func() time.Time
}

func New() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	if err := compiler.AddResource(schemaBase+"duration.json", strings.NewReader(durationDef)); err != nil {
		return nil, fmt.Errorf("схема duration: %w", err)
	}
	for kind, source := range schemas {
		if err := compiler.AddResource(schemaBase+string(kind)+".json", strings.NewReader(source)); err != nil {
			return nil, fmt.Errorf("схема %s: %w", kind, err)
		}
	}

	v := &Validator{
		schemas: make(map[Kind]*jsonschema.Schema, len(schemas)),
		now:     time.Now,
	}
	for kind := range schemas {
		schema, err := compiler.Compile(schemaBase + string(kind) + ".json")
		if err != nil {
			return nil, fmt.Errorf("компиляция схемы %s: %w", kind, err)
		}
		v.schemas[kind] = schema
	}
	return v, nil
}

// WithClock подменяет источник текущего времени
func (v *Validator) WithClock(now func() time.Time) *Validator {
	v.now = now
	return v
}

// Validate проверяет payload соответствующего вида. Состояние не меняется.
func (v *Validator) Validate(kind Kind, payload any) Result {
	schema, ok := v.schemas[kind]
	if !ok {
		return Result{{Field: "body", Message: ErrUnknownKind.Error()}}
	}

	instance, err := toInstance(payload)
	if err != nil {
		return Result{{Field: "body", Message: "Некорректное тело запроса"}}
	}

	result := Result{}
	if err := schema.Validate(instance); err != nil {
		result = append(result, schemaErrors(err)...)
	}

	switch p := payload.(type) {
	case todo.CreateInput:
		result = append(result, v.checkDueDate(p.DueDate, true)...)
	case *todo.CreateInput:
		result = append(result, v.checkDueDate(p.DueDate, true)...)
	case todo.UpdateInput:
		result = append(result, v.checkDueDate(p.DueDate, false)...)
	case *todo.UpdateInput:
		result = append(result, v.checkDueDate(p.DueDate, false)...)
	}

	sortResult(result)
	return result
}

// toInstance приводит значение к виду, который выдаёт json.Unmarshal
func toInstance(payload any) (any, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return nil, err
	}
	return instance, nil
}

// checkDueDate: при создании срок не может быть в прошлом, при обновлении пустая строка сбрасывает срок
func (v *Validator) checkDueDate(raw *string, create bool) Result {
	if raw == nil || *raw == "" {
		return nil
	}
	due, err := ParseDate(*raw)
	if err != nil {
		return Result{{Field: "dueDate", Message: "Некорректная дата, ожидается формат ISO-8601"}}
	}
	if create && due.Before(v.now()) {
		return Result{{Field: "dueDate", Message: "Срок не может быть в прошлом"}}
	}
	return nil
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// ParseDate разбирает дату в формате ISO-8601, время без зоны считается UTC
func ParseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("некорректная дата %q", raw)
}

func schemaErrors(err error) Result {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return Result{{Field: "body", Message: err.Error()}}
	}
	result := Result{}
	collectSchemaErrors(ve, &result)
	return result
}

func collectSchemaErrors(err *jsonschema.ValidationError, result *Result) {
	if err == nil {
		return
	}
	if len(err.Causes) == 0 {
		field := pointerToField(err.InstanceLocation)
		*result = append(*result, FieldError{
			Field:   field,
			Message: message(field, err.KeywordLocation, err.Message),
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(cause, result)
	}
}

// pointerToField: "/tags/2" -> "tags[2]", "/timeEstimate/minutes" -> "timeEstimate.minutes"
func pointerToField(ptr string) string {
	ptr = strings.TrimPrefix(strings.TrimPrefix(ptr, "#"), "/")
	if ptr == "" {
		return "body"
	}

	var b strings.Builder
	for i, part := range strings.Split(ptr, "/") {
		if _, err := strconv.Atoi(part); err == nil {
			b.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

func rootField(field string) string {
	if i := strings.IndexAny(field, ".["); i >= 0 {
		return field[:i]
	}
	return field
}

func message(field, keywordLocation, fallback string) string {
	keyword := keywordLocation[strings.LastIndex(keywordLocation, "/")+1:]
	if msg, ok := messages[field+"."+keyword]; ok {
		return msg
	}
	if msg, ok := messages[rootField(field)+"."+keyword]; ok {
		return msg
	}
	return fallback
}

func fieldRank(field string) int {
	root := rootField(field)
	for i, f := range fieldOrder {
		if f == root {
			return i
		}
	}
	return len(fieldOrder)
}

func sortResult(result Result) {
	sort.SliceStable(result, func(i, j int) bool {
		ri, rj := fieldRank(result[i].Field), fieldRank(result[j].Field)
		if ri != rj {
			return ri < rj
		}
		return result[i].Field < result[j].Field
	})
}

// ParseQuery проверяет параметры списка и собирает из них фильтр.
// Отсутствующие параметры получают значения по умолчанию.
func (v *Validator) ParseQuery(values url.Values) (todo.Filter, Result) {
	filter := todo.DefaultFilter()
	instance := map[string]any{}

	for _, key := range []string{"page", "limit"} {
		if raw := strings.TrimSpace(values.Get(key)); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil {
				instance[key] = float64(n)
			} else {
				instance[key] = raw
			}
		}
	}
	if raw := strings.TrimSpace(values.Get("completed")); raw != "" {
		switch raw {
		case "true":
			instance["completed"] = true
		case "false":
			instance["completed"] = false
		default:
			instance["completed"] = raw
		}
	}
	// пустой параметр равносилен отсутствующему
	for _, key := range []string{"priority", "category", "search", "sortBy", "sortOrder"} {
		if raw := strings.TrimSpace(values.Get(key)); raw != "" {
			instance[key] = raw
		}
	}

	result := Result{}
	if err := v.schemas[KindQuery].Validate(instance); err != nil {
		result = append(result, schemaErrors(err)...)
	}
	sortResult(result)
	if !result.Valid() {
		return filter, result
	}

	if page, ok := instance["page"].(float64); ok {
		filter.Page = int(page)
	}
	if limit, ok := instance["limit"].(float64); ok {
		filter.Limit = int(limit)
	}
	if completed, ok := instance["completed"].(bool); ok {
		filter.Completed = &completed
	}
	if raw, ok := instance["priority"].(string); ok {
		priority := todo.Priority(raw)
		filter.Priority = &priority
	}
	if raw, ok := instance["category"].(string); ok && raw != "" {
		filter.Category = &raw
	}
	if raw, ok := instance["search"].(string); ok {
		filter.Search = raw
	}
	if raw, ok := instance["sortBy"].(string); ok {
		filter.SortBy = todo.SortField(raw)
	}
	if raw, ok := instance["sortOrder"].(string); ok {
		filter.SortOrder = todo.SortOrder(raw)
	}
	return filter, result
}
