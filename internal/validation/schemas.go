package validation

const durationDef = `{
	"type": "object",
	"properties": {
		"hours":   {"type": "integer", "minimum": 0, "maximum": 1000000},
		"minutes": {"type": "integer", "minimum": 0, "maximum": 59}
	}
}`

const createSchema = `{
	"type": "object",
	"required": ["title"],
	"properties": {
		"title":       {"type": "string", "minLength": 1, "maxLength": 200},
		"description": {"type": "string", "maxLength": 1000},
		"category":    {"type": "string", "maxLength": 50},
		"tags":        {"type": "array", "items": {"type": "string", "maxLength": 30}},
		"priority":    {"enum": ["low", "medium", "high", "urgent"]},
		"dueDate":     {"type": "string"},
		"parentTodo":  {"type": "string", "format": "uuid"},
		"timeEstimate": {"$ref": "duration.json"},
		"attachments": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["filename", "url", "size"],
				"properties": {
					"filename": {"type": "string", "minLength": 1},
					"url":      {"type": "string", "minLength": 1},
					"size":     {"type": "integer", "minimum": 0}
				}
			}
		}
	}
}`

const updateSchema = `{
	"type": "object",
	"properties": {
		"title":       {"type": "string", "minLength": 1, "maxLength": 200},
		"description": {"type": "string", "maxLength": 1000},
		"category":    {"type": "string", "maxLength": 50},
		"tags":        {"type": "array", "items": {"type": "string", "maxLength": 30}},
		"priority":    {"enum": ["low", "medium", "high", "urgent"]},
		"dueDate":     {"type": "string"},
		"completed":   {"type": "boolean"},
		"isArchived":  {"type": "boolean"},
		"parentTodo":  {"type": "string", "format": "uuid"},
		"timeEstimate": {"$ref": "duration.json"}
	}
}`

const noteSchema = `{
	"type": "object",
	"required": ["content"],
	"properties": {
		"content": {"type": "string", "minLength": 1, "maxLength": 500}
	}
}`

const subtodoSchema = `{
	"type": "object",
	"required": ["subtodoId"],
	"properties": {
		"subtodoId": {"type": "string", "format": "uuid"}
	}
}`

const timeSchema = `{
	"type": "object",
	"properties": {
		"hours":   {"type": "integer", "minimum": 0, "maximum": 1000000},
		"minutes": {"type": "integer", "minimum": 0, "maximum": 60000000}
	}
}`

// query получает уже разобранные параметры: числа и булевы значения, если строка распозналась, иначе исходную строку
const querySchema = `{
	"type": "object",
	"properties": {
		"page":      {"type": "integer", "minimum": 1, "maximum": 1000000},
		"limit":     {"type": "integer", "minimum": 1, "maximum": 100},
		"completed": {"type": "boolean"},
		"priority":  {"enum": ["low", "medium", "high", "urgent"]},
		"category":  {"type": "string", "maxLength": 50},
		"search":    {"type": "string", "maxLength": 200},
		"sortBy":    {"enum": ["createdAt", "updatedAt", "dueDate", "priority", "title"]},
		"sortOrder": {"enum": ["asc", "desc"]}
	}
}`

var schemas = map[Kind]string{
	KindCreate:  createSchema,
	KindUpdate:  updateSchema,
	KindNote:    noteSchema,
	KindSubtodo: subtodoSchema,
	KindTime:    timeSchema,
	KindQuery:   querySchema,
}

var messages = map[string]string{
	"title.minLength":       "Заголовок задачи обязателен",
	"title.maxLength":       "Заголовок не может быть длиннее 200 символов",
	"description.maxLength": "Описание не может быть длиннее 1000 символов",
	"category.maxLength":    "Категория не может быть длиннее 50 символов",
	"tags.maxLength":        "Тег не может быть длиннее 30 символов",
	"priority.enum":         "Приоритет должен быть одним из: low, medium, high, urgent",
	"parentTodo.format":     "Некорректный идентификатор родительской задачи",
	"timeEstimate.minimum":  "Время не может быть отрицательным",
	"timeEstimate.maximum":  "Минуты должны быть в диапазоне 0-59",
	"content.minLength":     "Текст заметки обязателен",
	"content.maxLength":     "Заметка не может быть длиннее 500 символов",
	"subtodoId.format":      "Некорректный идентификатор подзадачи",
	"hours.minimum":         "Часы не могут быть отрицательными",
	"hours.maximum":         "Нельзя добавить больше 1000000 часов за раз",
	"minutes.minimum":       "Минуты не могут быть отрицательными",
	"minutes.maximum":       "Нельзя добавить больше 60000000 минут за раз",
	"page.type":             "Номер страницы должен быть целым числом",
	"page.minimum":          "Номер страницы должен быть не меньше 1",
	"page.maximum":          "Номер страницы не может быть больше 1000000",
	"limit.type":            "Лимит должен быть целым числом",
	"limit.minimum":         "Лимит должен быть в диапазоне 1-100",
	"limit.maximum":         "Лимит должен быть в диапазоне 1-100",
	"completed.type":        "Значение должно быть true или false",
	"sortBy.enum":           "Сортировка возможна по createdAt, updatedAt, dueDate, priority, title",
	"sortOrder.enum":        "Порядок сортировки должен быть asc или desc",

	// вложенные поля с собственным текстом
	"timeEstimate.hours.maximum": "Оценка не может превышать 1000000 часов",
}

// fieldOrder задаёт порядок ошибок в ответе
var fieldOrder = []string{
	"body",
	"title", "description", "category", "tags", "priority", "dueDate",
	"completed", "isArchived", "parentTodo", "timeEstimate", "attachments",
	"content", "subtodoId", "hours", "minutes",
	"page", "limit", "search", "sortBy", "sortOrder",
}
