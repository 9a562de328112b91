package todo

import (
	"sort"
	"time"
)

const TopCategories = 5

type Overview struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	Overdue   int `json:"overdue"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type Stats struct {
	Overview   Overview         `json:"overview"`
	Priorities map[Priority]int `json:"priorities"`
	Categories []CategoryCount  `json:"categories"`
}

func NewStats() *Stats {
	return &Stats{
		Priorities: map[Priority]int{},
		Categories: []CategoryCount{},
	}
}

// Aggregate считает статистику по неархивным задачам на момент now
func Aggregate(todos []*Todo, now time.Time) *Stats {
	stats := NewStats()
	categories := map[string]int{}

	for _, t := range todos {
		if t.IsArchived {
			continue
		}
		stats.Overview.Total++
		if t.Completed {
			stats.Overview.Completed++
		}
		if t.IsOverdue(now) {
			stats.Overview.Overdue++
		}
		stats.Priorities[t.Priority]++
		if t.Category != "" {
			categories[t.Category]++
		}
	}
	stats.Overview.Pending = stats.Overview.Total - stats.Overview.Completed

	for name, count := range categories {
		stats.Categories = append(stats.Categories, CategoryCount{Category: name, Count: count})
	}
	SortCategories(stats.Categories)
	if len(stats.Categories) > TopCategories {
		stats.Categories = stats.Categories[:TopCategories]
	}
	return stats
}

// SortCategories: по убыванию количества, при равенстве по имени
func SortCategories(categories []CategoryCount) {
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Count != categories[j].Count {
			return categories[i].Count > categories[j].Count
		}
		return categories[i].Category < categories[j].Category
	})
}
