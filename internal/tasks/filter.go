package tasks

import (
	"strings"

	"github.com/adanyl0v/go-todo-client/internal/models"
)

const FilterAll = "all"

// Criteria selects tasks. A zero Status or Priority matches any value
// and an empty Search matches every task.
type Criteria struct {
	Search   string
	Status   models.Status
	Priority models.Priority
}

func ParseStatusFilter(s string) (models.Status, error) {
	if s == "" || s == FilterAll {
		return "", nil
	}
	status := models.Status(s)
	err := models.ValidateStatus(status)
	if err != nil {
		return "", err
	}
	return status, nil
}

func ParsePriorityFilter(s string) (models.Priority, error) {
	if s == "" || s == FilterAll {
		return "", nil
	}
	priority := models.Priority(s)
	err := models.ValidatePriority(priority)
	if err != nil {
		return "", err
	}
	return priority, nil
}

func (c Criteria) Match(task models.Task) bool {
	if c.Status != "" && task.Status != c.Status {
		return false
	}
	if c.Priority != "" && task.Priority != c.Priority {
		return false
	}
	if c.Search == "" {
		return true
	}

	search := strings.ToLower(c.Search)
	if strings.Contains(strings.ToLower(task.Title), search) {
		return true
	}
	return task.Description != "" && strings.Contains(strings.ToLower(task.Description), search)
}

// Filter returns the matching tasks in their original order. tasks is
// not modified.
func Filter(tasks []models.Task, c Criteria) []models.Task {
	matched := make([]models.Task, 0, len(tasks))
	for _, task := range tasks {
		if c.Match(task) {
			matched = append(matched, task)
		}
	}
	return matched
}

type Stats struct {
	Total       int
	Pending     int
	Completed   int
	HighPending int
}

func ComputeStats(tasks []models.Task) Stats {
	stats := Stats{Total: len(tasks)}
	for _, task := range tasks {
		switch task.Status {
		case models.StatusPending:
			stats.Pending++
			if task.Priority == models.PriorityHigh {
				stats.HighPending++
			}
		case models.StatusCompleted:
			stats.Completed++
		}
	}
	return stats
}
