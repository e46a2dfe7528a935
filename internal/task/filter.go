package task

import (
	"fmt"
	"strings"
)

// All is the filter value that matches every task.
const All = "all"

// Filter narrows a task sequence by status and priority.
// Each field is either All (or empty) or a concrete value.
type Filter struct {
	Status   string
	Priority string
}

// NewFilter validates filter selections. Empty values mean All.
func NewFilter(status, priority string) (Filter, error) {
	f := Filter{Status: All, Priority: All}

	if s := strings.ToLower(strings.TrimSpace(status)); s != "" && s != All {
		st, err := ParseStatus(s)
		if err != nil {
			return Filter{}, fmt.Errorf("status filter: %w", err)
		}
		f.Status = string(st)
	}

	if p := strings.ToLower(strings.TrimSpace(priority)); p != "" && p != All {
		pr, err := ParsePriority(p)
		if err != nil {
			return Filter{}, fmt.Errorf("priority filter: %w", err)
		}
		f.Priority = string(pr)
	}

	return f, nil
}

// Apply returns the tasks matching both selections, in their original order.
// The status predicate runs first, then the priority predicate.
func (f Filter) Apply(tasks []Task) []Task {
	return f.ByPriority(f.ByStatus(tasks))
}

// ByStatus keeps only tasks with the selected status.
func (f Filter) ByStatus(tasks []Task) []Task {
	if f.Status == "" || f.Status == All {
		return tasks
	}
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if string(t.Status) == f.Status {
			out = append(out, t)
		}
	}
	return out
}

// ByPriority keeps only tasks with the selected priority.
func (f Filter) ByPriority(tasks []Task) []Task {
	if f.Priority == "" || f.Priority == All {
		return tasks
	}
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if string(t.Priority) == f.Priority {
			out = append(out, t)
		}
	}
	return out
}

// IsAll reports whether the filter lets every task through.
func (f Filter) IsAll() bool {
	return (f.Status == "" || f.Status == All) && (f.Priority == "" || f.Priority == All)
}

// Matches reports whether t passes both selections.
func (f Filter) Matches(t Task) bool {
	return (f.Status == "" || f.Status == All || string(t.Status) == f.Status) &&
		(f.Priority == "" || f.Priority == All || string(t.Priority) == f.Priority)
}
