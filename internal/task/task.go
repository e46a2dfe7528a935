// Package task defines the task record and the pure operations on it.
package task

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the completion state of a task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists the valid priorities in display order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Statuses lists the valid statuses in display order.
var Statuses = []Status{StatusPending, StatusCompleted}

// DateLayout is the layout of a stored due date.
const DateLayout = "2006-01-02"

var (
	// ErrInvalidPriority is returned for a priority outside low/medium/high.
	ErrInvalidPriority = errors.New("invalid priority")

	// ErrInvalidStatus is returned for a status outside pending/completed.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidDueDate is returned for a due date that is not YYYY-MM-DD.
	ErrInvalidDueDate = errors.New("invalid due date")
)

// Task is a single to-do record as persisted.
type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DueDate     *string  `json:"due_date"`
	Priority    Priority `json:"priority"`
	Status      Status   `json:"status"`
}

// IsCompleted reports whether the task is marked completed.
func (t Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// DueDateOnly returns the date portion of the due date, or "" if unset.
// Stored values may carry a time component ("2024-05-01T00:00:00Z").
func (t Task) DueDateOnly() string {
	if t.DueDate == nil {
		return ""
	}
	d, _, _ := strings.Cut(*t.DueDate, "T")
	return d
}

// Due parses the due date. ok is false if the task has none or it is unreadable.
func (t Task) Due() (due time.Time, ok bool) {
	d := t.DueDateOnly()
	if d == "" {
		return time.Time{}, false
	}
	due, err := time.Parse(DateLayout, d)
	if err != nil {
		return time.Time{}, false
	}
	return due, true
}

// Patch is a partial task record.
// nil pointer => "no change"
// empty DueDate => clear the due date
type Patch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	DueDate     *string   `json:"due_date,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
}

// Apply merges p over t; fields set in p win. Status is never touched.
func (p Patch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.DueDate != nil {
		if *p.DueDate == "" {
			t.DueDate = nil
		} else {
			d := *p.DueDate
			t.DueDate = &d
		}
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	return t
}

// New builds a pending task with a fresh id from p.
func New(p Patch) Task {
	t := Task{
		ID:       NewID(),
		Priority: PriorityMedium,
		Status:   StatusPending,
	}
	return p.Apply(t)
}

// NewID returns a collision-resistant task id.
// It is a variable so tests can make ids predictable.
var NewID = func() string {
	return uuid.NewString()
}

// ParsePriority parses a priority name, case-insensitively.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
}

// ParseStatus parses a status name, case-insensitively.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusCompleted:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// ParseDueDate validates a form due date. An empty input means "no due date"
// and is returned as "". A time component is dropped.
func ParseDueDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	d, _, _ := strings.Cut(s, "T")
	if _, err := time.Parse(DateLayout, d); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDueDate, s)
	}
	return d, nil
}

// Capitalize upper-cases the first letter of s.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Index returns the position of the task with the given id, or -1.
func Index(tasks []Task, id string) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
