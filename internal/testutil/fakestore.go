// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"slices"
	"sync"

	"taskman/internal/task"
)

// FakeStore is an in-memory implementation of store.Store for testing.
type FakeStore struct {
	mu    sync.RWMutex
	tasks []task.Task

	// Saves counts successful SaveAll calls.
	Saves int

	// Error injection for testing
	GetAllErr  error
	SaveAllErr error
}

// NewFakeStore creates a FakeStore holding a copy of tasks.
func NewFakeStore(tasks ...task.Task) *FakeStore {
	return &FakeStore{tasks: slices.Clone(tasks)}
}

// AddTask appends a task with the given id, title and priority.
func (f *FakeStore) AddTask(id, title string, priority task.Priority) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, task.Task{
		ID:       id,
		Title:    title,
		Priority: priority,
		Status:   task.StatusPending,
	})
}

// Tasks returns a copy of the stored collection.
func (f *FakeStore) Tasks() []task.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.tasks)
}

// GetAll implements store.Store.
func (f *FakeStore) GetAll(ctx context.Context) ([]task.Task, error) {
	if f.GetAllErr != nil {
		return nil, f.GetAllErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := slices.Clone(f.tasks)
	if out == nil {
		out = []task.Task{}
	}
	return out, nil
}

// SaveAll implements store.Store.
func (f *FakeStore) SaveAll(ctx context.Context, tasks []task.Task) error {
	if f.SaveAllErr != nil {
		return f.SaveAllErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = slices.Clone(tasks)
	f.Saves++
	return nil
}

// StrPtr returns a pointer to s.
func StrPtr(s string) *string {
	return &s
}

// PriorityPtr returns a pointer to p.
func PriorityPtr(p task.Priority) *task.Priority {
	return &p
}
