// Package controller turns user intents into store operations and keeps the
// view in sync with the persisted collection.
//
// Every mutating operation re-reads the whole collection, changes it in
// memory, writes it back and then reloads and re-renders the filtered list,
// so the view always reflects the latest persisted state and the latest
// filter selection. A Controller is not safe for concurrent use; front ends
// that serve several callers must serialize access.
package controller

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"taskman/internal/store"
	"taskman/internal/task"
)

// User-facing messages.
const (
	LabelAdd    = "Add Task"
	LabelUpdate = "Update Task"

	MsgTitleRequired = "Task title is required"
	MsgNotFound      = "Task not found"
	MsgConfirmDelete = "Are you sure you want to delete this task?"
)

var (
	// ErrNotFound is returned when an operation names an id that is not stored.
	ErrNotFound = errors.New("task not found")

	// ErrTitleRequired is returned when a title is empty after trimming.
	ErrTitleRequired = errors.New("task title is required")
)

// AlertFunc notifies the user of a failed action.
type AlertFunc func(msg string)

// ConfirmFunc asks the user a yes/no question.
type ConfirmFunc func(msg string) bool

// View receives renders from the controller.
type View interface {
	// RenderTasks shows the filtered list.
	RenderTasks(tasks []task.Task, filter task.Filter)

	// RenderForm shows the form and brings it into focus.
	RenderForm(form Form)
}

// Controller owns the form mode and the filter selection.
type Controller struct {
	store   store.Store
	view    View
	alert   AlertFunc
	confirm ConfirmFunc
	logger  *log.Logger

	form   Form
	filter task.Filter
}

// Option configures a Controller.
type Option func(*Controller)

// WithView sets the render sink.
func WithView(v View) Option {
	return func(c *Controller) {
		if v != nil {
			c.view = v
		}
	}
}

// WithAlert sets the notification capability.
func WithAlert(fn AlertFunc) Option {
	return func(c *Controller) {
		if fn != nil {
			c.alert = fn
		}
	}
}

// WithConfirm sets the confirmation capability. Without one, every
// confirmation is declined.
func WithConfirm(fn ConfirmFunc) Option {
	return func(c *Controller) {
		if fn != nil {
			c.confirm = fn
		}
	}
}

// WithLogger sets the debug logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithFilter sets the initial filter selection.
func WithFilter(f task.Filter) Option {
	return func(c *Controller) { c.filter = f }
}

// WithForm restores a form mode, e.g. one carried through an HTTP round trip.
func WithForm(f Form) Option {
	return func(c *Controller) { c.form = f }
}

// New creates a Controller over st in create mode with no filters.
func New(st store.Store, opts ...Option) *Controller {
	c := &Controller{
		store:   st,
		view:    nopView{},
		alert:   func(string) {},
		confirm: func(string) bool { return false },
		logger:  log.Default(),
		form:    BlankForm(),
		filter:  task.Filter{Status: task.All, Priority: task.All},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Form returns the current form state.
func (c *Controller) Form() Form {
	return c.form
}

// Filter returns the current filter selection.
func (c *Controller) Filter() task.Filter {
	return c.filter
}

// SetFilter changes the filter selection and reloads.
func (c *Controller) SetFilter(ctx context.Context, f task.Filter) ([]task.Task, error) {
	c.filter = f
	return c.Reload(ctx)
}

// Reload reads the collection, applies the filters and renders the result.
func (c *Controller) Reload(ctx context.Context) ([]task.Task, error) {
	tasks, err := c.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	filtered := c.filter.Apply(tasks)
	c.view.RenderTasks(filtered, c.filter)
	return filtered, nil
}

// Create appends a new pending task built from p.
func (c *Controller) Create(ctx context.Context, p task.Patch) (task.Task, error) {
	if p.Title == nil || strings.TrimSpace(*p.Title) == "" {
		c.alert(MsgTitleRequired)
		return task.Task{}, ErrTitleRequired
	}

	tasks, err := c.store.GetAll(ctx)
	if err != nil {
		return task.Task{}, err
	}

	t := task.New(p)
	tasks = append(tasks, t)
	if err := c.store.SaveAll(ctx, tasks); err != nil {
		return task.Task{}, err
	}
	c.logger.Debug("created task", "id", t.ID)

	if _, err := c.Reload(ctx); err != nil {
		return t, err
	}
	return t, nil
}

// Update merges p over the task with the given id. Status is preserved.
func (c *Controller) Update(ctx context.Context, id string, p task.Patch) (task.Task, error) {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		c.alert(MsgTitleRequired)
		return task.Task{}, ErrTitleRequired
	}
	return c.mutate(ctx, id, p.Apply)
}

// SetStatus changes only the status of the task with the given id.
func (c *Controller) SetStatus(ctx context.Context, id string, status task.Status) (task.Task, error) {
	if _, err := task.ParseStatus(string(status)); err != nil {
		return task.Task{}, err
	}
	return c.mutate(ctx, id, func(t task.Task) task.Task {
		t.Status = status
		return t
	})
}

// SetCompleted maps a checkbox state onto SetStatus.
func (c *Controller) SetCompleted(ctx context.Context, id string, checked bool) (task.Task, error) {
	if checked {
		return c.SetStatus(ctx, id, task.StatusCompleted)
	}
	return c.SetStatus(ctx, id, task.StatusPending)
}

// Delete removes the task with the given id after the user confirms.
// It returns false with a nil error if the user declines.
func (c *Controller) Delete(ctx context.Context, id string) (bool, error) {
	if !c.confirm(MsgConfirmDelete) {
		return false, nil
	}

	tasks, err := c.store.GetAll(ctx)
	if err != nil {
		return false, err
	}
	if task.Index(tasks, id) < 0 {
		c.alert(MsgNotFound)
		return false, ErrNotFound
	}

	tasks = slices.DeleteFunc(tasks, func(t task.Task) bool { return t.ID == id })
	if err := c.store.SaveAll(ctx, tasks); err != nil {
		return false, err
	}
	c.logger.Debug("deleted task", "id", id)

	if _, err := c.Reload(ctx); err != nil {
		return true, err
	}
	return true, nil
}

func (c *Controller) mutate(ctx context.Context, id string, change func(task.Task) task.Task) (task.Task, error) {
	tasks, err := c.store.GetAll(ctx)
	if err != nil {
		return task.Task{}, err
	}

	i := task.Index(tasks, id)
	if i < 0 {
		c.alert(MsgNotFound)
		return task.Task{}, ErrNotFound
	}

	tasks[i] = change(tasks[i])
	if err := c.store.SaveAll(ctx, tasks); err != nil {
		return task.Task{}, err
	}
	c.logger.Debug("updated task", "id", id)

	updated := tasks[i]
	if _, err := c.Reload(ctx); err != nil {
		return updated, err
	}
	return updated, nil
}

func alertf(alert AlertFunc, format string, args ...any) {
	alert(fmt.Sprintf(format, args...))
}

type nopView struct{}

func (nopView) RenderTasks([]task.Task, task.Filter) {}
func (nopView) RenderForm(Form)                      {}
