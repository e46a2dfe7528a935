package controller

import (
	"context"
	"strings"

	"taskman/internal/task"
)

// Form is the state of the task form: its field values and whether it is
// editing an existing task. The zero EditingID means create mode.
type Form struct {
	EditingID   string
	Title       string
	Description string
	DueDate     string
	Priority    string
	SubmitLabel string
}

// FormInput is what a user submits through the form.
type FormInput struct {
	Title       string
	Description string
	DueDate     string
	Priority    string
}

// BlankForm returns a form in create mode with default values.
func BlankForm() Form {
	return Form{
		Priority:    string(task.PriorityMedium),
		SubmitLabel: LabelAdd,
	}
}

// Editing reports whether the form is editing an existing task.
func (f Form) Editing() bool {
	return f.EditingID != ""
}

// Input returns the field values of the form.
func (f Form) Input() FormInput {
	return FormInput{
		Title:       f.Title,
		Description: f.Description,
		DueDate:     f.DueDate,
		Priority:    f.Priority,
	}
}

// EditForm returns the form populated from t in edit mode.
func EditForm(t task.Task) Form {
	return Form{
		EditingID:   t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDateOnly(),
		Priority:    string(t.Priority),
		SubmitLabel: LabelUpdate,
	}
}

// Submit validates in and creates a task, or updates the task being edited.
//
// An empty title is rejected with an alert and leaves everything, including
// the form, untouched. Once validation passes the form is reset to create
// mode whatever the outcome of the store operation.
func (c *Controller) Submit(ctx context.Context, in FormInput) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		c.alert(MsgTitleRequired)
		return ErrTitleRequired
	}

	priority := task.PriorityMedium
	if strings.TrimSpace(in.Priority) != "" {
		p, err := task.ParsePriority(in.Priority)
		if err != nil {
			alertf(c.alert, "Invalid priority: %s", in.Priority)
			return err
		}
		priority = p
	}

	due, err := task.ParseDueDate(in.DueDate)
	if err != nil {
		alertf(c.alert, "Invalid due date: %s", in.DueDate)
		return err
	}

	description := strings.TrimSpace(in.Description)
	p := task.Patch{
		Title:       &title,
		Description: &description,
		DueDate:     &due,
		Priority:    &priority,
	}

	if c.form.Editing() {
		_, err = c.Update(ctx, c.form.EditingID, p)
	} else {
		_, err = c.Create(ctx, p)
	}

	c.ResetForm()
	return err
}

// Edit switches the form to edit mode for the task with the given id.
func (c *Controller) Edit(ctx context.Context, id string) (Form, error) {
	tasks, err := c.store.GetAll(ctx)
	if err != nil {
		return Form{}, err
	}

	i := task.Index(tasks, id)
	if i < 0 {
		c.alert(MsgNotFound)
		return Form{}, ErrNotFound
	}

	c.form = EditForm(tasks[i])
	c.view.RenderForm(c.form)
	return c.form, nil
}

// CancelEdit leaves edit mode without touching the store.
func (c *Controller) CancelEdit() {
	c.ResetForm()
}

// ResetForm returns the form to create mode with default values.
func (c *Controller) ResetForm() {
	c.form = BlankForm()
	c.view.RenderForm(c.form)
}
