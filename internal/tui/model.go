// Package tui is the interactive terminal front end: the task list and the
// form side by side, driven by the shared controller.
package tui

import (
	"context"
	"errors"
	"slices"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"taskman/internal/controller"
	"taskman/internal/render"
	"taskman/internal/store"
	"taskman/internal/task"
)

// Focus targets. focusList is the task list; the rest are form fields.
const (
	focusList = iota - 1
	fieldTitle
	fieldDescription
	fieldDue
	fieldPriority
	fieldCount
)

// Model implements tea.Model and controller.View.
type Model struct {
	ctx    context.Context
	ctl    *controller.Controller
	locale render.Locale
	keys   keyMap
	help   help.Model

	tasks  []task.Task
	filter task.Filter
	cursor int

	focus    int
	inputs   []textinput.Model
	priority task.Priority
	form     controller.Form

	// confirming holds the id of a task awaiting delete confirmation.
	confirming string
	confirmed  bool

	alert string
	err   error

	width int
}

// Option configures a Model.
type Option func(*Model)

// WithLocale sets the locale used for due dates.
func WithLocale(l render.Locale) Option {
	return func(m *Model) { m.locale = l }
}

// New creates a Model over st and loads the list.
func New(ctx context.Context, st store.Store, logger *log.Logger, opts ...Option) (*Model, error) {
	m := &Model{
		ctx:      ctx,
		keys:     newKeyMap(),
		help:     help.New(),
		focus:    focusList,
		priority: task.PriorityMedium,
		form:     controller.BlankForm(),
		filter:   task.Filter{Status: task.All, Priority: task.All},
	}
	for _, opt := range opts {
		opt(m)
	}

	m.inputs = make([]textinput.Model, fieldPriority)
	for i, placeholder := range []string{"Title", "Description", "YYYY-MM-DD"} {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.Prompt = ""
		ti.CharLimit = 500
		m.inputs[i] = ti
	}
	m.inputs[fieldDue].CharLimit = len(task.DateLayout)

	m.ctl = controller.New(st,
		controller.WithView(m),
		controller.WithAlert(func(msg string) { m.alert = msg }),
		controller.WithConfirm(func(string) bool { return m.confirmed }),
		controller.WithLogger(logger),
	)
	if _, err := m.ctl.Reload(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, st store.Store, logger *log.Logger, opts ...Option) error {
	m, err := New(ctx, st, logger, opts...)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// RenderTasks implements controller.View.
func (m *Model) RenderTasks(tasks []task.Task, filter task.Filter) {
	m.tasks = slices.Clone(tasks)
	m.filter = filter
	m.cursor = min(m.cursor, max(len(m.tasks)-1, 0))
}

// RenderForm implements controller.View. The form takes focus.
func (m *Model) RenderForm(form controller.Form) {
	m.form = form
	m.inputs[fieldTitle].SetValue(form.Title)
	m.inputs[fieldDescription].SetValue(form.Description)
	m.inputs[fieldDue].SetValue(form.DueDate)
	m.priority = task.PriorityMedium
	if p, err := task.ParsePriority(form.Priority); err == nil {
		m.priority = p
	}
	m.setFocus(fieldTitle)
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, m.updateInput(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if m.confirming != "" {
		m.answerConfirm(msg.String())
		return m, nil
	}

	m.alert = ""
	switch {
	case key.Matches(msg, m.keys.Focus):
		m.setFocus(m.nextFocus())
		return m, nil
	case key.Matches(msg, m.keys.Edit):
		if t, ok := m.selected(); ok {
			m.run(func(ctx context.Context) error {
				_, err := m.ctl.Edit(ctx, t.ID)
				return err
			})
		}
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		if t, ok := m.selected(); ok {
			m.confirming = t.ID
		}
		return m, nil
	case key.Matches(msg, m.keys.Status):
		m.cycleStatusFilter()
		return m, nil
	case key.Matches(msg, m.keys.Priority):
		m.cyclePriorityFilter()
		return m, nil
	case key.Matches(msg, m.keys.Cancel):
		if m.form.Editing() {
			m.ctl.CancelEdit()
		}
		m.setFocus(focusList)
		return m, nil
	}

	if m.focus == focusList {
		return m, m.handleListKey(msg)
	}
	return m, m.handleFormKey(msg)
}

func (m *Model) handleListKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		if t, ok := m.selected(); ok {
			m.run(func(ctx context.Context) error {
				_, err := m.ctl.SetCompleted(ctx, t.ID, !t.IsCompleted())
				return err
			})
		}
	}
	return nil
}

func (m *Model) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Submit):
		m.submit()
		return nil
	case m.focus == fieldPriority:
		if key.Matches(msg, m.keys.Cycle) || key.Matches(msg, m.keys.Toggle) {
			m.cyclePriority(msg.String() == "left")
		}
		return nil
	}
	return m.updateInput(msg)
}

func (m *Model) submit() {
	in := controller.FormInput{
		Title:       m.inputs[fieldTitle].Value(),
		Description: m.inputs[fieldDescription].Value(),
		DueDate:     m.inputs[fieldDue].Value(),
		Priority:    string(m.priority),
	}
	m.run(func(ctx context.Context) error {
		return m.ctl.Submit(ctx, in)
	})
}

func (m *Model) answerConfirm(answer string) {
	id := m.confirming
	m.confirming = ""
	if answer != "y" && answer != "Y" {
		return
	}
	m.confirmed = true
	defer func() { m.confirmed = false }()
	m.run(func(ctx context.Context) error {
		_, err := m.ctl.Delete(ctx, id)
		return err
	})
}

// run performs a controller action. Alerted failures are already shown; any
// other error is kept for display and the session carries on.
func (m *Model) run(action func(context.Context) error) {
	m.err = nil
	err := action(m.ctx)
	if err == nil || m.alert != "" {
		return
	}
	m.err = err
}

func (m *Model) selected() (task.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return task.Task{}, false
	}
	return m.tasks[m.cursor], true
}

func (m *Model) nextFocus() int {
	next := m.focus + 1
	if next >= fieldCount {
		return focusList
	}
	return next
}

func (m *Model) setFocus(f int) {
	m.focus = f
	for i := range m.inputs {
		if i == f {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

func (m *Model) updateInput(msg tea.Msg) tea.Cmd {
	if m.focus < 0 || m.focus >= len(m.inputs) {
		return nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return cmd
}

func (m *Model) cyclePriority(back bool) {
	i := slices.Index(task.Priorities, m.priority)
	n := len(task.Priorities)
	if back {
		i = (i - 1 + n) % n
	} else {
		i = (i + 1) % n
	}
	m.priority = task.Priorities[i]
}

func (m *Model) cycleStatusFilter() {
	options := []string{task.All}
	for _, s := range task.Statuses {
		options = append(options, string(s))
	}
	f := m.filter
	f.Status = nextOption(options, f.Status)
	m.setFilter(f)
}

func (m *Model) cyclePriorityFilter() {
	options := []string{task.All}
	for _, p := range task.Priorities {
		options = append(options, string(p))
	}
	f := m.filter
	f.Priority = nextOption(options, f.Priority)
	m.setFilter(f)
}

func (m *Model) setFilter(f task.Filter) {
	m.run(func(ctx context.Context) error {
		_, err := m.ctl.SetFilter(ctx, f)
		return err
	})
}

func nextOption(options []string, current string) string {
	i := slices.Index(options, current)
	return options[(i+1)%len(options)]
}
