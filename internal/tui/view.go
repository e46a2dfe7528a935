package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"taskman/internal/controller"
	"taskman/internal/render"
	"taskman/internal/task"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF")).
			MarginBottom(1)
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
	focusedBoxStyle = boxStyle.
			BorderForeground(lipgloss.Color("#5B8DEF"))
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	completedStyle = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("#888888"))
	cursorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	alertStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	labelStyle     = lipgloss.NewStyle().Width(12)

	priorityStyles = map[task.Priority]lipgloss.Style{
		task.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("#2E7D32")),
		task.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("#EF6C00")),
		task.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("#C62828")).Bold(true),
	}
)

// View implements tea.Model.
func (m *Model) View() string {
	sections := []string{
		headerStyle.Render(render.Title),
		m.viewFilters(),
		m.box(m.viewList(), m.focus == focusList),
		m.box(m.viewForm(), m.focus != focusList),
	}

	switch {
	case m.confirming != "":
		sections = append(sections, alertStyle.Render(controller.MsgConfirmDelete+" (y/n)"))
	case m.alert != "":
		sections = append(sections, alertStyle.Render(m.alert))
	case m.err != nil:
		sections = append(sections, alertStyle.Render("error: "+m.err.Error()))
	}

	bindings := m.keys.listHelp()
	if m.focus != focusList {
		bindings = m.keys.formHelp()
	}
	sections = append(sections, m.help.ShortHelpView(bindings))
	return strings.Join(sections, "\n")
}

func (m *Model) box(content string, focused bool) string {
	style := boxStyle
	if focused {
		style = focusedBoxStyle
	}
	if m.width > 4 {
		style = style.Width(m.width - 2)
	}
	return style.Render(content)
}

func (m *Model) viewFilters() string {
	return mutedStyle.Render(fmt.Sprintf("Status: %s   Priority: %s",
		filterLabel(m.filter.Status), filterLabel(m.filter.Priority)))
}

func (m *Model) viewList() string {
	if len(m.tasks) == 0 {
		return mutedStyle.Render(render.NoTasks)
	}
	var b strings.Builder
	for i, t := range m.tasks {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(m.viewRow(i, t))
	}
	return b.String()
}

func (m *Model) viewRow(i int, t task.Task) string {
	cursor := "  "
	if i == m.cursor && m.focus == focusList {
		cursor = cursorStyle.Render("> ")
	}
	check := "[ ]"
	title := t.Title
	if t.IsCompleted() {
		check = "[x]"
		title = completedStyle.Render(title)
	}
	prio := priorityStyles[t.Priority].Render(task.Capitalize(string(t.Priority)))
	due := mutedStyle.Render(m.locale.FormatDueDate(t))

	row := fmt.Sprintf("%s%s %s  %s  %s", cursor, check, title, prio, due)
	if t.Description != "" {
		row += "\n      " + mutedStyle.Render(t.Description)
	}
	return row
}

func (m *Model) viewForm() string {
	heading := controller.LabelAdd
	if m.form.Editing() {
		heading = controller.LabelUpdate
	}

	lines := []string{
		headerStyle.UnsetMarginBottom().Render(heading),
		labelStyle.Render("Title") + m.inputs[fieldTitle].View(),
		labelStyle.Render("Description") + m.inputs[fieldDescription].View(),
		labelStyle.Render("Due date") + m.inputs[fieldDue].View(),
		labelStyle.Render("Priority") + m.viewPriority(),
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewPriority() string {
	parts := make([]string, 0, len(task.Priorities))
	for _, p := range task.Priorities {
		label := task.Capitalize(string(p))
		if p == m.priority {
			label = priorityStyles[p].Render("[" + label + "]")
		} else {
			label = mutedStyle.Render(" " + label + " ")
		}
		parts = append(parts, label)
	}
	out := strings.Join(parts, " ")
	if m.focus == fieldPriority {
		out = cursorStyle.Render("> ") + out
	}
	return out
}

func filterLabel(v string) string {
	if v == "" || v == task.All {
		return "All"
	}
	return task.Capitalize(v)
}
